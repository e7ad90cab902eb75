// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/carehub/internal/app/features/auditlog"
	casesfeature "github.com/dalemusser/carehub/internal/app/features/cases"
	coordinatorsfeature "github.com/dalemusser/carehub/internal/app/features/coordinators"
	formsfeature "github.com/dalemusser/carehub/internal/app/features/forms"
	formtemplatesfeature "github.com/dalemusser/carehub/internal/app/features/formtemplates"
	healthfeature "github.com/dalemusser/carehub/internal/app/features/health"
	membersfeature "github.com/dalemusser/carehub/internal/app/features/members"
	metricsfeature "github.com/dalemusser/carehub/internal/app/features/metrics"
	rulesfeature "github.com/dalemusser/carehub/internal/app/features/rules"
	tenantsfeature "github.com/dalemusser/carehub/internal/app/features/tenants"
	"github.com/dalemusser/carehub/internal/app/store/audit"
	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	instancestore "github.com/dalemusser/carehub/internal/app/store/forminstances"
	templatestore "github.com/dalemusser/carehub/internal/app/store/formtemplates"
	memberstore "github.com/dalemusser/carehub/internal/app/store/members"
	rulestore "github.com/dalemusser/carehub/internal/app/store/rules"
	tenantstore "github.com/dalemusser/carehub/internal/app/store/tenants"
	"github.com/dalemusser/carehub/internal/app/system/assign"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/dalemusser/carehub/internal/app/system/authz"
	"github.com/dalemusser/carehub/internal/app/system/hierarchy"
	"github.com/dalemusser/carehub/internal/app/system/lifecycle"
	"github.com/dalemusser/carehub/internal/app/system/ratelimit"
	"github.com/dalemusser/carehub/internal/app/system/rulematch"
	"github.com/dalemusser/carehub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. CareHub builds the store layer, wires
// the core services (hierarchy validator, rule matcher, assignment engine,
// form lifecycle) on top of it, and mounts one feature router per surface.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.CareHubMongoDatabase

	// Stores
	tenants := tenantstore.New(db)
	coordinators := coordinatorstore.New(db)
	members := memberstore.New(db)
	rules := rulestore.New(db)
	templates := templatestore.New(db)
	instances := instancestore.New(db)
	auditStore := audit.New(db)

	// Core services
	recorder := auditlog.New(auditStore, logger, auditlog.Config{
		Assignment: appCfg.AuditLogAssignment,
		Lifecycle:  appCfg.AuditLogLifecycle,
		Admin:      appCfg.AuditLogAdmin,
	})
	validator := hierarchy.New(coordinators, recorder, logger)
	matcher := rulematch.New(rules)
	runner := txn.NewRunner(deps.CareHubMongoClient, logger)
	engine := assign.New(members, coordinators, matcher, validator, recorder, runner, logger)
	reviewer := authz.New(coordinators)
	forms := lifecycle.New(instances, templates, reviewer, engine, recorder, logger)

	r := chi.NewRouter()

	// The identity-aware proxy in front of CareHub forwards the acting
	// coordinator's id; lift it into the request context for all routes.
	r.Use(auth.WithActor)

	// Throttle write traffic per actor. Reads are never limited.
	writeLimiter := ratelimit.New(120, time.Minute)
	r.Use(writeLimiter.Middleware)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CareHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus scrape endpoint
	r.Mount("/metrics", metricsfeature.Routes())

	// Tenant administration
	tenantsHandler := tenantsfeature.NewHandler(tenants, logger)
	r.Mount("/tenants", tenantsfeature.Routes(tenantsHandler))

	// Coordinator management and supervisory chains
	coordinatorsHandler := coordinatorsfeature.NewHandler(coordinators, validator, recorder, logger)
	r.Mount("/coordinators", coordinatorsfeature.Routes(coordinatorsHandler))

	// Plan members
	membersHandler := membersfeature.NewHandler(members, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	// Assignment rules
	rulesHandler := rulesfeature.NewHandler(rules, logger)
	r.Mount("/rules", rulesfeature.Routes(rulesHandler))

	// Case routing
	casesHandler := casesfeature.NewHandler(engine, members, logger)
	r.Mount("/cases", casesfeature.Routes(casesHandler))

	// Form templates and instances
	templatesHandler := formtemplatesfeature.NewHandler(templates, logger)
	r.Mount("/templates", formtemplatesfeature.Routes(templatesHandler))

	formsHandler := formsfeature.NewHandler(forms, instances, logger)
	r.Mount("/forms", formsfeature.Routes(formsHandler))

	// Audit trail reads
	auditHandler := auditlogfeature.NewHandler(auditStore, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler))

	return r, nil
}
