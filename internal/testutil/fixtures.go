// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/carehub/internal/app/system/status"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTenant creates a test tenant with the given name.
func (f *Fixtures) CreateTenant(ctx context.Context, name string) models.Tenant {
	f.t.Helper()

	now := time.Now().UTC()
	tenant := models.Tenant{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Status:    status.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("tenants").InsertOne(ctx, tenant); err != nil {
		f.t.Fatalf("insert tenant: %v", err)
	}
	return tenant
}

// CoordinatorOpts tweaks CreateCoordinator's defaults.
type CoordinatorOpts struct {
	Role            string
	Zone            models.Zone
	MaxCaseload     *int
	CurrentCaseload int
	SupervisorID    *primitive.ObjectID
	ManagerID       *primitive.ObjectID
	DirectorID      *primitive.ObjectID
	Specializations []string
	Inactive        bool
}

// CreateCoordinator creates a test service coordinator. Defaults: active
// coordinator role in the SW zone with unlimited caseload.
func (f *Fixtures) CreateCoordinator(ctx context.Context, tenantID primitive.ObjectID, name string, opts CoordinatorOpts) models.ServiceCoordinator {
	f.t.Helper()

	if opts.Role == "" {
		opts.Role = models.RoleCoordinator
	}
	if opts.Zone == "" {
		opts.Zone = models.ZoneSW
	}

	now := time.Now().UTC()
	coord := models.ServiceCoordinator{
		ID:              primitive.NewObjectID(),
		TenantID:        tenantID,
		SCID:            uuid.NewString(),
		FullName:        name,
		FullNameCI:      text.Fold(name),
		Email:           uuid.NewString() + "@test.example",
		Zone:            opts.Zone,
		Role:            opts.Role,
		SupervisorID:    opts.SupervisorID,
		ManagerID:       opts.ManagerID,
		DirectorID:      opts.DirectorID,
		MaxCaseload:     opts.MaxCaseload,
		CurrentCaseload: opts.CurrentCaseload,
		Specializations: opts.Specializations,
		IsActive:        !opts.Inactive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("service_coordinators").InsertOne(ctx, coord); err != nil {
		f.t.Fatalf("insert coordinator: %v", err)
	}
	return coord
}

// MemberOpts tweaks CreateMember's defaults.
type MemberOpts struct {
	Zone         models.Zone
	PlanType     string
	PICSScore    int
	PanelMember  bool
	AssignedSCID string
}

// CreateMember creates a test member. Defaults: SW zone, HMO plan.
func (f *Fixtures) CreateMember(ctx context.Context, tenantID primitive.ObjectID, name string, opts MemberOpts) models.Member {
	f.t.Helper()

	if opts.Zone == "" {
		opts.Zone = models.ZoneSW
	}
	if opts.PlanType == "" {
		opts.PlanType = "HMO"
	}

	now := time.Now().UTC()
	member := models.Member{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		FullName:     name,
		FullNameCI:   text.Fold(name),
		MemberZone:   opts.Zone,
		PlanType:     opts.PlanType,
		PICSScore:    opts.PICSScore,
		PanelMember:  opts.PanelMember,
		AssignedSCID: opts.AssignedSCID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("insert member: %v", err)
	}
	return member
}

// CreateRule creates an active test assignment rule targeting a role.
func (f *Fixtures) CreateRule(ctx context.Context, tenantID primitive.ObjectID, surveyType string, priority int, criteria models.RuleCriteria, role string) models.AssignmentRule {
	f.t.Helper()

	now := time.Now().UTC()
	rule := models.AssignmentRule{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		SurveyType:   surveyType,
		Criteria:     criteria,
		AssignedRole: role,
		Priority:     priority,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("assignment_rules").InsertOne(ctx, rule); err != nil {
		f.t.Fatalf("insert rule: %v", err)
	}
	return rule
}

// CreateTemplate creates a test form template.
func (f *Fixtures) CreateTemplate(ctx context.Context, tenantID primitive.ObjectID, surveyType string, fields []models.TemplateField) models.FormTemplate {
	f.t.Helper()

	now := time.Now().UTC()
	tmpl := models.FormTemplate{
		ID:         primitive.NewObjectID(),
		TenantID:   tenantID,
		Name:       surveyType + " template",
		SurveyType: surveyType,
		Fields:     fields,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("form_templates").InsertOne(ctx, tmpl); err != nil {
		f.t.Fatalf("insert template: %v", err)
	}
	return tmpl
}
