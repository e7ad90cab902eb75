// internal/app/system/auditlog/recorder.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/carehub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Assignment controls logging for assignment-engine events (assign,
	// reassign, release, no-rule, caseload adjustments).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Assignment string
	// Lifecycle controls logging for form-instance lifecycle events.
	// Same values as Assignment.
	Lifecycle string
	// Admin controls logging for administrative events (rule/chain edits).
	Admin string
}

// Sink receives audit events for durable storage. *audit.Store satisfies
// it; tests use an in-memory sink.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Recorder writes audit events to the durable sink and to structured logs.
//
// Unlike a best-effort access log, the audit trail here is a compliance
// requirement: a sink failure is returned to the caller so the enclosing
// operation fails (and its transaction rolls back) rather than committing
// unaudited work.
type Recorder struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Recorder.
func New(sink Sink, zapLog *zap.Logger, config Config) *Recorder {
	return &Recorder{
		sink:   sink,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (r *Recorder) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.String("entity_type", event.EntityType),
		zap.String("entity_id", event.EntityID.Hex()),
		zap.String("tenant_id", event.TenantID.Hex()),
		zap.String("actor_id", event.ActorID.Hex()),
	}
	if event.CorrelationID != "" {
		fields = append(fields, zap.String("correlation_id", event.CorrelationID))
	}
	for k, v := range event.BeforeState {
		fields = append(fields, zap.String("before_"+k, v))
	}
	for k, v := range event.AfterState {
		fields = append(fields, zap.String("after_"+k, v))
	}
	r.zapLog.Info("audit event", fields...)
}

// Record writes an audit event according to configuration. A nil Recorder
// is a no-op (tests that don't care about audit pass nil). The sink error,
// if any, is returned: callers treat it as a failure of the operation the
// event describes.
func (r *Recorder) Record(ctx context.Context, event audit.Event) error {
	if r == nil {
		return nil
	}

	var setting string
	switch event.Category {
	case audit.CategoryAssignment, audit.CategoryHierarchy:
		setting = r.config.Assignment
	case audit.CategoryLifecycle:
		setting = r.config.Lifecycle
	case audit.CategoryAdmin:
		setting = r.config.Admin
	default:
		setting = "all"
	}

	if setting == "off" {
		return nil
	}

	if setting == "all" || setting == "log" {
		r.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := r.sink.Log(ctx, event); err != nil {
			r.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("action", event.Action),
			)
			return err
		}
	}
	return nil
}

// --- Assignment events ---

// CaseAssigned records a committed assignment.
func (r *Recorder) CaseAssigned(ctx context.Context, tenantID, memberID, coordinatorID, actorID primitive.ObjectID, ruleID *primitive.ObjectID, correlationID, priorSCID, newSCID string) error {
	before := map[string]string{"assigned_scid": priorSCID}
	after := map[string]string{
		"assigned_scid":  newSCID,
		"coordinator_id": coordinatorID.Hex(),
	}
	if ruleID != nil {
		after["rule_id"] = ruleID.Hex()
	}
	return r.Record(ctx, audit.Event{
		Category:      audit.CategoryAssignment,
		Action:        audit.ActionCaseAssigned,
		EntityType:    audit.EntityMember,
		EntityID:      memberID,
		TenantID:      tenantID,
		ActorID:       actorID,
		CorrelationID: correlationID,
		BeforeState:   before,
		AfterState:    after,
	})
}

// CaseReassigned records a manual reassignment.
func (r *Recorder) CaseReassigned(ctx context.Context, tenantID, memberID, coordinatorID, actorID primitive.ObjectID, correlationID, priorSCID, newSCID string) error {
	return r.Record(ctx, audit.Event{
		Category:      audit.CategoryAssignment,
		Action:        audit.ActionCaseReassigned,
		EntityType:    audit.EntityMember,
		EntityID:      memberID,
		TenantID:      tenantID,
		ActorID:       actorID,
		CorrelationID: correlationID,
		BeforeState:   map[string]string{"assigned_scid": priorSCID},
		AfterState: map[string]string{
			"assigned_scid":  newSCID,
			"coordinator_id": coordinatorID.Hex(),
		},
	})
}

// CaseReleased records a caseload release on case closure.
func (r *Recorder) CaseReleased(ctx context.Context, tenantID, memberID, coordinatorID, actorID primitive.ObjectID, correlationID string) error {
	return r.Record(ctx, audit.Event{
		Category:      audit.CategoryAssignment,
		Action:        audit.ActionCaseReleased,
		EntityType:    audit.EntityMember,
		EntityID:      memberID,
		TenantID:      tenantID,
		ActorID:       actorID,
		CorrelationID: correlationID,
		AfterState:    map[string]string{"coordinator_id": coordinatorID.Hex()},
	})
}

// CaseUnmatched records a case no active rule matched; it stays unassigned
// and is queued for manual triage.
func (r *Recorder) CaseUnmatched(ctx context.Context, tenantID, memberID, actorID primitive.ObjectID, surveyType string) error {
	return r.Record(ctx, audit.Event{
		Category:   audit.CategoryAssignment,
		Action:     audit.ActionCaseUnmatched,
		EntityType: audit.EntityMember,
		EntityID:   memberID,
		TenantID:   tenantID,
		ActorID:    actorID,
		AfterState: map[string]string{"survey_type": surveyType, "result": "no-rule"},
	})
}

// --- Hierarchy events ---

// CaseloadAdjusted records a caseload counter change with before/after
// values. Paired 1:1 with every successful adjustment.
func (r *Recorder) CaseloadAdjusted(ctx context.Context, tenantID, coordinatorID, actorID primitive.ObjectID, correlationID string, before, after int) error {
	return r.Record(ctx, audit.Event{
		Category:      audit.CategoryHierarchy,
		Action:        audit.ActionCaseloadAdjusted,
		EntityType:    audit.EntityCoordinator,
		EntityID:      coordinatorID,
		TenantID:      tenantID,
		ActorID:       actorID,
		CorrelationID: correlationID,
		BeforeState:   map[string]string{"current_caseload": strconv.Itoa(before)},
		AfterState:    map[string]string{"current_caseload": strconv.Itoa(after)},
	})
}

// ChainChanged records a supervisory-chain edit.
func (r *Recorder) ChainChanged(ctx context.Context, tenantID, coordinatorID, actorID primitive.ObjectID, before, after map[string]string) error {
	return r.Record(ctx, audit.Event{
		Category:    audit.CategoryAdmin,
		Action:      audit.ActionChainChanged,
		EntityType:  audit.EntityCoordinator,
		EntityID:    coordinatorID,
		TenantID:    tenantID,
		ActorID:     actorID,
		BeforeState: before,
		AfterState:  after,
	})
}

// --- Lifecycle events ---

// InstanceCreated records a new form instance entering draft.
func (r *Recorder) InstanceCreated(ctx context.Context, tenantID, instanceID, ownerCoordinatorID, actorID primitive.ObjectID) error {
	return r.Record(ctx, audit.Event{
		Category:   audit.CategoryLifecycle,
		Action:     audit.ActionInstanceCreated,
		EntityType: audit.EntityFormInstance,
		EntityID:   instanceID,
		TenantID:   tenantID,
		ActorID:    actorID,
		AfterState: map[string]string{
			"status":               "draft",
			"owner_coordinator_id": ownerCoordinatorID.Hex(),
		},
	})
}

// ResponsesSaved records a draft save.
func (r *Recorder) ResponsesSaved(ctx context.Context, tenantID, instanceID, actorID primitive.ObjectID, version int64) error {
	return r.Record(ctx, audit.Event{
		Category:   audit.CategoryLifecycle,
		Action:     audit.ActionResponsesSaved,
		EntityType: audit.EntityFormInstance,
		EntityID:   instanceID,
		TenantID:   tenantID,
		ActorID:    actorID,
		AfterState: map[string]string{"version": strconv.FormatInt(version, 10)},
	})
}

// Transition records a state transition with before/after status. Exactly
// one event per real transition; the idempotent finalize no-op records
// nothing.
func (r *Recorder) Transition(ctx context.Context, action string, tenantID, instanceID, actorID primitive.ObjectID, fromStatus, toStatus string, version int64) error {
	return r.Record(ctx, audit.Event{
		Category:   audit.CategoryLifecycle,
		Action:     action,
		EntityType: audit.EntityFormInstance,
		EntityID:   instanceID,
		TenantID:   tenantID,
		ActorID:    actorID,
		BeforeState: map[string]string{
			"status": fromStatus,
		},
		AfterState: map[string]string{
			"status":  toStatus,
			"version": strconv.FormatInt(version, 10),
		},
	})
}
