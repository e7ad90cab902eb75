// internal/app/system/lifecycle/lifecycle.go
package lifecycle

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dalemusser/carehub/internal/app/store/audit"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/app/system/metrics"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// InstanceSource is the slice of the form-instance store the service
// needs.
type InstanceSource interface {
	Create(ctx context.Context, fi models.FormInstance) (models.FormInstance, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormInstance, error)
	VersionedUpdate(ctx context.Context, id primitive.ObjectID, expectVersion int64, set bson.M, unset bson.M) (*models.FormInstance, error)
}

// TemplateSource resolves form templates for submission validation.
type TemplateSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormTemplate, error)
}

// Reviewer decides whether an actor may approve or reject an instance.
// *authz.Provider satisfies it.
type Reviewer interface {
	CanReview(ctx context.Context, actorID, ownerCoordinatorID primitive.ObjectID) (bool, error)
}

// Releaser frees the owning coordinator's caseload when a case closes
// out. *assign.Engine satisfies it.
type Releaser interface {
	ReleaseCase(ctx context.Context, memberID, actorID primitive.ObjectID) error
}

// transitions is the full set of legal status moves.
var transitions = map[string]map[string]bool{
	models.StatusDraft:    {models.StatusPending: true},
	models.StatusPending:  {models.StatusApproved: true, models.StatusRejected: true},
	models.StatusApproved: {models.StatusCompleted: true},
	models.StatusRejected: {models.StatusDraft: true},
}

// Service drives a form instance through its review lifecycle. All
// mutations are version-checked: a stale caller gets a conflict instead
// of clobbering newer work.
type Service struct {
	instances InstanceSource
	templates TemplateSource
	reviewer  Reviewer
	releaser  Releaser
	audit     *auditlog.Recorder
	log       *zap.Logger
}

// New creates a lifecycle Service.
func New(instances InstanceSource, templates TemplateSource, reviewer Reviewer, releaser Releaser, audit *auditlog.Recorder, log *zap.Logger) *Service {
	return &Service{
		instances: instances,
		templates: templates,
		reviewer:  reviewer,
		releaser:  releaser,
		audit:     audit,
		log:       log,
	}
}

// CreateInstance opens a new draft for the member against the template.
func (s *Service) CreateInstance(ctx context.Context, tenantID, templateID, memberID, ownerCoordinatorID, actorID primitive.ObjectID) (*models.FormInstance, error) {
	if _, err := s.templates.GetByID(ctx, templateID); err != nil {
		return nil, faults.Persistence("lifecycle.CreateInstance", err)
	}

	created, err := s.instances.Create(ctx, models.FormInstance{
		TenantID:           tenantID,
		TemplateID:         templateID,
		MemberID:           memberID,
		OwnerCoordinatorID: ownerCoordinatorID,
		Responses:          map[string]string{},
	})
	if err != nil {
		return nil, faults.Persistence("lifecycle.CreateInstance", err)
	}

	if err := s.audit.InstanceCreated(ctx, tenantID, created.ID, ownerCoordinatorID, actorID); err != nil {
		return nil, err
	}
	return &created, nil
}

// SaveResponses merges the given responses into the instance. Only
// draft and rejected instances are editable.
func (s *Service) SaveResponses(ctx context.Context, instanceID primitive.ObjectID, expectVersion int64, responses map[string]string, actorID primitive.ObjectID) (*models.FormInstance, error) {
	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, faults.Persistence("lifecycle.SaveResponses", err)
	}
	if inst.Status != models.StatusDraft && inst.Status != models.StatusRejected {
		return nil, &faults.InvalidTransitionError{From: inst.Status, To: inst.Status}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range responses {
		set["responses."+k] = v
	}

	updated, err := s.versionedUpdate(ctx, instanceID, expectVersion, set, nil)
	if err != nil {
		return nil, err
	}
	if err := s.audit.ResponsesSaved(ctx, updated.TenantID, instanceID, actorID, updated.Version); err != nil {
		return nil, err
	}
	return updated, nil
}

// Transition moves the instance to the requested status.
//
// Submission (draft→pending) validates required template fields and
// stamps SubmittedAt. Review decisions (pending→approved/rejected) are
// restricted to the owner's supervisory chain or a reviewing role in
// the same tenant. Rejecting back to draft (rejected→draft) clears the
// review verdict but keeps the responses. Finalizing (approved→
// completed) also releases the owning coordinator's caseload; a repeat
// finalize of an already-completed instance is an idempotent no-op.
func (s *Service) Transition(ctx context.Context, instanceID primitive.ObjectID, target string, expectVersion int64, actorID primitive.ObjectID, note string) (*models.FormInstance, error) {
	if !models.IsValidStatus(target) {
		return nil, &faults.InvalidTransitionError{From: "", To: target}
	}

	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, faults.Persistence("lifecycle.Transition", err)
	}

	// Repeat finalize: already terminal, nothing to do and no event.
	if inst.Status == models.StatusCompleted && target == models.StatusCompleted {
		return inst, nil
	}

	if !transitions[inst.Status][target] {
		return nil, &faults.InvalidTransitionError{From: inst.Status, To: target}
	}

	set := bson.M{"status": target, "updated_at": time.Now().UTC()}
	var unset bson.M
	action := ""
	now := time.Now().UTC()

	switch target {
	case models.StatusPending:
		if err := s.validateSubmission(ctx, inst); err != nil {
			return nil, err
		}
		set["submitted_at"] = now
		action = audit.ActionInstanceSubmitted

	case models.StatusApproved, models.StatusRejected:
		ok, err := s.reviewer.CanReview(ctx, actorID, inst.OwnerCoordinatorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			op := "approve"
			if target == models.StatusRejected {
				op = "reject"
			}
			return nil, &faults.AuthorizationError{ActorID: actorID, Op: op}
		}
		set["reviewed_by"] = actorID
		set["reviewed_at"] = now
		set["review_note"] = note
		if target == models.StatusApproved {
			action = audit.ActionInstanceApproved
		} else {
			action = audit.ActionInstanceRejected
		}

	case models.StatusDraft:
		// Revision after rejection: verdict cleared, responses kept.
		unset = bson.M{"reviewed_by": "", "reviewed_at": "", "review_note": "", "submitted_at": ""}
		action = audit.ActionInstanceRevised

	case models.StatusCompleted:
		action = audit.ActionInstanceFinalized
	}

	updated, err := s.versionedUpdate(ctx, instanceID, expectVersion, set, unset)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Transition(ctx, action, updated.TenantID, instanceID, actorID, inst.Status, target, updated.Version); err != nil {
		return nil, err
	}
	metrics.FormTransitions.WithLabelValues(action).Inc()

	if target == models.StatusCompleted && s.releaser != nil {
		if err := s.releaser.ReleaseCase(ctx, updated.MemberID, actorID); err != nil {
			// The instance is completed; the caseload release failing is an
			// operational problem, not grounds to unwind the review decision.
			s.log.Error("caseload release on finalize failed",
				zap.Error(err),
				zap.String("instance_id", instanceID.Hex()),
				zap.String("member_id", updated.MemberID.Hex()))
		}
	}
	return updated, nil
}

// validateSubmission checks every required template field has a
// non-empty response.
func (s *Service) validateSubmission(ctx context.Context, inst *models.FormInstance) error {
	tmpl, err := s.templates.GetByID(ctx, inst.TemplateID)
	if err != nil {
		return faults.Persistence("lifecycle.validateSubmission", err)
	}
	var missing []string
	for _, key := range tmpl.RequiredKeys() {
		if inst.Responses[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &faults.ValidationError{Missing: missing}
	}
	return nil
}

func (s *Service) versionedUpdate(ctx context.Context, id primitive.ObjectID, expectVersion int64, set, unset bson.M) (*models.FormInstance, error) {
	updated, err := s.instances.VersionedUpdate(ctx, id, expectVersion, set, unset)
	if err != nil {
		var conflict *faults.ConcurrencyConflictError
		if errors.As(err, &conflict) {
			metrics.VersionConflicts.Inc()
		}
		return nil, err
	}
	return updated, nil
}
