// internal/app/system/lifecycle/lifecycle_test.go
package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dalemusser/carehub/internal/app/store/audit"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/dalemusser/carehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeInstances mirrors the store's draft/version-1 creation and the
// compare-and-swap VersionedUpdate.
type fakeInstances struct {
	byID map[primitive.ObjectID]*models.FormInstance
}

func newFakeInstances() *fakeInstances {
	return &fakeInstances{byID: map[primitive.ObjectID]*models.FormInstance{}}
}

func (f *fakeInstances) Create(ctx context.Context, fi models.FormInstance) (models.FormInstance, error) {
	fi.ID = primitive.NewObjectID()
	fi.Status = models.StatusDraft
	fi.Version = 1
	if fi.Responses == nil {
		fi.Responses = map[string]string{}
	}
	cp := fi
	f.byID[fi.ID] = &cp
	return fi, nil
}

func (f *fakeInstances) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormInstance, error) {
	fi, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *fi
	cp.Responses = map[string]string{}
	for k, v := range fi.Responses {
		cp.Responses[k] = v
	}
	return &cp, nil
}

func (f *fakeInstances) VersionedUpdate(ctx context.Context, id primitive.ObjectID, expectVersion int64, set bson.M, unset bson.M) (*models.FormInstance, error) {
	fi, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if fi.Version != expectVersion {
		return nil, &faults.ConcurrencyConflictError{EntityType: "form_instance", EntityID: id, ExpectedVersion: expectVersion}
	}
	for k, v := range set {
		switch {
		case k == "status":
			fi.Status = v.(string)
		case k == "submitted_at":
			t := v.(time.Time)
			fi.SubmittedAt = &t
		case k == "reviewed_by":
			a := v.(primitive.ObjectID)
			fi.ReviewedBy = &a
		case k == "reviewed_at":
			t := v.(time.Time)
			fi.ReviewedAt = &t
		case k == "review_note":
			fi.ReviewNote = v.(string)
		case k == "updated_at":
			fi.UpdatedAt = v.(time.Time)
		case len(k) > len("responses.") && k[:len("responses.")] == "responses.":
			fi.Responses[k[len("responses."):]] = v.(string)
		}
	}
	for k := range unset {
		switch k {
		case "submitted_at":
			fi.SubmittedAt = nil
		case "reviewed_by":
			fi.ReviewedBy = nil
		case "reviewed_at":
			fi.ReviewedAt = nil
		case "review_note":
			fi.ReviewNote = ""
		}
	}
	fi.Version++
	cp := *fi
	return &cp, nil
}

type fakeTemplates struct {
	byID map[primitive.ObjectID]*models.FormTemplate
}

func (f *fakeTemplates) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormTemplate, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *t
	return &cp, nil
}

type fakeReviewer struct {
	allow bool
	err   error
}

func (f *fakeReviewer) CanReview(ctx context.Context, actorID, ownerCoordinatorID primitive.ObjectID) (bool, error) {
	return f.allow, f.err
}

type fakeReleaser struct {
	released []primitive.ObjectID
	err      error
}

func (f *fakeReleaser) ReleaseCase(ctx context.Context, memberID, actorID primitive.ObjectID) error {
	if f.err != nil {
		return f.err
	}
	f.released = append(f.released, memberID)
	return nil
}

type lifecycleFixture struct {
	tenantID  primitive.ObjectID
	ownerID   primitive.ObjectID
	actorID   primitive.ObjectID
	template  *models.FormTemplate
	instances *fakeInstances
	reviewer  *fakeReviewer
	releaser  *fakeReleaser
	sink      *testutil.MemorySink
	svc       *Service
}

func newLifecycleFixture(t *testing.T, requiredKeys ...string) *lifecycleFixture {
	t.Helper()
	f := &lifecycleFixture{
		tenantID:  primitive.NewObjectID(),
		ownerID:   primitive.NewObjectID(),
		actorID:   primitive.NewObjectID(),
		instances: newFakeInstances(),
		reviewer:  &fakeReviewer{allow: true},
		releaser:  &fakeReleaser{},
		sink:      &testutil.MemorySink{},
	}
	fields := make([]models.TemplateField, 0, len(requiredKeys))
	for _, k := range requiredKeys {
		fields = append(fields, models.TemplateField{Key: k, Label: k, Required: true})
	}
	f.template = &models.FormTemplate{
		ID:         primitive.NewObjectID(),
		TenantID:   f.tenantID,
		Name:       "annual assessment",
		SurveyType: "hra",
		Fields:     fields,
	}
	templates := &fakeTemplates{byID: map[primitive.ObjectID]*models.FormTemplate{f.template.ID: f.template}}
	rec := auditlog.New(f.sink, zap.NewNop(), auditlog.Config{Assignment: "db", Lifecycle: "db", Admin: "db"})
	f.svc = New(f.instances, templates, f.reviewer, f.releaser, rec, zap.NewNop())
	return f
}

// newInstance creates a draft and force-sets its status and responses.
func (f *lifecycleFixture) newInstance(t *testing.T, status string, responses map[string]string) *models.FormInstance {
	t.Helper()
	inst, err := f.svc.CreateInstance(context.Background(), f.tenantID, f.template.ID, primitive.NewObjectID(), f.ownerID, f.actorID)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	stored := f.instances.byID[inst.ID]
	stored.Status = status
	for k, v := range responses {
		stored.Responses[k] = v
	}
	cp := *stored
	return &cp
}

func TestCreateInstance(t *testing.T) {
	f := newLifecycleFixture(t)
	memberID := primitive.NewObjectID()

	inst, err := f.svc.CreateInstance(context.Background(), f.tenantID, f.template.ID, memberID, f.ownerID, f.actorID)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	if inst.Status != models.StatusDraft {
		t.Errorf("Status = %q, want draft", inst.Status)
	}
	if inst.Version != 1 {
		t.Errorf("Version = %d, want 1", inst.Version)
	}
	if len(f.sink.ByAction(audit.ActionInstanceCreated)) != 1 {
		t.Errorf("want exactly one instance_created audit event")
	}
}

func TestCreateInstance_UnknownTemplate(t *testing.T) {
	f := newLifecycleFixture(t)
	_, err := f.svc.CreateInstance(context.Background(), f.tenantID, primitive.NewObjectID(), primitive.NewObjectID(), f.ownerID, f.actorID)
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestSaveResponses(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusDraft, nil)

	updated, err := f.svc.SaveResponses(context.Background(), inst.ID, inst.Version,
		map[string]string{"mobility": "independent"}, f.actorID)
	if err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	if updated.Responses["mobility"] != "independent" {
		t.Errorf("Responses = %v", updated.Responses)
	}
	if updated.Version != inst.Version+1 {
		t.Errorf("Version = %d, want %d", updated.Version, inst.Version+1)
	}
}

func TestSaveResponses_MergesWithoutDroppingPrior(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusDraft, map[string]string{"mobility": "independent"})

	updated, err := f.svc.SaveResponses(context.Background(), inst.ID, inst.Version,
		map[string]string{"nutrition": "adequate"}, f.actorID)
	if err != nil {
		t.Fatalf("SaveResponses: %v", err)
	}
	want := map[string]string{"mobility": "independent", "nutrition": "adequate"}
	if !reflect.DeepEqual(updated.Responses, want) {
		t.Errorf("Responses = %v, want %v", updated.Responses, want)
	}
}

func TestSaveResponses_EditableStatusesOnly(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusApproved, models.StatusCompleted} {
		t.Run(status, func(t *testing.T) {
			f := newLifecycleFixture(t)
			inst := f.newInstance(t, status, nil)

			_, err := f.svc.SaveResponses(context.Background(), inst.ID, inst.Version,
				map[string]string{"x": "y"}, f.actorID)
			var invalid *faults.InvalidTransitionError
			if !errors.As(err, &invalid) {
				t.Fatalf("err = %v, want *faults.InvalidTransitionError", err)
			}
		})
	}
}

func TestSaveResponses_RejectedIsEditable(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusRejected, nil)

	if _, err := f.svc.SaveResponses(context.Background(), inst.ID, inst.Version,
		map[string]string{"x": "y"}, f.actorID); err != nil {
		t.Fatalf("SaveResponses on rejected instance: %v", err)
	}
}

func TestSaveResponses_StaleVersion(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusDraft, nil)

	_, err := f.svc.SaveResponses(context.Background(), inst.ID, inst.Version+5,
		map[string]string{"x": "y"}, f.actorID)
	var conflict *faults.ConcurrencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *faults.ConcurrencyConflictError", err)
	}
}

func TestTransition_Table(t *testing.T) {
	all := []string{models.StatusDraft, models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCompleted}
	legal := map[string]map[string]bool{
		models.StatusDraft:    {models.StatusPending: true},
		models.StatusPending:  {models.StatusApproved: true, models.StatusRejected: true},
		models.StatusApproved: {models.StatusCompleted: true},
		models.StatusRejected: {models.StatusDraft: true},
	}

	for _, from := range all {
		for _, to := range all {
			if from == models.StatusCompleted && to == models.StatusCompleted {
				continue // idempotent repeat finalize, covered separately
			}
			t.Run(from+"_to_"+to, func(t *testing.T) {
				f := newLifecycleFixture(t)
				inst := f.newInstance(t, from, nil)

				_, err := f.svc.Transition(context.Background(), inst.ID, to, inst.Version, f.actorID, "")
				if legal[from][to] {
					if err != nil {
						t.Fatalf("Transition(%s→%s): %v", from, to, err)
					}
					return
				}
				var invalid *faults.InvalidTransitionError
				if !errors.As(err, &invalid) {
					t.Fatalf("Transition(%s→%s) err = %v, want *faults.InvalidTransitionError", from, to, err)
				}
				if f.instances.byID[inst.ID].Status != from {
					t.Errorf("status changed to %q on rejected transition", f.instances.byID[inst.ID].Status)
				}
			})
		}
	}
}

func TestTransition_UnknownStatus(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusDraft, nil)

	_, err := f.svc.Transition(context.Background(), inst.ID, "archived", inst.Version, f.actorID, "")
	var invalid *faults.InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want *faults.InvalidTransitionError", err)
	}
}

func TestTransition_SubmitValidatesRequiredFields(t *testing.T) {
	f := newLifecycleFixture(t, "mobility", "nutrition", "cognition")
	inst := f.newInstance(t, models.StatusDraft, map[string]string{"nutrition": "adequate"})

	_, err := f.svc.Transition(context.Background(), inst.ID, models.StatusPending, inst.Version, f.actorID, "")
	var ve *faults.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *faults.ValidationError", err)
	}
	want := []string{"cognition", "mobility"}
	if !reflect.DeepEqual(ve.Missing, want) {
		t.Errorf("Missing = %v, want %v (sorted)", ve.Missing, want)
	}
	if f.instances.byID[inst.ID].Status != models.StatusDraft {
		t.Error("failed submission must leave the instance in draft")
	}
}

func TestTransition_Submit(t *testing.T) {
	f := newLifecycleFixture(t, "mobility")
	inst := f.newInstance(t, models.StatusDraft, map[string]string{"mobility": "independent"})

	updated, err := f.svc.Transition(context.Background(), inst.ID, models.StatusPending, inst.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.StatusPending {
		t.Errorf("Status = %q, want pending", updated.Status)
	}
	if updated.SubmittedAt == nil {
		t.Error("SubmittedAt not stamped")
	}
	if len(f.sink.ByAction(audit.ActionInstanceSubmitted)) != 1 {
		t.Errorf("want exactly one instance_submitted audit event")
	}
}

func TestTransition_ApproveRecordsReviewer(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusPending, nil)

	updated, err := f.svc.Transition(context.Background(), inst.ID, models.StatusApproved, inst.Version, f.actorID, "looks complete")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.ReviewedBy == nil || *updated.ReviewedBy != f.actorID {
		t.Errorf("ReviewedBy = %v, want %s", updated.ReviewedBy, f.actorID.Hex())
	}
	if updated.ReviewedAt == nil {
		t.Error("ReviewedAt not stamped")
	}
	if updated.ReviewNote != "looks complete" {
		t.Errorf("ReviewNote = %q", updated.ReviewNote)
	}
	if len(f.sink.ByAction(audit.ActionInstanceApproved)) != 1 {
		t.Errorf("want exactly one instance_approved audit event")
	}
}

func TestTransition_ReviewRequiresAuthority(t *testing.T) {
	for _, target := range []string{models.StatusApproved, models.StatusRejected} {
		t.Run(target, func(t *testing.T) {
			f := newLifecycleFixture(t)
			f.reviewer.allow = false
			inst := f.newInstance(t, models.StatusPending, nil)

			_, err := f.svc.Transition(context.Background(), inst.ID, target, inst.Version, f.actorID, "")
			var authErr *faults.AuthorizationError
			if !errors.As(err, &authErr) {
				t.Fatalf("err = %v, want *faults.AuthorizationError", err)
			}
			if f.instances.byID[inst.ID].Status != models.StatusPending {
				t.Error("denied review must not change status")
			}
		})
	}
}

func TestTransition_ReviseClearsVerdictKeepsResponses(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusRejected, map[string]string{"mobility": "assisted"})
	stored := f.instances.byID[inst.ID]
	now := time.Now().UTC()
	reviewer := primitive.NewObjectID()
	stored.ReviewedBy = &reviewer
	stored.ReviewedAt = &now
	stored.ReviewNote = "needs detail"
	stored.SubmittedAt = &now

	updated, err := f.svc.Transition(context.Background(), inst.ID, models.StatusDraft, inst.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.ReviewedBy != nil || updated.ReviewedAt != nil || updated.ReviewNote != "" || updated.SubmittedAt != nil {
		t.Errorf("revision must clear the review verdict, got %+v", updated)
	}
	if updated.Responses["mobility"] != "assisted" {
		t.Error("revision must keep the responses")
	}
	if len(f.sink.ByAction(audit.ActionInstanceRevised)) != 1 {
		t.Errorf("want exactly one instance_revised audit event")
	}
}

func TestTransition_FinalizeReleasesCaseload(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusApproved, nil)
	memberID := f.instances.byID[inst.ID].MemberID

	updated, err := f.svc.Transition(context.Background(), inst.ID, models.StatusCompleted, inst.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("Status = %q, want completed", updated.Status)
	}
	if len(f.releaser.released) != 1 || f.releaser.released[0] != memberID {
		t.Errorf("released = %v, want [%s]", f.releaser.released, memberID.Hex())
	}
	if len(f.sink.ByAction(audit.ActionInstanceFinalized)) != 1 {
		t.Errorf("want exactly one instance_finalized audit event")
	}
}

func TestTransition_RepeatFinalizeIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusApproved, nil)

	first, err := f.svc.Transition(context.Background(), inst.ID, models.StatusCompleted, inst.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	second, err := f.svc.Transition(context.Background(), inst.ID, models.StatusCompleted, first.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("repeat finalize: %v", err)
	}
	if second.Version != first.Version {
		t.Errorf("repeat finalize bumped version %d -> %d", first.Version, second.Version)
	}
	if len(f.sink.ByAction(audit.ActionInstanceFinalized)) != 1 {
		t.Errorf("repeat finalize must not emit a second audit event")
	}
	if len(f.releaser.released) != 1 {
		t.Errorf("repeat finalize must not release again, released %d times", len(f.releaser.released))
	}
}

func TestTransition_FinalizeSurvivesReleaseFailure(t *testing.T) {
	f := newLifecycleFixture(t)
	f.releaser.err = errors.New("caseload store unavailable")
	inst := f.newInstance(t, models.StatusApproved, nil)

	updated, err := f.svc.Transition(context.Background(), inst.ID, models.StatusCompleted, inst.Version, f.actorID, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Error("release failure must not unwind the finalize")
	}
}

func TestTransition_StaleVersion(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusDraft, nil)

	_, err := f.svc.Transition(context.Background(), inst.ID, models.StatusPending, inst.Version+3, f.actorID, "")
	var conflict *faults.ConcurrencyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want *faults.ConcurrencyConflictError", err)
	}
	if conflict.ExpectedVersion != inst.Version+3 {
		t.Errorf("ExpectedVersion = %d", conflict.ExpectedVersion)
	}
}

func TestTransition_AuditFailureFailsTransition(t *testing.T) {
	f := newLifecycleFixture(t)
	inst := f.newInstance(t, models.StatusPending, nil)
	f.sink.Fail = true

	_, err := f.svc.Transition(context.Background(), inst.ID, models.StatusApproved, inst.Version, f.actorID, "")
	if err == nil {
		t.Fatal("expected audit sink failure to fail the transition")
	}
}
