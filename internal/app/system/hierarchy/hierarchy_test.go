// internal/app/system/hierarchy/hierarchy_test.go
package hierarchy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/carehub/internal/app/store/audit"
	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/dalemusser/carehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeCoords is an in-memory CoordinatorSource mirroring the store's
// caseload semantics: capacity-guarded increments, zero-clamped decrements.
type fakeCoords struct {
	byID map[primitive.ObjectID]*models.ServiceCoordinator
}

func newFakeCoords(coords ...*models.ServiceCoordinator) *fakeCoords {
	f := &fakeCoords{byID: map[primitive.ObjectID]*models.ServiceCoordinator{}}
	for _, c := range coords {
		f.byID[c.ID] = c
	}
	return f
}

func (f *fakeCoords) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceCoordinator, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCoords) IncrementCaseload(ctx context.Context, id primitive.ObjectID) (coordinatorstore.CaseloadChange, error) {
	c, ok := f.byID[id]
	if !ok {
		return coordinatorstore.CaseloadChange{}, mongo.ErrNoDocuments
	}
	atCapacity := c.MaxCaseload != nil && c.CurrentCaseload >= *c.MaxCaseload
	if !c.IsActive || atCapacity {
		max := 0
		if c.MaxCaseload != nil {
			max = *c.MaxCaseload
		}
		return coordinatorstore.CaseloadChange{}, &faults.CapacityExceededError{CoordinatorID: id, Current: c.CurrentCaseload, Max: max}
	}
	c.CurrentCaseload++
	return coordinatorstore.CaseloadChange{Before: c.CurrentCaseload - 1, After: c.CurrentCaseload}, nil
}

func (f *fakeCoords) DecrementCaseload(ctx context.Context, id primitive.ObjectID) (coordinatorstore.CaseloadChange, error) {
	c, ok := f.byID[id]
	if !ok {
		return coordinatorstore.CaseloadChange{}, mongo.ErrNoDocuments
	}
	if c.CurrentCaseload == 0 {
		return coordinatorstore.CaseloadChange{Clamped: true}, nil
	}
	c.CurrentCaseload--
	return coordinatorstore.CaseloadChange{Before: c.CurrentCaseload + 1, After: c.CurrentCaseload}, nil
}

func coord(tenantID primitive.ObjectID, supervisorID *primitive.ObjectID) *models.ServiceCoordinator {
	return &models.ServiceCoordinator{
		ID:           primitive.NewObjectID(),
		TenantID:     tenantID,
		SupervisorID: supervisorID,
		IsActive:     true,
	}
}

func newTestValidator(coords CoordinatorSource, sink auditlog.Sink) *Validator {
	var rec *auditlog.Recorder
	if sink != nil {
		rec = auditlog.New(sink, zap.NewNop(), auditlog.Config{Assignment: "db", Lifecycle: "db", Admin: "db"})
	}
	return New(coords, rec, zap.NewNop())
}

func TestValidateEdge_SelfSupervision(t *testing.T) {
	tenantID := primitive.NewObjectID()
	a := coord(tenantID, nil)
	v := newTestValidator(newFakeCoords(a), nil)

	err := v.ValidateEdge(context.Background(), a.ID, a.ID)
	var cycle *faults.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want *faults.CycleError", err)
	}
}

func TestValidateEdge_TransitiveCycle(t *testing.T) {
	tenantID := primitive.NewObjectID()
	// Chain c -> b -> a exists; making c the supervisor of a closes a loop.
	a := coord(tenantID, nil)
	b := coord(tenantID, &a.ID)
	c := coord(tenantID, &b.ID)
	v := newTestValidator(newFakeCoords(a, b, c), nil)

	err := v.ValidateEdge(context.Background(), a.ID, c.ID)
	var cycle *faults.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("err = %v, want *faults.CycleError", err)
	}
	if cycle.CoordinatorID != a.ID {
		t.Errorf("CycleError.CoordinatorID = %s, want %s", cycle.CoordinatorID.Hex(), a.ID.Hex())
	}
}

func TestValidateEdge_ValidChain(t *testing.T) {
	tenantID := primitive.NewObjectID()
	director := coord(tenantID, nil)
	manager := coord(tenantID, &director.ID)
	sup := coord(tenantID, &manager.ID)
	worker := coord(tenantID, nil)
	v := newTestValidator(newFakeCoords(director, manager, sup, worker), nil)

	if err := v.ValidateEdge(context.Background(), worker.ID, sup.ID); err != nil {
		t.Fatalf("ValidateEdge: %v", err)
	}
}

func TestValidateEdge_CrossTenant(t *testing.T) {
	a := coord(primitive.NewObjectID(), nil)
	b := coord(primitive.NewObjectID(), nil)
	v := newTestValidator(newFakeCoords(a, b), nil)

	err := v.ValidateEdge(context.Background(), a.ID, b.ID)
	var cross *faults.CrossTenantError
	if !errors.As(err, &cross) {
		t.Fatalf("err = %v, want *faults.CrossTenantError", err)
	}
}

func TestValidateEdge_CrossTenantInChain(t *testing.T) {
	tenantA := primitive.NewObjectID()
	tenantB := primitive.NewObjectID()
	foreign := coord(tenantB, nil)
	// sup looks fine but its chain crosses into another tenant.
	sup := coord(tenantA, &foreign.ID)
	worker := coord(tenantA, nil)
	v := newTestValidator(newFakeCoords(foreign, sup, worker), nil)

	err := v.ValidateEdge(context.Background(), worker.ID, sup.ID)
	var cross *faults.CrossTenantError
	if !errors.As(err, &cross) {
		t.Fatalf("err = %v, want *faults.CrossTenantError", err)
	}
}

func TestValidateEdge_DepthBound(t *testing.T) {
	tenantID := primitive.NewObjectID()
	// A pre-existing cycle among b<->c would spin the walk forever
	// without the depth bound.
	b := coord(tenantID, nil)
	c := coord(tenantID, &b.ID)
	b.SupervisorID = &c.ID
	worker := coord(tenantID, nil)
	v := newTestValidator(newFakeCoords(b, c, worker), nil)

	err := v.ValidateEdge(context.Background(), worker.ID, b.ID)
	if err == nil {
		t.Fatal("expected error for over-deep chain")
	}
	if !strings.Contains(err.Error(), "depth") {
		t.Errorf("err = %v, want depth-bound failure", err)
	}
}

func TestHasCapacity(t *testing.T) {
	tenantID := primitive.NewObjectID()
	max := 5

	tests := []struct {
		name   string
		mutate func(*models.ServiceCoordinator)
		want   bool
	}{
		{"below max", func(c *models.ServiceCoordinator) { c.MaxCaseload = &max; c.CurrentCaseload = 4 }, true},
		{"at max", func(c *models.ServiceCoordinator) { c.MaxCaseload = &max; c.CurrentCaseload = 5 }, false},
		{"nil max is unlimited", func(c *models.ServiceCoordinator) { c.CurrentCaseload = 9999 }, true},
		{"inactive", func(c *models.ServiceCoordinator) { c.IsActive = false }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := coord(tenantID, nil)
			tc.mutate(c)
			v := newTestValidator(newFakeCoords(c), nil)
			got, err := v.HasCapacity(context.Background(), c.ID)
			if err != nil {
				t.Fatalf("HasCapacity: %v", err)
			}
			if got != tc.want {
				t.Errorf("HasCapacity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAdjustCaseload_IncrementAudited(t *testing.T) {
	tenantID := primitive.NewObjectID()
	c := coord(tenantID, nil)
	c.CurrentCaseload = 2
	sink := &testutil.MemorySink{}
	v := newTestValidator(newFakeCoords(c), sink)
	actorID := primitive.NewObjectID()

	change, err := v.AdjustCaseload(context.Background(), c.ID, +1, actorID, "corr-1")
	if err != nil {
		t.Fatalf("AdjustCaseload: %v", err)
	}
	if change.Before != 2 || change.After != 3 {
		t.Errorf("change = %+v, want before 2 after 3", change)
	}

	events := sink.ByAction(audit.ActionCaseloadAdjusted)
	if len(events) != 1 {
		t.Fatalf("got %d caseload audit events, want exactly 1", len(events))
	}
	ev := events[0]
	if ev.EntityID != c.ID || ev.ActorID != actorID || ev.CorrelationID != "corr-1" {
		t.Errorf("audit event fields = %+v", ev)
	}
	if ev.BeforeState["current_caseload"] != "2" || ev.AfterState["current_caseload"] != "3" {
		t.Errorf("audit before/after = %v / %v, want 2 / 3", ev.BeforeState, ev.AfterState)
	}
}

func TestAdjustCaseload_AtCapacity(t *testing.T) {
	tenantID := primitive.NewObjectID()
	max := 1
	c := coord(tenantID, nil)
	c.MaxCaseload = &max
	c.CurrentCaseload = 1
	sink := &testutil.MemorySink{}
	v := newTestValidator(newFakeCoords(c), sink)

	_, err := v.AdjustCaseload(context.Background(), c.ID, +1, primitive.NewObjectID(), "corr")
	var capErr *faults.CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("err = %v, want *faults.CapacityExceededError", err)
	}
	if len(sink.Events()) != 0 {
		t.Errorf("failed adjustment must not be audited, got %d events", len(sink.Events()))
	}
}

func TestAdjustCaseload_DecrementClampsAtZero(t *testing.T) {
	tenantID := primitive.NewObjectID()
	c := coord(tenantID, nil)
	sink := &testutil.MemorySink{}
	v := newTestValidator(newFakeCoords(c), sink)

	change, err := v.AdjustCaseload(context.Background(), c.ID, -1, primitive.NewObjectID(), "corr")
	if err != nil {
		t.Fatalf("AdjustCaseload: %v", err)
	}
	if !change.Clamped || change.After != 0 {
		t.Errorf("change = %+v, want clamped at zero", change)
	}
	// A clamped decrement still succeeded and still gets its audit pair.
	if len(sink.ByAction(audit.ActionCaseloadAdjusted)) != 1 {
		t.Errorf("clamped decrement must still be audited")
	}
}

func TestAdjustCaseload_AuditFailureFailsAdjustment(t *testing.T) {
	tenantID := primitive.NewObjectID()
	c := coord(tenantID, nil)
	c.CurrentCaseload = 3
	sink := &testutil.MemorySink{Fail: true}
	v := newTestValidator(newFakeCoords(c), sink)

	_, err := v.AdjustCaseload(context.Background(), c.ID, -1, primitive.NewObjectID(), "corr")
	if err == nil {
		t.Fatal("expected audit sink failure to fail the adjustment")
	}
}

func TestAdjustCaseload_RejectsBadDelta(t *testing.T) {
	tenantID := primitive.NewObjectID()
	c := coord(tenantID, nil)
	v := newTestValidator(newFakeCoords(c), nil)

	if _, err := v.AdjustCaseload(context.Background(), c.ID, 2, primitive.NewObjectID(), ""); err == nil {
		t.Fatal("expected error for delta other than ±1")
	}
}
