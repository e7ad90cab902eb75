// internal/app/system/hierarchy/hierarchy.go
package hierarchy

import (
	"context"
	"fmt"

	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// maxChainDepth bounds the supervisor walk so corrupt data written before
// validation existed cannot loop the validator itself.
const maxChainDepth = 16

// CoordinatorSource is the slice of the coordinator store the validator
// needs. *coordinatorstore.Store satisfies it.
type CoordinatorSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceCoordinator, error)
	IncrementCaseload(ctx context.Context, id primitive.ObjectID) (coordinatorstore.CaseloadChange, error)
	DecrementCaseload(ctx context.Context, id primitive.ObjectID) (coordinatorstore.CaseloadChange, error)
}

// Validator guards the supervisory tree and the caseload counters.
//
// The tree is parent-id references validated on write, never live object
// pointers, so a cycle cannot be constructed in memory; this validator is
// what keeps one from being constructed in the database either.
type Validator struct {
	coords CoordinatorSource
	audit  *auditlog.Recorder
	log    *zap.Logger
}

// New creates a hierarchy Validator.
func New(coords CoordinatorSource, audit *auditlog.Recorder, log *zap.Logger) *Validator {
	return &Validator{coords: coords, audit: audit, log: log}
}

// ValidateEdge checks that making proposedSupervisorID the supervisor of
// coordinatorID keeps the tree acyclic and within one tenant. Returns
// *faults.CycleError when the proposed supervisor's chain reaches back to
// the coordinator, *faults.CrossTenantError on tenant mismatch.
func (v *Validator) ValidateEdge(ctx context.Context, coordinatorID, proposedSupervisorID primitive.ObjectID) error {
	if coordinatorID == proposedSupervisorID {
		return &faults.CycleError{CoordinatorID: coordinatorID, SupervisorID: proposedSupervisorID}
	}

	coord, err := v.coords.GetByID(ctx, coordinatorID)
	if err != nil {
		return faults.Persistence("hierarchy.ValidateEdge", err)
	}
	sup, err := v.coords.GetByID(ctx, proposedSupervisorID)
	if err != nil {
		return faults.Persistence("hierarchy.ValidateEdge", err)
	}

	if coord.TenantID != sup.TenantID {
		return &faults.CrossTenantError{CoordinatorID: coordinatorID, SupervisorID: proposedSupervisorID}
	}

	// Walk upward from the proposed supervisor. Reaching the coordinator
	// means the new edge would close a loop.
	cur := sup
	for depth := 0; depth < maxChainDepth; depth++ {
		if cur.SupervisorID == nil {
			return nil
		}
		next := *cur.SupervisorID
		if next == coordinatorID {
			return &faults.CycleError{CoordinatorID: coordinatorID, SupervisorID: proposedSupervisorID}
		}
		cur, err = v.coords.GetByID(ctx, next)
		if err != nil {
			return faults.Persistence("hierarchy.ValidateEdge", err)
		}
		if cur.TenantID != coord.TenantID {
			return &faults.CrossTenantError{CoordinatorID: coordinatorID, SupervisorID: next}
		}
	}
	return fmt.Errorf("supervisor chain of %s exceeds depth %d; data needs repair",
		proposedSupervisorID.Hex(), maxChainDepth)
}

// HasCapacity reports whether the coordinator is active and below their
// maximum caseload (a nil maximum means unlimited).
func (v *Validator) HasCapacity(ctx context.Context, coordinatorID primitive.ObjectID) (bool, error) {
	coord, err := v.coords.GetByID(ctx, coordinatorID)
	if err != nil {
		return false, faults.Persistence("hierarchy.HasCapacity", err)
	}
	if !coord.IsActive {
		return false, nil
	}
	if coord.MaxCaseload == nil {
		return true, nil
	}
	return coord.CurrentCaseload < *coord.MaxCaseload, nil
}

// AdjustCaseload atomically applies delta (±1) to the coordinator's
// caseload. A positive delta that would exceed the maximum fails with
// *faults.CapacityExceededError; a negative delta clamps at zero with a
// logged inconsistency warning. Every successful adjustment is paired
// with exactly one audit event carrying the before/after values; an audit
// failure fails the adjustment's enclosing operation.
func (v *Validator) AdjustCaseload(ctx context.Context, coordinatorID primitive.ObjectID, delta int, actorID primitive.ObjectID, correlationID string) (coordinatorstore.CaseloadChange, error) {
	if delta != 1 && delta != -1 {
		return coordinatorstore.CaseloadChange{}, fmt.Errorf("caseload delta must be +1 or -1, got %d", delta)
	}

	coord, err := v.coords.GetByID(ctx, coordinatorID)
	if err != nil {
		return coordinatorstore.CaseloadChange{}, faults.Persistence("hierarchy.AdjustCaseload", err)
	}

	var change coordinatorstore.CaseloadChange
	if delta > 0 {
		change, err = v.coords.IncrementCaseload(ctx, coordinatorID)
	} else {
		change, err = v.coords.DecrementCaseload(ctx, coordinatorID)
	}
	if err != nil {
		return coordinatorstore.CaseloadChange{}, faults.Persistence("hierarchy.AdjustCaseload", err)
	}

	if change.Clamped {
		v.log.Warn("caseload decrement clamped at zero; counter was already inconsistent",
			zap.String("coordinator_id", coordinatorID.Hex()),
			zap.String("correlation_id", correlationID))
	}

	if err := v.audit.CaseloadAdjusted(ctx, coord.TenantID, coordinatorID, actorID, correlationID, change.Before, change.After); err != nil {
		return coordinatorstore.CaseloadChange{}, err
	}
	return change, nil
}
