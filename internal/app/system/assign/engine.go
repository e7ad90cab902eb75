// internal/app/system/assign/engine.go
package assign

import (
	"context"
	"errors"

	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/app/system/metrics"
	"github.com/dalemusser/carehub/internal/app/system/rulematch"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MemberSource is the slice of the member store the engine needs.
type MemberSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error)
	SetAssignedSCID(ctx context.Context, id primitive.ObjectID, scid string) error
}

// CoordinatorSource resolves coordinators for candidate selection.
type CoordinatorSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceCoordinator, error)
	GetBySCID(ctx context.Context, tenantID primitive.ObjectID, scid string) (*models.ServiceCoordinator, error)
	ListCandidates(ctx context.Context, tenantID primitive.ObjectID, role string, zone models.Zone) ([]models.ServiceCoordinator, error)
}

// CandidateFinder yields the matching rule's verdict. *rulematch.Matcher
// satisfies it.
type CandidateFinder interface {
	FindCandidate(ctx context.Context, tenantID primitive.ObjectID, attrs rulematch.CaseAttributes) (rulematch.Candidate, error)
}

// CaseloadKeeper guards capacity and applies counter changes.
// *hierarchy.Validator satisfies it.
type CaseloadKeeper interface {
	HasCapacity(ctx context.Context, coordinatorID primitive.ObjectID) (bool, error)
	AdjustCaseload(ctx context.Context, coordinatorID primitive.ObjectID, delta int, actorID primitive.ObjectID, correlationID string) (coordinatorstore.CaseloadChange, error)
}

// TxRunner wraps a function in a storage transaction. *txn.Runner
// satisfies it.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

var errTenantMismatch = errors.New("member does not belong to the given tenant")

// Result is the outcome of an assignment operation.
type Result struct {
	// Unassigned is true when no rule matched; the case stays open for
	// manual triage and nothing was mutated.
	Unassigned bool

	RuleID      *primitive.ObjectID // nil for manual reassignment / no rule
	Coordinator *models.ServiceCoordinator
	PriorSCID   string

	// CorrelationID ties the audit events of this operation together.
	CorrelationID string
}

// Engine commits binding case assignments: rule verdict plus capacity
// check, applied as one logical transaction with a full audit trail.
// It is the only writer of member.AssignedSCID and of caseload counters.
type Engine struct {
	members   MemberSource
	coords    CoordinatorSource
	matcher   CandidateFinder
	caseloads CaseloadKeeper
	audit     *auditlog.Recorder
	tx        TxRunner
	log       *zap.Logger
}

// New creates an assignment Engine.
func New(members MemberSource, coords CoordinatorSource, matcher CandidateFinder, caseloads CaseloadKeeper, audit *auditlog.Recorder, tx TxRunner, log *zap.Logger) *Engine {
	return &Engine{
		members:   members,
		coords:    coords,
		matcher:   matcher,
		caseloads: caseloads,
		audit:     audit,
		tx:        tx,
		log:       log,
	}
}

// AssignCase routes a case to a coordinator.
//
// The rule matcher picks a candidate; a role candidate resolves to the
// active in-zone coordinator with capacity and the lowest current
// caseload (ties broken by ascending id), a user candidate must itself
// have capacity. On success the new owner's caseload is incremented, a
// prior owner's decremented, and the member's assigned SCID updated —
// atomically: a failure at any step leaves no partial application behind.
//
// No matching rule is not an error to the caller: the case is audited as
// unmatched and returned with Unassigned set.
func (e *Engine) AssignCase(ctx context.Context, tenantID, memberID primitive.ObjectID, attrs rulematch.CaseAttributes, actorID primitive.ObjectID) (Result, error) {
	member, err := e.members.GetByID(ctx, memberID)
	if err != nil {
		return Result{}, faults.Persistence("assign.AssignCase", err)
	}
	if member.TenantID != tenantID {
		return Result{}, errTenantMismatch
	}

	cand, err := e.matcher.FindCandidate(ctx, tenantID, attrs)
	if err != nil {
		var noRule *faults.NoRuleMatchedError
		if errors.As(err, &noRule) {
			if auditErr := e.audit.CaseUnmatched(ctx, tenantID, memberID, actorID, attrs.SurveyType); auditErr != nil {
				return Result{}, auditErr
			}
			metrics.Assignments.WithLabelValues("unassigned").Inc()
			return Result{Unassigned: true}, nil
		}
		return Result{}, err
	}

	target, err := e.resolveCandidate(ctx, tenantID, cand, attrs.Zone)
	if err != nil {
		if faults.IsRecoverable(err) {
			metrics.AssignmentFailures.WithLabelValues("capacity").Inc()
		}
		return Result{}, err
	}

	prior, err := e.priorOwner(ctx, member)
	if err != nil {
		return Result{}, err
	}

	corrID := uuid.NewString()
	if prior != nil && prior.ID == target.ID {
		// Already owned by the selected coordinator; nothing to move.
		if err := e.audit.CaseAssigned(ctx, tenantID, memberID, target.ID, actorID, &cand.RuleID, corrID, member.AssignedSCID, target.SCID); err != nil {
			return Result{}, err
		}
		metrics.Assignments.WithLabelValues("assigned").Inc()
		return Result{RuleID: &cand.RuleID, Coordinator: target, PriorSCID: member.AssignedSCID, CorrelationID: corrID}, nil
	}

	err = e.tx.WithinTransaction(ctx, func(c context.Context) error {
		return e.moveCase(c, member, prior, target, actorID, corrID, func(cc context.Context) error {
			return e.audit.CaseAssigned(cc, tenantID, memberID, target.ID, actorID, &cand.RuleID, corrID, member.AssignedSCID, target.SCID)
		})
	})
	if err != nil {
		if !faults.IsRecoverable(err) {
			metrics.AssignmentFailures.WithLabelValues("persistence").Inc()
		} else {
			metrics.AssignmentFailures.WithLabelValues("capacity").Inc()
		}
		return Result{}, err
	}

	metrics.Assignments.WithLabelValues("assigned").Inc()
	return Result{RuleID: &cand.RuleID, Coordinator: target, PriorSCID: member.AssignedSCID, CorrelationID: corrID}, nil
}

// ReassignCase is the manual override: it bypasses the rule matcher but
// keeps the capacity checks and the transactional/audit guarantees.
func (e *Engine) ReassignCase(ctx context.Context, memberID, newCoordinatorID, actorID primitive.ObjectID) (Result, error) {
	member, err := e.members.GetByID(ctx, memberID)
	if err != nil {
		return Result{}, faults.Persistence("assign.ReassignCase", err)
	}

	target, err := e.coords.GetByID(ctx, newCoordinatorID)
	if err != nil {
		return Result{}, faults.Persistence("assign.ReassignCase", err)
	}
	if target.TenantID != member.TenantID {
		return Result{}, &faults.CrossTenantError{CoordinatorID: newCoordinatorID, SupervisorID: newCoordinatorID}
	}

	prior, err := e.priorOwner(ctx, member)
	if err != nil {
		return Result{}, err
	}

	corrID := uuid.NewString()
	if prior != nil && prior.ID == target.ID {
		if err := e.audit.CaseReassigned(ctx, member.TenantID, memberID, target.ID, actorID, corrID, member.AssignedSCID, target.SCID); err != nil {
			return Result{}, err
		}
		metrics.Assignments.WithLabelValues("reassigned").Inc()
		return Result{Coordinator: target, PriorSCID: member.AssignedSCID, CorrelationID: corrID}, nil
	}

	err = e.tx.WithinTransaction(ctx, func(c context.Context) error {
		return e.moveCase(c, member, prior, target, actorID, corrID, func(cc context.Context) error {
			return e.audit.CaseReassigned(cc, member.TenantID, memberID, target.ID, actorID, corrID, member.AssignedSCID, target.SCID)
		})
	})
	if err != nil {
		if faults.IsRecoverable(err) {
			metrics.AssignmentFailures.WithLabelValues("capacity").Inc()
		} else {
			metrics.AssignmentFailures.WithLabelValues("persistence").Inc()
		}
		return Result{}, err
	}

	metrics.Assignments.WithLabelValues("reassigned").Inc()
	return Result{Coordinator: target, PriorSCID: member.AssignedSCID, CorrelationID: corrID}, nil
}

// ReleaseCase closes out the member's assignment: the owning
// coordinator's caseload is decremented and the member's assigned SCID
// cleared. Releasing an unassigned member is a no-op.
func (e *Engine) ReleaseCase(ctx context.Context, memberID, actorID primitive.ObjectID) error {
	member, err := e.members.GetByID(ctx, memberID)
	if err != nil {
		return faults.Persistence("assign.ReleaseCase", err)
	}
	if member.AssignedSCID == "" {
		return nil
	}

	owner, err := e.priorOwner(ctx, member)
	if err != nil {
		return err
	}
	if owner == nil {
		// Dangling SCID; clear it and move on.
		e.log.Warn("member assigned to unknown coordinator; clearing",
			zap.String("member_id", memberID.Hex()),
			zap.String("assigned_scid", member.AssignedSCID))
		return faults.Persistence("assign.ReleaseCase", e.members.SetAssignedSCID(ctx, memberID, ""))
	}

	corrID := uuid.NewString()
	err = e.tx.WithinTransaction(ctx, func(c context.Context) error {
		if _, err := e.caseloads.AdjustCaseload(c, owner.ID, -1, actorID, corrID); err != nil {
			return err
		}
		if err := e.members.SetAssignedSCID(c, memberID, ""); err != nil {
			e.compensate(c, owner.ID, +1, actorID, corrID)
			return faults.Persistence("assign.ReleaseCase", err)
		}
		if err := e.audit.CaseReleased(c, member.TenantID, memberID, owner.ID, actorID, corrID); err != nil {
			e.restoreSCID(c, memberID, member.AssignedSCID)
			e.compensate(c, owner.ID, +1, actorID, corrID)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.Assignments.WithLabelValues("released").Inc()
	return nil
}

// moveCase applies the caseload and member mutations of an assignment.
// Inside a real transaction, returning an error aborts everything; on
// deployments without transactions the explicit compensation calls undo
// whatever already applied, so no partial application is observable in
// either mode.
func (e *Engine) moveCase(ctx context.Context, member *models.Member, prior, target *models.ServiceCoordinator, actorID primitive.ObjectID, corrID string, emitAudit func(context.Context) error) error {
	if _, err := e.caseloads.AdjustCaseload(ctx, target.ID, +1, actorID, corrID); err != nil {
		return err
	}
	if prior != nil {
		if _, err := e.caseloads.AdjustCaseload(ctx, prior.ID, -1, actorID, corrID); err != nil {
			e.compensate(ctx, target.ID, -1, actorID, corrID)
			return err
		}
	}
	if err := e.members.SetAssignedSCID(ctx, member.ID, target.SCID); err != nil {
		if prior != nil {
			e.compensate(ctx, prior.ID, +1, actorID, corrID)
		}
		e.compensate(ctx, target.ID, -1, actorID, corrID)
		return faults.Persistence("assign.moveCase", err)
	}
	if err := emitAudit(ctx); err != nil {
		e.restoreSCID(ctx, member.ID, member.AssignedSCID)
		if prior != nil {
			e.compensate(ctx, prior.ID, +1, actorID, corrID)
		}
		e.compensate(ctx, target.ID, -1, actorID, corrID)
		return err
	}
	return nil
}

// resolveCandidate turns the matcher's verdict into a concrete
// coordinator with capacity.
func (e *Engine) resolveCandidate(ctx context.Context, tenantID primitive.ObjectID, cand rulematch.Candidate, zone models.Zone) (*models.ServiceCoordinator, error) {
	if cand.UserID != nil {
		coord, err := e.coords.GetByID(ctx, *cand.UserID)
		if err != nil {
			return nil, faults.Persistence("assign.resolveCandidate", err)
		}
		if coord.TenantID != tenantID {
			return nil, &faults.CrossTenantError{CoordinatorID: *cand.UserID, SupervisorID: *cand.UserID}
		}
		ok, err := e.caseloads.HasCapacity(ctx, coord.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			max := 0
			if coord.MaxCaseload != nil {
				max = *coord.MaxCaseload
			}
			return nil, &faults.CapacityExceededError{CoordinatorID: coord.ID, Current: coord.CurrentCaseload, Max: max}
		}
		return coord, nil
	}

	// ListCandidates returns (current_caseload asc, _id asc); the head is
	// the deterministic least-loaded pick.
	candidates, err := e.coords.ListCandidates(ctx, tenantID, cand.Role, zone)
	if err != nil {
		return nil, faults.Persistence("assign.resolveCandidate", err)
	}
	if len(candidates) == 0 {
		return nil, &faults.CapacityExceededError{}
	}
	return &candidates[0], nil
}

// priorOwner resolves the member's current owner by SCID, nil when
// unassigned. A dangling SCID is logged, not fatal.
func (e *Engine) priorOwner(ctx context.Context, member *models.Member) (*models.ServiceCoordinator, error) {
	if member.AssignedSCID == "" {
		return nil, nil
	}
	prior, err := e.coords.GetBySCID(ctx, member.TenantID, member.AssignedSCID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			e.log.Warn("member's assigned coordinator not found",
				zap.String("member_id", member.ID.Hex()),
				zap.String("assigned_scid", member.AssignedSCID))
			return nil, nil
		}
		return nil, faults.Persistence("assign.priorOwner", err)
	}
	return prior, nil
}

// compensate undoes a caseload adjustment during manual rollback. Errors
// are logged, not returned: in a real transaction the abort already
// covers us, and on a transactionless deployment there is nothing better
// to do than record the inconsistency loudly.
func (e *Engine) compensate(ctx context.Context, coordinatorID primitive.ObjectID, delta int, actorID primitive.ObjectID, corrID string) {
	if _, err := e.caseloads.AdjustCaseload(ctx, coordinatorID, delta, actorID, corrID); err != nil {
		e.log.Error("caseload compensation failed",
			zap.Error(err),
			zap.String("coordinator_id", coordinatorID.Hex()),
			zap.Int("delta", delta),
			zap.String("correlation_id", corrID))
	}
}

func (e *Engine) restoreSCID(ctx context.Context, memberID primitive.ObjectID, scid string) {
	if err := e.members.SetAssignedSCID(ctx, memberID, scid); err != nil {
		e.log.Error("member assignment rollback failed",
			zap.Error(err),
			zap.String("member_id", memberID.Hex()))
	}
}
