// internal/domain/faults/faults.go
package faults

// Typed errors for the case-routing and form-lifecycle core. Callers branch
// on kind with errors.As; none of these are ever matched by string.
//
// Taxonomy:
//   - configuration: CycleError, CrossTenantError (surfaced to admins, never retried)
//   - business rule:  CapacityExceededError, NoRuleMatchedError (recoverable)
//   - validation:     ValidationError, InvalidTransitionError (user-actionable)
//   - authorization:  AuthorizationError (403-equivalent)
//   - concurrency:    ConcurrencyConflictError (refetch and retry)
//   - infrastructure: PersistenceError (retry with backoff outside the core)

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CycleError reports a proposed supervisory edge that would make the
// coordinator its own (transitive) supervisor.
type CycleError struct {
	CoordinatorID primitive.ObjectID
	SupervisorID  primitive.ObjectID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("supervisor chain of %s cycles back to coordinator %s",
		e.SupervisorID.Hex(), e.CoordinatorID.Hex())
}

// CrossTenantError reports a supervisory edge between coordinators of
// different tenants.
type CrossTenantError struct {
	CoordinatorID primitive.ObjectID
	SupervisorID  primitive.ObjectID
}

func (e *CrossTenantError) Error() string {
	return fmt.Sprintf("coordinator %s and supervisor %s belong to different tenants",
		e.CoordinatorID.Hex(), e.SupervisorID.Hex())
}

// CapacityExceededError reports an assignment that would push a coordinator
// past their maximum caseload, or a role match with no coordinator free.
type CapacityExceededError struct {
	CoordinatorID primitive.ObjectID // zero when no candidate at all had capacity
	Current       int
	Max           int
}

func (e *CapacityExceededError) Error() string {
	if e.CoordinatorID.IsZero() {
		return "no coordinator with available capacity"
	}
	return fmt.Sprintf("coordinator %s is at capacity (%d/%d)",
		e.CoordinatorID.Hex(), e.Current, e.Max)
}

// NoRuleMatchedError reports that no active assignment rule matched the
// case. The case stays unassigned and is queued for manual triage.
type NoRuleMatchedError struct {
	TenantID   primitive.ObjectID
	SurveyType string
}

func (e *NoRuleMatchedError) Error() string {
	return fmt.Sprintf("no active assignment rule matched survey type %q for tenant %s",
		e.SurveyType, e.TenantID.Hex())
}

// ValidationError reports missing or invalid form responses, named so the
// caller can surface actionable messages.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "required responses missing: " + strings.Join(e.Missing, ", ")
}

// InvalidTransitionError reports a lifecycle transition not in the allowed
// table, naming the current and requested states.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition form instance from %s to %s", e.From, e.To)
}

// AuthorizationError reports an actor without authority for the operation.
type AuthorizationError struct {
	ActorID primitive.ObjectID
	Op      string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("actor %s is not authorized to %s", e.ActorID.Hex(), e.Op)
}

// ConcurrencyConflictError reports an optimistic-version mismatch: the
// record changed since the caller last read it. Refetch and retry.
type ConcurrencyConflictError struct {
	EntityType      string
	EntityID        primitive.ObjectID
	ExpectedVersion int64
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %s changed since version %d was read",
		e.EntityType, e.EntityID.Hex(), e.ExpectedVersion)
}

// PersistenceError wraps a backing-store failure. Retryable by the caller
// with backoff; the wrapped error stays reachable via errors.Unwrap.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it already is one (or
// is nil, or is another typed fault that must pass through unchanged).
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		pe *PersistenceError
		cy *CycleError
		ct *CrossTenantError
		ce *CapacityExceededError
		nr *NoRuleMatchedError
		ve *ValidationError
		it *InvalidTransitionError
		ae *AuthorizationError
		cc *ConcurrencyConflictError
	)
	if errors.As(err, &pe) || errors.As(err, &cy) || errors.As(err, &ct) ||
		errors.As(err, &ce) || errors.As(err, &nr) || errors.As(err, &ve) ||
		errors.As(err, &it) || errors.As(err, &ae) || errors.As(err, &cc) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsRecoverable reports whether err is a business-rule fault the caller can
// recover from by falling back (manual queue, next candidate, escalation).
func IsRecoverable(err error) bool {
	var ce *CapacityExceededError
	var nr *NoRuleMatchedError
	return errors.As(err, &ce) || errors.As(err, &nr)
}

// IsConfiguration reports whether err is an administrator-facing
// configuration fault that must never be auto-retried.
func IsConfiguration(err error) bool {
	var cy *CycleError
	var ct *CrossTenantError
	return errors.As(err, &cy) || errors.As(err, &ct)
}

// IsConflict reports whether err is an optimistic-concurrency conflict.
func IsConflict(err error) bool {
	var cc *ConcurrencyConflictError
	return errors.As(err, &cc)
}
