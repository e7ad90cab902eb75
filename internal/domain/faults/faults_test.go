// internal/domain/faults/faults_test.go
package faults

import (
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestPersistence(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if got := Persistence("op", nil); got != nil {
			t.Errorf("Persistence(nil) = %v", got)
		}
	})

	t.Run("wraps infrastructure errors", func(t *testing.T) {
		inner := errors.New("connection reset")
		err := Persistence("store.GetByID", inner)
		var pe *PersistenceError
		if !errors.As(err, &pe) {
			t.Fatalf("err = %T, want *PersistenceError", err)
		}
		if pe.Op != "store.GetByID" {
			t.Errorf("Op = %q", pe.Op)
		}
		if !errors.Is(err, inner) {
			t.Error("wrapped error must stay reachable via errors.Is")
		}
	})

	t.Run("does not double-wrap", func(t *testing.T) {
		inner := Persistence("a", errors.New("x"))
		outer := Persistence("b", inner)
		if outer != inner {
			t.Error("an existing PersistenceError must pass through unchanged")
		}
	})

	t.Run("typed faults pass through", func(t *testing.T) {
		for _, fault := range []error{
			&CycleError{},
			&CrossTenantError{},
			&CapacityExceededError{},
			&NoRuleMatchedError{},
			&ValidationError{},
			&InvalidTransitionError{},
			&AuthorizationError{},
			&ConcurrencyConflictError{},
		} {
			if got := Persistence("op", fault); got != fault {
				t.Errorf("Persistence wrapped %T", fault)
			}
		}
	})

	t.Run("keeps ErrNoDocuments reachable", func(t *testing.T) {
		err := Persistence("store.GetByID", mongo.ErrNoDocuments)
		if !errors.Is(err, mongo.ErrNoDocuments) {
			t.Error("errors.Is must still see mongo.ErrNoDocuments through the wrapper")
		}
	})
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(&CapacityExceededError{}) || !IsRecoverable(&NoRuleMatchedError{}) {
		t.Error("capacity and no-rule faults are recoverable")
	}
	if IsRecoverable(&CycleError{}) || IsRecoverable(errors.New("boom")) {
		t.Error("configuration and plain errors are not recoverable")
	}
}

func TestIsConfiguration(t *testing.T) {
	if !IsConfiguration(&CycleError{}) || !IsConfiguration(&CrossTenantError{}) {
		t.Error("cycle and cross-tenant faults are configuration faults")
	}
	if IsConfiguration(&CapacityExceededError{}) {
		t.Error("capacity faults are not configuration faults")
	}
}

func TestIsConflict(t *testing.T) {
	if !IsConflict(&ConcurrencyConflictError{}) {
		t.Error("version conflicts are conflicts")
	}
	if IsConflict(&ValidationError{}) {
		t.Error("validation faults are not conflicts")
	}
}

func TestMessages(t *testing.T) {
	id := primitive.NewObjectID()

	ve := &ValidationError{Missing: []string{"mobility", "nutrition"}}
	if !strings.Contains(ve.Error(), "mobility, nutrition") {
		t.Errorf("ValidationError message %q must name the missing fields", ve.Error())
	}

	it := &InvalidTransitionError{From: "draft", To: "completed"}
	if !strings.Contains(it.Error(), "draft") || !strings.Contains(it.Error(), "completed") {
		t.Errorf("InvalidTransitionError message %q must name both states", it.Error())
	}

	capErr := &CapacityExceededError{CoordinatorID: id, Current: 5, Max: 5}
	if !strings.Contains(capErr.Error(), "5/5") {
		t.Errorf("CapacityExceededError message %q must show the load", capErr.Error())
	}
	if !strings.Contains((&CapacityExceededError{}).Error(), "no coordinator") {
		t.Error("zero-id capacity fault has its own message")
	}
}
