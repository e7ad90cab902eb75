// internal/app/store/coordinators/caseload.go
package coordinatorstore

import (
	"context"
	"time"

	"github.com/dalemusser/carehub/internal/domain/faults"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CaseloadChange reports the result of an atomic caseload adjustment.
type CaseloadChange struct {
	Before  int
	After   int
	Clamped bool // negative delta hit an already-zero counter
}

// IncrementCaseload atomically adds one to a coordinator's caseload.
// The filter enforces the capacity invariant at the database, so two
// concurrent increments against the last free slot cannot both succeed:
// the loser's filter no longer matches and it gets CapacityExceededError.
// Inactive coordinators are never incremented.
func (s *Store) IncrementCaseload(ctx context.Context, id primitive.ObjectID) (CaseloadChange, error) {
	filter := bson.M{
		"_id":       id,
		"is_active": true,
		"$or": bson.A{
			bson.M{"max_caseload": nil},
			bson.M{"max_caseload": bson.M{"$exists": false}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$current_caseload", "$max_caseload"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"current_caseload": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before struct {
		CurrentCaseload int `bson:"current_caseload"`
	}
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == mongo.ErrNoDocuments {
		// Distinguish "at capacity / inactive" from "no such coordinator".
		coord, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return CaseloadChange{}, getErr
		}
		max := 0
		if coord.MaxCaseload != nil {
			max = *coord.MaxCaseload
		}
		return CaseloadChange{}, &faults.CapacityExceededError{
			CoordinatorID: id,
			Current:       coord.CurrentCaseload,
			Max:           max,
		}
	}
	if err != nil {
		return CaseloadChange{}, err
	}
	return CaseloadChange{Before: before.CurrentCaseload, After: before.CurrentCaseload + 1}, nil
}

// DecrementCaseload atomically subtracts one from a coordinator's caseload,
// clamping at zero. A clamp means the counter and reality disagreed; the
// caller logs the inconsistency but the operation still succeeds.
func (s *Store) DecrementCaseload(ctx context.Context, id primitive.ObjectID) (CaseloadChange, error) {
	filter := bson.M{
		"_id":              id,
		"current_caseload": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"current_caseload": -1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var before struct {
		CurrentCaseload int `bson:"current_caseload"`
	}
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == mongo.ErrNoDocuments {
		// Either the coordinator is gone or the counter is already zero.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return CaseloadChange{}, getErr
		}
		return CaseloadChange{Before: 0, After: 0, Clamped: true}, nil
	}
	if err != nil {
		return CaseloadChange{}, err
	}
	return CaseloadChange{Before: before.CurrentCaseload, After: before.CurrentCaseload - 1}, nil
}
