// internal/app/store/rules/rulestore.go
package rulestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/carehub/internal/app/system/normalize"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	errNoTarget   = errors.New("rule must set assigned_role or assigned_user_id")
	errBothTarget = errors.New("rule cannot set both assigned_role and assigned_user_id")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignment_rules")}
}

// Create inserts a new assignment rule. Exactly one of AssignedRole /
// AssignedUserID must be set.
func (s *Store) Create(ctx context.Context, r models.AssignmentRule) (models.AssignmentRule, error) {
	r.ID = primitive.NewObjectID()
	r.AssignedRole = normalize.Role(r.AssignedRole)
	if r.Criteria.Zone != nil {
		z := models.Zone(normalize.Zone(string(*r.Criteria.Zone)))
		r.Criteria.Zone = &z
	}

	if r.AssignedRole == "" && r.AssignedUserID == nil {
		return models.AssignmentRule{}, errNoTarget
	}
	if r.AssignedRole != "" && r.AssignedUserID != nil {
		return models.AssignmentRule{}, errBothTarget
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.AssignmentRule{}, err
	}
	return r, nil
}

// GetByID loads a rule by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AssignmentRule, error) {
	var r models.AssignmentRule
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListActive returns a tenant's active rules for a survey type in match
// order: priority ascending, then created_at, then _id. The explicit
// three-key sort keeps the matcher deterministic regardless of how the
// documents happen to be stored.
func (s *Store) ListActive(ctx context.Context, tenantID primitive.ObjectID, surveyType string) ([]models.AssignmentRule, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"tenant_id": tenantID, "survey_type": surveyType, "is_active": true},
		options.Find().SetSort(bson.D{
			{Key: "priority", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rules []models.AssignmentRule
	if err := cur.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// ListByTenant returns all rules for the admin screens, match order.
func (s *Store) ListByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.AssignmentRule, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{
			{Key: "priority", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rules []models.AssignmentRule
	if err := cur.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// SetActive flips a rule's is_active flag.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": active, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetPriority re-ranks a rule.
func (s *Store) SetPriority(ctx context.Context, id primitive.ObjectID, priority int) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"priority": priority, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a rule. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
