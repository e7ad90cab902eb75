// internal/app/store/forminstances/instancestore.go
package instancestore

import (
	"context"
	"time"

	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("form_instances")}
}

// Create inserts a new form instance in draft at version 1.
func (s *Store) Create(ctx context.Context, fi models.FormInstance) (models.FormInstance, error) {
	fi.ID = primitive.NewObjectID()
	fi.Status = models.StatusDraft
	fi.Version = 1
	if fi.Responses == nil {
		fi.Responses = map[string]string{}
	}

	now := time.Now().UTC()
	fi.CreatedAt = now
	fi.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, fi); err != nil {
		return models.FormInstance{}, err
	}
	return fi, nil
}

// GetByID loads a form instance by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormInstance, error) {
	var fi models.FormInstance
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&fi); err != nil {
		return nil, err
	}
	return &fi, nil
}

// ListByOwner returns a coordinator's instances, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerCoordinatorID primitive.ObjectID) ([]models.FormInstance, error) {
	cur, err := s.c.Find(ctx, bson.M{"owner_coordinator_id": ownerCoordinatorID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var instances []models.FormInstance
	if err := cur.All(ctx, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// VersionedUpdate applies set/unset against the instance only when its
// stored version equals expectVersion, bumping the version by one. A
// concurrent writer that got there first changes the version, the filter
// stops matching, and the loser receives ConcurrencyConflictError instead
// of silently overwriting.
func (s *Store) VersionedUpdate(ctx context.Context, id primitive.ObjectID, expectVersion int64, set bson.M, unset bson.M) (*models.FormInstance, error) {
	if set == nil {
		set = bson.M{}
	}
	set["updated_at"] = time.Now().UTC()

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var fi models.FormInstance
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "version": expectVersion},
		update, opts,
	).Decode(&fi)
	if err == mongo.ErrNoDocuments {
		// Filter misses both for a stale version and for a missing
		// instance; look again to tell them apart.
		if _, getErr := s.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, &faults.ConcurrencyConflictError{
			EntityType:      "form_instance",
			EntityID:        id,
			ExpectedVersion: expectVersion,
		}
	}
	if err != nil {
		return nil, err
	}
	return &fi, nil
}
