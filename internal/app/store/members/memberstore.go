// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"time"

	"github.com/dalemusser/carehub/internal/app/system/normalize"
	"github.com/dalemusser/carehub/internal/app/system/search"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// Create inserts a new member after normalizing fields.
func (s *Store) Create(ctx context.Context, m models.Member) (models.Member, error) {
	m.ID = primitive.NewObjectID()
	m.FullName = normalize.Name(m.FullName)
	m.FullNameCI = text.Fold(m.FullName)
	m.MemberZone = models.Zone(normalize.Zone(string(m.MemberZone)))
	m.PlanType = normalize.PlanType(m.PlanType)

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Member{}, err
	}
	return m, nil
}

// GetByID loads a member by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	var m models.Member
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByTenant returns a tenant's members sorted by folded name,
// optionally narrowed to a folded-name prefix search.
func (s *Store) ListByTenant(ctx context.Context, tenantID primitive.ObjectID, nameQuery string) ([]models.Member, error) {
	filter := bson.M{"tenant_id": tenantID}
	if nf := search.NameFilter(nameQuery); nf != nil {
		filter["full_name_ci"] = nf["full_name_ci"]
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// SetAssignedSCID records the owning coordinator's business key on the
// member. Called only by the assignment engine; an empty scid clears the
// assignment.
func (s *Store) SetAssignedSCID(ctx context.Context, id primitive.ObjectID, scid string) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	update := bson.M{"$set": set}
	if scid == "" {
		update["$unset"] = bson.M{"assigned_scid": ""}
	} else {
		set["assigned_scid"] = scid
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
