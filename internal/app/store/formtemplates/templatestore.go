// internal/app/store/formtemplates/templatestore.go
package templatestore

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

var errNoFields = errors.New("template must define at least one field")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("form_templates")}
}

// Create inserts a new form template.
func (s *Store) Create(ctx context.Context, t models.FormTemplate) (models.FormTemplate, error) {
	t.ID = primitive.NewObjectID()
	t.Name = normalize.Name(t.Name)
	if len(t.Fields) == 0 {
		return models.FormTemplate{}, errNoFields
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.FormTemplate{}, err
	}
	return t, nil
}

// GetByID loads a template by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FormTemplate, error) {
	var t models.FormTemplate
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByTenant returns a tenant's templates sorted by name.
func (s *Store) ListByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.FormTemplate, error) {
	cur, err := s.c.Find(ctx, bson.M{"tenant_id": tenantID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var templates []models.FormTemplate
	if err := cur.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}
