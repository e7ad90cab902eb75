// internal/app/store/coordinators/coordinatorstore.go
package coordinatorstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/carehub/internal/app/system/normalize"
	"github.com/dalemusser/carehub/internal/app/system/search"
	"github.com/dalemusser/carehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrDuplicateEmail is returned when a coordinator's email already exists
	// within the tenant.
	ErrDuplicateEmail = errors.New("a coordinator with this email already exists")
	errBadRole        = errors.New(`role must be "coordinator"|"supervisor"|"manager"|"director"`)
	errBadZone        = errors.New(`zone must be "SW"|"SE"|"NE"|"NW"|"LC"`)
	errBadMax         = errors.New("max_caseload must be positive when set")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("service_coordinators")}
}

// Create inserts a new coordinator after normalizing and validating fields.
// A fresh SCID is minted when none is supplied. Supervisor-chain ids are
// not validated here; callers run the hierarchy validator first.
func (s *Store) Create(ctx context.Context, c models.ServiceCoordinator) (models.ServiceCoordinator, error) {
	c.ID = primitive.NewObjectID()
	c.FullName = normalize.Name(c.FullName)
	c.FullNameCI = text.Fold(c.FullName)
	c.Email = normalize.Email(c.Email)
	c.Role = normalize.Role(c.Role)
	c.Zone = models.Zone(normalize.Zone(string(c.Zone)))
	if c.SCID == "" {
		c.SCID = uuid.NewString()
	}

	switch c.Role {
	case models.RoleCoordinator, models.RoleSupervisor, models.RoleManager, models.RoleDirector:
		// ok
	default:
		return models.ServiceCoordinator{}, errBadRole
	}
	if !models.IsValidZone(c.Zone) {
		return models.ServiceCoordinator{}, errBadZone
	}
	if c.MaxCaseload != nil && *c.MaxCaseload <= 0 {
		return models.ServiceCoordinator{}, errBadMax
	}
	c.CurrentCaseload = 0

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ServiceCoordinator{}, ErrDuplicateEmail
		}
		return models.ServiceCoordinator{}, err
	}
	return c, nil
}

// GetByID loads a coordinator by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceCoordinator, error) {
	var c models.ServiceCoordinator
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetBySCID loads a coordinator by business key within a tenant.
func (s *Store) GetBySCID(ctx context.Context, tenantID primitive.ObjectID, scid string) (*models.ServiceCoordinator, error) {
	var c models.ServiceCoordinator
	if err := s.c.FindOne(ctx, bson.M{"tenant_id": tenantID, "scid": scid}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByTenant returns all coordinators for a tenant sorted by folded
// name, optionally narrowed to a folded-name prefix search.
func (s *Store) ListByTenant(ctx context.Context, tenantID primitive.ObjectID, nameQuery string) ([]models.ServiceCoordinator, error) {
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
	var coords []models.ServiceCoordinator
	if err := cur.All(ctx, &coords); err != nil {
		return nil, err
	}
	return coords, nil
}

// ListCandidates returns the active coordinators of a tenant with the given
// role and zone that still have capacity, sorted by (current_caseload asc,
// _id asc). That sort is the engine's determinism contract: repeated calls
// with the same data pick the same coordinator.
func (s *Store) ListCandidates(ctx context.Context, tenantID primitive.ObjectID, role string, zone models.Zone) ([]models.ServiceCoordinator, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"role":      normalize.Role(role),
		"is_active": true,
		"$or": bson.A{
			bson.M{"max_caseload": nil},
			bson.M{"max_caseload": bson.M{"$exists": false}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$current_caseload", "$max_caseload"}}},
		},
	}
	if zone != "" {
		filter["zone"] = zone
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{
			{Key: "current_caseload", Value: 1},
			{Key: "_id", Value: 1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var coords []models.ServiceCoordinator
	if err := cur.All(ctx, &coords); err != nil {
		return nil, err
	}
	return coords, nil
}

// CoordinatorUpdate holds the administrator-editable fields.
type CoordinatorUpdate struct {
	FullName        string
	Email           string
	Zone            models.Zone
	Role            string
	MaxCaseload     *int
	Specializations []string
	IsActive        bool
}

// Update modifies a coordinator's administrator-editable fields.
// CurrentCaseload and the supervisor chain are deliberately not touched
// here; the former belongs to the assignment engine, the latter goes
// through SetSupervisorChain after hierarchy validation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd CoordinatorUpdate) error {
	upd.Role = normalize.Role(upd.Role)
	upd.Zone = models.Zone(normalize.Zone(string(upd.Zone)))
	switch upd.Role {
	case models.RoleCoordinator, models.RoleSupervisor, models.RoleManager, models.RoleDirector:
	default:
		return errBadRole
	}
	if !models.IsValidZone(upd.Zone) {
		return errBadZone
	}
	if upd.MaxCaseload != nil && *upd.MaxCaseload <= 0 {
		return errBadMax
	}

	set := bson.M{
		"full_name":       normalize.Name(upd.FullName),
		"full_name_ci":    text.Fold(normalize.Name(upd.FullName)),
		"email":           normalize.Email(upd.Email),
		"zone":            upd.Zone,
		"role":            upd.Role,
		"max_caseload":    upd.MaxCaseload,
		"specializations": upd.Specializations,
		"is_active":       upd.IsActive,
		"updated_at":      time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetSupervisorChain writes the supervisory parent ids. Callers must have
// validated the edges with the hierarchy validator first.
func (s *Store) SetSupervisorChain(ctx context.Context, id primitive.ObjectID, supervisorID, managerID, directorID *primitive.ObjectID) error {
	set := bson.M{
		"supervisor_id": supervisorID,
		"manager_id":    managerID,
		"director_id":   directorID,
		"updated_at":    time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
