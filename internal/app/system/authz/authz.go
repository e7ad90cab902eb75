// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"errors"

	"github.com/dalemusser/carehub/internal/domain/faults"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CoordinatorSource is the coordinator lookup the provider needs.
// *coordinatorstore.Store satisfies it.
type CoordinatorSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceCoordinator, error)
}

// Provider answers authority questions about actors: what roles they hold
// and where they sit relative to a coordinator's supervisory chain. The
// lifecycle's review gate is the main consumer.
type Provider struct {
	coords CoordinatorSource
}

// New creates an authorization Provider.
func New(coords CoordinatorSource) *Provider {
	return &Provider{coords: coords}
}

// reviewRoles hold standing review authority regardless of chain position.
var reviewRoles = map[string]bool{
	models.RoleSupervisor: true,
	models.RoleManager:    true,
	models.RoleDirector:   true,
}

// CanReview reports whether the actor may review (approve/reject) a form
// instance owned by ownerCoordinatorID: either the actor appears in the
// owner's supervisor/manager/director chain, or the actor holds a review
// role within the same tenant.
func (p *Provider) CanReview(ctx context.Context, actorID, ownerCoordinatorID primitive.ObjectID) (bool, error) {
	owner, err := p.coords.GetByID(ctx, ownerCoordinatorID)
	if err != nil {
		return false, faults.Persistence("authz.CanReview", err)
	}

	for _, id := range owner.ChainIDs() {
		if id == actorID {
			return true, nil
		}
	}

	actor, err := p.coords.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// An actor without a coordinator record has no review
			// authority; that is a denial, not a failure.
			return false, nil
		}
		return false, faults.Persistence("authz.CanReview", err)
	}
	if actor.TenantID != owner.TenantID {
		return false, nil
	}
	return actor.IsActive && reviewRoles[actor.Role], nil
}

// HasRole reports whether the actor is an active coordinator holding any
// of the given roles.
func (p *Provider) HasRole(ctx context.Context, actorID primitive.ObjectID, roles ...string) (bool, error) {
	actor, err := p.coords.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, faults.Persistence("authz.HasRole", err)
	}
	if !actor.IsActive {
		return false, nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return true, nil
		}
	}
	return false, nil
}
