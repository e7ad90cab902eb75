// internal/app/features/coordinators/chain.go
package coordinators

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// chainRequest sets the coordinator's supervisory parents. Null fields
// clear the corresponding link.
type chainRequest struct {
	SupervisorID *string `json:"supervisor_id"`
	ManagerID    *string `json:"manager_id"`
	DirectorID   *string `json:"director_id"`
}

// ServeSetChain handles PUT /coordinators/{coordinatorID}/chain.
//
// Every proposed parent is validated first: same tenant, and no edge
// that would make the coordinator its own transitive supervisor. The
// change is audited with the before and after links.
func (h *Handler) ServeSetChain(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "coordinatorID"))
	if err != nil {
		respond.BadRequest(w, "invalid coordinator id")
		return
	}
	actorID, _ := auth.ActorID(r)

	var req chainRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	supervisorID, err := parseOptionalID(req.SupervisorID)
	if err != nil {
		respond.BadRequest(w, "invalid supervisor_id")
		return
	}
	managerID, err := parseOptionalID(req.ManagerID)
	if err != nil {
		respond.BadRequest(w, "invalid manager_id")
		return
	}
	directorID, err := parseOptionalID(req.DirectorID)
	if err != nil {
		respond.BadRequest(w, "invalid director_id")
		return
	}

	before, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	for _, parent := range []*primitive.ObjectID{supervisorID, managerID, directorID} {
		if parent == nil {
			continue
		}
		if err := h.Hierarchy.ValidateEdge(r.Context(), id, *parent); err != nil {
			respond.Error(w, h.Log, err)
			return
		}
	}

	if err := h.Store.SetSupervisorChain(r.Context(), id, supervisorID, managerID, directorID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	err = h.Audit.ChainChanged(r.Context(), before.TenantID, id, actorID,
		chainState(before.SupervisorID, before.ManagerID, before.DirectorID),
		chainState(supervisorID, managerID, directorID))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	coord, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, coord)
}

func parseOptionalID(raw *string) (*primitive.ObjectID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func chainState(supervisorID, managerID, directorID *primitive.ObjectID) map[string]string {
	state := map[string]string{}
	if supervisorID != nil {
		state["supervisor_id"] = supervisorID.Hex()
	}
	if managerID != nil {
		state["manager_id"] = managerID.Hex()
	}
	if directorID != nil {
		state["director_id"] = directorID.Hex()
	}
	return state
}
