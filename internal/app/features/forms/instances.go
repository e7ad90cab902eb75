// internal/app/features/forms/instances.go
package forms

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createRequest opens a new draft instance.
type createRequest struct {
	TenantID           string `json:"tenant_id"`
	TemplateID         string `json:"template_id"`
	MemberID           string `json:"member_id"`
	OwnerCoordinatorID string `json:"owner_coordinator_id"`
}

// ServeCreate handles POST /forms.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorID(r)

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	tenantID, err := primitive.ObjectIDFromHex(req.TenantID)
	if err != nil {
		respond.BadRequest(w, "invalid tenant_id")
		return
	}
	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		respond.BadRequest(w, "invalid template_id")
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		respond.BadRequest(w, "invalid member_id")
		return
	}
	ownerID, err := primitive.ObjectIDFromHex(req.OwnerCoordinatorID)
	if err != nil {
		respond.BadRequest(w, "invalid owner_coordinator_id")
		return
	}

	inst, err := h.Service.CreateInstance(r.Context(), tenantID, templateID, memberID, ownerID, actorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, inst)
}

// ServeGet handles GET /forms/{instanceID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "instanceID"))
	if err != nil {
		respond.BadRequest(w, "invalid instance id")
		return
	}
	inst, err := h.Instances.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, inst)
}

// ServeListByOwner handles GET /forms?owner={coordinatorID}.
func (h *Handler) ServeListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("owner"))
	if err != nil {
		respond.BadRequest(w, "owner query parameter is required")
		return
	}
	list, err := h.Instances.ListByOwner(r.Context(), ownerID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// saveRequest carries a partial response update against a known version.
type saveRequest struct {
	ExpectedVersion int64             `json:"expected_version"`
	Responses       map[string]string `json:"responses"`
}

// ServeSaveResponses handles PUT /forms/{instanceID}/responses.
func (h *Handler) ServeSaveResponses(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "instanceID"))
	if err != nil {
		respond.BadRequest(w, "invalid instance id")
		return
	}
	actorID, _ := auth.ActorID(r)

	var req saveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if len(req.Responses) == 0 {
		respond.BadRequest(w, "responses must not be empty")
		return
	}

	inst, err := h.Service.SaveResponses(r.Context(), id, req.ExpectedVersion, req.Responses, actorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, inst)
}

// transitionRequest carries the version the caller last read, plus an
// optional review note for approve/reject.
type transitionRequest struct {
	ExpectedVersion int64  `json:"expected_version"`
	Note            string `json:"note,omitempty"`
}

func (h *Handler) transition(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "instanceID"))
		if err != nil {
			respond.BadRequest(w, "invalid instance id")
			return
		}
		actorID, _ := auth.ActorID(r)

		var req transitionRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.BadRequest(w, "invalid request body")
			return
		}

		inst, err := h.Service.Transition(r.Context(), id, target, req.ExpectedVersion, actorID, req.Note)
		if err != nil {
			respond.Error(w, h.Log, err)
			return
		}
		respond.JSON(w, http.StatusOK, inst)
	}
}

// ServeSubmit handles POST /forms/{instanceID}/submit (draft -> pending).
func (h *Handler) ServeSubmit(w http.ResponseWriter, r *http.Request) {
	h.transition(models.StatusPending)(w, r)
}

// ServeApprove handles POST /forms/{instanceID}/approve (pending -> approved).
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(models.StatusApproved)(w, r)
}

// ServeReject handles POST /forms/{instanceID}/reject (pending -> rejected).
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	h.transition(models.StatusRejected)(w, r)
}

// ServeRevise handles POST /forms/{instanceID}/revise (rejected -> draft).
func (h *Handler) ServeRevise(w http.ResponseWriter, r *http.Request) {
	h.transition(models.StatusDraft)(w, r)
}

// ServeFinalize handles POST /forms/{instanceID}/finalize
// (approved -> completed; repeat calls are no-ops).
func (h *Handler) ServeFinalize(w http.ResponseWriter, r *http.Request) {
	h.transition(models.StatusCompleted)(w, r)
}
