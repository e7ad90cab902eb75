// internal/app/features/members/members.go
package members

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createRequest holds the fields for a new member.
type createRequest struct {
	TenantID    string `json:"tenant_id"`
	FullName    string `json:"full_name"`
	MemberZone  string `json:"member_zone"`
	PlanType    string `json:"plan_type"`
	PICSScore   int    `json:"pics_score"`
	PanelMember bool   `json:"panel_member"`
}

// ServeCreate handles POST /members.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
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
	if !models.IsValidZone(models.Zone(req.MemberZone)) {
		respond.BadRequest(w, "invalid member_zone")
		return
	}

	created, err := h.Store.Create(r.Context(), models.Member{
		TenantID:    tenantID,
		FullName:    req.FullName,
		MemberZone:  models.Zone(req.MemberZone),
		PlanType:    req.PlanType,
		PICSScore:   req.PICSScore,
		PanelMember: req.PanelMember,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /members/{memberID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		respond.BadRequest(w, "invalid member id")
		return
	}
	member, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, member)
}

// ServeList handles GET /members?tenant={tenantID}&q={name prefix}.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	tenantID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("tenant"))
	if err != nil {
		respond.BadRequest(w, "tenant query parameter is required")
		return
	}
	list, err := h.Store.ListByTenant(r.Context(), tenantID, r.URL.Query().Get("q"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}
