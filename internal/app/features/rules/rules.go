// internal/app/features/rules/rules.go
package rules

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createRequest holds the fields for a new assignment rule. Exactly one
// of assigned_role / assigned_user_id must be set.
type createRequest struct {
	TenantID       string              `json:"tenant_id"`
	SurveyType     string              `json:"survey_type"`
	Criteria       models.RuleCriteria `json:"criteria"`
	AssignedRole   string              `json:"assigned_role,omitempty"`
	AssignedUserID string              `json:"assigned_user_id,omitempty"`
	Priority       int                 `json:"priority"`
}

// ServeCreate handles POST /rules.
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
	if req.SurveyType == "" {
		respond.BadRequest(w, "survey_type is required")
		return
	}

	rule := models.AssignmentRule{
		TenantID:     tenantID,
		SurveyType:   req.SurveyType,
		Criteria:     req.Criteria,
		AssignedRole: req.AssignedRole,
		Priority:     req.Priority,
		IsActive:     true,
	}
	if req.AssignedUserID != "" {
		userID, err := primitive.ObjectIDFromHex(req.AssignedUserID)
		if err != nil {
			respond.BadRequest(w, "invalid assigned_user_id")
			return
		}
		rule.AssignedUserID = &userID
	}

	created, err := h.Store.Create(r.Context(), rule)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /rules/{ruleID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "ruleID"))
	if err != nil {
		respond.BadRequest(w, "invalid rule id")
		return
	}
	rule, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, rule)
}

// ServeList handles GET /rules?tenant={tenantID}.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	tenantID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("tenant"))
	if err != nil {
		respond.BadRequest(w, "tenant query parameter is required")
		return
	}
	list, err := h.Store.ListByTenant(r.Context(), tenantID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeSetActive handles PUT /rules/{ruleID}/active.
func (h *Handler) ServeSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "ruleID"))
	if err != nil {
		respond.BadRequest(w, "invalid rule id")
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Store.SetActive(r.Context(), id, req.Active); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// ServeSetPriority handles PUT /rules/{ruleID}/priority.
func (h *Handler) ServeSetPriority(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "ruleID"))
	if err != nil {
		respond.BadRequest(w, "invalid rule id")
		return
	}
	var req struct {
		Priority int `json:"priority"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Store.SetPriority(r.Context(), id, req.Priority); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"priority": req.Priority})
}

// ServeDelete handles DELETE /rules/{ruleID}.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "ruleID"))
	if err != nil {
		respond.BadRequest(w, "invalid rule id")
		return
	}
	deleted, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if deleted == 0 {
		respond.NotFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
