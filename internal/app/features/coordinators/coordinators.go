// internal/app/features/coordinators/coordinators.go
package coordinators

import (
	"errors"
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createRequest holds the fields for a new coordinator.
type createRequest struct {
	TenantID        string   `json:"tenant_id"`
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Zone            string   `json:"zone"`
	Role            string   `json:"role"`
	MaxCaseload     *int     `json:"max_caseload,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
}

// ServeCreate handles POST /coordinators.
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

	created, err := h.Store.Create(r.Context(), models.ServiceCoordinator{
		TenantID:        tenantID,
		FullName:        req.FullName,
		Email:           req.Email,
		Zone:            models.Zone(req.Zone),
		Role:            req.Role,
		MaxCaseload:     req.MaxCaseload,
		Specializations: req.Specializations,
		IsActive:        true,
	})
	if err != nil {
		if errors.Is(err, coordinatorstore.ErrDuplicateEmail) {
			respond.JSON(w, http.StatusConflict, map[string]string{"error": "email already in use"})
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /coordinators/{coordinatorID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "coordinatorID"))
	if err != nil {
		respond.BadRequest(w, "invalid coordinator id")
		return
	}
	coord, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, coord)
}

// ServeList handles GET /coordinators?tenant={tenantID}&q={name prefix}.
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

// updateRequest holds the administrator-editable fields.
type updateRequest struct {
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Zone            string   `json:"zone"`
	Role            string   `json:"role"`
	MaxCaseload     *int     `json:"max_caseload,omitempty"`
	Specializations []string `json:"specializations,omitempty"`
	IsActive        bool     `json:"is_active"`
}

// ServeUpdate handles PUT /coordinators/{coordinatorID}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "coordinatorID"))
	if err != nil {
		respond.BadRequest(w, "invalid coordinator id")
		return
	}
	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}

	err = h.Store.Update(r.Context(), id, coordinatorstore.CoordinatorUpdate{
		FullName:        req.FullName,
		Email:           req.Email,
		Zone:            models.Zone(req.Zone),
		Role:            req.Role,
		MaxCaseload:     req.MaxCaseload,
		Specializations: req.Specializations,
		IsActive:        req.IsActive,
	})
	if err != nil {
		if errors.Is(err, coordinatorstore.ErrDuplicateEmail) {
			respond.JSON(w, http.StatusConflict, map[string]string{"error": "email already in use"})
			return
		}
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
