// internal/app/features/tenants/handler.go
package tenants

import (
	"errors"
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	tenantstore "github.com/dalemusser/carehub/internal/app/store/tenants"
	"github.com/dalemusser/carehub/internal/app/system/status"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler manages tenant health plans.
type Handler struct {
	Store *tenantstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a tenants Handler.
func NewHandler(store *tenantstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}

// ServeCreate handles POST /tenants.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		respond.BadRequest(w, "name is required")
		return
	}

	created, err := h.Store.Create(r.Context(), models.Tenant{Name: req.Name, Status: status.Active})
	if err != nil {
		if errors.Is(err, tenantstore.ErrDuplicateTenant) {
			respond.JSON(w, http.StatusConflict, map[string]string{"error": "tenant name already in use"})
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /tenants/{tenantID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "tenantID"))
	if err != nil {
		respond.BadRequest(w, "invalid tenant id")
		return
	}
	tenant, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, tenant)
}

// ServeList handles GET /tenants.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// ServeSetStatus handles PUT /tenants/{tenantID}/status.
func (h *Handler) ServeSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "tenantID"))
	if err != nil {
		respond.BadRequest(w, "invalid tenant id")
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if !status.IsValid(req.Status) {
		respond.BadRequest(w, "status must be active or disabled")
		return
	}
	if err := h.Store.SetStatus(r.Context(), id, req.Status); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": req.Status})
}
