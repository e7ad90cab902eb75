// internal/app/features/formtemplates/handler.go
package formtemplates

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	templatestore "github.com/dalemusser/carehub/internal/app/store/formtemplates"
	"github.com/dalemusser/carehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler manages form templates.
type Handler struct {
	Store *templatestore.Store
	Log   *zap.Logger
}

// NewHandler constructs a formtemplates Handler.
func NewHandler(store *templatestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}

// createRequest holds the fields for a new template.
type createRequest struct {
	TenantID   string                 `json:"tenant_id"`
	Name       string                 `json:"name"`
	SurveyType string                 `json:"survey_type"`
	Fields     []models.TemplateField `json:"fields"`
}

// ServeCreate handles POST /templates.
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

	created, err := h.Store.Create(r.Context(), models.FormTemplate{
		TenantID:   tenantID,
		Name:       req.Name,
		SurveyType: req.SurveyType,
		Fields:     req.Fields,
	})
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// ServeGet handles GET /templates/{templateID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "templateID"))
	if err != nil {
		respond.BadRequest(w, "invalid template id")
		return
	}
	tmpl, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, tmpl)
}

// ServeList handles GET /templates?tenant={tenantID}.
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
