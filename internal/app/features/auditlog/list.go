// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"time"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/app/store/audit"
	"github.com/dalemusser/carehub/internal/app/system/paging"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeList handles GET /audit.
//
// Supported query parameters: tenant, entity_type, entity, actor,
// category, action, correlation, start, end (RFC 3339), limit, offset.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := paging.Parse(r)

	filter := audit.QueryFilter{
		EntityType:    q.Get("entity_type"),
		Category:      q.Get("category"),
		Action:        q.Get("action"),
		CorrelationID: q.Get("correlation"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	}

	for param, dst := range map[string]**primitive.ObjectID{
		"tenant": &filter.TenantID,
		"entity": &filter.EntityID,
		"actor":  &filter.ActorID,
	} {
		if raw := q.Get(param); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respond.BadRequest(w, "invalid "+param)
				return
			}
			*dst = &id
		}
	}

	for param, dst := range map[string]**time.Time{
		"start": &filter.StartTime,
		"end":   &filter.EndTime,
	} {
		if raw := q.Get(param); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				respond.BadRequest(w, param+" must be RFC 3339")
				return
			}
			*dst = &t
		}
	}

	events, err := h.Store.Query(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	total, err := h.Store.CountByFilter(r.Context(), filter)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  total,
	})
}
