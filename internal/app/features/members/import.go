// internal/app/features/members/import.go
package members

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/app/system/csvutil"
	"github.com/dalemusser/carehub/internal/app/system/limits"
	"github.com/dalemusser/carehub/internal/app/system/timeouts"
	"github.com/dalemusser/carehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeImport handles POST /members/import?tenant={tenantID}.
//
// The body is a CSV with columns full_name, zone, plan_type, pics_score,
// panel_member (header optional). The whole file is validated before any
// member is written, so a rejected upload changes nothing.
func (h *Handler) ServeImport(w http.ResponseWriter, r *http.Request) {
	tenantID, err := primitive.ObjectIDFromHex(r.URL.Query().Get("tenant"))
	if err != nil {
		respond.BadRequest(w, "tenant query parameter is required")
		return
	}

	body := http.MaxBytesReader(w, r.Body, limits.MaxCSVUpload)
	rows, rowErrs, err := csvutil.ParseMembersCSV(body)
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	if len(rowErrs) > 0 {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error": "upload rejected: one or more rows are invalid",
			"rows":  rowErrs,
		})
		return
	}
	if len(rows) == 0 {
		respond.BadRequest(w, "upload contains no member rows")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "member csv import")
	defer cancel()

	imported := 0
	for _, row := range rows {
		_, err := h.Store.Create(ctx, models.Member{
			TenantID:    tenantID,
			FullName:    row.FullName,
			MemberZone:  row.Zone,
			PlanType:    row.PlanType,
			PICSScore:   row.PICSScore,
			PanelMember: row.PanelMember,
		})
		if err != nil {
			// Validation already passed; this is infrastructure. Report
			// how far we got so the operator can resume from there.
			h.Log.Error("member import failed mid-file",
				zap.Error(err),
				zap.Int("imported", imported),
				zap.Int("total", len(rows)))
			respond.JSON(w, http.StatusInternalServerError, map[string]any{
				"error":    "import failed partway through",
				"imported": imported,
				"total":    len(rows),
			})
			return
		}
		imported++
	}

	respond.JSON(w, http.StatusCreated, map[string]any{"imported": imported})
}
