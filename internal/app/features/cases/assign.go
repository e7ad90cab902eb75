// internal/app/features/cases/assign.go
package cases

import (
	"net/http"

	"github.com/dalemusser/carehub/internal/app/features/shared/respond"
	"github.com/dalemusser/carehub/internal/app/system/assign"
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/dalemusser/carehub/internal/app/system/rulematch"
	"github.com/dalemusser/carehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// assignRequest triggers rule-based routing of a member's case.
type assignRequest struct {
	SurveyType      string   `json:"survey_type"`
	Specializations []string `json:"specializations,omitempty"`
}

// assignResponse reports the routing outcome.
type assignResponse struct {
	Unassigned    bool   `json:"unassigned"`
	RuleID        string `json:"rule_id,omitempty"`
	CoordinatorID string `json:"coordinator_id,omitempty"`
	SCID          string `json:"scid,omitempty"`
	PriorSCID     string `json:"prior_scid,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ServeAssign handles POST /cases/{memberID}/assign.
//
// The member's own attributes (zone, plan type, PICS score, panel flag)
// feed the rule predicates; the request supplies the survey type and any
// specialization tags the case calls for.
func (h *Handler) ServeAssign(w http.ResponseWriter, r *http.Request) {
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		respond.BadRequest(w, "invalid member id")
		return
	}
	actorID, _ := auth.ActorID(r)

	var req assignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	if req.SurveyType == "" {
		respond.BadRequest(w, "survey_type is required")
		return
	}

	member, err := h.Members.GetByID(r.Context(), memberID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	attrs := rulematch.CaseAttributes{
		SurveyType:      req.SurveyType,
		Zone:            member.MemberZone,
		PlanType:        member.PlanType,
		PICSScore:       member.PICSScore,
		PanelMember:     member.PanelMember,
		Specializations: req.Specializations,
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "assign case")
	defer cancel()

	result, err := h.Engine.AssignCase(ctx, member.TenantID, memberID, attrs, actorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(result))
}

// reassignRequest names the coordinator to move the case to.
type reassignRequest struct {
	CoordinatorID string `json:"coordinator_id"`
}

// ServeReassign handles POST /cases/{memberID}/reassign: a manual move
// that skips the rule matcher but keeps every other guarantee.
func (h *Handler) ServeReassign(w http.ResponseWriter, r *http.Request) {
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		respond.BadRequest(w, "invalid member id")
		return
	}
	actorID, _ := auth.ActorID(r)

	var req reassignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.BadRequest(w, "invalid request body")
		return
	}
	coordID, err := primitive.ObjectIDFromHex(req.CoordinatorID)
	if err != nil {
		respond.BadRequest(w, "invalid coordinator_id")
		return
	}

	result, err := h.Engine.ReassignCase(r.Context(), memberID, coordID, actorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(result))
}

// ServeRelease handles POST /cases/{memberID}/release.
func (h *Handler) ServeRelease(w http.ResponseWriter, r *http.Request) {
	memberID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "memberID"))
	if err != nil {
		respond.BadRequest(w, "invalid member id")
		return
	}
	actorID, _ := auth.ActorID(r)

	if err := h.Engine.ReleaseCase(r.Context(), memberID, actorID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "released"})
}

func toResponse(result assign.Result) assignResponse {
	resp := assignResponse{
		Unassigned:    result.Unassigned,
		PriorSCID:     result.PriorSCID,
		CorrelationID: result.CorrelationID,
	}
	if result.RuleID != nil {
		resp.RuleID = result.RuleID.Hex()
	}
	if result.Coordinator != nil {
		resp.CoordinatorID = result.Coordinator.ID.Hex()
		resp.SCID = result.Coordinator.SCID
	}
	return resp
}
