// internal/app/features/shared/respond/respond.go
//
// JSON response helpers shared by every feature handler, including the
// single mapping from the core's typed faults to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/carehub/internal/app/system/limits"
	"github.com/dalemusser/carehub/internal/domain/faults"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`

	// Populated for kinds that carry actionable detail.
	Missing         []string `json:"missing,omitempty"`
	From            string   `json:"from,omitempty"`
	To              string   `json:"to,omitempty"`
	ExpectedVersion int64    `json:"expected_version,omitempty"`
}

// Error maps err to an HTTP status and writes the error envelope.
//
// The mapping follows the fault taxonomy: validation and transition
// faults are 4xx the caller can fix, conflicts are 409, capacity is 409
// (retry against another coordinator, or raise limits), configuration
// faults are 422, authorization is 403, not-found is 404, and anything
// infrastructural is a logged 500.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		cy *faults.CycleError
		ct *faults.CrossTenantError
		ce *faults.CapacityExceededError
		nr *faults.NoRuleMatchedError
		ve *faults.ValidationError
		it *faults.InvalidTransitionError
		ae *faults.AuthorizationError
		cc *faults.ConcurrencyConflictError
	)

	switch {
	case errors.As(err, &ve):
		JSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "validation", Missing: ve.Missing})
	case errors.As(err, &it):
		JSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: "invalid_transition", From: it.From, To: it.To})
	case errors.As(err, &cc):
		JSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: "version_conflict", ExpectedVersion: cc.ExpectedVersion})
	case errors.As(err, &ce):
		JSON(w, http.StatusConflict, errorBody{Error: err.Error(), Kind: "capacity_exceeded"})
	case errors.As(err, &nr):
		JSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Kind: "no_rule_matched"})
	case errors.As(err, &cy):
		JSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Kind: "cycle"})
	case errors.As(err, &ct):
		JSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Kind: "cross_tenant"})
	case errors.As(err, &ae):
		JSON(w, http.StatusForbidden, errorBody{Error: err.Error(), Kind: "authorization"})
	case errors.Is(err, mongo.ErrNoDocuments):
		JSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: "not_found"})
	default:
		log.Error("request failed", zap.Error(err))
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorBody{Error: msg, Kind: "bad_request"})
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter) {
	JSON(w, http.StatusNotFound, errorBody{Error: "not found", Kind: "not_found"})
}

// Decode parses the request body into v, limited to limits.MaxJSONBody.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
