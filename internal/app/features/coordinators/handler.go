// internal/app/features/coordinators/handler.go
package coordinators

import (
	coordinatorstore "github.com/dalemusser/carehub/internal/app/store/coordinators"
	"github.com/dalemusser/carehub/internal/app/system/auditlog"
	"github.com/dalemusser/carehub/internal/app/system/hierarchy"
	"go.uber.org/zap"
)

// Handler manages service coordinators and their supervisory chains.
type Handler struct {
	Store     *coordinatorstore.Store
	Hierarchy *hierarchy.Validator
	Audit     *auditlog.Recorder
	Log       *zap.Logger
}

// NewHandler constructs a coordinators Handler.
func NewHandler(store *coordinatorstore.Store, validator *hierarchy.Validator, audit *auditlog.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Store:     store,
		Hierarchy: validator,
		Audit:     audit,
		Log:       logger,
	}
}
