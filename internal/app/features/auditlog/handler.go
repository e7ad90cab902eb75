// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/dalemusser/carehub/internal/app/store/audit"
	"go.uber.org/zap"
)

// Handler serves compliance reads over the append-only audit trail.
type Handler struct {
	Store *audit.Store
	Log   *zap.Logger
}

// NewHandler constructs an auditlog Handler.
func NewHandler(store *audit.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}
