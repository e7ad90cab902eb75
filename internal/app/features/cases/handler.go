// internal/app/features/cases/handler.go
package cases

import (
	memberstore "github.com/dalemusser/carehub/internal/app/store/members"
	"github.com/dalemusser/carehub/internal/app/system/assign"
	"go.uber.org/zap"
)

// Handler exposes the assignment engine over HTTP.
type Handler struct {
	Engine  *assign.Engine
	Members *memberstore.Store
	Log     *zap.Logger
}

// NewHandler constructs a cases Handler bound to the assignment engine.
func NewHandler(engine *assign.Engine, members *memberstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  engine,
		Members: members,
		Log:     logger,
	}
}
