// internal/app/features/members/handler.go
package members

import (
	memberstore "github.com/dalemusser/carehub/internal/app/store/members"
	"go.uber.org/zap"
)

// Handler manages plan members.
type Handler struct {
	Store *memberstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a members Handler.
func NewHandler(store *memberstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}
