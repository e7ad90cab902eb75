// internal/app/features/rules/handler.go
package rules

import (
	rulestore "github.com/dalemusser/carehub/internal/app/store/rules"
	"go.uber.org/zap"
)

// Handler manages a tenant's assignment rules.
type Handler struct {
	Store *rulestore.Store
	Log   *zap.Logger
}

// NewHandler constructs a rules Handler.
func NewHandler(store *rulestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Store: store,
		Log:   logger,
	}
}
