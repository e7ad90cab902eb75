// internal/app/features/forms/handler.go
package forms

import (
	instancestore "github.com/dalemusser/carehub/internal/app/store/forminstances"
	"github.com/dalemusser/carehub/internal/app/system/lifecycle"
	"go.uber.org/zap"
)

// Handler exposes the form-instance lifecycle over HTTP.
type Handler struct {
	Service   *lifecycle.Service
	Instances *instancestore.Store
	Log       *zap.Logger
}

// NewHandler constructs a forms Handler bound to the lifecycle service.
func NewHandler(service *lifecycle.Service, instances *instancestore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Service:   service,
		Instances: instances,
		Log:       logger,
	}
}
