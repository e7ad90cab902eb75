// internal/app/features/forms/routes.go
package forms

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the form lifecycle endpoints (typically under "/forms").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/{instanceID}", h.ServeGet)
	r.Get("/", h.ServeListByOwner)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
		pr.Put("/{instanceID}/responses", h.ServeSaveResponses)
		pr.Post("/{instanceID}/submit", h.ServeSubmit)
		pr.Post("/{instanceID}/approve", h.ServeApprove)
		pr.Post("/{instanceID}/reject", h.ServeReject)
		pr.Post("/{instanceID}/revise", h.ServeRevise)
		pr.Post("/{instanceID}/finalize", h.ServeFinalize)
	})

	return r
}
