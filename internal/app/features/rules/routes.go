// internal/app/features/rules/routes.go
package rules

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts assignment rule management (typically under "/rules").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{ruleID}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
		pr.Put("/{ruleID}/active", h.ServeSetActive)
		pr.Put("/{ruleID}/priority", h.ServeSetPriority)
		pr.Delete("/{ruleID}", h.ServeDelete)
	})

	return r
}
