// internal/app/features/formtemplates/routes.go
package formtemplates

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts form template management (typically under "/templates").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{templateID}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
	})

	return r
}
