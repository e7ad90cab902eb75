// internal/app/features/tenants/routes.go
package tenants

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts tenant management (typically under "/tenants").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{tenantID}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
		pr.Put("/{tenantID}/status", h.ServeSetStatus)
	})

	return r
}
