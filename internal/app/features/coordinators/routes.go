// internal/app/features/coordinators/routes.go
package coordinators

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts coordinator management (typically under "/coordinators").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{coordinatorID}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
		pr.Put("/{coordinatorID}", h.ServeUpdate)
		pr.Put("/{coordinatorID}/chain", h.ServeSetChain)
	})

	return r
}
