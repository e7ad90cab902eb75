// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts member management (typically under "/members").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{memberID}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/", h.ServeCreate)
		pr.Post("/import", h.ServeImport)
	})

	return r
}
