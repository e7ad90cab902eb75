// internal/app/features/cases/routes.go
package cases

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the case assignment endpoints (typically under "/cases").
// Every operation mutates state and is audited, so all require an actor.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Post("/{memberID}/assign", h.ServeAssign)
		pr.Post("/{memberID}/reassign", h.ServeReassign)
		pr.Post("/{memberID}/release", h.ServeRelease)
	})

	return r
}
