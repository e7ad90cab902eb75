// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/carehub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts audit trail reads (typically under "/audit").
// Compliance reads identify the requester, so an actor is required.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireActor)

		pr.Get("/", h.ServeList)
	})

	return r
}
