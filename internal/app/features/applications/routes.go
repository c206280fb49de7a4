// internal/app/features/applications/routes.go
package applications

import (
	"github.com/go-chi/chi/v5"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
)

// Routes returns the subrouter for applications; mounted under
// /applications. "similar" is registered before "{id}" so the literal wins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("family"))
		pr.Get("/", h.HandleMine)
		pr.Get("/similar", h.HandleSimilar)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/{id}", h.HandleGet)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("officer", "admin"))
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Post("/{id}/reject", h.HandleReject)
	})

	return r
}
