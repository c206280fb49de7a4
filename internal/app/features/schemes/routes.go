// internal/app/features/schemes/routes.go
package schemes

import (
	"github.com/go-chi/chi/v5"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
)

// Routes returns the subrouter for the scheme catalog; mounted under
// /schemes. Browsing is public; publishing and applying are role-gated.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("officer", "admin"))
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/steps", h.HandleAddStep)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("family"))
		pr.Post("/{id}/apply", h.HandleApply)
	})

	return r
}
