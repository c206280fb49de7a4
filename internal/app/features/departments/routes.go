// internal/app/features/departments/routes.go
package departments

import (
	"github.com/go-chi/chi/v5"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
)

// Routes returns the subrouter for department administration; mounted under
// /departments.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.HandleList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("admin"))
		pr.Post("/", h.HandleCreate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
