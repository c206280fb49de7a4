// internal/app/features/familycode/routes.go
package familycode

import (
	"github.com/go-chi/chi/v5"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
)

// Routes returns the subrouter for the family-code endpoint; mounted under
// /personnel.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole("personnel"))
		pr.Put("/family-code", h.HandleIssue)
	})

	return r
}
