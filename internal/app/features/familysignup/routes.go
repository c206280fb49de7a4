// internal/app/features/familysignup/routes.go
package familysignup

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for family signup; mounted under /family.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.HandleSignup)
	return r
}
