// internal/app/features/authcheck/routes.go
package authcheck

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for the session probe; mounted under /auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/check", h.ServeCheck)
	return r
}
