// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter for the account variants; mounted under
// /accounts.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/{variant}/register", h.HandleRegister)
	r.Post("/{variant}/login", h.HandleLogin)
	r.Post("/{variant}/logout", h.HandleLogout)
	return r
}
