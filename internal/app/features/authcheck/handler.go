// Package authcheck serves the session probe clients poll to decide what to
// render. It never faults: any resolution failure reports logged-out.
package authcheck

import (
	"net/http"

	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// Handler holds dependencies for the auth check endpoint.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an authcheck Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type checkResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
}

// ServeCheck handles GET /auth/check.
func (h *Handler) ServeCheck(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.OK(w, checkResponse{LoggedIn: false})
		return
	}
	httpjson.OK(w, checkResponse{LoggedIn: true, Role: u.Role, Name: u.Name})
}
