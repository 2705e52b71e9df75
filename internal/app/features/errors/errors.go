// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler renders the friendly error pages. No DB needed.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders "access denied".
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "You don't have permission to view this page.", "/")
}

// Unauthorized renders "sign in required".
// GET /unauthorized
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	RenderUnauthorized(w, r, "/login")
}

// RenderForbidden shows an access-denied page with a specific message.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.New(r, "Access denied", backURL),
		Message: msg,
	}
	templates.Render(w, r, "error_forbidden", data)
}

// RenderUnauthorized shows a sign-in-required page.
func RenderUnauthorized(w http.ResponseWriter, r *http.Request, backURL string) {
	if backURL == "" {
		backURL = "/login"
	}
	data := pageData{
		BaseVM:  viewdata.New(r, "Sign in required", backURL),
		Message: "Please sign in to continue.",
	}
	templates.Render(w, r, "error_forbidden", data)
}
