// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		Sessions: sessions,
		Audit:    audit,
		Log:      logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	Email    string
	ReturnTo string
}

// ServeForm renders the sign-in page.
// GET /login
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:   viewdata.New(r, "Sign in", "/"),
		ReturnTo: safeReturn(r.URL.Query().Get("return")),
	}
	templates.Render(w, r, "login", data)
}

// Submit checks credentials and starts a session.
// POST /login
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	returnTo := safeReturn(r.FormValue("return"))

	data := pageData{
		BaseVM:   viewdata.New(r, "Sign in", "/"),
		Email:    email,
		ReturnTo: returnTo,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil || !userstore.CheckPassword(u, password) {
		// One message for both cases; don't reveal which field was wrong.
		data.Error = "Email or password is incorrect."
		templates.Render(w, r, "login", data)
		return
	}
	if u.Status == models.StatusDisabled {
		data.Error = "This account has been disabled. Contact the union office."
		templates.Render(w, r, "login", data)
		return
	}

	if err := h.Sessions.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		data.Error = "Something went wrong. Please try again."
		templates.Render(w, r, "login", data)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: u.ID.Hex(), Name: u.FullName(), Role: u.Role},
		"auth.login", "", nil)

	if returnTo == "" {
		returnTo = "/dashboard"
	}
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// safeReturn only honors same-site relative paths, never absolute URLs.
func safeReturn(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return u.RequestURI()
}
