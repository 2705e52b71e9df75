// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/gates"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the signed-in member's own profile page.
type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Audit: audit, Log: logger}
}

type pageData struct {
	viewdata.BaseVM
	Me      *models.User
	Saved   bool
	PwError string
}

func (h *Handler) loadMe(w http.ResponseWriter, r *http.Request) (*models.User, gates.Result, bool) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return nil, res, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	me, err := h.Users.GetByID(ctx, res.UserID)
	if err != nil {
		h.Log.Error("profile load failed", zap.Error(err))
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return nil, res, false
	}
	return me, res, true
}

// ServeProfile shows the member's own record and referral code.
// GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	me, _, ok := h.loadMe(w, r)
	if !ok {
		return
	}
	data := pageData{
		BaseVM: viewdata.New(r, "My Profile", "/dashboard"),
		Me:     me,
		Saved:  r.URL.Query().Get("saved") == "1",
	}
	templates.Render(w, r, "profile", data)
}

// ChangePassword verifies the current password before setting a new one.
// POST /profile/password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	me, res, ok := h.loadMe(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	current := r.FormValue("current_password")
	next := r.FormValue("new_password")

	data := pageData{
		BaseVM: viewdata.New(r, "My Profile", "/dashboard"),
		Me:     me,
	}

	switch {
	case !userstore.CheckPassword(me, current):
		data.PwError = "Current password is incorrect."
	case len(strings.TrimSpace(next)) < 8:
		data.PwError = "New password must be at least 8 characters."
	}
	if data.PwError != "" {
		templates.Render(w, r, "profile", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetPassword(ctx, me.ID, next); err != nil {
		h.Log.Error("password change failed", zap.Error(err))
		data.PwError = "Something went wrong. Please try again."
		templates.Render(w, r, "profile", data)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role},
		"profile.change_password", me.ID.Hex(), nil)

	http.Redirect(w, r, "/profile?saved=1", http.StatusSeeOther)
}
