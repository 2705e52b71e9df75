// internal/app/features/members/handler.go
package members

import (
	"context"
	"net/http"
	"strings"

	uierrors "github.com/mwalimuhub/unionhub/internal/app/features/errors"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/gates"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the member directory. Visibility follows the region
// model: view_all_members sees everyone, region-scoped roles see only
// members in their assigned counties.
type Handler struct {
	Users *userstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Audit: audit, Log: logger}
}

// visibleRegions returns the county restriction for the signed-in user:
// nil for full visibility, empty slice for none.
func visibleRegions(r *http.Request) []string {
	principal := authz.Principal(r)
	if authz.HasPermission(principal, authz.PermViewAllMembers) {
		return nil
	}
	regions := principal.AssignedRegions
	if regions == nil {
		regions = []string{}
	}
	return regions
}

type listData struct {
	viewdata.BaseVM
	Members []models.User
	Search  string
	Scoped  bool
}

// ServeList shows the directory, optionally filtered by a name search.
// GET /members
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManageMembers,
		"You can't browse the member directory.")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scope := visibleRegions(r)
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	users, err := h.Users.List(ctx, userstore.ListFilter{
		Regions: scope,
		Search:  search,
	})
	if err != nil {
		h.Log.Error("members load failed", zap.Error(err))
		http.Error(w, "failed to load members", http.StatusInternalServerError)
		return
	}

	data := listData{
		BaseVM:  viewdata.New(r, "Members", "/dashboard"),
		Members: users,
		Search:  search,
		Scoped:  scope != nil,
	}
	templates.Render(w, r, "members_list", data)
}

type detailData struct {
	viewdata.BaseVM
	Member             *models.User
	Roles              []authz.Role
	Permissions        []authz.Permission
	Overrides          map[string]bool
	CanEditPermissions bool
	Saved              bool
}

// loadVisibleMember fetches the member and enforces region visibility.
func (h *Handler) loadVisibleMember(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, err := h.Users.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	if visibleRegions(r) != nil {
		visible := false
		for _, region := range member.AssignedRegions {
			if authz.RequestCanViewRegion(r, region) {
				visible = true
				break
			}
		}
		if !visible {
			uierrors.RenderForbidden(w, r, "This member is outside your assigned regions.", "/members")
			return nil, false
		}
	}
	return member, true
}

// ServeDetail shows one member's record.
// GET /members/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManageMembers,
		"You can't browse the member directory.")
	if !res.OK {
		return
	}
	member, ok := h.loadVisibleMember(w, r)
	if !ok {
		return
	}

	overrides := make(map[string]bool, len(member.Permissions))
	for _, p := range member.Permissions {
		overrides[p] = true
	}

	data := detailData{
		BaseVM:             viewdata.New(r, "Member", "/members"),
		Member:             member,
		Roles:              authz.AllRoles,
		Permissions:        authz.AllPermissions,
		Overrides:          overrides,
		CanEditPermissions: authz.RequestHasPermission(r, authz.PermManageUsers),
		Saved:              r.URL.Query().Get("saved") == "1",
	}
	templates.Render(w, r, "members_detail", data)
}

// Update edits a member's profile. Changing a role requires manage_users
// on top of manage_members.
// POST /members/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManageMembers,
		"You can't edit members.")
	if !res.OK {
		return
	}
	member, ok := h.loadVisibleMember(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	newRole := strings.TrimSpace(r.FormValue("role"))
	if newRole != member.Role {
		grant := gates.RequirePermission(w, r, authz.PermManageUsers,
			"Changing a member's role requires user management access.")
		if !grant.OK {
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, member.ID, userstore.ProfileUpdate{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Role:      newRole,
		Status:    member.Status,
	})
	if err != nil {
		h.Log.Error("member update failed", zap.Error(err))
		http.Error(w, "failed to update member", http.StatusInternalServerError)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role},
		"member.update", member.ID.Hex(), nil)

	http.Redirect(w, r, "/members/"+member.ID.Hex()+"?saved=1", http.StatusSeeOther)
}

// UpdatePermissions replaces a member's additive override list. Overrides
// grant on top of the role's defaults; unchecking one never removes a
// role-derived permission.
// POST /members/{id}/permissions
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManageUsers,
		"You can't grant permissions.")
	if !res.OK {
		return
	}
	member, ok := h.loadVisibleMember(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	perms := []string{}
	for _, raw := range r.Form["perm"] {
		if p, ok := authz.ParsePermission(raw); ok {
			perms = append(perms, string(p))
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetPermissions(ctx, member.ID, perms); err != nil {
		h.Log.Error("permission update failed", zap.Error(err))
		http.Error(w, "failed to update permissions", http.StatusInternalServerError)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role},
		"member.permissions", member.ID.Hex(), bson.M{"permissions": perms})

	http.Redirect(w, r, "/members/"+member.ID.Hex()+"?saved=1", http.StatusSeeOther)
}

// Deactivate disables a member's account. Members are never hard-deleted;
// removing one entirely goes through a delete_member approval request.
// POST /members/{id}/deactivate
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManageUsers,
		"You can't deactivate members.")
	if !res.OK {
		return
	}
	member, ok := h.loadVisibleMember(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.SetStatus(ctx, member.ID, models.StatusDisabled); err != nil {
		h.Log.Error("member deactivate failed", zap.Error(err))
		http.Error(w, "failed to deactivate member", http.StatusInternalServerError)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role},
		"member.deactivate", member.ID.Hex(), nil)

	http.Redirect(w, r, "/members", http.StatusSeeOther)
}
