// internal/app/features/regions/handler.go
package regions

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/gates"
	regionmgr "github.com/mwalimuhub/unionhub/internal/app/system/regions"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the region assignment screen. Only region-scoped roles
// (regional admins and operations staff) appear here.
type Handler struct {
	Users   *userstore.Store
	Regions *regionmgr.Manager
	Log     *zap.Logger
}

func NewHandler(users *userstore.Store, regions *regionmgr.Manager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Regions: regions, Log: logger}
}

type pageData struct {
	viewdata.BaseVM
	Admins []models.User
}

// ServeList shows the admins whose visibility is region-scoped, with their
// current assignments.
// GET /regions
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermAssignRegions,
		"You can't manage region assignments.")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	regionals, err := h.Users.List(ctx, userstore.ListFilter{Role: string(authz.RoleRegionalAdmin)})
	if err != nil {
		h.Log.Error("regional admins load failed", zap.Error(err))
		http.Error(w, "failed to load admins", http.StatusInternalServerError)
		return
	}
	ops, err := h.Users.List(ctx, userstore.ListFilter{Role: string(authz.RoleOperations)})
	if err != nil {
		h.Log.Error("operations staff load failed", zap.Error(err))
		http.Error(w, "failed to load admins", http.StatusInternalServerError)
		return
	}

	data := pageData{
		BaseVM: viewdata.New(r, "Region Assignments", "/dashboard"),
		Admins: append(regionals, ops...),
	}
	templates.Render(w, r, "regions", data)
}

// Assign merges comma-separated regions into an admin's assignment list.
// POST /regions/{id}/assign
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermAssignRegions,
		"You can't manage region assignments.")
	if !res.OK {
		return
	}

	adminID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	var regions []string
	for _, part := range strings.Split(r.FormValue("regions"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			regions = append(regions, part)
		}
	}
	if len(regions) == 0 {
		http.Redirect(w, r, "/regions", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role}
	if _, err := h.Regions.Assign(ctx, adminID, regions, actor); err != nil {
		h.Log.Error("region assign failed", zap.Error(err))
		http.Error(w, "failed to assign regions", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/regions", http.StatusSeeOther)
}

// Unassign removes one region from an admin.
// POST /regions/{id}/unassign
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermAssignRegions,
		"You can't manage region assignments.")
	if !res.OK {
		return
	}

	adminID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role}
	if _, err := h.Regions.Unassign(ctx, adminID, r.FormValue("region"), actor); err != nil {
		h.Log.Error("region unassign failed", zap.Error(err))
		http.Error(w, "failed to unassign region", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/regions", http.StatusSeeOther)
}
