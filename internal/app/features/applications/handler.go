// internal/app/features/applications/handler.go
package applications

import (
	"context"
	"net/http"

	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/gates"
	"github.com/mwalimuhub/unionhub/internal/app/system/referral"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the membership application review queue.
type Handler struct {
	Applications *applicationstore.Store
	Users        *userstore.Store
	Referrals    *referral.Tracker
	Audit        *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, referrals *referral.Tracker, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Applications: applicationstore.New(db),
		Users:        userstore.New(db),
		Referrals:    referrals,
		Audit:        audit,
		Log:          logger,
	}
}

type listData struct {
	viewdata.BaseVM
	Applications []models.MemberApplication
	Scoped       bool
}

// reviewScope returns the county restriction for the signed-in reviewer:
// nil means all counties, an empty non-nil slice means none.
func reviewScope(r *http.Request) []string {
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

// ServeList shows submitted applications, scoped to the reviewer's regions
// unless they can view all members.
// GET /applications
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermReviewApplications,
		"You don't review membership applications.")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	scope := reviewScope(r)
	apps, err := h.Applications.List(ctx, applicationstore.ListFilter{
		Status:   models.ApplicationSubmitted,
		Counties: scope,
	})
	if err != nil {
		h.Log.Error("applications load failed", zap.Error(err))
		http.Error(w, "failed to load applications", http.StatusInternalServerError)
		return
	}

	data := listData{
		BaseVM:       viewdata.New(r, "Membership Applications", "/dashboard"),
		Applications: apps,
		Scoped:       scope != nil,
	}
	templates.Render(w, r, "applications_list", data)
}

type detailData struct {
	viewdata.BaseVM
	Application  *models.MemberApplication
	ReferrerName string
}

// ServeDetail shows one application, resolving the referral code to its
// owner so the reviewer can see who gets the bonus.
// GET /applications/{id}
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermReviewApplications,
		"You don't review membership applications.")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	app, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !gates.RequireRegionAccess(w, r, app.County).OK {
		return
	}

	data := detailData{
		BaseVM:      viewdata.New(r, "Review Application", "/applications"),
		Application: app,
	}
	if app.ReferralCode != "" {
		if referrer, err := h.Users.GetByReferralCode(ctx, app.ReferralCode); err == nil {
			data.ReferrerName = referrer.FullName()
		}
	}
	templates.Render(w, r, "applications_detail", data)
}
