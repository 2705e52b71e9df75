// internal/app/features/referrals/handler.go
package referrals

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/mwalimuhub/unionhub/internal/app/features/errors"
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
	"go.uber.org/zap"
)

// Handler serves the payout ledger for finance staff and the personal
// referrals page for members.
type Handler struct {
	Referrals *referral.Tracker
	Log       *zap.Logger
}

func NewHandler(referrals *referral.Tracker, logger *zap.Logger) *Handler {
	return &Handler{Referrals: referrals, Log: logger}
}

type payoutsData struct {
	viewdata.BaseVM
	Referrals []models.Referral
	TotalOwed int
}

// ServePayouts lists referrals awaiting action with the total owed.
// GET /referrals
func (h *Handler) ServePayouts(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermManagePayouts,
		"You don't manage referral payouts.")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	refs, owed, err := h.Referrals.Outstanding(ctx)
	if err != nil {
		h.Log.Error("outstanding referrals load failed", zap.Error(err))
		http.Error(w, "failed to load referrals", http.StatusInternalServerError)
		return
	}

	data := payoutsData{
		BaseVM:    viewdata.New(r, "Referral Payouts", "/dashboard"),
		Referrals: refs,
		TotalOwed: owed,
	}
	templates.Render(w, r, "referrals_payouts", data)
}

// MarkEligible confirms the referred member's deductions have started.
// POST /referrals/{id}/eligible
func (h *Handler) MarkEligible(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, func(ctx context.Context, id primitive.ObjectID, actor auditlog.Actor) error {
		return h.Referrals.MarkEligible(ctx, id, actor)
	})
}

// MarkPaid settles a bonus.
// POST /referrals/{id}/paid
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.adminTransition(w, r, func(ctx context.Context, id primitive.ObjectID, actor auditlog.Actor) error {
		return h.Referrals.MarkPaid(ctx, id, actor)
	})
}

func (h *Handler) adminTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, primitive.ObjectID, auditlog.Actor) error) {
	res := gates.RequirePermission(w, r, authz.PermManagePayouts,
		"You don't manage referral payouts.")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role}
	if err := apply(ctx, id, actor); err != nil {
		switch {
		case errors.Is(err, referral.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, referral.ErrConflict):
			uierrors.RenderForbidden(w, r, "This referral is not in a state that allows that change.", "/referrals")
		default:
			h.Log.Error("referral transition failed", zap.Error(err))
			http.Error(w, "failed to update referral", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/referrals", http.StatusSeeOther)
}

type mineData struct {
	viewdata.BaseVM
	Referrals      []models.Referral
	MyReferralCode string
}

// ServeMine shows a member their own referrals and lets them request
// payout on eligible ones.
// GET /referrals/mine
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}
	principal := authz.Principal(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	refs, err := h.Referrals.Mine(ctx, res.UserID)
	if err != nil {
		h.Log.Error("own referrals load failed", zap.Error(err))
		http.Error(w, "failed to load referrals", http.StatusInternalServerError)
		return
	}

	data := mineData{
		BaseVM:         viewdata.New(r, "My Referrals", "/dashboard"),
		Referrals:      refs,
		MyReferralCode: principal.ReferralCode,
	}
	templates.Render(w, r, "referrals_mine", data)
}

// RequestPayout lets the referrer claim an eligible bonus.
// POST /referrals/mine/{id}/request
func (h *Handler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r)
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	actor := auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role}
	if err := h.Referrals.RequestPayout(ctx, id, res.UserID, actor); err != nil {
		switch {
		case errors.Is(err, referral.ErrNotFound):
			http.NotFound(w, r)
		case errors.Is(err, referral.ErrNotOwner):
			uierrors.RenderForbidden(w, r, "That referral belongs to another member.", "/referrals/mine")
		case errors.Is(err, referral.ErrConflict):
			uierrors.RenderForbidden(w, r, "This referral is not ready for payout yet.", "/referrals/mine")
		default:
			h.Log.Error("payout request failed", zap.Error(err))
			http.Error(w, "failed to request payout", http.StatusInternalServerError)
		}
		return
	}

	http.Redirect(w, r, "/referrals/mine", http.StatusSeeOther)
}
