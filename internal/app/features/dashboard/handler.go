// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	auditstore "github.com/mwalimuhub/unionhub/internal/app/store/audit"
	contactstore "github.com/mwalimuhub/unionhub/internal/app/store/contact"
	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Approvals    *approvalstore.Store
	Applications *applicationstore.Store
	Referrals    *referralstore.Store
	Audit        *auditstore.Store
	Messages     *contactstore.Store
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Approvals:    approvalstore.New(db),
		Applications: applicationstore.New(db),
		Referrals:    referralstore.New(db),
		Audit:        auditstore.New(db),
		Messages:     contactstore.New(db),
		Log:          logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	OpenApprovals    int64
	WaitingReview    int64
	OwedPayouts      int
	MyReferrals      []models.Referral
	MyReferralCode   string
	ShowAdminCards   bool
	ShowFinanceCards bool
	ShowSystemCards  bool
	RecentActivity   []auditstore.Event
	RecentMessages   []contactstore.Message
}

// ServeDashboard renders the role-aware landing page for signed-in users.
// Teachers see their referrals; staff see the queues their permissions
// unlock.
// GET /dashboard
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	principal := authz.Principal(r)

	data := pageData{
		BaseVM:         viewdata.New(r, "Dashboard", "/"),
		MyReferralCode: principal.ReferralCode,
	}
	data.ShowAdminCards = data.CanReviewApplications || data.CanApprove
	data.ShowFinanceCards = data.CanViewFinance

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if data.CanApprove {
		if n, err := h.Approvals.CountOpen(ctx); err == nil {
			data.OpenApprovals = n
		} else {
			h.Log.Warn("open approvals count failed", zap.Error(err))
		}
	}
	if data.CanReviewApplications {
		if n, err := h.Applications.CountSubmitted(ctx); err == nil {
			data.WaitingReview = n
		} else {
			h.Log.Warn("submitted applications count failed", zap.Error(err))
		}
	}
	if data.ShowFinanceCards {
		if owed, err := h.Referrals.TotalOwed(ctx); err == nil {
			data.OwedPayouts = owed
		} else {
			h.Log.Warn("owed payouts total failed", zap.Error(err))
		}
	}

	if authz.HasPermission(principal, authz.PermManageSystem) {
		data.ShowSystemCards = true
		if events, err := h.Audit.Query(ctx, auditstore.QueryFilter{Limit: 10}); err == nil {
			data.RecentActivity = events
		} else {
			h.Log.Warn("recent audit events load failed", zap.Error(err))
		}
		if msgs, err := h.Messages.Recent(ctx, 5); err == nil {
			data.RecentMessages = msgs
		} else {
			h.Log.Warn("recent contact messages load failed", zap.Error(err))
		}
	}

	refs, err := h.Referrals.ListByReferrer(ctx, userID)
	if err != nil {
		h.Log.Warn("own referrals load failed", zap.Error(err))
	}
	data.MyReferrals = refs

	templates.Render(w, r, "dashboard", data)
}
