// internal/app/features/applications/decide.go
package applications

import (
	"context"
	"errors"
	"net/http"

	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	uierrors "github.com/mwalimuhub/unionhub/internal/app/features/errors"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/app/system/gates"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Approve turns an application into a teacher member. When the applicant
// named a valid referral code, a pending referral is created for its owner.
// The new member's county becomes their first assigned region so regional
// admins can see them.
// POST /applications/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	res := gates.RequirePermission(w, r, authz.PermApproveMembers,
		"You can't approve membership applications.")
	if !res.OK {
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	app, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !gates.RequireRegionAccess(w, r, app.County).OK {
		return
	}

	// Claim the application first; the conditional write makes sure two
	// reviewers can't both mint a member from it.
	if err := h.Applications.Decide(ctx, id, models.ApplicationApproved); err != nil {
		if errors.Is(err, applicationstore.ErrConflict) {
			uierrors.RenderForbidden(w, r, "Another reviewer already decided this application.", "/applications")
			return
		}
		h.Log.Error("application decide failed", zap.Error(err))
		http.Error(w, "failed to approve application", http.StatusInternalServerError)
		return
	}

	member, err := h.Users.Create(ctx, models.User{
		FirstName:       app.FirstName,
		LastName:        app.LastName,
		Email:           app.Email,
		Role:            string(authz.RoleTeacher),
		AssignedRegions: []string{app.County},
	})
	if err != nil {
		// The application is approved but the account could not be made;
		// surface it so staff can create the user manually.
		h.Log.Error("member create after approval failed",
			zap.String("application_id", id.Hex()), zap.Error(err))
		uierrors.RenderForbidden(w, r, "Application approved, but creating the member account failed. Create it manually from the members screen.", "/applications")
		return
	}

	actor := auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role}
	h.Audit.Record(actor, "application.approve", id.Hex(), bson.M{
		"member_id": member.ID.Hex(),
		"county":    app.County,
	})

	if app.ReferralCode != "" {
		if referrer, err := h.Users.GetByReferralCode(ctx, app.ReferralCode); err == nil {
			if _, err := h.Referrals.Create(ctx, *referrer, member); err != nil {
				h.Log.Error("referral create failed",
					zap.String("referrer_id", referrer.ID.Hex()), zap.Error(err))
			}
		} else {
			// An unknown code never blocks the approval.
			h.Log.Info("application carried unknown referral code",
				zap.String("code", app.ReferralCode))
		}
	}

	http.Redirect(w, r, "/applications", http.StatusSeeOther)
}

// Reject closes an application without creating anything.
// POST /applications/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	app, err := h.Applications.GetByID(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !gates.RequireRegionAccess(w, r, app.County).OK {
		return
	}

	if err := h.Applications.Decide(ctx, id, models.ApplicationRejected); err != nil {
		if errors.Is(err, applicationstore.ErrConflict) {
			uierrors.RenderForbidden(w, r, "Another reviewer already decided this application.", "/applications")
			return
		}
		h.Log.Error("application reject failed", zap.Error(err))
		http.Error(w, "failed to reject application", http.StatusInternalServerError)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: res.UserID.Hex(), Name: res.Name, Role: res.Role},
		"application.reject", id.Hex(), nil)

	http.Redirect(w, r, "/applications", http.StatusSeeOther)
}
