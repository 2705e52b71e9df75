// internal/app/system/referral/tracker.go
package referral

import (
	"context"
	"errors"
	"fmt"

	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound mirrors the store sentinel for callers of this package.
	ErrNotFound = referralstore.ErrNotFound

	// ErrConflict is returned when the referral was not in a status the
	// requested transition allows.
	ErrConflict = referralstore.ErrConflict

	// ErrNotOwner is returned when a member tries to request payout on a
	// referral that is not theirs.
	ErrNotOwner = errors.New("referral belongs to another member")
)

// Tracker owns referral status progression. The path is strictly forward:
// pending -> eligible -> requested -> paid, with eligible -> paid as an
// admin shortcut. Nothing ever moves back to pending.
type Tracker struct {
	store *referralstore.Store
	audit *auditlog.Logger
}

func NewTracker(store *referralstore.Store, audit *auditlog.Logger) *Tracker {
	return &Tracker{store: store, audit: audit}
}

// Create records a referral when a referred applicant becomes a member.
func (t *Tracker) Create(ctx context.Context, referrer, referee models.User) (models.Referral, error) {
	ref, err := t.store.Create(ctx, models.Referral{
		ReferrerID:   referrer.ID,
		ReferrerName: referrer.FullName(),
		RefereeID:    referee.ID,
		RefereeName:  referee.FullName(),
	})
	if err != nil {
		return models.Referral{}, err
	}
	return ref, nil
}

// MarkEligible confirms the referred member's contribution deduction has
// started. Admin action; only valid from pending.
func (t *Tracker) MarkEligible(ctx context.Context, id primitive.ObjectID, admin auditlog.Actor) error {
	if err := t.store.Transition(ctx, id, []string{models.ReferralPending}, models.ReferralEligible); err != nil {
		return err
	}
	t.audit.Record(admin, "referral.eligible", id.Hex(), nil)
	return nil
}

// RequestPayout is the referrer asking for their bonus. Only the referrer
// may request, and only from eligible.
func (t *Tracker) RequestPayout(ctx context.Context, id primitive.ObjectID, memberID primitive.ObjectID, member auditlog.Actor) error {
	ref, err := t.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ref.ReferrerID != memberID {
		return ErrNotOwner
	}
	if err := t.store.Transition(ctx, id, []string{models.ReferralEligible}, models.ReferralRequested); err != nil {
		return err
	}
	t.audit.Record(member, "referral.request_payout", id.Hex(), bson.M{
		"amount": ref.Amount,
	})
	return nil
}

// MarkPaid settles the bonus. Valid from requested, or directly from
// eligible as a manual override. Paid is terminal.
func (t *Tracker) MarkPaid(ctx context.Context, id primitive.ObjectID, admin auditlog.Actor) error {
	ref, err := t.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := t.store.Transition(ctx, id,
		[]string{models.ReferralRequested, models.ReferralEligible},
		models.ReferralPaid); err != nil {
		return err
	}
	t.audit.Record(admin, "referral.paid", id.Hex(), bson.M{
		"referrer": ref.ReferrerName,
		"amount":   fmt.Sprintf("KES %d", ref.Amount),
	})
	return nil
}

// Mine returns a member's own referrals.
func (t *Tracker) Mine(ctx context.Context, memberID primitive.ObjectID) ([]models.Referral, error) {
	return t.store.ListByReferrer(ctx, memberID)
}

// Outstanding returns the referrals awaiting admin action and the total
// still owed, for the payouts screen.
func (t *Tracker) Outstanding(ctx context.Context) ([]models.Referral, int, error) {
	refs, err := t.store.ListByStatus(ctx, []string{
		models.ReferralPending, models.ReferralEligible, models.ReferralRequested,
	})
	if err != nil {
		return nil, 0, err
	}
	owed, err := t.store.TotalOwed(ctx)
	if err != nil {
		return nil, 0, err
	}
	return refs, owed, nil
}
