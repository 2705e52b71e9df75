// internal/app/system/referral/tracker_test.go
package referral

import (
	"errors"
	"testing"

	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestTracker(t *testing.T) (*Tracker, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	audit := auditlog.New(nil, auditlog.ModeOff, zap.NewNop())
	return NewTracker(referralstore.New(db), audit), db
}

func auditActorFor(u models.User) auditlog.Actor {
	return auditlog.Actor{ID: u.ID.Hex(), Name: u.FullName(), Role: u.Role}
}

func TestReferralLifecycle(t *testing.T) {
	tr, db := newTestTracker(t)
	ctx := testutil.TestContext()

	referrer := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	referee := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	ref, err := tr.Create(ctx, referrer, referee)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ref.Status != models.ReferralPending {
		t.Fatalf("new referral status = %q, want pending", ref.Status)
	}
	if ref.Amount != models.ReferralBonusAmount {
		t.Fatalf("amount = %d, want the flat bonus %d", ref.Amount, models.ReferralBonusAmount)
	}

	if err := tr.MarkEligible(ctx, ref.ID, auditActorFor(finance)); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}
	if err := tr.RequestPayout(ctx, ref.ID, referrer.ID, auditActorFor(referrer)); err != nil {
		t.Fatalf("request payout: %v", err)
	}
	if err := tr.MarkPaid(ctx, ref.ID, auditActorFor(finance)); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	mine, err := tr.Mine(ctx, referrer.ID)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if len(mine) != 1 || mine[0].Status != models.ReferralPaid {
		t.Errorf("referrer's list = %+v, want one paid referral", mine)
	}
}

func TestEligibleToPaidShortcut(t *testing.T) {
	tr, db := newTestTracker(t)
	ctx := testutil.TestContext()

	referrer := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	referee := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	ref := testutil.CreateReferral(t, db, referrer, referee)
	admin := auditActorFor(finance)

	if err := tr.MarkEligible(ctx, ref.ID, admin); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}
	// Admin manual override: pay without a payout request.
	if err := tr.MarkPaid(ctx, ref.ID, admin); err != nil {
		t.Fatalf("paid from eligible: %v", err)
	}
}

func TestForwardOnlyProgression(t *testing.T) {
	tr, db := newTestTracker(t)
	ctx := testutil.TestContext()

	referrer := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	referee := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	ref := testutil.CreateReferral(t, db, referrer, referee)
	admin := auditActorFor(finance)

	// Cannot pay a referral still pending.
	if err := tr.MarkPaid(ctx, ref.ID, admin); !errors.Is(err, ErrConflict) {
		t.Fatalf("paid from pending: err = %v, want ErrConflict", err)
	}
	// Cannot request payout before eligibility.
	if err := tr.RequestPayout(ctx, ref.ID, referrer.ID, auditActorFor(referrer)); !errors.Is(err, ErrConflict) {
		t.Fatalf("request from pending: err = %v, want ErrConflict", err)
	}

	if err := tr.MarkEligible(ctx, ref.ID, admin); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}
	// Eligibility is not repeatable; nothing returns to pending.
	if err := tr.MarkEligible(ctx, ref.ID, admin); !errors.Is(err, ErrConflict) {
		t.Fatalf("second eligible: err = %v, want ErrConflict", err)
	}
}

func TestRequestPayoutOwnershipCheck(t *testing.T) {
	tr, db := newTestTracker(t)
	ctx := testutil.TestContext()

	referrer := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	referee := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	other := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	ref := testutil.CreateReferral(t, db, referrer, referee)
	if err := tr.MarkEligible(ctx, ref.ID, auditActorFor(finance)); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}

	if err := tr.RequestPayout(ctx, ref.ID, other.ID, auditActorFor(other)); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign payout request: err = %v, want ErrNotOwner", err)
	}
}

func TestOutstandingTotalsOwed(t *testing.T) {
	tr, db := newTestTracker(t)
	ctx := testutil.TestContext()

	referrer := testutil.CreateUser(t, db, string(authz.RoleTeacher))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))
	admin := auditActorFor(finance)

	a := testutil.CreateReferral(t, db, referrer, testutil.CreateUser(t, db, string(authz.RoleTeacher)))
	b := testutil.CreateReferral(t, db, referrer, testutil.CreateUser(t, db, string(authz.RoleTeacher)))

	if err := tr.MarkEligible(ctx, a.ID, admin); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}
	if err := tr.MarkEligible(ctx, b.ID, admin); err != nil {
		t.Fatalf("mark eligible: %v", err)
	}
	if err := tr.MarkPaid(ctx, b.ID, admin); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	refs, owed, err := tr.Outstanding(ctx)
	if err != nil {
		t.Fatalf("outstanding: %v", err)
	}
	if len(refs) != 1 {
		t.Errorf("outstanding count = %d, want 1", len(refs))
	}
	if owed != models.ReferralBonusAmount {
		t.Errorf("owed = %d, want %d (paid referrals excluded)", owed, models.ReferralBonusAmount)
	}
}
