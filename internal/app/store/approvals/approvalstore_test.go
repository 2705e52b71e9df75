// internal/app/store/approvals/approvalstore_test.go
package approvalstore_test

import (
	"errors"
	"testing"

	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTransitionIsConditional(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := approvalstore.New(db)
	ctx := testutil.TestContext()

	requester := testutil.CreateUser(t, db, "operations")
	req := testutil.CreateApprovalRequest(t, db, requester,
		models.RequestPayment, "finance", models.StatusPending)

	entry := models.ApprovalHistoryItem{
		ActorID:   requester.ID,
		ActorName: requester.FullName(),
		ActorRole: requester.Role,
		Action:    models.ActionApproved,
	}

	if err := s.Transition(ctx, req.ID, models.StatusPending, models.StatusApproved, entry); err != nil {
		t.Fatalf("first transition: %v", err)
	}

	// A second writer that read the stale pending status loses the race
	// explicitly instead of overwriting.
	err := s.Transition(ctx, req.ID, models.StatusPending, models.StatusRejected, entry)
	if !errors.Is(err, approvalstore.ErrConflict) {
		t.Fatalf("stale transition: err = %v, want ErrConflict", err)
	}

	got, err := s.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusApproved {
		t.Errorf("status = %q, want the first writer's approved", got.Status)
	}
	if len(got.History) != 2 {
		t.Errorf("history length = %d, want 2 (created + the winning approval)", len(got.History))
	}
}

func TestTransitionMissingRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := approvalstore.New(db)

	err := s.Transition(testutil.TestContext(), primitive.NewObjectID(),
		models.StatusPending, models.StatusApproved, models.ApprovalHistoryItem{})
	if !errors.Is(err, approvalstore.ErrNotFound) {
		t.Fatalf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestGetByIDMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := approvalstore.New(db)

	_, err := s.GetByID(testutil.TestContext(), primitive.NewObjectID())
	if !errors.Is(err, approvalstore.ErrNotFound) {
		t.Fatalf("missing id: err = %v, want ErrNotFound", err)
	}
}
