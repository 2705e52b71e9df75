// internal/app/system/approval/workflow_test.go
package approval

import (
	"errors"
	"testing"

	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/mwalimuhub/unionhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestWorkflow(t *testing.T) (*Workflow, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	audit := auditlog.New(nil, auditlog.ModeOff, zap.NewNop())
	return NewWorkflow(approvalstore.New(db), audit), db
}

func actorFor(u models.User) Actor {
	return Actor{ID: u.ID, Name: u.FullName(), Role: u.Role}
}

func TestSingleApproverPath(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestPayment,
		string(authz.RoleFinance), bson.M{"amount": 1000}, "vendor invoice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != models.StatusPending {
		t.Fatalf("new request status = %q, want pending", req.Status)
	}

	status, err := w.ApproveRequest(ctx, req.ID, actorFor(finance), "looks good")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if status != models.StatusApproved {
		t.Errorf("status = %q, want approved", status)
	}

	got, err := w.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(got.History))
	}
	if got.History[0].Action != models.ActionCreated || got.History[1].Action != models.ActionApproved {
		t.Errorf("history actions = %q,%q, want created,approved",
			got.History[0].Action, got.History[1].Action)
	}
}

func TestDualApprovalPresidentFirst(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	vp := testutil.CreateUser(t, db, string(authz.RoleVicePresident))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestSystemChange,
		models.ApproverDual, nil, "change dues schedule")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status, err := w.ApproveRequest(ctx, req.ID, actorFor(president), "")
	if err != nil {
		t.Fatalf("president approve: %v", err)
	}
	if status != models.StatusAwaitingVP {
		t.Fatalf("after president, status = %q, want awaiting_vp", status)
	}

	status, err = w.ApproveRequest(ctx, req.ID, actorFor(vp), "")
	if err != nil {
		t.Fatalf("vp approve: %v", err)
	}
	if status != models.StatusApproved {
		t.Fatalf("after vp, status = %q, want approved", status)
	}

	got, _ := w.GetRequest(ctx, req.ID)
	if len(got.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(got.History))
	}
	want := []string{models.ActionCreated, models.ActionApproved, models.ActionApproved}
	for i, entry := range got.History {
		if entry.Action != want[i] {
			t.Errorf("history[%d].Action = %q, want %q", i, entry.Action, want[i])
		}
	}
}

func TestDualApprovalVPFirst(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	vp := testutil.CreateUser(t, db, string(authz.RoleVicePresident))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestRoleGrant,
		models.ApproverDual, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	status, err := w.ApproveRequest(ctx, req.ID, actorFor(vp), "")
	if err != nil {
		t.Fatalf("vp approve: %v", err)
	}
	if status != models.StatusAwaitingPresident {
		t.Fatalf("after vp, status = %q, want awaiting_president", status)
	}

	// The seat that already acted cannot supply the second approval.
	if _, err := w.ApproveRequest(ctx, req.ID, actorFor(vp), ""); err == nil {
		t.Fatalf("second vp approval should fail")
	} else {
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Errorf("second vp approval error = %T, want PermissionError", err)
		}
	}

	status, err = w.ApproveRequest(ctx, req.ID, actorFor(president), "")
	if err != nil {
		t.Fatalf("president approve: %v", err)
	}
	if status != models.StatusApproved {
		t.Fatalf("after president, status = %q, want approved", status)
	}
}

func TestDualApprovalRejectsOtherRoles(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestSystemChange,
		models.ApproverDual, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = w.ApproveRequest(ctx, req.ID, actorFor(finance), "")
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("finance on dual request: err = %v, want PermissionError", err)
	}

	// The disallowed attempt must not have moved the status.
	got, _ := w.GetRequest(ctx, req.ID)
	if got.Status != models.StatusPending {
		t.Errorf("status after denied approval = %q, want pending", got.Status)
	}
	if len(got.History) != 1 {
		t.Errorf("history length after denied approval = %d, want 1", len(got.History))
	}
}

func TestRejectionIsAbsorbing(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	president := testutil.CreateUser(t, db, string(authz.RolePresident))
	vp := testutil.CreateUser(t, db, string(authz.RoleVicePresident))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestDeleteMember,
		models.ApproverDual, nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Move into a partial state first.
	if _, err := w.ApproveRequest(ctx, req.ID, actorFor(president), ""); err != nil {
		t.Fatalf("president approve: %v", err)
	}

	if err := w.RejectRequest(ctx, req.ID, actorFor(vp), "duplicate request"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	got, _ := w.GetRequest(ctx, req.ID)
	if got.Status != models.StatusRejected {
		t.Fatalf("status = %q, want rejected", got.Status)
	}
	if got.Reason != "duplicate request" {
		t.Errorf("reason = %q, want the rejection reason", got.Reason)
	}

	// A terminal request never reopens.
	if _, err := w.ApproveRequest(ctx, req.ID, actorFor(vp), ""); err == nil {
		t.Errorf("approve after rejection should fail")
	}
}

func TestRejectRequiresReason(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestPayment,
		string(authz.RoleFinance), nil, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = w.RejectRequest(ctx, req.ID, actorFor(finance), "   ")
	var v *ValidationError
	if !errors.As(err, &v) {
		t.Fatalf("blank reason: err = %v, want ValidationError", err)
	}

	got, _ := w.GetRequest(ctx, req.ID)
	if got.Status != models.StatusPending {
		t.Errorf("blank-reason reject must not change status, got %q", got.Status)
	}
}

func TestApproveMissingRequest(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))

	_, err := w.ApproveRequest(ctx, primitive.NewObjectID(), actorFor(finance), "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("missing request: err = %v, want NotFoundError", err)
	}
}

func TestPendingForFiltersByRole(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))

	if _, err := w.CreateRequest(ctx, actorFor(ops), models.RequestPayment,
		string(authz.RoleFinance), nil, ""); err != nil {
		t.Fatalf("create finance request: %v", err)
	}
	if _, err := w.CreateRequest(ctx, actorFor(ops), models.RequestSystemChange,
		models.ApproverDual, nil, ""); err != nil {
		t.Fatalf("create dual request: %v", err)
	}

	financeQueue, err := w.PendingFor(ctx, string(authz.RoleFinance))
	if err != nil {
		t.Fatalf("pending for finance: %v", err)
	}
	if len(financeQueue) != 1 {
		t.Errorf("finance queue length = %d, want 1", len(financeQueue))
	}

	presidentQueue, err := w.PendingFor(ctx, string(authz.RolePresident))
	if err != nil {
		t.Fatalf("pending for president: %v", err)
	}
	if len(presidentQueue) != 1 {
		t.Errorf("president queue length = %d, want 1 (the dual request)", len(presidentQueue))
	}

	teacherQueue, err := w.PendingFor(ctx, string(authz.RoleTeacher))
	if err != nil {
		t.Fatalf("pending for teacher: %v", err)
	}
	if len(teacherQueue) != 0 {
		t.Errorf("teacher queue length = %d, want 0", len(teacherQueue))
	}
}

func TestCommentRequest(t *testing.T) {
	w, db := newTestWorkflow(t)
	ctx := testutil.TestContext()

	ops := testutil.CreateUser(t, db, string(authz.RoleOperations))
	finance := testutil.CreateUser(t, db, string(authz.RoleFinance))
	teacher := testutil.CreateUser(t, db, string(authz.RoleTeacher))

	req, err := w.CreateRequest(ctx, actorFor(ops), models.RequestPayment,
		string(authz.RoleFinance), nil, "vendor invoice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The approver and the requester may comment; status stays pending.
	if err := w.CommentRequest(ctx, req.ID, actorFor(finance), "need the invoice number"); err != nil {
		t.Fatalf("approver comment: %v", err)
	}
	if err := w.CommentRequest(ctx, req.ID, actorFor(ops), "it is INV-2231"); err != nil {
		t.Fatalf("requester comment: %v", err)
	}

	got, err := w.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status = %q, want pending after comments", got.Status)
	}
	if len(got.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(got.History))
	}
	if got.History[2].Action != models.ActionCommented || got.History[2].Comment != "it is INV-2231" {
		t.Errorf("last history entry = %+v, want commented with the note", got.History[2])
	}

	// A bystander may not.
	var permission *PermissionError
	if err := w.CommentRequest(ctx, req.ID, actorFor(teacher), "me too"); !errors.As(err, &permission) {
		t.Errorf("bystander comment error = %v, want PermissionError", err)
	}

	// A blank comment never writes.
	var validation *ValidationError
	if err := w.CommentRequest(ctx, req.ID, actorFor(finance), "  "); !errors.As(err, &validation) {
		t.Errorf("blank comment error = %v, want ValidationError", err)
	}
}
