// internal/app/system/approval/workflow.go
package approval

import (
	"context"
	"strings"

	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrConflict is returned when a decision raced another approver; the
// caller should re-read and surface the current state.
var ErrConflict = approvalstore.ErrConflict

// Actor is the authenticated principal driving a workflow operation.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role string
}

func (a Actor) historyItem(action, comment string) models.ApprovalHistoryItem {
	return models.ApprovalHistoryItem{
		ActorID:   a.ID,
		ActorName: a.Name,
		ActorRole: a.Role,
		Action:    action,
		Comment:   comment,
	}
}

func (a Actor) auditActor() auditlog.Actor {
	return auditlog.Actor{ID: a.ID.Hex(), Name: a.Name, Role: a.Role}
}

// Workflow is the approval state machine. All status changes to approval
// requests flow through here; nothing else writes request status.
type Workflow struct {
	store *approvalstore.Store
	audit *auditlog.Logger
}

func NewWorkflow(store *approvalstore.Store, audit *auditlog.Logger) *Workflow {
	return &Workflow{store: store, audit: audit}
}

// validRequestTypes is the closed set of request types the workflow accepts.
var validRequestTypes = map[string]bool{
	models.RequestMemberBatch:  true,
	models.RequestPayment:      true,
	models.RequestDeleteMember: true,
	models.RequestSystemChange: true,
	models.RequestRoleGrant:    true,
}

// CreateRequest opens a new request in pending status with a created
// history entry. ApproverRole is fixed for the life of the request: either
// one specific role or models.ApproverDual for a joint president and
// vice-president sign-off.
func (w *Workflow) CreateRequest(ctx context.Context, requester Actor, reqType string, approverRole string, data bson.M, reason string) (models.ApprovalRequest, error) {
	if !validRequestTypes[reqType] {
		return models.ApprovalRequest{}, &ValidationError{Field: "type", Detail: "unknown request type " + reqType}
	}
	approverRole = strings.ToLower(strings.TrimSpace(approverRole))
	if approverRole != models.ApproverDual {
		if _, ok := authz.ParseRole(approverRole); !ok {
			return models.ApprovalRequest{}, &ValidationError{Field: "approver_role", Detail: "unknown role " + approverRole}
		}
	}

	req, err := w.store.Create(ctx, models.ApprovalRequest{
		Type:          reqType,
		RequesterID:   requester.ID,
		RequesterName: requester.Name,
		RequesterRole: requester.Role,
		ApproverRole:  approverRole,
		Status:        models.StatusPending,
		Data:          data,
		Reason:        reason,
		History:       []models.ApprovalHistoryItem{requester.historyItem(models.ActionCreated, reason)},
	})
	if err != nil {
		return models.ApprovalRequest{}, err
	}

	w.audit.Record(requester.auditActor(), "approval.create", req.ID.Hex(), bson.M{
		"type":          reqType,
		"approver_role": approverRole,
	})
	return req, nil
}

// GetRequest loads a request, mapping a missing document to NotFoundError.
func (w *Workflow) GetRequest(ctx context.Context, id primitive.ObjectID) (*models.ApprovalRequest, error) {
	req, err := w.store.GetByID(ctx, id)
	if err == approvalstore.ErrNotFound {
		return nil, &NotFoundError{RequestID: id.Hex()}
	}
	return req, err
}

// ApproveRequest applies one approval and returns the new status so the
// caller can message "approved" versus "awaiting the other officer."
//
// Single-role requests go pending -> approved in one step. Dual requests
// record which seat acted first (awaiting_vp after a president approval,
// awaiting_president after a vice-president approval) and finish when the
// remaining seat approves. A disallowed actor gets PermissionError, never a
// silent no-op.
func (w *Workflow) ApproveRequest(ctx context.Context, id primitive.ObjectID, approver Actor, comment string) (string, error) {
	req, err := w.GetRequest(ctx, id)
	if err != nil {
		return "", err
	}
	if req.Terminal() {
		return "", &ValidationError{Field: "status", Detail: "request is already " + req.Status}
	}

	role := strings.ToLower(approver.Role)
	next, err := nextStatus(req, role)
	if err != nil {
		return "", err
	}

	if err := w.store.Transition(ctx, id, req.Status, next, approver.historyItem(models.ActionApproved, comment)); err != nil {
		if err == approvalstore.ErrNotFound {
			return "", &NotFoundError{RequestID: id.Hex()}
		}
		return "", err
	}

	w.audit.Record(approver.auditActor(), "approval.approve", id.Hex(), bson.M{
		"type": req.Type,
		"from": req.Status,
		"to":   next,
	})
	return next, nil
}

// nextStatus computes the status an approval by the given role would
// produce. Pure; the decision table of the state machine.
func nextStatus(req *models.ApprovalRequest, role string) (string, error) {
	if req.ApproverRole != models.ApproverDual {
		if role != req.ApproverRole {
			return "", &PermissionError{Role: role, Action: "approve"}
		}
		return models.StatusApproved, nil
	}

	switch req.Status {
	case models.StatusPending:
		switch role {
		case string(authz.RolePresident):
			return models.StatusAwaitingVP, nil
		case string(authz.RoleVicePresident):
			return models.StatusAwaitingPresident, nil
		}
	case models.StatusAwaitingVP:
		if role == string(authz.RoleVicePresident) {
			return models.StatusApproved, nil
		}
	case models.StatusAwaitingPresident:
		if role == string(authz.RolePresident) {
			return models.StatusApproved, nil
		}
	}
	return "", &PermissionError{Role: role, Action: "approve"}
}

// RejectRequest rejects a request from any non-terminal state. Rejection is
// absorbing: it skips any remaining approver and the request never reopens.
// A blank reason is a ValidationError before any write.
func (w *Workflow) RejectRequest(ctx context.Context, id primitive.ObjectID, rejector Actor, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return &ValidationError{Field: "reason", Detail: "a rejection reason is required"}
	}

	req, err := w.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if req.Terminal() {
		return &ValidationError{Field: "status", Detail: "request is already " + req.Status}
	}

	role := strings.ToLower(rejector.Role)
	if !mayDecide(req, role) {
		return &PermissionError{Role: role, Action: "reject"}
	}

	if err := w.store.Transition(ctx, id, req.Status, models.StatusRejected, rejector.historyItem(models.ActionRejected, reason)); err != nil {
		if err == approvalstore.ErrNotFound {
			return &NotFoundError{RequestID: id.Hex()}
		}
		return err
	}

	w.audit.Record(rejector.auditActor(), "approval.reject", id.Hex(), bson.M{
		"type":   req.Type,
		"from":   req.Status,
		"reason": reason,
	})
	return nil
}

// CommentRequest appends a commented history entry without touching the
// status. The requester and anyone on the approval path may comment, on
// open and terminal requests alike.
func (w *Workflow) CommentRequest(ctx context.Context, id primitive.ObjectID, actor Actor, comment string) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return &ValidationError{Field: "comment", Detail: "a comment is required"}
	}

	req, err := w.GetRequest(ctx, id)
	if err != nil {
		return err
	}

	role := strings.ToLower(actor.Role)
	if actor.ID != req.RequesterID && !mayDecide(req, role) {
		return &PermissionError{Role: role, Action: "comment"}
	}

	if err := w.store.AppendHistory(ctx, id, actor.historyItem(models.ActionCommented, comment)); err != nil {
		if err == approvalstore.ErrNotFound {
			return &NotFoundError{RequestID: id.Hex()}
		}
		return err
	}

	w.audit.Record(actor.auditActor(), "approval.comment", id.Hex(), nil)
	return nil
}

// mayDecide reports whether the role sits on the request's approval path at
// all. For dual requests either officer may reject at any point.
func mayDecide(req *models.ApprovalRequest, role string) bool {
	if req.ApproverRole == models.ApproverDual {
		return role == string(authz.RolePresident) || role == string(authz.RoleVicePresident)
	}
	return role == req.ApproverRole
}

// PendingFor lists the open requests the given role may act on. Officers
// see the whole dual queue plus anything routed to their own role.
func (w *Workflow) PendingFor(ctx context.Context, role string) ([]models.ApprovalRequest, error) {
	role = strings.ToLower(role)
	open := []string{models.StatusPending, models.StatusAwaitingVP, models.StatusAwaitingPresident}

	all, err := w.store.List(ctx, approvalstore.ListFilter{Statuses: open})
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, req := range all {
		if mayDecide(&req, role) {
			out = append(out, req)
		}
	}
	return out, nil
}
