// internal/domain/models/approval.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Approval request types.
const (
	RequestMemberBatch  = "member_batch"
	RequestPayment      = "payment"
	RequestDeleteMember = "delete_member"
	RequestSystemChange = "system_change"
	RequestRoleGrant    = "role_grant"
)

// Approval request statuses. Approved and Rejected are terminal; a request
// never moves backward along its approval path.
const (
	StatusPending           = "pending"
	StatusAwaitingVP        = "awaiting_vp"
	StatusAwaitingPresident = "awaiting_president"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
)

// ApproverDual is the sentinel approver role meaning both the president and
// the vice president must sign off, in either order.
const ApproverDual = "dual"

// History actions.
const (
	ActionCreated   = "created"
	ActionApproved  = "approved"
	ActionRejected  = "rejected"
	ActionCommented = "commented"
)

// ApprovalHistoryItem is one immutable entry in a request's history.
// Entries are only ever appended, never edited.
type ApprovalHistoryItem struct {
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	ActorName string             `bson:"actor_name" json:"actor_name"`
	ActorRole string             `bson:"actor_role" json:"actor_role"`
	Action    string             `bson:"action" json:"action"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// ApprovalRequest is one pending decision flowing through the approval
// workflow. Created by a requester, mutated only by the workflow, and kept
// forever as part of the audit trail.
type ApprovalRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Type          string             `bson:"type" json:"type"`
	RequesterID   primitive.ObjectID `bson:"requester_id" json:"requester_id"`
	RequesterName string             `bson:"requester_name" json:"requester_name"`
	RequesterRole string             `bson:"requester_role" json:"requester_role"`

	// ApproverRole is a specific role, or ApproverDual when both the
	// president and vice president must each approve once.
	ApproverRole string `bson:"approver_role" json:"approver_role"`

	Status string `bson:"status" json:"status"`
	Data   bson.M `bson:"data,omitempty" json:"data,omitempty"`
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`

	History []ApprovalHistoryItem `bson:"history" json:"history"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request has reached a final state.
func (r ApprovalRequest) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
