// internal/domain/models/referral.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Referral payout statuses. The progression is strictly forward:
// pending -> eligible -> requested -> paid, with an admin shortcut
// eligible -> paid. Paid is terminal; nothing ever returns to pending.
const (
	ReferralPending   = "pending"
	ReferralEligible  = "eligible"
	ReferralRequested = "requested"
	ReferralPaid      = "paid"
)

// ReferralBonusAmount is the flat bonus (KES) owed for a successful
// referral. Fixed at creation; never recomputed.
const ReferralBonusAmount = 500

// Referral records that one member brought in another. Created when a
// referred applicant is approved as a member.
type Referral struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReferrerID   primitive.ObjectID `bson:"referrer_id" json:"referrer_id"`
	ReferrerName string             `bson:"referrer_name" json:"referrer_name"`
	RefereeID    primitive.ObjectID `bson:"referee_id" json:"referee_id"`
	RefereeName  string             `bson:"referee_name" json:"referee_name"`

	Status string `bson:"status" json:"status"`
	Amount int    `bson:"amount" json:"amount"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
