// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member application statuses.
const (
	ApplicationSubmitted = "submitted"
	ApplicationApproved  = "approved"
	ApplicationRejected  = "rejected"
)

// MemberApplication is a join request submitted through the public site.
// Approving one creates a teacher user and, when a valid referral code was
// supplied, a pending referral for the code's owner.
type MemberApplication struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"`
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`

	// County is the applicant's teaching district; it becomes the lens
	// regional admins see the member through.
	County    string `bson:"county" json:"county"`
	TSCNumber string `bson:"tsc_number" json:"tsc_number"`

	// ReferralCode is the code of the member who referred the applicant,
	// if any. Validated at review time, not at submission.
	ReferralCode string `bson:"referral_code,omitempty" json:"referral_code,omitempty"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
