// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents everyone who can sign in: union officials, regional
// administrators, operations staff, and ordinary teacher members.
//
// NOTE:
//   - Permissions is an additive override list layered on top of the
//     role-derived defaults in system/authz. It never subtracts.
//   - AssignedRegions only affects visibility for regional_admin and
//     operations roles; other roles ignore it.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"first_name" json:"first_name"`
	LastName   string             `bson:"last_name" json:"last_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"` // see system/authz.Role
	Status     string             `bson:"status,omitempty" json:"status,omitempty"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string `bson:"auth_method,omitempty" json:"auth_method,omitempty"` // password | google

	Permissions     []string `bson:"permissions,omitempty" json:"permissions,omitempty"`
	AssignedRegions []string `bson:"assigned_regions,omitempty" json:"assigned_regions,omitempty"`
	ReferralCode    string   `bson:"referral_code,omitempty" json:"referral_code,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the display name used in history entries and audit events.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// User status values.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// DefaultSiteName is shown in templates when no configured name is available.
const DefaultSiteName = "UnionHub"
