// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "", "", NilObjectID, false, so callers can trust that ok=true
// means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// Principal rebuilds a models.User view of the session user, sufficient for
// the pure permission checks. Returns nil when not signed in.
func Principal(r *http.Request) *models.User {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil
	}
	return &models.User{
		ID:              oid,
		FirstName:       user.Name,
		Email:           user.Email,
		Role:            strings.ToLower(user.Role),
		Permissions:     user.Permissions,
		AssignedRegions: user.AssignedRegions,
		ReferralCode:    user.ReferralCode,
	}
}

// RequestHasPermission reports whether the current request's user holds the
// permission. False when not signed in.
func RequestHasPermission(r *http.Request, p Permission) bool {
	return HasPermission(Principal(r), p)
}

// RequestCanViewRegion reports whether the current request's user may view
// members in the given region.
func RequestCanViewRegion(r *http.Request, region string) bool {
	return CanViewRegion(Principal(r), region)
}

// HasAnyRole reports whether the current request's user has any of the given
// roles. Returns false if no user is present.
func HasAnyRole(r *http.Request, roles ...Role) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, want := range roles {
		if Role(role) == want {
			return true
		}
	}
	return false
}

// IsOfficer reports whether the current user is president or vice president.
// Officers see the full dual-approval queue.
func IsOfficer(r *http.Request) bool {
	return HasAnyRole(r, RolePresident, RoleVicePresident)
}
