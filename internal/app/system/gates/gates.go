// Package gates provides handler-level authorization checks. Route groups
// use auth.RequireSignedIn / auth.RequireRole for coarse access; a handler
// that needs a finer check than its route group calls a gate, which renders
// the friendly error page itself and reports OK=false.
package gates

import (
	"net/http"

	uierrors "github.com/mwalimuhub/unionhub/internal/app/features/errors"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Result carries the authenticated user's context out of a gate check.
type Result struct {
	Role   string
	Name   string
	UserID primitive.ObjectID
	OK     bool
}

// RequireAuth ensures a user is signed in, rendering the sign-in page
// otherwise.
func RequireAuth(w http.ResponseWriter, r *http.Request) Result {
	role, name, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return Result{OK: false}
	}
	return Result{Role: role, Name: name, UserID: uid, OK: true}
}

// RequirePermission ensures the signed-in user holds the permission,
// rendering forbidden with the given message otherwise.
func RequirePermission(w http.ResponseWriter, r *http.Request, p authz.Permission, forbiddenMsg string) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	if !authz.RequestHasPermission(r, p) {
		uierrors.RenderForbidden(w, r, forbiddenMsg, "/dashboard")
		return Result{OK: false}
	}
	return res
}

// RequireRegionAccess ensures the user may view members in the region.
func RequireRegionAccess(w http.ResponseWriter, r *http.Request, region string) Result {
	res := RequireAuth(w, r)
	if !res.OK {
		return res
	}
	if !authz.RequestCanViewRegion(r, region) {
		uierrors.RenderForbidden(w, r, "You are not assigned to this region.", "/dashboard")
		return Result{OK: false}
	}
	return res
}
