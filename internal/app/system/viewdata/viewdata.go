// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// BaseVM holds the fields every page template needs. Feature view models
// embed it:
//
//	type pageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields
//	}
type BaseVM struct {
	SiteName string

	IsLoggedIn bool
	Role       string
	RoleLabel  string
	UserName   string

	// Nav visibility, derived from the permission model so templates never
	// re-implement role checks.
	CanReviewApplications bool
	CanApprove            bool
	CanViewFinance        bool
	CanManagePayouts      bool
	CanAssignRegions      bool
	CanManageMembers      bool

	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string

	Flash string
	Error string
}

// New builds a populated BaseVM for the request.
func New(r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)
	principal := authz.Principal(r)

	return BaseVM{
		SiteName: models.DefaultSiteName,

		IsLoggedIn: signedIn,
		Role:       role,
		RoleLabel:  authz.Role(role).Label(),
		UserName:   name,

		CanReviewApplications: authz.HasPermission(principal, authz.PermReviewApplications),
		CanApprove:            authz.HasPermission(principal, authz.PermApproveMembers) || authz.HasPermission(principal, authz.PermApprovePayments),
		CanViewFinance:        authz.HasPermission(principal, authz.PermViewFinance),
		CanManagePayouts:      authz.HasPermission(principal, authz.PermManagePayouts),
		CanAssignRegions:      authz.HasPermission(principal, authz.PermAssignRegions),
		CanManageMembers:      authz.HasPermission(principal, authz.PermManageMembers),

		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),

		CSRFToken: csrf.Token(r),
	}
}
