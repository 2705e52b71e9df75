// internal/testutil/http.go
package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
)

// SessionUserFor converts a fixture user into the shape the session
// middleware would inject.
func SessionUserFor(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:              u.ID.Hex(),
		Name:            u.FullName(),
		Email:           u.Email,
		Role:            u.Role,
		Permissions:     u.Permissions,
		AssignedRegions: u.AssignedRegions,
		ReferralCode:    u.ReferralCode,
	}
}

// NewAuthenticatedRequest builds a GET request with the user already in
// context, bypassing the session cookie machinery.
func NewAuthenticatedRequest(method, target string, u models.User) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return auth.WithTestUser(r, SessionUserFor(u))
}

// NewAuthenticatedForm builds a form POST with the user in context.
func NewAuthenticatedForm(target string, u models.User, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return auth.WithTestUser(r, SessionUserFor(u))
}
