// internal/app/features/approvals/routes.go
package approvals

import (
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Use(auth.RequireRole(
			string(authz.RolePresident),
			string(authz.RoleVicePresident),
			string(authz.RoleFinance),
			string(authz.RoleOperations),
		))
		r.Get("/", h.ServeList)
		r.Get("/{id}", h.ServeDetail)
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
		r.Post("/{id}/comment", h.Comment)
	})
	return r
}
