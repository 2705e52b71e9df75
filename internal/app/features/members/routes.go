// internal/app/features/members/routes.go
package members

import (
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Get("/{id}", h.ServeDetail)
		r.Post("/{id}", h.Update)
		r.Post("/{id}/permissions", h.UpdatePermissions)
		r.Post("/{id}/deactivate", h.Deactivate)
	})
	return r
}
