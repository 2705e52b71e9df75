// internal/app/features/regions/routes.go
package regions

import (
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Post("/{id}/assign", h.Assign)
		r.Post("/{id}/unassign", h.Unassign)
	})
	return r
}
