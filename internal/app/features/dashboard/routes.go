// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/", h.ServeDashboard)
	})
	return r
}
