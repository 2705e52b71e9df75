// internal/app/features/home/routes.go
package home

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRoot)
	r.Get("/about", h.ServeAbout)
	r.Get("/ecos", h.ServeEcos)
	return r
}
