// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler serves the public marketing pages.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot renders the landing page.
// GET /
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.New(r, "Welcome", "/"),
	}
	templates.Render(w, r, "home", data)
}

// ServeAbout renders the union's story and leadership page.
// GET /about
func (h *Handler) ServeAbout(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.New(r, "About the Union", "/"),
	}
	templates.Render(w, r, "about", data)
}

// ServeEcos renders the welfare programme page.
// GET /ecos
func (h *Handler) ServeEcos(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.New(r, "Welfare Programme", "/"),
	}
	templates.Render(w, r, "ecos", data)
}
