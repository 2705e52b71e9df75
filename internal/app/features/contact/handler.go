// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"net/http"
	"strings"

	contactstore "github.com/mwalimuhub/unionhub/internal/app/store/contact"
	"github.com/mwalimuhub/unionhub/internal/app/system/htmlsanitize"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Messages *contactstore.Store
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Messages: contactstore.New(db),
		Log:      logger,
	}
}

type formData struct {
	viewdata.BaseVM
	Name  string
	Email string
	Body  string
	Sent  bool
}

// ServeForm renders the contact form.
// GET /contact
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	data := formData{BaseVM: viewdata.New(r, "Contact Us", "/")}
	templates.Render(w, r, "contact", data)
}

// Submit stores an enquiry. Everything typed by the public is stripped of
// HTML before it is persisted or echoed back.
// POST /contact
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	data := formData{
		BaseVM: viewdata.New(r, "Contact Us", "/"),
		Name:   htmlsanitize.Strict(strings.TrimSpace(r.FormValue("name"))),
		Email:  strings.TrimSpace(r.FormValue("email")),
		Body:   htmlsanitize.Strict(strings.TrimSpace(r.FormValue("message"))),
	}

	if data.Name == "" || data.Email == "" || data.Body == "" {
		data.Error = "Please fill in your name, email, and message."
		templates.Render(w, r, "contact", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err := h.Messages.Create(ctx, contactstore.Message{
		Name:  data.Name,
		Email: data.Email,
		Body:  data.Body,
	})
	if err != nil {
		h.Log.Error("contact message save failed", zap.Error(err))
		data.Error = "Something went wrong. Please try again."
		templates.Render(w, r, "contact", data)
		return
	}

	data.Sent = true
	data.Name, data.Email, data.Body = "", "", ""
	templates.Render(w, r, "contact", data)
}
