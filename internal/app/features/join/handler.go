// internal/app/features/join/handler.go
package join

import (
	"context"
	"errors"
	"net/http"
	"strings"

	applicationstore "github.com/mwalimuhub/unionhub/internal/app/store/applications"
	"github.com/mwalimuhub/unionhub/internal/app/system/htmlsanitize"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/app/system/viewdata"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public membership application form. Applications land
// in a review queue; nothing here creates users directly.
type Handler struct {
	Applications *applicationstore.Store
	Log          *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Applications: applicationstore.New(db),
		Log:          logger,
	}
}

type formData struct {
	viewdata.BaseVM
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	County       string
	TSCNumber    string
	ReferralCode string
	Submitted    bool
}

// ServeForm renders the join form. A referral code may arrive in the query
// string from a shared link.
// GET /join
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	data := formData{
		BaseVM:       viewdata.New(r, "Join the Union", "/"),
		ReferralCode: strings.TrimSpace(r.URL.Query().Get("ref")),
	}
	templates.Render(w, r, "join", data)
}

// Submit records the application for review.
// POST /join
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	data := formData{
		BaseVM:       viewdata.New(r, "Join the Union", "/"),
		FirstName:    htmlsanitize.Strict(r.FormValue("first_name")),
		LastName:     htmlsanitize.Strict(r.FormValue("last_name")),
		Email:        strings.TrimSpace(r.FormValue("email")),
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		County:       htmlsanitize.Strict(r.FormValue("county")),
		TSCNumber:    strings.TrimSpace(r.FormValue("tsc_number")),
		ReferralCode: strings.TrimSpace(r.FormValue("referral_code")),
	}

	if data.FirstName == "" || data.LastName == "" || data.Email == "" ||
		data.County == "" || data.TSCNumber == "" {
		data.Error = "Please fill in all required fields."
		templates.Render(w, r, "join", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.Applications.Create(ctx, models.MemberApplication{
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Email:        data.Email,
		Phone:        data.Phone,
		County:       data.County,
		TSCNumber:    data.TSCNumber,
		ReferralCode: data.ReferralCode,
	})
	if errors.Is(err, applicationstore.ErrDuplicate) {
		data.Error = "An application with this email is already under review."
		templates.Render(w, r, "join", data)
		return
	}
	if err != nil {
		h.Log.Error("application save failed", zap.Error(err))
		data.Error = "Something went wrong. Please try again."
		templates.Render(w, r, "join", data)
		return
	}

	data.Submitted = true
	templates.Render(w, r, "join", data)
}
