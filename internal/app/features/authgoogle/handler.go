// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"net/http"

	oauthstatestore "github.com/mwalimuhub/unionhub/internal/app/store/oauthstate"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/app/system/timeouts"
	"github.com/mwalimuhub/unionhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Handler implements Google sign-in for existing members. Google is an
// identity source only; accounts are created through the application
// review flow, never here.
type Handler struct {
	Users    *userstore.Store
	States   *oauthstatestore.Store
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	OAuth    *oauth2.Config
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sessions *auth.SessionManager, audit *auditlog.Logger, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    userstore.New(db),
		States:   oauthstatestore.New(db),
		Sessions: sessions,
		Audit:    audit,
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		Log: logger,
	}
}

// Enabled reports whether Google sign-in is configured.
func (h *Handler) Enabled() bool {
	return h.OAuth.ClientID != "" && h.OAuth.ClientSecret != ""
}

// Start stores a one-time state token and redirects to Google.
// GET /auth/google/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	state := uuid.NewString()
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, r.URL.Query().Get("return")); err != nil {
		h.Log.Error("oauth state save failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.OAuth.AuthCodeURL(state), http.StatusSeeOther)
}

// Callback validates the state, exchanges the code, and signs the member
// in if their Google email matches an active account.
// GET /auth/google/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.States.Consume(ctx, r.URL.Query().Get("state")); err != nil {
		h.Log.Warn("oauth callback with bad state", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	token, err := h.OAuth.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		h.Log.Warn("oauth code exchange failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	email, err := h.fetchEmail(ctx, token)
	if err != nil {
		h.Log.Warn("google userinfo fetch failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil || u.Status == models.StatusDisabled {
		// Unknown or disabled account; Google identity alone grants nothing.
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.Sessions.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("session save failed", zap.Error(err))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.Audit.Record(auditlog.Actor{ID: u.ID.Hex(), Name: u.FullName(), Role: u.Role},
		"auth.login_google", "", nil)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) fetchEmail(ctx context.Context, token *oauth2.Token) (string, error) {
	resp, err := h.OAuth.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	return info.Email, nil
}
