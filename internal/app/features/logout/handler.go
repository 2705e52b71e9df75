// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Sessions *auth.SessionManager
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(sessions *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Sessions: sessions, Audit: audit, Log: logger}
}

// SignOut clears the session and returns to the landing page.
// GET /logout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Record(auditlog.Actor{ID: u.ID, Name: u.Name, Role: u.Role},
			"auth.logout", "", nil)
	}
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("session clear failed", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
