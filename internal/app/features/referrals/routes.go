// internal/app/features/referrals/routes.go
package referrals

import (
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)

		// Every member sees their own referrals.
		r.Get("/mine", h.ServeMine)
		r.Post("/mine/{id}/request", h.RequestPayout)

		// Payout administration; the handler gates on manage_payouts.
		r.Get("/", h.ServePayouts)
		r.Post("/{id}/eligible", h.MarkEligible)
		r.Post("/{id}/paid", h.MarkPaid)
	})
	return r
}
