package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/mw"
)

func init() { Register(registerGifts) }

func registerGifts(r chi.Router, d deps.Deps) {
	r.Route("/api/gifts", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Get("/", handlers.Gifts(d))

		claim := r.With()
		if d.ClaimLimit > 0 {
			claim = r.With(mw.RateLimit(claimRateLimit(d)))
		}
		claim.Post("/{id}/claim", handlers.Claim(d))
	})
}

// claimRateLimit allows ClaimLimit claims per ClaimWindow for each IP.
func claimRateLimit(d deps.Deps) mw.RateLimitConfig {
	window := d.ClaimWindow
	if window <= 0 {
		window = time.Minute
	}
	perMin := int(float64(d.ClaimLimit) * float64(time.Minute) / float64(window))
	if perMin < 1 {
		perMin = 1
	}
	return mw.RateLimitConfig{
		Burst:             d.ClaimLimit,
		RefillPerIPPerMin: perMin,
		MaxEntries:        10_000,
		SweepInterval:     time.Minute,
		IdleTTL:           15 * time.Minute,
		TrustProxy:        d.TrustProxy,
		Message:           "too many claims, try again later",
		Now:               d.TimeNow,
	}
}
