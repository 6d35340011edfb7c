package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Post("/login", handlers.Login(d))

		r.Group(func(r chi.Router) {
			r.Use(d.Gate.Require(handlers.Denied))

			r.Get("/gifts", handlers.AdminGifts(d))
			r.Post("/gifts", handlers.AddGift(d))
			r.Post("/gifts/bulk", handlers.BulkAddGifts(d))
			r.Delete("/gifts/{id}", handlers.DeleteGift(d))
			r.Post("/gifts/{id}/release", handlers.ReleaseGift(d))
			r.Get("/claims", handlers.Claims(d))
			r.Post("/reload", handlers.Reload(d))
		})
	})
}
