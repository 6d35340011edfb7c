package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

// registerProbes exposes liveness, readiness and status for the operator.
func registerProbes(r chi.Router, d deps.Deps) {
	probes := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	probes.Get("/healthz", handlers.Healthz(d))
	probes.Get("/readyz", handlers.Readyz(d))
	probes.Get("/infra", handlers.Infra(d))
	probes.Method(http.MethodGet, "/metrics", handlers.Metrics(d))
}
