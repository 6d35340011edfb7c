package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
)

// Metrics exposes the Prometheus registry.
func Metrics(d deps.Deps) http.Handler {
	return d.Metrics.Handler()
}
