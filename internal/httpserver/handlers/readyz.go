package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready     bool   `json:"ready"`
	Catalogue bool   `json:"catalogue"`
	Store     bool   `json:"store"`
	Error     string `json:"error,omitempty"`
}

// Readyz reports ready once the catalogue has been loaded and the store
// answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := readyzResponse{
			Catalogue: d.Registry.Reflection().Loaded(),
			Store:     true,
		}

		if err := pingStore(r.Context(), d); err != nil {
			resp.Store = false
			resp.Error = err.Error()
		}
		resp.Ready = resp.Catalogue && resp.Store

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func pingStore(parent context.Context, d deps.Deps) error {
	if d.Pinger == nil {
		return d.StoreErr
	}
	ctx, cancel := context.WithTimeout(parent, pingTimeout)
	defer cancel()
	return d.Pinger.Ping(ctx)
}
