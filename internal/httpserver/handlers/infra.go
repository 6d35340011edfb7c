package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Gifts      *int   `json:"gifts,omitempty"`
	Available  *int   `json:"available,omitempty"`
	Claimed    *int   `json:"claimed,omitempty"`
	LastReload string `json:"last_reload,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Impact     string `json:"impact,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refl := d.Registry.Reflection()
		count := refl.Count()
		available, claimed := refl.Counts()

		lastReloadStr := "never"
		if lr := refl.LastReload(); !lr.IsZero() {
			lastReloadStr = lr.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"catalogue": {
				OK:         refl.Loaded(),
				Gifts:      &count,
				Available:  &available,
				Claimed:    &claimed,
				LastReload: lastReloadStr,
			},
			"store": checkStore(r, d),
			"claims": {
				OK:   true,
				Mode: claimMode(d),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if st, ok := components["store"]; ok && !st.OK {
		return "critical" // no store = no claims, no admin writes
	}
	if cat, ok := components["catalogue"]; ok && !cat.OK {
		return "degraded" // store is back but nothing loaded yet
	}
	return "operational"
}

func checkStore(r *http.Request, d deps.Deps) componentStatus {
	if err := pingStore(r.Context(), d); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StoreDriver,
			Impact: "registry-read-only",
			Error:  err.Error(),
		}
	}
	return componentStatus{
		OK:   true,
		Mode: d.StoreDriver,
	}
}

func claimMode(d deps.Deps) string {
	if d.Registry.ClaimGuard() {
		return "guarded"
	}
	return "last-writer-wins"
}
