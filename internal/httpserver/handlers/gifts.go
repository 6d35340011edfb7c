package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
)

// publicGift is what guests see. Claimant details are admin-only.
type publicGift struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ImageURL string        `json:"imageUrl"`
	Category string        `json:"category,omitempty"`
	Status   domain.Status `json:"status"`
}

type giftsResponse struct {
	Items      []publicGift `json:"items"`
	Page       int          `json:"page"`
	TotalPages int          `json:"totalPages"`
	Total      int          `json:"total"`
	PageSize   int          `json:"pageSize"`
}

func toPublic(g domain.Gift) publicGift {
	return publicGift{
		ID:       g.ID,
		Name:     g.Name,
		ImageURL: g.ImageURL,
		Category: g.Category,
		Status:   g.Status,
	}
}

// Gifts serves one page of the catalogue. A missing or malformed page
// parameter means page 1; out of range values are clamped.
func Gifts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			page = 1
		}

		p := d.Registry.Page(page)
		items := make([]publicGift, 0, len(p.Items))
		for _, g := range p.Items {
			items = append(items, toPublic(g))
		}

		writeJSON(w, http.StatusOK, giftsResponse{
			Items:      items,
			Page:       p.Page,
			TotalPages: p.TotalPages,
			Total:      p.Total,
			PageSize:   p.PageSize,
		})
	}
}

type claimRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Claim records a guest claim on one gift.
func Claim(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req claimRequest
		if err := decodeJSON(w, r, &req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		g, err := d.Registry.SubmitClaim(r.Context(), id, req.Name, req.Phone)
		if err != nil {
			d.Logger.Debug("claim rejected",
				logger.String("id", id),
				logger.Error(err))
			writeDomainError(w, d.Logger, err)
			return
		}

		writeJSON(w, http.StatusOK, toPublic(g))
	}
}
