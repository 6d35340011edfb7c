package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/store"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}

// writeDomainError maps registry errors to HTTP statuses.
// Store details stay in the log; guests only see a generic message.
func writeDomainError(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *domain.ValidationError
	var rerr *domain.RemoteError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, domain.ErrConfirmationRequired):
		jsonError(w, "confirmation required, repeat with confirm=true", http.StatusPreconditionRequired)
	case errors.Is(err, domain.ErrAlreadyClaimed):
		jsonError(w, "gift already claimed", http.StatusConflict)
	case errors.Is(err, domain.ErrNotFound):
		jsonError(w, "gift not found", http.StatusNotFound)
	case errors.Is(err, store.ErrUnconfigured):
		jsonError(w, "catalogue store unavailable", http.StatusServiceUnavailable)
	case errors.As(err, &rerr):
		jsonError(w, "catalogue store request failed, try again", http.StatusBadGateway)
	default:
		log.Error("unexpected handler error", logger.Error(err))
		jsonError(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
