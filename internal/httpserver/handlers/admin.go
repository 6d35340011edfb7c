package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
	"github.com/MrSnakeDoc/giftlist/internal/gate"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/images"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/registry"
	"github.com/MrSnakeDoc/giftlist/internal/sources/giftfile"
)

type loginRequest struct {
	Passphrase string `json:"passphrase"`
}

type loginResponse struct {
	Granted bool `json:"granted"`
}

// Login checks a passphrase without side effects. The admin API still
// expects the passphrase on every request.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		if !d.Gate.Attempt(req.Passphrase) {
			d.Logger.Info("admin login denied", logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, http.StatusUnauthorized, loginResponse{Granted: false})
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Granted: true})
	}
}

// Denied is the response written by the admin gate.
func Denied(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("WWW-Authenticate", gate.Header)
	jsonError(w, "wrong passphrase", http.StatusUnauthorized)
}

type adminGiftsResponse struct {
	Items     []domain.Gift `json:"items"`
	Total     int           `json:"total"`
	Available int           `json:"available"`
	Claimed   int           `json:"claimed"`
}

// AdminGifts lists the whole catalogue with claimant details.
func AdminGifts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gifts := d.Registry.Gifts()
		available, claimed := d.Registry.Counts()
		writeJSON(w, http.StatusOK, adminGiftsResponse{
			Items:     gifts,
			Total:     len(gifts),
			Available: available,
			Claimed:   claimed,
		})
	}
}

// AddGift accepts either a JSON body or a multipart form with an optional
// "image" file.
func AddGift(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item registry.NewItem

		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mt == "multipart/form-data" {
			var status int
			var err error
			item, status, err = readMultipartItem(w, r, d)
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					writeDomainError(w, d.Logger, err)
					return
				}
				jsonError(w, err.Error(), status)
				return
			}
		} else if err := decodeJSON(w, r, &item); err != nil {
			jsonError(w, "invalid request body", http.StatusBadRequest)
			return
		}

		g, err := d.Registry.AddItem(r.Context(), item)
		if err != nil {
			writeDomainError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

func readMultipartItem(w http.ResponseWriter, r *http.Request, d deps.Deps) (registry.NewItem, int, error) {
	limit := d.MaxImageBytes
	if limit <= 0 {
		limit = images.DefaultMaxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+maxJSONBody)
	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return registry.NewItem{}, http.StatusRequestEntityTooLarge, images.ErrTooLarge
		}
		return registry.NewItem{}, http.StatusBadRequest, errors.New("invalid multipart form")
	}

	item := registry.NewItem{
		Name:     r.FormValue("name"),
		ImageURL: r.FormValue("imageUrl"),
		Category: r.FormValue("category"),
	}

	file, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return item, 0, nil
	}
	if err != nil {
		return registry.NewItem{}, http.StatusBadRequest, errors.New("invalid image field")
	}
	defer file.Close()

	img, err := images.Read(file, limit)
	if err != nil {
		return registry.NewItem{}, imageErrorStatus(err), imageError(err)
	}

	url, err := d.Uploader.Upload(r.Context(), img)
	if err != nil {
		d.Logger.Error("image upload failed", logger.Error(err))
		return registry.NewItem{}, http.StatusBadGateway, errors.New("image upload failed")
	}
	item.ImageURL = url
	return item, 0, nil
}

func imageErrorStatus(err error) int {
	switch {
	case errors.Is(err, images.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, images.ErrNotImage):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusUnprocessableEntity
	}
}

func imageError(err error) error {
	if errors.Is(err, images.ErrEmpty) {
		return &domain.ValidationError{Field: "image", Reason: "file is empty"}
	}
	return err
}

type bulkRequest struct {
	Items []registry.NewItem `json:"items"`
}

type bulkResponse struct {
	Inserted int `json:"inserted"`
}

// BulkAddGifts inserts a batch. JSON bodies carry {"items":[...]}; YAML
// bodies use the import file format.
func BulkAddGifts(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var items []registry.NewItem

		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mt {
		case "application/yaml", "application/x-yaml", "text/yaml":
			data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
			if err != nil {
				jsonError(w, "invalid request body", http.StatusBadRequest)
				return
			}
			f, err := giftfile.Parse(data)
			if err != nil {
				jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
			if items, err = giftfile.ToItems(f); err != nil {
				writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: "items"})
				return
			}
		default:
			var req bulkRequest
			if err := decodeJSON(w, r, &req); err != nil {
				jsonError(w, "invalid request body", http.StatusBadRequest)
				return
			}
			items = req.Items
		}

		if len(items) == 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "no gifts to add", Field: "items"})
			return
		}

		n, err := d.Registry.BulkAdd(r.Context(), items)
		if err != nil {
			writeDomainError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, bulkResponse{Inserted: n})
	}
}

// confirmed reads the confirm query parameter.
func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// DeleteGift removes a gift. Requires confirm=true.
func DeleteGift(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Registry.RemoveItem(r.Context(), chi.URLParam(r, "id"), confirmed(r)); err != nil {
			writeDomainError(w, d.Logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ReleaseGift puts a claimed gift back to available. Requires confirm=true.
func ReleaseGift(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := d.Registry.ReleaseItem(r.Context(), chi.URLParam(r, "id"), confirmed(r))
		if err != nil {
			writeDomainError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

type claimsResponse struct {
	Items []registry.Claim `json:"items"`
	Total int              `json:"total"`
}

// Claims serves the received-claims report.
func Claims(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := d.Registry.Claims()
		writeJSON(w, http.StatusOK, claimsResponse{Items: claims, Total: len(claims)})
	}
}
