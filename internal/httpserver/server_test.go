package httpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/catalogue"
	"github.com/MrSnakeDoc/giftlist/internal/gate"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/images"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/metrics"
	"github.com/MrSnakeDoc/giftlist/internal/registry"
	"github.com/MrSnakeDoc/giftlist/internal/store"
	"github.com/MrSnakeDoc/giftlist/internal/store/memory"
)

const passphrase = "amor-eterno"

var pngBytes, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func ptr(s string) *string { return &s }

func seed() []store.Record {
	return []store.Record{
		{ID: "g1", Name: "Abajur", ImageURL: "https://img/1", Status: store.StatusAvailable},
		{ID: "g2", Name: "Batedeira", ImageURL: "https://img/2", Status: store.StatusAvailable},
		{ID: "g3", Name: "Cafeteira", ImageURL: "https://img/3", Status: store.StatusSelected,
			GuestName: ptr("Ana"), GuestPhone: ptr("11999998888")},
	}
}

// failingRepo fails every update so claims surface as remote errors.
type failingRepo struct {
	*memory.Store
}

func (failingRepo) UpdateByID(context.Context, string, store.Update) (store.Record, error) {
	return store.Record{}, errors.New("connection reset")
}

type testEnv struct {
	handler http.Handler
	store   *memory.Store
	deps    deps.Deps
}

func newTestEnv(t *testing.T, mutate ...func(*deps.Deps)) *testEnv {
	t.Helper()
	return newTestEnvWithRepo(t, nil, mutate...)
}

func newTestEnvWithRepo(t *testing.T, repo store.Repository, mutate ...func(*deps.Deps)) *testEnv {
	t.Helper()

	mem := memory.NewStore(seed()...)
	seeded := repo == nil
	if seeded {
		repo = mem
	}

	m := metrics.New()
	svc := registry.New(repo, catalogue.NewReflection(),
		registry.WithMetrics(m),
		registry.WithPlaceholder(func() string { return "https://picsum.photos/400/400?random=1" }))
	if err := svc.Load(context.Background()); err != nil && seeded {
		t.Fatalf("Load() error = %v", err)
	}

	d := deps.Deps{
		Logger:        logger.NewNop(),
		StartTime:     time.Now(),
		Version:       "test",
		TimeNow:       time.Now,
		Registry:      svc,
		Gate:          gate.New(passphrase),
		Uploader:      images.Inline{},
		MaxImageBytes: 1 << 20,
		Metrics:       m,
		StoreDriver:   "memory",
		ReloadTrigger: make(chan struct{}, 1),
	}
	if p, ok := repo.(store.Pinger); ok {
		d.Pinger = p
	}
	for _, f := range mutate {
		f(&d)
	}

	return &testEnv{handler: NewRouter(d.Logger, d), store: mem, deps: d}
}

func (e *testEnv) do(t *testing.T, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

func admin(r *http.Request) *http.Request {
	r.Header.Set(gate.Header, passphrase)
	return r
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

// ─────────────────────────────────────────────────────────────────
// Public surface
// ─────────────────────────────────────────────────────────────────

func TestGifts_ListHidesClaimants(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/gifts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if strings.Contains(rec.Body.String(), "Ana") || strings.Contains(rec.Body.String(), "claimantPhone") {
		t.Errorf("public listing leaks claimant data: %s", rec.Body)
	}

	body := decode[struct {
		Items []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"items"`
		Page       int `json:"page"`
		TotalPages int `json:"totalPages"`
		Total      int `json:"total"`
		PageSize   int `json:"pageSize"`
	}](t, rec)

	if body.Total != 3 || body.Page != 1 || body.TotalPages != 1 || body.PageSize != catalogue.PageSize {
		t.Errorf("page meta = %+v", body)
	}
	var order []string
	for _, it := range body.Items {
		order = append(order, it.ID)
	}
	if strings.Join(order, ",") != "g1,g2,g3" {
		t.Errorf("order = %v, want available first then by name", order)
	}
}

func TestGifts_PageParam(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", 1},
		{"garbage", "?page=abc", 1},
		{"zero", "?page=0", 1},
		{"past the end", "?page=99", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/gifts"+tt.query, nil))
			body := decode[struct {
				Page int `json:"page"`
			}](t, rec)
			if body.Page != tt.want {
				t.Errorf("page = %d, want %d", body.Page, tt.want)
			}
		})
	}
}

func TestClaim(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		body      any
		wantCode  int
		wantField string
	}{
		{"success", "g1", map[string]string{"name": " Bia ", "phone": "11988887777"}, http.StatusOK, ""},
		{"empty name", "g1", map[string]string{"name": "  ", "phone": "11988887777"}, http.StatusUnprocessableEntity, "name"},
		{"short phone", "g1", map[string]string{"name": "Bia", "phone": "1234"}, http.StatusUnprocessableEntity, "phone"},
		{"already claimed", "g3", map[string]string{"name": "Bia", "phone": "11988887777"}, http.StatusConflict, ""},
		{"unknown gift", "nope", map[string]string{"name": "Bia", "phone": "11988887777"}, http.StatusNotFound, ""},
		{"bad json", "g1", "not an object", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/"+tt.id+"/claim", tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body)
			}
			if tt.wantField != "" {
				if got := decode[errorBody](t, rec).Field; got != tt.wantField {
					t.Errorf("field = %q, want %q", got, tt.wantField)
				}
			}
		})
	}
}

func TestClaim_SecondClaimConflicts(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]string{"name": "Bia", "phone": "11988887777"}

	first := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g2/claim", body))
	if first.Code != http.StatusOK {
		t.Fatalf("first claim status = %d", first.Code)
	}
	got := decode[struct {
		Status string `json:"status"`
	}](t, first)
	if got.Status != "claimed" {
		t.Errorf("status = %q, want claimed", got.Status)
	}

	second := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g2/claim", body))
	if second.Code != http.StatusConflict {
		t.Errorf("second claim status = %d, want 409", second.Code)
	}
}

func TestClaim_RemoteError(t *testing.T) {
	env := newTestEnvWithRepo(t, failingRepo{Store: memory.NewStore(seed()...)})

	rec := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g1/claim",
		map[string]string{"name": "Bia", "phone": "11988887777"}))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection reset") {
		t.Errorf("store detail leaked to guest: %s", rec.Body)
	}

	g, _ := env.deps.Registry.Reflection().Get("g1")
	if !g.IsAvailable() {
		t.Error("reflection changed after failed claim")
	}
}

func TestClaim_RateLimited(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.ClaimLimit = 1
		d.ClaimWindow = time.Hour
	})
	body := map[string]string{"name": "", "phone": ""}

	if rec := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g1/claim", body)); rec.Code == http.StatusTooManyRequests {
		t.Fatal("first request rate limited")
	}
	rec := env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g1/claim", body))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestInertStore(t *testing.T) {
	env := newTestEnvWithRepo(t, store.Inert{Reason: errors.New("missing GIFTLIST_DATABASE_URL")})

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/api/gifts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	if body := decode[struct {
		Total int `json:"total"`
	}](t, rec); body.Total != 0 {
		t.Errorf("total = %d, want 0", body.Total)
	}

	rec = env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts", map[string]string{"name": "Toalhas"})))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("add status = %d, want 503", rec.Code)
	}

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz status = %d, want 503", rec.Code)
	}
}

// ─────────────────────────────────────────────────────────────────
// Admin surface
// ─────────────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		secret string
		want   int
	}{
		{"granted", passphrase, http.StatusOK},
		{"denied", "wrong", http.StatusUnauthorized},
		{"empty", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{"passphrase": tt.secret}))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			got := decode[struct {
				Granted bool `json:"granted"`
			}](t, rec)
			if got.Granted != (tt.want == http.StatusOK) {
				t.Errorf("granted = %v", got.Granted)
			}
		})
	}
}

func TestAdmin_RequiresPassphrase(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/admin/gifts"},
		{http.MethodPost, "/api/admin/gifts"},
		{http.MethodPost, "/api/admin/gifts/bulk"},
		{http.MethodDelete, "/api/admin/gifts/g1?confirm=true"},
		{http.MethodPost, "/api/admin/gifts/g3/release?confirm=true"},
		{http.MethodGet, "/api/admin/claims"},
		{http.MethodPost, "/api/admin/reload"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			r := jsonRequest(rt.method, rt.path, nil)
			r.Header.Set(gate.Header, "wrong")
			if rec := env.do(t, r); rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}

	if env.store.Count() != 3 {
		t.Error("denied request reached the store")
	}
}

func TestAdminGifts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, admin(httptest.NewRequest(http.MethodGet, "/api/admin/gifts", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct {
		Items []struct {
			ID           string `json:"id"`
			ClaimantName string `json:"claimantName"`
		} `json:"items"`
		Total     int `json:"total"`
		Available int `json:"available"`
		Claimed   int `json:"claimed"`
	}](t, rec)

	if body.Total != 3 || body.Available != 2 || body.Claimed != 1 {
		t.Errorf("counts = %+v", body)
	}
	if body.Items[2].ClaimantName != "Ana" {
		t.Errorf("admin listing should carry claimant, got %+v", body.Items[2])
	}
}

func TestAddGift_JSON(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts",
		map[string]string{"name": " Jogo de toalhas ", "category": "Banho"})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	g := decode[struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		ImageURL string `json:"imageUrl"`
		Status   string `json:"status"`
	}](t, rec)

	if g.ID == "" || g.Name != "Jogo de toalhas" || g.Status != "available" {
		t.Errorf("gift = %+v", g)
	}
	if g.ImageURL != "https://picsum.photos/400/400?random=1" {
		t.Errorf("imageUrl = %q, want placeholder", g.ImageURL)
	}
	if env.store.Count() != 4 {
		t.Errorf("store count = %d, want 4", env.store.Count())
	}

	rec = env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts", map[string]string{"name": ""})))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty name status = %d, want 422", rec.Code)
	}
}

func multipartRequest(t *testing.T, name string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", name)
	if file != nil {
		fw, err := mw.CreateFormFile("image", "upload.bin")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(file)
	}
	_ = mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/api/admin/gifts", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return admin(r)
}

func TestAddGift_Multipart(t *testing.T) {
	tests := []struct {
		name       string
		gift       string
		file       []byte
		wantCode   int
		wantPrefix string
	}{
		{"png upload", "Quadro", pngBytes, http.StatusCreated, "data:image/png;base64,"},
		{"no file", "Quadro", nil, http.StatusCreated, "https://picsum.photos/"},
		{"not an image", "Quadro", []byte("hello, plain text"), http.StatusUnsupportedMediaType, ""},
		{"empty name", "", pngBytes, http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, multipartRequest(t, tt.gift, tt.file))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body)
			}
			if tt.wantPrefix == "" {
				return
			}
			g := decode[struct {
				ImageURL string `json:"imageUrl"`
			}](t, rec)
			if !strings.HasPrefix(g.ImageURL, tt.wantPrefix) {
				t.Errorf("imageUrl = %q, want prefix %q", g.ImageURL, tt.wantPrefix)
			}
		})
	}
}

func TestBulkAddGifts(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts/bulk", map[string]any{
			"items": []map[string]string{{"name": "Panelas"}, {"name": "Talheres", "category": "Cozinha"}},
		})))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		if got := decode[struct {
			Inserted int `json:"inserted"`
		}](t, rec).Inserted; got != 2 {
			t.Errorf("inserted = %d, want 2", got)
		}
		if n := env.deps.Registry.Reflection().Count(); n != 5 {
			t.Errorf("reflection count = %d, want 5", n)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		env := newTestEnv(t)
		doc := "Cozinha:\n  - Panelas\n  - name: Talheres\nBanho:\n  - Toalhas\n"
		r := httptest.NewRequest(http.MethodPost, "/api/admin/gifts/bulk", strings.NewReader(doc))
		r.Header.Set("Content-Type", "application/yaml")
		rec := env.do(t, admin(r))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
		}
		if env.store.Count() != 6 {
			t.Errorf("store count = %d, want 6", env.store.Count())
		}
	})

	t.Run("blank name rejects whole batch", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts/bulk", map[string]any{
			"items": []map[string]string{{"name": "Panelas"}, {"name": " "}},
		})))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422", rec.Code)
		}
		if got := decode[errorBody](t, rec).Field; got != "items[1].name" {
			t.Errorf("field = %q", got)
		}
		if env.store.Count() != 3 {
			t.Error("partial batch reached the store")
		}
	})

	t.Run("empty", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, admin(jsonRequest(http.MethodPost, "/api/admin/gifts/bulk", map[string]any{"items": []any{}})))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})
}

func TestDeleteGift(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, admin(httptest.NewRequest(http.MethodDelete, "/api/admin/gifts/g1", nil)))
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("unconfirmed status = %d, want 428", rec.Code)
	}
	if env.store.Count() != 3 {
		t.Fatal("unconfirmed delete reached the store")
	}

	rec = env.do(t, admin(httptest.NewRequest(http.MethodDelete, "/api/admin/gifts/g1?confirm=true", nil)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, ok := env.deps.Registry.Reflection().Get("g1"); ok {
		t.Error("gift still in reflection")
	}

	rec = env.do(t, admin(httptest.NewRequest(http.MethodDelete, "/api/admin/gifts/g1?confirm=true", nil)))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestReleaseGift(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, admin(httptest.NewRequest(http.MethodPost, "/api/admin/gifts/g3/release", nil)))
	if rec.Code != http.StatusPreconditionRequired {
		t.Fatalf("unconfirmed status = %d, want 428", rec.Code)
	}

	for i := 0; i < 2; i++ {
		rec = env.do(t, admin(httptest.NewRequest(http.MethodPost, "/api/admin/gifts/g3/release?confirm=true", nil)))
		if rec.Code != http.StatusOK {
			t.Fatalf("release #%d status = %d", i+1, rec.Code)
		}
	}

	g := decode[struct {
		Status       string `json:"status"`
		ClaimantName string `json:"claimantName"`
	}](t, rec)
	if g.Status != "available" || g.ClaimantName != "" {
		t.Errorf("released gift = %+v", g)
	}
}

func TestClaimsReport(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, jsonRequest(http.MethodPost, "/api/gifts/g1/claim", map[string]string{"name": "Zeca", "phone": "11977776666"}))

	rec := env.do(t, admin(httptest.NewRequest(http.MethodGet, "/api/admin/claims", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct {
		Items []registry.Claim `json:"items"`
		Total int              `json:"total"`
	}](t, rec)

	if body.Total != 2 || body.Items[0].ClaimantName != "Ana" || body.Items[1].GiftID != "g1" {
		t.Errorf("claims = %+v", body)
	}
}

func TestReload(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, admin(httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first reload status = %d, want 202", rec.Code)
	}
	// Nobody drains the trigger in this test.
	rec = env.do(t, admin(httptest.NewRequest(http.MethodPost, "/api/admin/reload", nil)))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second reload status = %d, want 429", rec.Code)
	}
}

// ─────────────────────────────────────────────────────────────────
// Infra surface
// ─────────────────────────────────────────────────────────────────

func TestInfraEndpoints(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/readyz", http.StatusOK, `"ready":true`},
		{"/infra", http.StatusOK, `"mode":"operational"`},
		{"/metrics", http.StatusOK, "giftlist_catalogue_gifts"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := env.do(t, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q: %s", tt.contains, rec.Body)
			}
		})
	}
}

func TestInfraEndpoints_CIDRRestricted(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"10.0.0.0/8"}
		d.TrustProxy = false
	})

	r := httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.RemoteAddr = "192.168.1.10:4242"
	if rec := env.do(t, r); rec.Code != http.StatusForbidden {
		t.Errorf("outside status = %d, want 403", rec.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/infra", nil)
	r.RemoteAddr = "10.1.2.3:4242"
	if rec := env.do(t, r); rec.Code != http.StatusOK {
		t.Errorf("inside status = %d, want 200", rec.Code)
	}
}

func TestReadyz_NotLoaded(t *testing.T) {
	svc := registry.New(memory.NewStore(), nil)
	d := deps.Deps{
		Logger:   logger.NewNop(),
		Registry: svc,
		Gate:     gate.New(passphrase),
		Pinger:   memory.NewStore(),
	}
	rec := httptest.NewRecorder()
	NewRouter(d.Logger, d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, func(d *deps.Deps) {
		d.AllowedOrigins = []string{"https://casamento.example"}
	})

	r := httptest.NewRequest(http.MethodOptions, "/api/admin/gifts", nil)
	r.Header.Set("Origin", "https://casamento.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := env.do(t, r)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://casamento.example" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), gate.Header) {
		t.Errorf("Allow-Headers = %q, want %s", rec.Header().Get("Access-Control-Allow-Headers"), gate.Header)
	}

	r = httptest.NewRequest(http.MethodOptions, "/api/admin/gifts", nil)
	r.Header.Set("Origin", "https://evil.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	if rec := env.do(t, r); rec.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", rec.Code)
	}
}
