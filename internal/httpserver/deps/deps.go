package deps

import (
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/gate"
	"github.com/MrSnakeDoc/giftlist/internal/images"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/metrics"
	"github.com/MrSnakeDoc/giftlist/internal/registry"
	"github.com/MrSnakeDoc/giftlist/internal/store"
)

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time  // for testing, defaults to time.Now
	AllowedHosts   []string          // Host headers allowed to access the API
	AllowedOrigins []string          // CORS origins, empty allows any
	AllowedCIDRS   []string          // IPs allowed to access healthz/readyz/infra/metrics
	TrustProxy     bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Registry       *registry.Service // claim workflow and admin management
	Gate           *gate.Gate        // admin passphrase check
	Uploader       images.Uploader   // stores uploaded gift images
	MaxImageBytes  int64             // upload size limit
	Metrics        *metrics.Metrics  // nil disables /metrics
	Pinger         store.Pinger      // catalogue store reachability (nil if unsupported)
	StoreDriver    string            // configured store backend name
	StoreErr       error             // startup configuration problem, if any
	ReloadTrigger  chan struct{}     // Channel to trigger manual catalogue reload
	ClaimLimit     int               // claims per IP per ClaimWindow (0 = unlimited)
	ClaimWindow    time.Duration     // window of the claim rate limiter
}
