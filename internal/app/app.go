package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/catalogue"
	"github.com/MrSnakeDoc/giftlist/internal/config"
	"github.com/MrSnakeDoc/giftlist/internal/gate"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver"
	"github.com/MrSnakeDoc/giftlist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/giftlist/internal/images"
	"github.com/MrSnakeDoc/giftlist/internal/logger"
	"github.com/MrSnakeDoc/giftlist/internal/metrics"
	"github.com/MrSnakeDoc/giftlist/internal/redis"
	"github.com/MrSnakeDoc/giftlist/internal/registry"
	"github.com/MrSnakeDoc/giftlist/internal/scheduler"
	"github.com/MrSnakeDoc/giftlist/internal/sources/giftfile"
	"github.com/MrSnakeDoc/giftlist/internal/store"
	"github.com/MrSnakeDoc/giftlist/internal/store/memory"
	"github.com/MrSnakeDoc/giftlist/internal/store/postgres"
	redisstore "github.com/MrSnakeDoc/giftlist/internal/store/redis"
	"github.com/MrSnakeDoc/giftlist/internal/utils"
	"github.com/MrSnakeDoc/giftlist/internal/version"
)

const storeConnectTimeout = 30 * time.Second

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	metrics  *metrics.Metrics
	registry *registry.Service
	repo     store.Repository
	storeErr error
	closers  []func()

	// serve only
	server   *httpserver.Server
	reloader *scheduler.CatalogueReloader
}

// New loads the configuration from the environment and wires the registry.
// Store problems never abort startup: the registry falls back to an inert
// store and the cause is logged.
func New() *App {
	cfg := config.Load()
	return NewWithConfig(cfg, logger.New(cfg.LogLevel, cfg.PrettyLog))
}

// NewOffline wires the registry for the import and claims commands. The
// admin passphrase is not required.
func NewOffline() *App {
	cfg := config.LoadOffline()
	return NewWithConfig(cfg, logger.New(cfg.LogLevel, cfg.PrettyLog))
}

func NewWithConfig(cfg *config.Config, loggerClient logger.Logger) *App {
	a := &App{
		cfg:     cfg,
		logger:  loggerClient,
		metrics: metrics.New(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()
	a.repo, a.storeErr = a.openStore(ctx)
	if a.storeErr != nil {
		loggerClient.Error("catalogue store unavailable, serving without it",
			logger.String("driver", cfg.StoreDriver),
			logger.Error(a.storeErr))
		a.repo = store.Inert{Reason: a.storeErr}
	}

	a.registry = registry.New(a.repo, catalogue.NewReflection(),
		registry.WithLogger(loggerClient),
		registry.WithMetrics(a.metrics),
		registry.WithLocale(catalogue.ParseLocale(cfg.Locale)),
		registry.WithClaimGuard(cfg.ClaimGuard),
	)
	return a
}

// openStore connects the configured backend.
func (a *App) openStore(ctx context.Context) (store.Repository, error) {
	cfg := a.cfg
	if cfg.StoreErr != nil {
		return nil, cfg.StoreErr
	}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		a.logger.Warn("using the in-memory catalogue store, data is lost on restart")
		return memory.NewStore(), nil

	case config.DriverRedis:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { utils.MustClose(client, a.logger, "redis") })
		return redisstore.NewStore(client), nil

	default:
		pool, err := postgres.NewPool(ctx, postgres.PoolOptions{
			URL:         cfg.DatabaseURL,
			Password:    cfg.DatabasePassword,
			MaxConns:    int32(cfg.DatabaseMaxConns),
			PingTimeout: 5 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st, err := postgres.NewStore(pool, postgres.WithSchema(cfg.DatabaseSchema))
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		a.logger.Info("postgres catalogue store ready",
			logger.String("schema", cfg.DatabaseSchema))
		return st, nil
	}
}

// newUploader picks S3 when a bucket is configured, inline data URIs
// otherwise or when S3 cannot be set up.
func (a *App) newUploader(ctx context.Context) images.Uploader {
	if !a.cfg.ImagesToS3() {
		return images.Inline{}
	}
	up, err := images.NewS3(ctx, images.S3Options{
		Bucket:        a.cfg.S3Bucket,
		Region:        a.cfg.S3Region,
		Endpoint:      a.cfg.S3Endpoint,
		AccessKey:     a.cfg.S3AccessKey,
		SecretKey:     a.cfg.S3SecretKey,
		PublicBaseURL: a.cfg.S3PublicBaseURL,
	})
	if err != nil {
		a.logger.Warn("s3 image storage unavailable, inlining images", logger.Error(err))
		return images.Inline{}
	}
	a.logger.Info("uploading gift images to s3", logger.String("bucket", a.cfg.S3Bucket))
	return up
}

// Registry exposes the wired registry service.
func (a *App) Registry() *registry.Service { return a.registry }

// Close releases store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	_ = a.logger.Sync()
}

// Import bulk adds the gifts listed in a YAML or JSON file.
func (a *App) Import(ctx context.Context, path string) (int, error) {
	f, err := giftfile.NewLoader(path).Load()
	if err != nil {
		return 0, err
	}
	items, err := giftfile.ToItems(f)
	if err != nil {
		return 0, err
	}

	n, err := a.registry.BulkAdd(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", path, err)
	}
	a.logger.Info("gift file imported", logger.String("file", path), logger.Int("gifts", n))
	return n, nil
}

// Claims loads the catalogue and returns the received-claims report.
func (a *App) Claims(ctx context.Context) ([]registry.Claim, error) {
	if err := a.registry.Load(ctx); err != nil {
		return nil, err
	}
	return a.registry.Claims(), nil
}

// Run serves the HTTP API until SIGINT/SIGTERM.
func (a *App) Run() error {
	a.logger.Infof("🎁 Starting giftlist v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("giftlist %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reloadTrigger := make(chan struct{}, 1)
	a.reloader = scheduler.NewCatalogueReloader(a.registry, a.logger, a.cfg.ReloadInterval, reloadTrigger)

	d := deps.Deps{
		Logger:         a.logger,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   a.cfg.AllowedHosts,
		AllowedOrigins: a.cfg.AllowedOrigins,
		AllowedCIDRS:   a.cfg.AllowedCIDRS,
		TrustProxy:     a.cfg.TrustProxy,
		Registry:       a.registry,
		Gate:           gate.New(a.cfg.AdminPassphrase),
		Uploader:       a.newUploader(ctx),
		MaxImageBytes:  a.cfg.MaxImageBytes,
		Metrics:        a.metrics,
		StoreDriver:    a.cfg.StoreDriver,
		StoreErr:       a.storeErr,
		ReloadTrigger:  reloadTrigger,
		ClaimLimit:     a.cfg.ClaimRateLimit,
		ClaimWindow:    a.cfg.ClaimRateWindow,
	}
	if p, ok := a.repo.(store.Pinger); ok {
		d.Pinger = p
	}

	a.server = httpserver.New(a.cfg, a.logger, d)

	// Initial load happens here; a failure leaves the catalogue empty until
	// the next reload.
	a.reloader.Start(ctx)
	a.logger.Info("catalogue reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to stop server: %w", err))
	}

	if runErr == nil {
		a.logger.Info("✅ giftlist stopped cleanly")
	}
	a.Close()
	return runErr
}
