package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/domain"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Registry
	AdminPassphrase string        // shared admin secret
	ClaimGuard      bool          // true => claims only succeed on gifts still available in the store
	Locale          string        // BCP-47 tag used to order gift names (ex: pt-BR)
	ReloadInterval  time.Duration // full catalogue reload from the store (0 = disabled)
	ClaimRateLimit  int           // claims per IP per ClaimRateWindow (0 = unlimited)
	ClaimRateWindow time.Duration // window of the claim rate limiter
	MaxImageBytes   int64         // upload size limit for gift images

	// Catalogue store
	StoreDriver string // "postgres" | "redis" | "memory"
	StoreErr    error  // *domain.ConfigurationError when required store settings are missing

	// Postgres
	DatabaseURL      string // ex: postgres://giftlist@db:5432/giftlist?sslmode=disable
	DatabasePassword string
	DatabaseSchema   string
	DatabaseMaxConns int

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Image storage (optional, empty bucket = images inlined as data URIs)
	S3Bucket        string
	S3Region        string
	S3Endpoint      string // custom endpoint for S3-compatible storage
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string // public URL prefix of uploaded objects

	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedOrigins []string // optional, CORS origins (empty = any origin)
	AllowedCIDRS   []string // optional, restrict infra endpoints to specific IP ranges
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration of the HTTP server. It panics when the admin
// passphrase is missing.
func Load() *Config {
	cfg := load()
	cfg.AdminPassphrase = requireEnv("GIFTLIST_ADMIN_PASSPHRASE")
	debugDump(cfg)
	return cfg
}

// LoadOffline reads the configuration of the offline commands (import,
// claims). They never open the admin gate, so the passphrase is optional.
func LoadOffline() *Config {
	cfg := load()
	debugDump(cfg)
	return cfg
}

func load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("GIFTLIST_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("GIFTLIST_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("GIFTLIST_LOG_LEVEL", "info"),
		PrettyLog: mustBool("GIFTLIST_PRETTY_LOG", true),

		// Registry
		AdminPassphrase: getenv("GIFTLIST_ADMIN_PASSPHRASE", ""),
		ClaimGuard:      mustBool("GIFTLIST_CLAIM_GUARD", true),
		Locale:          getenv("GIFTLIST_LOCALE", "pt-BR"),
		ReloadInterval:  mustDuration("GIFTLIST_RELOAD_INTERVAL", 5*time.Minute),
		ClaimRateLimit:  getenvInt("GIFTLIST_CLAIM_RATE_LIMIT", 10),
		ClaimRateWindow: mustDuration("GIFTLIST_CLAIM_RATE_WINDOW", time.Minute),
		MaxImageBytes:   int64(getenvInt("GIFTLIST_MAX_IMAGE_BYTES", 2<<20)),

		// Catalogue store
		StoreDriver: strings.ToLower(getenv("GIFTLIST_STORE_DRIVER", DriverPostgres)),

		// Postgres settings
		DatabaseURL:      getenv("GIFTLIST_DATABASE_URL", ""),
		DatabasePassword: getenv("GIFTLIST_DATABASE_PASSWORD", ""),
		DatabaseSchema:   getenv("GIFTLIST_DATABASE_SCHEMA", "public"),
		DatabaseMaxConns: getenvInt("GIFTLIST_DATABASE_MAX_CONNS", 0),

		// Redis settings
		RedisAddr:             getenv("GIFTLIST_REDIS_ADDR", ""),
		RedisUser:             getenv("GIFTLIST_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("GIFTLIST_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("GIFTLIST_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("GIFTLIST_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Image storage
		S3Bucket:        getenv("GIFTLIST_S3_BUCKET", ""),
		S3Region:        getenv("GIFTLIST_S3_REGION", "us-east-1"),
		S3Endpoint:      getenv("GIFTLIST_S3_ENDPOINT", ""),
		S3AccessKey:     getenv("GIFTLIST_S3_ACCESS_KEY", ""),
		S3SecretKey:     getenv("GIFTLIST_S3_SECRET_KEY", ""),
		S3PublicBaseURL: getenv("GIFTLIST_S3_PUBLIC_BASE_URL", ""),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("GIFTLIST_ALLOWED_HOSTS", "")),
		AllowedOrigins: splitAndTrim(getenv("GIFTLIST_ALLOWED_ORIGINS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("GIFTLIST_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("GIFTLIST_TRUST_PROXY", true),
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown GIFTLIST_STORE_DRIVER %q (postgres, redis, memory)", cfg.StoreDriver))
	}

	// Missing store settings do not stop the process: the service starts
	// with an inert store and reports the problem in the log.
	if err := cfg.checkStore(); err != nil {
		cfg.StoreErr = err
	}

	return cfg
}

// debugDump logs the config only in debug mode with redacted sensitive fields
func debugDump(cfg *Config) {
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	cp.AdminPassphrase = redact(c.AdminPassphrase)
	cp.DatabasePassword = redact(c.DatabasePassword)
	cp.RedisPassword = redact(c.RedisPassword)
	cp.S3SecretKey = redact(c.S3SecretKey)
	if c.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	if c.DatabaseURL != "" {
		cp.DatabaseURL = redactURL(c.DatabaseURL)
	}
	return cp
}

// ImagesToS3 reports whether uploaded images go to object storage.
func (c *Config) ImagesToS3() bool {
	return c.S3Bucket != ""
}

func (c *Config) checkStore() error {
	var missing []string

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "GIFTLIST_DATABASE_URL")
		}
		if c.DatabasePassword == "" {
			missing = append(missing, "GIFTLIST_DATABASE_PASSWORD")
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			missing = append(missing, "GIFTLIST_REDIS_ADDR")
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			missing = append(missing, "GIFTLIST_REDIS_PASSWORD")
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return &domain.ConfigurationError{Driver: c.StoreDriver, Missing: missing}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***REDACTED***"
}

// redactURL hides the userinfo part of a connection string.
// Example: postgres://user:pw@db/x -> postgres://***REDACTED***@db/x
func redactURL(u string) string {
	scheme, rest, ok := strings.Cut(u, "://")
	if !ok {
		return u
	}
	at := strings.LastIndex(rest, "@")
	if at == -1 {
		return u
	}
	return scheme + "://***REDACTED***" + rest[at:]
}
