// Package redis opens the go-redis client backing the redis catalogue store.
//
// The catalogue is served from memory once loaded, so startup waits for
// redis with backoff instead of failing on the first refused dial.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/giftlist/internal/logger"
)

// ConnectOptions configures the client and how long startup waits for it.
type ConnectOptions struct {
	Addr           string        // Redis address (ex: "localhost:6379")
	User           string        // Optional username
	Password       string        // Optional password
	RedisDB        int           // Redis DB number holding the gift keys
	DialTimeout    time.Duration // Redis dial timeout
	ReadTimeout    time.Duration // Redis read timeout
	WriteTimeout   time.Duration // Redis write timeout
	PoolSize       int           // Redis connection pool size
	ConnectTimeout time.Duration // Total time allowed before the catalogue goes inert (ex: 30s)
	RetryInterval  time.Duration // First wait between pings, doubled after each failure (ex: 2s)
	MaxWait        time.Duration // Cap on the wait between pings (ex: 10s)
	PingTimeout    time.Duration // Timeout of a single ping (ex: 2s)
	WarnThreshold  int           // Failed pings logged at warn before switching to error
}

// Validate reports every unusable retry setting at once.
func (o ConnectOptions) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    time.Duration
	}{
		{"ConnectTimeout", o.ConnectTimeout},
		{"RetryInterval", o.RetryInterval},
		{"MaxWait", o.MaxWait},
		{"PingTimeout", o.PingTimeout},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", p.name, p.v))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

// nextWait doubles the wait up to limit.
func nextWait(wait, limit time.Duration) time.Duration {
	wait *= 2
	if wait > limit {
		return limit
	}
	return wait
}

// New creates the catalogue store client and pings it until it answers,
// ConnectTimeout elapses or ctx is done. The client is closed on failure.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		log.Error("invalid redis connect options", logger.Error(err))
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.User,
		Password:     opts.Password,
		DB:           opts.RedisDB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	if err := waitReady(ctx, client, opts, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func waitReady(parent context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	addr := logger.String("addr", opts.Addr)
	log.Info("connecting to the catalogue redis", addr,
		logger.Duration("timeout", opts.ConnectTimeout))

	started := time.Now()
	wait := opts.RetryInterval
	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("catalogue redis reachable after retries", addr,
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(started)))
			} else {
				log.Info("catalogue redis reachable", addr)
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error("catalogue redis unreachable, store goes inert", addr,
				logger.Int("attempts", attempt),
				logger.Duration("timeout", opts.ConnectTimeout),
				logger.Error(err))
			return fmt.Errorf("redis unavailable at %s after %d attempts (timeout: %v): %w",
				opts.Addr, attempt, opts.ConnectTimeout, err)

		case <-timer.C:
			fields := []logger.Field{addr,
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait),
				logger.Error(err)}
			if attempt <= opts.WarnThreshold {
				log.Warn("catalogue redis ping failed, retrying", fields...)
			} else {
				log.Error("catalogue redis still down, retrying", fields...)
			}
			wait = nextWait(wait, opts.MaxWait)
		}
	}
}
