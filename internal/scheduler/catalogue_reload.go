package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/giftlist/internal/logger"
)

// CatalogueLoader refreshes the in-memory catalogue from the store.
type CatalogueLoader interface {
	Load(ctx context.Context) error
}

// CatalogueReloader handles periodic and manual reloading of the catalogue
type CatalogueReloader struct {
	loader        CatalogueLoader
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
	started       bool
	manualTrigger <-chan struct{}
}

// NewCatalogueReloader creates a new catalogue reloader.
// An interval <= 0 disables periodic reloads; manual triggers still work.
func NewCatalogueReloader(
	loader CatalogueLoader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger <-chan struct{},
) *CatalogueReloader {
	return &CatalogueReloader{
		loader:        loader,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the catalogue once, then keeps it fresh in the background.
// A failed initial load is logged and retried on the next tick so the
// service can come up with an unreachable store.
func (cr *CatalogueReloader) Start(ctx context.Context) {
	if err := cr.Reload(ctx); err != nil {
		cr.logger.Error("initial catalogue load failed", logger.Error(err))
	}

	cr.started = true
	go func() {
		defer close(cr.done)

		var tick <-chan time.Time
		if cr.interval > 0 {
			ticker := time.NewTicker(cr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalogue", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalogue", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the reloader and waits for the loop to exit. Safe to call twice.
func (cr *CatalogueReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
	if cr.started {
		<-cr.done
	}
}

// Reload performs one full reload
func (cr *CatalogueReloader) Reload(ctx context.Context) error {
	started := time.Now()
	if err := cr.loader.Load(ctx); err != nil {
		return err
	}
	cr.logger.Debug("catalogue reloaded", logger.Duration("took", time.Since(started)))
	return nil
}
