package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/yuzvak/storefront-cart/internal/pkg/logger"
)

// Purger removes expired cart snapshots from a store that cannot expire
// them by itself.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type SnapshotJanitor struct {
	purger   Purger
	logger   *logger.Logger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewSnapshotJanitor(purger Purger, logger *logger.Logger, interval time.Duration) *SnapshotJanitor {
	return &SnapshotJanitor{
		purger:   purger,
		logger:   logger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start purges once immediately, then every interval until ctx is done or
// Stop is called.
func (j *SnapshotJanitor) Start(ctx context.Context) {
	j.logger.Info("Starting snapshot janitor", "interval", j.interval.String())

	j.purge(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Snapshot janitor stopped")
			return
		case <-j.stopChan:
			j.logger.Info("Snapshot janitor stopped")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *SnapshotJanitor) Stop() {
	j.stopOnce.Do(func() { close(j.stopChan) })
}

func (j *SnapshotJanitor) purge(ctx context.Context) {
	removed, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("Failed to purge expired cart snapshots", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("Purged expired cart snapshots", "removed", removed)
	}
}
