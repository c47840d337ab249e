package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/marco/movieFetcher/internal/upstream/cache"
)

// startCacheJanitor deletes expired cache entries every interval until ctx
// is done.
func startCacheJanitor(ctx context.Context, c cache.Cache, interval time.Duration) {
	slog.Info("cache janitor started", "interval_minutes", interval.Minutes())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruneCache(c)

		case <-ctx.Done():
			slog.Info("cache janitor stopped")
			return
		}
	}
}

// pruneCache runs a single sweep. Sweeps run on the janitor goroutine only,
// so they never overlap.
func pruneCache(c cache.Cache) {
	start := time.Now()
	removed, err := c.Prune()
	if err != nil {
		slog.Error("cache prune failed", "error", err)
		return
	}

	slog.Debug("cache pruned",
		"removed", removed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
