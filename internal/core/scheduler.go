package core

// scheduler.go polls the dataset file and reloads it when it changes.
//
// The scheduler is long-running and context-aware for graceful shutdown. A
// failed reload is logged and the previous dataset keeps serving; the next
// tick tries again only if the file changes again.

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"
)

// StartReloadScheduler checks the source's modification time every interval
// and reloads when it differs from the last one seen. An interval of zero or
// less disables polling. It returns when ctx is cancelled.
func (s *Service) StartReloadScheduler(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		slog.Info("reload scheduler disabled")
		return
	}

	slog.Info("reload scheduler started",
		"path", s.source,
		"interval", interval.String(),
	)

	ctx = ContextWithReloadTrigger(ctx, TriggerScheduler)
	last := s.sourceModTime()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reload scheduler stopped")
			return
		case <-ticker.C:
			last = s.reloadIfChanged(ctx, last)
		}
	}
}

// reloadIfChanged reloads when the source's modification time differs from
// last and returns the modification time to compare against next.
func (s *Service) reloadIfChanged(ctx context.Context, last time.Time) time.Time {
	mod := s.sourceModTime()
	if mod.IsZero() || mod.Equal(last) {
		return last
	}

	slog.Debug("dataset changed on disk", "path", s.source, "mod_time", mod)
	start := time.Now()

	_, err := s.Reload(ctx)
	switch {
	case errors.Is(err, ErrReloadInProgress):
		// Try again on the next tick.
		return last
	case err != nil:
		slog.Error("scheduled reload failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	default:
		slog.Info("scheduled reload completed", "duration_ms", time.Since(start).Milliseconds())
	}
	return mod
}

func (s *Service) sourceModTime() time.Time {
	info, err := os.Stat(s.source)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
