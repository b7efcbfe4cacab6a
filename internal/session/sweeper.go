package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper removes expired sessions and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// StartSweeper runs s.Sweep every interval until ctx is cancelled.
func StartSweeper(
	ctx context.Context,
	s Sweeper,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.Sweep(ctx)
				if err != nil {
					log.Error("failed to sweep expired sessions", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("swept expired sessions", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
