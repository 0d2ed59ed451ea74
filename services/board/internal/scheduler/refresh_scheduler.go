package scheduler

import (
	"context"
	"sync"
	"time"

	"shenanigigs/common/telemetry"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("shenanigigs/board/scheduler")

// Reloader reloads every live board and reports how many it touched.
type Reloader interface {
	ReloadAll(ctx context.Context) int
}

// RefreshScheduler reloads all boards on a fixed interval, for deployments
// where nothing publishes postings changed events.
type RefreshScheduler struct {
	reloader Reloader
	interval time.Duration
	logger   *zap.Logger

	mutex    sync.Mutex
	isActive bool
	runs     int
}

func NewRefreshScheduler(reloader Reloader, interval time.Duration, logger *zap.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		reloader: reloader,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until ctx is done. A non-positive interval disables it.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	s.mutex.Lock()
	if s.isActive {
		s.mutex.Unlock()
		return nil
	}
	s.isActive = true
	s.mutex.Unlock()

	defer func() {
		s.mutex.Lock()
		s.isActive = false
		s.mutex.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting periodic board refresh", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *RefreshScheduler) refresh(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "RefreshScheduler.refresh")
	defer span.End()

	reloaded := s.reloader.ReloadAll(ctx)
	span.SetAttributes(telemetry.Int("boards.reloaded", reloaded))

	s.mutex.Lock()
	s.runs++
	s.mutex.Unlock()

	s.logger.Debug("periodic refresh completed", zap.Int("boards", reloaded))
}

// Runs reports how many refresh ticks have completed.
func (s *RefreshScheduler) Runs() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.runs
}
