// Package scheduler periodically recomputes price statistics and publishes
// them as metrics.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

// Computer builds a report from the current record set.
type Computer interface {
	Compute(ctx context.Context) (models.Report, error)
}

// Publisher receives every successfully computed report.
type Publisher interface {
	RecordReport(r models.Report)
}

// Scheduler manages the refresh schedule.
type Scheduler struct {
	computer  Computer
	publisher Publisher
	interval  time.Duration
	logger    zerolog.Logger

	mu            sync.RWMutex
	nextRefreshAt time.Time
	lastRefreshAt *time.Time
	running       bool
}

// New creates a new Scheduler.
func New(c Computer, p Publisher, interval time.Duration, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		computer:  c,
		publisher: p,
		interval:  interval,
		logger:    logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start refreshes immediately and then on every interval until the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info().Dur("interval", s.interval).Msg("starting scheduler")

	s.RunOnce(ctx)
	s.setNext(time.Now().Add(s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
			s.setNext(time.Now().Add(s.interval))
		}
	}
}

// RunOnce computes and publishes one report. Failures are logged and the
// previous gauges stay in place.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()

	r, err := s.computer.Compute(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("refreshing statistics failed")
		return
	}
	s.publisher.RecordReport(r)

	now := time.Now()
	s.mu.Lock()
	s.lastRefreshAt = &now
	s.mu.Unlock()

	s.logger.Debug().
		Int("records", r.TotalRecords).
		Int("stations", r.TotalStations).
		Dur("duration", time.Since(start)).
		Msg("statistics refreshed")
}

func (s *Scheduler) setNext(t time.Time) {
	s.mu.Lock()
	s.nextRefreshAt = t
	s.mu.Unlock()
}

// NextRefreshAt returns the time of the next scheduled refresh.
func (s *Scheduler) NextRefreshAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRefreshAt
}

// LastRefreshAt returns the time of the last successful refresh.
func (s *Scheduler) LastRefreshAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshAt
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
