package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andygrunwald/fuel-prices/internal/models"
)

type stubComputer struct {
	err error
}

func (c stubComputer) Compute(context.Context) (models.Report, error) {
	if c.err != nil {
		return models.Report{}, c.err
	}
	return models.Report{TotalRecords: 3, TotalStations: 2}, nil
}

type stubPublisher struct {
	mu      sync.Mutex
	reports []models.Report
}

func (p *stubPublisher) RecordReport(r models.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, r)
}

func (p *stubPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.reports)
}

func TestRunOncePublishes(t *testing.T) {
	pub := &stubPublisher{}
	s := New(stubComputer{}, pub, time.Minute, zerolog.Nop())

	s.RunOnce(context.Background())

	if pub.count() != 1 {
		t.Fatalf("expected one published report, got %d", pub.count())
	}
	if s.LastRefreshAt() == nil {
		t.Fatal("expected last refresh time to be set")
	}
}

func TestRunOnceFailureKeepsPreviousState(t *testing.T) {
	pub := &stubPublisher{}
	s := New(stubComputer{err: errors.New("database is locked")}, pub, time.Minute, zerolog.Nop())

	s.RunOnce(context.Background())

	if pub.count() != 0 {
		t.Fatalf("expected nothing published, got %d", pub.count())
	}
	if s.LastRefreshAt() != nil {
		t.Fatal("last refresh time set despite failure")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	pub := &stubPublisher{}
	s := New(stubComputer{}, pub, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for pub.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least two refreshes, got %d", pub.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	if !s.IsRunning() {
		t.Fatal("expected scheduler to report running")
	}
	if s.NextRefreshAt().IsZero() {
		t.Fatal("expected next refresh time to be set")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	if s.IsRunning() {
		t.Fatal("scheduler still reports running after stop")
	}
}
