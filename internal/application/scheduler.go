package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// triggerRequest carries a manual sync request into the scheduler loop.
type triggerRequest struct {
	done chan []model.SyncJobResult
}

// Scheduler drives the orchestrator on a recurring interval. It also accepts
// manual triggers from the admin API. The interval is re-read from settings
// after every run so an interval change takes effect without a restart.
type Scheduler struct {
	orch     *Orchestrator
	settings driven.SettingsStore
	logger   *slog.Logger

	triggerCh chan triggerRequest
	// The Start loop serializes ticks and triggers, so within one loop a
	// tick arriving mid-run is absorbed by ticker coalescing rather than
	// queued. runMu covers the remaining overlap source: a second Start
	// loop on the same Scheduler skips instead of running concurrently.
	runMu sync.Mutex
}

// NewScheduler creates a Scheduler for the given orchestrator.
func NewScheduler(orch *Orchestrator, settings driven.SettingsStore, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		orch:      orch,
		settings:  settings,
		logger:    logger,
		triggerCh: make(chan triggerRequest),
	}
}

// Start begins the scheduling loop: an immediate first run, then one run per
// interval. Start blocks until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	interval := s.currentInterval(ctx, model.DefaultSyncIntervalSeconds*time.Second)
	s.logger.Info("sync scheduler started", "interval", interval)

	s.runGuarded(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runGuarded(ctx)
		case req := <-s.triggerCh:
			req.done <- s.runGuarded(ctx)
		}

		if next := s.currentInterval(ctx, interval); next != interval {
			s.logger.Info("sync interval changed", "old", interval, "new", next)
			interval = next
			ticker.Reset(interval)
		}
	}
}

// TriggerSync requests an immediate run and blocks until it completes or the
// context is canceled. A nil result means the run was skipped because another
// run was already in flight.
func (s *Scheduler) TriggerSync(ctx context.Context) ([]model.SyncJobResult, error) {
	req := triggerRequest{done: make(chan []model.SyncJobResult, 1)}

	select {
	case s.triggerCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case results := <-req.done:
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// runGuarded executes one orchestrator run unless another loop already has
// one in flight.
func (s *Scheduler) runGuarded(ctx context.Context) []model.SyncJobResult {
	if !s.runMu.TryLock() {
		s.logger.Warn("sync run skipped: previous run still active")
		return nil
	}
	defer s.runMu.Unlock()

	return s.orch.RunScheduledSync(ctx)
}

// currentInterval reads the configured interval. A read failure keeps the
// given fallback so a transient store error does not move the cadence.
func (s *Scheduler) currentInterval(ctx context.Context, fallback time.Duration) time.Duration {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Error("read sync interval failed, keeping current", "error", err)
		return fallback
	}
	return settings.SyncInterval()
}
