package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Orchestrator is the scheduler-invoked entry point of a sync run. It reads
// the watermarks, invokes each resource syncer with failure isolation, and
// advances watermarks only for syncers that succeeded.
type Orchestrator struct {
	settings   driven.SettingsStore
	watermarks *WatermarkStore
	syncers    []ResourceSyncer
	logger     *slog.Logger
	now        func() time.Time

	mu          sync.Mutex
	lastResults []model.SyncJobResult
}

// NewOrchestrator creates an Orchestrator. Syncers run in the given order;
// stock must come before orders since order handling cross-references the
// product state written by the stock pass.
func NewOrchestrator(settings driven.SettingsStore, watermarks *WatermarkStore, syncers []ResourceSyncer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		settings:   settings,
		watermarks: watermarks,
		syncers:    syncers,
		logger:     logger,
		now:        time.Now,
	}
}

// RunScheduledSync performs one full sync run. It never returns an error to
// its caller: every failure is logged and reflected in the per-resource
// results, and the next scheduled run proceeds regardless.
//
// The candidate watermark is captured once at run start, not at completion,
// so records changed while the run is in flight fall into the next window
// instead of being silently skipped. The cost is a little re-processing;
// the sync is at-least-once by design.
func (o *Orchestrator) RunScheduledSync(ctx context.Context) []model.SyncJobResult {
	snapshot, err := o.settings.Get(ctx)
	if err != nil {
		// Empty, not nil: callers use nil to mean "no run happened at
		// all", while this run was attempted and aborted.
		o.logger.Error("sync run aborted: load settings failed", "error", err)
		return []model.SyncJobResult{}
	}

	startedAt := o.now()
	staged := make(map[model.SyncResource]time.Time)
	results := make([]model.SyncJobResult, 0, len(o.syncers))

	for _, syncer := range o.syncers {
		resource := syncer.Resource()
		since := o.watermarks.Get(ctx, resource)

		outcome, err := o.runIsolated(ctx, syncer, since, snapshot)
		if err != nil {
			o.logger.Error("resource sync failed", "resource", resource, "since", since, "error", err)
		}

		if outcome == model.SyncSucceeded {
			staged[resource] = startedAt
		}

		results = append(results, model.SyncJobResult{
			Resource:   resource,
			Outcome:    outcome,
			Since:      since,
			StartedAt:  startedAt,
			FinishedAt: o.now(),
			Err:        err,
		})
	}

	if len(staged) > 0 {
		if err := o.watermarks.SetAll(ctx, staged); err != nil {
			// Watermarks stay behind; the affected windows are re-synced
			// next run, which is safe.
			o.logger.Error("watermark write failed", "error", err)
		}
	}

	o.mu.Lock()
	o.lastResults = results
	o.mu.Unlock()

	o.logger.Info("sync run complete",
		"started_at", startedAt,
		"duration", o.now().Sub(startedAt).Round(time.Millisecond),
		"advanced", len(staged),
	)

	return results
}

// runIsolated invokes one syncer and contains both its errors and panics.
// The failure of one resource must not prevent the other resources from
// running in the same pass.
func (o *Orchestrator) runIsolated(ctx context.Context, syncer ResourceSyncer, since time.Time, snapshot model.Settings) (outcome model.SyncOutcome, err error) {
	defer func() {
		if v := recover(); v != nil {
			outcome = model.SyncFailed
			err = fmt.Errorf("sync panic: %v", v)
		}
	}()

	return syncer.Sync(ctx, since, snapshot)
}

// LastResults returns the results of the most recent run, or nil when no run
// has completed yet.
func (o *Orchestrator) LastResults() []model.SyncJobResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastResults
}
