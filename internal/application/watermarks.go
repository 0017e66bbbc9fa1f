package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// WatermarkStore reads and persists the per-resource sync watermarks stored
// alongside the rest of the runtime settings.
type WatermarkStore struct {
	settings driven.SettingsStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewWatermarkStore creates a WatermarkStore over the given settings store.
func NewWatermarkStore(settings driven.SettingsStore, logger *slog.Logger) *WatermarkStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &WatermarkStore{
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the watermark for the given resource. Absence is a normal
// state: a resource that has never synced gets a default window of now minus
// seven days, computed at call time. Get never fails; a storage error is
// logged and also yields the default window, which is safe because it only
// widens the next sync (at-least-once, never skipped).
func (w *WatermarkStore) Get(ctx context.Context, resource model.SyncResource) time.Time {
	settings, err := w.settings.Get(ctx)
	if err != nil {
		w.logger.Error("watermark read failed, using default window", "resource", resource, "error", err)
		return w.now().Add(-model.DefaultSyncWindow)
	}

	if mark := settings.Watermark(resource); mark != nil {
		return *mark
	}

	return w.now().Add(-model.DefaultSyncWindow)
}

// SetAll persists the given watermarks in a single settings write.
// Last-write-wins; no history is retained.
func (w *WatermarkStore) SetAll(ctx context.Context, marks map[model.SyncResource]time.Time) error {
	return w.settings.UpdateWatermarks(ctx, marks)
}
