package driven

import (
	"context"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// SettingsStore defines the driven port for the persisted runtime settings,
// including credentials, sync flags, and the per-resource watermarks.
type SettingsStore interface {
	// Get returns the current settings snapshot. A store that has never
	// been written returns zero-value settings, not an error.
	Get(ctx context.Context) (model.Settings, error)

	// Update replaces the full settings row. Watermark fields are written
	// as given; callers that must preserve them carry them over first.
	Update(ctx context.Context, settings model.Settings) error

	// UpdateWatermarks persists the given watermarks in a single write,
	// leaving every other settings field untouched. An empty map is a no-op.
	UpdateWatermarks(ctx context.Context, marks map[model.SyncResource]time.Time) error
}
