package model

import "time"

// SyncResource identifies one category of data exchanged with the warehouse API.
type SyncResource string

const (
	ResourceStock  SyncResource = "stock"
	ResourceOrders SyncResource = "orders"
)

// DefaultSyncWindow is how far back a resource looks on its first ever sync,
// when no watermark has been recorded yet.
const DefaultSyncWindow = 7 * 24 * time.Hour

// SyncOutcome is the result of a single incremental sync pass.
type SyncOutcome string

const (
	// SyncSucceeded means the pass completed and the watermark may advance.
	SyncSucceeded SyncOutcome = "succeeded"
	// SyncFailed means the pass hit an unrecovered error. The watermark must
	// not advance; the next run re-covers the same window (at-least-once).
	SyncFailed SyncOutcome = "failed"
	// SyncNoChanges means the remote reported nothing in the window. The
	// watermark is left alone so the window simply widens until data appears.
	SyncNoChanges SyncOutcome = "no_changes"
)

// SyncJobResult records the outcome of one resource within one scheduled run.
// It is transient; only the watermark advance it implies is persisted.
type SyncJobResult struct {
	Resource   SyncResource
	Outcome    SyncOutcome
	Since      time.Time
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}
