package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SettingsStore = (*SettingsRepo)(nil)

// SettingsRepo is the SQLite implementation of the SettingsStore port.
// Settings live in a single row seeded by the initial migration.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new SettingsRepo backed by the given DB.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the current settings snapshot. A missing row (possible only if
// the seed was deleted out of band) yields zero-value settings.
func (r *SettingsRepo) Get(ctx context.Context) (model.Settings, error) {
	const query = `
		SELECT username, password, test_username, test_password, test_mode,
		       sync_interval_seconds, debug_enabled, add_tracking_enabled,
		       stock_synced_at, order_synced_at
		FROM settings
		WHERE id = 1
	`

	var (
		s                        model.Settings
		stockDttm, orderDttm     sql.NullString
		testMode, debug, addTrck int
	)

	err := r.db.Reader.QueryRowContext(ctx, query).Scan(
		&s.Username, &s.Password, &s.TestUsername, &s.TestPassword, &testMode,
		&s.SyncIntervalSeconds, &debug, &addTrck,
		&stockDttm, &orderDttm,
	)
	if err == sql.ErrNoRows {
		return model.Settings{}, nil
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	s.TestMode = testMode != 0
	s.DebugEnabled = debug != 0
	s.AddTrackingEnabled = addTrck != 0

	if s.StockSyncedAt, err = parseNullTime(stockDttm); err != nil {
		return model.Settings{}, fmt.Errorf("parse stock watermark: %w", err)
	}
	if s.OrderSyncedAt, err = parseNullTime(orderDttm); err != nil {
		return model.Settings{}, fmt.Errorf("parse order watermark: %w", err)
	}

	return s, nil
}

// Update replaces the full settings row.
func (r *SettingsRepo) Update(ctx context.Context, s model.Settings) error {
	const query = `
		UPDATE settings SET
			username = ?, password = ?, test_username = ?, test_password = ?,
			test_mode = ?, sync_interval_seconds = ?, debug_enabled = ?,
			add_tracking_enabled = ?, stock_synced_at = ?, order_synced_at = ?
		WHERE id = 1
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		s.Username, s.Password, s.TestUsername, s.TestPassword,
		boolToInt(s.TestMode), s.SyncIntervalSeconds, boolToInt(s.DebugEnabled),
		boolToInt(s.AddTrackingEnabled),
		formatNullTime(s.StockSyncedAt), formatNullTime(s.OrderSyncedAt),
	)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	return nil
}

// UpdateWatermarks persists the given watermarks in a single UPDATE statement,
// leaving all other columns untouched.
func (r *SettingsRepo) UpdateWatermarks(ctx context.Context, marks map[model.SyncResource]time.Time) error {
	if len(marks) == 0 {
		return nil
	}

	var (
		assignments []string
		args        []any
	)
	for resource, mark := range marks {
		switch resource {
		case model.ResourceStock:
			assignments = append(assignments, "stock_synced_at = ?")
		case model.ResourceOrders:
			assignments = append(assignments, "order_synced_at = ?")
		default:
			return fmt.Errorf("update watermarks: unknown resource %q", resource)
		}
		args = append(args, formatTime(mark))
	}

	query := "UPDATE settings SET " + strings.Join(assignments, ", ") + " WHERE id = 1"
	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update watermarks: %w", err)
	}

	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
