package model

import "time"

// DefaultSyncIntervalSeconds is used when no interval has been configured.
const DefaultSyncIntervalSeconds = 600

// Settings is the runtime configuration snapshot for the sync engine.
// It is read fresh at the start of every sync run and mutated only through
// the settings store; the engine never caches it across runs.
type Settings struct {
	Username     string
	Password     string
	TestUsername string
	TestPassword string
	TestMode     bool

	SyncIntervalSeconds int
	DebugEnabled        bool
	AddTrackingEnabled  bool

	// Per-resource sync watermarks. Nil means the resource has never
	// completed a successful sync.
	StockSyncedAt *time.Time
	OrderSyncedAt *time.Time
}

// Credentials is the username/password pair active for the current mode,
// together with the mode itself so the transport can pick the right endpoint.
type Credentials struct {
	Username string
	Password string
	TestMode bool
}

// ActiveCredentials returns the credential pair selected by TestMode.
func (s Settings) ActiveCredentials() Credentials {
	if s.TestMode {
		return Credentials{Username: s.TestUsername, Password: s.TestPassword, TestMode: true}
	}
	return Credentials{Username: s.Username, Password: s.Password}
}

// CredentialsChanged reports whether any of the four secret fields differ
// between the two snapshots. Toggling TestMode alone does not count as a
// credential change; the live and test pairs are tracked independently.
func (s Settings) CredentialsChanged(old Settings) bool {
	return s.Username != old.Username ||
		s.Password != old.Password ||
		s.TestUsername != old.TestUsername ||
		s.TestPassword != old.TestPassword
}

// SyncInterval returns the configured sync interval as a duration, falling
// back to the default when unset or nonsensical.
func (s Settings) SyncInterval() time.Duration {
	if s.SyncIntervalSeconds <= 0 {
		return DefaultSyncIntervalSeconds * time.Second
	}
	return time.Duration(s.SyncIntervalSeconds) * time.Second
}

// Watermark returns the stored watermark for the given resource, or nil when
// the resource has never synced.
func (s Settings) Watermark(resource SyncResource) *time.Time {
	switch resource {
	case ResourceStock:
		return s.StockSyncedAt
	case ResourceOrders:
		return s.OrderSyncedAt
	}
	return nil
}
