// Package application contains the sync engine's use-case services.
package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenSource = (*TokenManager)(nil)

// TokenManager owns the cached warehouse API token. It fetches a fresh token
// on demand using the credential pair active in the latest settings snapshot,
// and is invalidated when credentials change so the next request re-authenticates.
type TokenManager struct {
	auth     driven.Authenticator
	settings driven.SettingsStore
	logger   *slog.Logger

	mu    sync.Mutex
	token model.AuthToken
}

// NewTokenManager creates a TokenManager with an empty cache.
func NewTokenManager(auth driven.Authenticator, settings driven.SettingsStore, logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		auth:     auth,
		settings: settings,
		logger:   logger,
	}
}

// Token returns the cached token, authenticating on a cache miss. A failed
// authentication is logged and yields a zero-value token; it is not retried
// here, the next cache miss retries naturally.
func (m *TokenManager) Token(ctx context.Context) model.AuthToken {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token.Present() {
		return m.token
	}

	settings, err := m.settings.Get(ctx)
	if err != nil {
		m.logger.Error("token fetch: load settings failed", "error", err)
		return model.AuthToken{}
	}

	creds := settings.ActiveCredentials()
	if creds.Username == "" || creds.Password == "" {
		m.logger.Warn("token fetch skipped: no credentials configured", "test_mode", creds.TestMode)
		return model.AuthToken{}
	}

	token, err := m.auth.Authenticate(ctx, creds)
	if err != nil {
		m.logger.Error("authentication failed", "username", creds.Username, "test_mode", creds.TestMode, "error", err)
		return model.AuthToken{}
	}

	m.logger.Info("token obtained", "test_mode", token.TestMode)
	m.token = token
	return m.token
}

// Invalidate clears the cached token unconditionally. Idempotent.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = model.AuthToken{}
}

// HasToken reports whether a token is currently cached, without fetching.
func (m *TokenManager) HasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token.Present()
}

// OnSettingsUpdated is the credential-change notification hook. It invalidates
// the cache when any of the four secret fields differ between the snapshots
// and reports whether it did. Changes to flags or the interval, including a
// bare test-mode toggle, leave the cache untouched.
func (m *TokenManager) OnSettingsUpdated(old, updated model.Settings) bool {
	if !updated.CredentialsChanged(old) {
		return false
	}
	m.logger.Info("credentials changed, invalidating token")
	m.Invalidate()
	return true
}
