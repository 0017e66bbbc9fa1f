package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// CredentialCheck reports what happened to the token cache as a result of a
// settings update. When the update changed credentials, Authenticated tells
// the operator whether the new pair was accepted by the provider.
type CredentialCheck struct {
	CredentialsChanged bool
	Authenticated      bool
}

// SettingsService applies settings updates and delivers the synchronous
// credential-change notification to the token manager.
type SettingsService struct {
	settings driven.SettingsStore
	tokens   *TokenManager
	logger   *slog.Logger
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(settings driven.SettingsStore, tokens *TokenManager, logger *slog.Logger) *SettingsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{
		settings: settings,
		tokens:   tokens,
		logger:   logger,
	}
}

// Get returns the current settings snapshot.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	return s.settings.Get(ctx)
}

// Update persists the new settings and notifies the token manager. The
// watermark fields are not updatable through this path; the stored values
// are carried over so an admin write cannot move a sync window.
//
// After an invalidating update the service immediately requests a fresh
// token so the caller can surface whether the new credentials work.
func (s *SettingsService) Update(ctx context.Context, updated model.Settings) (CredentialCheck, error) {
	old, err := s.settings.Get(ctx)
	if err != nil {
		return CredentialCheck{}, fmt.Errorf("load current settings: %w", err)
	}

	updated.StockSyncedAt = old.StockSyncedAt
	updated.OrderSyncedAt = old.OrderSyncedAt

	if err := s.settings.Update(ctx, updated); err != nil {
		return CredentialCheck{}, fmt.Errorf("persist settings: %w", err)
	}

	check := CredentialCheck{}
	if s.tokens.OnSettingsUpdated(old, updated) {
		check.CredentialsChanged = true
		check.Authenticated = s.tokens.Token(ctx).Present()
		if !check.Authenticated {
			s.logger.Warn("updated credentials were rejected by the provider")
		}
	}

	return check, nil
}
