// Package warehouse implements the warehouse provider API ports over HTTP.
package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
	"github.com/tkiviniemi/stocklink/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Authenticator = (*AuthClient)(nil)

// AuthClient implements the Authenticator port against the provider's token
// endpoint. It carries no token state itself; caching is the token manager's
// concern.
type AuthClient struct {
	cfg  Config
	http *http.Client
}

// NewAuthClient creates an AuthClient for the given endpoint configuration.
func NewAuthClient(cfg Config) *AuthClient {
	cfg.applyDefaults()
	return &AuthClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Authenticate exchanges the credential pair for a fresh token using HTTP
// basic auth against the environment selected by creds.TestMode.
func (c *AuthClient) Authenticate(ctx context.Context, creds model.Credentials) (model.AuthToken, error) {
	u := c.cfg.baseURL(creds.TestMode) + "/auth/token"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return model.AuthToken{}, fmt.Errorf("request token: credentials rejected (%d): %w", resp.StatusCode, driven.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return model.AuthToken{}, fmt.Errorf("request token: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.AuthToken{}, fmt.Errorf("read token response: %w", err)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return model.AuthToken{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return model.AuthToken{}, fmt.Errorf("decode token response: empty access_token")
	}

	return model.AuthToken{
		Value:      tr.AccessToken,
		ObtainedAt: time.Now(),
		TestMode:   creds.TestMode,
	}, nil
}
