package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

func TestOAuthConfig_Defaults(t *testing.T) {
	cfg := OAuthConfig(ClientCredentials{ClientID: "id", ClientSecret: "secret"})

	assert.Equal(t, "id", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, RedirectOOB, cfg.RedirectURL)
	assert.Equal(t, DefaultScopes, cfg.Scopes)
	assert.Contains(t, cfg.Endpoint.TokenURL, "googleapis.com")
}

func TestOAuthConfig_CustomRedirectAndScopes(t *testing.T) {
	cfg := OAuthConfig(ClientCredentials{RedirectURL: "http://localhost:8080"}, ScopeSheets)

	assert.Equal(t, "http://localhost:8080", cfg.RedirectURL)
	assert.Equal(t, []string{ScopeSheets}, cfg.Scopes)
}

func TestNewTokenSource_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds ClientCredentials
		token Token
	}{
		{"no client", ClientCredentials{}, Token{RefreshToken: "r"}},
		{"no secret", ClientCredentials{ClientID: "id"}, Token{RefreshToken: "r"}},
		{"no token", ClientCredentials{ClientID: "id", ClientSecret: "s"}, Token{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenSource(context.Background(), tt.creds, tt.token)
			assert.ErrorIs(t, err, domain.ErrAuthRequired)
		})
	}
}

func TestNewTokenSource_ValidAccessTokenIsReused(t *testing.T) {
	ts, err := NewTokenSource(context.Background(),
		ClientCredentials{ClientID: "id", ClientSecret: "s"},
		Token{AccessToken: "access", TokenType: "Bearer", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)},
	)
	require.NoError(t, err)

	tok, err := ts.Token()

	require.NoError(t, err)
	assert.Equal(t, "access", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestCredentialsFromSettings(t *testing.T) {
	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	creds, tok := CredentialsFromSettings(domain.GoogleSettings{
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh",
		AccessToken:  "access",
		TokenType:    "Bearer",
		Expiry:       exp,
	})

	assert.Equal(t, ClientCredentials{ClientID: "id", ClientSecret: "secret"}, creds)
	assert.Equal(t, Token{RefreshToken: "refresh", AccessToken: "access", TokenType: "Bearer", Expiry: exp}, tok)
}
