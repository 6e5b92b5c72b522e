package google

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

// RedirectOOB is the out-of-band redirect used by installed apps.
const RedirectOOB = "urn:ietf:wg:oauth:2.0:oob"

// OAuth2 scopes requested by the toolkit.
const (
	ScopeDrive  = "https://www.googleapis.com/auth/drive"
	ScopeGmail  = "https://mail.google.com/"
	ScopeSheets = "https://www.googleapis.com/auth/spreadsheets"
)

// DefaultScopes covers every Google facade.
var DefaultScopes = []string{ScopeDrive, ScopeGmail, ScopeSheets}

// ClientCredentials identifies the OAuth client.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
	// RedirectURL defaults to RedirectOOB.
	RedirectURL string
}

// Token is a stored user authorisation.
type Token struct {
	RefreshToken string
	AccessToken  string
	TokenType    string
	Expiry       time.Time
}

// CredentialsFromSettings splits persisted settings into client credentials
// and the stored token.
func CredentialsFromSettings(s domain.GoogleSettings) (ClientCredentials, Token) {
	return ClientCredentials{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
		}, Token{
			RefreshToken: s.RefreshToken,
			AccessToken:  s.AccessToken,
			TokenType:    s.TokenType,
			Expiry:       s.Expiry,
		}
}

// OAuthConfig builds the oauth2 configuration for the Google endpoint.
func OAuthConfig(c ClientCredentials, scopes ...string) *oauth2.Config {
	redirect := c.RedirectURL
	if redirect == "" {
		redirect = RedirectOOB
	}
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirect,
		Endpoint:     googleoauth.Endpoint,
		Scopes:       scopes,
	}
}

// NewTokenSource returns a refreshing oauth2.TokenSource for the stored
// token. The returned source can be passed to the service constructors.
func NewTokenSource(ctx context.Context, c ClientCredentials, t Token) (oauth2.TokenSource, error) {
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, fmt.Errorf("google client id and secret: %w", domain.ErrAuthRequired)
	}
	if t.RefreshToken == "" && t.AccessToken == "" {
		return nil, fmt.Errorf("google refresh or access token: %w", domain.ErrAuthRequired)
	}

	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry,
	}
	return OAuthConfig(c).TokenSource(ctx, tok), nil
}
