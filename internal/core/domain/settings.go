package domain

import (
	"path/filepath"
	"time"
)

// LogFormat selects how log lines are rendered.
type LogFormat string

// Available log formats.
const (
	// LogFormatText prints "[LEVEL] message" lines.
	LogFormatText LogFormat = "text"

	// LogFormatJSON prints one Stackdriver-style JSON object per line.
	LogFormatJSON LogFormat = "json"
)

// IsValid returns true if the log format is recognised.
func (f LogFormat) IsValid() bool {
	switch f {
	case LogFormatText, LogFormatJSON:
		return true
	default:
		return false
	}
}

// BrowserSettings configures the WebDriver-backed browser facade.
type BrowserSettings struct {
	// RemoteURL is the WebDriver endpoint (chromedriver or a Selenium server).
	RemoteURL string `toml:"remote_url"`

	// Headless runs Chrome without a window.
	Headless bool `toml:"headless"`

	// Mobile enables Chrome mobile emulation.
	Mobile bool `toml:"mobile"`
}

// GoogleSettings holds OAuth client credentials and the stored user token.
type GoogleSettings struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
	AccessToken  string `toml:"access_token"`
	TokenType    string `toml:"token_type"`

	// Expiry is the access token expiry, zero when unknown.
	Expiry time.Time `toml:"expiry"`
}

// HasClient returns true if OAuth client credentials are present.
func (g GoogleSettings) HasClient() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// HasToken returns true if a refresh or access token is present.
func (g GoogleSettings) HasToken() bool {
	return g.RefreshToken != "" || g.AccessToken != ""
}

// Settings holds everything needed to construct the toolkit's facades.
type Settings struct {
	// WorkspaceDir is the directory relative paths resolve against.
	// Browser downloads and screenshots land here too.
	WorkspaceDir string `toml:"workspace_dir"`

	// LogFormat selects text or JSON log lines.
	LogFormat LogFormat `toml:"log_format"`

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string `toml:"metrics_addr"`

	Browser BrowserSettings `toml:"browser"`
	Google  GoogleSettings  `toml:"google"`

	SlackToken    string `toml:"slack_token"`
	ChatworkToken string `toml:"chatwork_token"`

	// GCPCredentialsContent is service-account JSON to materialise on disk.
	GCPCredentialsContent string `toml:"-"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		WorkspaceDir: "./",
		LogFormat:    LogFormatText,
		Browser: BrowserSettings{
			RemoteURL: "http://localhost:4444/wd/hub",
			Headless:  true,
		},
	}
}

// UserDataDir returns the Chrome profile directory inside the workspace.
func (s Settings) UserDataDir() string {
	return filepath.Join(s.WorkspaceDir, "user-data")
}
