// Package env overlays environment variables onto persisted settings.
//
// A .env file in the working directory is loaded first; variables already
// present in the process environment win over the file.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Recognised variables.
const (
	WorkspaceDir          = "WORKSPACE_DIR"
	BrowserRemoteURL      = "WEB_BROWSER_REMOTE_URL"
	BrowserHeadless       = "WEB_BROWSER_HEADLESS"
	BrowserMobile         = "WEB_BROWSER_MOBILE"
	GoogleClientID        = "GOOGLE_CLIENT_ID"
	GoogleClientSecret    = "GOOGLE_CLIENT_SECRET"
	GoogleRefreshToken    = "GOOGLE_REFRESH_TOKEN"
	SlackToken            = "SLACK_API_TOKEN"
	ChatworkToken         = "CHATWORK_API_TOKEN"
	LogFormat             = "RPA_LOG_FORMAT"
	KubernetesHost        = "KUBERNETES_SERVICE_HOST"
	GCPCredentialsContent = "GOOGLE_APPLICATION_CREDENTIALS_CONTENT"
)

// LookupFunc reads a variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		logger.Debug("env: loaded %s", name)
	}
	return nil
}

// Apply overlays variables from the process environment onto s.
func Apply(s *domain.Settings) error {
	return ApplyFrom(s, os.LookupEnv)
}

// ApplyFrom overlays variables read through lookup onto s.
func ApplyFrom(s *domain.Settings, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return &Error{Key: key, Value: v}
		}
		*dst = b
		return nil
	}

	str(WorkspaceDir, &s.WorkspaceDir)
	str(BrowserRemoteURL, &s.Browser.RemoteURL)
	if err := boolean(BrowserHeadless, &s.Browser.Headless); err != nil {
		return err
	}
	if err := boolean(BrowserMobile, &s.Browser.Mobile); err != nil {
		return err
	}
	str(GoogleClientID, &s.Google.ClientID)
	str(GoogleClientSecret, &s.Google.ClientSecret)
	str(GoogleRefreshToken, &s.Google.RefreshToken)
	str(SlackToken, &s.SlackToken)
	str(ChatworkToken, &s.ChatworkToken)
	str(GCPCredentialsContent, &s.GCPCredentialsContent)

	if v, ok := lookup(LogFormat); ok && v != "" {
		f := domain.LogFormat(strings.ToLower(v))
		if !f.IsValid() {
			return &Error{Key: LogFormat, Value: v}
		}
		s.LogFormat = f
	} else if v, ok := lookup(KubernetesHost); ok && v != "" {
		// Inside a pod logs are shipped to Cloud Logging unless a format was asked for.
		s.LogFormat = domain.LogFormatJSON
	}

	return nil
}

// Error reports a variable whose value could not be parsed.
type Error struct {
	Key   string
	Value string
}

func (e *Error) Error() string {
	return "env: invalid value " + strconv.Quote(e.Value) + " for " + e.Key
}

// Unwrap lets callers match domain.ErrInvalidInput.
func (e *Error) Unwrap() error {
	return domain.ErrInvalidInput
}
