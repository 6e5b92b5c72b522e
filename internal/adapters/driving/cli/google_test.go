package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/rpa-cli/internal/adapters/driven/config/env"
	"github.com/custodia-labs/rpa-cli/internal/browser"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

// fakeGoogle serves handler and points the Google clients at it.
func fakeGoogle(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	old := googleClientOptions
	googleClientOptions = []option.ClientOption{
		option.WithEndpoint(srv.URL + "/"),
		option.WithHTTPClient(srv.Client()),
	}
	t.Cleanup(func() { googleClientOptions = old })

	t.Setenv(env.GoogleClientID, "client-id")
	t.Setenv(env.GoogleClientSecret, "client-secret")
	t.Setenv(env.GoogleRefreshToken, "refresh-token")
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// Auth

func TestAuthStatusCmd(t *testing.T) {
	setupCLITest(t)
	t.Setenv(env.SlackToken, "xoxb")

	out, err := execute(t, "auth", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Google client:  not configured")
	assert.Contains(t, out, "Slack token:    configured")
}

func TestAuthGoogleCmd_ExchangesAndStoresToken(t *testing.T) {
	setupCLITest(t)
	dir := useFileStore(t)
	t.Setenv(env.GoogleClientID, "client-id")
	t.Setenv(env.GoogleClientSecret, "client-secret")

	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.Form.Get("code")
		writeJSON(t, w, map[string]any{
			"access_token":  "access",
			"token_type":    "Bearer",
			"refresh_token": "refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	googleOAuthEndpoint = &oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	defer func() { googleOAuthEndpoint = nil }()

	rootCmd.SetIn(strings.NewReader("the-code\n"))

	out, err := execute(t, "auth", "google")
	require.NoError(t, err)

	assert.Equal(t, "the-code", gotCode)
	assert.Contains(t, out, srv.URL+"/auth?")
	assert.Contains(t, out, "access_type=offline")

	s := reopen(t, dir)
	assert.Equal(t, "client-id", s.Google.ClientID)
	assert.Equal(t, "client-secret", s.Google.ClientSecret)
	assert.Equal(t, "refresh", s.Google.RefreshToken)
	assert.Equal(t, "access", s.Google.AccessToken)
	assert.False(t, s.Google.Expiry.IsZero())
}

func TestAuthGoogleCmd_PromptsForSecret(t *testing.T) {
	setupCLITest(t)
	useFileStore(t)
	t.Setenv(env.GoogleClientID, "client-id")

	asked := ""
	old := readSecret
	readSecret = func(q string) (string, error) {
		asked = q
		return "", nil
	}
	defer func() { readSecret = old }()

	_, err := execute(t, "auth", "google")

	assert.Equal(t, "Client secret: ", asked)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthGoogleCmd_EmptyCode(t *testing.T) {
	setupCLITest(t)
	useFileStore(t)
	t.Setenv(env.GoogleClientID, "client-id")
	t.Setenv(env.GoogleClientSecret, "client-secret")
	rootCmd.SetIn(strings.NewReader("\n"))

	_, err := execute(t, "auth", "google")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGoogleCommands_RequireToken(t *testing.T) {
	setupCLITest(t)

	for _, args := range [][]string{
		{"sheets", "get", "id", "A1:B2"},
		{"drive", "ls"},
		{"gmail", "send", "--to", "a@example.com"},
	} {
		_, err := execute(t, args...)
		assert.ErrorIs(t, err, domain.ErrAuthRequired, args)
	}
}

// Sheets

func TestSheetsGetCmd_PrintsCSV(t *testing.T) {
	setupCLITest(t)
	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Contains(t, r.URL.Path, "/spreadsheets/sheet-1/values/")
		writeJSON(t, w, map[string]any{
			"range":  "Sheet1!A1:B2",
			"values": [][]any{{"name", "qty"}, {"apple, red", 3}},
		})
	})

	out, err := execute(t, "sheets", "get", "sheet-1", "Sheet1!A1:B2")

	require.NoError(t, err)
	assert.Equal(t, "name,qty\n\"apple, red\",3\n", out)
}

func TestSheetsGetCmd_JSON(t *testing.T) {
	setupCLITest(t)
	fakeGoogle(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"values": [][]any{{"a"}}})
	})

	out, err := execute(t, "sheets", "get", "--json", "sheet-1", "A1")

	require.NoError(t, err)
	assert.JSONEq(t, `[["a"]]`, out)
}

func TestSheetsSetCmd_UploadsWorkspaceCSV(t *testing.T) {
	fs := setupCLITest(t)
	require.NoError(t, afero.WriteFile(fs, "/ws/in.csv", []byte("\ufeffid,name\n1,alice\n"), 0o644))

	var body struct {
		Values [][]string `json:"values"`
	}
	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &body))
		writeJSON(t, w, map[string]any{"updatedCells": 4, "updatedRange": "Data!A1:B2"})
	})

	out, err := execute(t, "-w", "/ws", "sheets", "set", "sheet-1", "Data!A1", "in.csv")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "alice"}}, body.Values)
	assert.Contains(t, out, "Updated 4 cells in Data!A1:B2")
}

func TestSheetsSetCmd_Raw(t *testing.T) {
	fs := setupCLITest(t)
	require.NoError(t, afero.WriteFile(fs, "/ws/in.csv", []byte("1\n"), 0o644))

	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		writeJSON(t, w, map[string]any{"updatedCells": 1})
	})

	_, err := execute(t, "-w", "/ws", "sheets", "set", "--raw", "sheet-1", "A1", "in.csv")

	require.NoError(t, err)
}

// Drive

func TestDriveLsCmd(t *testing.T) {
	setupCLITest(t)
	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("q"), `"folder-1" in parents`)
		writeJSON(t, w, map[string]any{
			"files": []map[string]any{{"id": "f1", "name": "report.pdf", "mimeType": "application/pdf"}},
		})
	})

	out, err := execute(t, "drive", "ls", "--parent", "folder-1")

	require.NoError(t, err)
	assert.Equal(t, "f1\tapplication/pdf\treport.pdf\n", out)
}

// Gmail

func TestGmailSendCmd(t *testing.T) {
	fs := setupCLITest(t)
	require.NoError(t, afero.WriteFile(fs, "/ws/out/report.csv", []byte("a,b\n"), 0o644))

	var raw string
	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/users/me/messages/send")
		var msg struct {
			Raw string `json:"raw"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		raw = msg.Raw
		writeJSON(t, w, map[string]any{"id": "msg-1"})
	})

	out, err := execute(t, "-w", "/ws", "gmail", "send",
		"--to", "a@example.com", "--subject", "Daily report", "--text", "attached",
		"--attach", "out/report.csv")

	require.NoError(t, err)
	assert.Equal(t, "msg-1\n", out)
	assert.NotEmpty(t, raw)
}

func TestGmailSendCmd_Draft(t *testing.T) {
	setupCLITest(t)
	fakeGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/users/me/drafts")
		writeJSON(t, w, map[string]any{"id": "draft-1"})
	})

	out, err := execute(t, "gmail", "send", "--to", "a@example.com", "--text", "hi", "--draft")

	require.NoError(t, err)
	assert.Equal(t, "draft-1\n", out)
}

func TestGmailSendCmd_MissingAttachment(t *testing.T) {
	setupCLITest(t)
	fakeGoogle(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := execute(t, "-w", "/ws", "gmail", "send", "--to", "a@example.com", "--attach", "missing.pdf")

	assert.Error(t, err)
}

// BigQuery

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"species=setosa", "filter=a=b"})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"species": "setosa", "filter": "a=b"}, got)
}

func TestParseParams_Invalid(t *testing.T) {
	for _, p := range []string{"novalue", "=x"} {
		_, err := parseParams([]string{p})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, p)
	}
}

func TestBQQueryCmd_InvalidParam(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "bq", "query", "SELECT 1", "--param", "oops")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Browser

func TestBrowserCmd_OpenFailure(t *testing.T) {
	setupCLITest(t)
	old := openBrowser
	openBrowser = func(context.Context) (*browser.Browser, error) {
		return nil, errors.New("connection refused")
	}
	defer func() { openBrowser = old }()

	_, err := execute(t, "browser", "screenshot", "https://example.com")

	assert.EqualError(t, err, "failed to open browser: connection refused")
}

func TestBrowserDownloadCmd_RequiresClick(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "browser", "download", "https://example.com")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "click")
}
