package slack

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("xoxb-test", WithAPIURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestPostMessage(t *testing.T) {
	var channel, text string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat.postMessage", r.URL.Path)
		require.NoError(t, r.ParseForm())
		channel = r.PostForm.Get("channel")
		text = r.PostForm.Get("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":true,"channel":"C1","ts":"1.0"}`)
	})

	err := c.PostMessage(context.Background(), "C1", "build finished")

	require.NoError(t, err)
	assert.Equal(t, "C1", channel)
	assert.Equal(t, "build finished", text)
}

func TestPostMessage_NotOK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"ok":false,"error":"channel_not_found"}`)
	})

	err := c.PostMessage(context.Background(), "nowhere", "hi")

	assert.ErrorIs(t, err, domain.ErrNotificationFailed)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("")

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}
