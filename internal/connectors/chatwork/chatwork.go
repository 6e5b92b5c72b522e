// Package chatwork posts notifications to Chatwork rooms through the v2 API.
package chatwork

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// DefaultBaseURL is the Chatwork API root.
const DefaultBaseURL = "https://api.chatwork.com/v2"

// Ensure Client implements the interface.
var _ driven.Notifier = (*Client)(nil)

// Client calls the Chatwork API with an API token.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a Client.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("chatwork api token: %w", domain.ErrAuthRequired)
	}
	c := &Client{token: token, baseURL: DefaultBaseURL, http: http.DefaultClient}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type apiErrors struct {
	Errors []string `json:"errors"`
}

// PostMessage posts text to a room.
func (c *Client) PostMessage(ctx context.Context, roomID, text string) error {
	_, err := c.SendMessage(ctx, roomID, text)
	return err
}

// SendMessage posts text to a room and returns the new message ID.
func (c *Client) SendMessage(ctx context.Context, roomID, text string) (string, error) {
	logger.Debug("Chatwork.postMessage room=%s", roomID)

	endpoint := c.baseURL + "/rooms/" + url.PathEscape(roomID) + "/messages"
	form := url.Values{"body": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("X-ChatWorkToken", c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: chatwork: %v", domain.ErrNotificationFailed, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if res.StatusCode != http.StatusOK {
		var e apiErrors
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && len(e.Errors) > 0 {
			msg = strings.Join(e.Errors, "; ")
		}
		return "", fmt.Errorf("%w: chatwork room %s: status %d: %s", domain.ErrNotificationFailed, roomID, res.StatusCode, msg)
	}

	var ok struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(body, &ok); err != nil {
		return "", fmt.Errorf("chatwork: decode response: %w", err)
	}
	return ok.MessageID, nil
}
