// Package slack posts notifications through the Slack Web API.
package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.Notifier = (*Client)(nil)

// Option configures a Client.
type Option func(*[]slack.Option)

// WithAPIURL points the client at another Web API root (must end in "/").
func WithAPIURL(url string) Option {
	return func(opts *[]slack.Option) { *opts = append(*opts, slack.OptionAPIURL(url)) }
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(opts *[]slack.Option) { *opts = append(*opts, slack.OptionHTTPClient(c)) }
}

// Client wraps the Slack Web API client.
type Client struct {
	api *slack.Client
}

// New creates a Client authenticated with a bot or user token.
func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("slack api token: %w", domain.ErrAuthRequired)
	}
	var sopts []slack.Option
	for _, o := range opts {
		o(&sopts)
	}
	return &Client{api: slack.New(token, sopts...)}, nil
}

// API exposes the underlying client for calls the facade does not wrap.
func (c *Client) API() *slack.Client {
	return c.api
}

// PostMessage posts text to a channel (ID or name).
func (c *Client) PostMessage(ctx context.Context, channel, text string) error {
	logger.Debug("Slack.postMessage channel=%s", channel)
	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("%w: slack chat.postMessage to %s: %v", domain.ErrNotificationFailed, channel, err)
	}
	return nil
}
