package driven

import "context"

// Notifier posts a text message to a chat destination.
// Slack targets are channel IDs or names, Chatwork targets are room IDs.
type Notifier interface {
	PostMessage(ctx context.Context, target, text string) error
}
