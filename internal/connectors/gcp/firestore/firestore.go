// Package firestore exposes Firestore collections to automation scripts.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Client wraps a firestore.Client.
type Client struct {
	db *firestore.Client
}

// New creates a Client. An empty projectID is detected from the credentials.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	db, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Client{db: db}, nil
}

// DB exposes the underlying client.
func (c *Client) DB() *firestore.Client {
	return c.db
}

// Close releases the client's connections.
func (c *Client) Close() error {
	return c.db.Close()
}

// Collection returns a reference to the collection at a slash-separated
// path. It returns nil when path names a document rather than a collection.
func (c *Client) Collection(path string) *firestore.CollectionRef {
	logger.Debug("Firestore.collection %s", path)
	return c.db.Collection(path)
}
