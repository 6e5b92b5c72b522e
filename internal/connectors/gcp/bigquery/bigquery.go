// Package bigquery runs parameterised SQL against BigQuery.
package bigquery

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Client wraps a bigquery.Client.
type Client struct {
	bq *bigquery.Client
}

// New creates a Client. An empty projectID is detected from the credentials.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		projectID = bigquery.DetectProjectID
	}
	bq, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &Client{bq: bq}, nil
}

// Close releases the client's connections.
func (c *Client) Close() error {
	return c.bq.Close()
}

// Parameters converts named parameters (referenced as @name in SQL) into
// query parameters ordered by name.
func Parameters(params map[string]any) []bigquery.QueryParameter {
	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]bigquery.QueryParameter, 0, len(names))
	for _, n := range names {
		out = append(out, bigquery.QueryParameter{Name: n, Value: params[n]})
	}
	return out
}

// Query runs sql and returns every result row keyed by column name.
func (c *Client) Query(ctx context.Context, sql string, params map[string]any) ([]map[string]bigquery.Value, error) {
	logger.Debug("BigQuery.query %s params=%v", sql, params)

	q := c.bq.Query(sql)
	q.Parameters = Parameters(params)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("bigquery query: %w", err)
	}

	var rows []map[string]bigquery.Value
	for {
		row := map[string]bigquery.Value{}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("bigquery read: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
