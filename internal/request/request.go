// Package request issues plain HTTP requests and saves responses into the
// workspace.
package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// Client performs HTTP requests on behalf of automation scripts.
type Client struct {
	http  *http.Client
	files *files.Files
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client, f *files.Files) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, files: f}
}

// Fetch sends a request and returns the response. The caller closes the body.
func (c *Client) Fetch(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	logger.Debug("Request.fetch %s %s", method, url)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.http.Do(req)
}

// Download GETs url and stores the body as filename in the workspace. The
// body is streamed to a temporary file first so a failed transfer never
// leaves a truncated file under the final name. The returned response has
// its body already consumed and closed.
func (c *Client) Download(ctx context.Context, filename, url string, header http.Header) (*http.Response, error) {
	logger.Debug("Request.download %s -> %s", url, filename)
	res, err := c.Fetch(ctx, http.MethodGet, url, nil, header)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res, fmt.Errorf("download %s: unexpected status %s", url, res.Status)
	}

	fs := c.files.Fs()
	dst := c.files.Path(filename)
	if err := fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return res, err
	}

	tmp := filepath.Join(filepath.Dir(dst), "."+uuid.NewString()+".part")
	out, err := fs.Create(tmp)
	if err != nil {
		return res, err
	}
	if _, err := io.Copy(out, res.Body); err != nil {
		out.Close()
		_ = fs.Remove(tmp)
		return res, fmt.Errorf("download %s: %w", url, err)
	}
	if err := out.Close(); err != nil {
		_ = fs.Remove(tmp)
		return res, err
	}

	if err := fs.Rename(tmp, dst); err != nil {
		_ = fs.Remove(tmp)
		return res, err
	}
	return res, nil
}
