package browser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// sendCommand issues a Chrome DevTools command through chromedriver's
// vendor endpoint, which the WebDriver client has no method for.
func (b *Browser) sendCommand(ctx context.Context, cmd string, params map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{"cmd": cmd, "params": params})
	if err != nil {
		return err
	}

	url := strings.TrimRight(b.cfg.RemoteURL, "/") + "/session/" + b.wd.SessionID() + "/chromium/send_command"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%s: status %d: %s", cmd, res.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// enableDownloads lets headless Chrome save files into dir.
func (b *Browser) enableDownloads(ctx context.Context, dir string) error {
	logger.Debug("WebBrowser: allowing downloads into %s", dir)
	return b.sendCommand(ctx, "Page.setDownloadBehavior", map[string]interface{}{
		"behavior":     "allow",
		"downloadPath": dir,
	})
}
