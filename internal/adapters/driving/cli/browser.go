package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/browser"
	"github.com/custodia-labs/rpa-cli/internal/download"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

var (
	browserClick   string
	browserExt     string
	browserTimeout = download.DefaultTimeout
)

// openBrowser starts a session. Overridable in tests.
var openBrowser = func(ctx context.Context) (*browser.Browser, error) {
	return browser.New(ctx, browser.ConfigFromSettings(settings.Browser), workspace())
}

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Drive Chrome through a WebDriver endpoint",
	Long: `Opens a Chrome session on WEB_BROWSER_REMOTE_URL with a fresh profile in
<workspace>/user-data. Downloads land in the workspace.`,
}

var browserScreenshotCmd = &cobra.Command{
	Use:   "screenshot <url>",
	Short: "Open a page and save a screenshot to the workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(b *browser.Browser) error {
			if err := b.Get(args[0]); err != nil {
				return err
			}
			name, err := b.TakeScreenshot()
			if err != nil {
				return err
			}
			cmd.Println(name)
			return nil
		})
	},
}

var browserDownloadCmd = &cobra.Command{
	Use:   "download <url>",
	Short: "Open a page, click a link and wait for the download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBrowser(cmd, func(b *browser.Browser) error {
			if err := b.Get(args[0]); err != nil {
				return err
			}
			name, err := b.WaitForDownload(cmd.Context(), func(context.Context) error {
				el, err := b.FindElement(browserClick)
				if err != nil {
					return err
				}
				return b.MouseClick(el)
			},
				download.WithExtension(browserExt),
				download.WithTimeout(browserTimeout),
				download.WithObserver(recorder),
			)
			if err != nil {
				return err
			}
			cmd.Println(name)
			return nil
		})
	},
}

func init() {
	browserDownloadCmd.Flags().StringVar(&browserClick, "click", "", "CSS selector of the element that starts the download")
	browserDownloadCmd.Flags().StringVar(&browserExt, "ext", "", "only accept files with this extension")
	browserDownloadCmd.Flags().DurationVar(&browserTimeout, "timeout", download.DefaultTimeout, "how long to wait")
	_ = browserDownloadCmd.MarkFlagRequired("click")
	browserCmd.AddCommand(browserScreenshotCmd)
	browserCmd.AddCommand(browserDownloadCmd)
	rootCmd.AddCommand(browserCmd)
}

func withBrowser(cmd *cobra.Command, fn func(b *browser.Browser) error) error {
	b, err := openBrowser(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	defer func() {
		if err := b.Quit(); err != nil {
			logger.Warn("browser: quit: %v", err)
		}
	}()
	return fn(b)
}
