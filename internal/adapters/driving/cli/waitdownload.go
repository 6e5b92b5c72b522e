package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/download"
)

var (
	waitDir     string
	waitExt     string
	waitTimeout time.Duration
)

var waitDownloadCmd = &cobra.Command{
	Use:   "wait-download [flags] -- command [args...]",
	Short: "Run a command and wait for the file it downloads",
	Long: `Runs the command once, then polls the download directory until a file
modified after the command started appears. Partial downloads are ignored.
The name of the finished file is printed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWaitDownload,
}

func init() {
	waitDownloadCmd.Flags().StringVar(&waitDir, "dir", "", "download directory (default workspace)")
	waitDownloadCmd.Flags().StringVar(&waitExt, "ext", "", "only accept files with this extension")
	waitDownloadCmd.Flags().DurationVar(&waitTimeout, "timeout", download.DefaultTimeout, "how long to wait")
	rootCmd.AddCommand(waitDownloadCmd)
}

func runWaitDownload(cmd *cobra.Command, args []string) error {
	dir := waitDir
	if dir == "" {
		dir = settings.WorkspaceDir
	}

	w := download.NewWaiter(workspaceFs, dir)
	name, err := w.WaitForCompletion(cmd.Context(), func(ctx context.Context) error {
		return runCommand(ctx, cmd, args)
	},
		download.WithExtension(waitExt),
		download.WithTimeout(waitTimeout),
		download.WithObserver(recorder),
	)
	if err != nil {
		return err
	}

	cmd.Println(name)
	return nil
}
