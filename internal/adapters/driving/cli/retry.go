package cli

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/retry"
)

var (
	retryAttempts   int
	retryInterval   time.Duration
	retryFirstError bool
)

// runCommand runs an external command wired to the cobra command's streams.
var runCommand = func(ctx context.Context, cmd *cobra.Command, argv []string) error {
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	return c.Run()
}

var retryCmd = &cobra.Command{
	Use:   "retry [flags] -- command [args...]",
	Short: "Run a command until it succeeds",
	Long: `Runs the command up to --attempts times, sleeping interval*n between
attempt n and n+1. The exit status is that of the last failed attempt
unless --first-error is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetry,
}

func init() {
	retryCmd.Flags().IntVarP(&retryAttempts, "attempts", "n", retry.DefaultAttempts, "maximum number of attempts")
	retryCmd.Flags().DurationVar(&retryInterval, "interval", retry.DefaultInterval, "base backoff interval")
	retryCmd.Flags().BoolVar(&retryFirstError, "first-error", false, "report the first failure instead of the last")
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	opts := []retry.Option{
		retry.WithAttempts(retryAttempts),
		retry.WithBackoff(retry.Linear(retryInterval)),
		retry.WithObserver(recorder),
	}
	if retryFirstError {
		opts = append(opts, retry.WithFirstError())
	}

	err := retry.Run(cmd.Context(), func(ctx context.Context) error {
		return runCommand(ctx, cmd, args)
	}, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}
