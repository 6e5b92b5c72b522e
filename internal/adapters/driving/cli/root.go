package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/adapters/driven/config/env"
	"github.com/custodia-labs/rpa-cli/internal/connectors/gcp"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/rpa-cli/internal/files"
	"github.com/custodia-labs/rpa-cli/internal/logger"
	"github.com/custodia-labs/rpa-cli/internal/metrics"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose      bool
	configDir    string
	workspaceDir string
	metricsAddr  string
)

// Runtime state, populated before every command runs.
var (
	openConfigStore func(dir string) (driven.ConfigStore, error)
	configStore     driven.ConfigStore
	settings        = domain.DefaultSettings()
	workspaceFs     afero.Fs = afero.NewOsFs()
	recorder                 = metrics.NewRecorder()
	metricsServer   *http.Server
	metricsListener net.Listener
)

var rootCmd = &cobra.Command{
	Use:   "rpa",
	Short: "Robotic process automation toolkit",
	Long: `rpa drives browsers, files and SaaS APIs from scripts and scheduled jobs.

Settings are read from ~/.rpa/config.toml, then .env, then the environment.
Relative paths resolve against the workspace directory.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "trace every operation to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.rpa)")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "workspace directory (overrides WORKSPACE_DIR)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetConfigStoreOpener sets the function used to open the settings store
// for the directory given by --config.
func SetConfigStoreOpener(open func(dir string) (driven.ConfigStore, error)) {
	openConfigStore = open
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// setup resolves settings and configures logging before a command runs.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.Section("rpa " + cmd.Name())

	if err := env.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	s := domain.DefaultSettings()
	if openConfigStore != nil {
		store, err := openConfigStore(configDir)
		if err != nil {
			return fmt.Errorf("failed to open config: %w", err)
		}
		configStore = store
		s = store.Settings()
	}

	if err := env.Apply(&s); err != nil {
		return err
	}
	if workspaceDir != "" {
		s.WorkspaceDir = workspaceDir
	}
	if metricsAddr != "" {
		s.MetricsAddr = metricsAddr
	}
	settings = s

	if s.LogFormat == domain.LogFormatJSON {
		logger.SetFormat(logger.FormatJSON)
	} else {
		logger.SetFormat(logger.FormatText)
	}
	logger.Debug("workspace: %s", s.WorkspaceDir)

	if _, err := gcp.BootstrapCredentials(workspace(), s.GCPCredentialsContent); err != nil {
		return fmt.Errorf("failed to write GCP credentials: %w", err)
	}

	if s.MetricsAddr != "" {
		return serveMetrics(s.MetricsAddr)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := metricsServer.Shutdown(ctx)
	metricsServer, metricsListener = nil, nil
	return err
}

func serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	metricsListener = ln
	srv := metricsServer

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped: %v", err)
		}
	}()
	logger.Info("metrics: serving on %s/metrics", ln.Addr())
	return nil
}

// workspace returns the file facade for the current workspace.
func workspace() *files.Files {
	return files.New(workspaceFs, settings.WorkspaceDir)
}
