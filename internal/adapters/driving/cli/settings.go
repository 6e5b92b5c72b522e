package cli

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the settings stored in the config file.

Environment variables and .env entries override stored values at run time,
so "settings show" prints the effective configuration.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a single setting",
	Long:  "Store a single setting in the config file.\n\nKeys:\n  " + strings.Join(settingKeys(), "\n  "),
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the workspace, browser and chat tokens step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingSetters maps config keys to the field they change.
var settingSetters = map[string]func(s *domain.Settings, v string) error{
	"workspace_dir": func(s *domain.Settings, v string) error { s.WorkspaceDir = v; return nil },
	"log_format": func(s *domain.Settings, v string) error {
		f := domain.LogFormat(strings.ToLower(v))
		if !f.IsValid() {
			return fmt.Errorf("log format %q: %w", v, domain.ErrInvalidInput)
		}
		s.LogFormat = f
		return nil
	},
	"metrics_addr":         func(s *domain.Settings, v string) error { s.MetricsAddr = v; return nil },
	"browser.remote_url":   func(s *domain.Settings, v string) error { s.Browser.RemoteURL = v; return nil },
	"browser.headless":     boolSetter(func(s *domain.Settings) *bool { return &s.Browser.Headless }),
	"browser.mobile":       boolSetter(func(s *domain.Settings) *bool { return &s.Browser.Mobile }),
	"google.client_id":     func(s *domain.Settings, v string) error { s.Google.ClientID = v; return nil },
	"google.client_secret": func(s *domain.Settings, v string) error { s.Google.ClientSecret = v; return nil },
	"google.refresh_token": func(s *domain.Settings, v string) error { s.Google.RefreshToken = v; return nil },
	"slack_token":          func(s *domain.Settings, v string) error { s.SlackToken = v; return nil },
	"chatwork_token":       func(s *domain.Settings, v string) error { s.ChatworkToken = v; return nil },
}

func boolSetter(field func(s *domain.Settings) *bool) func(s *domain.Settings, v string) error {
	return func(s *domain.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%q is not a boolean: %w", v, domain.ErrInvalidInput)
		}
		*field(s) = b
		return nil
	}
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s := settings

	cmd.Println("Current Settings")
	cmd.Println("================")
	if configStore != nil {
		cmd.Printf("Config file: %s\n", configStore.Path())
	}
	cmd.Println()

	cmd.Println("[General]")
	cmd.Printf("  Workspace: %s\n", s.WorkspaceDir)
	cmd.Printf("  Log format: %s\n", s.LogFormat)
	cmd.Printf("  Metrics address: %s\n", orNotSet(s.MetricsAddr))
	cmd.Println()

	cmd.Println("[Browser]")
	cmd.Printf("  Remote URL: %s\n", s.Browser.RemoteURL)
	cmd.Printf("  Headless: %t\n", s.Browser.Headless)
	cmd.Printf("  Mobile: %t\n", s.Browser.Mobile)
	cmd.Println()

	cmd.Println("[Google]")
	cmd.Printf("  Client ID: %s\n", orNotSet(s.Google.ClientID))
	cmd.Printf("  Client secret: %s\n", maskSecret(s.Google.ClientSecret))
	cmd.Printf("  Refresh token: %s\n", maskSecret(s.Google.RefreshToken))
	cmd.Println()

	cmd.Println("[Notifications]")
	cmd.Printf("  Slack token: %s\n", maskSecret(s.SlackToken))
	cmd.Printf("  Chatwork token: %s\n", maskSecret(s.ChatworkToken))

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, value := args[0], args[1]
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	// Validate against a copy so a bad value never reaches the file.
	probe := configStore.Settings()
	if err := set(&probe, value); err != nil {
		return err
	}
	if err := configStore.Update(func(s *domain.Settings) { _ = set(s, value) }); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s\n", key)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("RPA Settings Wizard")
	cmd.Println("===================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	next := configStore.Settings()

	cmd.Println("Step 1: Workspace")
	cmd.Println("-----------------")
	cmd.Printf("Workspace directory [%s]: ", next.WorkspaceDir)
	if v := readLine(reader); v != "" {
		next.WorkspaceDir = v
	}
	cmd.Println()

	cmd.Println("Step 2: Browser")
	cmd.Println("---------------")
	cmd.Printf("WebDriver URL [%s]: ", next.Browser.RemoteURL)
	if v := readLine(reader); v != "" {
		next.Browser.RemoteURL = v
	}
	modes := []string{"Headless", "Windowed", "Headless mobile emulation"}
	for i, m := range modes {
		cmd.Printf("  %d. %s\n", i+1, m)
	}
	cmd.Print("\nEnter choice [1]: ")
	switch parseChoice(readLine(reader), len(modes), 1) {
	case 1:
		next.Browser.Headless, next.Browser.Mobile = true, false
	case 2:
		next.Browser.Headless, next.Browser.Mobile = false, false
	case 3:
		next.Browser.Headless, next.Browser.Mobile = true, true
	}
	cmd.Println()

	cmd.Println("Step 3: Notifications")
	cmd.Println("---------------------")
	cmd.Print("Slack token (blank to keep): ")
	if v := readLine(reader); v != "" {
		next.SlackToken = v
	}
	cmd.Print("Chatwork token (blank to keep): ")
	if v := readLine(reader); v != "" {
		next.ChatworkToken = v
	}
	cmd.Println()

	if err := configStore.Update(func(s *domain.Settings) { *s = next }); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Println("Run `rpa auth google` to authorise Google APIs.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func orNotSet(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}

func maskSecret(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
