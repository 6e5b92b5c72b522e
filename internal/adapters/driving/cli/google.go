package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/prompt"
)

// Overridable in tests.
var (
	googleClientOptions []option.ClientOption
	googleOAuthEndpoint *oauth2.Endpoint
	readSecret          = prompt.Secret
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise access to third-party APIs",
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorise Drive, Gmail and Sheets access",
	Long: `Walks through the Google OAuth consent flow for an installed app.

Open the printed URL, approve access and paste the code shown by Google.
The client credentials and the resulting token are saved to the config file.`,
	Args: cobra.NoArgs,
	RunE: runAuthGoogle,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are configured",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("Google client:  %s\n", configured(settings.Google.HasClient()))
		cmd.Printf("Google token:   %s\n", configured(settings.Google.HasToken()))
		cmd.Printf("Slack token:    %s\n", configured(settings.SlackToken != ""))
		cmd.Printf("Chatwork token: %s\n", configured(settings.ChatworkToken != ""))
	},
}

func init() {
	authCmd.AddCommand(authGoogleCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func runAuthGoogle(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	creds, _ := google.CredentialsFromSettings(settings.Google)
	var err error
	if creds.ClientID == "" {
		if creds.ClientID, err = prompt.Ask(cmd.InOrStdin(), cmd.ErrOrStderr(), "Client ID: "); err != nil {
			return err
		}
	}
	if creds.ClientSecret == "" {
		if creds.ClientSecret, err = readSecret("Client secret: "); err != nil {
			return err
		}
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("client id and secret are required: %w", domain.ErrInvalidInput)
	}

	cfg := google.OAuthConfig(creds)
	if googleOAuthEndpoint != nil {
		cfg.Endpoint = *googleOAuthEndpoint
	}

	cmd.Println("Authorise this app by visiting:")
	cmd.Println(cfg.AuthCodeURL("rpa", oauth2.AccessTypeOffline, oauth2.ApprovalForce))
	code, err := prompt.Ask(cmd.InOrStdin(), cmd.ErrOrStderr(), "Code: ")
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("authorisation code: %w", domain.ErrInvalidInput)
	}

	tok, err := cfg.Exchange(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	err = configStore.Update(func(s *domain.Settings) {
		s.Google.ClientID = creds.ClientID
		s.Google.ClientSecret = creds.ClientSecret
		s.Google.AccessToken = tok.AccessToken
		s.Google.TokenType = tok.TokenType
		s.Google.Expiry = tok.Expiry
		if tok.RefreshToken != "" {
			s.Google.RefreshToken = tok.RefreshToken
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	cmd.Printf("Token saved to %s\n", configStore.Path())
	return nil
}

// googleTokenSource builds a token source from the resolved settings.
func googleTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	creds, tok := google.CredentialsFromSettings(settings.Google)
	ts, err := google.NewTokenSource(ctx, creds, tok)
	if err != nil {
		return nil, fmt.Errorf("%w (run `rpa auth google`)", err)
	}
	return ts, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
