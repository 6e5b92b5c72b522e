package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/connectors/chatwork"
	"github.com/custodia-labs/rpa-cli/internal/connectors/slack"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/core/ports/driven"
)

// notifierFactories builds a notifier per service from the resolved settings.
var notifierFactories = map[string]func(s domain.Settings) (driven.Notifier, error){
	"slack": func(s domain.Settings) (driven.Notifier, error) {
		return slack.New(s.SlackToken)
	},
	"chatwork": func(s domain.Settings) (driven.Notifier, error) {
		return chatwork.New(s.ChatworkToken)
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Post a message to a chat service",
	Long: `Posts a plain text message. Tokens come from SLACK_API_TOKEN and
CHATWORK_API_TOKEN or the config file.`,
}

func init() {
	notifyCmd.AddCommand(newNotifyCmd("slack", "channel", "Post a message to a Slack channel"))
	notifyCmd.AddCommand(newNotifyCmd("chatwork", "room-id", "Post a message to a Chatwork room"))
	rootCmd.AddCommand(notifyCmd)
}

func newNotifyCmd(service, target, short string) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("%s <%s> <text>", service, target),
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := notifierFactories[service](settings)
			if err != nil {
				return fmt.Errorf("%s: %w", service, err)
			}
			if err := n.PostMessage(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			cmd.Printf("Posted to %s %s\n", service, args[0])
			return nil
		},
	}
}
