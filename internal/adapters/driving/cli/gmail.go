package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/connectors/google"
	"github.com/custodia-labs/rpa-cli/internal/connectors/google/gmail"
)

var (
	mailTo      []string
	mailCc      []string
	mailBcc     []string
	mailSubject string
	mailText    string
	mailHTML    string
	mailAttach  []string
	mailDraft   bool
)

var gmailCmd = &cobra.Command{
	Use:   "gmail",
	Short: "Send mail from the authorised Gmail account",
}

var gmailSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message, or save it as a draft",
	Long: `Sends a message from the authorised account. Attachments are read from
the workspace. With --draft the message is saved as a draft and its ID printed.`,
	Args: cobra.NoArgs,
	RunE: runGmailSend,
}

func init() {
	f := gmailSendCmd.Flags()
	f.StringSliceVar(&mailTo, "to", nil, "recipients")
	f.StringSliceVar(&mailCc, "cc", nil, "carbon copy recipients")
	f.StringSliceVar(&mailBcc, "bcc", nil, "blind carbon copy recipients")
	f.StringVarP(&mailSubject, "subject", "s", "", "subject line")
	f.StringVar(&mailText, "text", "", "plain text body")
	f.StringVar(&mailHTML, "html", "", "HTML body")
	f.StringSliceVarP(&mailAttach, "attach", "a", nil, "workspace files to attach")
	f.BoolVar(&mailDraft, "draft", false, "save as draft instead of sending")
	gmailCmd.AddCommand(gmailSendCmd)
	rootCmd.AddCommand(gmailCmd)
}

func newGmail(ctx context.Context) (*gmail.Gmail, error) {
	ts, err := googleTokenSource(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewGmailService(ctx, ts, googleClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return gmail.New(svc), nil
}

func runGmailSend(cmd *cobra.Command, _ []string) error {
	msg := gmail.Message{
		To:      mailTo,
		Cc:      mailCc,
		Bcc:     mailBcc,
		Subject: mailSubject,
		Text:    mailText,
		HTML:    mailHTML,
	}
	ws := workspace()
	for _, name := range mailAttach {
		data, err := ws.Read(name)
		if err != nil {
			return fmt.Errorf("failed to read attachment: %w", err)
		}
		msg.Attachments = append(msg.Attachments, gmail.Attachment{
			Filename: filepath.Base(name),
			Data:     data,
		})
	}

	g, err := newGmail(cmd.Context())
	if err != nil {
		return err
	}

	send := g.Send
	if mailDraft {
		send = g.CreateDraft
	}
	id, err := send(cmd.Context(), msg)
	if err != nil {
		return err
	}
	cmd.Println(id)
	return nil
}
