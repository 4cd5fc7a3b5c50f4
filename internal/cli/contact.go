package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/pkg/mailer"
)

// contactCommand sends an inquiry through the configured mailer.
func (c *CLI) contactCommand() *cobra.Command {
	var (
		q      mailer.Inquiry
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send an inquiry through the contact mailer",
		Long: `Send an inquiry through the contact mailer.

Useful for checking the mailer endpoint end to end. Pass --message - to read
the message body from stdin. With --dry-run the inquiry is only validated.`,
		Example: `  reactiveshots contact --name Ada --email ada@example.com --subject "Test" --message "Hello"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if q.Message == "-" {
				body, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
				if err != nil {
					return fmt.Errorf("read message: %w", err)
				}
				q.Message = strings.TrimSpace(string(body))
			}
			q = q.Normalized()
			if err := q.Validate(); err != nil {
				return err
			}
			if dryRun {
				printSuccess("Inquiry is valid")
				return nil
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			client, err := mailer.NewClient(cfg.Mailer.Endpoint)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Sending inquiry...")
			spinner.Start()
			receipt, err := client.Send(cmd.Context(), q)
			if err != nil {
				spinner.StopWithError("Send failed")
				return err
			}
			spinner.StopWithSuccess("Inquiry sent")
			printKeyValue("Reference", receipt.ID)
			printKeyValue("Endpoint", client.Endpoint())
			return nil
		},
	}

	cmd.Flags().StringVar(&q.Name, "name", "", "sender name")
	cmd.Flags().StringVar(&q.Email, "email", "", "reply-to email address")
	cmd.Flags().StringVar(&q.Subject, "subject", "", "subject line")
	cmd.Flags().StringVarP(&q.Message, "message", "m", "", "message body, or - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate without sending")

	return cmd
}
