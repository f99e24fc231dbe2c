package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swiftline-carrier/driver-notify/internal/config"
)

// NewSendCmd returns the "send" subcommand that sends one welcome email.
// It is meant for checking SMTP credentials before deploying.
func NewSendCmd(cfg *config.AppConfig) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single welcome email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			mailer, transport := newMailer(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.SMTPTimeout*2)
			defer cancel()

			res := mailer.SendWelcome(ctx, email, name)
			if !res.OK() {
				return fmt.Errorf("welcome email to %s %s: %w", email, res.Status, res.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Email sent successfully to %s via %s\n", email, transport.Addr())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Recipient address")
	cmd.Flags().StringVar(&name, "name", "", "Driver full name used in the greeting")
	return cmd
}
