package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/service"
)

// NewSendCmd returns the "send" subcommand that dispatches one notification
// synchronously through the active transport.
func NewSendCmd(cfg *config.AppConfig) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single notification immediately",
		Example: `  notifyd send --to john@example.com --subject "Verify your email" \
    --template verification --category verification \
    --var name="John Doe" --var verificationCode=123456`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			return runSend(cmd, cfg, req)
		},
	}
	flags.register(cmd)
	return cmd
}

func runSend(cmd *cobra.Command, cfg *config.AppConfig, req notification.Request) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	id, err := a.delivery.Send(ctx, service.SourceCLI, req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		return fmt.Errorf("%s: %w", notification.Kind(err), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s (request %s)\n", req.Type, req.Recipient, id)
	return nil
}
