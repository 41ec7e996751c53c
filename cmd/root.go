package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/config"
)

// NewRootCmd returns the notifyd root command. Configuration is loaded once
// before any subcommand runs and shared through cfg.
func NewRootCmd() *cobra.Command {
	cfg := &config.AppConfig{}
	var envFile string

	root := &cobra.Command{
		Use:   "notifyd",
		Short: "Notification dispatch service",
		Long: `notifyd accepts notification requests over HTTP, Kafka or NATS and
delivers them through the configured channel strategy. Email is delivered
over SMTP using the single active transport configuration.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")

	root.AddCommand(
		NewServeCmd(cfg),
		NewSendCmd(cfg),
		NewPublishCmd(cfg),
		NewTransportCmd(cfg),
		NewVersionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
