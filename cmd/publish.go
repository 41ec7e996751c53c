package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/stream"
)

const publishTimeout = 10 * time.Second

// NewPublishCmd returns the "publish" subcommand that enqueues a
// notification request on the configured broker instead of sending it.
func NewPublishCmd(cfg *config.AppConfig) *cobra.Command {
	var flags requestFlags
	var broker string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a notification request to Kafka or NATS",
		Long: `Publish a notification request on the broker topic consumed by
"notifyd serve". The request is validated locally first.`,
		Example: `  notifyd publish --broker kafka --to john@example.com --subject "Reset your password" \
    --template password-reset --var name="John Doe" --var resetLink=https://example.com/r/abc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("broker") || cfg.EventBroker == config.BrokerNone {
				cfg.EventBroker = broker
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			if err := req.Validate(); err != nil {
				return err
			}

			pub, target, err := newPublisher(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = pub.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), publishTimeout)
			defer cancel()
			if err := pub.Publish(ctx, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s notification for %s to %s\n", req.Type, req.Recipient, target)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&broker, "broker", config.BrokerKafka, "Broker to publish to: kafka or nats (overrides EVENT_BROKER)")
	return cmd
}

// newPublisher returns a publisher for the configured broker and a
// description of where it publishes.
func newPublisher(cfg *config.AppConfig) (stream.Publisher, string, error) {
	switch cfg.EventBroker {
	case config.BrokerKafka:
		return stream.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), "kafka topic " + cfg.KafkaTopic, nil
	case config.BrokerNATS:
		nc, err := stream.Connect(cfg.NATSURL, cfg.ServiceName+"-publish")
		if err != nil {
			return nil, "", err
		}
		return stream.NewNATSPublisher(nc, cfg.NATSSubject), "nats subject " + cfg.NATSSubject, nil
	default:
		return nil, "", fmt.Errorf("no broker configured: pass --broker kafka|nats or set EVENT_BROKER")
	}
}
