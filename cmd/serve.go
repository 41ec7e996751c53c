package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/api"
	"github.com/shaharia-lab/notifyd/internal/build"
	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/scheduler"
	"github.com/shaharia-lab/notifyd/internal/server"
	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/stream"
)

// NewServeCmd returns the "serve" subcommand that starts the HTTP API and,
// when a broker is configured, the stream consumer.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int
	var broker string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notification API server and stream consumer",
		Long: `Start the notifyd HTTP server. With EVENT_BROKER=kafka or nats the
service also consumes notification requests from the configured topic.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("broker") {
				cfg.EventBroker = broker
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			logFile := filepath.Join(cfg.LogDir(), "system.log")
			printBanner(cfg, logFile)

			if err := runServe(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "notifyd stopped with an error: %v\nLogs: %s\n", err, logFile)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8990, "HTTP server port (overrides PORT env var)")
	cmd.Flags().StringVar(&broker, "broker", config.BrokerNone, "Stream broker to consume from: none, kafka or nats (overrides EVENT_BROKER)")
	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", cerr)
		}
	}()

	sched, err := scheduler.New(scheduler.Config{
		Store:     a.logStore,
		Retention: cfg.DeliveryLogRetention,
		Interval:  cfg.DeliveryLogPurgeInterval,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			a.logger.Warn("stopping scheduler", "error", err)
		}
	}()

	consumer, err := newConsumer(cfg, a)
	if err != nil {
		return err
	}

	apiSrv := api.New(a.delivery, a.transports, a.logger)
	srv := server.New(apiSrv, cfg.Port, cfg.CORSAllowedOrigins, a.logger)

	// The first component to fail stops the others.
	errCh := make(chan error, 2)
	go func() { errCh <- srv.Run(ctx) }()
	running := 1
	if consumer != nil {
		running++
		go func() { errCh <- consumer.Run(ctx) }()
	}

	var errs []error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
			cancel()
		}
	}
	a.logger.Info("notifyd stopped")
	return errors.Join(errs...)
}

type runner interface {
	Run(ctx context.Context) error
}

// newConsumer returns the configured stream consumer, or nil when no broker
// is configured.
func newConsumer(cfg *config.AppConfig, a *app) (runner, error) {
	switch cfg.EventBroker {
	case config.BrokerKafka:
		processor := stream.NewProcessor(a.delivery, service.SourceKafka, a.logger)
		return stream.NewKafkaConsumer(stream.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
			Workers: cfg.ConsumerWorkers,
		}, processor, a.logger), nil

	case config.BrokerNATS:
		nc, err := stream.Connect(cfg.NATSURL, cfg.ServiceName)
		if err != nil {
			return nil, err
		}
		a.onClose(func() error { nc.Close(); return nil })
		processor := stream.NewProcessor(a.delivery, service.SourceNATS, a.logger)
		return stream.NewNATSConsumer(nc, stream.NATSConfig{
			URL:     cfg.NATSURL,
			Subject: cfg.NATSSubject,
			Queue:   cfg.NATSQueue,
			Workers: cfg.ConsumerWorkers,
		}, processor, a.logger), nil

	default:
		return nil, nil
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Faint(true)
)

// printBanner writes the startup banner to stdout. Structured logs go to
// the log file unless LOG_OUTPUT=stdout.
func printBanner(cfg *config.AppConfig, logFile string) {
	fmt.Println(titleStyle.Render("notifyd " + build.Version))
	fmt.Printf("%s http://localhost:%d/api\n", labelStyle.Render("API:    "), cfg.Port)
	fmt.Printf("%s %s\n", labelStyle.Render("Broker: "), cfg.EventBroker)
	if cfg.LogOutput != "stdout" {
		fmt.Printf("%s %s\n", labelStyle.Render("Logs:   "), logFile)
	}
	fmt.Println()
}
