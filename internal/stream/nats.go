package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/notification"
)

// flushTimeout bounds a publish flush when the caller sets no deadline.
const flushTimeout = 5 * time.Second

// NATSConfig describes the subject and queue group.
type NATSConfig struct {
	URL     string
	Subject string
	Queue   string
	// Workers is the number of goroutines draining the subscription.
	Workers int
}

// Connect dials the NATS server with a client name.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats %s: %w", url, err)
	}
	return nc, nil
}

// NATSConsumer subscribes to a subject in a queue group. Consumers sharing
// the queue split the messages between them.
type NATSConsumer struct {
	nc        *nats.Conn
	cfg       NATSConfig
	processor *Processor
	logger    *slog.Logger
}

// NewNATSConsumer returns a consumer on nc.
func NewNATSConsumer(nc *nats.Conn, cfg NATSConfig, processor *Processor, logger *slog.Logger) *NATSConsumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSConsumer{nc: nc, cfg: cfg, processor: processor, logger: logger}
}

// Run subscribes and processes messages until ctx is canceled.
func (c *NATSConsumer) Run(ctx context.Context) error {
	ch := make(chan *nats.Msg, c.cfg.Workers*16)
	sub, err := c.nc.ChanQueueSubscribe(c.cfg.Subject, c.cfg.Queue, ch)
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", c.cfg.Subject, err)
	}
	c.logger.Info("nats consumer starting",
		"subject", c.cfg.Subject, "queue", c.cfg.Queue, "workers", c.cfg.Workers)

	done := make(chan struct{})
	go func() {
		c.work(ctx, ch)
		close(done)
	}()

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		c.logger.Warn("unsubscribing from nats", "error", err)
	}
	<-done
	c.logger.Info("nats consumer stopped")
	return nil
}

// work runs the worker pool until ctx is canceled or ch is closed.
func (c *NATSConsumer) work(ctx context.Context, ch <-chan *nats.Msg) {
	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-ch:
					if !ok {
						return
					}
					c.processor.Process(ctx, msg.Data)
				}
			}
		}()
	}
	wg.Wait()
}

// NATSPublisher publishes notification requests on a subject.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher returns a publisher on nc.
func NewNATSPublisher(nc *nats.Conn, subject string) *NATSPublisher {
	return &NATSPublisher{nc: nc, subject: subject}
}

// Publish sends req and flushes so the server has it before returning.
func (p *NATSPublisher) Publish(ctx context.Context, req notification.Request) error {
	data, err := Encode(req)
	if err != nil {
		return fmt.Errorf("encoding notification request: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing to nats: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	metrics.StreamPublished.WithLabelValues("nats").Inc()
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
