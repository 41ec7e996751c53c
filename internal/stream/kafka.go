package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shaharia-lab/notifyd/internal/metrics"
	"github.com/shaharia-lab/notifyd/internal/notification"
)

// KafkaConfig describes the topic and consumer group.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	// Workers is the number of readers in the consumer group.
	Workers int
}

// messageReader is the subset of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer runs Workers readers in one consumer group. Each reader
// handles one message at a time and commits it once processed, so a
// message is redelivered only if the process stops before the commit.
type KafkaConsumer struct {
	cfg       KafkaConfig
	processor *Processor
	logger    *slog.Logger
	newReader func() messageReader
}

// NewKafkaConsumer returns a consumer for cfg.
func NewKafkaConsumer(cfg KafkaConfig, processor *Processor, logger *slog.Logger) *KafkaConsumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &KafkaConsumer{cfg: cfg, processor: processor, logger: logger}
	c.newReader = func() messageReader { return NewKafkaReader(cfg) }
	return c
}

// NewKafkaReader returns a group reader for cfg.
func NewKafkaReader(cfg KafkaConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1e3,
		MaxBytes: 10e6,
		MaxWait:  100 * time.Millisecond,
	})
}

// Run blocks until ctx is canceled or every reader has failed.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	c.logger.Info("kafka consumer starting",
		"topic", c.cfg.Topic, "group_id", c.cfg.GroupID, "brokers", c.cfg.Brokers, "workers", c.cfg.Workers)

	var wg sync.WaitGroup
	errs := make([]error, c.cfg.Workers)
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.consume(ctx, c.newReader(), i)
		}(i)
	}
	wg.Wait()

	c.logger.Info("kafka consumer stopped")
	return errors.Join(errs...)
}

func (c *KafkaConsumer) consume(ctx context.Context, r messageReader, worker int) error {
	defer func() {
		if err := r.Close(); err != nil {
			c.logger.Warn("closing kafka reader", "worker", worker, "error", err)
		}
	}()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka worker %d: fetching message: %w", worker, err)
		}

		c.processor.Process(ctx, m.Value)

		if err := r.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("kafka worker %d: committing offset %d: %w", worker, m.Offset, err)
		}
	}
}

// messageWriter is the subset of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes notification requests to a topic.
type KafkaPublisher struct {
	w messageWriter
}

// NewKafkaPublisher returns a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 5 * time.Millisecond,
	}}
}

// Publish writes req keyed by recipient.
func (p *KafkaPublisher) Publish(ctx context.Context, req notification.Request) error {
	data, err := Encode(req)
	if err != nil {
		return fmt.Errorf("encoding notification request: %w", err)
	}
	if err := p.w.WriteMessages(ctx, kafka.Message{Key: []byte(req.Recipient), Value: data}); err != nil {
		return fmt.Errorf("publishing to kafka: %w", err)
	}
	metrics.StreamPublished.WithLabelValues("kafka").Inc()
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
