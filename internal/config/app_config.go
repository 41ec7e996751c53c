// Package config loads notifyd's process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Event broker selectors.
const (
	BrokerNone  = "none"
	BrokerKafka = "kafka"
	BrokerNATS  = "nats"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8990.
	Port int `envconfig:"PORT" default:"8990"`

	// DataDir is the root data directory. Defaults to ~/.notifyd.
	DataDir string `envconfig:"NOTIFYD_DATA_DIR"`

	// DBPath overrides the SQLite database location (<DataDir>/notifyd.db).
	DBPath string `envconfig:"NOTIFYD_DB_PATH"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// LogOutput is "file" (rotated <DataDir>/logs/system.log) or "stdout".
	LogOutput string `envconfig:"LOG_OUTPUT" default:"file"`

	// TemplatesDir is searched for templates before the built-in set.
	TemplatesDir string `envconfig:"NOTIFYD_TEMPLATES_DIR"`

	// TransportSeedFile is a YAML file loaded into an empty transport store at startup.
	TransportSeedFile string `envconfig:"NOTIFYD_TRANSPORT_SEED_FILE"`

	// SMTPTimeout bounds a single dial-and-send.
	SMTPTimeout time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`

	// EventBroker selects the asynchronous ingress: none, kafka or nats.
	EventBroker string `envconfig:"EVENT_BROKER" default:"none"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"notification-topic"`
	KafkaGroupID string   `envconfig:"KAFKA_GROUP_ID" default:"notification-group"`

	NATSURL     string `envconfig:"NATS_URL" default:"nats://127.0.0.1:4222"`
	NATSSubject string `envconfig:"NATS_SUBJECT" default:"notification-topic"`
	NATSQueue   string `envconfig:"NATS_QUEUE" default:"notification-group"`

	// ConsumerWorkers bounds concurrent dispatches from the event stream.
	ConsumerWorkers int `envconfig:"CONSUMER_WORKERS" default:"4"`

	// EventBusWorkers is the number of in-process event bus workers.
	EventBusWorkers int `envconfig:"EVENTBUS_WORKERS" default:"3"`

	// DeliveryLogRetention is how long delivery log entries are kept. Zero keeps them forever.
	DeliveryLogRetention time.Duration `envconfig:"DELIVERY_LOG_RETENTION" default:"720h"`

	// DeliveryLogPurgeInterval is how often the retention job runs.
	DeliveryLogPurgeInterval time.Duration `envconfig:"DELIVERY_LOG_PURGE_INTERVAL" default:"1h"`

	// CORSAllowedOrigins lists origins allowed to call the HTTP API.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// OTLPEndpoint enables trace export over OTLP/gRPC when set.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// ServiceName is reported as the OpenTelemetry service.name.
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"notifyd"`
}

// Load reads AppConfig from environment variables using envconfig. When
// envFile exists its variables are loaded first without overriding the
// ones already set. DataDir defaults to ~/.notifyd if not set.
func Load(envFile string) (*AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".notifyd")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values envconfig cannot.
func (c *AppConfig) Validate() error {
	switch c.EventBroker {
	case BrokerNone, BrokerKafka, BrokerNATS:
	default:
		return fmt.Errorf("invalid EVENT_BROKER %q (use none, kafka or nats)", c.EventBroker)
	}
	if c.ConsumerWorkers <= 0 {
		return fmt.Errorf("CONSUMER_WORKERS must be positive, got %d", c.ConsumerWorkers)
	}
	if c.SMTPTimeout <= 0 {
		return fmt.Errorf("SMTP_TIMEOUT must be positive, got %s", c.SMTPTimeout)
	}
	if c.DeliveryLogRetention < 0 {
		return fmt.Errorf("DELIVERY_LOG_RETENTION must not be negative, got %s", c.DeliveryLogRetention)
	}
	return nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory.
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DatabasePath returns the SQLite database file path.
func (c *AppConfig) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "notifyd.db")
}
