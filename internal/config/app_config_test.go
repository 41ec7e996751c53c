package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		want     slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &AppConfig{LogLevel: tt.logLevel}
			assert.Equal(t, tt.want, c.SlogLevel())
		})
	}
}

func TestAppConfig_Paths(t *testing.T) {
	c := &AppConfig{DataDir: "/data"}
	assert.Equal(t, "/data/logs", c.LogDir())
	assert.Equal(t, "/data/notifyd.db", c.DatabasePath())

	c.DBPath = "/var/lib/notifyd.db"
	assert.Equal(t, "/var/lib/notifyd.db", c.DatabasePath())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NOTIFYD_DATA_DIR", "/tmp/test-notifyd")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8990, cfg.Port)
	assert.Equal(t, "/tmp/test-notifyd", cfg.DataDir)
	assert.Equal(t, BrokerNone, cfg.EventBroker)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "notification-topic", cfg.KafkaTopic)
	assert.Equal(t, "notification-group", cfg.KafkaGroupID)
	assert.Equal(t, 30*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, 4, cfg.ConsumerWorkers)
	assert.Equal(t, 720*time.Hour, cfg.DeliveryLogRetention)
	assert.Equal(t, "notifyd", cfg.ServiceName)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("NOTIFYD_DATA_DIR", "/tmp/test-notifyd")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EVENT_BROKER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SMTP_TIMEOUT", "5s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BrokerKafka, cfg.EventBroker)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.SMTPTimeout)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NATS_SUBJECT=from-file\nPORT=7000\n"), 0o600))

	t.Setenv("NOTIFYD_DATA_DIR", dir)
	t.Setenv("PORT", "9100")
	// Registered so the value loaded from the file is cleaned up after the test.
	t.Setenv("NATS_SUBJECT", "")
	require.NoError(t, os.Unsetenv("NATS_SUBJECT"))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.NATSSubject)
	// Values already in the environment win over the file.
	assert.Equal(t, 9100, cfg.Port)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("NOTIFYD_DATA_DIR", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{EventBroker: BrokerNone, ConsumerWorkers: 1, SMTPTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "nats", mutate: func(c *AppConfig) { c.EventBroker = BrokerNATS }},
		{name: "unknown broker", mutate: func(c *AppConfig) { c.EventBroker = "rabbit" }, wantErr: "EVENT_BROKER"},
		{name: "zero workers", mutate: func(c *AppConfig) { c.ConsumerWorkers = 0 }, wantErr: "CONSUMER_WORKERS"},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.SMTPTimeout = 0 }, wantErr: "SMTP_TIMEOUT"},
		{name: "negative retention", mutate: func(c *AppConfig) { c.DeliveryLogRetention = -time.Hour }, wantErr: "DELIVERY_LOG_RETENTION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
