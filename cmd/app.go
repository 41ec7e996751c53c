package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shaharia-lab/notifyd/internal/build"
	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/eventbus"
	"github.com/shaharia-lab/notifyd/internal/logger"
	"github.com/shaharia-lab/notifyd/internal/notification"
	"github.com/shaharia-lab/notifyd/internal/render"
	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/storage"
	"github.com/shaharia-lab/notifyd/internal/strategy/email"
	"github.com/shaharia-lab/notifyd/internal/telemetry"
	"github.com/shaharia-lab/notifyd/internal/transport"
)

// app holds the wired dependency graph shared by the subcommands.
type app struct {
	cfg    *config.AppConfig
	logger *slog.Logger

	db             *sql.DB
	transportStore *storage.SQLiteTransportStore
	logStore       *storage.SQLiteNotificationStore
	bus            eventbus.EventBus

	delivery   service.DeliveryService
	transports service.TransportService

	closers []func() error
}

// newApp opens storage, seeds transports and builds the dispatch pipeline.
// Callers must call close.
func newApp(ctx context.Context, cfg *config.AppConfig, output string) (*app, error) {
	a := &app{cfg: cfg}
	if err := a.build(ctx, output); err != nil {
		// Release whatever was opened before the failure.
		if cerr := a.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		return nil, err
	}
	return a, nil
}

// build wires the graph into a. Resources acquired before a failure stay
// registered with onClose.
func (a *app) build(ctx context.Context, output string) error {
	cfg := a.cfg

	sysLogger, logCloser, err := logger.NewSystemLogger(output, cfg.LogDir(), cfg.SlogLevel())
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.logger = sysLogger
	a.onClose(logCloser.Close)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName, build.Version)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	a.onClose(func() error { return shutdownTracing(context.Background()) })

	db, fresh, err := storage.NewSQLiteDB(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	a.onClose(db.Close)
	a.transportStore = storage.NewSQLiteTransportStore(db)
	a.logStore = storage.NewSQLiteNotificationStore(db)

	seeded, err := storage.SeedTransports(ctx, a.transportStore, cfg.TransportSeedFile)
	if err != nil {
		return fmt.Errorf("seeding transports: %w", err)
	}
	if seeded > 0 {
		sysLogger.Info("seeded transport configurations", "count", seeded, "file", cfg.TransportSeedFile)
	}

	renderer, err := render.NewDefaultRenderer(cfg.TemplatesDir)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	factory := transport.NewSMTPFactory(cfg.SMTPTimeout)
	resolver := transport.NewResolver(a.transportStore)

	registry := notification.NewRegistry(
		email.New(resolver, factory, renderer, sysLogger),
	)
	dispatcher := notification.NewDispatcher(registry, sysLogger)

	a.bus = eventbus.New(cfg.EventBusWorkers, 0, sysLogger)
	a.bus.Subscribe(service.NewDeliveryRecorder(a.logStore, sysLogger).Handle)
	// The bus must drain before the database closes.
	a.onClose(func() error { a.bus.Close(); return nil })

	a.delivery = service.NewDeliveryService(dispatcher, a.logStore, a.bus, sysLogger)
	a.transports = service.NewTransportService(a.transportStore, factory, renderer, sysLogger)

	sysLogger.Info("notifyd initialized",
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("db_path", cfg.DatabasePath()),
		slog.Bool("fresh_db", fresh),
		slog.Any("types", registry.Types()),
	)
	return nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
