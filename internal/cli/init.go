// Package cli provides the initialization shared by cmd/posjournal,
// cmd/posjournal-worker and cmd/posctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"posjournal/internal/backend"
	"posjournal/internal/catalog"
	"posjournal/internal/config"
	"posjournal/internal/journal"
	applog "posjournal/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. An invalid level falls back to info.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	level, err := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{
		Level:     level,
		Component: component,
		Format:    cfg.LogFormat,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)
	if err != nil {
		logger.Warn("Falling back to info log level", "error", err)
	}
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if validate == nil {
		validate = (*config.Config).Validate
	}
	if err := validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// App is a journal service wired to its backend.
type App struct {
	Catalog *catalog.Provider
	Service *journal.Service
	Backend *backend.BackendResult
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Cleanup()
}

// Bootstrap loads the catalog, opens the configured backend and builds the
// journal service. withEvents false skips the AMQP publisher.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *applog.Logger, withEvents bool) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.InfoContext(ctx, "Catalog loaded", "items", cat.Len(), "file", cfg.CatalogFile)

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !withEvents {
		bcfg.AMQPURL = ""
	}

	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	return &App{
		Catalog: cat,
		Service: journal.NewService(cat, res.Store, res.Publisher),
		Backend: res,
	}, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
