// Package cli is the shared start-up of the command-line tools: settings
// from the environment, the zap logger and the tracer provider.
package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gw2-resim/internal/config"
	"gw2-resim/internal/logging"
	"gw2-resim/internal/telemetry"
)

// Env is what every command needs before it loads its configuration.
type Env struct {
	Settings config.Settings
	Logger   *zap.Logger

	shutdown func(context.Context) error
}

// Start reads the settings and installs logging and tracing for service.
func Start(ctx context.Context, service string) (*Env, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings.LogLevel, settings.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	shutdown, err := telemetry.Setup(ctx, service, settings.OTELEndpoint)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	logger = logger.Named(service)
	if settings.OTELEndpoint != "" {
		logger.Debug("tracing enabled", zap.String("endpoint", settings.OTELEndpoint))
	}
	return &Env{Settings: settings, Logger: logger, shutdown: shutdown}, nil
}

// Close flushes pending spans and log entries.
func (e *Env) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.shutdown(ctx); err != nil {
		e.Logger.Warn("tracer shutdown failed", zap.Error(err))
	}
	_ = e.Logger.Sync()
}

// Concurrency returns flag when positive, else the environment setting.
func (e *Env) Concurrency(flag int) int {
	if flag > 0 {
		return flag
	}
	return e.Settings.Concurrency
}
