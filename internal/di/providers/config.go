// Package providers contains dependency injection providers for the Streakboard server.
package providers

import (
	"log/slog"
	"time"

	"github.com/samber/do/v2"

	"github.com/streakboard/streakboard-server/internal/config"
	"github.com/streakboard/streakboard-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Streakboard Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.App.DataDir,
		"timezone", cfg.App.Timezone,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// ProvideLocation provides the default timezone for day bucketing.
func ProvideLocation(i do.Injector) (*time.Location, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return cfg.App.Location()
}
