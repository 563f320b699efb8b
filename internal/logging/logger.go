package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/hostadmin/internal/config"
	"github.com/edvin/hostadmin/internal/platform"
)

// NewLogger creates a structured zerolog.Logger for one interactive
// invocation. Each run carries a fresh run_id so overlapping operator
// sessions can be told apart in the logs.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stderr).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	ctx = ctx.Str("run_id", platform.NewID())

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}
