package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vk/routecost/internal/config"
	"github.com/vk/routecost/internal/ctxlog"
	"github.com/vk/routecost/internal/report"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
	runID  string
}

// NewApp is the constructor for the main application. Reports are written
// to outW and logs to logW. Every App gets its own logger tagged with a run
// id.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader) *App {
	runID := uuid.New().String()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW).With("run_id", runID)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		loader: loader,
		runID:  runID,
	}
}

// RunID returns the id attached to every log line of this App.
func (a *App) RunID() string {
	return a.runID
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

func (a *App) format() report.Format {
	f, err := report.ParseFormat(a.config.Format)
	if err != nil {
		return report.FormatTable
	}
	return f
}
