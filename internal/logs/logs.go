// Package logs builds the process-wide slog logger.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/config"
)

const serviceName = "casa-de-dosa-reservations"

// New builds a logger from config. Output goes to stdout, to a rotated file,
// or both. Production always logs JSON; development honours LOG_FORMAT and
// adds source locations.
func New(env string, cfg config.LogConfig) *slog.Logger {
	return slog.New(NewHandler(env, cfg, nil)).With(
		slog.String("service", serviceName),
		slog.String("env", env),
	)
}

// NewHandler is New without the base attributes. extra, when non-nil, is
// added to the writers; tests use it to capture output.
func NewHandler(env string, cfg config.LogConfig, extra io.Writer) slog.Handler {
	isDev := !strings.HasPrefix(strings.ToLower(env), "prod")

	var writers []io.Writer
	if cfg.Stdout || (cfg.File == "" && extra == nil) {
		writers = append(writers, os.Stdout)
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.FileMaxSizeMB,
			MaxBackups: cfg.FileMaxBackups,
			MaxAge:     cfg.FileMaxAgeDays,
			Compress:   cfg.FileCompress,
		})
	}
	if extra != nil {
		writers = append(writers, extra)
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: isDev,
	}
	if strings.EqualFold(cfg.Format, "json") || !isDev {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
