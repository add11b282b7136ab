// Package logging provides category-scoped structured loggers shared by
// every other package, backed by zap.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu       sync.Mutex
	base     *zap.Logger
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggers  = make(map[string]*zap.SugaredLogger)
)

// Init (re)configures the package-wide logger. verbose enables debug-level
// output; subsequent Get calls return loggers built on this configuration.
func Init(verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return err
	}
	base = logger
	loggers = make(map[string]*zap.SugaredLogger)
	return nil
}

// Get returns the logger for category, tagged with a "category" field so
// log aggregation can filter by subsystem (catalog, search, installer,
// resolver, security). Init must be called first; Get falls back to a
// no-op logger if it wasn't.
func Get(category string) *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[category]; ok {
		return logger
	}
	if base == nil {
		base = zap.NewNop()
	}
	logger := base.With(zap.String("category", category)).Sugar()
	loggers[category] = logger
	return logger
}

// Sync flushes any buffered log entries; callers should defer it from
// main after calling Init.
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
}
