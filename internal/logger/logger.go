// Package logger holds the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

const name = "fintrack"

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger for the given environment. Production
// gets a sampled JSON encoder; everything else gets a human-readable console
// encoder with caller annotations.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
		}

		base, err := cfg.Build()
		if err != nil {
			// Never fail startup over logging.
			base = zap.NewNop()
		}

		sugar = base.Named(name).Sugar()
	})
}

// Get returns the global sugared logger, initializing a development logger if
// Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
