package cli

import (
	"fmt"
	"log/slog"

	"github.com/openprobity/crosswalk"
	"github.com/openprobity/crosswalk/internal/adapters/file"
	"github.com/openprobity/crosswalk/internal/adapters/redis"
	"github.com/openprobity/crosswalk/internal/ingest"
	"github.com/openprobity/crosswalk/internal/logging"
	"github.com/openprobity/crosswalk/pkg/observability"
	"github.com/openprobity/crosswalk/pkg/ports"
)

// createLogger configures the application logger. Debug output goes to
// stderr so it never mixes with rendered tables on stdout.
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// createStore builds the definition store named by the configuration.
func createStore(cfg StoreConfig) (ports.DefinitionStore, error) {
	switch cfg.Kind {
	case "", "file":
		return file.New(cfg.Path), nil
	case "redis":
		if cfg.Address == "" {
			return nil, fmt.Errorf("redis store requires an address")
		}
		return redis.New(cfg.Address, cfg.Password, cfg.DB), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q (expected file or redis)", cfg.Kind)
	}
}

// createEngine initializes a crosswalk engine with standard CLI conventions.
func createEngine(cfg Config, logger *slog.Logger, metrics *observability.Metrics) (*crosswalk.Engine, error) {
	store, err := createStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	comma := ','
	if cfg.Delimiter != "" {
		comma = []rune(cfg.Delimiter)[0]
	}

	opts := []crosswalk.Option{
		crosswalk.WithStore(store),
		crosswalk.WithDataSource(ingest.NewCSVSource(ingest.WithComma(comma))),
		crosswalk.WithLogger(logger),
		crosswalk.WithExecutionConfig(cfg.Execution),
	}
	if metrics != nil {
		opts = append(opts, crosswalk.WithMetrics(metrics))
	}

	return crosswalk.New(opts...), nil
}
