package crosswalk

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/openprobity/crosswalk/internal/runtime"
	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/observability"
	"github.com/openprobity/crosswalk/pkg/ports"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Version is the library version, injected at build time for releases.
var Version = "dev"

// Engine is the high-level entry point for the crosswalk library. It wraps
// the internal runtime and provides a simplified API for consumers.
type Engine struct {
	store    ports.DefinitionStore
	source   ports.DataSource
	logger   *slog.Logger
	metrics  *observability.Metrics
	registry *actions.Registry
	cfg      runtime.ExecutionConfig
	cfgSet   bool
	executor *runtime.Executor
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore injects a definition store for saving and loading frozen
// schemas, crosswalks, and transform records.
func WithStore(store ports.DefinitionStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithDataSource injects a tabular data source reader.
func WithDataSource(source ports.DataSource) Option {
	return func(e *Engine) { e.source = source }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithRegistry replaces the default action registry.
func WithRegistry(r *actions.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithExecutionConfig sets the execution configuration (workers, partition
// size, category policy).
func WithExecutionConfig(cfg runtime.ExecutionConfig) Option {
	return func(e *Engine) {
		e.cfg = cfg
		e.cfgSet = true
	}
}

// New initializes a new crosswalk Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(e.logger),
		runtime.WithMetrics(e.metrics),
	}
	if e.registry != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithRegistry(e.registry))
	}
	if e.cfgSet {
		runtimeOpts = append(runtimeOpts, runtime.WithConfig(e.cfg))
	}
	e.executor = runtime.NewExecutor(runtimeOpts...)
	return e
}

// Result is the outcome of one completed transform: the
// destination-conformant table, the immutable transform record, and the
// accumulated coercion warnings.
type Result struct {
	Table     *tabular.Table
	Transform *domain.Transform
	Warnings  []actions.Warning
}

// Transform executes a crosswalk against an in-memory source table.
func (e *Engine) Transform(ctx context.Context, cw *domain.Crosswalk, source *tabular.Table) (*Result, error) {
	r, err := e.executor.Run(ctx, cw, source)
	if err != nil {
		return nil, err
	}
	return &Result{Table: r.Table, Transform: r.Transform, Warnings: r.Warnings}, nil
}

// TransformFile reads a source through the configured data source and
// executes the crosswalk against it.
func (e *Engine) TransformFile(ctx context.Context, cw *domain.Crosswalk, path string) (*Result, error) {
	if e.source == nil {
		return nil, fmt.Errorf("no data source configured")
	}
	src, err := e.source.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.Transform(ctx, cw, src.Table)
}

// Validate replays the transform's crosswalk from the given source and
// asserts the recorded checksums. A probity.MismatchError means the
// destination cannot have been produced from this source and crosswalk.
func (e *Engine) Validate(ctx context.Context, tr *domain.Transform, source *tabular.Table) error {
	return e.executor.Validate(ctx, tr, source)
}

// ValidateFile is Validate with the source read through the configured
// data source.
func (e *Engine) ValidateFile(ctx context.Context, tr *domain.Transform, path string) error {
	if e.source == nil {
		return fmt.Errorf("no data source configured")
	}
	src, err := e.source.Read(ctx, path)
	if err != nil {
		return err
	}
	return e.Validate(ctx, tr, src.Table)
}

// SaveTransform stamps the citation onto the transform record and persists
// it. Citation bookkeeping happens only here, at save time.
func (e *Engine) SaveTransform(ctx context.Context, tr *domain.Transform, citation domain.Citation) error {
	if e.store == nil {
		return fmt.Errorf("no definition store configured")
	}
	tr.Cite(citation)
	return e.store.SaveTransform(ctx, tr)
}

// Store returns the configured definition store, or nil.
func (e *Engine) Store() ports.DefinitionStore { return e.store }
