// Package runtime drives the transform pipeline: ordered action execution
// against a working copy of the source table, the post-execution coercion
// and validation pass, and checksum capture for the transform record.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/observability"
	"github.com/openprobity/crosswalk/pkg/probity"
	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Executor applies a crosswalk's ordered actions to an in-memory table.
// Actions within one run are strictly sequential; independent runs may
// share one Executor, which holds no per-run mutable state.
type Executor struct {
	registry *actions.Registry
	cfg      ExecutionConfig
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithRegistry replaces the default action registry.
func WithRegistry(r *actions.Registry) Option {
	return func(e *Executor) { e.registry = r }
}

// WithConfig sets the execution configuration.
func WithConfig(cfg ExecutionConfig) Option {
	return func(e *Executor) { e.cfg = cfg }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) { e.logger = logger }
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg.normalize()
	if e.registry == nil {
		e.registry = actions.NewRegistry()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return e
}

// Result is the outcome of one completed run: the destination-conformant
// table, the immutable transform record, and the accumulated coercion
// warnings.
type Result struct {
	Table     *tabular.Table
	Transform *domain.Transform
	Warnings  []actions.Warning
}

// Run executes the crosswalk against the source table. The source is never
// mutated. Cancellation is coarse: the context is checked between pipeline
// steps, not inside individual actions.
func (e *Executor) Run(ctx context.Context, cw *domain.Crosswalk, source *tabular.Table) (*Result, error) {
	started := time.Now()
	result, err := e.run(ctx, cw, source)
	if err != nil {
		e.metrics.ObserveTransform("failed", time.Since(started))
		return nil, err
	}
	e.metrics.ObserveTransform("completed", time.Since(started))
	e.metrics.ObserveWarnings(len(result.Warnings))
	return result, nil
}

func (e *Executor) run(ctx context.Context, cw *domain.Crosswalk, source *tabular.Table) (*Result, error) {
	if err := cw.Check(); err != nil {
		return nil, err
	}
	descriptors, err := actions.CheckCategories(cw.Actions, e.cfg.CategoryPolicy)
	if err != nil {
		return nil, err
	}

	sourceChecksum, err := probity.Checksum(source)
	if err != nil {
		return nil, err
	}

	working := source.Clone()
	var warnings []actions.Warning

	for i, d := range descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d = e.resolveModifier(cw, d)

		action, err := e.registry.Get(d.Kind)
		if err != nil {
			return nil, err
		}
		if err := action.Validate(working, d); err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}

		var stepWarnings []actions.Warning
		working, stepWarnings, err = e.apply(action, working, d)
		if err != nil {
			return nil, fmt.Errorf("action %d (%s): %w", i+1, d.Kind, err)
		}
		warnings = append(warnings, stepWarnings...)
		e.metrics.ObserveAction(string(d.Kind))
		e.logger.Debug("action applied", "action", d.Kind, "step", i+1,
			"rows", working.Len(), "columns", working.Width())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	coercionWarnings, err := e.conform(working, cw.DestinationSchema)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, coercionWarnings...)

	destinationChecksum, err := probity.Checksum(working)
	if err != nil {
		return nil, err
	}

	e.logger.Info("transform complete", "crosswalk", cw.Name,
		"rows", working.Len(), "warnings", len(warnings))
	return &Result{
		Table:     working,
		Transform: domain.NewTransform(cw, sourceChecksum, destinationChecksum),
		Warnings:  warnings,
	}, nil
}

// Validate replays the crosswalk from the source and asserts the produced
// destination checksum equals the recorded one. This is the system's core
// correctness guarantee; a mismatch is reported, never swallowed.
func (e *Executor) Validate(ctx context.Context, tr *domain.Transform, source *tabular.Table) error {
	result, err := e.Run(ctx, tr.Crosswalk, source)
	if err != nil {
		return err
	}
	if err := probity.Compare(tr.SourceChecksum, result.Transform.SourceChecksum); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	return probity.Compare(tr.DestinationChecksum, result.Transform.DestinationChecksum)
}

// resolveModifier fixes CATEGORISE sub-semantics when the script left them
// implicit: an array-typed destination field accumulates, anything else is
// a singleton assignment. The stored descriptor is never mutated.
func (e *Executor) resolveModifier(cw *domain.Crosswalk, d *script.Descriptor) *script.Descriptor {
	if d.Kind != script.KindCategorise || d.Modifier != script.ModNone {
		return d
	}
	resolved := *d
	resolved.Modifier = script.ModAssign
	if f, err := cw.DestinationSchema.Field(d.DestField()); err == nil && f.Type == schema.TypeArray {
		resolved.Modifier = script.ModAccumulate
	}
	return &resolved
}

// conform cuts the working table down to the destination schema and applies
// the coercion and validation pass. Cells that fail coercion become null
// with a warning; required-field gaps and enumeration violations are fatal.
func (e *Executor) conform(t *tabular.Table, dest *schema.Schema) ([]actions.Warning, error) {
	var warnings []actions.Warning

	for i := range dest.Fields {
		f := &dest.Fields[i]
		if !t.HasColumn(f.Name) {
			if f.Constraints.Required {
				return nil, &schema.ValidationError{Field: f.Name, Row: -1,
					Reason: "required field was not produced by the crosswalk"}
			}
			if err := t.AddColumn(f.Name, make([]any, t.Len())); err != nil {
				return nil, err
			}
		}
		col, err := t.Column(f.Name)
		if err != nil {
			return nil, err
		}

		changed := 0
		for row, v := range col.Cells {
			if v == nil && f.Constraints.Default != nil {
				v = f.Constraints.Default
			}
			coerced, didChange, cerr := schema.Coerce(v, f)
			if cerr != nil {
				if f.Constraints.Required {
					return nil, &schema.ValidationError{Field: f.Name, Row: row, Value: v,
						Reason: fmt.Sprintf("required field rejected value: %v", cerr)}
				}
				warnings = append(warnings, actions.Warning{
					Field: f.Name, Row: row, Message: cerr.Error(),
				})
				col.Cells[row] = nil
				continue
			}
			col.Cells[row] = coerced
			if didChange {
				changed++
			}
		}
		if changed > 0 {
			warnings = append(warnings, actions.Warning{
				Field: f.Name, Row: -1,
				Message: fmt.Sprintf("coerced %d value(s) to %s", changed, f.Type),
			})
		}

		if err := schema.ValidateColumn(col.Cells, f); err != nil {
			return nil, err
		}
	}

	return warnings, t.Reorder(dest.FieldNames())
}
