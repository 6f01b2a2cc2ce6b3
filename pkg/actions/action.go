// Package actions implements the closed registry of table-transform
// operations a crosswalk may invoke. Each action validates its descriptor
// against the current table state before any mutation, then applies its
// semantics to a working copy owned by the executor.
package actions

import (
	"fmt"
	"sync"

	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Warning records a recoverable per-cell data problem. The affected cell is
// nulled and execution continues; the executor escalates warnings on
// required destination fields to fatal schema validation errors.
type Warning struct {
	Action  script.Kind
	Field   string
	Row     int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: field %q row %d: %s", w.Action, w.Field, w.Row, w.Message)
}

// ValidationError is fatal: the descriptor is structurally invalid against
// the table state at its point in the sequence. Raised before any mutation.
type ValidationError struct {
	Kind   script.Kind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Action is one table-transform operation. Implementations receive the
// executor's working table and may mutate and return it, or return a
// replacement; either way the originally ingested table is never touched.
type Action interface {
	// Kind returns the descriptor tag this action serves.
	Kind() script.Kind
	// RowSafe reports whether the action can run independently per
	// row-partition. Cross-row actions need the merged table.
	RowSafe() bool
	// Validate checks the descriptor against the current table state.
	// A non-nil error is a fatal ValidationError; no mutation has occurred.
	Validate(t *tabular.Table, d *script.Descriptor) error
	// Apply executes the action. Per-cell data problems are returned as
	// warnings, never as errors.
	Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error)
}

// Registry maps action kinds to implementations.
type Registry struct {
	mu      sync.RWMutex
	actions map[script.Kind]Action
}

// NewRegistry creates a registry pre-loaded with every built-in action.
func NewRegistry() *Registry {
	r := &Registry{actions: make(map[script.Kind]Action)}
	for _, a := range []Action{
		&New{}, &Rename{}, &Select{},
		&SelectDate{Newest: true}, &SelectDate{Newest: false},
		&Categorise{}, &Collate{},
		&PivotLonger{}, &PivotCategories{},
		&DeleteRows{}, &Deblank{}, &Dedupe{},
		&Unite{}, &Separate{}, &Calculate{},
	} {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the action for its kind.
func (r *Registry) Register(a Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[a.Kind()] = a
}

// Get returns the action registered for a kind.
func (r *Registry) Get(kind script.Kind) (Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actions[kind]
	if !ok {
		return nil, fmt.Errorf("no action registered for %s", kind)
	}
	return a, nil
}

// --- shared validation helpers ---

func requireSourceFields(kind script.Kind, t *tabular.Table, fields []string) error {
	for _, f := range fields {
		if f == script.Spacer {
			continue
		}
		if !t.HasColumn(f) {
			return &ValidationError{Kind: kind, Detail: fmt.Sprintf("source field %q not present at this point in the sequence", f)}
		}
	}
	return nil
}

func requireNewColumn(kind script.Kind, t *tabular.Table, name string) error {
	if t.HasColumn(name) {
		return &ValidationError{Kind: kind, Detail: fmt.Sprintf("destination field %q already exists", name)}
	}
	return nil
}

func requireRows(kind script.Kind, t *tabular.Table, rows []int) error {
	for _, r := range rows {
		if r < 0 || r >= t.Len() {
			return &ValidationError{Kind: kind, Detail: fmt.Sprintf("row index %d out of range for table of %d rows", r, t.Len())}
		}
	}
	return nil
}
