package actions

import (
	"fmt"
	"strings"

	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/script"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// Categorise maps literal source terms onto one destination category value.
// With ModAccumulate the bound term is appended into an array-typed
// destination cell (duplicates suppressed); with ModAssign the matched row's
// destination cell is set to the term. The executor resolves ModNone from
// the destination field's declared type before Apply runs.
type Categorise struct{}

func (a *Categorise) Kind() script.Kind { return script.KindCategorise }
func (a *Categorise) RowSafe() bool     { return true }

func (a *Categorise) Validate(t *tabular.Table, d *script.Descriptor) error {
	if d.Modifier == script.ModNone {
		return &ValidationError{Kind: a.Kind(), Detail: "categorise sub-semantics unresolved (no modifier and no destination field type)"}
	}
	return requireSourceFields(a.Kind(), t, d.SourceFields)
}

func (a *Categorise) Apply(t *tabular.Table, d *script.Descriptor) (*tabular.Table, []Warning, error) {
	src, err := t.Column(d.SourceFields[0])
	if err != nil {
		return nil, nil, err
	}
	terms := make(map[string]bool, len(d.Terms))
	for _, term := range d.Terms {
		terms[term] = true
	}

	dest := d.DestField()
	if !t.HasColumn(dest) {
		if err := t.AddColumn(dest, make([]any, t.Len())); err != nil {
			return nil, nil, err
		}
	}
	col, err := t.Column(dest)
	if err != nil {
		return nil, nil, err
	}

	for row, cell := range src.Cells {
		if tabular.IsBlank(cell) {
			continue
		}
		if !terms[strings.TrimSpace(schema.CanonicalText(cell))] {
			continue
		}
		if d.Modifier == script.ModAssign {
			col.Cells[row] = d.DestTerm
			continue
		}
		existing, _ := col.Cells[row].([]any)
		if !containsTerm(existing, d.DestTerm) {
			col.Cells[row] = append(existing, d.DestTerm)
		}
	}
	return t, nil, nil
}

func containsTerm(elems []any, term string) bool {
	for _, e := range elems {
		if s, ok := e.(string); ok && s == term {
			return true
		}
	}
	return false
}

// AmbiguousCategoryError is fatal: two CATEGORISE statements bind the same
// literal term from the same destination field to different category values.
type AmbiguousCategoryError struct {
	DestField string
	Term      string
	First     string
	Second    string
}

func (e *AmbiguousCategoryError) Error() string {
	return fmt.Sprintf("term %q is bound to both %q and %q for destination field %q",
		e.Term, e.First, e.Second, e.DestField)
}

// CategoryPolicy decides how a literal term bound to two different category
// values from two different source columns is resolved. Conflicts arising
// from the same source column always fail: those statements necessarily
// touch the same rows.
type CategoryPolicy string

const (
	PolicyStrict    CategoryPolicy = "strict"
	PolicyFirstWins CategoryPolicy = "first-wins"
	PolicyLastWins  CategoryPolicy = "last-wins"
)

// CheckCategories scans a descriptor sequence for conflicting CATEGORISE
// term bindings. Under PolicyStrict any conflict is an
// AmbiguousCategoryError; under first/last-wins, cross-column conflicts are
// resolved by dropping the losing statement's term and a rewritten sequence
// is returned. The input is never mutated.
func CheckCategories(descriptors []*script.Descriptor, policy CategoryPolicy) ([]*script.Descriptor, error) {
	type binding struct {
		index    int
		srcField string
		destTerm string
	}
	seen := make(map[string]binding) // destField + term -> first binding
	drop := make(map[int]map[string]bool)

	markDrop := func(idx int, term string) {
		if drop[idx] == nil {
			drop[idx] = make(map[string]bool)
		}
		drop[idx][term] = true
	}

	for i, d := range descriptors {
		if d.Kind != script.KindCategorise {
			continue
		}
		for _, term := range d.Terms {
			key := d.DestField() + "\x00" + term
			prev, ok := seen[key]
			if !ok {
				seen[key] = binding{index: i, srcField: d.SourceFields[0], destTerm: d.DestTerm}
				continue
			}
			if prev.destTerm == d.DestTerm {
				continue
			}
			conflict := &AmbiguousCategoryError{
				DestField: d.DestField(), Term: term,
				First: prev.destTerm, Second: d.DestTerm,
			}
			if policy == PolicyStrict || prev.srcField == d.SourceFields[0] {
				return nil, conflict
			}
			if policy == PolicyFirstWins {
				markDrop(i, term)
			} else {
				markDrop(prev.index, term)
				seen[key] = binding{index: i, srcField: d.SourceFields[0], destTerm: d.DestTerm}
			}
		}
	}

	if len(drop) == 0 {
		return descriptors, nil
	}
	out := make([]*script.Descriptor, len(descriptors))
	for i, d := range descriptors {
		if drop[i] == nil {
			out[i] = d
			continue
		}
		clone := *d
		clone.Terms = nil
		for _, term := range d.Terms {
			if !drop[i][term] {
				clone.Terms = append(clone.Terms, term)
			}
		}
		out[i] = &clone
	}
	return out, nil
}
