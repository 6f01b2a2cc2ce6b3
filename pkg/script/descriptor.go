// Package script parses one-line action scripts into structured action
// descriptors. Parsing is pure: no table data is touched, and all structural
// rules (grammar, known actions, per-action arity) are enforced here rather
// than at execution time.
package script

import (
	"fmt"
	"strings"
)

// Kind tags an action descriptor. The set is closed; execution dispatches
// over it exhaustively.
type Kind string

const (
	KindNew             Kind = "NEW"
	KindRename          Kind = "RENAME"
	KindSelect          Kind = "SELECT"
	KindSelectNewest    Kind = "SELECT_NEWEST"
	KindSelectOldest    Kind = "SELECT_OLDEST"
	KindCategorise      Kind = "CATEGORISE"
	KindCollate         Kind = "COLLATE"
	KindPivotLonger     Kind = "PIVOT_LONGER"
	KindPivotCategories Kind = "PIVOT_CATEGORIES"
	KindDeleteRows      Kind = "DELETE_ROWS"
	KindDeblank         Kind = "DEBLANK"
	KindDedupe          Kind = "DEDUPE"
	KindUnite           Kind = "UNITE"
	KindSeparate        Kind = "SEPARATE"
	KindCalculate       Kind = "CALCULATE"
)

// Kinds lists every action kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindNew, KindRename, KindSelect, KindSelectNewest, KindSelectOldest,
		KindCategorise, KindCollate, KindPivotLonger, KindPivotCategories,
		KindDeleteRows, KindDeblank, KindDedupe, KindUnite, KindSeparate,
		KindCalculate,
	}
}

// ParseKind validates an action keyword.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(s))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", &UnknownActionError{Action: s}
}

// Modifier selects CATEGORISE sub-semantics: ModAccumulate appends matched
// terms into an array destination, ModAssign writes a singleton value.
// ModNone defers the choice to the destination field's declared type.
type Modifier int

const (
	ModNone Modifier = iota
	ModAccumulate
	ModAssign
)

// Pair joins a value field with the date field that ranks it, for
// SELECT_NEWEST and SELECT_OLDEST.
type Pair struct {
	Value string
	Date  string
}

// SignedField is one CALCULATE operand: a numeric source field with its
// accumulation sign (+1 or -1).
type SignedField struct {
	Field string
	Sign  int
}

// Spacer is the COLLATE placeholder occupying one array position with null
// instead of consuming a source column.
const Spacer = "~"

// Descriptor is the structured form of one action script line. Only the
// operand slots the action's arity allows are populated; everything else is
// zero. Slot use per kind:
//
//	NEW                Dest, Value
//	RENAME, SELECT     Dest, SourceFields
//	SELECT_NEWEST/..   Dest, Pairs
//	CATEGORISE         Dest, DestTerm, SourceFields[0], Terms, Modifier
//	COLLATE            Dest, SourceFields (Spacer entries allowed)
//	PIVOT_LONGER       Dest (name, value), SourceFields
//	PIVOT_CATEGORIES   Dest, Rows
//	DELETE_ROWS        Rows
//	DEBLANK, DEDUPE    (none)
//	UNITE              Dest, Separator, SourceFields
//	SEPARATE           Dest (1..N), Separator, SourceFields[0]
//	CALCULATE          Dest, Calc
type Descriptor struct {
	Kind         Kind
	Modifier     Modifier
	Dest         []string
	DestTerm     string
	Value        any
	Separator    string
	SourceFields []string
	Terms        []string
	Pairs        []Pair
	Calc         []SignedField
	Rows         []int
	Raw          string
}

// DestField returns the primary destination field, or "" for actions with
// no destination.
func (d *Descriptor) DestField() string {
	if len(d.Dest) == 0 {
		return ""
	}
	return d.Dest[0]
}

// String re-renders the descriptor as a script line. Raw is preserved from
// parsing when available so persisted crosswalks round-trip byte-for-byte.
func (d *Descriptor) String() string {
	if d.Raw != "" {
		return d.Raw
	}
	return string(d.Kind)
}

// SyntaxError reports a malformed script line.
type SyntaxError struct {
	Line   string
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q: %s", e.Line, e.Detail)
}

// UnknownActionError reports an unrecognised action keyword.
type UnknownActionError struct {
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action: %s", e.Action)
}

// ArityError reports a structurally valid line whose operand counts do not
// match the action kind's declared arity.
type ArityError struct {
	Kind   Kind
	Detail string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}
