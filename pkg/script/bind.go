package script

import (
	"fmt"
	"math"
)

// bind populates the descriptor's operand slots from the parsed clauses,
// enforcing each kind's fixed arity. Any mismatch is an ArityError; data is
// never consulted.
func bind(d *Descriptor, dest destClause, src srcClause) error {
	if d.Modifier != ModNone && d.Kind != KindCategorise {
		return &ArityError{Kind: d.Kind, Detail: "action modifier is only valid for CATEGORISE"}
	}

	switch d.Kind {
	case KindNew:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		value, err := singleLiteral(d.Kind, src)
		if err != nil {
			return err
		}
		d.Value = value

	case KindRename:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		fields, err := fieldList(d.Kind, src, 1, 1)
		if err != nil {
			return err
		}
		d.SourceFields = fields

	case KindSelect:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		fields, err := fieldList(d.Kind, src, 1, math.MaxInt)
		if err != nil {
			return err
		}
		d.SourceFields = fields

	case KindSelectNewest, KindSelectOldest:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		pairs, err := pairList(d.Kind, src)
		if err != nil {
			return err
		}
		d.Pairs = pairs

	case KindCategorise:
		if err := wantDest(d.Kind, dest, 1, true); err != nil {
			return err
		}
		d.Dest = dest.fields
		d.DestTerm = dest.term
		if !src.hasTerm {
			return &ArityError{Kind: d.Kind, Detail: "requires a source field term ('field'::['terms'])"}
		}
		if !src.hasItems || len(src.items) == 0 {
			return &ArityError{Kind: d.Kind, Detail: "requires at least one literal term"}
		}
		d.SourceFields = []string{src.term}
		for _, it := range src.items {
			if it.kind != itemQuoted {
				return &ArityError{Kind: d.Kind, Detail: "literal terms must be quoted strings"}
			}
			d.Terms = append(d.Terms, it.text)
		}

	case KindCollate:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		if !src.hasItems || len(src.items) == 0 {
			return &ArityError{Kind: d.Kind, Detail: "requires at least one source field"}
		}
		sawField := false
		for _, it := range src.items {
			switch it.kind {
			case itemQuoted:
				sawField = true
				d.SourceFields = append(d.SourceFields, it.text)
			case itemSpacer:
				d.SourceFields = append(d.SourceFields, Spacer)
			default:
				return &ArityError{Kind: d.Kind, Detail: "source list accepts only field names and '~' spacers"}
			}
		}
		if !sawField {
			return &ArityError{Kind: d.Kind, Detail: "requires at least one non-spacer source field"}
		}

	case KindPivotLonger:
		if len(dest.fields) != 2 || dest.term != "" {
			return &ArityError{Kind: d.Kind, Detail: "requires exactly two destination fields (name, value)"}
		}
		d.Dest = dest.fields
		fields, err := fieldList(d.Kind, src, 1, math.MaxInt)
		if err != nil {
			return err
		}
		d.SourceFields = fields

	case KindPivotCategories:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		rows, err := rowList(d.Kind, src)
		if err != nil {
			return err
		}
		d.Rows = rows

	case KindDeleteRows:
		if len(dest.fields) != 0 {
			return &ArityError{Kind: d.Kind, Detail: "takes no destination"}
		}
		rows, err := rowList(d.Kind, src)
		if err != nil {
			return err
		}
		d.Rows = rows

	case KindDeblank, KindDedupe:
		if len(dest.fields) != 0 || src.hasTerm || src.hasItems {
			return &ArityError{Kind: d.Kind, Detail: "takes no operands"}
		}

	case KindUnite:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		sep, fields, err := separatorFields(d.Kind, src, 1, math.MaxInt)
		if err != nil {
			return err
		}
		d.Separator = sep
		d.SourceFields = fields

	case KindSeparate:
		if len(dest.fields) < 1 || dest.term != "" {
			return &ArityError{Kind: d.Kind, Detail: "requires at least one destination field"}
		}
		d.Dest = dest.fields
		sep, fields, err := separatorFields(d.Kind, src, 1, 1)
		if err != nil {
			return err
		}
		d.Separator = sep
		d.SourceFields = fields

	case KindCalculate:
		if err := wantDest(d.Kind, dest, 1, false); err != nil {
			return err
		}
		d.Dest = dest.fields
		if !src.hasItems || len(src.items) == 0 {
			return &ArityError{Kind: d.Kind, Detail: "requires at least one signed source field"}
		}
		for _, it := range src.items {
			if it.kind != itemSigned {
				return &ArityError{Kind: d.Kind, Detail: "every operand needs a '+' or '-' sign"}
			}
			d.Calc = append(d.Calc, SignedField{Field: it.text, Sign: it.sign})
		}

	default:
		return &UnknownActionError{Action: string(d.Kind)}
	}
	return nil
}

func wantDest(kind Kind, dest destClause, n int, term bool) error {
	if len(dest.fields) != n {
		return &ArityError{Kind: kind, Detail: fmt.Sprintf("requires exactly %d destination field(s), got %d", n, len(dest.fields))}
	}
	if term && dest.term == "" {
		return &ArityError{Kind: kind, Detail: "requires a destination category term ('field'::'term')"}
	}
	if !term && dest.term != "" {
		return &ArityError{Kind: kind, Detail: "does not take a destination term"}
	}
	return nil
}

func singleLiteral(kind Kind, src srcClause) (any, error) {
	if src.hasTerm && !src.hasItems {
		return src.term, nil
	}
	if !src.hasItems || len(src.items) != 1 {
		return nil, &ArityError{Kind: kind, Detail: "requires exactly one literal value"}
	}
	switch it := src.items[0]; it.kind {
	case itemQuoted:
		return it.text, nil
	case itemNumber:
		return it.num, nil
	default:
		return nil, &ArityError{Kind: kind, Detail: "literal value must be a quoted string or number"}
	}
}

func fieldList(kind Kind, src srcClause, min, max int) ([]string, error) {
	if src.hasTerm && !src.hasItems {
		// Allow the single-field shorthand: ACTION > 'dest' < 'field'.
		src.items = []item{{kind: itemQuoted, text: src.term}}
		src.hasItems = true
		src.hasTerm = false
	}
	if src.hasTerm || !src.hasItems {
		return nil, &ArityError{Kind: kind, Detail: "requires a bracketed list of source fields"}
	}
	var fields []string
	for _, it := range src.items {
		if it.kind != itemQuoted {
			return nil, &ArityError{Kind: kind, Detail: "source list accepts only quoted field names"}
		}
		fields = append(fields, it.text)
	}
	if len(fields) < min || len(fields) > max {
		return nil, &ArityError{Kind: kind, Detail: fmt.Sprintf("requires between %d and %d source fields, got %d", min, max, len(fields))}
	}
	return fields, nil
}

func pairList(kind Kind, src srcClause) ([]Pair, error) {
	if !src.hasItems || len(src.items) == 0 {
		return nil, &ArityError{Kind: kind, Detail: "requires at least one 'value' + 'date' pair"}
	}
	var pairs []Pair
	for _, it := range src.items {
		if it.kind != itemPair {
			return nil, &ArityError{Kind: kind, Detail: "every operand must be a 'value' + 'date' pair"}
		}
		pairs = append(pairs, it.pair)
	}
	return pairs, nil
}

func rowList(kind Kind, src srcClause) ([]int, error) {
	if !src.hasItems || len(src.items) == 0 {
		return nil, &ArityError{Kind: kind, Detail: "requires at least one row index"}
	}
	var rows []int
	for _, it := range src.items {
		if it.kind != itemNumber || it.num != math.Trunc(it.num) || it.num < 0 {
			return nil, &ArityError{Kind: kind, Detail: "row indices must be non-negative integers"}
		}
		rows = append(rows, int(it.num))
	}
	return rows, nil
}

func separatorFields(kind Kind, src srcClause, min, max int) (string, []string, error) {
	if !src.hasTerm {
		return "", nil, &ArityError{Kind: kind, Detail: "requires a separator term ('sep'::[fields])"}
	}
	if !src.hasItems || len(src.items) == 0 {
		return "", nil, &ArityError{Kind: kind, Detail: "requires a bracketed source field list"}
	}
	var fields []string
	for _, it := range src.items {
		if it.kind != itemQuoted {
			return "", nil, &ArityError{Kind: kind, Detail: "source list accepts only quoted field names"}
		}
		fields = append(fields, it.text)
	}
	if len(fields) < min || len(fields) > max {
		return "", nil, &ArityError{Kind: kind, Detail: fmt.Sprintf("requires between %d and %d source fields, got %d", min, max, len(fields))}
	}
	return src.term, fields, nil
}
