package script

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts one script line into a validated Descriptor.
// The grammar is:
//
//	ACTION [+|-] [">" dest] ["<" source]
//	dest   := 'field' ["::" 'term'] | "[" 'field' {"," 'field'} "]"
//	source := 'term' ["::" "[" list "]"] | "[" list "]"
//
// Quoted names use single (or double) quotes; bare integers are row
// indices; "~" is the collate spacer; "+"/"-" prefix a CALCULATE operand;
// 'value' + 'date' pairs operands for SELECT_NEWEST and SELECT_OLDEST.
func Parse(line string) (*Descriptor, error) {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return nil, &SyntaxError{Line: line, Detail: "empty statement"}
	}

	head, destPart, srcPart, err := splitStatement(raw)
	if err != nil {
		return nil, err
	}

	keyword, modifier, err := parseHead(raw, head)
	if err != nil {
		return nil, err
	}
	kind, err := ParseKind(keyword)
	if err != nil {
		return nil, err
	}

	var dest destClause
	if destPart != "" {
		dest, err = parseDest(raw, destPart)
		if err != nil {
			return nil, err
		}
	}

	var src srcClause
	if srcPart != "" {
		src, err = parseSource(raw, srcPart)
		if err != nil {
			return nil, err
		}
	}

	d := &Descriptor{Kind: kind, Modifier: modifier, Raw: raw}
	if err := bind(d, dest, src); err != nil {
		return nil, err
	}
	return d, nil
}

// ParseAll parses an ordered sequence of script lines, skipping blank lines
// and '#' comments. Ordering is preserved as list order.
func ParseAll(lines []string) ([]*Descriptor, error) {
	var out []*Descriptor
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		d, err := Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// --- statement splitting ---

// splitStatement cuts the line at the top-level ">" and "<" delimiters,
// ignoring any inside quotes.
func splitStatement(raw string) (head, dest, src string, err error) {
	gt, lt := -1, -1
	inQuote := rune(0)
	for i, r := range raw {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			}
		case r == '\'' || r == '"':
			inQuote = r
		case r == '>' && gt == -1:
			gt = i
		case r == '<' && lt == -1:
			lt = i
		case (r == '>' && gt != -1) || (r == '<' && lt != -1):
			return "", "", "", &SyntaxError{Line: raw, Detail: "duplicate delimiter"}
		}
	}
	if inQuote != 0 {
		return "", "", "", &SyntaxError{Line: raw, Detail: "unterminated quote"}
	}
	if gt != -1 && lt != -1 && lt < gt {
		return "", "", "", &SyntaxError{Line: raw, Detail: "'<' before '>'"}
	}
	switch {
	case gt == -1 && lt == -1:
		return strings.TrimSpace(raw), "", "", nil
	case gt == -1:
		return strings.TrimSpace(raw[:lt]), "", strings.TrimSpace(raw[lt+1:]), nil
	case lt == -1:
		return strings.TrimSpace(raw[:gt]), strings.TrimSpace(raw[gt+1:]), "", nil
	default:
		return strings.TrimSpace(raw[:gt]), strings.TrimSpace(raw[gt+1 : lt]), strings.TrimSpace(raw[lt+1:]), nil
	}
}

func parseHead(raw, head string) (string, Modifier, error) {
	parts := strings.Fields(head)
	switch len(parts) {
	case 0:
		return "", ModNone, &SyntaxError{Line: raw, Detail: "missing action keyword"}
	case 1:
		return parts[0], ModNone, nil
	case 2:
		switch parts[1] {
		case "+":
			return parts[0], ModAccumulate, nil
		case "-":
			return parts[0], ModAssign, nil
		}
		return "", ModNone, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected token %q after action", parts[1])}
	default:
		return "", ModNone, &SyntaxError{Line: raw, Detail: "unexpected tokens after action modifier"}
	}
}

// --- clause parsing ---

type destClause struct {
	fields []string
	term   string
}

func parseDest(raw, s string) (destClause, error) {
	if strings.HasPrefix(s, "[") {
		items, err := parseList(raw, s)
		if err != nil {
			return destClause{}, err
		}
		var fields []string
		for _, it := range items {
			if it.kind != itemQuoted {
				return destClause{}, &SyntaxError{Line: raw, Detail: "destination list must contain quoted field names"}
			}
			fields = append(fields, it.text)
		}
		return destClause{fields: fields}, nil
	}

	field, rest, err := parseQuoted(raw, s)
	if err != nil {
		return destClause{}, err
	}
	clause := destClause{fields: []string{field}}
	if rest == "" {
		return clause, nil
	}
	if !strings.HasPrefix(rest, "::") {
		return destClause{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after destination field", rest)}
	}
	term, tail, err := parseQuoted(raw, strings.TrimSpace(rest[2:]))
	if err != nil {
		return destClause{}, err
	}
	if tail != "" {
		return destClause{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after destination term", tail)}
	}
	clause.term = term
	return clause, nil
}

type srcClause struct {
	term     string // leading quoted term ('field' for CATEGORISE, separator for UNITE/SEPARATE)
	hasTerm  bool
	items    []item // bracketed list (either the :: list or the direct list)
	hasItems bool
}

func parseSource(raw, s string) (srcClause, error) {
	if strings.HasPrefix(s, "[") {
		items, err := parseList(raw, s)
		if err != nil {
			return srcClause{}, err
		}
		return srcClause{items: items, hasItems: true}, nil
	}

	term, rest, err := parseQuoted(raw, s)
	if err != nil {
		return srcClause{}, err
	}
	clause := srcClause{term: term, hasTerm: true}
	if rest == "" {
		return clause, nil
	}
	if !strings.HasPrefix(rest, "::") {
		return srcClause{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after source term", rest)}
	}
	items, err := parseList(raw, strings.TrimSpace(rest[2:]))
	if err != nil {
		return srcClause{}, err
	}
	clause.items = items
	clause.hasItems = true
	return clause, nil
}

// --- list items ---

type itemKind int

const (
	itemQuoted itemKind = iota
	itemNumber
	itemSpacer
	itemSigned
	itemPair
)

type item struct {
	kind itemKind
	text string
	num  float64
	sign int
	pair Pair
}

// parseList parses a bracketed, comma-separated operand list.
func parseList(raw, s string) ([]item, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, &SyntaxError{Line: raw, Detail: "expected bracketed list"}
	}
	body := s[1 : len(s)-1]
	parts, err := splitTopLevel(raw, body)
	if err != nil {
		return nil, err
	}
	items := make([]item, 0, len(parts))
	for _, part := range parts {
		it, err := parseItem(raw, part)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// splitTopLevel splits on commas outside quotes.
func splitTopLevel(raw, body string) ([]string, error) {
	var parts []string
	var cur strings.Builder
	inQuote := rune(0)
	for _, r := range body {
		switch {
		case inQuote != 0:
			cur.WriteRune(r)
			if r == inQuote {
				inQuote = 0
			}
		case r == '\'' || r == '"':
			inQuote = r
			cur.WriteRune(r)
		case r == ',':
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote != 0 {
		return nil, &SyntaxError{Line: raw, Detail: "unterminated quote in list"}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		parts = append(parts, s)
	} else if len(parts) > 0 {
		return nil, &SyntaxError{Line: raw, Detail: "trailing comma in list"}
	}
	return parts, nil
}

func parseItem(raw, s string) (item, error) {
	if s == Spacer {
		return item{kind: itemSpacer}, nil
	}

	// Signed operand: "+ 'field'" / "- 'field'" / "- 3".
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		sign := 1
		if s[0] == '-' {
			sign = -1
		}
		rest := strings.TrimSpace(s[1:])
		if rest == "" {
			return item{}, &SyntaxError{Line: raw, Detail: "dangling sign in list"}
		}
		if rest[0] == '\'' || rest[0] == '"' {
			field, tail, err := parseQuoted(raw, rest)
			if err != nil {
				return item{}, err
			}
			if tail != "" {
				return item{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after signed field", tail)}
			}
			return item{kind: itemSigned, text: field, sign: sign}, nil
		}
		n, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return item{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("invalid list item %q", s)}
		}
		return item{kind: itemNumber, num: float64(sign) * n}, nil
	}

	// Quoted: plain term, or a 'value' + 'date' pair.
	if s[0] == '\'' || s[0] == '"' {
		first, rest, err := parseQuoted(raw, s)
		if err != nil {
			return item{}, err
		}
		if rest == "" {
			return item{kind: itemQuoted, text: first}, nil
		}
		if !strings.HasPrefix(rest, "+") {
			return item{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after %q", rest, first)}
		}
		second, tail, err := parseQuoted(raw, strings.TrimSpace(rest[1:]))
		if err != nil {
			return item{}, err
		}
		if tail != "" {
			return item{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("unexpected %q after pair", tail)}
		}
		return item{kind: itemPair, pair: Pair{Value: first, Date: second}}, nil
	}

	// Bare number: a row index or numeric literal.
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return item{}, &SyntaxError{Line: raw, Detail: fmt.Sprintf("invalid list item %q", s)}
	}
	return item{kind: itemNumber, num: n}, nil
}

// parseQuoted reads a leading quoted string, returning its content and the
// trimmed remainder.
func parseQuoted(raw, s string) (string, string, error) {
	if s == "" {
		return "", "", &SyntaxError{Line: raw, Detail: "expected quoted name"}
	}
	quote := s[0]
	if quote != '\'' && quote != '"' {
		return "", "", &SyntaxError{Line: raw, Detail: fmt.Sprintf("expected quoted name at %q", s)}
	}
	end := strings.IndexByte(s[1:], quote)
	if end == -1 {
		return "", "", &SyntaxError{Line: raw, Detail: "unterminated quote"}
	}
	return s[1 : 1+end], strings.TrimSpace(s[2+end:]), nil
}
