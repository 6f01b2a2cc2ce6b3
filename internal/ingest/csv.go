package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openprobity/crosswalk/pkg/ports"
	"github.com/openprobity/crosswalk/pkg/probity"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// CSVSource implements ports.DataSource for comma-separated files.
// Cells are read as raw strings; empty cells become nulls. Type coercion
// happens later, against the destination schema.
type CSVSource struct {
	Comma rune
}

type Option func(*CSVSource)

// WithComma sets the field delimiter (e.g. '\t' or ';').
func WithComma(comma rune) Option {
	return func(s *CSVSource) { s.Comma = comma }
}

// NewCSVSource creates a CSV data source. The default delimiter is a comma.
func NewCSVSource(opts ...Option) *CSVSource {
	s := &CSVSource{Comma: ','}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read parses the file at path into a table. The first record is the
// header; header names must be unique and non-blank.
func (s *CSVSource) Read(ctx context.Context, path string) (*ports.SourceData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	return s.read(ctx, f)
}

func (s *CSVSource) read(ctx context.Context, r io.Reader) (*ports.SourceData, error) {
	cr := csv.NewReader(r)
	cr.Comma = s.Comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("source is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	seen := make(map[string]struct{}, len(header))
	columns := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("header column %d is blank", i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate header column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	cells := make([][]any, len(columns))
	rows := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rows+2, err)
		}

		for i := range columns {
			var v any
			if i < len(record) && record[i] != "" {
				v = record[i]
			}
			cells[i] = append(cells[i], v)
		}
		rows++
	}

	cols := make([]*tabular.Column, len(columns))
	for i, name := range columns {
		if cells[i] == nil {
			cells[i] = make([]any, 0)
		}
		cols[i] = &tabular.Column{Name: name, Cells: cells[i]}
	}

	table, err := tabular.FromColumns(cols)
	if err != nil {
		return nil, err
	}

	checksum, err := probity.Checksum(table)
	if err != nil {
		return nil, fmt.Errorf("failed to checksum source: %w", err)
	}

	return &ports.SourceData{
		Table:    table,
		Columns:  columns,
		Checksum: checksum,
	}, nil
}
