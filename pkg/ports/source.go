package ports

import (
	"context"

	"github.com/openprobity/crosswalk/pkg/tabular"
)

// SourceData is what a DataSource yields: the parsed table, its column
// names in file order, and the content checksum of the table as consumed.
type SourceData struct {
	Table    *tabular.Table
	Columns  []string
	Checksum string
}

// DataSource reads a tabular byte stream into an in-memory table.
// Mimetype negotiation and file handling live behind implementations; the
// engine only consumes the resulting SourceData.
type DataSource interface {
	Read(ctx context.Context, path string) (*SourceData, error)
}
