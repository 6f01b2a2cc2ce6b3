package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openprobity/crosswalk/pkg/schema"
)

// Citation is the bibliographic block stamped onto a transform record at
// save time.
type Citation struct {
	Author  string `json:"author,omitempty" mapstructure:"author"`
	Title   string `json:"title,omitempty" mapstructure:"title"`
	Year    int    `json:"year,omitempty" mapstructure:"year"`
	License string `json:"license,omitempty" mapstructure:"license"`
	URL     string `json:"url,omitempty" mapstructure:"url"`
	DOI     string `json:"doi,omitempty" mapstructure:"doi"`
}

// Transform is the audit record of one completed crosswalk execution: the
// crosswalk that ran, the checksum of the source as consumed, and the
// checksum of the destination as produced. Immutable once created; it is
// the only entity intended for long-term retention alongside the crosswalk
// and the source's own checksum.
type Transform struct {
	ID                  uuid.UUID        `json:"id"`
	Name                string           `json:"name"`
	Crosswalk           *Crosswalk       `json:"crosswalk"`
	SourceChecksum      string           `json:"source_checksum"`
	DestinationChecksum string           `json:"destination_checksum"`
	Citation            Citation         `json:"citation,omitempty"`
	Created             time.Time        `json:"created"`
	Version             []schema.Version `json:"version,omitempty"`
}

// NewTransform captures the result of a completed execution.
func NewTransform(cw *Crosswalk, sourceChecksum, destinationChecksum string) *Transform {
	return &Transform{
		ID:                  uuid.New(),
		Name:                cw.Name,
		Crosswalk:           cw,
		SourceChecksum:      sourceChecksum,
		DestinationChecksum: destinationChecksum,
		Created:             time.Now().UTC(),
	}
}

// Cite attaches the citation block and records the bookkeeping event in the
// version history.
func (t *Transform) Cite(c Citation) {
	t.Citation = c
	t.Version = append(t.Version, schema.Version{
		Description: fmt.Sprintf("citation recorded for %q", c.Title),
		Updated:     time.Now().UTC().Format(time.RFC3339),
	})
}
