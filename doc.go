/*
Package crosswalk is a schema-driven engine for restructuring messy tabular
data into schema-conformant output, with a verifiable audit trail.

A crosswalk is an ordered, declarative sequence of actions binding a source
schema to a destination schema. Actions are written in a small text script
("RENAME > 'occupation' < 'JOB TITLE'") and parsed into descriptors; the
engine executes them against an in-memory column-oriented table, coerces and
validates the result against the destination schema, and records BLAKE2b
checksums of the source as consumed and the destination as produced.

# Concept

The transform is fully deterministic: the same crosswalk applied to the same
source always yields the same destination checksum. Anyone holding the
source file, the crosswalk, and the transform record can therefore replay
the run and verify the published output, without trusting the publisher.

# Key Features

  - Declarative action scripts: fifteen composable actions covering renames,
    selection by recency, categorisation, pivots, row filters, and arithmetic.
  - Structural checking: crosswalks are validated against both schemas before
    any data is touched.
  - Recoverable coercion: cell-level type failures become warnings and nulls
    unless the destination field is required.
  - Probity: checksum-based replay validation of any recorded transform.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/openprobity/crosswalk"
		"github.com/openprobity/crosswalk/pkg/domain"
		"github.com/openprobity/crosswalk/pkg/schema"
		"github.com/openprobity/crosswalk/pkg/tabular"
	)

	func main() {
		source := schema.New("raw", schema.Field{Name: "JOB TITLE", Type: schema.TypeString})
		dest := schema.New("tidy", schema.Field{Name: "occupation", Type: schema.TypeString})

		cw := domain.NewCrosswalk("tidy-jobs", source, dest)
		if err := cw.AppendScript("RENAME > 'occupation' < 'JOB TITLE'"); err != nil {
			log.Fatal(err)
		}

		table := tabular.New()
		table.AddColumn("JOB TITLE", []any{"analyst", "engineer"})

		eng := crosswalk.New()
		result, err := eng.Transform(context.Background(), cw, table)
		if err != nil {
			log.Fatal(err)
		}

		log.Println("destination checksum:", result.Transform.DestinationChecksum)
	}
*/
package crosswalk
