package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openprobity/crosswalk"
	"github.com/openprobity/crosswalk/internal/presentation/tui"
	"github.com/openprobity/crosswalk/pkg/domain"
	"github.com/openprobity/crosswalk/pkg/schema"
	"github.com/openprobity/crosswalk/pkg/tabular"
)

// RunOptions holds the inputs of one CLI transform run.
type RunOptions struct {
	ConfigPath string

	// Crosswalk is a stored definition name, or a path to a JSON crosswalk
	// document when it names an existing file.
	Crosswalk string

	// Source is the path to the source data file.
	Source string

	// Output is the destination CSV path; empty writes to stdout.
	Output string

	// Save persists the transform record after a successful run.
	Save     bool
	Citation domain.Citation

	Debug bool
	Quiet bool
}

// Run executes one crosswalk transform end to end: load, transform,
// write output, report, and optionally persist the transform record.
func Run(ctx context.Context, opts RunOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	cw, err := resolveCrosswalk(ctx, engine, opts.Crosswalk)
	if err != nil {
		return err
	}

	result, err := engine.TransformFile(ctx, cw, opts.Source)
	if err != nil {
		return err
	}

	if err := writeOutput(result.Table, opts.Output); err != nil {
		return err
	}

	if opts.Save {
		if err := engine.SaveTransform(ctx, result.Transform, opts.Citation); err != nil {
			return fmt.Errorf("failed to save transform record: %w", err)
		}
	}

	if !opts.Quiet {
		renderMarkdown(tui.TransformReport(result.Transform, result.Warnings))
		tui.PrintOutcome(true, fmt.Sprintf("transformed %d rows into %d columns", result.Table.Len(), result.Table.Width()))
	}

	return nil
}

// resolveCrosswalk treats the argument as a file path when such a file
// exists, and as a stored definition name otherwise.
func resolveCrosswalk(ctx context.Context, engine *crosswalk.Engine, nameOrPath string) (*domain.Crosswalk, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("a crosswalk name or file is required")
	}

	if _, err := os.Stat(nameOrPath); err == nil {
		data, err := os.ReadFile(nameOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read crosswalk file: %w", err)
		}
		var cw domain.Crosswalk
		if err := json.Unmarshal(data, &cw); err != nil {
			return nil, fmt.Errorf("failed to parse crosswalk file %q: %w", nameOrPath, err)
		}
		return &cw, nil
	}

	store := engine.Store()
	if store == nil {
		return nil, fmt.Errorf("no definition store configured")
	}
	cw, err := store.LoadCrosswalk(ctx, nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load crosswalk %q: %w", nameOrPath, err)
	}
	return cw, nil
}

// resolveTransform mirrors resolveCrosswalk for transform records.
func resolveTransform(ctx context.Context, engine *crosswalk.Engine, nameOrPath string) (*domain.Transform, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("a transform name or file is required")
	}

	if _, err := os.Stat(nameOrPath); err == nil {
		data, err := os.ReadFile(nameOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read transform file: %w", err)
		}
		var tr domain.Transform
		if err := json.Unmarshal(data, &tr); err != nil {
			return nil, fmt.Errorf("failed to parse transform file %q: %w", nameOrPath, err)
		}
		return &tr, nil
	}

	store := engine.Store()
	if store == nil {
		return nil, fmt.Errorf("no definition store configured")
	}
	tr, err := store.LoadTransform(ctx, nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load transform %q: %w", nameOrPath, err)
	}
	return tr, nil
}

func writeOutput(t *tabular.Table, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writeCSV(w, t)
}

// writeCSV renders the table with canonical cell text; nulls become empty
// cells.
func writeCSV(w io.Writer, t *tabular.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.ColumnNames()); err != nil {
		return err
	}

	record := make([]string, t.Width())
	for row := 0; row < t.Len(); row++ {
		for i, v := range t.Row(row) {
			if v == nil {
				record[i] = ""
			} else {
				record[i] = schema.CanonicalText(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// renderMarkdown pretty-prints markdown to stderr, falling back to the
// raw text when the terminal renderer fails.
func renderMarkdown(markdown string) {
	render := tui.NewRenderer()
	out, err := render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprint(os.Stderr, strings.TrimRight(out, "\n")+"\n")
}
