package cli

import (
	"context"
	"fmt"

	"github.com/openprobity/crosswalk/internal/presentation/tui"
)

// ShowOptions holds the inputs of one CLI definition inspection.
type ShowOptions struct {
	ConfigPath string

	// Kind is "crosswalk" or "transform".
	Kind string

	// Name is a stored definition name or a JSON document path.
	Name string

	Debug bool
}

// Show renders a stored definition as a terminal report.
func Show(ctx context.Context, opts ShowOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	switch opts.Kind {
	case "crosswalk":
		cw, err := resolveCrosswalk(ctx, engine, opts.Name)
		if err != nil {
			return err
		}
		if err := cw.Check(); err != nil {
			tui.PrintOutcome(false, err.Error())
		}
		renderMarkdown(tui.CrosswalkReport(cw))
	case "transform":
		tr, err := resolveTransform(ctx, engine, opts.Name)
		if err != nil {
			return err
		}
		renderMarkdown(tui.TransformReport(tr, nil))
	default:
		return fmt.Errorf("unknown definition kind %q (expected crosswalk or transform)", opts.Kind)
	}

	return nil
}

// List prints the stored definition names of one kind.
func List(ctx context.Context, configPath, kind string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(cfg, createLogger(false), nil)
	if err != nil {
		return err
	}

	store := engine.Store()
	if store == nil {
		return fmt.Errorf("no definition store configured")
	}

	names, err := store.List(ctx, kind)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
