package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/openprobity/crosswalk/internal/presentation/tui"
	"github.com/openprobity/crosswalk/pkg/probity"
)

// ValidateOptions holds the inputs of one CLI replay validation.
type ValidateOptions struct {
	ConfigPath string

	// Transform is a stored record name, or a path to a JSON transform
	// document when it names an existing file.
	Transform string

	// Source is the path to the claimed source data file.
	Source string

	Debug bool
}

// Validate replays a transform record against a claimed source and
// reports whether the recorded checksums are reproduced.
func Validate(ctx context.Context, opts ValidateOptions) error {
	logger := createLogger(opts.Debug)

	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	tr, err := resolveTransform(ctx, engine, opts.Transform)
	if err != nil {
		return err
	}

	if err := engine.ValidateFile(ctx, tr, opts.Source); err != nil {
		var mismatch *probity.MismatchError
		if errors.As(err, &mismatch) {
			tui.PrintOutcome(false, mismatch.Error())
			return fmt.Errorf("transform %q failed replay validation", tr.Name)
		}
		return err
	}

	tui.PrintOutcome(true, fmt.Sprintf("transform %q reproduced both checksums", tr.Name))
	return nil
}
