package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"

	"github.com/openprobity/crosswalk/pkg/actions"
	"github.com/openprobity/crosswalk/pkg/domain"
)

// TransformReport builds a markdown summary of a completed transform:
// provenance, the crosswalk script, and any coercion warnings. Pass it
// through NewRenderer for terminal output.
func TransformReport(tr *domain.Transform, warnings []actions.Warning) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transform: %s\n\n", tr.Name)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", tr.ID)
	fmt.Fprintf(&b, "- **Created**: %s\n", tr.Created.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Source checksum**: `%s`\n", tr.SourceChecksum)
	fmt.Fprintf(&b, "- **Destination checksum**: `%s`\n", tr.DestinationChecksum)

	if tr.Citation.Title != "" || tr.Citation.Author != "" {
		b.WriteString("\n## Citation\n\n")
		if tr.Citation.Author != "" {
			fmt.Fprintf(&b, "- **Author**: %s\n", tr.Citation.Author)
		}
		if tr.Citation.Title != "" {
			fmt.Fprintf(&b, "- **Title**: %s\n", tr.Citation.Title)
		}
		if tr.Citation.Year != 0 {
			fmt.Fprintf(&b, "- **Year**: %d\n", tr.Citation.Year)
		}
		if tr.Citation.License != "" {
			fmt.Fprintf(&b, "- **License**: %s\n", tr.Citation.License)
		}
		if tr.Citation.URL != "" {
			fmt.Fprintf(&b, "- **URL**: %s\n", tr.Citation.URL)
		}
		if tr.Citation.DOI != "" {
			fmt.Fprintf(&b, "- **DOI**: %s\n", tr.Citation.DOI)
		}
	}

	if tr.Crosswalk != nil {
		fmt.Fprintf(&b, "\n## Crosswalk: %s\n\n", tr.Crosswalk.Name)
		if tr.Crosswalk.SourceSchema != nil && tr.Crosswalk.DestinationSchema != nil {
			fmt.Fprintf(&b, "`%s` -> `%s`\n\n", tr.Crosswalk.SourceSchema.Name, tr.Crosswalk.DestinationSchema.Name)
		}
		b.WriteString("```\n")
		for _, d := range tr.Crosswalk.Actions {
			b.WriteString(d.String())
			b.WriteByte('\n')
		}
		b.WriteString("```\n")
	}

	if len(warnings) > 0 {
		fmt.Fprintf(&b, "\n## Warnings (%d)\n\n", len(warnings))
		for _, w := range warnings {
			fmt.Fprintf(&b, "- `%s` field `%s` row %d: %s\n", w.Action, w.Field, w.Row, w.Message)
		}
	}

	return b.String()
}

// CrosswalkReport builds a markdown summary of a crosswalk definition.
func CrosswalkReport(cw *domain.Crosswalk) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Crosswalk: %s\n\n", cw.Name)
	fmt.Fprintf(&b, "- **ID**: `%s`\n", cw.ID)
	if cw.SourceSchema != nil {
		fmt.Fprintf(&b, "- **Source schema**: %s (%d fields)\n", cw.SourceSchema.Name, len(cw.SourceSchema.Fields))
	}
	if cw.DestinationSchema != nil {
		fmt.Fprintf(&b, "- **Destination schema**: %s (%d fields)\n", cw.DestinationSchema.Name, len(cw.DestinationSchema.Fields))
	}

	fmt.Fprintf(&b, "\n## Script (%d actions)\n\n", len(cw.Actions))
	b.WriteString("```\n")
	for _, d := range cw.Actions {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	b.WriteString("```\n")

	return b.String()
}

// PrintOutcome writes a colored one-line verdict to stdout.
func PrintOutcome(ok bool, message string) {
	p := termenv.ColorProfile()
	var s termenv.Style
	if ok {
		s = termenv.String("✓ " + message).Foreground(p.Color("#4ade80"))
	} else {
		s = termenv.String("✗ " + message).Foreground(p.Color("#f87171"))
	}
	fmt.Println(s)
}
