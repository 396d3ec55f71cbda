package reporter

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/iyulab/guidecheck/internal/catalog"
)

// NoFindings is printed when no report carries a diagnostic.
const NoFindings = "no findings"

// ChecklistOptions control the flattened checklist.
type ChecklistOptions struct {
	Color bool
}

// WriteChecklist writes one line per diagnostic:
//
//	- [ ] SEVERITY rule-id: message (artifact:line:col)
func WriteChecklist(w io.Writer, reports []Report, opts ChecklistOptions) error {
	palette := newPalette(opts.Color)
	n := 0
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			n++
			_, err := fmt.Fprintf(w, "- [ ] %s %s: %s (%s:%s)\n",
				palette.severity(d.Severity), d.RuleID, d.Message, r.Artifact, d.Position)
			if err != nil {
				return fmt.Errorf("write checklist: %w", err)
			}
		}
	}
	if n == 0 {
		if _, err := fmt.Fprintln(w, NoFindings); err != nil {
			return fmt.Errorf("write checklist: %w", err)
		}
	}
	return nil
}

type palette struct {
	colors map[catalog.Severity]*color.Color
}

// newPalette builds per-instance colors. color.NoColor is not consulted.
func newPalette(enabled bool) palette {
	p := palette{colors: map[catalog.Severity]*color.Color{
		catalog.Critical: color.New(color.FgHiRed, color.Bold),
		catalog.High:     color.New(color.FgRed),
		catalog.Medium:   color.New(color.FgYellow),
		catalog.Low:      color.New(color.FgCyan),
	}}
	for _, c := range p.colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s catalog.Severity) string {
	c, ok := p.colors[s]
	if !ok {
		return s.String()
	}
	return c.Sprint(s.String())
}
