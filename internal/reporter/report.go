// Package reporter renders resolved diagnostics. Rendering never reorders
// or alters what the resolver produced.
package reporter

import (
	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/resolver"
)

// Status tells an empty result apart from a failure.
type Status string

const (
	StatusFindings   Status = "findings"
	StatusNoFindings Status = "no-findings"
)

// Report is the rendered outcome of one artifact.
type Report struct {
	Artifact    string                `json:"artifact"`
	Status      Status                `json:"status"`
	Diagnostics []resolver.Diagnostic `json:"diagnostics"`
	Summary     Summary               `json:"summary"`
}

// NewReport wraps the diagnostics of one artifact.
func NewReport(artifact string, diags []resolver.Diagnostic) Report {
	if diags == nil {
		diags = []resolver.Diagnostic{}
	}
	status := StatusNoFindings
	if len(diags) > 0 {
		status = StatusFindings
	}
	return Report{
		Artifact:    artifact,
		Status:      status,
		Diagnostics: diags,
		Summary:     summarize(diags),
	}
}

// Gate reports whether any diagnostic is at or above failOn.
func Gate(reports []Report, failOn catalog.Severity) bool {
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if d.Severity.AtLeast(failOn) {
				return true
			}
		}
	}
	return false
}
