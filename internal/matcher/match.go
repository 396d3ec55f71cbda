// Package matcher evaluates rule triggers of active bundles against an
// artifact.
package matcher

import (
	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/span"
)

// Category separates catalog findings from diagnostics the engine emits
// about itself.
type Category string

const (
	CategoryRule   Category = "rule"
	CategoryEngine Category = "engine"
)

// Match is one rule firing at one location. Severity is copied from the
// rule when the match is produced.
type Match struct {
	RuleID   string           `json:"rule_id"`
	Category Category         `json:"category"`
	Severity catalog.Severity `json:"severity"`
	Span     span.Span        `json:"span"`
	Position span.Position    `json:"position"`
	Token    string           `json:"token,omitempty"`
	Message  string           `json:"message"`
}

// Engine builds an engine-category match.
func Engine(ruleID string, sev catalog.Severity, s span.Span, pos span.Position, message string) Match {
	return Match{
		RuleID:   ruleID,
		Category: CategoryEngine,
		Severity: sev,
		Span:     s,
		Position: pos,
		Message:  message,
	}
}
