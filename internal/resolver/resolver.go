// Package resolver turns raw matches into the ranked diagnostic sequence.
package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/span"
)

// Orderer reports the definition order of a rule. *catalog.Catalog
// implements it.
type Orderer interface {
	Order(id string) (int, error)
}

// Superseded references a match that lost an overlap conflict.
type Superseded struct {
	RuleID   string           `json:"rule_id"`
	Severity catalog.Severity `json:"severity"`
	Span     span.Span        `json:"span"`
}

// Diagnostic is a resolved match with its rank in the output.
type Diagnostic struct {
	Rank int `json:"rank"`
	matcher.Match
	Superseded []Superseded `json:"superseded,omitempty"`
}

// Options control the resolver.
type Options struct {
	// MinSeverity drops rule diagnostics below it. Engine diagnostics are
	// always kept. The zero value keeps all.
	MinSeverity catalog.Severity
}

type candidate struct {
	match matcher.Match
	order int
}

// Resolve collapses duplicates, settles overlap conflicts, applies the
// severity threshold and ranks what is left.
func Resolve(order Orderer, matches []matcher.Match, opts Options) []Diagnostic {
	var (
		engine     []Diagnostic
		candidates []candidate
	)
	for _, m := range dedupe(matches) {
		if m.Category == matcher.CategoryEngine {
			engine = append(engine, Diagnostic{Match: m})
			continue
		}
		n, err := order.Order(m.RuleID)
		if err != nil {
			engine = append(engine, Diagnostic{Match: inconsistent(m, err)})
			continue
		}
		candidates = append(candidates, candidate{match: m, order: n})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.match.Severity != b.match.Severity {
			return a.match.Severity > b.match.Severity
		}
		if a.order != b.order {
			return a.order < b.order
		}
		if a.match.Span != b.match.Span {
			return a.match.Span.Less(b.match.Span)
		}
		return a.match.Message < b.match.Message
	})

	var kept []Diagnostic
	for _, c := range candidates {
		if i := firstOverlap(kept, c.match.Span); i >= 0 {
			kept[i].Superseded = append(kept[i].Superseded, Superseded{
				RuleID:   c.match.RuleID,
				Severity: c.match.Severity,
				Span:     c.match.Span,
			})
			continue
		}
		kept = append(kept, Diagnostic{Match: c.match})
	}

	out := make([]Diagnostic, 0, len(kept)+len(engine))
	for _, d := range kept {
		if d.Severity.AtLeast(opts.MinSeverity) {
			out = append(out, d)
		}
	}
	// Engine diagnostics report that a check could not run; no threshold
	// hides them.
	out = append(out, engine...)

	sort.SliceStable(out, func(i, j int) bool { return less(out[i].Match, out[j].Match) })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// less is the global output order.
func less(a, b matcher.Match) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	if a.Span.End != b.Span.End {
		return a.Span.End < b.Span.End
	}
	if a.RuleID != b.RuleID {
		return a.RuleID < b.RuleID
	}
	if a.Message != b.Message {
		return a.Message < b.Message
	}
	return a.Category < b.Category
}

func firstOverlap(kept []Diagnostic, s span.Span) int {
	for i, k := range kept {
		if k.Span.Overlaps(s) {
			return i
		}
	}
	return -1
}

type dedupeKey struct {
	category matcher.Category
	ruleID   string
	span     span.Span
	message  string
}

func dedupe(matches []matcher.Match) []matcher.Match {
	seen := make(map[dedupeKey]bool, len(matches))
	out := make([]matcher.Match, 0, len(matches))
	for _, m := range matches {
		k := dedupeKey{m.Category, m.RuleID, m.Span, m.Message}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, m)
	}
	return out
}

func inconsistent(m matcher.Match, err error) matcher.Match {
	reason := err.Error()
	if errors.Is(err, catalog.ErrNotFound) {
		reason = "rule is not in the catalog"
	}
	return matcher.Engine(
		catalog.RuleInternalConsistency,
		catalog.High,
		m.Span,
		m.Position,
		fmt.Sprintf("match from rule %q cannot be resolved: %s", m.RuleID, reason),
	)
}
