package matcher

import (
	"context"
	"fmt"
	"time"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/signal"
	"github.com/iyulab/guidecheck/internal/span"
)

// Options bound the work a single rule may do on one artifact.
// Zero values mean unbounded.
type Options struct {
	// Budget is the wall-clock time one rule may spend producing firings.
	Budget time.Duration
	// MaxMatches caps the firings one rule may produce.
	MaxMatches int
}

// Matcher evaluates rules. It holds no per-artifact state and is safe for
// concurrent use.
type Matcher struct {
	opts Options
	now  func() time.Time
}

// New creates a Matcher.
func New(opts Options) *Matcher {
	return &Matcher{opts: opts, now: time.Now}
}

// Match evaluates every rule that belongs to an active bundle, once each,
// in catalog order. Rules never see each other's results.
func (m *Matcher) Match(ctx context.Context, c *catalog.Catalog, active []string, text string, idx *span.Index, signals signal.Set) []Match {
	if len(active) == 0 {
		return nil
	}
	if idx == nil {
		idx = span.NewIndex(text)
	}

	wanted := make(map[string]bool)
	for _, id := range active {
		b, err := c.Bundle(id)
		if err != nil {
			continue
		}
		for _, r := range b.Members {
			wanted[r] = true
		}
	}

	in := input{ctx: ctx, text: text, index: idx, signals: signals, limit: -1}
	if m.opts.MaxMatches > 0 {
		in.limit = m.opts.MaxMatches + 1
	}

	var out []Match
	for _, r := range c.Rules() {
		if !wanted[r.ID] {
			continue
		}
		out = append(out, m.evaluateRule(r, in)...)
	}
	return out
}

// evaluateRule runs one rule under its budget. When the budget runs out the
// firings found so far are kept and one engine rule-timeout match is added.
func (m *Matcher) evaluateRule(r catalog.Rule, in input) []Match {
	var (
		out      []Match
		last     span.Span
		exceeded bool
	)
	start := m.now()

	evaluate(r.Trigger, in, func(h hit) bool {
		if m.opts.MaxMatches > 0 && len(out) >= m.opts.MaxMatches {
			exceeded = true
			return false
		}
		if m.opts.Budget > 0 && m.now().Sub(start) > m.opts.Budget {
			exceeded = true
			return false
		}
		out = append(out, build(r, h, in.index))
		last = h.span
		return true
	})

	if exceeded {
		out = append(out, Engine(
			catalog.RuleTimeout,
			r.Severity,
			last,
			in.index.Position(last.Start),
			fmt.Sprintf("rule %s exceeded its evaluation budget after %d match(es); remaining matches skipped", r.ID, len(out)),
		))
	}
	return out
}

func build(r catalog.Rule, h hit, idx *span.Index) Match {
	pos := idx.Position(h.span.Start)
	msg, _ := r.Render(catalog.MessageData{
		Rule:   r.ID,
		Kind:   h.kind,
		Token:  h.token,
		Line:   pos.Line,
		Column: pos.Column,
		Start:  h.span.Start,
		End:    h.span.End,
	})
	return Match{
		RuleID:   r.ID,
		Category: CategoryRule,
		Severity: r.Severity,
		Span:     h.span,
		Position: pos,
		Token:    h.token,
		Message:  msg,
	}
}
