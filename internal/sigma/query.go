// Package sigma evaluates Sigma detection blocks against extracted signals.
//
// A query is a Sigma rule whose logsource category is a signal kind. Each
// signal is presented to the evaluator as a flat event:
//
//	kind, token, line, column, start, end
package sigma

import (
	"context"
	"fmt"

	sigmalib "github.com/bradleyjkemp/sigma-go"
	"github.com/bradleyjkemp/sigma-go/evaluator"
	"gopkg.in/yaml.v3"

	"github.com/iyulab/guidecheck/internal/signal"
	"github.com/iyulab/guidecheck/internal/span"
)

// Query is a compiled detection scoped to one signal kind.
type Query struct {
	kind string
	eval *evaluator.RuleEvaluator
}

type ruleDoc struct {
	Title     string         `yaml:"title"`
	Logsource logsourceDoc   `yaml:"logsource"`
	Detection map[string]any `yaml:"detection"`
}

type logsourceDoc struct {
	Product  string `yaml:"product"`
	Category string `yaml:"category"`
}

// Compile builds a Query for signals of kind from a Sigma detection block.
// The block must carry a condition.
func Compile(title, kind string, detection map[string]any) (*Query, error) {
	if kind == "" {
		return nil, fmt.Errorf("signal kind is required")
	}
	if len(detection) == 0 {
		return nil, fmt.Errorf("detection is empty")
	}
	if _, ok := detection["condition"]; !ok {
		return nil, fmt.Errorf("detection has no condition")
	}

	data, err := yaml.Marshal(ruleDoc{
		Title:     title,
		Logsource: logsourceDoc{Product: "guidecheck", Category: kind},
		Detection: detection,
	})
	if err != nil {
		return nil, fmt.Errorf("encode detection: %w", err)
	}
	rule, err := sigmalib.ParseRule(data)
	if err != nil {
		return nil, fmt.Errorf("parse detection: %w", err)
	}
	return &Query{kind: kind, eval: evaluator.ForRule(rule)}, nil
}

// Kind returns the signal kind the query is scoped to.
func (q *Query) Kind() string { return q.kind }

// Matches reports whether sig satisfies the detection. Signals of another
// kind never match; evaluator errors count as no match.
func (q *Query) Matches(ctx context.Context, sig signal.Signal, pos span.Position) bool {
	if sig.Kind != q.kind {
		return false
	}
	res, err := q.eval.Matches(ctx, Event(sig, pos))
	if err != nil {
		return false
	}
	return res.Match
}

// Event flattens a signal into the field map a detection sees.
func Event(sig signal.Signal, pos span.Position) map[string]interface{} {
	return map[string]interface{}{
		"kind":   sig.Kind,
		"token":  sig.Token,
		"line":   pos.Line,
		"column": pos.Column,
		"start":  sig.Span.Start,
		"end":    sig.Span.End,
	}
}
