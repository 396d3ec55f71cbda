package resolver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/span"
)

type orderMap map[string]int

func (o orderMap) Order(id string) (int, error) {
	n, ok := o[id]
	if !ok {
		return 0, fmt.Errorf("rule %q: %w", id, catalog.ErrNotFound)
	}
	return n, nil
}

func rule(id string, sev catalog.Severity, start, end int) matcher.Match {
	return matcher.Match{
		RuleID:   id,
		Category: matcher.CategoryRule,
		Severity: sev,
		Span:     span.Span{Start: start, End: end},
		Message:  id + " fired",
	}
}

func ids(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.RuleID
	}
	return out
}

func TestResolve_SingleCritical(t *testing.T) {
	got := Resolve(orderMap{"R1": 0}, []matcher.Match{rule("R1", catalog.Critical, 10, 20)}, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, catalog.Critical, got[0].Severity)
	assert.Equal(t, span.Span{Start: 10, End: 20}, got[0].Span)
}

func TestResolve_Empty(t *testing.T) {
	assert.Empty(t, Resolve(orderMap{}, nil, Options{}))
}

func TestResolve_OverlapKeepsHigherSeverity(t *testing.T) {
	order := orderMap{"B": 0, "A": 1}
	got := Resolve(order, []matcher.Match{
		rule("B", catalog.Medium, 0, 10),
		rule("A", catalog.Critical, 0, 10),
	}, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].RuleID, "severity beats catalog order")
	assert.Equal(t, []Superseded{{RuleID: "B", Severity: catalog.Medium, Span: span.Span{Start: 0, End: 10}}}, got[0].Superseded)
}

func TestResolve_TieGoesToCatalogOrder(t *testing.T) {
	order := orderMap{"first": 0, "second": 1}
	got := Resolve(order, []matcher.Match{
		rule("second", catalog.Medium, 0, 5),
		rule("first", catalog.Medium, 0, 5),
	}, Options{})

	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].RuleID)
	require.Len(t, got[0].Superseded, 1)
	assert.Equal(t, "second", got[0].Superseded[0].RuleID)
}

func TestResolve_PartialOverlapAndAdjacency(t *testing.T) {
	order := orderMap{"hi": 0, "lo": 1, "side": 2}
	got := Resolve(order, []matcher.Match{
		rule("lo", catalog.Low, 5, 15),
		rule("hi", catalog.High, 0, 10),
		rule("side", catalog.Low, 10, 12),
	}, Options{})

	assert.Equal(t, []string{"hi", "side"}, ids(got), "touching spans do not overlap")
	assert.Equal(t, "lo", got[0].Superseded[0].RuleID)
}

func TestResolve_SupersededRecordedOnFirstKept(t *testing.T) {
	order := orderMap{"a": 0, "b": 1, "wide": 2}
	got := Resolve(order, []matcher.Match{
		rule("a", catalog.High, 0, 5),
		rule("b", catalog.High, 10, 15),
		rule("wide", catalog.Low, 0, 15),
	}, Options{})

	require.Equal(t, []string{"a", "b"}, ids(got))
	assert.Len(t, got[0].Superseded, 1)
	assert.Empty(t, got[1].Superseded)
}

func TestResolve_EmptySpans(t *testing.T) {
	order := orderMap{"x": 0, "y": 1}
	got := Resolve(order, []matcher.Match{
		rule("x", catalog.Low, 0, 0),
		rule("y", catalog.Low, 0, 0),
		rule("y", catalog.Low, 0, 4),
	}, Options{})

	assert.Equal(t, []string{"x", "y"}, ids(got), "empty span overlaps only an identical span")
	assert.Len(t, got[0].Superseded, 1)
}

func TestResolve_Duplicates(t *testing.T) {
	m := rule("a", catalog.High, 1, 2)
	got := Resolve(orderMap{"a": 0}, []matcher.Match{m, m, m}, Options{})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Superseded)
}

func TestResolve_EngineMatchesBypassOverlap(t *testing.T) {
	timeout := matcher.Engine(catalog.RuleTimeout, catalog.Medium, span.Span{Start: 0, End: 5}, span.Position{Line: 1, Column: 1}, "budget")
	got := Resolve(orderMap{"a": 0}, []matcher.Match{rule("a", catalog.Critical, 0, 5), timeout}, Options{})

	require.Len(t, got, 2)
	assert.Equal(t, catalog.RuleTimeout, got[1].RuleID)
	assert.Equal(t, matcher.CategoryEngine, got[1].Category)
	assert.Empty(t, got[0].Superseded)
}

func TestResolve_UnknownRule(t *testing.T) {
	got := Resolve(orderMap{}, []matcher.Match{rule("ghost", catalog.Low, 3, 4)}, Options{})
	require.Len(t, got, 1)
	assert.Equal(t, catalog.RuleInternalConsistency, got[0].RuleID)
	assert.Equal(t, matcher.CategoryEngine, got[0].Category)
	assert.Equal(t, catalog.High, got[0].Severity)
	assert.Contains(t, got[0].Message, "ghost")
}

func TestResolve_ThresholdAfterConflicts(t *testing.T) {
	order := orderMap{"hi": 0, "lo": 1, "alone": 2}
	got := Resolve(order, []matcher.Match{
		rule("hi", catalog.High, 0, 5),
		rule("lo", catalog.Low, 0, 5),
		rule("alone", catalog.Low, 20, 25),
	}, Options{MinSeverity: catalog.Medium})

	require.Equal(t, []string{"hi"}, ids(got))
	assert.Equal(t, "lo", got[0].Superseded[0].RuleID, "suppressed matches stay recorded")
}

func TestResolve_ThresholdKeepsEngineDiagnostics(t *testing.T) {
	failed := matcher.Engine(catalog.RuleExtractionFailed, catalog.High, span.Span{Start: 12, End: 12}, span.Position{Line: 1, Column: 13}, "bad input")
	got := Resolve(orderMap{"lo": 0}, []matcher.Match{
		rule("lo", catalog.Low, 0, 5),
		rule("ghost", catalog.Medium, 6, 7),
		failed,
	}, Options{MinSeverity: catalog.Critical})

	require.Len(t, got, 2)
	for _, d := range got {
		assert.Equal(t, matcher.CategoryEngine, d.Category)
	}
	assert.ElementsMatch(t,
		[]string{catalog.RuleExtractionFailed, catalog.RuleInternalConsistency}, ids(got))
}

func TestResolve_TotalOrder(t *testing.T) {
	order := orderMap{"z": 0, "m": 1, "a": 2, "c": 3}
	got := Resolve(order, []matcher.Match{
		rule("m", catalog.Low, 40, 41),
		rule("a", catalog.Medium, 30, 31),
		rule("z", catalog.Critical, 50, 51),
		rule("c", catalog.Medium, 31, 32),
		rule("m", catalog.Low, 10, 11),
	}, Options{})

	require.Len(t, got, 5)
	for i, d := range got {
		assert.Equal(t, i+1, d.Rank)
		if i > 0 {
			assert.False(t, d.Severity > got[i-1].Severity, "severity must be non-increasing")
		}
	}
	assert.Equal(t, []string{"z", "a", "c", "m", "m"}, ids(got))
	assert.Equal(t, 10, got[3].Span.Start)
}

func TestResolve_InputOrderIrrelevant(t *testing.T) {
	order := orderMap{"a": 0, "b": 1, "c": 2}
	ms := []matcher.Match{
		rule("a", catalog.Medium, 0, 5),
		rule("b", catalog.Medium, 3, 8),
		rule("c", catalog.High, 7, 9),
	}
	reversed := []matcher.Match{ms[2], ms[1], ms[0]}
	assert.Equal(t, Resolve(order, ms, Options{}), Resolve(order, reversed, Options{}))
}
