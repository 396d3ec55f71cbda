package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/reporter"
)

const scenarioYAML = `
signals:
  - {kind: X, pattern: 'X{3,}'}
rules:
  - id: R1
    severity: CRITICAL
    trigger: {kind: signal, signal: X}
    message: 'X found'
    example:
      before: 'XXXXXXXXXX'
      after: 'nothing'
  - id: first
    severity: MEDIUM
    trigger: {kind: presence, pattern: '^hello'}
    message: first
  - id: second
    severity: MEDIUM
    trigger: {kind: presence, pattern: '^hello'}
    message: second
  - id: low
    severity: LOW
    trigger: {kind: presence, pattern: 'quiet'}
    message: low
bundles:
  - id: B1
    members: [R1]
    activation: {mode: any-of, signals: [X]}
  - id: B2
    members: [first, second, low]
    activation: {mode: any-of, signals: [X]}
`

func newEngine(t *testing.T, src string, opts Options) *Engine {
	t.Helper()
	defs, err := catalog.Parse([]byte(src))
	require.NoError(t, err)
	c, err := catalog.Load(defs)
	require.NoError(t, err)
	return New(catalog.NewStore(c), opts)
}

func TestCheck_SingleSignalScenario(t *testing.T) {
	e := newEngine(t, `
signals:
  - {kind: X, pattern: 'X{10}'}
rules:
  - id: R1
    severity: CRITICAL
    trigger: {kind: signal, signal: X}
    message: 'X found'
bundles:
  - id: B1
    members: [R1]
    activation: {mode: any-of, signals: [X]}
`, Options{})

	s := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("0123456789XXXXXXXXXX tail")})
	assert.Equal(t, []string{"B1"}, s.Active)
	require.Len(t, s.Diagnostics, 1)
	d := s.Diagnostics[0]
	assert.Equal(t, 1, d.Rank)
	assert.Equal(t, "R1", d.RuleID)
	assert.Equal(t, catalog.Critical, d.Severity)
	assert.Equal(t, 10, d.Span.Start)
	assert.Equal(t, 20, d.Span.End)
	assert.NotEmpty(t, s.ID)
	assert.NotEmpty(t, s.Catalog)
}

func TestCheck_NoSignals(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	s := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("hello quiet")})
	assert.Empty(t, s.Active)
	assert.Empty(t, s.Matches)
	assert.Empty(t, s.Diagnostics)
}

func TestCheck_EqualSeverityTieBreak(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	s := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("hello XXX")})

	var found bool
	for _, d := range s.Diagnostics {
		assert.NotEqual(t, "second", d.RuleID)
		if d.RuleID == "first" {
			found = true
			require.Len(t, d.Superseded, 1)
			assert.Equal(t, "second", d.Superseded[0].RuleID)
		}
	}
	assert.True(t, found)
}

func TestCheck_MinSeverity(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{MinSeverity: catalog.Medium})
	s := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("XXX quiet")})
	for _, d := range s.Diagnostics {
		assert.True(t, d.Severity.AtLeast(catalog.Medium))
	}
	assert.Len(t, s.Diagnostics, 1)
}

func TestCheck_ExtractionFailure(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	s := e.Check(context.Background(), Artifact{Name: "bin", Data: []byte("ab\x00cd")})
	require.Len(t, s.Diagnostics, 1)
	d := s.Diagnostics[0]
	assert.Equal(t, catalog.RuleExtractionFailed, d.RuleID)
	assert.Equal(t, matcher.CategoryEngine, d.Category)
	assert.Equal(t, catalog.High, d.Severity)
	assert.Equal(t, 2, d.Span.Start)
}

func TestCheck_ExtractionFailureSurvivesThreshold(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{MinSeverity: catalog.Critical})
	s := e.Check(context.Background(), Artifact{Name: "bin", Data: []byte("XXXXXXXXXXXX\x00zz")})
	require.Len(t, s.Diagnostics, 1)
	assert.Equal(t, catalog.RuleExtractionFailed, s.Diagnostics[0].RuleID)
	assert.Equal(t, 12, s.Diagnostics[0].Span.Start)
}

func TestCheck_ReadError(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{MinSeverity: catalog.Critical})
	s := e.Check(context.Background(), Artifact{Name: "gone.ts", Err: errors.New("read gone.ts: no such file")})
	require.Len(t, s.Diagnostics, 1)
	d := s.Diagnostics[0]
	assert.Equal(t, catalog.RuleExtractionFailed, d.RuleID)
	assert.Equal(t, catalog.High, d.Severity)
	assert.Equal(t, 0, d.Span.Start)
	assert.Contains(t, d.Message, "no such file")
	assert.Empty(t, s.Active)
}

func TestCheck_ExamplesNeverEvaluated(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	s := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("plain text")})
	assert.Empty(t, s.Diagnostics, "example text must not produce signals")
}

func TestCheck_Idempotent(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	a := Artifact{Name: "a", Data: []byte("hello XXX quiet\nXXXX")}
	assert.Equal(t, e.Check(context.Background(), a).Diagnostics, e.Check(context.Background(), a).Diagnostics)
}

func TestCheck_SerializedOutputIsByteIdentical(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	artifacts := []Artifact{
		{Name: "a.ts", Data: []byte("hello XXX quiet\nXXXX")},
		{Name: "b.ts", Data: []byte("ab\x00cd")},
	}
	render := func() []byte {
		sessions, err := e.Batch(context.Background(), artifacts, 2)
		require.NoError(t, err)
		reports := make([]reporter.Report, len(sessions))
		for i, s := range sessions {
			reports[i] = reporter.NewReport(s.Artifact, s.Diagnostics)
		}
		var buf bytes.Buffer
		require.NoError(t, reporter.WriteJSON(&buf, reports))
		return buf.Bytes()
	}

	first := render()
	assert.NotEmpty(t, first)
	assert.Equal(t, string(first), string(render()))
}

func TestCheck_SnapshotIsolation(t *testing.T) {
	defs, err := catalog.Parse([]byte(scenarioYAML))
	require.NoError(t, err)
	c, err := catalog.Load(defs)
	require.NoError(t, err)
	store := catalog.NewStore(c)
	e := New(store, Options{})

	before := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("XXX")})
	require.NoError(t, store.Reload(func() (*catalog.Catalog, error) {
		return catalog.Load(catalog.Definitions{})
	}))
	after := e.Check(context.Background(), Artifact{Name: "a", Data: []byte("XXX")})

	assert.NotEmpty(t, before.Diagnostics)
	assert.Empty(t, after.Diagnostics)
	assert.NotEqual(t, before.Catalog, after.Catalog)
}

func TestBatch_InputOrder(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	var artifacts []Artifact
	for i := 0; i < 20; i++ {
		data := "plain"
		if i%2 == 0 {
			data = "XXX"
		}
		artifacts = append(artifacts, Artifact{Name: fmt.Sprintf("a%02d", i), Data: []byte(data)})
	}

	sessions, err := e.Batch(context.Background(), artifacts, 3)
	require.NoError(t, err)
	require.Len(t, sessions, len(artifacts))
	for i, s := range sessions {
		require.NotNil(t, s)
		assert.Equal(t, artifacts[i].Name, s.Artifact)
		assert.Equal(t, i%2 == 0, len(s.Diagnostics) > 0)
	}
}

func TestBatch_Cancelled(t *testing.T) {
	e := newEngine(t, scenarioYAML, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sessions, err := e.Batch(ctx, []Artifact{{Name: "a"}, {Name: "b"}}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, sessions, 2)
	assert.Nil(t, sessions[0])
}
