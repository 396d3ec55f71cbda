// Package engine runs the check pipeline for one artifact and for batches
// of artifacts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iyulab/guidecheck/internal/activation"
	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/resolver"
	"github.com/iyulab/guidecheck/internal/signal"
	"github.com/iyulab/guidecheck/internal/span"
)

// Artifact is one unit of source text submitted for checking. Err records
// a failure to read it; such an artifact is reported, not skipped.
type Artifact struct {
	Name string
	Data []byte
	Err  error
}

// Session is everything produced for one artifact. It is discarded once
// its diagnostics are reported.
type Session struct {
	ID          string
	Artifact    string
	Catalog     string // fingerprint of the snapshot the session ran against
	Signals     signal.Set
	Active      []string
	Matches     []matcher.Match
	Diagnostics []resolver.Diagnostic
	Duration    time.Duration
}

// Options configure an Engine.
type Options struct {
	Matcher     matcher.Options
	MinSeverity catalog.Severity
	Logger      *slog.Logger
}

// Engine checks artifacts against the catalog held by a store.
type Engine struct {
	store   *catalog.Store
	matcher *matcher.Matcher
	opts    Options
	base    *slog.Logger
	logger  *slog.Logger
}

// New creates an Engine reading catalog snapshots from store.
func New(store *catalog.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		matcher: matcher.New(opts.Matcher),
		opts:    opts,
		base:    logger,
		logger:  logger.With("component", "engine"),
	}
}

// Check runs extraction, activation, matching and resolution for one
// artifact. The catalog snapshot is taken once, at session start.
func (e *Engine) Check(ctx context.Context, a Artifact) *Session {
	start := time.Now()
	c := e.store.Snapshot()
	s := &Session{
		ID:       uuid.NewString(),
		Artifact: a.Name,
		Catalog:  c.Fingerprint(),
	}
	log := e.logger.With("session", s.ID, "artifact", a.Name)

	text := string(a.Data)
	idx := span.NewIndex(text)
	extractor := signal.NewExtractor(e.base.With("session", s.ID), c.Scanners()...)

	var (
		signals signal.Set
		err     = a.Err
	)
	if err == nil {
		signals, err = extractor.Extract(text)
	}
	if err != nil {
		s.Matches = []matcher.Match{extractionFailed(err, idx)}
		log.Warn("extraction failed", "error", err)
	} else {
		s.Signals = signals
		s.Active = activation.Activate(c, signals)
		s.Matches = e.matcher.Match(ctx, c, s.Active, text, idx, signals)
	}

	s.Diagnostics = resolver.Resolve(c, s.Matches, resolver.Options{MinSeverity: e.opts.MinSeverity})
	s.Duration = time.Since(start)

	log.Debug("session complete",
		"signals", s.Signals.Len(),
		"kinds", s.Signals.Kinds(),
		"bundles", len(s.Active),
		"matches", len(s.Matches),
		"diagnostics", len(s.Diagnostics),
		"duration", s.Duration.Round(time.Microsecond),
	)
	return s
}

func extractionFailed(err error, idx *span.Index) matcher.Match {
	var ee *signal.ExtractionError
	at := span.Span{}
	if errors.As(err, &ee) {
		at = span.Span{Start: ee.Offset, End: ee.Offset}
	}
	return matcher.Engine(
		catalog.RuleExtractionFailed,
		catalog.High,
		at,
		idx.Position(at.Start),
		fmt.Sprintf("artifact could not be read: %v", err),
	)
}
