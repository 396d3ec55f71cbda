// Package orchestrator coordinates the Gather → Check → Report pipeline of
// one CLI run.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/config"
	"github.com/iyulab/guidecheck/internal/engine"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/reporter"
)

// Options holds CLI inputs for the orchestrator.
type Options struct {
	Paths     []string
	Stdin     io.Reader
	StdinName string
	Stdout    io.Writer
	Stderr    io.Writer
	Color     bool
	Verbose   bool
	Version   string
}

// Outcome is what a run produced.
type Outcome struct {
	Reports []reporter.Report
	// Failed is set when a diagnostic reached the fail_on threshold.
	Failed bool
}

// Orchestrator runs the pipeline.
type Orchestrator struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger
}

// New creates an Orchestrator with a validated config.
func New(cfg *config.Config, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &Orchestrator{cfg: cfg, opts: opts, logger: logger.With("component", "orchestrator")}
}

// LoadCatalog loads the catalog at path, or the embedded default when
// path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadPath(path)
}

// Run loads the catalog, checks every artifact and writes the rendered
// result to stdout. Errors are returned only for problems that stop the
// run; findings are reported through Outcome.
func (o *Orchestrator) Run(ctx context.Context) (Outcome, error) {
	start := time.Now()

	// --- Stage 1: Catalog ---
	c, err := LoadCatalog(o.cfg.Catalog.Path)
	if err != nil {
		return Outcome{}, fmt.Errorf("load catalog: %w", err)
	}
	o.progress("[*] Catalog: %d rules, %d bundles (%s)\n", len(c.Rules()), len(c.Bundles()), c.ShortFingerprint())

	// --- Stage 2: Gather ---
	artifacts, err := Gather(o.opts.Paths, o.opts.Stdin, o.opts.StdinName)
	if err != nil {
		return Outcome{}, err
	}
	o.progress("[*] Checking %d artifact(s) with %d worker(s)...\n", len(artifacts), o.cfg.Engine.Workers)

	// --- Stage 3: Check ---
	eng := engine.New(catalog.NewStore(c), engine.Options{
		Matcher: matcher.Options{
			Budget:     o.cfg.Engine.RuleBudget(),
			MaxMatches: o.cfg.Engine.MaxMatchesPerRule,
		},
		MinSeverity: o.cfg.Output.MinSeverity,
		Logger:      o.logger,
	})
	sessions, err := eng.Batch(ctx, artifacts, o.cfg.Engine.Workers)
	if err != nil {
		return Outcome{}, fmt.Errorf("check: %w", err)
	}

	reports := make([]reporter.Report, 0, len(sessions))
	for _, s := range sessions {
		reports = append(reports, reporter.NewReport(s.Artifact, s.Diagnostics))
		if o.opts.Verbose {
			fmt.Fprintf(o.opts.Stderr, "  %-40s %3d diagnostic(s)  %s\n",
				s.Artifact, len(s.Diagnostics), s.Duration.Round(time.Microsecond))
		}
	}

	// --- Stage 4: Report ---
	if err := o.render(reports, c); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Reports: reports, Failed: reporter.Gate(reports, o.cfg.Output.FailOn)}
	summary := reporter.Summarize(reports)
	o.progress("[*] %s (%s)\n", summary.Headline, time.Since(start).Round(time.Millisecond))
	o.logger.Info("run complete",
		"artifacts", len(reports),
		"diagnostics", summary.Total,
		"failed", out.Failed,
	)
	return out, nil
}

func (o *Orchestrator) render(reports []reporter.Report, c *catalog.Catalog) error {
	switch o.cfg.Output.Format {
	case config.FormatJSON:
		return reporter.WriteJSON(o.opts.Stdout, reports)
	case config.FormatHTML:
		rep, err := reporter.New()
		if err != nil {
			return fmt.Errorf("create reporter: %w", err)
		}
		return rep.WriteHTML(o.opts.Stdout, reporter.PageData{
			GeneratedAt: time.Now().UTC(),
			Version:     o.opts.Version,
			Catalog:     c.ShortFingerprint(),
			Reports:     reports,
		})
	default:
		return reporter.WriteChecklist(o.opts.Stdout, reports, reporter.ChecklistOptions{Color: o.opts.Color})
	}
}

func (o *Orchestrator) progress(format string, args ...any) {
	if o.opts.Verbose {
		fmt.Fprintf(o.opts.Stderr, format, args...)
	}
}
