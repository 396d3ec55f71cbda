// Package config handles loading and validating the guidecheck.toml configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/iyulab/guidecheck/internal/catalog"
)

// DefaultFile is read when no config path is given. Its absence is not an error.
const DefaultFile = "guidecheck.toml"

// Config is the top-level configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Output  OutputConfig  `toml:"output"`
	Engine  EngineConfig  `toml:"engine"`
	Logging LoggingConfig `toml:"logging"`
}

// CatalogConfig locates the rule catalog.
type CatalogConfig struct {
	// Path is a catalog file or a directory of *.yaml files. Empty selects
	// the embedded default catalog.
	Path string `toml:"path"`
}

// OutputConfig configures rendering and the exit gate.
type OutputConfig struct {
	Format      string           `toml:"format"` // checklist | json | html
	MinSeverity catalog.Severity `toml:"min_severity"`
	FailOn      catalog.Severity `toml:"fail_on"`
	Color       string           `toml:"color"` // auto | always | never
}

// EngineConfig bounds the work done per artifact.
type EngineConfig struct {
	Workers           int `toml:"workers"`
	RuleBudgetMS      int `toml:"rule_budget_ms"` // 0 = unbounded
	MaxMatchesPerRule int `toml:"max_matches_per_rule"`
}

// LoggingConfig configures the stderr logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text | json
}

// Output formats.
const (
	FormatChecklist = "checklist"
	FormatJSON      = "json"
	FormatHTML      = "html"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format:      FormatChecklist,
			MinSeverity: catalog.Low,
			FailOn:      catalog.High,
			Color:       "auto",
		},
		Engine: EngineConfig{
			Workers:           4,
			RuleBudgetMS:      250,
			MaxMatchesPerRule: 1000,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a config file over the defaults, applies environment
// overrides and validates the result. An empty path reads DefaultFile if
// it exists; a path given explicitly must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// defaults only
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("config file not found: %s", path)
		default:
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GUIDECHECK_CATALOG"); ok && v != "" {
		c.Catalog.Path = v
	}
	if v, ok := lookup("GUIDECHECK_FORMAT"); ok && v != "" {
		c.Output.Format = v
	}
	if v, ok := lookup("GUIDECHECK_MIN_SEVERITY"); ok && v != "" {
		sev, err := catalog.ParseSeverity(v)
		if err != nil {
			return fmt.Errorf("GUIDECHECK_MIN_SEVERITY: %w", err)
		}
		c.Output.MinSeverity = sev
	}
	if v, ok := lookup("GUIDECHECK_FAIL_ON"); ok && v != "" {
		sev, err := catalog.ParseSeverity(v)
		if err != nil {
			return fmt.Errorf("GUIDECHECK_FAIL_ON: %w", err)
		}
		c.Output.FailOn = sev
	}
	if v, ok := lookup("GUIDECHECK_LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate normalizes values and rejects unknown ones. Callers that
// change a loaded Config, such as applying CLI flags, call it again.
func (c *Config) Validate() error { return c.validate() }

func (c *Config) validate() error {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch c.Output.Format {
	case FormatChecklist, FormatJSON, FormatHTML:
	case "":
		c.Output.Format = FormatChecklist
	default:
		return fmt.Errorf("unsupported output.format: %q (checklist, json, html)", c.Output.Format)
	}

	if !c.Output.MinSeverity.Valid() {
		return fmt.Errorf("output.min_severity is invalid")
	}
	if !c.Output.FailOn.Valid() {
		return fmt.Errorf("output.fail_on is invalid")
	}

	c.Output.Color = strings.ToLower(strings.TrimSpace(c.Output.Color))
	switch c.Output.Color {
	case "auto", "always", "never":
	case "":
		c.Output.Color = "auto"
	default:
		return fmt.Errorf("unsupported output.color: %q (auto, always, never)", c.Output.Color)
	}

	if c.Engine.Workers < 0 {
		return fmt.Errorf("engine.workers must not be negative")
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 4
	}
	if c.Engine.RuleBudgetMS < 0 {
		return fmt.Errorf("engine.rule_budget_ms must not be negative")
	}
	if c.Engine.MaxMatchesPerRule < 0 {
		return fmt.Errorf("engine.max_matches_per_rule must not be negative")
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	case "":
		c.Logging.Level = "warn"
	default:
		return fmt.Errorf("unsupported logging.level: %q (debug, info, warn, error)", c.Logging.Level)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "text", "json":
	case "":
		c.Logging.Format = "text"
	default:
		return fmt.Errorf("unsupported logging.format: %q (text, json)", c.Logging.Format)
	}
	return nil
}

// RuleBudget returns the per-rule evaluation budget.
func (e EngineConfig) RuleBudget() time.Duration {
	return time.Duration(e.RuleBudgetMS) * time.Millisecond
}

// UseColor resolves the color setting against whether stdout is a terminal.
func (o OutputConfig) UseColor(terminal bool) bool {
	switch o.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		return terminal
	}
}
