// Package main is the CLI entry point for guidecheck.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/config"
	"github.com/iyulab/guidecheck/internal/logging"
	"github.com/iyulab/guidecheck/internal/orchestrator"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit statuses.
const (
	exitOK       = 0
	exitFindings = 1
	exitUsage    = 2
)

// errFindings signals that diagnostics reached the fail_on threshold. It
// carries no message of its own.
var errFindings = errors.New("findings at or above fail threshold")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "guidecheck [paths...]",
		Short: "Check source files against a catalog of prioritized coding rules",
		Long: `guidecheck detects framework signals in source files, activates the
rule bundles those signals call for, and prints a ranked checklist of
diagnostics, most severe first. With no paths, or "-", it reads stdin.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, stdin)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file (default "+config.DefaultFile+" if present)")
	rootCmd.PersistentFlags().String("catalog", "", "catalog file or directory (default: embedded catalog)")
	rootCmd.Flags().StringP("format", "f", "", "output format: checklist, json, html")
	rootCmd.Flags().String("min-severity", "", "drop diagnostics below this severity")
	rootCmd.Flags().String("fail-on", "", "exit 1 when a diagnostic is at or above this severity")
	rootCmd.Flags().Int("workers", 0, "artifacts checked in parallel")
	rootCmd.Flags().String("stdin-name", "", "artifact name used for stdin")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	rootCmd.AddCommand(newCatalogCmd(), newExplainCmd())
	return rootCmd
}

func run(cmd *cobra.Command, args []string, stdin io.Reader) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if v, _ := flags.GetString("format"); v != "" {
		cfg.Output.Format = v
	}
	if v, _ := flags.GetString("min-severity"); v != "" {
		if cfg.Output.MinSeverity, err = catalog.ParseSeverity(v); err != nil {
			return fmt.Errorf("--min-severity: %w", err)
		}
	}
	if v, _ := flags.GetString("fail-on"); v != "" {
		if cfg.Output.FailOn, err = catalog.ParseSeverity(v); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers, _ = flags.GetInt("workers")
		if cfg.Engine.Workers <= 0 {
			return fmt.Errorf("--workers must be positive")
		}
	}
	verbose, _ := flags.GetBool("verbose")
	stdinName, _ := flags.GetString("stdin-name")
	if verbose && cfg.Logging.Level == "warn" {
		cfg.Logging.Level = "info"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.Init(cmd.ErrOrStderr(), cfg.Logging.Format, cfg.Logging.Level)

	orch := orchestrator.New(cfg, orchestrator.Options{
		Paths:     args,
		Stdin:     stdin,
		StdinName: stdinName,
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Color:     cfg.Output.UseColor(isTerminal(cmd.OutOrStdout())),
		Verbose:   verbose,
		Version:   fmt.Sprintf("%s (%s)", version, commit),
	}, logger)

	out, err := orch.Run(cmd.Context())
	if err != nil {
		return err
	}
	if out.Failed {
		return errFindings
	}
	return nil
}

// loadConfig reads the config file and applies the persistent --catalog flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog.Path = v
	}
	return cfg, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
