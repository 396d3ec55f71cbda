package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/orchestrator"
	"github.com/iyulab/guidecheck/internal/reporter"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and validate rule catalogs",
	}

	validate := &cobra.Command{
		Use:   "validate [path]",
		Short: "Load a catalog and report every definition problem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalogFor(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d rules, %d bundles (%s)\n",
				len(c.Rules()), len(c.Bundles()), c.ShortFingerprint())
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list [path]",
		Short: "List catalog rules in definition order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalogFor(cmd, args)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return reporter.WriteCatalogJSON(cmd.OutOrStdout(), c)
			}
			return reporter.WriteCatalogTable(cmd.OutOrStdout(), c)
		},
	}
	list.Flags().Bool("json", false, "print the listing as JSON")

	cmd.AddCommand(validate, list)
	return cmd
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <rule-id>",
		Short: "Show a rule's severity, message and example",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalogFor(cmd, nil)
			if err != nil {
				return err
			}
			return reporter.WriteExplain(cmd.OutOrStdout(), c, args[0])
		},
	}
}

// catalogFor resolves the catalog from an explicit argument, then the
// --catalog flag, then the config file.
func catalogFor(cmd *cobra.Command, args []string) (*catalog.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path := cfg.Catalog.Path
	if len(args) > 0 {
		path = args[0]
	}
	c, err := orchestrator.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}
