package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/iyulab/guidecheck/internal/catalog"
)

// RuleEntry is the listing form of a rule.
type RuleEntry struct {
	ID       string           `json:"id"`
	Severity catalog.Severity `json:"severity"`
	Trigger  string           `json:"trigger"`
	Summary  string           `json:"summary,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
	Bundles  []string         `json:"bundles"`
	Message  string           `json:"message"`
	Example  *catalog.Example `json:"example,omitempty"`
}

// RuleEntries lists rules in catalog order with the bundles that hold them.
func RuleEntries(c *catalog.Catalog) []RuleEntry {
	owners := make(map[string][]string)
	for _, b := range c.Bundles() {
		for _, id := range b.Members {
			owners[id] = append(owners[id], b.ID)
		}
	}
	rules := c.Rules()
	out := make([]RuleEntry, 0, len(rules))
	for _, r := range rules {
		bundles := owners[r.ID]
		if bundles == nil {
			bundles = []string{}
		}
		out = append(out, RuleEntry{
			ID:       r.ID,
			Severity: r.Severity,
			Trigger:  string(r.Trigger.Kind),
			Summary:  r.Summary,
			Tags:     r.Tags,
			Bundles:  bundles,
			Message:  r.Message,
			Example:  r.Example,
		})
	}
	return out
}

// WriteCatalogTable writes one aligned row per rule.
func WriteCatalogTable(w io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tTRIGGER\tBUNDLES\tSUMMARY")
	for _, e := range RuleEntries(c) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Severity, e.Trigger, strings.Join(e.Bundles, ","), e.Summary)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// WriteCatalogJSON writes the rule listing as JSON.
func WriteCatalogJSON(w io.Writer, c *catalog.Catalog) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(RuleEntries(c)); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return nil
}

// WriteExplain documents one rule, including its example pair.
func WriteExplain(w io.Writer, c *catalog.Catalog, id string) error {
	r, err := c.Rule(id)
	if err != nil {
		return err
	}
	var bundles []string
	for _, b := range c.Bundles() {
		for _, m := range b.Members {
			if m == id {
				bundles = append(bundles, b.ID)
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", r.ID, r.Severity)
	if r.Summary != "" {
		fmt.Fprintf(&sb, "  %s\n", r.Summary)
	}
	fmt.Fprintf(&sb, "\ntrigger:  %s\n", r.Trigger.Kind)
	if len(bundles) > 0 {
		fmt.Fprintf(&sb, "bundles:  %s\n", strings.Join(bundles, ", "))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(&sb, "tags:     %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Fprintf(&sb, "message:  %s\n", r.Message)
	if r.Example != nil {
		sb.WriteString("\nbefore:\n")
		sb.WriteString(indent(r.Example.Before))
		sb.WriteString("\nafter:\n")
		sb.WriteString(indent(r.Example.After))
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write explanation: %w", err)
	}
	return nil
}

func indent(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return "    (none)\n"
	}
	return "    " + strings.ReplaceAll(s, "\n", "\n    ") + "\n"
}
