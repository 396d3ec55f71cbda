// Package catalog loads, validates and freezes rule catalogs.
//
// A Catalog is immutable once Load returns it. Replacing rules means
// loading a new Catalog and swapping it through a Store.
package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"text/template"

	"github.com/iyulab/guidecheck/internal/sigma"
	"github.com/iyulab/guidecheck/internal/signal"
)

// ErrNotFound is returned when a rule or bundle id is not in the catalog.
var ErrNotFound = errors.New("not found")

// TriggerKind tags the predicate variant of a rule.
type TriggerKind string

const (
	TriggerPresence TriggerKind = "presence"
	TriggerAbsence  TriggerKind = "absence"
	TriggerPair     TriggerKind = "pair"
	TriggerSignal   TriggerKind = "signal"
)

// Trigger is a compiled predicate. Only the fields for Kind are set.
type Trigger struct {
	Kind TriggerKind

	Pattern *regexp.Regexp // presence, absence
	Anchor  string         // absence

	Open   *regexp.Regexp // pair
	Close  *regexp.Regexp // pair
	Window int            // pair

	Signal string         // signal
	Token  *regexp.Regexp // signal, optional
	Query  *sigma.Query   // signal, optional
}

// Example is documentation attached to a rule. It is never scanned or
// matched.
type Example struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Rule is a frozen rule definition.
type Rule struct {
	ID       string
	Severity Severity
	Summary  string
	Tags     []string
	Trigger  Trigger
	Message  string
	Example  *Example

	order int
	tmpl  *template.Template
}

// Order returns the rule's position in catalog definition order.
func (r Rule) Order() int { return r.order }

func (r Rule) clone() Rule {
	r.Tags = append([]string(nil), r.Tags...)
	if r.Example != nil {
		ex := *r.Example
		r.Example = &ex
	}
	return r
}

// ActivationMode selects how a bundle's signal list is interpreted.
type ActivationMode string

const (
	AllOf ActivationMode = "all-of"
	AnyOf ActivationMode = "any-of"
)

// Bundle is a frozen group of rules sharing an activation predicate.
type Bundle struct {
	ID      string
	Summary string
	Members []string
	Mode    ActivationMode
	Signals []string
}

// Catalog is an immutable, validated rule collection.
type Catalog struct {
	rules       []Rule
	ruleIndex   map[string]int
	bundles     []Bundle
	bundleIndex map[string]int
	scanners    []signal.Scanner
	fingerprint string
}

// Rules returns all rules in definition order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.clone()
	}
	return out
}

// Rule looks up a rule by id.
func (c *Catalog) Rule(id string) (Rule, error) {
	i, ok := c.ruleIndex[id]
	if !ok {
		return Rule{}, fmt.Errorf("rule %q: %w", id, ErrNotFound)
	}
	return c.rules[i].clone(), nil
}

// Order returns the definition position of a rule id.
func (c *Catalog) Order(id string) (int, error) {
	i, ok := c.ruleIndex[id]
	if !ok {
		return 0, fmt.Errorf("rule %q: %w", id, ErrNotFound)
	}
	return i, nil
}

// Bundles returns all bundles in definition order.
func (c *Catalog) Bundles() []Bundle {
	out := make([]Bundle, len(c.bundles))
	for i, b := range c.bundles {
		out[i] = b
		out[i].Members = append([]string(nil), b.Members...)
		out[i].Signals = append([]string(nil), b.Signals...)
	}
	return out
}

// Bundle looks up a bundle by id.
func (c *Catalog) Bundle(id string) (Bundle, error) {
	i, ok := c.bundleIndex[id]
	if !ok {
		return Bundle{}, fmt.Errorf("bundle %q: %w", id, ErrNotFound)
	}
	b := c.bundles[i]
	b.Members = append([]string(nil), b.Members...)
	b.Signals = append([]string(nil), b.Signals...)
	return b, nil
}

// Scanners returns the built-in scanners followed by those the catalog
// defines.
func (c *Catalog) Scanners() []signal.Scanner {
	out := make([]signal.Scanner, len(c.scanners))
	copy(out, c.scanners)
	return out
}

// Fingerprint is a stable digest of the definitions the catalog was
// loaded from.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

// ShortFingerprint is the first 12 characters of the fingerprint.
func (c *Catalog) ShortFingerprint() string {
	if len(c.fingerprint) > 12 {
		return c.fingerprint[:12]
	}
	return c.fingerprint
}
