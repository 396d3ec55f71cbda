package catalog

// Definitions is the raw, unvalidated catalog as read from YAML.
type Definitions struct {
	Signals []ScannerDef `yaml:"signals,omitempty"`
	Rules   []RuleDef    `yaml:"rules"`
	Bundles []BundleDef  `yaml:"bundles"`
}

// ScannerDef declares a catalog-specific signal scanner. Exactly one of
// Pattern or Keywords is set.
type ScannerDef struct {
	Kind     string   `yaml:"kind"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// RuleDef is one rule record.
type RuleDef struct {
	ID       string      `yaml:"id"`
	Severity string      `yaml:"severity"`
	Summary  string      `yaml:"summary,omitempty"`
	Tags     []string    `yaml:"tags,omitempty"`
	Trigger  TriggerDef  `yaml:"trigger"`
	Message  string      `yaml:"message"`
	Example  *ExampleDef `yaml:"example,omitempty"`
}

// TriggerDef is the tagged predicate specification. Kind selects which of
// the remaining fields apply.
type TriggerDef struct {
	Kind string `yaml:"kind"`

	// presence, absence
	Pattern string `yaml:"pattern,omitempty"`
	// absence: report at every signal of this kind instead of [0,0]
	Anchor string `yaml:"anchor,omitempty"`

	// pair
	Open   string `yaml:"open,omitempty"`
	Close  string `yaml:"close,omitempty"`
	Window int    `yaml:"window,omitempty"`

	// signal
	Signal    string         `yaml:"signal,omitempty"`
	Token     string         `yaml:"token,omitempty"`
	Detection map[string]any `yaml:"detection,omitempty"`
}

// ExampleDef is a documentation-only before/after pair.
type ExampleDef struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

// BundleDef is one bundle record.
type BundleDef struct {
	ID         string        `yaml:"id"`
	Summary    string        `yaml:"summary,omitempty"`
	Members    []string      `yaml:"members"`
	Activation ActivationDef `yaml:"activation"`
}

// ActivationDef selects when a bundle is in scope.
type ActivationDef struct {
	Mode    string   `yaml:"mode"`
	Signals []string `yaml:"signals"`
}

// Merge appends other after d, preserving definition order.
func (d Definitions) Merge(other Definitions) Definitions {
	return Definitions{
		Signals: append(append([]ScannerDef(nil), d.Signals...), other.Signals...),
		Rules:   append(append([]RuleDef(nil), d.Rules...), other.Rules...),
		Bundles: append(append([]BundleDef(nil), d.Bundles...), other.Bundles...),
	}
}
