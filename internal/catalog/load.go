package catalog

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/iyulab/guidecheck/internal/sigma"
	"github.com/iyulab/guidecheck/internal/signal"
)

//go:embed defaults/*.yaml
var embeddedDefaults embed.FS

// Default loads the catalog embedded in the binary.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(embeddedDefaults, "defaults")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadPath loads a catalog from a YAML file or a directory of YAML files.
func LoadPath(path string) (*Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &Error{Problems: []string{fmt.Sprintf("source %s: %v", path, err)}}
	}
	if info.IsDir() {
		return LoadFS(os.DirFS(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Problems: []string{fmt.Sprintf("source %s: %v", path, err)}}
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, &Error{Problems: []string{fmt.Sprintf("%s: %v", filepath.Base(path), err)}}
	}
	return Load(defs)
}

// LoadFS merges every .yml/.yaml file in fsys, in lexical path order, and
// loads the result.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch filepath.Ext(path) {
		case ".yml", ".yaml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Problems: []string{fmt.Sprintf("walk: %v", err)}}
	}
	sort.Strings(paths)

	var merged Definitions
	cerr := &Error{}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			cerr.addf("%s: %v", path, err)
			continue
		}
		defs, err := Parse(data)
		if err != nil {
			cerr.addf("%s: %v", path, err)
			continue
		}
		merged = merged.Merge(defs)
	}
	if err := cerr.orNil(); err != nil {
		return nil, err
	}
	return Load(merged)
}

// Parse decodes one YAML catalog document. Unknown fields and further
// documents after the first are rejected.
func Parse(data []byte) (Definitions, error) {
	var defs Definitions
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return defs, nil
		}
		return Definitions{}, fmt.Errorf("parse yaml: %w", err)
	}
	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return defs, nil
	case err != nil:
		return Definitions{}, fmt.Errorf("parse yaml: %w", err)
	default:
		return Definitions{}, fmt.Errorf("parse yaml: line %d: one document per catalog file, split catalogs into a directory", extra.Line)
	}
}

// Load validates defs and returns a frozen Catalog. Any problem fails the
// whole load with *Error.
func Load(defs Definitions) (*Catalog, error) {
	cerr := &Error{}
	c := &Catalog{
		ruleIndex:   make(map[string]int, len(defs.Rules)),
		bundleIndex: make(map[string]int, len(defs.Bundles)),
		scanners:    signal.Builtin(),
	}

	kinds := make(map[string]bool)
	builtin := make(map[string]bool)
	for _, sc := range c.scanners {
		kinds[sc.Kind()] = true
		builtin[sc.Kind()] = true
	}

	for i, sd := range defs.Signals {
		sc, err := compileScanner(sd, builtin)
		if err != nil {
			cerr.addf("signal %d: %v", i, err)
			continue
		}
		kinds[sd.Kind] = true
		c.scanners = append(c.scanners, sc)
	}

	for i, rd := range defs.Rules {
		label := fmt.Sprintf("rule %d", i)
		if rd.ID != "" {
			label = fmt.Sprintf("rule %q", rd.ID)
		}
		r, problems := compileRule(rd, kinds)
		for _, p := range problems {
			cerr.addf("%s: %s", label, p)
		}
		if rd.ID == "" {
			continue
		}
		if _, dup := c.ruleIndex[rd.ID]; dup {
			cerr.addf("%s: duplicate rule id", label)
			continue
		}
		r.order = len(c.rules)
		c.ruleIndex[rd.ID] = r.order
		c.rules = append(c.rules, r)
	}

	for i, bd := range defs.Bundles {
		label := fmt.Sprintf("bundle %d", i)
		if bd.ID != "" {
			label = fmt.Sprintf("bundle %q", bd.ID)
		}
		b, problems := compileBundle(bd, c.ruleIndex, kinds)
		for _, p := range problems {
			cerr.addf("%s: %s", label, p)
		}
		if bd.ID == "" {
			continue
		}
		if _, dup := c.bundleIndex[bd.ID]; dup {
			cerr.addf("%s: duplicate bundle id", label)
			continue
		}
		c.bundleIndex[bd.ID] = len(c.bundles)
		c.bundles = append(c.bundles, b)
	}

	if err := cerr.orNil(); err != nil {
		return nil, err
	}

	canon, err := yaml.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("fingerprint catalog: %w", err)
	}
	sum := sha256.Sum256(canon)
	c.fingerprint = hex.EncodeToString(sum[:])
	return c, nil
}

func compileScanner(sd ScannerDef, builtin map[string]bool) (signal.Scanner, error) {
	kind := strings.TrimSpace(sd.Kind)
	switch {
	case kind == "":
		return nil, fmt.Errorf("kind is required")
	case builtin[kind]:
		return nil, fmt.Errorf("kind %q is built in", kind)
	case sd.Pattern != "" && len(sd.Keywords) > 0:
		return nil, fmt.Errorf("scanner %q: set pattern or keywords, not both", kind)
	case sd.Pattern != "":
		return signal.NewPatternScanner(kind, sd.Pattern)
	default:
		return signal.NewKeywordScanner(kind, sd.Keywords...)
	}
}

func compileRule(rd RuleDef, kinds map[string]bool) (Rule, []string) {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	r := Rule{
		ID:      rd.ID,
		Summary: rd.Summary,
		Tags:    append([]string(nil), rd.Tags...),
		Message: rd.Message,
	}
	if strings.TrimSpace(rd.ID) == "" {
		add("id is required")
	} else if strings.HasPrefix(rd.ID, EngineRulePrefix) {
		add("id prefix %q is reserved", EngineRulePrefix)
	}

	sev, err := ParseSeverity(rd.Severity)
	if err != nil {
		add("%v", err)
	}
	r.Severity = sev

	if strings.TrimSpace(rd.Message) == "" {
		add("message is required")
	} else {
		tmpl, err := template.New(rd.ID).Option("missingkey=error").Parse(rd.Message)
		if err != nil {
			add("message template: %v", err)
		} else if err := tmpl.Execute(io.Discard, MessageData{}); err != nil {
			add("message template: %v", err)
		} else {
			r.tmpl = tmpl
		}
	}

	trig, err := compileTrigger(rd.ID, rd.Trigger, kinds)
	if err != nil {
		add("trigger: %v", err)
	}
	r.Trigger = trig

	if rd.Example != nil {
		r.Example = &Example{Before: rd.Example.Before, After: rd.Example.After}
	}
	return r, problems
}

func compileTrigger(id string, td TriggerDef, kinds map[string]bool) (Trigger, error) {
	t := Trigger{Kind: TriggerKind(strings.ToLower(strings.TrimSpace(td.Kind)))}
	var err error
	switch t.Kind {
	case TriggerPresence:
		t.Pattern, err = compilePattern("pattern", td.Pattern)
	case TriggerAbsence:
		t.Pattern, err = compilePattern("pattern", td.Pattern)
		if err == nil && td.Anchor != "" {
			if !kinds[td.Anchor] {
				return t, fmt.Errorf("anchor: unknown signal kind %q", td.Anchor)
			}
			t.Anchor = td.Anchor
		}
	case TriggerPair:
		if t.Open, err = compilePattern("open", td.Open); err != nil {
			return t, err
		}
		if t.Close, err = compilePattern("close", td.Close); err != nil {
			return t, err
		}
		if td.Window < 0 {
			return t, fmt.Errorf("window must not be negative")
		}
		t.Window = td.Window
	case TriggerSignal:
		if td.Signal == "" {
			return t, fmt.Errorf("signal kind is required")
		}
		if !kinds[td.Signal] {
			return t, fmt.Errorf("unknown signal kind %q", td.Signal)
		}
		t.Signal = td.Signal
		if td.Token != "" {
			if t.Token, err = regexp.Compile(td.Token); err != nil {
				return t, fmt.Errorf("token: %w", err)
			}
		}
		if td.Detection != nil {
			if t.Query, err = sigma.Compile(id, td.Signal, td.Detection); err != nil {
				return t, fmt.Errorf("detection: %w", err)
			}
		}
	case "":
		return t, fmt.Errorf("kind is required")
	default:
		return t, fmt.Errorf("unknown kind %q (want presence, absence, pair or signal)", td.Kind)
	}
	return t, err
}

func compilePattern(field, pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%s is empty", field)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return re, nil
}

func compileBundle(bd BundleDef, rules map[string]int, kinds map[string]bool) (Bundle, []string) {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	b := Bundle{
		ID:      bd.ID,
		Summary: bd.Summary,
		Mode:    ActivationMode(strings.ToLower(strings.TrimSpace(bd.Activation.Mode))),
	}
	if strings.TrimSpace(bd.ID) == "" {
		add("id is required")
	}
	if len(bd.Members) == 0 {
		add("members are required")
	}
	seen := make(map[string]bool, len(bd.Members))
	for _, m := range bd.Members {
		if _, ok := rules[m]; !ok {
			add("member %q is not a rule in the catalog", m)
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		b.Members = append(b.Members, m)
	}

	switch b.Mode {
	case AllOf, AnyOf:
	default:
		add("activation mode %q (want all-of or any-of)", bd.Activation.Mode)
	}
	if len(bd.Activation.Signals) == 0 {
		add("activation signals are required")
	}
	for _, k := range bd.Activation.Signals {
		if !kinds[k] {
			add("activation: unknown signal kind %q", k)
			continue
		}
		b.Signals = append(b.Signals, k)
	}
	return b, problems
}
