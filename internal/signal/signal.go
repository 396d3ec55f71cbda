// Package signal detects lexical and structural cues in artifact text.
package signal

import (
	"sort"

	"github.com/iyulab/guidecheck/internal/span"
)

// Signal is a single detected cue.
type Signal struct {
	Kind  string    `json:"kind"`
	Span  span.Span `json:"span"`
	Token string    `json:"token"`
}

func less(a, b Signal) bool {
	if a.Span != b.Span {
		return a.Span.Less(b.Span)
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Token < b.Token
}

// Set is an immutable, deduplicated collection of signals in canonical
// order (span, kind, token). Two sets built from the same signals are
// equal regardless of the order the signals were produced in.
type Set struct {
	items  []Signal
	byKind map[string][]Signal
}

// NewSet builds a Set from signals in any order.
func NewSet(signals ...Signal) Set {
	items := make([]Signal, len(signals))
	copy(items, signals)
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })

	out := items[:0]
	for i, s := range items {
		if i > 0 && s == items[i-1] {
			continue
		}
		out = append(out, s)
	}

	byKind := make(map[string][]Signal)
	for _, s := range out {
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}
	return Set{items: out, byKind: byKind}
}

// Len returns the number of signals.
func (s Set) Len() int { return len(s.items) }

// All returns the signals in canonical order.
func (s Set) All() []Signal {
	out := make([]Signal, len(s.items))
	copy(out, s.items)
	return out
}

// Has reports whether at least one signal of kind is present.
func (s Set) Has(kind string) bool { return len(s.byKind[kind]) > 0 }

// OfKind returns the signals of kind in canonical order.
func (s Set) OfKind(kind string) []Signal {
	src := s.byKind[kind]
	out := make([]Signal, len(src))
	copy(out, src)
	return out
}

// Kinds returns the distinct kinds present, sorted.
func (s Set) Kinds() []string {
	kinds := make([]string, 0, len(s.byKind))
	for k := range s.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
