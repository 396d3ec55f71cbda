package signal

import (
	"fmt"
	"regexp"
	"strings"

	ahocorasick "github.com/BobuSumisu/aho-corasick"

	"github.com/iyulab/guidecheck/internal/span"
)

// Scanner recognizes one signal kind.
type Scanner interface {
	Kind() string
	Scan(text string) []Signal
}

// PatternScanner emits a signal for every non-overlapping regexp match.
// When the expression has a capture group, the first group that
// participated in the match supplies the token and span.
type PatternScanner struct {
	kind string
	re   *regexp.Regexp
}

// NewPatternScanner compiles pattern into a scanner for kind.
func NewPatternScanner(kind, pattern string) (*PatternScanner, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("scanner kind is required")
	}
	if pattern == "" {
		return nil, fmt.Errorf("scanner %q: pattern is empty", kind)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("scanner %q: %w", kind, err)
	}
	return &PatternScanner{kind: kind, re: re}, nil
}

func mustPattern(kind, pattern string) *PatternScanner {
	s, err := NewPatternScanner(kind, pattern)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind implements Scanner.
func (p *PatternScanner) Kind() string { return p.kind }

// Scan implements Scanner.
func (p *PatternScanner) Scan(text string) []Signal {
	var out []Signal
	for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		for g := 1; g*2+1 < len(loc); g++ {
			if loc[g*2] >= 0 {
				start, end = loc[g*2], loc[g*2+1]
				break
			}
		}
		out = append(out, Signal{
			Kind:  p.kind,
			Span:  span.Span{Start: start, End: end},
			Token: text[start:end],
		})
	}
	return out
}

// KeywordScanner finds literal keywords with a single aho-corasick pass.
// Keywords must stand on identifier boundaries to count.
type KeywordScanner struct {
	kind string
	trie *ahocorasick.Trie
}

// NewKeywordScanner builds a scanner for kind recognizing any of keywords.
func NewKeywordScanner(kind string, keywords ...string) (*KeywordScanner, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("scanner kind is required")
	}
	var words []string
	for _, k := range keywords {
		if k != "" {
			words = append(words, k)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("scanner %q: no keywords", kind)
	}
	trie := ahocorasick.NewTrieBuilder().AddStrings(words).Build()
	return &KeywordScanner{kind: kind, trie: trie}, nil
}

func mustKeywords(kind string, keywords ...string) *KeywordScanner {
	s, err := NewKeywordScanner(kind, keywords...)
	if err != nil {
		panic(err)
	}
	return s
}

// Kind implements Scanner.
func (k *KeywordScanner) Kind() string { return k.kind }

// Scan implements Scanner.
func (k *KeywordScanner) Scan(text string) []Signal {
	var out []Signal
	for _, m := range k.trie.MatchString(text) {
		word := m.MatchString()
		start := int(m.Pos())
		end := start + len(word)
		if !boundary(text, start, end, word) {
			continue
		}
		out = append(out, Signal{
			Kind:  k.kind,
			Span:  span.Span{Start: start, End: end},
			Token: word,
		})
	}
	return out
}

// boundary rejects matches glued to identifier characters on a side where
// the keyword itself begins or ends with one.
func boundary(text string, start, end int, word string) bool {
	if start > 0 && isIdent(word[0]) && isIdent(text[start-1]) {
		return false
	}
	if end < len(text) && isIdent(word[len(word)-1]) && isIdent(text[end]) {
		return false
	}
	return true
}

func isIdent(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
