package matcher

import (
	"context"
	"regexp"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/signal"
	"github.com/iyulab/guidecheck/internal/span"
)

// hit is a raw predicate firing before it becomes a Match.
type hit struct {
	span  span.Span
	token string
	kind  string
}

// input is everything a predicate may look at.
type input struct {
	ctx     context.Context
	text    string
	index   *span.Index
	signals signal.Set
	limit   int
}

// evaluate runs the trigger and feeds hits to emit until emit returns false.
func evaluate(t catalog.Trigger, in input, emit func(hit) bool) {
	switch t.Kind {
	case catalog.TriggerPresence:
		presence(t.Pattern, in, emit)
	case catalog.TriggerAbsence:
		absence(t, in, emit)
	case catalog.TriggerPair:
		pair(t, in, emit)
	case catalog.TriggerSignal:
		signals(t, in, emit)
	}
}

func presence(re *regexp.Regexp, in input, emit func(hit) bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(in.text, in.limit) {
		s := locate(loc)
		if !emit(hit{span: s, token: in.text[s.Start:s.End]}) {
			return
		}
	}
}

func absence(t catalog.Trigger, in input, emit func(hit) bool) {
	if t.Pattern.MatchString(in.text) {
		return
	}
	if t.Anchor == "" {
		emit(hit{})
		return
	}
	for _, s := range in.signals.OfKind(t.Anchor) {
		if !emit(hit{span: s.Span, token: s.Token, kind: s.Kind}) {
			return
		}
	}
}

// pair fires at every open match left without a close match after it.
// Each close pairs with at most one open.
func pair(t catalog.Trigger, in input, emit func(hit) bool) {
	opens := t.Open.FindAllStringIndex(in.text, -1)
	closes := t.Close.FindAllStringIndex(in.text, -1)
	used := make([]bool, len(closes))

	for _, o := range opens {
		paired := false
		for j, c := range closes {
			if used[j] || c[0] < o[1] {
				continue
			}
			if t.Window > 0 && c[0]-o[1] > t.Window {
				break
			}
			used[j] = true
			paired = true
			break
		}
		if paired {
			continue
		}
		if !emit(hit{span: span.Span{Start: o[0], End: o[1]}, token: in.text[o[0]:o[1]]}) {
			return
		}
	}
}

func signals(t catalog.Trigger, in input, emit func(hit) bool) {
	for _, s := range in.signals.OfKind(t.Signal) {
		if t.Token != nil && !t.Token.MatchString(s.Token) {
			continue
		}
		if t.Query != nil && !t.Query.Matches(in.ctx, s, in.index.Position(s.Span.Start)) {
			continue
		}
		if !emit(hit{span: s.Span, token: s.Token, kind: s.Kind}) {
			return
		}
	}
}

// locate returns the first participating capture group, or the whole match.
func locate(loc []int) span.Span {
	for g := 1; g*2+1 < len(loc); g++ {
		if loc[g*2] >= 0 {
			return span.Span{Start: loc[g*2], End: loc[g*2+1]}
		}
	}
	return span.Span{Start: loc[0], End: loc[1]}
}
