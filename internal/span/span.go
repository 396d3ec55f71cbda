// Package span models byte ranges inside an artifact and maps them to line/column positions.
package span

import (
	"fmt"
	"sort"
)

// Span is a half-open byte range [Start, End) in artifact text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// New returns a span, swapping bounds if they are reversed.
func New(start, end int) Span {
	if end < start {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}

// Len returns the number of bytes covered.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool { return s.End <= s.Start }

// Overlaps reports whether s and o share any byte, or are identical.
// Empty spans overlap only an identical span.
func (s Span) Overlaps(o Span) bool {
	if s == o {
		return true
	}
	if s.Empty() || o.Empty() {
		return false
	}
	return s.Start < o.End && o.Start < s.End
}

// Less orders spans by start, then end.
func (s Span) Less(o Span) bool {
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.End < o.End
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Position is a 1-based line and column (columns count bytes).
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Index maps byte offsets to positions for a single text.
type Index struct {
	lineStarts []int
	size       int
}

// NewIndex builds a line index over text.
func NewIndex(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{lineStarts: starts, size: len(text)}
}

// Position returns the line and column of a byte offset. Offsets outside
// the text are clamped.
func (x *Index) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > x.size {
		offset = x.size
	}
	line := sort.Search(len(x.lineStarts), func(i int) bool {
		return x.lineStarts[i] > offset
	}) - 1
	return Position{Line: line + 1, Column: offset - x.lineStarts[line] + 1}
}

// Lines returns the number of lines in the indexed text.
func (x *Index) Lines() int { return len(x.lineStarts) }
