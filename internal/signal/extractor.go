package signal

import (
	"bytes"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// ExtractionError reports artifact text that cannot be tokenized.
type ExtractionError struct {
	Offset int
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at byte %d: %s", e.Offset, e.Reason)
}

// Extractor runs independent scanners and unions their results.
type Extractor struct {
	scanners []Scanner
	logger   *slog.Logger
}

// NewExtractor creates an Extractor over scanners.
func NewExtractor(logger *slog.Logger, scanners ...Scanner) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{scanners: scanners, logger: logger}
}

// Kinds returns every kind some scanner can produce.
func (e *Extractor) Kinds() map[string]bool {
	kinds := make(map[string]bool, len(e.scanners))
	for _, s := range e.scanners {
		kinds[s.Kind()] = true
	}
	return kinds
}

// Extract scans text with every scanner. A scanner that panics contributes
// nothing; the remaining scanners still run.
func (e *Extractor) Extract(text string) (Set, error) {
	if err := Validate([]byte(text)); err != nil {
		return Set{}, err
	}
	var all []Signal
	for _, s := range e.scanners {
		all = append(all, e.scan(s, text)...)
	}
	return NewSet(all...), nil
}

func (e *Extractor) scan(s Scanner, text string) (out []Signal) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("scanner failed", "component", "signal", "kind", s.Kind(), "panic", fmt.Sprint(r))
			out = nil
		}
	}()
	return s.Scan(text)
}

// Validate rejects data that is not UTF-8 text.
func Validate(data []byte) error {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return &ExtractionError{Offset: i, Reason: "NUL byte in text (binary input?)"}
	}
	if !utf8.Valid(data) {
		off := 0
		for off < len(data) {
			r, size := utf8.DecodeRune(data[off:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			off += size
		}
		return &ExtractionError{Offset: off, Reason: "invalid UTF-8 encoding"}
	}
	return nil
}
