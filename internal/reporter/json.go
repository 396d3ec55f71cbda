package reporter

import (
	"encoding/json"
	"fmt"
	"io"
)

// Document is the structured output of a run.
type Document struct {
	Summary Summary  `json:"summary"`
	Reports []Report `json:"reports"`
}

// WriteJSON writes reports as one indented JSON document. Identical input
// produces identical bytes.
func WriteJSON(w io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Document{Summary: Summarize(reports), Reports: reports}); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
