package reporter

import (
	"fmt"
	"strings"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
	"github.com/iyulab/guidecheck/internal/resolver"
)

// Summary counts diagnostics for display.
type Summary struct {
	Artifacts  int    `json:"artifacts"`
	Total      int    `json:"total"`
	Critical   int    `json:"critical"`
	High       int    `json:"high"`
	Medium     int    `json:"medium"`
	Low        int    `json:"low"`
	Engine     int    `json:"engine"`
	Superseded int    `json:"superseded"`
	Banner     string `json:"banner"` // red, yellow, green
	Headline   string `json:"headline"`
}

// Summarize aggregates the summaries of all reports.
func Summarize(reports []Report) Summary {
	var all []resolver.Diagnostic
	for _, r := range reports {
		all = append(all, r.Diagnostics...)
	}
	s := summarize(all)
	s.Artifacts = len(reports)
	return s
}

func summarize(diags []resolver.Diagnostic) Summary {
	s := Summary{Artifacts: 1, Total: len(diags)}
	for _, d := range diags {
		switch d.Severity {
		case catalog.Critical:
			s.Critical++
		case catalog.High:
			s.High++
		case catalog.Medium:
			s.Medium++
		case catalog.Low:
			s.Low++
		}
		if d.Category == matcher.CategoryEngine {
			s.Engine++
		}
		s.Superseded += len(d.Superseded)
	}
	s.Banner, s.Headline = banner(s)
	return s
}

// banner picks the page banner from the worst severity present.
func banner(s Summary) (string, string) {
	if s.Total == 0 {
		return "green", "No findings"
	}
	counts := map[catalog.Severity]int{
		catalog.Critical: s.Critical,
		catalog.High:     s.High,
		catalog.Medium:   s.Medium,
		catalog.Low:      s.Low,
	}
	var parts []string
	for _, sev := range catalog.Severities {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	headline := strings.Join(parts, ", ")
	switch {
	case s.Critical > 0 || s.High > 0:
		return "red", headline
	case s.Medium > 0:
		return "yellow", headline
	default:
		return "green", headline
	}
}
