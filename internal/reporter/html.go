package reporter

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/matcher"
)

//go:embed templates/*.tmpl
var templates embed.FS

// PageData is the data model passed to the HTML template.
type PageData struct {
	GeneratedAt time.Time
	Version     string
	Catalog     string
	Summary     Summary
	Reports     []Report
}

// Reporter renders HTML pages from the embedded template.
type Reporter struct {
	tmpl *template.Template
}

// New parses the embedded HTML template.
func New() (*Reporter, error) {
	funcMap := template.FuncMap{
		"severityClass": func(s catalog.Severity) string {
			return "sev-" + strings.ToLower(s.String())
		},
		"bannerClass": func(banner string) string {
			switch banner {
			case "red":
				return "banner-red"
			case "yellow":
				return "banner-yellow"
			default:
				return "banner-green"
			}
		},
		"isEngine": func(c matcher.Category) bool {
			return c == matcher.CategoryEngine
		},
	}

	tmpl, err := template.New("report.html.tmpl").Funcs(funcMap).ParseFS(templates, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Reporter{tmpl: tmpl}, nil
}

// WriteHTML renders a full page. A zero Summary is filled in from the
// reports.
func (r *Reporter) WriteHTML(w io.Writer, data PageData) error {
	if data.Summary.Artifacts == 0 {
		data.Summary = Summarize(data.Reports)
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteHTML renders reports with the embedded template.
func WriteHTML(w io.Writer, reports []Report) error {
	r, err := New()
	if err != nil {
		return err
	}
	return r.WriteHTML(w, PageData{Reports: reports})
}
