package catalog

import (
	"strings"
)

// MessageData is the value a rule's message template is executed with.
type MessageData struct {
	Rule   string
	Kind   string
	Token  string
	Line   int
	Column int
	Start  int
	End    int
}

// Render executes the message template. If execution fails the raw
// template text is returned with the error.
func (r Rule) Render(data MessageData) (string, error) {
	if r.tmpl == nil {
		return r.Message, nil
	}
	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return r.Message, err
	}
	return b.String(), nil
}
