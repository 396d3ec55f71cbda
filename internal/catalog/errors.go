package catalog

import (
	"fmt"
	"strings"
)

// Error reports every problem found while loading a catalog. A catalog
// with any problem is rejected as a whole.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	if len(e.Problems) == 1 {
		return "catalog: " + e.Problems[0]
	}
	return fmt.Sprintf("catalog: %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *Error) addf(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *Error) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}
