// Package activation decides which bundles are in scope for an artifact.
package activation

import (
	"github.com/iyulab/guidecheck/internal/catalog"
	"github.com/iyulab/guidecheck/internal/signal"
)

// Satisfied reports whether a bundle's activation predicate holds for the
// signal set.
func Satisfied(b catalog.Bundle, signals signal.Set) bool {
	if len(b.Signals) == 0 {
		return false
	}
	switch b.Mode {
	case catalog.AllOf:
		for _, k := range b.Signals {
			if !signals.Has(k) {
				return false
			}
		}
		return true
	case catalog.AnyOf:
		for _, k := range b.Signals {
			if signals.Has(k) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Activate returns the ids of the bundles whose predicate holds, in
// catalog order. No bundle is active by default.
func Activate(c *catalog.Catalog, signals signal.Set) []string {
	if signals.Len() == 0 {
		return nil
	}
	var active []string
	for _, b := range c.Bundles() {
		if Satisfied(b, signals) {
			active = append(active, b.ID)
		}
	}
	return active
}
