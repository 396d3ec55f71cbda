package catalog

import (
	"errors"
	"sync/atomic"
)

// Store holds the current catalog snapshot. Reload replaces the whole
// catalog atomically; sessions keep whatever snapshot they started with.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore creates a Store serving c.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Snapshot returns the catalog in effect right now.
func (s *Store) Snapshot() *Catalog { return s.current.Load() }

// Reload loads a new catalog and swaps it in only when loading succeeds.
func (s *Store) Reload(load func() (*Catalog, error)) error {
	c, err := load()
	if err != nil {
		return err
	}
	if c == nil {
		return errors.New("reload: loader returned no catalog")
	}
	s.current.Store(c)
	return nil
}
