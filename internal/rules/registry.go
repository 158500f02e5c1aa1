package rules

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Registry holds the process-wide active rule set. Reads take an atomic
// snapshot, so an analysis call always sees one consistent catalog version
// even while a reload is in flight. Reloads are serialized and replace the
// set wholesale; a failed reload leaves the prior set active.
type Registry struct {
	current  atomic.Pointer[RuleSet]
	reloadMu sync.Mutex
}

// NewRegistry creates a registry with an initial rule set.
func NewRegistry(initial *RuleSet) (*Registry, error) {
	if initial == nil || initial.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	r := &Registry{}
	r.current.Store(initial)
	return r, nil
}

// Current returns the active rule set snapshot.
func (r *Registry) Current() *RuleSet {
	return r.current.Load()
}

// Reload loads the catalog at path and atomically swaps it in. On any load
// or validation error the active set is untouched and the error is returned
// to the caller.
func (r *Registry) Reload(path string) error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	set, err := LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("reload rejected, previous rule set remains active: %w", err)
	}

	r.current.Store(set)
	return nil
}

// Swap atomically replaces the active set with an already-built one.
// Used by callers that parse catalogs from sources other than files.
func (r *Registry) Swap(set *RuleSet) error {
	if set == nil || set.Len() == 0 {
		return ErrEmptyCatalog
	}
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()
	r.current.Store(set)
	return nil
}
