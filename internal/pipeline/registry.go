package pipeline

import (
	"fmt"
	"sync"
)

// RunRegistry guards against concurrent runs for the same content
// identifier. It is injected into the Runner by its owner rather than held
// as process-global state, so its lifetime matches whoever coordinates runs.
type RunRegistry struct {
	mu       sync.Mutex
	inFlight map[string]bool
}

// NewRunRegistry creates an empty registry.
func NewRunRegistry() *RunRegistry {
	return &RunRegistry{inFlight: make(map[string]bool)}
}

// Begin marks a content identifier as in flight. A second Begin for the same
// identifier fails fast instead of duplicating work.
func (r *RunRegistry) Begin(contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[contentID] {
		return fmt.Errorf("a run for content %s is already in flight", contentID)
	}
	r.inFlight[contentID] = true
	return nil
}

// End releases a content identifier. Safe to call for identifiers that were
// never begun.
func (r *RunRegistry) End(contentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, contentID)
}

// InFlight reports whether a run for the identifier is active.
func (r *RunRegistry) InFlight(contentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inFlight[contentID]
}
