package naming

import (
	"fmt"
	"sync"
)

// CollisionResolver tracks output locations claimed by documents and resolves
// duplicates by appending " - dupN" suffixes. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // location → document that owns it
	counters map[string]int    // requested location → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final location for unit. If requested is unclaimed (or
// already owned by unit) it is returned as-is; otherwise the first free
// "<requested> - dupN" is claimed.
func (cr *CollisionResolver) Resolve(unit, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	owner, exists := cr.owners[requested]
	if !exists || owner == unit {
		cr.owners[requested] = unit
		return requested
	}

	counter := cr.counters[requested]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := fmt.Sprintf("%s - dup%d", requested, counter)
		cOwner, cExists := cr.owners[candidate]
		if !cExists || cOwner == unit {
			cr.counters[requested] = counter + 1
			cr.owners[candidate] = unit
			return candidate
		}
		counter++
	}
}
