// Package playerlock serializes turn resolution per player.
//
// Locks are striped over a fixed mutex ring rather than allocated per
// player, bounding memory for an unbounded player population. Two
// players may share a stripe; correctness only requires that the same
// player always maps to the same mutex.
package playerlock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Ring is a striped mutex set keyed by player ID.
type Ring struct {
	stripes []sync.Mutex
}

// New builds a ring with the given stripe count; non-positive counts
// fall back to the default.
func New(stripes int) *Ring {
	if stripes <= 0 {
		stripes = defaultStripes
	}
	return &Ring{stripes: make([]sync.Mutex, stripes)}
}

// Lock acquires the stripe for a player and returns its unlock func.
func (r *Ring) Lock(playerID string) func() {
	mu := r.stripe(playerID)
	mu.Lock()
	return mu.Unlock
}

func (r *Ring) stripe(playerID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return &r.stripes[h.Sum32()%uint32(len(r.stripes))]
}
