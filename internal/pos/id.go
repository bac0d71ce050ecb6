package pos

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces sale IDs. The production generator is random
// UUIDs; tests inject a fixed sequence for deterministic output.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random (v4) UUID sale IDs, falling back to a
// time-derived string in the unlikely event the random source fails.
//
// Thread-safety: stateless, safe for concurrent use.
type UUIDGenerator struct{}

// NewID returns a fresh sale ID.
func (UUIDGenerator) NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("sale-%d", time.Now().UnixNano())
	}
	return id.String()
}

// FixedIDs returns predetermined IDs in order, for tests. Panics when
// exhausted so a misconfigured test fails fast.
type FixedIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDs creates a generator that returns ids in order.
func NewFixedIDs(ids ...string) *FixedIDs {
	return &FixedIDs{ids: ids}
}

// NewID returns the next predetermined ID.
func (g *FixedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
