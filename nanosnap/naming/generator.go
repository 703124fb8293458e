// Package naming turns a test identity into snapshot keys.
//
// Repeated captures inside one test are told apart by a discriminator: either
// an explicit label chosen by the caller or a per-identity occurrence counter
// that starts at 1 and grows by one with every unlabeled capture.
package naming

import (
	"strconv"
	"sync"

	"github.com/arthur-debert/nanosnap/types"
)

// Generator hands out snapshot keys and owns the per-identity counters.
// One Generator lives for one run; counters are never persisted.
type Generator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewGenerator creates a generator with empty counters
func NewGenerator() *Generator {
	return &Generator{
		counters: make(map[string]int),
	}
}

// Key computes the snapshot key for the identity.
// A non-empty label is used verbatim and leaves the counter untouched, so
// reusing a label addresses the same snapshot again.
func (g *Generator) Key(id types.Identity, label string) types.Key {
	if label != "" {
		return types.NewKey(id, label)
	}
	return types.NewKey(id, strconv.Itoa(g.next(id.String())))
}

func (g *Generator) next(identity string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counters[identity]++
	return g.counters[identity]
}

// Count returns the last counter handed out for the identity, 0 if none
func (g *Generator) Count(id types.Identity) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[id.String()]
}

// Reset forgets all counters
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counters = make(map[string]int)
}
