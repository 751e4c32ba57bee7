package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator returns order ids "ORD00001", "ORD00002", ...
//
// Ids keep the production shape: eight upper-case characters.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu  sync.Mutex
	seq int
}

// Generate returns the next id in sequence.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("ORD%05d", g.seq)
}

// ConstantIDGenerator returns the same id every time.
//
// Useful for exercising id-collision handling.
//
// Thread-safety: ConstantIDGenerator is stateless and safe for concurrent use.
type ConstantIDGenerator struct {
	id string
}

// NewConstantIDGenerator creates a generator that always returns id.
// If id is empty, Generate returns "FIXED000".
func NewConstantIDGenerator(id string) *ConstantIDGenerator {
	if id == "" {
		id = "FIXED000"
	}
	return &ConstantIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *ConstantIDGenerator) Generate() string {
	return g.id
}
