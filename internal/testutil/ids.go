package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator generates predictable record ids: "<prefix>-0001",
// "<prefix>-0002", and so on.
//
// Production code uses command.UUIDv7Generator, whose output differs on every
// run. Swapping in a SequenceGenerator makes journal rows and golden snapshots
// byte-identical across runs.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix becomes "rec".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "rec"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
//
// Implements command.IDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
