package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates ids in order:
//
//	00000000-0000-0000-0000-000000000001
//	00000000-0000-0000-0000-000000000002
//	...
//
// The same transcript with a fresh SequenceIDs produces byte-identical
// output, which makes golden comparison possible.
//
// Thread-safety: all methods are safe for concurrent use.
type SequenceIDs struct {
	mu   sync.Mutex
	next uint64
}

// NewSequenceIDs creates a generator whose first id ends in 1.
func NewSequenceIDs() *SequenceIDs {
	return &SequenceIDs{next: 1}
}

// Generate returns the next id in the sequence.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := FormatID(g.next)
	g.next++
	return id
}

// Reset restarts the sequence at 1.
func (g *SequenceIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next = 1
}

// FormatID renders n the way SequenceIDs does.
func FormatID(n uint64) string {
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", n)
}
