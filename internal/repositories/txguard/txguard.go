// Package txguard enforces the reads-before-writes ordering that every review
// transaction handle must honour, whatever store backs it.
package txguard

import (
	"fmt"
	"sync"

	"hunarscan/internal/repositories/interfaces"
)

// Guard tracks whether a transaction has started writing. The zero value is
// ready to use.
type Guard struct {
	mu      sync.Mutex
	writing bool
	reads   int
	writes  int
}

// Read must be called before every read through the handle.
func (g *Guard) Read(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.writing {
		return fmt.Errorf("%s: %w", op, interfaces.ErrReadAfterWrite)
	}
	g.reads++
	return nil
}

// Write must be called before every write through the handle. It closes the
// read phase.
func (g *Guard) Write() {
	g.mu.Lock()
	g.writing = true
	g.writes++
	g.mu.Unlock()
}

func (g *Guard) Writing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writing
}

// Counts returns the number of reads and writes seen so far.
func (g *Guard) Counts() (reads, writes int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads, g.writes
}
