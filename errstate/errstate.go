// Package errstate holds the per-family last-error slot used by the cms and
// imagein handle families. Every fallible entry point clears its family's
// cell before doing any work and records a failure before returning a
// sentinel; pure accessors and the pixel hot paths never touch it.
package errstate

import "sync"

// Cell is a last-error slot for one handle family. Reads are non-consuming:
// repeated calls to Last without an intervening fallible operation return the
// same error. The zero value is an empty cell, ready for use.
//
// The cell is a single process-wide slot per family, not a goroutine-local
// one; callers that interleave fallible calls from multiple goroutines must
// query the cell from the goroutine that made the call before yielding.
type Cell struct {
	mu  sync.Mutex
	err error
}

// Clear empties the cell. Called at the top of every fallible entry point.
func (c *Cell) Clear() {
	c.mu.Lock()
	c.err = nil
	c.mu.Unlock()
}

// Set records err as the most recent failure. A nil err is ignored so that
// callers can unconditionally record the result of a fallible step.
func (c *Cell) Set(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Last returns the most recently recorded failure, or nil when no fallible
// operation has failed since the last clear.
func (c *Cell) Last() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
