// Package effect provides time-varying per-bar signal transforms and the
// chain that applies them to a clip one bar at a time.
package effect

import "github.com/pipelined/loopmix/signal"

// Effect is a unit of per-bar signal processing with internal
// progression state. An effect is owned by exactly one chain and is
// never shared across clips.
type Effect interface {
	// Process applies the transform for the current state to a whole
	// bar of deinterleaved channels and advances the state exactly once.
	// The input is left untouched; a new signal is returned.
	Process(signal.Float64) signal.Float64
	// Step advances the progression state one unit.
	Step()
	// Done reports whether the effect has reached its final state.
	Done() bool
}

// Chain is an ordered queue of effects. At most the head effect is
// applied to a given bar.
type Chain struct {
	effects []Effect
}

// NewChain creates a chain holding the passed effects in order.
func NewChain(effects ...Effect) *Chain {
	return &Chain{effects: effects}
}

// Push appends an effect to the tail of the chain.
func (c *Chain) Push(e Effect) {
	c.effects = append(c.effects, e)
}

// Len returns the number of pending effects.
func (c *Chain) Len() int {
	return len(c.effects)
}

// Clear drops all pending effects. Bars already processed are not
// affected: an application in progress always completes atomically.
func (c *Chain) Clear() {
	c.effects = nil
}

// Apply processes the bar with the head effect. The head is removed if
// and only if it completed during this call, so an effect that finishes
// within a single application is applied to exactly one bar. An empty
// chain passes the bar through unmodified.
func (c *Chain) Apply(floats signal.Float64) signal.Float64 {
	if len(c.effects) == 0 {
		return floats
	}
	head := c.effects[0]
	out := head.Process(floats)
	if head.Done() {
		c.effects = c.effects[1:]
	}
	return out
}
