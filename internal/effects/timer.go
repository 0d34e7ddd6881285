package effects

import "time"

// TickGate groups condition damage records into ticks: records closer than
// the gap to the previous one belong to the same tick.
type TickGate struct {
	gap  time.Duration
	last time.Duration
	seen bool
}

// NewTickGate creates a gate with the given grouping gap.
func NewTickGate(gap time.Duration) *TickGate {
	return &TickGate{gap: gap}
}

// Observe records a damage record at now and reports whether it starts a new
// tick. The last observed time is always updated.
func (g *TickGate) Observe(now time.Duration) bool {
	fresh := !g.seen || now-g.last > g.gap
	g.last = now
	g.seen = true
	return fresh
}

// Last returns the time of the most recent observation.
func (g *TickGate) Last() time.Duration {
	return g.last
}
