package effects

import "time"

// Counter is the duration-unaware stack count derived from a combat log,
// where every application and removal is observed directly.
type Counter struct {
	counts map[uint32]int
}

// NewCounter returns an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[uint32]int)}
}

// Add records one applied stack.
func (c *Counter) Add(skill uint32) {
	c.counts[skill]++
}

// Remove drops one stack, never going below zero.
func (c *Counter) Remove(skill uint32) {
	if c.counts[skill] > 0 {
		c.counts[skill]--
	}
}

// Clear resets skill to zero stacks.
func (c *Counter) Clear(skill uint32) {
	delete(c.counts, skill)
}

// StackCount returns the current count. The time argument only satisfies the
// stat model's reader contract.
func (c *Counter) StackCount(skill uint32, _ time.Duration) (int, error) {
	return c.counts[skill], nil
}

// IsApplied reports whether skill has any stack.
func (c *Counter) IsApplied(skill uint32, _ time.Duration) (bool, error) {
	return c.counts[skill] > 0, nil
}
