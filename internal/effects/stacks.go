package effects

import "time"

// stackPolicy is the per-skill stacking discipline. One implementation is
// chosen per skill from the metadata table when its state is first created.
type stackPolicy interface {
	decay(elapsed time.Duration)
	insert(d time.Duration)
	removeShortest()
	clear()
	count() int
	remaining() []time.Duration
}

// durationStacks keeps one active stack; the rest wait in a queue and only
// start decaying once promoted.
type durationStacks struct {
	active *time.Duration
	queued []time.Duration
	limit  int
}

func (s *durationStacks) decay(elapsed time.Duration) {
	for s.active != nil && elapsed > 0 {
		left := *s.active - elapsed
		if left < 0 {
			left = 0
		}
		consumed := *s.active - left
		if left == 0 {
			s.promote()
		} else {
			*s.active = left
		}
		elapsed -= consumed
	}
}

// promote activates the longest queued stack, first maximum wins.
func (s *durationStacks) promote() {
	if len(s.queued) == 0 {
		s.active = nil
		return
	}
	best := 0
	for i, d := range s.queued {
		if d > s.queued[best] {
			best = i
		}
	}
	next := s.queued[best]
	s.queued = swapRemove(s.queued, best)
	s.active = &next
}

func (s *durationStacks) insert(d time.Duration) {
	if s.active == nil {
		s.active = &d
		return
	}
	// one slot belongs to the active stack
	if len(s.queued) < s.limit-1 {
		s.queued = append(s.queued, d)
		return
	}
	if len(s.queued) == 0 {
		// Single-slot buff: the active stack is the only eviction candidate.
		if d > *s.active {
			s.active = &d
		}
		return
	}
	s.queued = replaceShortest(s.queued, d)
}

func (s *durationStacks) removeShortest() {
	if len(s.queued) > 0 {
		s.queued = swapRemove(s.queued, shortest(s.queued))
		return
	}
	s.active = nil
}

func (s *durationStacks) clear() {
	s.active = nil
	s.queued = s.queued[:0]
}

func (s *durationStacks) count() int {
	if s.active != nil {
		return 1
	}
	return 0
}

func (s *durationStacks) remaining() []time.Duration {
	if s.active == nil {
		return nil
	}
	out := make([]time.Duration, 0, 1+len(s.queued))
	out = append(out, *s.active)
	return append(out, s.queued...)
}

// intensityStacks decay independently and all count.
type intensityStacks struct {
	stacks []time.Duration
	limit  int
}

func (s *intensityStacks) decay(elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}
	kept := s.stacks[:0]
	for _, d := range s.stacks {
		d -= elapsed
		if d > 0 {
			kept = append(kept, d)
		}
	}
	s.stacks = kept
}

func (s *intensityStacks) insert(d time.Duration) {
	if len(s.stacks) < s.limit {
		s.stacks = append(s.stacks, d)
		return
	}
	s.stacks = replaceShortest(s.stacks, d)
}

func (s *intensityStacks) removeShortest() {
	if len(s.stacks) == 0 {
		return
	}
	s.stacks = swapRemove(s.stacks, shortest(s.stacks))
}

func (s *intensityStacks) clear() {
	s.stacks = s.stacks[:0]
}

func (s *intensityStacks) count() int {
	return len(s.stacks)
}

func (s *intensityStacks) remaining() []time.Duration {
	return append([]time.Duration(nil), s.stacks...)
}

// replaceShortest evicts the shortest entry when d is strictly longer.
func replaceShortest(stacks []time.Duration, d time.Duration) []time.Duration {
	if len(stacks) == 0 {
		return stacks
	}
	i := shortest(stacks)
	if d > stacks[i] {
		stacks = swapRemove(stacks, i)
		stacks = append(stacks, d)
	}
	return stacks
}

func shortest(stacks []time.Duration) int {
	best := 0
	for i, d := range stacks {
		if d < stacks[best] {
			best = i
		}
	}
	return best
}

func swapRemove(stacks []time.Duration, i int) []time.Duration {
	last := len(stacks) - 1
	stacks[i] = stacks[last]
	return stacks[:last]
}
