// Package effects tracks time-decayed buff and condition stacks.
package effects

import (
	"time"

	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
)

const trackerOp = "effects"

type skillState struct {
	last   time.Duration
	stacks stackPolicy
}

// Tracker holds live stacks for one participant. Time must never move
// backwards between calls for the same skill.
type Tracker struct {
	meta   *gamedata.Table
	states map[uint32]*skillState
}

// NewTracker creates a tracker whose stacking rules come from meta.
func NewTracker(meta *gamedata.Table) *Tracker {
	return &Tracker{meta: meta, states: make(map[uint32]*skillState)}
}

func (t *Tracker) state(skill uint32, now time.Duration) (*skillState, error) {
	if st, ok := t.states[skill]; ok {
		return st, nil
	}
	info, ok := t.meta.Lookup(skill)
	if !ok {
		return nil, faults.Structural(trackerOp, "skill %d is not in the metadata table", skill)
	}
	var policy stackPolicy
	switch info.Stacking {
	case gamedata.StackingDuration:
		policy = &durationStacks{limit: info.StackLimit}
	case gamedata.StackingIntensity:
		policy = &intensityStacks{limit: info.StackLimit}
	default:
		return nil, faults.Structural(trackerOp, "skill %d has stacking %s", skill, info.Stacking)
	}
	st := &skillState{last: now, stacks: policy}
	t.states[skill] = st
	return st, nil
}

// Advance decays the stacks of skill up to now.
func (t *Tracker) Advance(skill uint32, now time.Duration) error {
	st, err := t.state(skill, now)
	if err != nil {
		return err
	}
	return st.advance(skill, now)
}

func (st *skillState) advance(skill uint32, now time.Duration) error {
	elapsed := now - st.last
	if elapsed < 0 {
		return faults.Structural(trackerOp, "skill %d: time moved back by %s", skill, -elapsed)
	}
	st.stacks.decay(elapsed)
	st.last = now
	return nil
}

// AddStack advances skill to now and inserts a stack lasting d.
func (t *Tracker) AddStack(skill uint32, d, now time.Duration) error {
	st, err := t.state(skill, now)
	if err != nil {
		return err
	}
	if err := st.advance(skill, now); err != nil {
		return err
	}
	st.stacks.insert(d)
	return nil
}

// RemoveStack drops the stack with the least remaining time.
func (t *Tracker) RemoveStack(skill uint32, now time.Duration) error {
	st, err := t.state(skill, now)
	if err != nil {
		return err
	}
	if err := st.advance(skill, now); err != nil {
		return err
	}
	st.stacks.removeShortest()
	return nil
}

// ClearStacks removes every stack of skill.
func (t *Tracker) ClearStacks(skill uint32, now time.Duration) error {
	st, err := t.state(skill, now)
	if err != nil {
		return err
	}
	if err := st.advance(skill, now); err != nil {
		return err
	}
	st.stacks.clear()
	return nil
}

// StackCount returns the number of counting stacks of skill at now. Duration
// stacking skills report at most one.
func (t *Tracker) StackCount(skill uint32, now time.Duration) (int, error) {
	st, err := t.state(skill, now)
	if err != nil {
		return 0, err
	}
	if err := st.advance(skill, now); err != nil {
		return 0, err
	}
	n := st.stacks.count()
	if limit := t.meta.StackLimit(skill); n > limit {
		return 0, faults.Structural(trackerOp, "skill %d: %d stacks exceed limit %d", skill, n, limit)
	}
	return n, nil
}

// IsApplied reports whether skill has at least one stack at now.
func (t *Tracker) IsApplied(skill uint32, now time.Duration) (bool, error) {
	n, err := t.StackCount(skill, now)
	return n > 0, err
}

// Remaining returns the remaining durations of skill's stacks at now; for
// duration stacking the active stack comes first.
func (t *Tracker) Remaining(skill uint32, now time.Duration) ([]time.Duration, error) {
	st, err := t.state(skill, now)
	if err != nil {
		return nil, err
	}
	if err := st.advance(skill, now); err != nil {
		return nil, err
	}
	return st.stacks.remaining(), nil
}
