package engine

import (
	"math"
	"time"

	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
)

const (
	// TickInterval is the condition damage cadence.
	TickInterval = time.Second
	// TickRate is the server tick length partial stacks are rounded up to.
	TickRate = 40 * time.Millisecond
)

type conditionStack struct {
	remaining  time.Duration
	lastUpdate time.Duration
}

// conditionStacks holds the target's damaging condition stacks, indexed by
// condition.
type conditionStacks [gamedata.NumConditions][]conditionStack

func (cs *conditionStacks) add(c gamedata.Condition, d, now time.Duration) {
	cs[c] = append(cs[c], conditionStack{remaining: d, lastUpdate: now})
}

func (cs *conditionStacks) count(c gamedata.Condition) int {
	return len(cs[c])
}

// tick consumes one interval from every stack of c and returns the damage
// they deal given the per-stack damage of a full tick. A stack that runs out
// during the tick deals damage for its remaining time rounded up to TickRate.
func (cs *conditionStacks) tick(c gamedata.Condition, perTick float64, now time.Duration) (int64, error) {
	var total int64
	kept := cs[c][:0]
	for _, st := range cs[c] {
		if now < st.lastUpdate {
			return 0, faults.Structural("engine", "%s stack updated at %s ticks at %s", c, st.lastUpdate, now)
		}
		dmg := perTick
		if st.remaining <= TickInterval {
			dmg *= partialTick(st.remaining)
		}
		total += roundDamage(dmg)
		st.remaining -= TickInterval
		st.lastUpdate = now
		if st.remaining > 0 {
			kept = append(kept, st)
		}
	}
	cs[c] = kept
	return total, nil
}

// partialTick returns the fraction of a full tick dealt by a stack with
// remaining time left.
func partialTick(remaining time.Duration) float64 {
	ticks := (remaining + TickRate - 1) / TickRate
	return float64(ticks*TickRate) / float64(TickInterval)
}

// roundDamage rounds half away from zero.
func roundDamage(v float64) int64 {
	return int64(math.Round(v))
}
