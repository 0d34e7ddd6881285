package classify

import (
	"time"

	"gw2-resim/internal/character"
)

// baseDuration strips the build's duration multiplier from an observed
// duration in milliseconds. Results one below a round 100 ms are snapped up,
// since truncation of the inverse multiplication loses that millisecond.
func baseDuration(c *character.Character, skill uint32, observed int64, now time.Duration) (time.Duration, error) {
	m, err := c.DurationMultiplier(skill, now)
	if err != nil {
		return 0, err
	}
	base := int64(float64(observed) / m)
	if base%100 == 99 {
		base++
	}
	return time.Duration(base) * time.Millisecond, nil
}
