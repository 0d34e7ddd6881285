// Package character evaluates effective stats and damage multipliers of a
// build at a point in time.
package character

import (
	"time"

	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
)

const (
	// StatPerStack is the attribute gain per stack of Might or Kalla's Fervor.
	StatPerStack = 30

	// AttributeScale converts expertise, concentration and ferocity points
	// into fractions.
	AttributeScale = 1500.0

	// MaxDurationMultiplier caps condition and boon durations.
	MaxDurationMultiplier = 2.0

	BaseCritMultiplier      = 1.5
	VulnerabilityPerStack   = 0.01
	VulnerabilityPhysical   = 0.005
	HighHealthThreshold     = 0.8
	HighHealthPhysicalBonus = 0.25
	DualWieldPhysicalBonus  = 0.1
	TwoHandedPhysicalBonus  = 0.05
)

// BuffReader reads stack counts at a time. The log-derived counter and the
// live tracker both satisfy it.
type BuffReader interface {
	StackCount(skill uint32, now time.Duration) (int, error)
	IsApplied(skill uint32, now time.Duration) (bool, error)
}

// Character binds a build to the buffs on the player.
type Character struct {
	Build Build
	Buffs BuffReader
	Meta  *gamedata.Table
}

// New creates a character wearing build.
func New(build Build, buffs BuffReader, meta *gamedata.Table) *Character {
	return &Character{Build: build, Buffs: buffs, Meta: meta}
}

func (c *Character) stacks(skill uint32, now time.Duration) (int, error) {
	return c.limited(c.Buffs, skill, now)
}

// vulnerability reads the target's vulnerability. Counters fed from the log
// carry no limit of their own.
func (c *Character) vulnerability(target BuffReader, now time.Duration) (int, error) {
	return c.limited(target, gamedata.Vulnerability, now)
}

func (c *Character) limited(buffs BuffReader, skill uint32, now time.Duration) (int, error) {
	n, err := buffs.StackCount(skill, now)
	if err != nil {
		return 0, err
	}
	if limit := c.Meta.StackLimit(skill); n > limit {
		return 0, faults.Structural("character", "skill %d: %d stacks exceed limit %d", skill, n, limit)
	}
	return n, nil
}

// Power returns base power plus Might.
func (c *Character) Power(now time.Duration) (float64, error) {
	might, err := c.stacks(gamedata.Might, now)
	if err != nil {
		return 0, err
	}
	return float64(c.Build.Power + might*StatPerStack), nil
}

// Ferocity returns base ferocity plus Kalla's Fervor.
func (c *Character) Ferocity(now time.Duration) (float64, error) {
	fervor, err := c.stacks(gamedata.KallasFervor, now)
	if err != nil {
		return 0, err
	}
	return float64(c.Build.Ferocity + fervor*StatPerStack), nil
}

// ConditionDamage returns base condition damage plus Might.
func (c *Character) ConditionDamage(now time.Duration) (float64, error) {
	might, err := c.stacks(gamedata.Might, now)
	if err != nil {
		return 0, err
	}
	return float64(c.Build.ConditionDamage + might*StatPerStack), nil
}

// CritMultiplier returns the critical hit damage multiplier.
func (c *Character) CritMultiplier(now time.Duration) (float64, error) {
	ferocity, err := c.Ferocity(now)
	if err != nil {
		return 0, err
	}
	return BaseCritMultiplier + ferocity/AttributeScale, nil
}

// ConditionDuration returns the duration multiplier for condition skill.
func (c *Character) ConditionDuration(skill uint32, now time.Duration) (float64, error) {
	d := 1 + float64(c.Build.Expertise)/AttributeScale + c.Build.GlobalConditionDuration
	d += c.Build.ConditionDuration[skill]
	if gated, ok := c.Build.GatedConditionDuration[skill]; ok {
		applied, err := c.Buffs.IsApplied(gated.Buff, now)
		if err != nil {
			return 0, err
		}
		if applied {
			d += gated.Bonus
		}
	}
	if skill == gamedata.Torment && c.Build.HasSigil(runes.SigilDemons) {
		d += runes.DemonsTormentDuration
	}
	if c.Build.HasSigil(runes.SigilMalice) {
		d += runes.MaliceConditionDuration
	}
	return min(d, MaxDurationMultiplier), nil
}

// BoonDuration returns the boon duration multiplier.
func (c *Character) BoonDuration() float64 {
	return min(1+float64(c.Build.Concentration)/AttributeScale, MaxDurationMultiplier)
}

// DurationMultiplier picks the duration multiplier by skill kind. Abilities
// and unknown skills carry no duration.
func (c *Character) DurationMultiplier(skill uint32, now time.Duration) (float64, error) {
	switch kind := c.Meta.Kind(skill); kind {
	case gamedata.KindCondition:
		return c.ConditionDuration(skill, now)
	case gamedata.KindBoon:
		return c.BoonDuration(), nil
	case gamedata.KindGenericBuff:
		return 1, nil
	default:
		return 0, faults.Structural("character", "skill %d of kind %s has no duration", skill, kind)
	}
}

// ConditionDamageMultiplier returns the outgoing damage multiplier for cond.
func (c *Character) ConditionDamageMultiplier(cond gamedata.Condition, now time.Duration) (float64, error) {
	fervor, err := c.stacks(gamedata.KallasFervor, now)
	if err != nil {
		return 0, err
	}
	m := 1 + gamedata.KallasFervorConditionDamageBonus*float64(fervor)
	m *= 1 + c.Build.ConditionDamageBonus[cond]
	if c.Build.HasSigil(runes.SigilBursting) {
		m *= runes.BurstingConditionDamageMultiplier
	}
	return m, nil
}

// PhysicalDamageMultiplier returns the additive physical damage multiplier
// against a target carrying target's buffs at the given health fraction.
func (c *Character) PhysicalDamageMultiplier(target BuffReader, now time.Duration, health float64) (float64, error) {
	vuln, err := c.vulnerability(target, now)
	if err != nil {
		return 0, err
	}
	m := 1.0
	switch c.Build.WeaponTypes[c.Build.ActiveSet] {
	case WeaponTypeDualWield:
		m += DualWieldPhysicalBonus
	case WeaponTypeTwoHanded:
		m += TwoHandedPhysicalBonus
	}
	m += VulnerabilityPhysical * float64(vuln)
	if health >= HighHealthThreshold {
		m += HighHealthPhysicalBonus
	}
	return m, nil
}

// VulnerabilityMultiplier returns the incoming damage multiplier of the
// target's vulnerability stacks.
func (c *Character) VulnerabilityMultiplier(target BuffReader, now time.Duration) (float64, error) {
	vuln, err := c.vulnerability(target, now)
	if err != nil {
		return 0, err
	}
	return 1 + VulnerabilityPerStack*float64(vuln), nil
}
