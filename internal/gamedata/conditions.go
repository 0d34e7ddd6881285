package gamedata

import "fmt"

// Condition is a damaging condition tracked on the target.
type Condition int

const (
	ConditionBleeding Condition = iota
	ConditionBurning
	ConditionConfusion
	ConditionPoisoned
	ConditionTorment
)

// NumConditions is the number of damaging conditions.
const NumConditions = int(ConditionTorment) + 1

// Conditions lists damaging conditions in tick processing order.
var Conditions = []Condition{
	ConditionBleeding,
	ConditionBurning,
	ConditionConfusion,
	ConditionPoisoned,
	ConditionTorment,
}

var conditionNames = map[Condition]string{
	ConditionBleeding:  "bleeding",
	ConditionBurning:   "burning",
	ConditionConfusion: "confusion",
	ConditionPoisoned:  "poisoned",
	ConditionTorment:   "torment",
}

func (c Condition) String() string {
	if name, ok := conditionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("condition(%d)", int(c))
}

// ConditionFromSkill maps a skill id to its damaging condition.
func ConditionFromSkill(id uint32) (Condition, bool) {
	switch id {
	case Bleeding:
		return ConditionBleeding, true
	case Burning:
		return ConditionBurning, true
	case Confusion:
		return ConditionConfusion, true
	case Poisoned:
		return ConditionPoisoned, true
	case Torment:
		return ConditionTorment, true
	}
	return 0, false
}

// SkillID returns the log id of the condition.
func (c Condition) SkillID() uint32 {
	switch c {
	case ConditionBleeding:
		return Bleeding
	case ConditionBurning:
		return Burning
	case ConditionConfusion:
		return Confusion
	case ConditionPoisoned:
		return Poisoned
	case ConditionTorment:
		return Torment
	}
	return 0
}

// ConditionFromName parses a lowercase condition name.
func ConditionFromName(name string) (Condition, bool) {
	for c, n := range conditionNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// TickScaling holds the per-tick base damage and condition damage scale.
type TickScaling struct {
	Base  float64
	Scale float64
}

// Values as of 2021-03.
var tickScaling = map[Condition]TickScaling{
	ConditionBleeding:  {Base: 22.0, Scale: 0.06},
	ConditionBurning:   {Base: 131.0, Scale: 0.155},
	ConditionConfusion: {Base: 10.0, Scale: 0},
	ConditionPoisoned:  {Base: 33.5, Scale: 0.06},
	ConditionTorment:   {Base: 31.8, Scale: 0.09},
}

var tormentMoving = TickScaling{Base: 22.0, Scale: 0.06}

// ConfusionActive is the damage dealt when a confused target uses a skill.
// Skill-use damage is not recorded as a tick and is not resimulated.
var ConfusionActive = TickScaling{Base: 95.5, Scale: 0.195}

// Scaling returns tick scaling for c; torment hits harder on a stationary target.
func Scaling(c Condition, targetMoving bool) TickScaling {
	if c == ConditionTorment && targetMoving {
		return tormentMoving
	}
	return tickScaling[c]
}

const (
	// BaseEnemyArmor is added to the adversary's toughness.
	BaseEnemyArmor = 1223

	SearingFissureFirstStrikeMultiplier      = 0.5
	SearingFissureAdditionalStrikeMultiplier = 0.25
	SearingFissureFirstStrikeBurning         = 3000
	SearingFissureAdditionalStrikeBurning    = 1000

	BattleScarsDamage     = 298.0
	BattleScarsMultiplier = 0.1

	// KallasFervorConditionDamageBonus is the per-stack condition damage bonus.
	KallasFervorConditionDamageBonus = 0.02
)
