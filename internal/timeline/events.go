// Package timeline defines the build-independent semantic event sequence
// that classification produces and resimulation consumes.
package timeline

import (
	"time"

	"gw2-resim/internal/character"
	"gw2-resim/internal/gamedata"
)

// Kind tags the event variant.
type Kind uint8

const (
	KindPhysicalHit Kind = iota + 1
	KindSelfBuffApplication
	KindTargetBuffApplication
	KindTargetConditionApplication
	KindConditionTick
	KindLifeStealHit
	KindWeaponSwap
)

var kindNames = map[Kind]string{
	KindPhysicalHit:                "physical_hit",
	KindSelfBuffApplication:        "self_buff",
	KindTargetBuffApplication:      "target_buff",
	KindTargetConditionApplication: "target_condition",
	KindConditionTick:              "condition_tick",
	KindLifeStealHit:               "life_steal",
	KindWeaponSwap:                 "weapon_swap",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// Event is one semantic event. Implementations are the value types below.
type Event interface {
	Kind() Kind
	At() time.Duration
}

// PhysicalHit is a direct hit with its build-independent base damage.
type PhysicalHit struct {
	Time        time.Duration
	BaseDamage  int64
	Coefficient float64
	EnemyArmor  int64
	Source      Source
	Critical    bool
}

// SelfBuffApplication applies a tracked buff to the player.
type SelfBuffApplication struct {
	Time         time.Duration
	Skill        uint32
	BaseDuration time.Duration
}

// TargetBuffApplication applies a tracked non-damaging debuff to the target.
type TargetBuffApplication struct {
	Time         time.Duration
	Skill        uint32
	BaseDuration time.Duration
}

// TargetConditionApplication applies a damaging condition to the target.
type TargetConditionApplication struct {
	Time         time.Duration
	Condition    gamedata.Condition
	BaseDuration time.Duration
	Source       Source
}

// ConditionTick deals one second of condition damage.
type ConditionTick struct {
	Time         time.Duration
	TargetMoving bool
}

// LifeStealHit deals flat damage plus a power-scaled part.
type LifeStealHit struct {
	Time         time.Duration
	BaseDamage   float64
	PowerScaling float64
	Source       Source
}

// WeaponSwap changes the player's active weapon set.
type WeaponSwap struct {
	Time time.Duration
	Set  character.WeaponSet
}

func (PhysicalHit) Kind() Kind                { return KindPhysicalHit }
func (SelfBuffApplication) Kind() Kind        { return KindSelfBuffApplication }
func (TargetBuffApplication) Kind() Kind      { return KindTargetBuffApplication }
func (TargetConditionApplication) Kind() Kind { return KindTargetConditionApplication }
func (ConditionTick) Kind() Kind              { return KindConditionTick }
func (LifeStealHit) Kind() Kind               { return KindLifeStealHit }
func (WeaponSwap) Kind() Kind                 { return KindWeaponSwap }

func (e PhysicalHit) At() time.Duration                { return e.Time }
func (e SelfBuffApplication) At() time.Duration        { return e.Time }
func (e TargetBuffApplication) At() time.Duration      { return e.Time }
func (e TargetConditionApplication) At() time.Duration { return e.Time }
func (e ConditionTick) At() time.Duration              { return e.Time }
func (e LifeStealHit) At() time.Duration               { return e.Time }
func (e WeaponSwap) At() time.Duration                 { return e.Time }

// Sequence is an ordered list of events with non-decreasing time.
type Sequence []Event

// Sorted reports whether event times never decrease.
func (s Sequence) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].At() < s[i-1].At() {
			return false
		}
	}
	return true
}

// Count returns the number of events per kind.
func (s Sequence) Count() map[Kind]int {
	out := make(map[Kind]int, len(kindNames))
	for _, e := range s {
		out[e.Kind()]++
	}
	return out
}
