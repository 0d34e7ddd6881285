package character

import (
	"fmt"
	"maps"

	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
)

// WeaponSet indexes the two land weapon sets.
type WeaponSet int

const (
	WeaponSet1 WeaponSet = iota
	WeaponSet2
)

func (s WeaponSet) String() string {
	return fmt.Sprintf("set%d", int(s)+1)
}

// WeaponType determines the flat physical damage bonus of a set.
type WeaponType int

const (
	WeaponTypeTwoHanded WeaponType = iota
	WeaponTypeDualWield
)

func (w WeaponType) String() string {
	if w == WeaponTypeDualWield {
		return "dual_wield"
	}
	return "two_handed"
}

// ParseWeaponType resolves "two_handed" or "dual_wield".
func ParseWeaponType(name string) (WeaponType, bool) {
	switch runes.Normalize(name) {
	case "two_handed":
		return WeaponTypeTwoHanded, true
	case "dual_wield":
		return WeaponTypeDualWield, true
	}
	return 0, false
}

// GatedBonus is a condition duration bonus that only applies while Buff is on
// the player.
type GatedBonus struct {
	Buff  uint32
	Bonus float64
}

// Build is a complete gear and trait configuration.
type Build struct {
	Power           int
	Precision       int
	Ferocity        int
	ConditionDamage int
	Expertise       int
	Concentration   int

	ActiveSet   WeaponSet
	WeaponTypes [2]WeaponType
	Sigils      [2][2]runes.Sigil

	// GlobalConditionDuration applies to every condition; the per-condition
	// and gated maps are keyed by condition skill id.
	GlobalConditionDuration float64
	ConditionDuration       map[uint32]float64
	GatedConditionDuration  map[uint32]GatedBonus
	ConditionDamageBonus    map[gamedata.Condition]float64
}

// Clone returns a deep copy.
func (b Build) Clone() Build {
	b.ConditionDuration = maps.Clone(b.ConditionDuration)
	b.GatedConditionDuration = maps.Clone(b.GatedConditionDuration)
	b.ConditionDamageBonus = maps.Clone(b.ConditionDamageBonus)
	return b
}

// Apply adds a stat delta to the base attributes.
func (b *Build) Apply(d runes.StatDelta) {
	b.Power += d.Power
	b.Precision += d.Precision
	b.Ferocity += d.Ferocity
	b.ConditionDamage += d.ConditionDamage
	b.Expertise += d.Expertise
	b.Concentration += d.Concentration
}

// ApplyPreset swaps the baseline runes for p.
func (b *Build) ApplyPreset(p runes.Preset) error {
	effect, ok := runes.Effect(p)
	if !ok {
		return fmt.Errorf("unknown rune preset %q", p)
	}
	b.Apply(effect.Stats)
	b.GlobalConditionDuration = effect.GlobalDuration
	if len(effect.ExtraDuration) > 0 && b.ConditionDuration == nil {
		b.ConditionDuration = make(map[uint32]float64)
	}
	for c, extra := range effect.ExtraDuration {
		b.ConditionDuration[c.SkillID()] += extra
	}
	return nil
}

// ActiveSigils returns the sigils of the active weapon set.
func (b *Build) ActiveSigils() [2]runes.Sigil {
	return b.Sigils[b.ActiveSet]
}

// HasSigil reports whether s is slotted in the active weapon set.
func (b *Build) HasSigil(s runes.Sigil) bool {
	active := b.ActiveSigils()
	return active[0] == s || active[1] == s
}

// Baseline returns the build worn in the reference recording: shortbow on
// set 1, mace/axe on set 2, Nightmare runes and a viper chest.
func Baseline() Build {
	all := func(v float64) map[uint32]float64 {
		out := make(map[uint32]float64, len(gamedata.Conditions))
		for _, c := range gamedata.Conditions {
			out[c.SkillID()] = v
		}
		return out
	}
	return Build{
		Power:           2173,
		Precision:       1633,
		ConditionDamage: 1672,
		Expertise:       633,
		ActiveSet:       WeaponSet1,
		WeaponTypes:     [2]WeaponType{WeaponTypeTwoHanded, WeaponTypeDualWield},
		Sigils: [2][2]runes.Sigil{
			{runes.SigilEarth, runes.SigilGeomancy},
			{runes.SigilEarth, runes.SigilDoom},
		},
		GlobalConditionDuration: 0.2,
		ConditionDuration:       all(0.1),
		GatedConditionDuration: map[uint32]GatedBonus{
			gamedata.Bleeding: {Buff: gamedata.Fury, Bonus: 0.25},
		},
		ConditionDamageBonus: map[gamedata.Condition]float64{
			gamedata.ConditionTorment:  0.1,
			gamedata.ConditionBleeding: 0.25,
		},
	}
}
