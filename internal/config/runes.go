package config

import (
	"fmt"

	"gw2-resim/internal/character"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/sweep"
)

// Sigils resolves the sigil names of both weapon sets. Missing slots are
// empty.
func (b *Build) Sigils() ([2][2]runes.Sigil, error) {
	var out [2][2]runes.Sigil
	for set, ws := range b.WeaponSets {
		if set > 1 {
			break
		}
		for slot, raw := range ws.Sigils {
			if slot > 1 {
				break
			}
			s, ok := runes.ParseSigil(raw)
			if !ok {
				return out, fmt.Errorf("weapon set %d: unknown sigil %q", set+1, raw)
			}
			out[set][slot] = s
		}
	}
	return out, nil
}

// ToBuild converts the file form into a character build.
func (b *Build) ToBuild() (character.Build, error) {
	sigils, err := b.Sigils()
	if err != nil {
		return character.Build{}, err
	}
	out := character.Build{
		Power:                   b.Stats.Power,
		Precision:               b.Stats.Precision,
		Ferocity:                b.Stats.Ferocity,
		ConditionDamage:         b.Stats.ConditionDamage,
		Expertise:               b.Stats.Expertise,
		Concentration:           b.Stats.Concentration,
		Sigils:                  sigils,
		GlobalConditionDuration: b.Durations.Global,
		ConditionDuration:       make(map[uint32]float64, len(b.Durations.PerCondition)),
		GatedConditionDuration:  make(map[uint32]character.GatedBonus, len(b.Durations.Gated)),
		ConditionDamageBonus:    make(map[gamedata.Condition]float64, len(b.DamageBonus)),
	}
	if b.ActiveSet == 2 {
		out.ActiveSet = character.WeaponSet2
	}
	for set, ws := range b.WeaponSets {
		if set > 1 {
			break
		}
		wt, ok := character.ParseWeaponType(ws.Type)
		if !ok {
			return character.Build{}, fmt.Errorf("weapon set %d: unknown weapon type %q", set+1, ws.Type)
		}
		out.WeaponTypes[set] = wt
	}
	for name, v := range b.Durations.PerCondition {
		c, ok := gamedata.ConditionFromName(runes.Normalize(name))
		if !ok {
			return character.Build{}, fmt.Errorf("condition_duration: unknown condition %q", name)
		}
		out.ConditionDuration[c.SkillID()] = v
	}
	for _, g := range b.Durations.Gated {
		c, ok := gamedata.ConditionFromName(runes.Normalize(g.Condition))
		if !ok {
			return character.Build{}, fmt.Errorf("condition_duration: unknown condition %q", g.Condition)
		}
		out.GatedConditionDuration[c.SkillID()] = character.GatedBonus{Buff: g.BuffID, Bonus: g.Bonus}
	}
	for name, v := range b.DamageBonus {
		c, ok := gamedata.ConditionFromName(runes.Normalize(name))
		if !ok {
			return character.Build{}, fmt.Errorf("condition_damage_bonus: unknown condition %q", name)
		}
		out.ConditionDamageBonus[c] = v
	}
	return out, nil
}

// ToSpace converts the sweep file into explorer axes. Empty axes take the
// defaults.
func (s *Sweep) ToSpace() (sweep.Space, error) {
	space := sweep.DefaultSpace()
	if len(s.Chests) > 0 {
		space.Chests = nil
		for _, raw := range s.Chests {
			c, ok := runes.ParseChest(raw)
			if !ok {
				return sweep.Space{}, fmt.Errorf("sweep: unknown chest %q", raw)
			}
			space.Chests = append(space.Chests, c)
		}
	}
	if s.InfusionBudget != nil {
		space.InfusionBudget = *s.InfusionBudget
	}
	if len(s.Presets) > 0 {
		space.Presets = nil
		for _, raw := range s.Presets {
			p, ok := runes.ParsePreset(raw)
			if !ok {
				return sweep.Space{}, fmt.Errorf("sweep: unknown rune preset %q", raw)
			}
			space.Presets = append(space.Presets, p)
		}
	}
	if s.Replacements != nil {
		space.Replacements = nil
		for _, raw := range s.Replacements {
			r, ok := runes.ParseSigil(raw)
			if !ok || r == runes.SigilNone {
				return sweep.Space{}, fmt.Errorf("sweep: unknown replacement sigil %q", raw)
			}
			space.Replacements = append(space.Replacements, r)
		}
	}
	return space, nil
}
