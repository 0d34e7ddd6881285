// Package sweep enumerates candidate builds around the recorded one and
// resimulates each against the same timeline.
package sweep

import (
	"errors"
	"fmt"
	"strings"

	"gw2-resim/internal/character"
	"gw2-resim/internal/engine"
	"gw2-resim/internal/runes"
)

// DefaultInfusionBudget is the number of infusion slots split between
// expertise and condition damage.
const DefaultInfusionBudget = 18

// Space holds the axes of a sweep.
type Space struct {
	Chests         []runes.Chest
	InfusionBudget int
	Presets        []runes.Preset
	// Replacements are the sigils tried in every slot. Keeping the recorded
	// sigil is always tried as well.
	Replacements []runes.Sigil
}

// DefaultSpace returns every chest, infusion split, rune preset and
// modifier sigil.
func DefaultSpace() Space {
	return Space{
		Chests:         []runes.Chest{runes.ChestViper, runes.ChestSinister},
		InfusionBudget: DefaultInfusionBudget,
		Presets:        runes.Presets(),
		Replacements:   []runes.Sigil{runes.SigilBursting, runes.SigilDemons, runes.SigilMalice},
	}
}

// Validate checks that every axis is non-empty and known. Only modifier
// sigils can be added to a recorded fight.
func (s Space) Validate() error {
	var errs []error
	if len(s.Chests) == 0 {
		errs = append(errs, errors.New("no chest profiles"))
	}
	for _, c := range s.Chests {
		if _, ok := runes.ChestDelta(c); !ok {
			errs = append(errs, fmt.Errorf("unknown chest %q", c))
		}
	}
	if s.InfusionBudget < 0 {
		errs = append(errs, fmt.Errorf("infusion budget %d is negative", s.InfusionBudget))
	}
	if len(s.Presets) == 0 {
		errs = append(errs, errors.New("no rune presets"))
	}
	for _, p := range s.Presets {
		if _, ok := runes.Effect(p); !ok {
			errs = append(errs, fmt.Errorf("unknown rune preset %q", p))
		}
	}
	seen := make(map[runes.Sigil]bool, len(s.Replacements))
	for _, r := range s.Replacements {
		class, ok := runes.ClassOf(r)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("unknown sigil %q", r))
		case class != runes.ClassModifier:
			errs = append(errs, fmt.Errorf("sigil %s leaves log events and cannot be added to a recorded fight", r))
		case seen[r]:
			errs = append(errs, fmt.Errorf("sigil %s listed twice", r))
		}
		seen[r] = true
	}
	return errors.Join(errs...)
}

// Candidate is one point of the space.
type Candidate struct {
	Index              int
	Chest              runes.Chest
	ExpertiseInfusions int
	ConditionInfusions int
	Preset             runes.Preset
	// Replacements per weapon set and slot; SigilNone keeps the recorded sigil.
	Replacements [2][2]runes.Sigil
}

// IsBaseline reports whether c reproduces the recorded build.
func (c Candidate) IsBaseline() bool {
	return c.Chest == runes.BaselineChest && c.ExpertiseInfusions == 0 &&
		c.Preset == runes.BaselinePreset && c.Replacements == [2][2]runes.Sigil{}
}

func (c Candidate) String() string {
	slot := func(s runes.Sigil) string {
		if s == runes.SigilNone {
			return "keep"
		}
		return s.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "E%d/C%d %s", c.ExpertiseInfusions, c.ConditionInfusions, c.Preset)
	for _, set := range c.Replacements {
		fmt.Fprintf(&b, " [%s;%s]", slot(set[0]), slot(set[1]))
	}
	fmt.Fprintf(&b, " %s", c.Chest)
	return b.String()
}

// Candidates enumerates the space in a fixed order: chest, expertise
// infusions, preset, then the four slots. Pairs that slot the same
// replacement twice in one weapon set are skipped.
func (s Space) Candidates() []Candidate {
	choices := append([]runes.Sigil{runes.SigilNone}, s.Replacements...)
	var pairs [][2]runes.Sigil
	for _, a := range choices {
		for _, b := range choices {
			if a != runes.SigilNone && a == b {
				continue
			}
			pairs = append(pairs, [2]runes.Sigil{a, b})
		}
	}

	var out []Candidate
	for _, chest := range s.Chests {
		for e := 0; e <= s.InfusionBudget; e++ {
			for _, preset := range s.Presets {
				for _, set1 := range pairs {
					for _, set2 := range pairs {
						out = append(out, Candidate{
							Index:              len(out),
							Chest:              chest,
							ExpertiseInfusions: e,
							ConditionInfusions: s.InfusionBudget - e,
							Preset:             preset,
							Replacements:       [2][2]runes.Sigil{set1, set2},
						})
					}
				}
			}
		}
	}
	return out
}

// Build derives the candidate's build from the recorded one along with the
// proc events that must be dropped because their sigil is gone.
func (c Candidate) Build(baseline character.Build) (character.Build, engine.Exclusions, error) {
	b := baseline.Clone()
	chest, ok := runes.ChestDelta(c.Chest)
	if !ok {
		return character.Build{}, engine.Exclusions{}, fmt.Errorf("unknown chest %q", c.Chest)
	}
	b.Apply(chest)
	b.Apply(runes.InfusionDelta(c.ExpertiseInfusions))
	if err := b.ApplyPreset(c.Preset); err != nil {
		return character.Build{}, engine.Exclusions{}, err
	}

	var excl engine.Exclusions
	for set, slots := range c.Replacements {
		for slot, r := range slots {
			if r == runes.SigilNone {
				continue
			}
			switch b.Sigils[set][slot] {
			case runes.SigilGeomancy:
				excl.Geomancy = true
			case runes.SigilDoom:
				excl.Doom = true
			case runes.SigilEarth:
				if character.WeaponSet(set) == character.WeaponSet1 {
					excl.EarthSet1 = true
				} else {
					excl.EarthSet2 = true
				}
			}
			b.Sigils[set][slot] = r
		}
	}
	return b, excl, nil
}
