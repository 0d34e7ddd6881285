// Package runes is the gear vocabulary of the build sweep: weapon sigils,
// rune presets, chest stat profiles and infusions.
package runes

import (
	"slices"
	"strings"
)

// Sigil is a weapon sigil. The zero value is an empty slot.
type Sigil string

const (
	SigilNone     Sigil = ""
	SigilEarth    Sigil = "earth"
	SigilDoom     Sigil = "doom"
	SigilGeomancy Sigil = "geomancy"
	SigilBursting Sigil = "bursting"
	SigilDemons   Sigil = "demons"
	SigilMalice   Sigil = "malice"
)

// Class says how a sigil shows up in a combat log.
type Class string

const (
	// ClassProc sigils leave discrete events in the log and can be removed
	// from a recorded fight by dropping those events.
	ClassProc Class = "proc"
	// ClassModifier sigils only change stat formulas.
	ClassModifier Class = "modifier"
)

var sigilClass = map[Sigil]Class{
	SigilEarth:    ClassProc,
	SigilDoom:     ClassProc,
	SigilGeomancy: ClassProc,

	SigilBursting: ClassModifier,
	SigilDemons:   ClassModifier,
	SigilMalice:   ClassModifier,
}

const (
	BurstingConditionDamageMultiplier = 1.05
	DemonsTormentDuration             = 0.2
	MaliceConditionDuration           = 0.1
)

// Normalize returns the canonical lowercase sigil or preset name.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
}

// ParseSigil resolves a sigil name. "none" and "" are the empty slot.
func ParseSigil(name string) (Sigil, bool) {
	n := Normalize(name)
	if n == "" || n == "none" {
		return SigilNone, true
	}
	s := Sigil(n)
	_, ok := sigilClass[s]
	return s, ok
}

// ClassOf returns the class and whether the sigil is known.
func ClassOf(s Sigil) (Class, bool) {
	c, ok := sigilClass[s]
	return c, ok
}

// Reversible reports whether the sigil can be stripped from a recorded fight.
// An empty slot is trivially reversible.
func (s Sigil) Reversible() bool {
	return s == SigilNone || sigilClass[s] == ClassProc
}

func (s Sigil) String() string {
	if s == SigilNone {
		return "none"
	}
	return string(s)
}

// KnownSigils lists every sigil name in sorted order.
func KnownSigils() []Sigil {
	out := make([]Sigil, 0, len(sigilClass))
	for s := range sigilClass {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
