package runes

import "gw2-resim/internal/gamedata"

// StatDelta is an additive change to base attributes.
type StatDelta struct {
	Power           int
	Precision       int
	Ferocity        int
	ConditionDamage int
	Expertise       int
	Concentration   int
}

// Add returns the sum of d and o.
func (d StatDelta) Add(o StatDelta) StatDelta {
	return StatDelta{
		Power:           d.Power + o.Power,
		Precision:       d.Precision + o.Precision,
		Ferocity:        d.Ferocity + o.Ferocity,
		ConditionDamage: d.ConditionDamage + o.ConditionDamage,
		Expertise:       d.Expertise + o.Expertise,
		Concentration:   d.Concentration + o.Concentration,
	}
}

// Preset is a full rune set choice.
type Preset string

const (
	PresetNightmare              Preset = "nightmare"
	PresetTormenting             Preset = "tormenting"
	PresetTempest                Preset = "tempest"
	PresetTrapperBlackDiamond    Preset = "trapper_black_diamond"
	PresetTrapperConditionDamage Preset = "trapper_condition_damage"
)

// BaselinePreset is the rune set worn in the recorded fight. Every preset's
// stats are relative to it.
const BaselinePreset = PresetNightmare

// PresetEffect describes a preset relative to the baseline runes.
type PresetEffect struct {
	Stats StatDelta
	// GlobalDuration replaces the build's all-condition duration bonus.
	GlobalDuration float64
	// ExtraDuration is added to the per-condition duration bonuses.
	ExtraDuration map[gamedata.Condition]float64
}

var presets = map[Preset]PresetEffect{
	PresetNightmare: {GlobalDuration: 0.2},
	PresetTormenting: {
		ExtraDuration: map[gamedata.Condition]float64{gamedata.ConditionTorment: 0.5},
	},
	PresetTempest: {
		Stats: StatDelta{
			Power:           36,
			Precision:       36,
			Ferocity:        36,
			ConditionDamage: 36 - 175,
			Expertise:       36,
			Concentration:   36,
		},
		GlobalDuration: 0.25,
	},
	PresetTrapperBlackDiamond: {
		Stats:          StatDelta{Power: 17, Precision: 9, ConditionDamage: 17, Expertise: 9},
		GlobalDuration: 0.15,
	},
	PresetTrapperConditionDamage: {
		Stats:          StatDelta{ConditionDamage: 25},
		GlobalDuration: 0.15,
	},
}

var presetOrder = []Preset{
	PresetNightmare,
	PresetTormenting,
	PresetTempest,
	PresetTrapperBlackDiamond,
	PresetTrapperConditionDamage,
}

// Effect returns the preset's effect and whether it is known.
func Effect(p Preset) (PresetEffect, bool) {
	e, ok := presets[p]
	return e, ok
}

// ParsePreset resolves a preset name.
func ParsePreset(name string) (Preset, bool) {
	p := Preset(Normalize(name))
	_, ok := presets[p]
	return p, ok
}

// Presets lists presets in sweep order.
func Presets() []Preset {
	return append([]Preset(nil), presetOrder...)
}

// Chest is the stat profile of the chest piece.
type Chest string

const (
	ChestViper    Chest = "viper"
	ChestSinister Chest = "sinister"
)

// BaselineChest is the chest worn in the recorded fight.
const BaselineChest = ChestViper

// Swapping viper for sinister trades the viper major and minor stats for
// sinister ones.
var chestDelta = map[Chest]StatDelta{
	ChestViper: {},
	ChestSinister: {
		Power:           101 - 67,
		Precision:       101 - 67,
		ConditionDamage: 141 - 121,
		Expertise:       -67,
	},
}

// ChestDelta returns the stat change of wearing c instead of the baseline.
func ChestDelta(c Chest) (StatDelta, bool) {
	d, ok := chestDelta[c]
	return d, ok
}

// ParseChest resolves a chest profile name.
func ParseChest(name string) (Chest, bool) {
	c := Chest(Normalize(name))
	_, ok := chestDelta[c]
	return c, ok
}

// InfusionStat is the attribute bonus of one infusion.
const InfusionStat = 5

// InfusionDelta converts expertise infusions out of a baseline where all
// infusions were condition damage.
func InfusionDelta(expertise int) StatDelta {
	return StatDelta{
		ConditionDamage: -expertise * InfusionStat,
		Expertise:       expertise * InfusionStat,
	}
}
