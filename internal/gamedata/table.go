package gamedata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SkillKind classifies a skill id.
type SkillKind int

const (
	KindUnknown SkillKind = iota
	KindAbility
	KindCondition
	KindBoon
	KindGenericBuff
)

var kindNames = map[SkillKind]string{
	KindUnknown:     "unknown",
	KindAbility:     "ability",
	KindCondition:   "condition",
	KindBoon:        "boon",
	KindGenericBuff: "generic_buff",
}

func (k SkillKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Stacking is the buff stacking discipline.
type Stacking int

const (
	StackingNone Stacking = iota
	// StackingDuration queues stacks; only the active one counts.
	StackingDuration
	// StackingIntensity counts every independently decaying stack.
	StackingIntensity
)

func (s Stacking) String() string {
	switch s {
	case StackingDuration:
		return "duration"
	case StackingIntensity:
		return "intensity"
	default:
		return "none"
	}
}

// SkillInfo is the static metadata for one skill id.
type SkillInfo struct {
	Kind       SkillKind
	StackLimit int
	Stacking   Stacking
}

// Table maps skill ids to metadata. A Table is read-only once built and safe
// for concurrent use.
type Table struct {
	skills map[uint32]SkillInfo
}

// NewTable builds a table from explicit entries.
func NewTable(entries map[uint32]SkillInfo) *Table {
	skills := make(map[uint32]SkillInfo, len(entries))
	for id, info := range entries {
		skills[id] = info
	}
	return &Table{skills: skills}
}

// DefaultTable returns the built-in metadata for tracked skills.
func DefaultTable() *Table {
	return NewTable(map[uint32]SkillInfo{
		Bleeding:      {Kind: KindCondition, StackLimit: 1500, Stacking: StackingIntensity},
		Burning:       {Kind: KindCondition, StackLimit: 1500, Stacking: StackingIntensity},
		Confusion:     {Kind: KindCondition, StackLimit: 1500, Stacking: StackingIntensity},
		Poisoned:      {Kind: KindCondition, StackLimit: 1500, Stacking: StackingIntensity},
		Torment:       {Kind: KindCondition, StackLimit: 1500, Stacking: StackingIntensity},
		Chilled:       {Kind: KindCondition, StackLimit: 5, Stacking: StackingDuration},
		Vulnerability: {Kind: KindCondition, StackLimit: 25, Stacking: StackingIntensity},
		Might:         {Kind: KindBoon, StackLimit: 25, Stacking: StackingIntensity},
		Fury:          {Kind: KindBoon, StackLimit: 9, Stacking: StackingDuration},
		KallasFervor:  {Kind: KindGenericBuff, StackLimit: 5, Stacking: StackingIntensity},
	})
}

// Kind returns the skill kind, KindUnknown for unlisted ids.
func (t *Table) Kind(id uint32) SkillKind {
	if t == nil {
		return KindUnknown
	}
	return t.skills[id].Kind
}

// Lookup returns the metadata for id.
func (t *Table) Lookup(id uint32) (SkillInfo, bool) {
	if t == nil {
		return SkillInfo{}, false
	}
	info, ok := t.skills[id]
	return info, ok
}

// StackLimit returns the configured limit, or 0 when id is unknown.
func (t *Table) StackLimit(id uint32) int {
	info, _ := t.Lookup(id)
	return info.StackLimit
}

type tableFile struct {
	Skills []struct {
		ID         uint32 `yaml:"id"`
		Kind       string `yaml:"kind"`
		StackLimit int    `yaml:"stack_limit"`
		Stacking   string `yaml:"stacking"`
	} `yaml:"skills"`
}

// LoadTable reads a YAML skill table and layers it over the defaults.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	table := DefaultTable()
	for _, entry := range file.Skills {
		kind, ok := parseKind(entry.Kind)
		if !ok {
			return nil, fmt.Errorf("skill %d: unknown kind %q", entry.ID, entry.Kind)
		}
		stacking, ok := parseStacking(entry.Stacking)
		if !ok {
			return nil, fmt.Errorf("skill %d: unknown stacking %q", entry.ID, entry.Stacking)
		}
		if stacking != StackingNone && entry.StackLimit <= 0 {
			return nil, fmt.Errorf("skill %d: stack_limit must be > 0", entry.ID)
		}
		table.skills[entry.ID] = SkillInfo{Kind: kind, StackLimit: entry.StackLimit, Stacking: stacking}
	}
	return table, nil
}

func parseKind(raw string) (SkillKind, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for kind, n := range kindNames {
		if n == name {
			return kind, true
		}
	}
	return KindUnknown, false
}

func parseStacking(raw string) (Stacking, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return StackingNone, true
	case "duration":
		return StackingDuration, true
	case "intensity":
		return StackingIntensity, true
	}
	return StackingNone, false
}
