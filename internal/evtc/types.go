// Package evtc holds the decoded combat log: agents, skills and raw combat
// records, plus the flag predicates used to classify records.
package evtc

import "strings"

// Log is one decoded encounter. It is immutable once produced.
type Log struct {
	BuildVersion  string
	Revision      uint8
	BossSpeciesID uint16
	Agents        []Agent
	Skills        []Skill
	Records       []CombatRecord
}

// Agent is a participant of the encounter.
type Agent struct {
	Address       uint64
	Profession    uint32
	Elite         uint32
	Toughness     int16
	Concentration int16
	Healing       int16
	Condition     int16
	HitboxWidth   int16
	HitboxHeight  int16
	Name          string
}

// nonPlayerElite marks NPCs and gadgets in the elite field.
const nonPlayerElite = 0xffffffff

// IsPlayer reports whether the agent is a player character.
func (a Agent) IsPlayer() bool {
	return a.Elite != nonPlayerElite
}

// CharacterName returns the character part of a player's name, which the log
// stores NUL-separated with the account and subgroup.
func (a Agent) CharacterName() string {
	name, _, _ := strings.Cut(a.Name, "\x00")
	return name
}

// Skill names a skill id.
type Skill struct {
	ID   int32
	Name string
}

// CombatRecord is one raw timestamped event.
type CombatRecord struct {
	Time            int64
	SrcAgent        uint64
	DstAgent        uint64
	Value           int32
	BuffDamage      int32
	OverstackValue  uint32
	SkillID         uint32
	SrcInstID       uint16
	DstInstID       uint16
	SrcMasterInstID uint16
	DstMasterInstID uint16
	IFF             uint8
	IsBuff          uint8
	Result          uint8
	IsActivation    uint8
	IsBuffRemove    uint8
	IsNinety        uint8
	IsFifty         uint8
	IsMoving        uint8
	IsStateChange   uint8
	IsFlanking      uint8
	IsShields       uint8
	IsOffcycle      uint8
	Pad             uint32
}

// State change codes used by the classifier.
const (
	StateChangeNone       uint8 = 0
	StateChangeHealth     uint8 = 8
	StateChangeWeaponSwap uint8 = 11
	StateChangeBuffInit   uint8 = 18
)

// Buff removal codes.
const (
	RemoveNone   uint8 = 0
	RemoveAll    uint8 = 1
	RemoveSingle uint8 = 2
	RemoveManual uint8 = 3
)

// Physical result codes.
const (
	ResultNormal      uint8 = 0
	ResultCrit        uint8 = 1
	ResultGlance      uint8 = 2
	ResultBlock       uint8 = 3
	ResultEvade       uint8 = 4
	ResultInterrupt   uint8 = 5
	ResultAbsorb      uint8 = 6
	ResultBlind       uint8 = 7
	ResultKillingBlow uint8 = 8
	ResultDowned      uint8 = 9
	ResultBreakbar    uint8 = 10
)

// IsBuffApply reports a buff application. The initial buff state change is
// not included.
func (r CombatRecord) IsBuffApply() bool {
	return r.IsBuff > 0 && r.BuffDamage == 0 && r.IsStateChange == 0 &&
		r.IsActivation == 0 && r.IsBuffRemove == 0 && r.Value != 0
}

// IsInitialBuff reports a buff present at encounter start.
func (r CombatRecord) IsInitialBuff() bool {
	return r.IsStateChange == StateChangeBuffInit && r.IsBuff == StateChangeBuffInit
}

// IsPhysicalHit reports direct damage.
func (r CombatRecord) IsPhysicalHit() bool {
	return r.IsStateChange == 0 && r.IsActivation == 0 && r.IsBuffRemove == 0 && r.IsBuff == 0
}

// IsBuffRemoval reports removal of one or more buff stacks.
func (r CombatRecord) IsBuffRemoval() bool {
	return r.IsStateChange == 0 && r.IsActivation == 0 && r.IsBuffRemove > 0 && r.IsBuff > 0
}

// IsBuffDamage reports damage dealt by a buff or condition.
func (r CombatRecord) IsBuffDamage() bool {
	return r.IsBuff > 0 && r.Value == 0 && r.IsStateChange == 0 &&
		r.IsActivation == 0 && r.IsBuffRemove == 0
}

// SkillName returns the skill name from the log's table.
func (l *Log) SkillName(id uint32) (string, bool) {
	for _, s := range l.Skills {
		if uint32(s.ID) == id {
			return s.Name, true
		}
	}
	return "", false
}
