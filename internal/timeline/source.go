package timeline

import (
	"fmt"

	"gw2-resim/internal/runes"
)

// SourceKind says what produced a damaging event.
type SourceKind uint8

const (
	SourceUnknown SourceKind = iota
	SourceSkill
	SourceSigil
	SourceTrait
	SourceFood
	SourceBuff
)

var sourceKindNames = map[SourceKind]string{
	SourceUnknown: "unknown",
	SourceSkill:   "skill",
	SourceSigil:   "sigil",
	SourceTrait:   "trait",
	SourceFood:    "food",
	SourceBuff:    "buff",
}

func (k SourceKind) String() string {
	if name, ok := sourceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("source(%d)", uint8(k))
}

// Source attributes an event to a skill, buff or piece of gear. Trait and
// food sources carry their name.
type Source struct {
	Kind  SourceKind
	Skill uint32
	Sigil runes.Sigil
	Name  string
}

// Unknown is the unattributed source.
var Unknown = Source{}

// FromSkill attributes to a skill id.
func FromSkill(id uint32) Source {
	return Source{Kind: SourceSkill, Skill: id}
}

// FromBuff attributes to a buff id.
func FromBuff(id uint32) Source {
	return Source{Kind: SourceBuff, Skill: id}
}

// FromSigil attributes to a sigil.
func FromSigil(s runes.Sigil) Source {
	return Source{Kind: SourceSigil, Sigil: s}
}

// FromTrait attributes to a named trait.
func FromTrait(name string) Source {
	return Source{Kind: SourceTrait, Name: name}
}

// FromFood attributes to a named food.
func FromFood(name string) Source {
	return Source{Kind: SourceFood, Name: name}
}

// IsSkill reports whether s is the given skill.
func (s Source) IsSkill(id uint32) bool {
	return s.Kind == SourceSkill && s.Skill == id
}

// IsSigil reports whether s is the given sigil.
func (s Source) IsSigil(sigil runes.Sigil) bool {
	return s.Kind == SourceSigil && s.Sigil == sigil
}

func (s Source) String() string {
	switch s.Kind {
	case SourceSkill, SourceBuff:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Skill)
	case SourceSigil:
		return fmt.Sprintf("sigil(%s)", s.Sigil)
	case SourceTrait, SourceFood:
		return fmt.Sprintf("%s(%s)", s.Kind, s.Name)
	default:
		return s.Kind.String()
	}
}
