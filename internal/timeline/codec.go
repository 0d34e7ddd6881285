package timeline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"gw2-resim/internal/character"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
)

const formatVersion = 1

type wireFile struct {
	Version int         `cbor:"1,keyasint"`
	Events  []wireEvent `cbor:"2,keyasint"`
}

type wireEvent struct {
	Kind        Kind        `cbor:"1,keyasint"`
	Time        int64       `cbor:"2,keyasint"`
	Skill       uint32      `cbor:"3,keyasint,omitempty"`
	Duration    int64       `cbor:"4,keyasint,omitempty"`
	Damage      int64       `cbor:"5,keyasint,omitempty"`
	Amount      float64     `cbor:"6,keyasint,omitempty"`
	Coefficient float64     `cbor:"7,keyasint,omitempty"`
	Armor       int64       `cbor:"8,keyasint,omitempty"`
	Critical    bool        `cbor:"9,keyasint,omitempty"`
	Moving      bool        `cbor:"10,keyasint,omitempty"`
	Condition   uint8       `cbor:"11,keyasint,omitempty"`
	Set         uint8       `cbor:"12,keyasint,omitempty"`
	Source      *wireSource `cbor:"13,keyasint,omitempty"`
}

type wireSource struct {
	Kind  SourceKind `cbor:"1,keyasint"`
	Skill uint32     `cbor:"2,keyasint,omitempty"`
	Sigil string     `cbor:"3,keyasint,omitempty"`
	Name  string     `cbor:"4,keyasint,omitempty"`
}

var encMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// Write encodes seq as deterministic CBOR.
func Write(w io.Writer, seq Sequence) error {
	file := wireFile{Version: formatVersion, Events: make([]wireEvent, 0, len(seq))}
	for i, e := range seq {
		we, err := toWire(e)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		file.Events = append(file.Events, we)
	}
	return encMode.NewEncoder(w).Encode(file)
}

// Read decodes a sequence written by Write.
func Read(r io.Reader) (Sequence, error) {
	var file wireFile
	if err := cbor.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode timeline: %w", err)
	}
	if file.Version != formatVersion {
		return nil, fmt.Errorf("unsupported timeline version %d", file.Version)
	}
	seq := make(Sequence, 0, len(file.Events))
	for i, we := range file.Events {
		e, err := fromWire(we)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		seq = append(seq, e)
	}
	return seq, nil
}

// WriteFile stores seq at path.
func WriteFile(path string, seq Sequence) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, seq); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a sequence stored by WriteFile.
func ReadFile(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func toWire(e Event) (wireEvent, error) {
	we := wireEvent{Kind: e.Kind(), Time: int64(e.At())}
	switch ev := e.(type) {
	case PhysicalHit:
		we.Damage = ev.BaseDamage
		we.Coefficient = ev.Coefficient
		we.Armor = ev.EnemyArmor
		we.Critical = ev.Critical
		we.Source = sourceToWire(ev.Source)
	case SelfBuffApplication:
		we.Skill = ev.Skill
		we.Duration = int64(ev.BaseDuration)
	case TargetBuffApplication:
		we.Skill = ev.Skill
		we.Duration = int64(ev.BaseDuration)
	case TargetConditionApplication:
		we.Condition = uint8(ev.Condition)
		we.Duration = int64(ev.BaseDuration)
		we.Source = sourceToWire(ev.Source)
	case ConditionTick:
		we.Moving = ev.TargetMoving
	case LifeStealHit:
		we.Amount = ev.BaseDamage
		we.Coefficient = ev.PowerScaling
		we.Source = sourceToWire(ev.Source)
	case WeaponSwap:
		we.Set = uint8(ev.Set)
	default:
		return wireEvent{}, fmt.Errorf("unsupported event type %T", e)
	}
	return we, nil
}

func fromWire(we wireEvent) (Event, error) {
	at := time.Duration(we.Time)
	switch we.Kind {
	case KindPhysicalHit:
		return PhysicalHit{
			Time:        at,
			BaseDamage:  we.Damage,
			Coefficient: we.Coefficient,
			EnemyArmor:  we.Armor,
			Source:      sourceFromWire(we.Source),
			Critical:    we.Critical,
		}, nil
	case KindSelfBuffApplication:
		return SelfBuffApplication{Time: at, Skill: we.Skill, BaseDuration: time.Duration(we.Duration)}, nil
	case KindTargetBuffApplication:
		return TargetBuffApplication{Time: at, Skill: we.Skill, BaseDuration: time.Duration(we.Duration)}, nil
	case KindTargetConditionApplication:
		cond := gamedata.Condition(we.Condition)
		if cond.SkillID() == 0 {
			return nil, fmt.Errorf("unknown condition %d", we.Condition)
		}
		return TargetConditionApplication{
			Time:         at,
			Condition:    cond,
			BaseDuration: time.Duration(we.Duration),
			Source:       sourceFromWire(we.Source),
		}, nil
	case KindConditionTick:
		return ConditionTick{Time: at, TargetMoving: we.Moving}, nil
	case KindLifeStealHit:
		return LifeStealHit{Time: at, BaseDamage: we.Amount, PowerScaling: we.Coefficient, Source: sourceFromWire(we.Source)}, nil
	case KindWeaponSwap:
		if we.Set > uint8(character.WeaponSet2) {
			return nil, fmt.Errorf("unknown weapon set %d", we.Set)
		}
		return WeaponSwap{Time: at, Set: character.WeaponSet(we.Set)}, nil
	}
	return nil, fmt.Errorf("unknown event kind %d", we.Kind)
}

func sourceToWire(s Source) *wireSource {
	if s.Kind == SourceUnknown {
		return nil
	}
	return &wireSource{Kind: s.Kind, Skill: s.Skill, Sigil: string(s.Sigil), Name: s.Name}
}

func sourceFromWire(ws *wireSource) Source {
	if ws == nil {
		return Unknown
	}
	return Source{Kind: ws.Kind, Skill: ws.Skill, Sigil: runes.Sigil(ws.Sigil), Name: ws.Name}
}
