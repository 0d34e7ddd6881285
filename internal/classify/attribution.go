package classify

import (
	"time"

	"go.uber.org/zap"

	"gw2-resim/internal/evtc"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/timeline"
)

// MarkerKind is the corroborating record a proc rule looks for.
type MarkerKind int

const (
	// MarkerNone accepts the signature duration alone.
	MarkerNone MarkerKind = iota
	// MarkerPhysicalHit needs a physical hit of the marker skill.
	MarkerPhysicalHit
	// MarkerBuffRemoval needs a removal of the marker buff.
	MarkerBuffRemoval
)

// ProcRule attributes condition applications with a signature base duration
// to a gear effect when corroborated within the correlation window.
type ProcRule struct {
	Name      string
	Condition gamedata.Condition
	Signature time.Duration
	Marker    MarkerKind
	MarkerID  uint32
	// Expected is the number of same-duration applications the proc makes.
	Expected int
	Source   timeline.Source
}

// DefaultRules covers the reversible sigils.
func DefaultRules() []ProcRule {
	return []ProcRule{
		{
			Name:      "geomancy",
			Condition: gamedata.ConditionBleeding,
			Signature: 8 * time.Second,
			Marker:    MarkerPhysicalHit,
			MarkerID:  gamedata.RingOfEarth,
			Expected:  3,
			Source:    timeline.FromSkill(gamedata.RingOfEarth),
		},
		{
			Name:      "doom",
			Condition: gamedata.ConditionPoisoned,
			Signature: 8 * time.Second,
			Marker:    MarkerBuffRemoval,
			MarkerID:  gamedata.DoomMarker,
			Expected:  3,
			Source:    timeline.FromSigil(runes.SigilDoom),
		},
		{
			Name:      "earth",
			Condition: gamedata.ConditionBleeding,
			Signature: 6 * time.Second,
			Source:    timeline.FromSigil(runes.SigilEarth),
		},
	}
}

func (r ProcRule) matches(cond gamedata.Condition, base time.Duration) bool {
	return r.Condition == cond && r.Signature == base
}

func (r ProcRule) isMarker(rec evtc.CombatRecord) bool {
	switch r.Marker {
	case MarkerPhysicalHit:
		return rec.IsPhysicalHit() && rec.SkillID == r.MarkerID
	case MarkerBuffRemoval:
		return rec.IsBuffRemoval() && rec.SkillID == r.MarkerID
	}
	return false
}

// attribute resolves the source of the condition application at index i.
func (p *pass) attribute(i int, cond gamedata.Condition, base time.Duration) timeline.Source {
	for _, rule := range p.cfg.Rules {
		if !rule.matches(cond, base) {
			continue
		}
		if rule.Marker == MarkerNone {
			return rule.Source
		}
		return p.corroborate(rule, i)
	}
	return timeline.Unknown
}

func (p *pass) corroborate(rule ProcRule, i int) timeline.Source {
	rec := p.records[i]
	lo, hi := window(p.records, i, p.cfg.Window)
	marker := false
	candidates, position := 0, 0
	for j := lo; j < hi; j++ {
		other := p.records[j]
		if rule.isMarker(other) {
			marker = true
		}
		if other.IsBuffApply() && other.SkillID == rec.SkillID && other.Value == rec.Value {
			candidates++
			if j == i {
				position = candidates
			}
		}
	}
	switch {
	case !marker || candidates < rule.Expected:
		return timeline.Unknown
	case candidates == rule.Expected:
		return rule.Source
	}
	p.log.Warn("more proc candidates than the proc applies, attributing the first ones",
		zap.String("rule", rule.Name),
		zap.Int64("time_ms", rec.Time),
		zap.Int("candidates", candidates),
		zap.Int("expected", rule.Expected),
		zap.Int("position", position),
	)
	if position > 0 && position <= rule.Expected {
		return rule.Source
	}
	return timeline.Unknown
}
