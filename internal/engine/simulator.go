// Package engine replays a semantic event timeline against a build and
// reports the resulting damage.
package engine

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"gw2-resim/internal/character"
	"gw2-resim/internal/effects"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/timeline"
)

const op = "engine"

// Exclusions removes proc effects of sigils that a candidate build no longer
// wears. Earth is tracked per weapon set.
type Exclusions struct {
	Geomancy  bool
	Doom      bool
	EarthSet1 bool
	EarthSet2 bool
}

func (e Exclusions) physical(src timeline.Source) bool {
	return e.Geomancy && src.IsSkill(gamedata.RingOfEarth)
}

func (e Exclusions) condition(src timeline.Source, set character.WeaponSet) bool {
	switch {
	case e.Geomancy && src.IsSkill(gamedata.RingOfEarth):
		return true
	case e.Doom && src.IsSigil(runes.SigilDoom):
		return true
	case src.IsSigil(runes.SigilEarth):
		return (e.EarthSet1 && set == character.WeaponSet1) || (e.EarthSet2 && set == character.WeaponSet2)
	}
	return false
}

// Simulator replays timelines for one build. It is not mutated by Run and
// may be shared between goroutines.
type Simulator struct {
	Build      character.Build
	MaxHealth  int64
	Exclusions Exclusions
	Meta       *gamedata.Table
	Logger     *zap.Logger
}

// NewSimulator creates a simulator for build against a target with maxHealth.
func NewSimulator(build character.Build, maxHealth int64, excl Exclusions, meta *gamedata.Table, logger *zap.Logger) *Simulator {
	if meta == nil {
		meta = gamedata.DefaultTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		Build:      build,
		MaxHealth:  maxHealth,
		Exclusions: excl,
		Meta:       meta,
		Logger:     logger,
	}
}

type replay struct {
	sim    *Simulator
	log    *zap.Logger
	char   *character.Character
	player *effects.Tracker
	target *effects.Tracker
	conds  conditionStacks
	dist   *DamageDistribution
}

// Run replays seq. Identical inputs always produce identical distributions.
func (s *Simulator) Run(seq timeline.Sequence) (*DamageDistribution, error) {
	if s.MaxHealth <= 0 {
		return nil, faults.Structural(op, "enemy max health must be positive, got %d", s.MaxHealth)
	}
	if !seq.Sorted() {
		return nil, faults.Structural(op, "event sequence is not in time order")
	}
	meta := s.Meta
	if meta == nil {
		meta = gamedata.DefaultTable()
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	player := effects.NewTracker(meta)
	r := &replay{
		sim:    s,
		log:    log,
		char:   character.New(s.Build.Clone(), player, meta),
		player: player,
		target: effects.NewTracker(meta),
		dist:   NewDamageDistribution(),
	}
	for i, ev := range seq {
		if err := r.apply(ev); err != nil {
			return nil, fmt.Errorf("event %d (%s at %s): %w", i, ev.Kind(), ev.At(), err)
		}
		r.dist.Duration = ev.At()
	}
	return r.dist, nil
}

func (r *replay) apply(ev timeline.Event) error {
	switch e := ev.(type) {
	case timeline.PhysicalHit:
		return r.physicalHit(e)
	case timeline.SelfBuffApplication:
		d, err := r.duration(e.Skill, e.BaseDuration, e.Time)
		if err != nil {
			return err
		}
		return r.player.AddStack(e.Skill, d, e.Time)
	case timeline.TargetBuffApplication:
		d, err := r.duration(e.Skill, e.BaseDuration, e.Time)
		if err != nil {
			return err
		}
		return r.target.AddStack(e.Skill, d, e.Time)
	case timeline.TargetConditionApplication:
		if r.sim.Exclusions.condition(e.Source, r.char.Build.ActiveSet) {
			return nil
		}
		d, err := r.duration(e.Condition.SkillID(), e.BaseDuration, e.Time)
		if err != nil {
			return err
		}
		r.conds.add(e.Condition, d, e.Time)
		return nil
	case timeline.ConditionTick:
		return r.conditionTick(e)
	case timeline.LifeStealHit:
		return r.lifeSteal(e)
	case timeline.WeaponSwap:
		r.char.Build.ActiveSet = e.Set
		return nil
	}
	return faults.Structural(op, "unsupported event %T", ev)
}

// duration rescales a base duration by the build's multiplier at now.
func (r *replay) duration(skill uint32, base, now time.Duration) (time.Duration, error) {
	m, err := r.char.DurationMultiplier(skill, now)
	if err != nil {
		return 0, err
	}
	ms := math.Round(float64(base.Milliseconds()) * m)
	return time.Duration(ms) * time.Millisecond, nil
}

func (r *replay) physicalHit(e timeline.PhysicalHit) error {
	if r.sim.Exclusions.physical(e.Source) {
		return nil
	}
	if e.Source.Kind != timeline.SourceSkill {
		return faults.Structural(op, "physical hit at %s has no skill source (%s)", e.Time, e.Source)
	}
	if e.EnemyArmor <= 0 {
		return faults.Structural(op, "physical hit at %s has armor %d", e.Time, e.EnemyArmor)
	}
	power, err := r.char.Power(e.Time)
	if err != nil {
		return err
	}
	dmg := float64(e.BaseDamage) * power * e.Coefficient / float64(e.EnemyArmor)
	if e.Critical {
		crit, err := r.char.CritMultiplier(e.Time)
		if err != nil {
			return err
		}
		dmg *= crit
	}
	vuln, err := r.char.VulnerabilityMultiplier(r.target, e.Time)
	if err != nil {
		return err
	}
	maxHealth := float64(r.sim.MaxHealth)
	health := (maxHealth - float64(r.dist.Total)) / maxHealth
	mult, err := r.char.PhysicalDamageMultiplier(r.target, e.Time, health)
	if err != nil {
		return err
	}
	dmg *= vuln * mult

	amount := roundDamage(dmg)
	r.dist.Add(e.Source.Skill, amount)
	if ce := r.log.Check(zap.DebugLevel, "physical hit"); ce != nil {
		ce.Write(
			zap.Duration("at", e.Time),
			zap.Uint32("skill", e.Source.Skill),
			zap.Int64("base", e.BaseDamage),
			zap.Int64("damage", amount),
			zap.Bool("crit", e.Critical),
			zap.Float64("power", power),
			zap.Float64("health", health),
		)
	}
	return nil
}

func (r *replay) conditionTick(e timeline.ConditionTick) error {
	for _, c := range gamedata.Conditions {
		if r.conds.count(c) == 0 {
			continue
		}
		condi, err := r.char.ConditionDamage(e.Time)
		if err != nil {
			return err
		}
		mult, err := r.char.ConditionDamageMultiplier(c, e.Time)
		if err != nil {
			return err
		}
		vuln, err := r.char.VulnerabilityMultiplier(r.target, e.Time)
		if err != nil {
			return err
		}
		scaling := gamedata.Scaling(c, e.TargetMoving)
		perTick := (scaling.Base + condi*scaling.Scale) * mult * vuln

		stacks := r.conds.count(c)
		dmg, err := r.conds.tick(c, perTick, e.Time)
		if err != nil {
			return err
		}
		r.dist.Add(c.SkillID(), dmg)
		if ce := r.log.Check(zap.DebugLevel, "condition tick"); ce != nil {
			ce.Write(
				zap.Duration("at", e.Time),
				zap.Stringer("condition", c),
				zap.Int("stacks", stacks),
				zap.Float64("per_stack", perTick),
				zap.Int64("damage", dmg),
			)
		}
	}
	return nil
}

func (r *replay) lifeSteal(e timeline.LifeStealHit) error {
	if e.Source.Kind != timeline.SourceBuff && e.Source.Kind != timeline.SourceSkill {
		return faults.Structural(op, "life steal at %s has no source (%s)", e.Time, e.Source)
	}
	power, err := r.char.Power(e.Time)
	if err != nil {
		return err
	}
	amount := roundDamage(e.BaseDamage + power*e.PowerScaling)
	r.dist.Add(e.Source.Skill, amount)
	if ce := r.log.Check(zap.DebugLevel, "life steal"); ce != nil {
		ce.Write(zap.Duration("at", e.Time), zap.Uint32("buff", e.Source.Skill), zap.Int64("damage", amount))
	}
	return nil
}
