// Package classify turns the raw records of one encounter into the
// build-independent event timeline.
package classify

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"gw2-resim/internal/character"
	"gw2-resim/internal/effects"
	"gw2-resim/internal/evtc"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/timeline"
)

const op = "classify"

var (
	trackedPlayerBuffs = []uint32{gamedata.Fury, gamedata.Might, gamedata.KallasFervor}
	trackedTargetBuffs = []uint32{gamedata.Vulnerability}
)

// Config holds the static inputs of classification.
type Config struct {
	Meta         *gamedata.Table
	Coefficients *gamedata.Coefficients
	// Baseline is the build worn in the recorded fight.
	Baseline character.Build
	Rules    []ProcRule
	// Window is the correlation tolerance in log milliseconds.
	Window int64
	Logger *zap.Logger
}

// Classifier extracts timelines. It holds no per-log state and may be reused.
type Classifier struct {
	cfg Config
}

// New creates a classifier, filling unset fields with defaults.
func New(cfg Config) *Classifier {
	if cfg.Meta == nil {
		cfg.Meta = gamedata.DefaultTable()
	}
	if cfg.Coefficients == nil {
		cfg.Coefficients = gamedata.NewCoefficients(nil)
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Classifier{cfg: cfg}
}

// pass is the state of one classification run.
type pass struct {
	cfg     Config
	log     *zap.Logger
	records []evtc.CombatRecord
	player  evtc.Agent
	target  evtc.Agent
	inst    uint16
	armor   int64
	char    *character.Character
	buffs   *effects.Counter
	targets *effects.Counter
	health  float64
	ticks   *effects.TickGate
	events  timeline.Sequence
}

// Classify walks the log's records in time order and emits the semantic
// events of player's fight against target.
func (c *Classifier) Classify(ctx context.Context, log *evtc.Log, player, target evtc.Agent) (seq timeline.Sequence, err error) {
	ctx, span := otel.Tracer("gw2-resim/classify").Start(ctx, "classify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p, err := c.prepare(log, player, target)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(p.records)))

	for i := range p.records {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := p.step(i); err != nil {
			rec := p.records[i]
			return nil, fmt.Errorf("record %d at %dms: %w", i, rec.Time, err)
		}
	}
	span.SetAttributes(attribute.Int("events", len(p.events)))
	p.log.Debug("classified encounter",
		zap.Int("records", len(p.records)),
		zap.Int("events", len(p.events)),
	)
	return p.events, nil
}

// prepare runs every lookup before the walk so missing data fails fast.
func (c *Classifier) prepare(log *evtc.Log, player, target evtc.Agent) (*pass, error) {
	for set, sigils := range c.cfg.Baseline.Sigils {
		for _, s := range sigils {
			if !s.Reversible() {
				return nil, fmt.Errorf("%s: baseline sigil %s on %s cannot be removed from a recorded fight",
					op, s, character.WeaponSet(set))
			}
		}
	}
	inst, err := log.PlayerInstanceID(player)
	if err != nil {
		return nil, err
	}

	records := slices.Clone(log.Records)
	slices.SortStableFunc(records, func(a, b evtc.CombatRecord) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	var missing []uint32
	for _, r := range records {
		if r.IsPhysicalHit() && r.SrcAgent == player.Address && r.DstAgent == target.Address &&
			r.Result <= evtc.ResultCrit && r.SkillID != gamedata.SearingFissure {
			if _, ok := c.cfg.Coefficients.Power(r.SkillID); !ok && !slices.Contains(missing, r.SkillID) {
				missing = append(missing, r.SkillID)
			}
		}
	}
	if len(missing) > 0 {
		return nil, faults.Lookup(op, "no power coefficient for skills %v", missing)
	}

	buffs := effects.NewCounter()
	return &pass{
		cfg:     c.cfg,
		log:     c.cfg.Logger.With(zap.String("player", player.CharacterName())),
		records: records,
		player:  player,
		target:  target,
		inst:    inst,
		armor:   int64(target.Toughness) + gamedata.BaseEnemyArmor,
		char:    character.New(c.cfg.Baseline.Clone(), buffs, c.cfg.Meta),
		buffs:   buffs,
		targets: effects.NewCounter(),
		health:  1,
		ticks:   effects.NewTickGate(TickGap),
	}, nil
}

func logTime(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func (p *pass) step(i int) error {
	rec := p.records[i]
	switch {
	case rec.IsStateChange == evtc.StateChangeHealth && rec.SrcAgent == p.target.Address:
		p.health = float64(rec.DstAgent) / 10000
		return nil
	case rec.IsBuffApply() || rec.IsInitialBuff():
		return p.buffApply(i)
	case rec.IsStateChange == evtc.StateChangeWeaponSwap:
		p.weaponSwap(rec)
		return nil
	case rec.IsBuffRemoval():
		return p.buffRemoval(rec)
	case rec.IsPhysicalHit():
		return p.physicalHit(i)
	case rec.IsBuffDamage():
		return p.buffDamage(rec)
	}
	return nil
}

func (p *pass) buffApply(i int) error {
	rec := p.records[i]
	now := logTime(rec.Time)
	fromPlayer := rec.SrcAgent == p.player.Address

	if fromPlayer && rec.DstAgent == p.player.Address && slices.Contains(trackedPlayerBuffs, rec.SkillID) {
		if rec.IsOffcycle != 0 {
			return faults.Structural(op, "boon extension of skill %d is not supported", rec.SkillID)
		}
		base, err := baseDuration(p.char, rec.SkillID, int64(rec.Value), now)
		if err != nil {
			return err
		}
		p.buffs.Add(rec.SkillID)
		p.events = append(p.events, timeline.SelfBuffApplication{Time: now, Skill: rec.SkillID, BaseDuration: base})
	}

	if cond, ok := gamedata.ConditionFromSkill(rec.SkillID); ok && fromPlayer && rec.DstAgent == p.target.Address {
		if rec.IsOffcycle != 0 {
			return faults.Structural(op, "condition extension of skill %d is not supported", rec.SkillID)
		}
		base, err := baseDuration(p.char, rec.SkillID, int64(rec.Value), now)
		if err != nil {
			return err
		}
		p.events = append(p.events, timeline.TargetConditionApplication{
			Time:         now,
			Condition:    cond,
			BaseDuration: base,
			Source:       p.attribute(i, cond, base),
		})
	}

	if fromPlayer && rec.DstAgent == p.target.Address && slices.Contains(trackedTargetBuffs, rec.SkillID) {
		if rec.IsOffcycle != 0 {
			return faults.Structural(op, "extension of target buff %d is not supported", rec.SkillID)
		}
		base, err := baseDuration(p.char, rec.SkillID, int64(rec.Value), now)
		if err != nil {
			return err
		}
		p.targets.Add(rec.SkillID)
		p.events = append(p.events, timeline.TargetBuffApplication{Time: now, Skill: rec.SkillID, BaseDuration: base})
	}
	return nil
}

// Weapon set ids as logged; underwater sets are not tracked.
const (
	loggedWeaponSet1 = 4
	loggedWeaponSet2 = 5
)

func (p *pass) weaponSwap(rec evtc.CombatRecord) {
	if rec.SrcAgent != p.player.Address {
		return
	}
	var set character.WeaponSet
	switch rec.DstAgent {
	case loggedWeaponSet1:
		set = character.WeaponSet1
	case loggedWeaponSet2:
		set = character.WeaponSet2
	default:
		return
	}
	p.char.Build.ActiveSet = set
	p.events = append(p.events, timeline.WeaponSwap{Time: logTime(rec.Time), Set: set})
}

func (p *pass) buffRemoval(rec evtc.CombatRecord) error {
	// For removals the source agent is the one losing the buff.
	var counter *effects.Counter
	switch {
	case rec.SrcAgent == p.player.Address && slices.Contains(trackedPlayerBuffs, rec.SkillID):
		counter = p.buffs
	case rec.SrcAgent == p.target.Address && slices.Contains(trackedTargetBuffs, rec.SkillID):
		counter = p.targets
	default:
		return nil
	}
	switch rec.IsBuffRemove {
	case evtc.RemoveAll:
		counter.Clear(rec.SkillID)
	case evtc.RemoveSingle:
		counter.Remove(rec.SkillID)
	case evtc.RemoveManual:
		// Always follows a remove-all that already cleared the stacks.
	default:
		return faults.Structural(op, "unknown removal code %d for skill %d", rec.IsBuffRemove, rec.SkillID)
	}
	return nil
}

func (p *pass) physicalHit(i int) error {
	rec := p.records[i]
	switch rec.Result {
	case evtc.ResultKillingBlow, evtc.ResultDowned, evtc.ResultBreakbar:
		return nil
	}
	if rec.SrcMasterInstID == p.inst {
		return faults.Structural(op, "minion damage from skill %d is not supported", rec.SkillID)
	}
	if rec.SrcAgent != p.player.Address || rec.DstAgent != p.target.Address {
		return nil
	}
	if rec.Result > evtc.ResultCrit {
		return faults.Structural(op, "hit result %d of skill %d cannot be resimulated", rec.Result, rec.SkillID)
	}

	var coef float64
	if rec.SkillID == gamedata.SearingFissure {
		var err error
		if coef, err = p.searingFissureCoefficient(i); err != nil {
			return err
		}
	} else {
		var ok bool
		if coef, ok = p.cfg.Coefficients.Power(rec.SkillID); !ok {
			return faults.Lookup(op, "no power coefficient for skill %d", rec.SkillID)
		}
	}

	now := logTime(rec.Time)
	crit := rec.Result == evtc.ResultCrit
	power, err := p.char.Power(now)
	if err != nil {
		return err
	}
	base := float64(rec.Value) / power / coef * float64(p.armor)
	if crit {
		critMult, err := p.char.CritMultiplier(now)
		if err != nil {
			return err
		}
		base /= critMult
	}
	vuln, err := p.char.VulnerabilityMultiplier(p.targets, now)
	if err != nil {
		return err
	}
	base /= vuln
	mult, err := p.char.PhysicalDamageMultiplier(p.targets, now, p.health)
	if err != nil {
		return err
	}
	base /= mult

	p.events = append(p.events, timeline.PhysicalHit{
		Time:        now,
		BaseDamage:  int64(base),
		Coefficient: coef,
		EnemyArmor:  p.armor,
		Source:      timeline.FromSkill(rec.SkillID),
		Critical:    crit,
	})
	return nil
}

func (p *pass) buffDamage(rec evtc.CombatRecord) error {
	if rec.Result != evtc.ResultNormal || rec.SrcAgent != p.player.Address {
		return nil
	}
	now := logTime(rec.Time)
	if rec.IsOffcycle > 0 {
		if rec.SkillID != gamedata.BattleScars {
			return faults.Structural(op, "offcycle damage from skill %d is not supported", rec.SkillID)
		}
		p.events = append(p.events, timeline.LifeStealHit{
			Time:         now,
			BaseDamage:   gamedata.BattleScarsDamage,
			PowerScaling: gamedata.BattleScarsMultiplier,
			Source:       timeline.FromBuff(gamedata.BattleScars),
		})
		return nil
	}

	cond, ok := gamedata.ConditionFromSkill(rec.SkillID)
	if !ok {
		return faults.Structural(op, "buff damage from non-condition skill %d", rec.SkillID)
	}
	if cond == gamedata.ConditionTorment {
		if err := p.checkMovingTorment(rec, now); err != nil {
			return err
		}
	}
	// Damage records of one tick arrive a few milliseconds apart.
	if p.ticks.Observe(now) {
		p.events = append(p.events, timeline.ConditionTick{Time: now})
	}
	return nil
}

const stackTolerance = 0.01

// checkMovingTorment warns when torment damage only fits the moving-target
// formula. Ticks are still emitted as stationary.
func (p *pass) checkMovingTorment(rec evtc.CombatRecord, now time.Duration) error {
	condi, err := p.char.ConditionDamage(now)
	if err != nil {
		return err
	}
	mult, err := p.char.ConditionDamageMultiplier(gamedata.ConditionTorment, now)
	if err != nil {
		return err
	}
	vuln, err := p.char.VulnerabilityMultiplier(p.targets, now)
	if err != nil {
		return err
	}
	stacks := func(moving bool) float64 {
		s := gamedata.Scaling(gamedata.ConditionTorment, moving)
		return float64(rec.BuffDamage) / ((s.Base + condi*s.Scale) * mult * vuln)
	}
	whole := func(v float64) bool { return math.Abs(v-math.Round(v)) < stackTolerance && math.Round(v) > 0 }
	if moving, still := stacks(true), stacks(false); whole(moving) && !whole(still) {
		p.log.Warn("torment damage matches a moving target, resimulating as stationary",
			zap.Int64("time_ms", rec.Time),
			zap.Int32("damage", rec.BuffDamage),
			zap.Float64("moving_stacks", moving),
			zap.Float64("stationary_stacks", still),
		)
	}
	return nil
}
