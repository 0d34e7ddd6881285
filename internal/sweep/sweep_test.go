package sweep

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"gw2-resim/internal/character"
	"gw2-resim/internal/engine"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
	"gw2-resim/internal/timeline"
)

const maxHealth = 11_698_890

func recordedFight() timeline.Sequence {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return timeline.Sequence{
		timeline.SelfBuffApplication{Time: 0, Skill: gamedata.Might, BaseDuration: 8 * time.Second},
		timeline.SelfBuffApplication{Time: 0, Skill: gamedata.Fury, BaseDuration: 4 * time.Second},
		timeline.TargetConditionApplication{Time: ms(100), Condition: gamedata.ConditionBleeding, BaseDuration: 6 * time.Second, Source: timeline.FromSigil(runes.SigilEarth)},
		timeline.PhysicalHit{Time: ms(120), BaseDamage: 690, Coefficient: 1, EnemyArmor: 2597, Source: timeline.FromSkill(gamedata.RingOfEarth)},
		timeline.TargetConditionApplication{Time: ms(120), Condition: gamedata.ConditionBleeding, BaseDuration: 5 * time.Second, Source: timeline.FromSkill(gamedata.RingOfEarth)},
		timeline.TargetConditionApplication{Time: ms(300), Condition: gamedata.ConditionTorment, BaseDuration: 5 * time.Second},
		timeline.ConditionTick{Time: ms(1000)},
		timeline.WeaponSwap{Time: ms(1500), Set: character.WeaponSet2},
		timeline.TargetConditionApplication{Time: ms(1600), Condition: gamedata.ConditionPoisoned, BaseDuration: 8 * time.Second, Source: timeline.FromSigil(runes.SigilDoom)},
		timeline.TargetConditionApplication{Time: ms(1700), Condition: gamedata.ConditionBleeding, BaseDuration: 6 * time.Second, Source: timeline.FromSigil(runes.SigilEarth)},
		timeline.ConditionTick{Time: ms(2000)},
		timeline.ConditionTick{Time: ms(3000), TargetMoving: true},
		timeline.ConditionTick{Time: ms(4000)},
	}
}

func smallSpace() Space {
	return Space{
		Chests:         []runes.Chest{runes.ChestViper},
		InfusionBudget: 1,
		Presets:        []runes.Preset{runes.PresetNightmare},
		Replacements:   []runes.Sigil{runes.SigilBursting},
	}
}

func TestDefaultSpaceCandidates(t *testing.T) {
	cands := DefaultSpace().Candidates()
	// 4x4 slot pairs minus 3 duplicates per set
	if want := 2 * 19 * 5 * 13 * 13; len(cands) != want {
		t.Fatalf("expected %d candidates, got %d", want, len(cands))
	}
	baselines := 0
	for i, c := range cands {
		if c.Index != i {
			t.Fatalf("candidate %d has index %d", i, c.Index)
		}
		if c.ExpertiseInfusions+c.ConditionInfusions != DefaultInfusionBudget {
			t.Fatalf("candidate %s does not use the full budget", c)
		}
		for _, set := range c.Replacements {
			if set[0] != runes.SigilNone && set[0] == set[1] {
				t.Fatalf("candidate %s slots a sigil twice", c)
			}
		}
		if c.IsBaseline() {
			baselines++
		}
	}
	if baselines != 1 {
		t.Fatalf("expected one baseline candidate, got %d", baselines)
	}
	if !cands[0].IsBaseline() {
		t.Fatalf("expected the first candidate to be the baseline, got %s", cands[0])
	}
}

func TestSpaceValidate(t *testing.T) {
	if err := DefaultSpace().Validate(); err != nil {
		t.Fatalf("default space: %v", err)
	}
	cases := map[string]Space{
		"no chests":        {InfusionBudget: 1, Presets: runes.Presets()},
		"negative budget":  {Chests: []runes.Chest{runes.ChestViper}, InfusionBudget: -1, Presets: runes.Presets()},
		"unknown preset":   {Chests: []runes.Chest{runes.ChestViper}, Presets: []runes.Preset{"scholar"}},
		"proc replacement": {Chests: []runes.Chest{runes.ChestViper}, Presets: runes.Presets(), Replacements: []runes.Sigil{runes.SigilEarth}},
		"duplicate sigil":  {Chests: []runes.Chest{runes.ChestViper}, Presets: runes.Presets(), Replacements: []runes.Sigil{runes.SigilMalice, runes.SigilMalice}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			if err := s.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCandidateBuild(t *testing.T) {
	base := character.Baseline()
	c := Candidate{
		Chest:              runes.ChestSinister,
		ExpertiseInfusions: 3,
		ConditionInfusions: 15,
		Preset:             runes.PresetTempest,
		Replacements: [2][2]runes.Sigil{
			{runes.SigilNone, runes.SigilMalice},
			{runes.SigilBursting, runes.SigilNone},
		},
	}
	build, excl, err := c.Build(base)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if want := (engine.Exclusions{Geomancy: true, EarthSet2: true}); excl != want {
		t.Fatalf("expected exclusions %+v, got %+v", want, excl)
	}
	want := [2][2]runes.Sigil{
		{runes.SigilEarth, runes.SigilMalice},
		{runes.SigilBursting, runes.SigilDoom},
	}
	if build.Sigils != want {
		t.Fatalf("unexpected sigils %v", build.Sigils)
	}
	if build.Power != base.Power+34+36 {
		t.Fatalf("unexpected power %d", build.Power)
	}
	if build.ConditionDamage != base.ConditionDamage+20-15+36-175 {
		t.Fatalf("unexpected condition damage %d", build.ConditionDamage)
	}
	if build.Expertise != base.Expertise-67+15+36 {
		t.Fatalf("unexpected expertise %d", build.Expertise)
	}
	if build.GlobalConditionDuration != 0.25 {
		t.Fatalf("unexpected global duration %v", build.GlobalConditionDuration)
	}
	if base.Sigils[0][1] != runes.SigilGeomancy {
		t.Fatal("deriving a candidate must not touch the baseline")
	}

	baseline, excl, err := Candidate{Chest: runes.ChestViper, Preset: runes.PresetNightmare}.Build(base)
	if err != nil {
		t.Fatalf("baseline build: %v", err)
	}
	if excl != (engine.Exclusions{}) || baseline.Power != base.Power || baseline.Expertise != base.Expertise {
		t.Fatalf("baseline candidate changed the build: %+v %+v", baseline, excl)
	}
}

func TestExplorerMatchesDirectRuns(t *testing.T) {
	seq := recordedFight()
	ex := &Explorer{Space: smallSpace(), Baseline: character.Baseline(), MaxHealth: maxHealth, Concurrency: 4, Order: OrderEnumeration}
	report, err := ex.Run(context.Background(), seq)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// 3 pairs per set, 2 infusion splits
	if len(report.Results) != 18 {
		t.Fatalf("expected 18 results, got %d", len(report.Results))
	}
	for i, res := range report.Results {
		if res.Candidate.Index != i {
			t.Fatalf("result %d is candidate %d", i, res.Candidate.Index)
		}
		build, excl, err := res.Candidate.Build(character.Baseline())
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		dist, err := engine.NewSimulator(build, maxHealth, excl, nil, nil).Run(seq)
		if err != nil {
			t.Fatalf("direct run: %v", err)
		}
		if dist.Fingerprint() != res.Fingerprint || dist.Total != res.Total {
			t.Fatalf("candidate %s: sweep %d, direct %d", res.Candidate, res.Total, dist.Total)
		}
	}
	base, ok := report.Baseline()
	if !ok || base.Total == 0 {
		t.Fatalf("expected a baseline result, got %+v", base)
	}
	if report.RunID.String() == "" || report.Elapsed < 0 {
		t.Fatalf("unexpected report metadata %+v", report)
	}
}

func TestExplorerOrdering(t *testing.T) {
	seq := recordedFight()
	sequential := &Explorer{Space: smallSpace(), Baseline: character.Baseline(), MaxHealth: maxHealth, Concurrency: 1, Order: OrderDamage}
	parallel := &Explorer{Space: smallSpace(), Baseline: character.Baseline(), MaxHealth: maxHealth, Concurrency: 8, Order: OrderDamage}
	a, err := sequential.Run(context.Background(), seq)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	b, err := parallel.Run(context.Background(), seq)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if !slices.IsSortedFunc(a.Results, func(x, y Result) int { return int(y.Total - x.Total) }) {
		t.Fatal("results are not sorted by damage")
	}
	for i := range a.Results {
		if a.Results[i].Candidate.Index != b.Results[i].Candidate.Index || a.Results[i].Total != b.Results[i].Total {
			t.Fatalf("position %d differs between sequential and parallel sweeps", i)
		}
	}
	best, ok := a.Best()
	if !ok || best.Total != a.Results[0].Total {
		t.Fatalf("best %+v does not match first result %+v", best, a.Results[0])
	}
}

func TestExplorerProgress(t *testing.T) {
	var calls atomic.Int64
	ex := &Explorer{
		Space:     smallSpace(),
		Baseline:  character.Baseline(),
		MaxHealth: maxHealth,
		Progress:  func(done, total int) { calls.Add(1) },
	}
	report, err := ex.Run(context.Background(), recordedFight())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if int(calls.Load()) != len(report.Results) {
		t.Fatalf("expected %d progress calls, got %d", len(report.Results), calls.Load())
	}
}

func TestExplorerFailureAbortsSweep(t *testing.T) {
	seq := append(recordedFight(), timeline.PhysicalHit{Time: 5 * time.Second, BaseDamage: 100, Coefficient: 1, EnemyArmor: 2597})
	ex := &Explorer{Space: smallSpace(), Baseline: character.Baseline(), MaxHealth: maxHealth, Concurrency: 2}
	report, err := ex.Run(context.Background(), seq)
	if !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if report != nil {
		t.Fatal("a failed sweep must not return partial results")
	}
}

func TestExplorerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &Explorer{Space: DefaultSpace(), Baseline: character.Baseline(), MaxHealth: maxHealth}
	if _, err := ex.Run(ctx, recordedFight()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestParseOrder(t *testing.T) {
	if o, err := ParseOrder("enumeration"); err != nil || o != OrderEnumeration {
		t.Fatalf("unexpected %v %v", o, err)
	}
	if o, err := ParseOrder(""); err != nil || o != OrderDamage {
		t.Fatalf("unexpected %v %v", o, err)
	}
	if _, err := ParseOrder("random"); err == nil {
		t.Fatal("expected error")
	}
}
