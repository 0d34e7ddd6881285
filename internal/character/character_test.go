package character

import (
	"errors"
	"math"
	"testing"

	"gw2-resim/internal/effects"
	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
	"gw2-resim/internal/runes"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func newCharacter(build Build) (*Character, *effects.Counter) {
	buffs := effects.NewCounter()
	return New(build, buffs, gamedata.DefaultTable()), buffs
}

func TestMightAndFervorScaleStats(t *testing.T) {
	c, buffs := newCharacter(Baseline())
	for range 10 {
		buffs.Add(gamedata.Might)
	}
	buffs.Add(gamedata.KallasFervor)
	buffs.Add(gamedata.KallasFervor)

	power, err := c.Power(0)
	if err != nil || power != 2173+300 {
		t.Fatalf("power = %v (%v)", power, err)
	}
	condi, _ := c.ConditionDamage(0)
	if condi != 1672+300 {
		t.Fatalf("condition damage = %v", condi)
	}
	ferocity, _ := c.Ferocity(0)
	if ferocity != 60 {
		t.Fatalf("ferocity = %v", ferocity)
	}
	crit, _ := c.CritMultiplier(0)
	if !near(crit, 1.5+60.0/1500) {
		t.Fatalf("crit multiplier = %v", crit)
	}
}

func TestMightOverLimitIsStructural(t *testing.T) {
	c, buffs := newCharacter(Baseline())
	for range 26 {
		buffs.Add(gamedata.Might)
	}
	if _, err := c.Power(0); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestVulnerabilityOverLimitIsStructural(t *testing.T) {
	c, _ := newCharacter(Baseline())
	target := effects.NewCounter()
	for range 26 {
		target.Add(gamedata.Vulnerability)
	}
	if _, err := c.VulnerabilityMultiplier(target, 0); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("vulnerability multiplier: expected structural error, got %v", err)
	}
	if _, err := c.PhysicalDamageMultiplier(target, 0, 1); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("physical multiplier: expected structural error, got %v", err)
	}
}

func TestConditionDurationComposition(t *testing.T) {
	c, buffs := newCharacter(Baseline())
	base := 1 + 633.0/1500 + 0.2 + 0.1

	d, err := c.ConditionDuration(gamedata.Bleeding, 0)
	if err != nil || !near(d, base) {
		t.Fatalf("bleeding without fury = %v (%v), want %v", d, err, base)
	}
	buffs.Add(gamedata.Fury)
	d, _ = c.ConditionDuration(gamedata.Bleeding, 0)
	if !near(d, base+0.25) {
		t.Fatalf("bleeding with fury = %v, want %v", d, base+0.25)
	}
	d, _ = c.ConditionDuration(gamedata.Poisoned, 0)
	if !near(d, base) {
		t.Fatalf("fury must not gate poison, got %v", d)
	}

	c.Build.Sigils[WeaponSet1] = [2]runes.Sigil{runes.SigilDemons, runes.SigilMalice}
	d, _ = c.ConditionDuration(gamedata.Torment, 0)
	if !near(d, base+0.2+0.1) {
		t.Fatalf("torment with demons and malice = %v", d)
	}
	c.Build.ActiveSet = WeaponSet2
	d, _ = c.ConditionDuration(gamedata.Torment, 0)
	if !near(d, base) {
		t.Fatalf("inactive set sigils must not count, got %v", d)
	}
}

func TestDurationsAreCapped(t *testing.T) {
	b := Baseline()
	b.Expertise = 3000
	b.Concentration = 2000
	c, _ := newCharacter(b)
	d, err := c.ConditionDuration(gamedata.Bleeding, 0)
	if err != nil || d != MaxDurationMultiplier {
		t.Fatalf("condition duration = %v (%v)", d, err)
	}
	if c.BoonDuration() != MaxDurationMultiplier {
		t.Fatalf("boon duration = %v", c.BoonDuration())
	}
}

func TestDurationMultiplierByKind(t *testing.T) {
	c, _ := newCharacter(Baseline())
	if m, err := c.DurationMultiplier(gamedata.KallasFervor, 0); err != nil || m != 1 {
		t.Fatalf("generic buff multiplier = %v (%v)", m, err)
	}
	if m, _ := c.DurationMultiplier(gamedata.Might, 0); m != 1 {
		t.Fatalf("boon multiplier without concentration = %v", m)
	}
	if _, err := c.DurationMultiplier(gamedata.SearingFissure, 0); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error for unknown kind, got %v", err)
	}
}

func TestConditionDamageMultiplier(t *testing.T) {
	c, buffs := newCharacter(Baseline())
	buffs.Add(gamedata.KallasFervor)
	m, err := c.ConditionDamageMultiplier(gamedata.ConditionBleeding, 0)
	if err != nil || !near(m, 1.02*1.25) {
		t.Fatalf("bleeding multiplier = %v (%v)", m, err)
	}
	c.Build.Sigils[WeaponSet1][1] = runes.SigilBursting
	m, _ = c.ConditionDamageMultiplier(gamedata.ConditionBurning, 0)
	if !near(m, 1.02*1.05) {
		t.Fatalf("burning multiplier with bursting = %v", m)
	}
}

func TestPhysicalDamageMultiplierIsAdditive(t *testing.T) {
	c, _ := newCharacter(Baseline())
	target := effects.NewCounter()
	for range 10 {
		target.Add(gamedata.Vulnerability)
	}
	cases := []struct {
		set    WeaponSet
		health float64
		want   float64
	}{
		{set: WeaponSet1, health: 1, want: 1 + 0.05 + 0.05 + 0.25},
		{set: WeaponSet1, health: 0.8, want: 1 + 0.05 + 0.05 + 0.25},
		{set: WeaponSet2, health: 0.79, want: 1 + 0.1 + 0.05},
	}
	for _, tc := range cases {
		c.Build.ActiveSet = tc.set
		got, err := c.PhysicalDamageMultiplier(target, 0, tc.health)
		if err != nil || !near(got, tc.want) {
			t.Fatalf("set %s health %v: got %v (%v), want %v", tc.set, tc.health, got, err, tc.want)
		}
	}
	v, _ := c.VulnerabilityMultiplier(target, 0)
	if !near(v, 1.1) {
		t.Fatalf("vulnerability multiplier = %v", v)
	}
}

func TestApplyPresetAndClone(t *testing.T) {
	base := Baseline()
	b := base.Clone()
	if err := b.ApplyPreset(runes.PresetTormenting); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if b.GlobalConditionDuration != 0 || !near(b.ConditionDuration[gamedata.Torment], 0.6) {
		t.Fatalf("unexpected durations %v %v", b.GlobalConditionDuration, b.ConditionDuration)
	}
	if !near(base.ConditionDuration[gamedata.Torment], 0.1) {
		t.Fatal("clone must not share maps with the original")
	}
	if err := b.ApplyPreset("unknown"); err == nil {
		t.Fatal("expected unknown preset error")
	}
}
