package effects

import (
	"errors"
	"slices"
	"testing"
	"time"

	"gw2-resim/internal/faults"
	"gw2-resim/internal/gamedata"
)

const (
	testDurationSkill  uint32 = 1
	testIntensitySkill uint32 = 2
	testUnstackable    uint32 = 3
)

func testTable(durationLimit, intensityLimit int) *gamedata.Table {
	return gamedata.NewTable(map[uint32]gamedata.SkillInfo{
		testDurationSkill:  {Kind: gamedata.KindBoon, StackLimit: durationLimit, Stacking: gamedata.StackingDuration},
		testIntensitySkill: {Kind: gamedata.KindBoon, StackLimit: intensityLimit, Stacking: gamedata.StackingIntensity},
		testUnstackable:    {Kind: gamedata.KindAbility},
	})
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestDurationStackKeepsLongerWhenSingleSlot(t *testing.T) {
	tr := NewTracker(testTable(1, 1))
	if err := tr.AddStack(testDurationSkill, ms(3000), 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tr.AddStack(testDurationSkill, ms(5000), 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	left, err := tr.Remaining(testDurationSkill, ms(4000))
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if !slices.Equal(left, []time.Duration{ms(1000)}) {
		t.Fatalf("expected single stack at 1000ms, got %v", left)
	}
}

func TestDurationStackPromotesLongestQueued(t *testing.T) {
	tr := NewTracker(testTable(4, 1))
	for _, d := range []int{1000, 2000, 6000, 6000} {
		if err := tr.AddStack(testDurationSkill, ms(d), 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	// active 1000 expires, the first 6000 takes over and runs 500ms.
	left, err := tr.Remaining(testDurationSkill, ms(1500))
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	if len(left) != 3 || left[0] != ms(5500) {
		t.Fatalf("expected promoted 6000 stack at 5500ms, got %v", left)
	}
	n, err := tr.StackCount(testDurationSkill, ms(1500))
	if err != nil || n != 1 {
		t.Fatalf("duration stacking counts one stack, got %d (%v)", n, err)
	}
}

func TestDurationStackQueueEvictsShortestOnlyWhenLonger(t *testing.T) {
	tr := NewTracker(testTable(3, 1))
	for _, d := range []int{4000, 1000, 2000, 500, 3000} {
		if err := tr.AddStack(testDurationSkill, ms(d), 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	left, err := tr.Remaining(testDurationSkill, 0)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	slices.Sort(left)
	if want := []time.Duration{ms(2000), ms(3000), ms(4000)}; !slices.Equal(left, want) {
		t.Fatalf("expected %v, got %v", want, left)
	}
}

func TestDurationStackExpiresWithEmptyQueue(t *testing.T) {
	tr := NewTracker(testTable(2, 1))
	if err := tr.AddStack(testDurationSkill, ms(1000), 0); err != nil {
		t.Fatalf("add: %v", err)
	}
	applied, err := tr.IsApplied(testDurationSkill, ms(5000))
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if applied {
		t.Fatal("expected expired stack")
	}
}

func TestIntensityStackReplacesShortest(t *testing.T) {
	tr := NewTracker(testTable(1, 2))
	for _, d := range []int{1000, 2000, 3000} {
		if err := tr.AddStack(testIntensitySkill, ms(d), 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	left, err := tr.Remaining(testIntensitySkill, 0)
	if err != nil {
		t.Fatalf("remaining: %v", err)
	}
	slices.Sort(left)
	if want := []time.Duration{ms(2000), ms(3000)}; !slices.Equal(left, want) {
		t.Fatalf("expected %v, got %v", want, left)
	}
}

func TestIntensityStacksDecayIndependently(t *testing.T) {
	tr := NewTracker(testTable(1, 5))
	for _, d := range []int{1000, 2500, 4000} {
		if err := tr.AddStack(testIntensitySkill, ms(d), 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	cases := []struct {
		at   int
		want int
	}{
		{at: 999, want: 3},
		{at: 1000, want: 2},
		{at: 2500, want: 1},
		{at: 4000, want: 0},
	}
	for _, tc := range cases {
		n, err := tr.StackCount(testIntensitySkill, ms(tc.at))
		if err != nil {
			t.Fatalf("count at %d: %v", tc.at, err)
		}
		if n != tc.want {
			t.Fatalf("at %dms expected %d stacks, got %d", tc.at, tc.want, n)
		}
	}
}

func TestRemoveStackDropsShortest(t *testing.T) {
	tr := NewTracker(testTable(1, 5))
	for _, d := range []int{3000, 1000, 2000} {
		if err := tr.AddStack(testIntensitySkill, ms(d), 0); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := tr.RemoveStack(testIntensitySkill, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	left, _ := tr.Remaining(testIntensitySkill, 0)
	slices.Sort(left)
	if want := []time.Duration{ms(2000), ms(3000)}; !slices.Equal(left, want) {
		t.Fatalf("expected %v, got %v", want, left)
	}

	if err := tr.ClearStacks(testIntensitySkill, 0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := tr.StackCount(testIntensitySkill, 0); n != 0 {
		t.Fatalf("expected no stacks after clear, got %d", n)
	}
}

func TestTrackerRejectsBackwardsTime(t *testing.T) {
	tr := NewTracker(testTable(1, 5))
	if err := tr.AddStack(testIntensitySkill, ms(1000), ms(500)); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := tr.StackCount(testIntensitySkill, ms(100))
	if !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
}

func TestTrackerRejectsUnknownSkills(t *testing.T) {
	tr := NewTracker(testTable(1, 5))
	if err := tr.AddStack(99, ms(1000), 0); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error for unknown skill, got %v", err)
	}
	if err := tr.AddStack(testUnstackable, ms(1000), 0); !errors.Is(err, faults.ErrStructural) {
		t.Fatalf("expected structural error for unstackable skill, got %v", err)
	}
}

func TestCountsStayWithinLimit(t *testing.T) {
	tr := NewTracker(testTable(3, 4))
	for i := range 40 {
		now := ms(i * 250)
		if err := tr.AddStack(testDurationSkill, ms(500+i*37%900), now); err != nil {
			t.Fatalf("add: %v", err)
		}
		if err := tr.AddStack(testIntensitySkill, ms(800+i*53%1200), now); err != nil {
			t.Fatalf("add: %v", err)
		}
		d, err := tr.StackCount(testDurationSkill, now)
		if err != nil || d > 1 {
			t.Fatalf("duration count %d (%v)", d, err)
		}
		n, err := tr.StackCount(testIntensitySkill, now)
		if err != nil || n > 4 {
			t.Fatalf("intensity count %d (%v)", n, err)
		}
		if left, _ := tr.Remaining(testDurationSkill, now); len(left) > 3 {
			t.Fatalf("duration queue exceeded limit: %v", left)
		}
	}
}

func TestCounterFloorsAtZero(t *testing.T) {
	c := NewCounter()
	c.Add(gamedata.Might)
	c.Add(gamedata.Might)
	c.Remove(gamedata.Might)
	c.Remove(gamedata.Might)
	c.Remove(gamedata.Might)
	if n, _ := c.StackCount(gamedata.Might, 0); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	c.Add(gamedata.Vulnerability)
	c.Add(gamedata.Vulnerability)
	if ok, _ := c.IsApplied(gamedata.Vulnerability, 0); !ok {
		t.Fatal("expected vulnerability applied")
	}
	c.Clear(gamedata.Vulnerability)
	if n, _ := c.StackCount(gamedata.Vulnerability, 0); n != 0 {
		t.Fatalf("expected cleared, got %d", n)
	}
}

func TestTickGateGroupsCloseRecords(t *testing.T) {
	g := NewTickGate(ms(5))
	got := []bool{
		g.Observe(ms(1000)),
		g.Observe(ms(1003)),
		g.Observe(ms(1008)),
		g.Observe(ms(1013)),
		g.Observe(ms(2000)),
	}
	want := []bool{true, false, false, false, true}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if g.Last() != ms(2000) {
		t.Fatalf("expected last 2000ms, got %s", g.Last())
	}
}
