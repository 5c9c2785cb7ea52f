package rewards

import (
	"math/rand"
	"testing"
)

func TestApplyXPSingleLevelUp(t *testing.T) {
	stats := Stats{Level: 1, XP: 95, XPToNextLevel: 100}

	next, levels := ApplyXP(stats, 30, DefaultCurve)
	if next.Level != 2 || next.XP != 25 {
		t.Fatalf("expected level 2 with 25 xp, got %+v", next)
	}
	if next.XPToNextLevel != DefaultCurve(2) {
		t.Fatalf("expected threshold %d, got %d", DefaultCurve(2), next.XPToNextLevel)
	}
	if len(levels) != 1 || levels[0] != 2 {
		t.Fatalf("expected one level-up to 2, got %v", levels)
	}
}

func TestApplyXPMultipleLevelsAscending(t *testing.T) {
	stats := InitialStats(DefaultCurve)
	// 100 (1->2) + 110 (2->3) + 121 (3->4) = 331
	next, levels := ApplyXP(stats, 335, DefaultCurve)
	if next.Level != 4 || next.XP != 4 {
		t.Fatalf("expected level 4 with 4 xp, got %+v", next)
	}
	want := []int{2, 3, 4}
	if len(levels) != len(want) {
		t.Fatalf("expected levels %v, got %v", want, levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("expected levels %v, got %v", want, levels)
		}
	}
}

func TestApplyXPInvariantHoldsForRandomInputs(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		start := Stats{Level: 1 + rnd.Intn(20)}
		start.XPToNextLevel = DefaultCurve(start.Level)
		start.XP = rnd.Intn(start.XPToNextLevel)
		amount := rnd.Intn(5_000)

		next, levels := ApplyXP(start, amount, DefaultCurve)
		if next.XP >= next.XPToNextLevel {
			t.Fatalf("xp %d not below threshold %d", next.XP, next.XPToNextLevel)
		}
		if next.Level-start.Level != len(levels) {
			t.Fatalf("level delta %d does not match %d level-ups", next.Level-start.Level, len(levels))
		}

		crossed := 0
		total := start.XP + amount
		lvl, need := start.Level, start.XPToNextLevel
		for total >= need {
			total -= need
			lvl++
			need = DefaultCurve(lvl)
			crossed++
		}
		if crossed != len(levels) {
			t.Fatalf("expected %d thresholds crossed, got %d", crossed, len(levels))
		}
	}
}

func TestApplyXPIgnoresNegativeAmount(t *testing.T) {
	stats := Stats{Level: 3, XP: 10, XPToNextLevel: 121}
	next, levels := ApplyXP(stats, -50, DefaultCurve)
	if next != stats || len(levels) != 0 {
		t.Fatalf("expected unchanged stats, got %+v %v", next, levels)
	}
}

func TestApplyXPRepairsInvalidThreshold(t *testing.T) {
	next, _ := ApplyXP(Stats{Level: 0, XP: 0, XPToNextLevel: 0}, 0, nil)
	if next.Level != 1 || next.XPToNextLevel != 100 {
		t.Fatalf("expected repaired stats, got %+v", next)
	}
}

func TestApplyXPTerminatesWithDegenerateCurve(t *testing.T) {
	zero := func(int) int { return 0 }
	next, levels := ApplyXP(Stats{Level: 1, XP: 0, XPToNextLevel: 1}, 5, zero)
	if next.Level != 6 || next.XP != 0 || len(levels) != 5 {
		t.Fatalf("unexpected result %+v %v", next, levels)
	}
}
