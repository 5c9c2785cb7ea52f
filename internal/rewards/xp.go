package rewards

import "math"

const (
	// BaseXP is the XP needed to leave level 1.
	BaseXP = 100
	// Growth is the per-level multiplier applied to BaseXP.
	Growth = 1.1
)

// Curve returns the XP required to advance from the given level.
type Curve func(level int) int

// DefaultCurve is floor(BaseXP * Growth^(level-1)).
var DefaultCurve = GeometricCurve(BaseXP, Growth)

// GeometricCurve builds a curve of the form floor(base * growth^(level-1)).
func GeometricCurve(base int, growth float64) Curve {
	return func(level int) int {
		if level < 1 {
			level = 1
		}
		return int(math.Floor(float64(base) * math.Pow(growth, float64(level-1))))
	}
}

// InitialStats is the progression of a brand new player.
func InitialStats(curve Curve) Stats {
	return Stats{Level: 1, XP: 0, XPToNextLevel: threshold(curve, 1)}
}

// ApplyXP adds amount to stats and rolls over as many levels as the total
// crosses. The returned slice holds every level reached, ascending. On return
// XP < XPToNextLevel always holds.
func ApplyXP(stats Stats, amount int, curve Curve) (Stats, []int) {
	if curve == nil {
		curve = DefaultCurve
	}
	if amount < 0 {
		amount = 0
	}
	if stats.Level < 1 {
		stats.Level = 1
	}
	if stats.XP < 0 {
		stats.XP = 0
	}
	if stats.XPToNextLevel <= 0 {
		stats.XPToNextLevel = threshold(curve, stats.Level)
	}

	stats.XP += amount
	var levels []int
	for stats.XP >= stats.XPToNextLevel {
		stats.XP -= stats.XPToNextLevel
		stats.Level++
		stats.XPToNextLevel = threshold(curve, stats.Level)
		levels = append(levels, stats.Level)
	}
	return stats, levels
}

// threshold clamps the curve to at least 1 so the rollover loop terminates.
func threshold(curve Curve, level int) int {
	if v := curve(level); v > 0 {
		return v
	}
	return 1
}
