package engine

import "math"

// MaxBondLevel is the top bond tier.
const MaxBondLevel = 10

// bondThresholds[L-1] is the cumulative RXP at which bond level L starts.
var bondThresholds = [MaxBondLevel]int{0, 50, 150, 300, 500, 750, 1100, 1500, 2000, 2600}

// BondThreshold returns the lower RXP bound of a bond level, clamping the
// level into [1, MaxBondLevel].
func BondThreshold(level int) int {
	level = min(max(level, 1), MaxBondLevel)
	return bondThresholds[level-1]
}

// BondLevel returns the largest level whose threshold rxp has reached.
func BondLevel(rxp int) int {
	for level := MaxBondLevel; level >= 1; level-- {
		if rxp >= bondThresholds[level-1] {
			return level
		}
	}
	return 1
}

// NextLevelDelta returns the width of the current bond band, or 0 at the
// top level. It is not the distance left to the next threshold.
func NextLevelDelta(rxp int) int {
	level := BondLevel(rxp)
	if level == MaxBondLevel {
		return 0
	}
	return bondThresholds[level] - bondThresholds[level-1]
}

// BondProgress is the display percentage for an ally's progress bar. It
// reduces rxp modulo the band width, so callers must clamp the result.
func BondProgress(rxp int) float64 {
	delta := NextLevelDelta(rxp)
	if delta <= 0 {
		return 100
	}
	return float64(rxp%delta) / float64(delta) * 100
}

// SocialLevel derives the account tier from total RXP.
func SocialLevel(totalRXP int) int {
	return int(math.Floor(float64(totalRXP)/1000)) + 1
}

// RaiseSocialLevel stores the derived social level when it beats the
// stored one. The stored level is a high-water mark and never drops.
func RaiseSocialLevel(s *State) (level int, raised bool) {
	level = SocialLevel(s.TotalRXP)
	if level > s.SocialLevel {
		s.SocialLevel = level
		return level, true
	}
	return s.SocialLevel, false
}
