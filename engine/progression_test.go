package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBondLevel(t *testing.T) {
	cases := []struct {
		rxp  int
		want int
	}{
		{-500, 1},
		{0, 1},
		{49, 1},
		{50, 2},
		{149, 2},
		{150, 3},
		{300, 4},
		{500, 5},
		{749, 5},
		{750, 6},
		{1100, 7},
		{1500, 8},
		{1999, 8},
		{2000, 9},
		{2599, 9},
		{2600, 10},
		{100000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, BondLevel(tc.rxp), "rxp=%d", tc.rxp)
	}
}

func TestBondLevelMonotonic(t *testing.T) {
	prev := BondLevel(-100)
	for rxp := -100; rxp <= 3000; rxp++ {
		level := BondLevel(rxp)
		assert.GreaterOrEqual(t, level, prev)
		prev = level
	}
}

func TestNextLevelDeltaIsBandWidth(t *testing.T) {
	assert.Equal(t, 50, NextLevelDelta(0))
	assert.Equal(t, 50, NextLevelDelta(49))
	assert.Equal(t, 100, NextLevelDelta(50))
	assert.Equal(t, 150, NextLevelDelta(299))
	assert.Equal(t, 600, NextLevelDelta(2000))
	assert.Equal(t, 0, NextLevelDelta(2600))
	assert.Equal(t, 0, NextLevelDelta(9999))
}

func TestBondProgress(t *testing.T) {
	assert.InDelta(t, 50.0, BondProgress(25), 1e-9)
	// 120 % 100 = 20 although the ally is 70 into the band.
	assert.InDelta(t, 20.0, BondProgress(120), 1e-9)
	assert.InDelta(t, 100.0, BondProgress(2600), 1e-9)
}

func TestSocialLevel(t *testing.T) {
	assert.Equal(t, 1, SocialLevel(0))
	assert.Equal(t, 1, SocialLevel(999))
	assert.Equal(t, 2, SocialLevel(1000))
	assert.Equal(t, 4, SocialLevel(3500))
	assert.Equal(t, 0, SocialLevel(-1))
}

func TestRaiseSocialLevelIsHighWaterMark(t *testing.T) {
	s := NewState()
	s.TotalRXP = 2500
	level, raised := RaiseSocialLevel(s)
	assert.True(t, raised)
	assert.Equal(t, 3, level)

	s.TotalRXP = 10
	level, raised = RaiseSocialLevel(s)
	assert.False(t, raised)
	assert.Equal(t, 3, level)
	assert.Equal(t, 3, s.SocialLevel)
}
