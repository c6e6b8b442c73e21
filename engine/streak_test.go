package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logOn(t *testing.T, e *Engine, s *State) Outcome {
	t.Helper()
	out, err := e.RecordInteraction(context.Background(), s, InteractionInput{AllyID: "a", Type: TypeText, Quality: QualityNeutral, Notes: "hi"})
	require.NoError(t, err)
	return out
}

func TestStreakResetsAfterGap(t *testing.T) {
	clock := &testClock{t: base}
	e := newTestEngine(clock)
	s := stateWithAlly("a", 0)

	for _, d := range []int{0, 1, 2} {
		clock.Set(base.Add(days(d)))
		logOn(t, e, s)
	}
	assert.Equal(t, 3, s.Streak.Current)
	assert.Equal(t, 3, s.Streak.Longest)

	clock.Set(base.Add(days(4)))
	logOn(t, e, s)
	assert.Equal(t, 1, s.Streak.Current)
	assert.Equal(t, 3, s.Streak.Longest)
	require.NotNil(t, s.Streak.LastInteractionDate)
	assert.True(t, sameDay(*s.Streak.LastInteractionDate, clock.Now()))
}

func TestStreakSameDayIsNoop(t *testing.T) {
	clock := &testClock{t: base}
	e := newTestEngine(clock)
	s := stateWithAlly("a", 0)

	logOn(t, e, s)
	clock.Advance(3 * time.Hour)
	logOn(t, e, s)
	assert.Equal(t, 1, s.Streak.Current)
}

func TestStreakWithoutActivityDoesNotStart(t *testing.T) {
	s := NewState()
	assert.Empty(t, UpdateStreak(s, base))
	assert.Equal(t, 0, s.Streak.Current)
	assert.Nil(t, s.Streak.LastInteractionDate)
}

func TestStreakMilestoneFiresOnce(t *testing.T) {
	clock := &testClock{t: base}
	e := newTestEngine(clock)
	s := stateWithAlly("a", 0)

	var milestones []Event
	for d := 0; d < 7; d++ {
		clock.Set(base.Add(days(d)))
		for _, ev := range logOn(t, e, s).Events {
			if ev.Kind == EventStreakMilestone {
				milestones = append(milestones, ev)
			}
		}
	}
	require.Len(t, milestones, 1)
	assert.Equal(t, 7, milestones[0].Value)
	assert.Equal(t, []int{7}, s.Streak.Milestones)

	// Break and rebuild: the milestone is not celebrated again.
	for d := 9; d < 16; d++ {
		clock.Set(base.Add(days(d)))
		for _, ev := range logOn(t, e, s).Events {
			assert.NotEqual(t, EventStreakMilestone, ev.Kind)
		}
	}
	assert.Equal(t, 7, s.Streak.Current)
	assert.Equal(t, 7, s.Streak.Longest)
}

func TestStreakWithoutActivityTodayIsUntouched(t *testing.T) {
	cases := []struct {
		name  string
		after int
	}{
		{"next day", 1},
		{"after a gap", 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := stateWithAlly("a", 0)
			last := startOfDay(base)
			s.Streak = Streak{Current: 3, Longest: 5, LastInteractionDate: &last, Milestones: []int{}}
			s.Interactions = []Interaction{{ID: "i1", AllyID: "a", Date: base, Type: TypeText, Quality: QualityNeutral}}

			assert.Empty(t, UpdateStreak(s, base.Add(days(tc.after))))
			assert.Equal(t, 3, s.Streak.Current)
			assert.Equal(t, 5, s.Streak.Longest)
			require.NotNil(t, s.Streak.LastInteractionDate)
			assert.True(t, s.Streak.LastInteractionDate.Equal(last))
		})
	}
}
