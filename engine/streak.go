package engine

import (
	"slices"
	"time"
)

// StreakMilestones are the streak lengths that fire a one-time celebration.
var StreakMilestones = []int{7, 30, 100}

// UpdateStreak advances the streak for the calendar day of now and returns
// milestones reached for the first time. Call it after today's interactions
// are in the ledger.
func UpdateStreak(s *State, now time.Time) []int {
	today := startOfDay(now)
	active := hasInteractionOn(s, today)
	var reached []int

	if s.Streak.LastInteractionDate == nil {
		if active {
			s.Streak.Current = 1
			s.Streak.LastInteractionDate = &today
		}
	} else {
		diff := daysBetween(*s.Streak.LastInteractionDate, today)
		switch {
		case diff == 0:
		case diff == 1 && active:
			s.Streak.Current++
			s.Streak.LastInteractionDate = &today
			reached = checkStreakMilestones(s)
		case diff > 1 && active:
			s.Streak.Current = 1
			s.Streak.LastInteractionDate = &today
		}
	}

	if s.Streak.Current > s.Streak.Longest {
		s.Streak.Longest = s.Streak.Current
	}
	return reached
}

func checkStreakMilestones(s *State) []int {
	var reached []int
	for _, m := range StreakMilestones {
		if s.Streak.Current == m && !slices.Contains(s.Streak.Milestones, m) {
			s.Streak.Milestones = append(s.Streak.Milestones, m)
			reached = append(reached, m)
		}
	}
	return reached
}

func hasInteractionOn(s *State, today time.Time) bool {
	for _, it := range s.Interactions {
		if sameDay(it.Date, today) {
			return true
		}
	}
	return false
}
