package engine

import (
	"sort"
	"time"
)

// LeaderboardFilter selects the leaderboard ordering.
type LeaderboardFilter string

const (
	ByRXP      LeaderboardFilter = "rxp"
	ByBond     LeaderboardFilter = "bond"
	ByImproved LeaderboardFilter = "improved"
	ByRecent   LeaderboardFilter = "recent"
)

const (
	insightLimit         = 5
	needsAttentionDays   = 14
	milestoneWindowRXP   = 100
	improvedWindowLength = 7 * day
)

// AllySummary is the derived view of one ally.
type AllySummary struct {
	Ally
	BondLevel      int     `json:"bondLevel"`
	NextLevelDelta int     `json:"nextLevelDelta"`
	Progress       float64 `json:"progress"`
	Interactions   int     `json:"interactionCount"`
}

// Summarize derives bond data and interaction count for an ally.
func Summarize(s *State, a Ally) AllySummary {
	n := 0
	for _, it := range s.Interactions {
		if it.AllyID == a.ID {
			n++
		}
	}
	return AllySummary{
		Ally:           a,
		BondLevel:      BondLevel(a.RXP),
		NextLevelDelta: NextLevelDelta(a.RXP),
		Progress:       BondProgress(a.RXP),
		Interactions:   n,
	}
}

// LeaderboardEntry is one ranked ally.
type LeaderboardEntry struct {
	Rank int `json:"rank"`
	AllySummary
	RecentRXP int `json:"recentRXP"`
}

// Leaderboard ranks allies by the given filter. Unknown filters rank by RXP.
func Leaderboard(s *State, filter LeaderboardFilter, now time.Time) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(s.Allies))
	since := now.Add(-improvedWindowLength)
	last := make(map[string]time.Time, len(s.Allies))
	for _, a := range s.Allies {
		recent := 0
		for it := range Query(s, Filter{AllyID: a.ID, From: since}) {
			if it.Date.After(since) {
				recent += it.RXP
			}
		}
		if it, ok := LastInteraction(s, a.ID); ok {
			last[a.ID] = it.Date
		}
		entries = append(entries, LeaderboardEntry{AllySummary: Summarize(s, a), RecentRXP: recent})
	}

	var less func(a, b LeaderboardEntry) bool
	switch filter {
	case ByBond:
		less = func(a, b LeaderboardEntry) bool { return a.BondLevel > b.BondLevel }
	case ByImproved:
		less = func(a, b LeaderboardEntry) bool { return a.RecentRXP > b.RecentRXP }
	case ByRecent:
		less = func(a, b LeaderboardEntry) bool {
			ta, okA := last[a.ID]
			tb, okB := last[b.ID]
			switch {
			case !okA:
				return false
			case !okB:
				return true
			}
			return ta.After(tb)
		}
	default:
		less = func(a, b LeaderboardEntry) bool { return a.RXP > b.RXP }
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// AttentionItem is an ally the player has not contacted lately. DaysSince
// is nil when there was never an interaction.
type AttentionItem struct {
	AllyID    string `json:"allyId"`
	Name      string `json:"name"`
	DaysSince *int   `json:"daysSince"`
}

// MilestoneItem is an ally close to the next bond level.
type MilestoneItem struct {
	AllyID    string `json:"allyId"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	NextLevel int    `json:"nextLevel"`
}

// Insights groups the dashboard lists.
type Insights struct {
	StrongestBonds     []AllySummary   `json:"strongestBonds"`
	NeedsAttention     []AttentionItem `json:"needsAttention"`
	UpcomingMilestones []MilestoneItem `json:"upcomingMilestones"`
}

// BuildInsights computes the dashboard lists at now.
func BuildInsights(s *State, now time.Time) Insights {
	return Insights{
		StrongestBonds:     strongestBonds(s),
		NeedsAttention:     needsAttention(s, now),
		UpcomingMilestones: upcomingMilestones(s),
	}
}

func strongestBonds(s *State) []AllySummary {
	allies := make([]Ally, len(s.Allies))
	copy(allies, s.Allies)
	sort.SliceStable(allies, func(i, j int) bool { return allies[i].RXP > allies[j].RXP })
	out := []AllySummary{}
	for i := 0; i < len(allies) && i < insightLimit; i++ {
		out = append(out, Summarize(s, allies[i]))
	}
	return out
}

// needsAttention lists allies quiet for more than two weeks, longest
// silence first. Allies never contacted rank ahead of everyone.
func needsAttention(s *State, now time.Time) []AttentionItem {
	items := []AttentionItem{}
	for _, a := range s.Allies {
		last, ok := LastInteraction(s, a.ID)
		if !ok {
			items = append(items, AttentionItem{AllyID: a.ID, Name: a.Name})
			continue
		}
		days := int(now.Sub(last.Date) / day)
		if days > needsAttentionDays {
			items = append(items, AttentionItem{AllyID: a.ID, Name: a.Name, DaysSince: &days})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DaysSince, items[j].DaysSince
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		}
		return *a > *b
	})
	if len(items) > insightLimit {
		items = items[:insightLimit]
	}
	return items
}

func upcomingMilestones(s *State) []MilestoneItem {
	items := []MilestoneItem{}
	for _, a := range s.Allies {
		level := BondLevel(a.RXP)
		if level >= MaxBondLevel {
			continue
		}
		remaining := BondThreshold(level+1) - a.RXP
		if remaining > 0 && remaining <= milestoneWindowRXP {
			items = append(items, MilestoneItem{AllyID: a.ID, Name: a.Name, Remaining: remaining, NextLevel: level + 1})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Remaining < items[j].Remaining })
	if len(items) > insightLimit {
		items = items[:insightLimit]
	}
	return items
}

// Memories returns interactions that carry photos, newest first, optionally
// narrowed to one ally or type.
func Memories(s *State, allyID string, t InteractionType) []Interaction {
	return Collect(Query(s, Filter{AllyID: allyID, Type: t, WithPhotos: true, NewestFirst: true}))
}
