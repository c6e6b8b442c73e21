package engine

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrQuestNotFound     = errors.New("quest not found")
	ErrQuestCompleted    = errors.New("quest already completed")
	ErrInvalidSuggestion = errors.New("invalid quest suggestion")
	ErrSuggesterMissing  = errors.New("quest suggester not configured")
)

// Built-in quest titles. States saved before quests carried a kind are
// matched by title.
const (
	TitleSayHi       = "Say Hi!"
	TitleCheckIn     = "Check-In"
	TitleReconnect   = "The Reconnect"
	TitleQualityTime = "Quality Time"
)

// reconnectGapDays is the gap an ally must have gone quiet for.
const reconnectGapDays = 30

var checkInKeywords = []string{"day", "how"}

func dailyQuestSet(now time.Time, newID func() string) []Quest {
	return []Quest{
		{
			ID:          "daily-" + newID(),
			Title:       TitleSayHi,
			Description: "Log an interaction with any 3 allies",
			Type:        QuestDaily,
			Kind:        KindMeet,
			Date:        now,
			Reward:      50,
			Target:      3,
		},
		{
			ID:          "daily-" + newID(),
			Title:       TitleCheckIn,
			Description: "Ask an ally how their day is going",
			Type:        QuestDaily,
			Kind:        KindKeyword,
			Date:        now,
			Reward:      25,
			Target:      1,
		},
	}
}

func weeklyQuestSet(now time.Time, newID func() string) []Quest {
	return []Quest{
		{
			ID:          "weekly-" + newID(),
			Title:       TitleReconnect,
			Description: "Log an interaction with an ally you haven't spoken to in over a month",
			Type:        QuestWeekly,
			Kind:        KindReconnect,
			Date:        now,
			Reward:      200,
			Target:      1,
		},
		{
			ID:          "weekly-" + newID(),
			Title:       TitleQualityTime,
			Description: "Log an interaction that lasts over an hour",
			Type:        QuestWeekly,
			Kind:        KindDuration,
			Date:        now,
			Reward:      150,
			Target:      1,
		},
	}
}

// EnsureDailyQuests appends the daily set unless one was already created on
// now's calendar date.
func EnsureDailyQuests(s *State, now time.Time, newID func() string) bool {
	for _, q := range s.Quests {
		if q.Type == QuestDaily && sameDay(q.Date, now) {
			return false
		}
	}
	s.Quests = append(s.Quests, dailyQuestSet(now, newID)...)
	return true
}

// EnsureWeeklyQuests appends the weekly set unless one exists for now's ISO
// week.
func EnsureWeeklyQuests(s *State, now time.Time, newID func() string) bool {
	for _, q := range s.Quests {
		if q.Type == QuestWeekly && sameISOWeek(q.Date, now) {
			return false
		}
	}
	s.Quests = append(s.Quests, weeklyQuestSet(now, newID)...)
	return true
}

func questKind(q *Quest) QuestKind {
	if q.Kind != "" {
		return q.Kind
	}
	switch q.Title {
	case TitleSayHi:
		return KindMeet
	case TitleCheckIn:
		return KindKeyword
	case TitleReconnect:
		return KindReconnect
	case TitleQualityTime:
		return KindDuration
	}
	return ""
}

// advance bumps progress without passing target.
func (q *Quest) advance() {
	if q.Progress < q.Target {
		q.Progress++
	}
}

// markCompleted flips an active quest and grants its reward. It returns
// false when the quest was already completed.
func markCompleted(s *State, q *Quest) bool {
	if q.Completed {
		return false
	}
	q.Completed = true
	s.TotalRXP += q.Reward
	return true
}

// CompleteQuest completes an active quest unconditionally.
func CompleteQuest(s *State, id string) (*Quest, error) {
	q := s.FindQuest(id)
	if q == nil {
		return nil, ErrQuestNotFound
	}
	if !markCompleted(s, q) {
		return nil, ErrQuestCompleted
	}
	return q, nil
}

// evaluateQuests applies the automatic progress rules for a freshly recorded
// interaction and returns the quests it completed.
func evaluateQuests(s *State, it Interaction) []Quest {
	var done []Quest
	for i := range s.Quests {
		q := &s.Quests[i]
		if q.Completed {
			continue
		}

		completed := false
		switch questKind(q) {
		case KindMeet:
			q.advance()
			completed = q.Progress >= q.Target
		case KindKeyword:
			if containsAny(it.Notes, checkInKeywords) {
				q.advance()
				completed = q.Progress >= q.Target
			}
		case KindReconnect:
			if prev, ok := secondMostRecent(s, it.AllyID); ok && elapsedDays(prev.Date, it.Date) > reconnectGapDays {
				q.advance()
				completed = true
			}
		case KindDuration:
			if it.Duration >= 1 {
				q.advance()
				completed = q.Progress >= q.Target
			}
		}

		if completed && markCompleted(s, q) {
			done = append(done, *q)
		}
	}
	return done
}

// secondMostRecent returns the ally's second newest interaction, which is
// the one preceding the interaction just recorded.
func secondMostRecent(s *State, allyID string) (Interaction, bool) {
	n := 0
	for it := range Query(s, Filter{AllyID: allyID, NewestFirst: true, Limit: 2}) {
		if n == 1 {
			return it, true
		}
		n++
	}
	return Interaction{}, false
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// QuestSuggestion is a quest proposed by an external generator.
type QuestSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
}

// Validate rejects suggestions missing required fields.
func (q QuestSuggestion) Validate() error {
	if strings.TrimSpace(q.Title) == "" || strings.TrimSpace(q.Description) == "" {
		return ErrInvalidSuggestion
	}
	if q.Reward < 0 {
		return ErrInvalidSuggestion
	}
	return nil
}

// QuestSuggester proposes a personalized quest from a state snapshot.
type QuestSuggester interface {
	SuggestQuest(ctx context.Context, s *State) (QuestSuggestion, error)
}

// appendGenerated adds a validated suggestion as a generated quest.
func appendGenerated(s *State, sug QuestSuggestion, now time.Time, id string) (*Quest, error) {
	if err := sug.Validate(); err != nil {
		return nil, err
	}
	gen := now
	s.Quests = append(s.Quests, Quest{
		ID:            "ai-" + id,
		Title:         strings.TrimSpace(sug.Title),
		Description:   strings.TrimSpace(sug.Description),
		Type:          QuestGenerated,
		Date:          now,
		Reward:        sug.Reward,
		Target:        1,
		GeneratedDate: &gen,
	})
	return &s.Quests[len(s.Quests)-1], nil
}

// ActiveQuests lists quests not yet completed, in creation order.
func ActiveQuests(s *State) []Quest {
	out := []Quest{}
	for _, q := range s.Quests {
		if !q.Completed {
			out = append(out, q)
		}
	}
	return out
}

// RecentlyCompleted lists up to n completed quests, newest last.
func RecentlyCompleted(s *State, n int) []Quest {
	out := []Quest{}
	for _, q := range s.Quests {
		if q.Completed {
			out = append(out, q)
		}
	}
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}
