// Package engine implements the progression and scoring rules of the game:
// RXP scoring, bond and social levels, the interaction ledger, quests,
// achievements and streaks. Every operation works on an explicit *State and
// runs synchronously; callers serialize mutations of a single state.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind names something worth celebrating in the client.
type EventKind string

const (
	EventLevelUp         EventKind = "level_up"
	EventQuestCompleted  EventKind = "quest_completed"
	EventAchievement     EventKind = "achievement_unlocked"
	EventStreakMilestone EventKind = "streak_milestone"
	EventQuestsCreated   EventKind = "quests_created"
)

// Event is a caller-visible side effect of an operation.
type Event struct {
	Kind  EventKind `json:"kind"`
	ID    string    `json:"id,omitempty"`
	Name  string    `json:"name,omitempty"`
	Value int       `json:"value,omitempty"`
}

// Outcome reports what an operation changed.
type Outcome struct {
	Interaction *Interaction `json:"interaction,omitempty"`
	Ally        *Ally        `json:"ally,omitempty"`
	Quest       *Quest       `json:"quest,omitempty"`
	Events      []Event      `json:"events"`
}

func (o *Outcome) add(e Event) { o.Events = append(o.Events, e) }

// DefaultQuestInterval throttles automatic AI quest generation.
const DefaultQuestInterval = 24 * time.Hour

// Engine binds the rules to their collaborators: a scorer, an optional
// quest suggester, a clock and an id source.
type Engine struct {
	scorer        Scorer
	suggester     QuestSuggester
	now           func() time.Time
	newID         func() string
	logger        *zap.Logger
	questInterval time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

func WithScorer(s Scorer) Option { return func(e *Engine) { e.scorer = s } }

func WithSuggester(s QuestSuggester) Option { return func(e *Engine) { e.suggester = s } }

func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func WithIDGenerator(f func() string) Option { return func(e *Engine) { e.newID = f } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

func WithQuestInterval(d time.Duration) Option { return func(e *Engine) { e.questInterval = d } }

// New builds an Engine scoring with the local formula unless told otherwise.
func New(opts ...Option) *Engine {
	e := &Engine{
		scorer:        LocalScorer{},
		now:           time.Now,
		newID:         uuid.NewString,
		logger:        zap.NewNop(),
		questInterval: DefaultQuestInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time { return e.now() }

// AllyInput carries editable ally fields.
type AllyInput struct {
	Name      string
	Age       *int
	Hobbies   []string
	Likes     string
	Dislikes  string
	OtherInfo string
	Image     string
}

// AddAlly appends a new ally and re-evaluates achievements.
func (e *Engine) AddAlly(s *State, in AllyInput) Outcome {
	s.Allies = append(s.Allies, Ally{
		ID:        e.newID(),
		Name:      strings.TrimSpace(in.Name),
		Age:       in.Age,
		Hobbies:   nonNil(in.Hobbies),
		Likes:     in.Likes,
		Dislikes:  in.Dislikes,
		OtherInfo: in.OtherInfo,
		Image:     in.Image,
		CreatedAt: e.now(),
	})
	ally := s.Allies[len(s.Allies)-1]
	out := Outcome{Ally: &ally}
	e.checkAchievements(s, &out)
	return out
}

// UpdateAlly replaces an ally's profile. RXP and identity are kept.
func (e *Engine) UpdateAlly(s *State, id string, in AllyInput) (Outcome, error) {
	a, _ := s.FindAlly(id)
	if a == nil {
		return Outcome{}, ErrAllyNotFound
	}
	a.Name = strings.TrimSpace(in.Name)
	a.Age = in.Age
	a.Hobbies = nonNil(in.Hobbies)
	a.Likes = in.Likes
	a.Dislikes = in.Dislikes
	a.OtherInfo = in.OtherInfo
	a.Image = in.Image
	ally := *a
	out := Outcome{Ally: &ally}
	e.checkAchievements(s, &out)
	return out, nil
}

// DeleteAlly removes an ally together with its interactions. RXP already
// counted in the total stays there.
func (e *Engine) DeleteAlly(s *State, id string) (Outcome, error) {
	_, idx := s.FindAlly(id)
	if idx < 0 {
		return Outcome{}, ErrAllyNotFound
	}
	s.Allies = append(s.Allies[:idx], s.Allies[idx+1:]...)
	removed := removeAllyInteractions(s, id)
	e.logger.Debug("ally deleted", zap.String("ally_id", id), zap.Int("interactions_removed", removed))
	var out Outcome
	e.checkAchievements(s, &out)
	return out, nil
}

// InteractionInput is what the player logs.
type InteractionInput struct {
	AllyID   string
	Type     InteractionType
	Notes    string
	Duration float64
	Quality  Quality
	Tags     []string
	Photos   []string
	// Date defaults to the engine clock.
	Date time.Time
}

// RecordInteraction scores and records an interaction, then updates social
// level, streak, quests and achievements in that order.
func (e *Engine) RecordInteraction(ctx context.Context, s *State, in InteractionInput) (Outcome, error) {
	if a, _ := s.FindAlly(in.AllyID); a == nil {
		return Outcome{}, ErrAllyNotFound
	}
	if in.Duration < 0 || !in.Type.Valid() || !in.Quality.Valid() {
		return Outcome{}, ErrInvalidInteraction
	}

	rxp, err := e.scorer.Score(ctx, ScoreRequest{Notes: in.Notes, Type: in.Type, Duration: in.Duration, Quality: in.Quality})
	if err != nil {
		e.logger.Warn("scorer failed, using local formula", zap.Error(err))
		rxp = CalculateRXP(in.Type, in.Duration, in.Quality)
	}

	date := in.Date
	if date.IsZero() {
		date = e.now()
	}
	rec, err := Record(s, Interaction{
		ID:       e.newID(),
		AllyID:   in.AllyID,
		Type:     in.Type,
		Notes:    in.Notes,
		Duration: in.Duration,
		Quality:  in.Quality,
		RXP:      rxp,
		Date:     date,
		Tags:     nonNil(in.Tags),
		Photos:   nonNil(in.Photos),
	})
	if err != nil {
		return Outcome{}, err
	}
	recorded := *rec
	out := Outcome{Interaction: &recorded}

	e.raiseSocialLevel(s, &out)
	e.updateStreak(s, &out)
	for _, q := range evaluateQuests(s, recorded) {
		out.add(Event{Kind: EventQuestCompleted, ID: q.ID, Name: q.Title, Value: q.Reward})
		e.raiseSocialLevel(s, &out)
	}
	e.checkAchievements(s, &out)
	return out, nil
}

// QuickLog records a half-hour positive interaction with minimal input.
func (e *Engine) QuickLog(ctx context.Context, s *State, allyID string, t InteractionType, notes string) (Outcome, error) {
	if strings.TrimSpace(notes) == "" {
		notes = "Quick log"
	}
	return e.RecordInteraction(ctx, s, InteractionInput{
		AllyID:   allyID,
		Type:     t,
		Notes:    notes,
		Duration: 0.5,
		Quality:  QualityPositive,
	})
}

// CompleteQuest completes an active quest on the player's say-so.
func (e *Engine) CompleteQuest(s *State, id string) (Outcome, error) {
	q, err := CompleteQuest(s, id)
	if err != nil {
		return Outcome{}, err
	}
	quest := *q
	out := Outcome{Quest: &quest}
	out.add(Event{Kind: EventQuestCompleted, ID: q.ID, Name: q.Title, Value: q.Reward})
	e.raiseSocialLevel(s, &out)
	e.checkAchievements(s, &out)
	return out, nil
}

// RefreshQuests creates the daily and weekly sets when due and, when a
// suggester is configured, an AI quest at most once per quest interval.
// The attempt counts against the interval even when generation fails.
func (e *Engine) RefreshQuests(ctx context.Context, s *State) Outcome {
	var out Outcome
	now := e.now()
	created := 0
	if EnsureDailyQuests(s, now, e.newID) {
		created += 2
	}
	if EnsureWeeklyQuests(s, now, e.newID) {
		created += 2
	}
	if e.suggester != nil && e.generationDue(s, now) {
		attempted := now
		s.LastQuestGeneration = &attempted
		q, err := e.generate(ctx, s, now)
		if err != nil {
			e.logger.Info("automatic quest generation skipped", zap.Error(err))
		} else {
			out.Quest = q
			created++
		}
	}
	if created > 0 {
		out.add(Event{Kind: EventQuestsCreated, Value: created})
	}
	return out
}

// GenerateQuest asks the suggester for a quest now, ignoring the throttle.
func (e *Engine) GenerateQuest(ctx context.Context, s *State) (Outcome, error) {
	if e.suggester == nil {
		return Outcome{}, ErrSuggesterMissing
	}
	q, err := e.generate(ctx, s, e.now())
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Quest: q}
	out.add(Event{Kind: EventQuestsCreated, Value: 1})
	return out, nil
}

func (e *Engine) generationDue(s *State, now time.Time) bool {
	if s.LastQuestGeneration == nil {
		return true
	}
	return now.Sub(*s.LastQuestGeneration) > e.questInterval
}

// generate appends a suggested quest and stamps the generation time. On
// error s is left as it was.
func (e *Engine) generate(ctx context.Context, s *State, now time.Time) (*Quest, error) {
	sug, err := e.suggester.SuggestQuest(ctx, s.Clone())
	if err != nil {
		return nil, err
	}
	q, err := appendGenerated(s, sug, now, e.newID())
	if err != nil {
		return nil, err
	}
	generated := now
	s.LastQuestGeneration = &generated
	quest := *q
	return &quest, nil
}

// AddReminder stores a reminder for the player.
func (e *Engine) AddReminder(s *State, r Reminder) (*Reminder, error) {
	r.ID = e.newID()
	r.CreatedAt = e.now()
	return addReminder(s, r)
}

// CheckAchievements evaluates the catalog against s.
func (e *Engine) CheckAchievements(s *State) []Event {
	var out Outcome
	e.checkAchievements(s, &out)
	return out.Events
}

// UpdateStreak advances the streak for today.
func (e *Engine) UpdateStreak(s *State) []Event {
	var out Outcome
	e.updateStreak(s, &out)
	return out.Events
}

func (e *Engine) checkAchievements(s *State, out *Outcome) {
	for _, a := range unlockAchievements(s) {
		e.logger.Info("achievement unlocked", zap.String("achievement", a.ID))
		out.add(Event{Kind: EventAchievement, ID: a.ID, Name: a.Name, Value: AchievementBonus})
		e.raiseSocialLevel(s, out)
	}
}

func (e *Engine) updateStreak(s *State, out *Outcome) {
	for _, m := range UpdateStreak(s, e.now()) {
		out.add(Event{Kind: EventStreakMilestone, Value: m})
	}
}

func (e *Engine) raiseSocialLevel(s *State, out *Outcome) {
	if level, raised := RaiseSocialLevel(s); raised {
		e.logger.Info("social level up", zap.Int("level", level))
		out.add(Event{Kind: EventLevelUp, Value: level})
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
