package engine

import (
	"encoding/json"
	"slices"
	"time"
)

// InteractionType classifies how the player met an ally.
type InteractionType string

const (
	TypeText    InteractionType = "text"
	TypeCall    InteractionType = "call"
	TypeHangout InteractionType = "hangout"
	TypeEvent   InteractionType = "event"
	TypeOther   InteractionType = "other"
)

// Valid reports whether t is one of the known interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case TypeText, TypeCall, TypeHangout, TypeEvent, TypeOther:
		return true
	}
	return false
}

// Quality is the player's own rating of an interaction.
type Quality string

const (
	QualityPositive Quality = "positive"
	QualityNeutral  Quality = "neutral"
	QualityNegative Quality = "negative"
)

// Valid reports whether q is one of the known qualities.
func (q Quality) Valid() bool {
	return q == QualityPositive || q == QualityNeutral || q == QualityNegative
}

// Ally is a tracked relationship. RXP is cumulative and may go negative.
type Ally struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       *int      `json:"age"`
	Hobbies   []string  `json:"hobbies"`
	Likes     string    `json:"likes"`
	Dislikes  string    `json:"dislikes"`
	OtherInfo string    `json:"otherInfo"`
	Image     string    `json:"image,omitempty"`
	RXP       int       `json:"rxp"`
	CreatedAt time.Time `json:"createdAt"`
}

// Interaction is one immutable ledger entry.
type Interaction struct {
	ID       string          `json:"id"`
	AllyID   string          `json:"allyId"`
	Type     InteractionType `json:"type"`
	Notes    string          `json:"notes"`
	Duration float64         `json:"duration"`
	Quality  Quality         `json:"quality"`
	RXP      int             `json:"rxp"`
	Date     time.Time       `json:"date"`
	Tags     []string        `json:"tags"`
	Photos   []string        `json:"photos"`
}

// QuestType is the periodicity family of a quest.
type QuestType string

const (
	QuestDaily     QuestType = "daily"
	QuestWeekly    QuestType = "weekly"
	QuestGenerated QuestType = "generated"
)

// QuestKind selects the automatic progress rule of a quest. Generated
// quests have no kind and only complete manually.
type QuestKind string

const (
	KindMeet      QuestKind = "meet"
	KindKeyword   QuestKind = "keyword"
	KindReconnect QuestKind = "reconnect"
	KindDuration  QuestKind = "duration"
)

// Quest moves from active to completed and never back.
type Quest struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Type          QuestType  `json:"type"`
	Kind          QuestKind  `json:"kind,omitempty"`
	Date          time.Time  `json:"date"`
	Reward        int        `json:"reward"`
	Progress      int        `json:"progress"`
	Target        int        `json:"target"`
	Completed     bool       `json:"completed"`
	GeneratedDate *time.Time `json:"generatedDate,omitempty"`
}

// Streak counts consecutive calendar days with at least one interaction.
type Streak struct {
	Current             int        `json:"current"`
	LastInteractionDate *time.Time `json:"lastInteractionDate"`
	Longest             int        `json:"longest"`
	Milestones          []int      `json:"milestones"`
}

// ReminderType distinguishes ally contact reminders from free-form notes.
type ReminderType string

const (
	ReminderContact ReminderType = "contact"
	ReminderCustom  ReminderType = "custom"
)

// Reminder nudges the player to get back in touch.
type Reminder struct {
	ID        string       `json:"id"`
	AllyID    string       `json:"allyId,omitempty"`
	Type      ReminderType `json:"type"`
	Message   string       `json:"message"`
	Days      int          `json:"days"`
	Completed bool         `json:"completed"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Settings are client preferences carried inside the aggregate.
type Settings struct {
	SoundEnabled         bool   `json:"soundEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Theme                string `json:"theme"`
}

// State is the aggregate persisted as a single unit per player.
type State struct {
	SocialLevel         int           `json:"socialLevel"`
	TotalRXP            int           `json:"totalRXP"`
	Allies              []Ally        `json:"allies"`
	Interactions        []Interaction `json:"interactions"`
	Quests              []Quest       `json:"quests"`
	Achievements        []string      `json:"achievements"`
	LastQuestGeneration *time.Time    `json:"lastQuestGeneration"`
	Streak              Streak        `json:"streak"`
	Reminders           []Reminder    `json:"reminders"`
	Settings            Settings      `json:"settings"`
}

// DefaultSettings mirrors a fresh client install.
func DefaultSettings() Settings {
	return Settings{SoundEnabled: true, NotificationsEnabled: false, Theme: "dark"}
}

// NewState returns an empty aggregate at social level 1.
func NewState() *State {
	s := &State{Settings: DefaultSettings()}
	s.Normalize()
	return s
}

// Decode parses a persisted aggregate and fills in fields that older
// snapshots may lack.
func Decode(data []byte) (*State, error) {
	s := &State{Settings: DefaultSettings()}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, err
	}
	s.Normalize()
	return s, nil
}

// Encode serializes the aggregate.
func Encode(s *State) ([]byte, error) {
	return json.Marshal(s)
}

// Normalize replaces nil collections with empty ones and repairs values
// no valid aggregate can hold.
func (s *State) Normalize() {
	if s.SocialLevel < 1 {
		s.SocialLevel = 1
	}
	if s.TotalRXP < 0 {
		s.TotalRXP = 0
	}
	if s.Allies == nil {
		s.Allies = []Ally{}
	}
	for i := range s.Allies {
		if s.Allies[i].Hobbies == nil {
			s.Allies[i].Hobbies = []string{}
		}
	}
	if s.Interactions == nil {
		s.Interactions = []Interaction{}
	}
	for i := range s.Interactions {
		if s.Interactions[i].Tags == nil {
			s.Interactions[i].Tags = []string{}
		}
		if s.Interactions[i].Photos == nil {
			s.Interactions[i].Photos = []string{}
		}
	}
	if s.Quests == nil {
		s.Quests = []Quest{}
	}
	if s.Achievements == nil {
		s.Achievements = []string{}
	}
	if s.Streak.Milestones == nil {
		s.Streak.Milestones = []int{}
	}
	if s.Reminders == nil {
		s.Reminders = []Reminder{}
	}
	if s.Settings.Theme == "" {
		s.Settings.Theme = "dark"
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *State) Clone() *State {
	c := *s
	c.Allies = make([]Ally, len(s.Allies))
	for i, a := range s.Allies {
		if a.Age != nil {
			age := *a.Age
			a.Age = &age
		}
		a.Hobbies = slices.Clone(a.Hobbies)
		c.Allies[i] = a
	}
	c.Interactions = make([]Interaction, len(s.Interactions))
	for i, it := range s.Interactions {
		it.Tags = slices.Clone(it.Tags)
		it.Photos = slices.Clone(it.Photos)
		c.Interactions[i] = it
	}
	c.Quests = make([]Quest, len(s.Quests))
	for i, q := range s.Quests {
		q.GeneratedDate = cloneTime(q.GeneratedDate)
		c.Quests[i] = q
	}
	c.Achievements = slices.Clone(s.Achievements)
	c.LastQuestGeneration = cloneTime(s.LastQuestGeneration)
	c.Streak.LastInteractionDate = cloneTime(s.Streak.LastInteractionDate)
	c.Streak.Milestones = slices.Clone(s.Streak.Milestones)
	c.Reminders = slices.Clone(s.Reminders)
	c.Normalize()
	return &c
}

// FindAlly returns the ally with the given id and its index, or nil and -1.
func (s *State) FindAlly(id string) (*Ally, int) {
	for i := range s.Allies {
		if s.Allies[i].ID == id {
			return &s.Allies[i], i
		}
	}
	return nil, -1
}

// FindQuest returns the quest with the given id, or nil.
func (s *State) FindQuest(id string) *Quest {
	for i := range s.Quests {
		if s.Quests[i].ID == id {
			return &s.Quests[i]
		}
	}
	return nil
}

// HasAchievement reports whether the achievement id is unlocked.
func (s *State) HasAchievement(id string) bool {
	return slices.Contains(s.Achievements, id)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
