package engine

// AchievementBonus is granted once per first-time unlock.
const AchievementBonus = 100

// Achievement is a static catalog entry with a predicate over the aggregate.
type Achievement struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Icon        string            `json:"icon"`
	Check       func(*State) bool `json:"-"`
}

var catalog = []Achievement{
	{
		ID:          "socialite",
		Name:        "Socialite",
		Description: "Log 10 different allies",
		Icon:        "👥",
		Check:       func(s *State) bool { return len(s.Allies) >= 10 },
	},
	{
		ID:          "deep-diver",
		Name:        "Deep-Diver",
		Description: "Reach Bond Level 10 with one ally",
		Icon:        "🔍",
		Check: func(s *State) bool {
			return countAlliesAtLevel(s, MaxBondLevel) >= 1
		},
	},
	{
		ID:          "generalist",
		Name:        "Generalist",
		Description: "Reach Bond Level 5 with 5 different allies",
		Icon:        "🌟",
		Check: func(s *State) bool {
			return countAlliesAtLevel(s, 5) >= 5
		},
	},
	{
		ID:          "historian",
		Name:        "Historian",
		Description: "Log 100 total interactions",
		Icon:        "📜",
		Check:       func(s *State) bool { return len(s.Interactions) >= 100 },
	},
	{
		ID:          "listener",
		Name:        "The Listener",
		Description: "Discover 25 facts about your allies",
		Icon:        "👂",
		Check:       func(s *State) bool { return FactCount(s) >= 25 },
	},
	{
		ID:          "party-starter",
		Name:        "Party Starter",
		Description: "Log an interaction that involved 3+ allies at once",
		Icon:        "🎉",
		Check: func(s *State) bool {
			for _, it := range s.Interactions {
				if it.Type == TypeEvent || containsAny(it.Notes, []string{"group", "party"}) {
					return true
				}
			}
			return false
		},
	},
}

// Catalog returns the achievement definitions in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

func countAlliesAtLevel(s *State, level int) int {
	n := 0
	for _, a := range s.Allies {
		if BondLevel(a.RXP) >= level {
			n++
		}
	}
	return n
}

// FactCount tallies what the player knows about their allies: one per
// filled profile field and one per hobby.
func FactCount(s *State) int {
	n := 0
	for _, a := range s.Allies {
		if a.Age != nil && *a.Age != 0 {
			n++
		}
		n += len(a.Hobbies)
		for _, f := range []string{a.Likes, a.Dislikes, a.OtherInfo} {
			if f != "" {
				n++
			}
		}
	}
	return n
}

// unlockAchievements unlocks every satisfied achievement not yet held,
// granting the bonus once per id.
func unlockAchievements(s *State) []Achievement {
	var unlocked []Achievement
	for _, a := range catalog {
		if s.HasAchievement(a.ID) || !a.Check(s) {
			continue
		}
		s.Achievements = append(s.Achievements, a.ID)
		s.TotalRXP += AchievementBonus
		unlocked = append(unlocked, a)
	}
	return unlocked
}

// AchievementStatus pairs a catalog entry with the player's unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked bool `json:"unlocked"`
}

// Achievements lists the catalog with unlock flags.
func Achievements(s *State) []AchievementStatus {
	out := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		out = append(out, AchievementStatus{Achievement: a, Unlocked: s.HasAchievement(a.ID)})
	}
	return out
}
