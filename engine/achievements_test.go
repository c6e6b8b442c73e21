package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistorianUnlocksOnce(t *testing.T) {
	s := stateWithAlly("a", 0)
	for i := 0; i < 99; i++ {
		_, err := Record(s, Interaction{ID: fmt.Sprint(i), AllyID: "a", Type: TypeText, RXP: 1, Date: base})
		require.NoError(t, err)
	}
	assert.Empty(t, unlockAchievements(s))

	_, err := Record(s, Interaction{ID: "99", AllyID: "a", Type: TypeText, RXP: 1, Date: base})
	require.NoError(t, err)
	unlocked := unlockAchievements(s)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "historian", unlocked[0].ID)
	assert.Equal(t, 200, s.TotalRXP)

	assert.Empty(t, unlockAchievements(s))
	_, err = Record(s, Interaction{ID: "100", AllyID: "a", Type: TypeText, RXP: 1, Date: base})
	require.NoError(t, err)
	assert.Empty(t, unlockAchievements(s))
	assert.Equal(t, 201, s.TotalRXP)
	assert.Equal(t, []string{"historian"}, s.Achievements)
}

func TestDeepDiverAndGeneralist(t *testing.T) {
	s := stateWithAlly("a", 2600)
	unlocked := unlockAchievements(s)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "deep-diver", unlocked[0].ID)

	for i := 0; i < 4; i++ {
		s.Allies = append(s.Allies, Ally{ID: fmt.Sprint("b", i), RXP: 500})
	}
	unlocked = unlockAchievements(s)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "generalist", unlocked[0].ID)
}

func TestSocialiteCountsAllies(t *testing.T) {
	clock := &testClock{t: base}
	e := newTestEngine(clock)
	s := NewState()
	var events []Event
	for i := 0; i < 10; i++ {
		events = append(events, e.AddAlly(s, AllyInput{Name: fmt.Sprint("friend ", i)}).Events...)
	}
	require.Len(t, events, 1)
	assert.Equal(t, Event{Kind: EventAchievement, ID: "socialite", Name: "Socialite", Value: AchievementBonus}, events[0])
	assert.True(t, s.HasAchievement("socialite"))
}

func TestPartyStarter(t *testing.T) {
	s := stateWithAlly("a", 0)
	_, err := Record(s, Interaction{AllyID: "a", Type: TypeText, Notes: "Group dinner", Date: base})
	require.NoError(t, err)
	unlocked := unlockAchievements(s)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "party-starter", unlocked[0].ID)
}

func TestFactCount(t *testing.T) {
	age := 30
	zero := 0
	s := NewState()
	s.Allies = []Ally{
		{ID: "a", Age: &age, Hobbies: []string{"chess", "climbing", "jazz"}, Likes: "tea", OtherInfo: "left-handed"},
		{ID: "b", Age: &zero, Hobbies: []string{}},
		{ID: "c", Dislikes: "noise"},
	}
	assert.Equal(t, 7, FactCount(s))
}

func TestListenerUnlocksFromProfiles(t *testing.T) {
	s := NewState()
	hobbies := make([]string, 25)
	for i := range hobbies {
		hobbies[i] = fmt.Sprint("hobby ", i)
	}
	s.Allies = []Ally{{ID: "a", Hobbies: hobbies}}
	unlocked := unlockAchievements(s)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "listener", unlocked[0].ID)
}

func TestAchievementsListing(t *testing.T) {
	s := NewState()
	s.Achievements = []string{"historian"}
	list := Achievements(s)
	require.Len(t, list, len(Catalog()))
	for _, a := range list {
		assert.Equal(t, a.ID == "historian", a.Unlocked, a.ID)
	}
}
