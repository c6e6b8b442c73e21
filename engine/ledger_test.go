package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordClampsTotalButNotAlly(t *testing.T) {
	s := stateWithAlly("a", 15)
	s.TotalRXP = 15

	_, err := Record(s, Interaction{ID: "i1", AllyID: "a", Type: TypeText, Quality: QualityNegative, RXP: -20, Date: base})
	require.NoError(t, err)

	assert.Equal(t, 0, s.TotalRXP)
	assert.Equal(t, -5, s.Allies[0].RXP)
	require.Len(t, s.Interactions, 1)
	assert.NotNil(t, s.Interactions[0].Tags)
	assert.NotNil(t, s.Interactions[0].Photos)
}

func TestRecordRejectsUnknownAlly(t *testing.T) {
	s := stateWithAlly("a", 0)
	_, err := Record(s, Interaction{ID: "i1", AllyID: "ghost", RXP: 10, Date: base})
	assert.ErrorIs(t, err, ErrAllyNotFound)
	assert.Empty(t, s.Interactions)
	assert.Equal(t, 0, s.TotalRXP)
}

func TestRecordRejectsNegativeDuration(t *testing.T) {
	s := stateWithAlly("a", 0)
	_, err := Record(s, Interaction{ID: "i1", AllyID: "a", Duration: -1, Date: base})
	assert.ErrorIs(t, err, ErrInvalidInteraction)
}

func TestQueryFiltersAndOrder(t *testing.T) {
	s := stateWithAlly("a", 0)
	s.Allies = append(s.Allies, Ally{ID: "b", Name: "B"})
	entries := []Interaction{
		{ID: "1", AllyID: "a", Type: TypeText, Date: base},
		{ID: "2", AllyID: "b", Type: TypeCall, Date: base.Add(days(1)), Photos: []string{"p.jpg"}},
		{ID: "3", AllyID: "a", Type: TypeCall, Date: base.Add(days(2))},
		{ID: "4", AllyID: "a", Type: TypeText, Date: base.Add(days(2))},
	}
	for _, it := range entries {
		_, err := Record(s, it)
		require.NoError(t, err)
	}

	ids := func(list []Interaction) []string {
		out := make([]string, 0, len(list))
		for _, it := range list {
			out = append(out, it.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(Collect(Query(s, Filter{}))))
	assert.Equal(t, []string{"1", "3", "4"}, ids(Collect(Query(s, Filter{AllyID: "a"}))))
	assert.Equal(t, []string{"2", "3"}, ids(Collect(Query(s, Filter{Type: TypeCall}))))
	assert.Equal(t, []string{"2"}, ids(Collect(Query(s, Filter{WithPhotos: true}))))
	assert.Equal(t, []string{"2"}, ids(Collect(Query(s, Filter{From: base.Add(days(1)), To: base.Add(days(2))}))))
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(Collect(Query(s, Filter{NewestFirst: true}))))
	assert.Equal(t, []string{"4", "3"}, ids(Collect(Query(s, Filter{NewestFirst: true, Limit: 2}))))
}

func TestLastBeforeBreaksTiesByInsertion(t *testing.T) {
	s := stateWithAlly("a", 0)
	for _, id := range []string{"1", "2", "3"} {
		_, err := Record(s, Interaction{ID: id, AllyID: "a", Date: base})
		require.NoError(t, err)
	}

	prev, ok := LastBefore(s, "a", s.Interactions[2])
	require.True(t, ok)
	assert.Equal(t, "2", prev.ID)

	prev, ok = LastBefore(s, "a", s.Interactions[1])
	require.True(t, ok)
	assert.Equal(t, "1", prev.ID)

	_, ok = LastBefore(s, "a", s.Interactions[0])
	assert.False(t, ok)
}

func TestLastBeforeIgnoresLaterDates(t *testing.T) {
	s := stateWithAlly("a", 0)
	_, err := Record(s, Interaction{ID: "old", AllyID: "a", Date: base})
	require.NoError(t, err)
	_, err = Record(s, Interaction{ID: "future", AllyID: "a", Date: base.Add(days(10))})
	require.NoError(t, err)
	_, err = Record(s, Interaction{ID: "ref", AllyID: "a", Date: base.Add(days(5))})
	require.NoError(t, err)

	prev, ok := LastBefore(s, "a", s.Interactions[2])
	require.True(t, ok)
	assert.Equal(t, "old", prev.ID)
}

func TestLastInteraction(t *testing.T) {
	s := stateWithAlly("a", 0)
	_, ok := LastInteraction(s, "a")
	assert.False(t, ok)

	_, err := Record(s, Interaction{ID: "1", AllyID: "a", Date: base.Add(days(3))})
	require.NoError(t, err)
	_, err = Record(s, Interaction{ID: "2", AllyID: "a", Date: base})
	require.NoError(t, err)

	last, ok := LastInteraction(s, "a")
	require.True(t, ok)
	assert.Equal(t, "1", last.ID)
}
