package engine

import (
	"errors"
	"iter"
	"sort"
	"time"
)

var (
	ErrAllyNotFound       = errors.New("ally not found")
	ErrInvalidInteraction = errors.New("invalid interaction")
)

// Record appends an already-scored interaction and applies its RXP to the
// owning ally and the aggregate. Only the aggregate total is clamped at 0.
func Record(s *State, it Interaction) (*Interaction, error) {
	ally, _ := s.FindAlly(it.AllyID)
	if ally == nil {
		return nil, ErrAllyNotFound
	}
	if it.Duration < 0 {
		return nil, ErrInvalidInteraction
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	if it.Photos == nil {
		it.Photos = []string{}
	}

	s.Interactions = append(s.Interactions, it)
	ally.RXP += it.RXP
	s.TotalRXP += it.RXP
	if s.TotalRXP < 0 {
		s.TotalRXP = 0
	}
	return &s.Interactions[len(s.Interactions)-1], nil
}

// Filter narrows a ledger query. Zero fields do not filter.
type Filter struct {
	AllyID      string
	Type        InteractionType
	From        time.Time // inclusive
	To          time.Time // exclusive
	WithPhotos  bool
	NewestFirst bool
	Limit       int
}

func (f Filter) match(it *Interaction) bool {
	if f.AllyID != "" && it.AllyID != f.AllyID {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if !f.From.IsZero() && it.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !it.Date.Before(f.To) {
		return false
	}
	if f.WithPhotos && len(it.Photos) == 0 {
		return false
	}
	return true
}

// Query yields matching interactions in ledger order, or newest first with
// ties kept in reverse insertion order. The sequence reads the live ledger
// and must not be held across a mutation.
func Query(s *State, f Filter) iter.Seq[Interaction] {
	return func(yield func(Interaction) bool) {
		idx := make([]int, 0, len(s.Interactions))
		for i := range s.Interactions {
			if f.match(&s.Interactions[i]) {
				idx = append(idx, i)
			}
		}
		if f.NewestFirst {
			sortNewestFirst(s.Interactions, idx)
		}
		for n, i := range idx {
			if f.Limit > 0 && n >= f.Limit {
				return
			}
			if !yield(s.Interactions[i]) {
				return
			}
		}
	}
}

// Collect drains a query into a slice.
func Collect(seq iter.Seq[Interaction]) []Interaction {
	out := []Interaction{}
	for it := range seq {
		out = append(out, it)
	}
	return out
}

// sortNewestFirst orders ledger indexes by date descending, later
// insertions first on equal dates.
func sortNewestFirst(ledger []Interaction, idx []int) {
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := ledger[idx[a]], ledger[idx[b]]
		if !ia.Date.Equal(ib.Date) {
			return ia.Date.After(ib.Date)
		}
		return idx[a] > idx[b]
	})
}

// LastBefore returns the most recent interaction with allyID that precedes
// ref by date, or by ledger position when dates are equal. A ref that is not
// in the ledger is treated as positioned after every entry.
func LastBefore(s *State, allyID string, ref Interaction) (Interaction, bool) {
	refIdx := len(s.Interactions)
	for i := range s.Interactions {
		if s.Interactions[i].ID == ref.ID {
			refIdx = i
			break
		}
	}

	best := -1
	for i := range s.Interactions {
		it := &s.Interactions[i]
		if i == refIdx || it.AllyID != allyID {
			continue
		}
		before := it.Date.Before(ref.Date) || (it.Date.Equal(ref.Date) && i < refIdx)
		if !before {
			continue
		}
		if best < 0 || !it.Date.Before(s.Interactions[best].Date) {
			best = i
		}
	}
	if best < 0 {
		return Interaction{}, false
	}
	return s.Interactions[best], true
}

// LastInteraction returns the newest interaction with an ally.
func LastInteraction(s *State, allyID string) (Interaction, bool) {
	for it := range Query(s, Filter{AllyID: allyID, NewestFirst: true, Limit: 1}) {
		return it, true
	}
	return Interaction{}, false
}

// removeAllyInteractions drops every ledger entry owned by allyID.
func removeAllyInteractions(s *State, allyID string) int {
	kept := s.Interactions[:0]
	removed := 0
	for _, it := range s.Interactions {
		if it.AllyID == allyID {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	s.Interactions = kept
	return removed
}
