package engine

import (
	"fmt"
	"time"
)

// base is a Monday morning.
var base = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Set(t time.Time)         { c.t = t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestEngine(clock *testClock, opts ...Option) *Engine {
	return New(append([]Option{WithClock(clock.Now), WithIDGenerator(seqIDs())}, opts...)...)
}

func stateWithAlly(id string, rxp int) *State {
	s := NewState()
	s.Allies = append(s.Allies, Ally{ID: id, Name: "Ally " + id, RXP: rxp, Hobbies: []string{}})
	return s
}

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
