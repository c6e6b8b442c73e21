package engine

import (
	"errors"
	"fmt"
	"time"
)

var ErrReminderNotFound = errors.New("reminder not found")

const defaultReminderDays = 7

// DueReminder is an active reminder evaluated at a point in time.
type DueReminder struct {
	Reminder
	Message   string `json:"message"`
	DaysSince int    `json:"daysSince"`
	Due       bool   `json:"due"`
	Urgent    bool   `json:"urgent"`
}

// addReminder appends a reminder, defaulting its period to a week.
func addReminder(s *State, r Reminder) (*Reminder, error) {
	if r.Type == "" {
		r.Type = ReminderCustom
	}
	if r.Type == ReminderContact && r.AllyID != "" {
		if a, _ := s.FindAlly(r.AllyID); a == nil {
			return nil, ErrAllyNotFound
		}
	}
	if r.Days <= 0 {
		r.Days = defaultReminderDays
	}
	s.Reminders = append(s.Reminders, r)
	return &s.Reminders[len(s.Reminders)-1], nil
}

// RemoveReminder deletes a reminder by id.
func RemoveReminder(s *State, id string) error {
	for i := range s.Reminders {
		if s.Reminders[i].ID == id {
			s.Reminders = append(s.Reminders[:i], s.Reminders[i+1:]...)
			return nil
		}
	}
	return ErrReminderNotFound
}

// EvaluateReminders lists active reminders. A contact reminder is due once
// the ally has been quiet for its period and urgent past one and a half
// periods.
func EvaluateReminders(s *State, now time.Time) []DueReminder {
	out := []DueReminder{}
	for _, r := range s.Reminders {
		if r.Completed {
			continue
		}
		d := DueReminder{Reminder: r, Message: r.Message}
		if d.Message == "" {
			d.Message = "Reminder"
		}
		if r.Type == ReminderContact && r.AllyID != "" {
			if ally, _ := s.FindAlly(r.AllyID); ally != nil {
				if last, ok := LastInteraction(s, ally.ID); ok {
					d.DaysSince = int(now.Sub(last.Date) / day)
					if d.DaysSince >= r.Days {
						d.Due = true
						d.Message = fmt.Sprintf("Haven't talked to %s in %d days", ally.Name, d.DaysSince)
						d.Urgent = float64(d.DaysSince) > float64(r.Days)*1.5
					}
				}
			}
		}
		out = append(out, d)
	}
	return out
}
