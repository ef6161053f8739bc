package srs

import "time"

// State is the scheduling state kept for every flashcard.
type State struct {
	Repetition int       `db:"repetition" json:"repetition" yaml:"repetition"`
	Interval   int       `db:"interval_days" json:"interval" yaml:"interval"`
	EFactor    float64   `db:"efactor" json:"efactor" yaml:"efactor"`
	DueDate    time.Time `db:"due_date" json:"due_date" yaml:"due_date"`
}

// NewState returns the state of a card that has never been reviewed.
// It is due on the day it was created.
func NewState(created time.Time) State {
	return State{
		Repetition: 0,
		Interval:   0,
		EFactor:    DefaultEasinessFactor,
		DueDate:    Date(created),
	}
}

// Date truncates t to its UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Date(t).Format(time.DateOnly)
}

// IsDue reports whether the card is eligible for review on asOf.
func (s State) IsDue(asOf time.Time) bool {
	return !Date(s.DueDate).After(Date(asOf))
}
