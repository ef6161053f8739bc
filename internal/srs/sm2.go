package srs

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultEasinessFactor = 2.5
	MinEasinessFactor     = 1.3

	passingGrade = 3
)

// UpdateEasinessFactor calculates new EF based on the SM-2 grade
func UpdateEasinessFactor(ef float64, grade int) float64 {
	if ef == 0 {
		ef = DefaultEasinessFactor
	}

	g := float64(grade)
	delta := 0.1 - (5-g)*(0.08+(5-g)*0.02)

	return math.Max(ef+delta, MinEasinessFactor)
}

// CalculateNextInterval calculates the next review interval in days.
// A failed grade always restarts at one day.
// On success the first two repetitions use fixed 1/6 day steps, later ones grow by EF.
func CalculateNextInterval(lastInterval int, ef float64, grade int, repetition int) int {
	if grade < passingGrade {
		return 1
	}

	switch repetition {
	case 1:
		return 1
	case 2:
		return 6
	default:
		next := int(math.Round(float64(lastInterval) * ef))
		if next < 1 {
			return 1
		}
		return next
	}
}

// Next computes the scheduling state that follows a review on today.
func Next(state State, quality Quality, today time.Time) (State, error) {
	grade, err := quality.Grade()
	if err != nil {
		return State{}, err
	}
	if state.Repetition < 0 || state.Interval < 0 {
		return State{}, fmt.Errorf("%w: repetition=%d interval=%d", ErrInvalidState, state.Repetition, state.Interval)
	}

	ef := UpdateEasinessFactor(state.EFactor, grade)

	repetition := 0
	if grade >= passingGrade {
		repetition = state.Repetition + 1
	}
	interval := CalculateNextInterval(state.Interval, ef, grade, repetition)

	return State{
		Repetition: repetition,
		Interval:   interval,
		EFactor:    ef,
		DueDate:    Date(today).AddDate(0, 0, interval),
	}, nil
}
