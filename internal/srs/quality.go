package srs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuality = errors.New("invalid review quality")
	ErrInvalidState   = errors.New("invalid scheduling state")
)

// Quality is how well a card was recalled during a review.
type Quality string

const (
	QualityAgain Quality = "again"
	QualityGood  Quality = "good"
	QualityEasy  Quality = "easy"
)

// Qualities lists every accepted quality in rating order.
var Qualities = []Quality{QualityAgain, QualityGood, QualityEasy}

// ParseQuality converts user input into a Quality
func ParseQuality(s string) (Quality, error) {
	q := Quality(s)
	if !q.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidQuality, s)
	}
	return q, nil
}

func (q Quality) IsValid() bool {
	switch q {
	case QualityAgain, QualityGood, QualityEasy:
		return true
	}
	return false
}

// Grade maps a quality onto the SM-2 0-5 grading scale.
// Grades below 3 are failed recalls.
func (q Quality) Grade() (int, error) {
	switch q {
	case QualityAgain:
		return 2, nil
	case QualityGood:
		return 4, nil
	case QualityEasy:
		return 5, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidQuality, string(q))
}

// UnmarshalText rejects anything outside the closed quality set.
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := ParseQuality(string(text))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
