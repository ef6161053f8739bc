package session

import (
	"time"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

type Status string

const (
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusEmpty    Status = "empty"
	StatusError    Status = "error"
	StatusFinished Status = "finished"
)

// Stats counts the ratings given during a session. Total is the number of
// cards the session started with.
type Stats struct {
	Total int `yaml:"total" json:"total"`
	Again int `yaml:"again" json:"again"`
	Good  int `yaml:"good" json:"good"`
	Easy  int `yaml:"easy" json:"easy"`
}

// Reviewed is the number of cards rated so far.
func (s Stats) Reviewed() int {
	return s.Again + s.Good + s.Easy
}

func (s *Stats) record(q srs.Quality) {
	switch q {
	case srs.QualityAgain:
		s.Again++
	case srs.QualityGood:
		s.Good++
	case srs.QualityEasy:
		s.Easy++
	}
}

// State is the in-memory and persisted state of a study session for one deck.
// Flashcards is fixed when the session starts.
type State struct {
	DeckID       string                   `yaml:"deck_id"`
	Status       Status                   `yaml:"status"`
	Flashcards   []flashcard.DueFlashcard `yaml:"flashcards"`
	CurrentIndex int                      `yaml:"current_index"`
	Revealed     bool                     `yaml:"revealed"`
	Stats        Stats                    `yaml:"stats"`
	SavedAt      time.Time                `yaml:"saved_at,omitempty"`
}

func (s State) clone() State {
	if s.Flashcards != nil {
		s.Flashcards = append([]flashcard.DueFlashcard(nil), s.Flashcards...)
	}
	return s
}

func (s State) current() (flashcard.DueFlashcard, bool) {
	if s.Status != StatusReady || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Flashcards) {
		return flashcard.DueFlashcard{}, false
	}
	return s.Flashcards[s.CurrentIndex], true
}

// resumableWith reports whether a saved snapshot still describes the session
// the fresh due list would start. The store either returns the same ordered
// cards, or only the ones not rated yet because rated cards moved into the future.
func (s State) resumableWith(deckID string, due []flashcard.DueFlashcard) bool {
	if s.DeckID != deckID || s.Status != StatusReady {
		return false
	}
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Flashcards) {
		return false
	}
	if s.Stats.Reviewed() != s.CurrentIndex {
		return false
	}
	return sameCards(s.Flashcards, due) || sameCards(s.Flashcards[s.CurrentIndex:], due)
}

func sameCards(a, b []flashcard.DueFlashcard) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}
