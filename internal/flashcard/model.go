// Package flashcard defines decks, flashcards and the records exchanged with the scheduling store.
package flashcard

import (
	"time"

	"github.com/at-ishikawa/flashdeck/internal/srs"
)

const (
	// MaxDueFlashcards bounds the size of a single review session.
	MaxDueFlashcards = 50

	MaxFrontLength    = 200
	MaxBackLength     = 500
	MaxDeckNameLength = 100
	MaxCardsPerDeck   = 100
)

// CreationSource records how a flashcard came into existence.
type CreationSource string

const (
	SourceManual            CreationSource = "manual"
	SourceAIGenerated       CreationSource = "ai_generated"
	SourceAIGeneratedEdited CreationSource = "ai_generated_edited"
)

func (s CreationSource) IsValid() bool {
	switch s {
	case SourceManual, SourceAIGenerated, SourceAIGeneratedEdited:
		return true
	}
	return false
}

// Deck is a named collection of flashcards owned by one user.
type Deck struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"-"`
	Name           string     `db:"name" json:"name"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	LastReviewedAt *time.Time `db:"last_reviewed_at" json:"last_reviewed_at,omitempty"`
}

type Flashcard struct {
	ID             string         `db:"id" json:"id"`
	DeckID         string         `db:"deck_id" json:"deck_id"`
	Front          string         `db:"front" json:"front"`
	Back           string         `db:"back" json:"back"`
	CreationSource CreationSource `db:"creation_source" json:"creation_source"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	ChangedAt      *time.Time     `db:"changed_at" json:"changed_at,omitempty"`
}

// ScheduledFlashcard is a flashcard joined with its scheduling state.
type ScheduledFlashcard struct {
	Flashcard
	srs.State
}

// DueFlashcard is the part of a flashcard shown during a review session.
type DueFlashcard struct {
	ID    string `db:"id" json:"id" yaml:"id"`
	Front string `db:"front" json:"front" yaml:"front"`
	Back  string `db:"back" json:"back" yaml:"back"`
}

// Input is the user-supplied content of a new flashcard.
type Input struct {
	Front  string         `json:"front" validate:"required,notblank,max=200"`
	Back   string         `json:"back" validate:"required,notblank,max=500"`
	Source CreationSource `json:"-"`
}

// ReviewResult is what the store reports back after applying a review.
type ReviewResult struct {
	FlashcardID string `json:"flashcard_id"`
	NextDueDate string `json:"next_due_date"`
	NewInterval int    `json:"new_interval"`
}

// DueCount is the number of due flashcards in one deck.
type DueCount struct {
	UserID   string `db:"user_id"`
	DeckID   string `db:"deck_id"`
	DeckName string `db:"deck_name"`
	Due      int    `db:"due"`
}

// GenerationMetrics records how many AI proposals a user accepted.
type GenerationMetrics struct {
	Proposed int `json:"proposed_flashcards_count" validate:"min=0"`
	Accepted int `json:"accepted_flashcards_count" validate:"min=0"`
	Edited   int `json:"edited_flashcards_count" validate:"min=0"`
}
