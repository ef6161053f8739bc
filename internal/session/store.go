package session

import (
	"context"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

//go:generate mockgen -source=store.go -destination=../mocks/session/mock_store.go -package=mock_session

// Store is the scheduling store a session reads due cards from and writes reviews to.
type Store interface {
	FindDueFlashcards(ctx context.Context, ownerID, deckID string, asOf time.Time) ([]flashcard.DueFlashcard, error)
	ApplyReview(ctx context.Context, ownerID, flashcardID string, quality srs.Quality) (flashcard.ReviewResult, error)
}

// SnapshotStore keeps the resumable state of one session per deck.
// Load reports false when nothing is saved for the deck.
type SnapshotStore interface {
	Save(state State) error
	Load(deckID string) (State, bool, error)
	Clear(deckID string) error
}
