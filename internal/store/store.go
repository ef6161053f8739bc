// Package store persists decks, flashcards and their scheduling state in a SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

var (
	ErrDeckNotFound      = errors.New("deck not found")
	ErrFlashcardNotFound = errors.New("flashcard not found")
)

// DBStore implements the scheduling store on top of sqlx.
// Queries are written with "?" placeholders and rebound for the driver.
type DBStore struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

type Option func(*DBStore)

// WithClock overrides the clock used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(s *DBStore) {
		s.now = now
	}
}

// WithIDGenerator overrides how new deck and flashcard IDs are created.
func WithIDGenerator(newID func() string) Option {
	return func(s *DBStore) {
		s.newID = newID
	}
}

func NewDBStore(db *sqlx.DB, opts ...Option) *DBStore {
	s := &DBStore{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindDueFlashcards returns up to MaxDueFlashcards cards of the deck that are due on asOf,
// most overdue first.
func (s *DBStore) FindDueFlashcards(ctx context.Context, ownerID, deckID string, asOf time.Time) ([]flashcard.DueFlashcard, error) {
	const op = "find due flashcards"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return nil, err
	}

	query := s.db.Rebind(`SELECT f.id, f.front, f.back
FROM flashcards f
JOIN flashcard_srs_data s ON s.flashcard_id = f.id
JOIN decks d ON d.id = f.deck_id
WHERE f.deck_id = ? AND d.user_id = ? AND s.due_date <= ?
ORDER BY s.due_date ASC, f.created_at ASC, f.id ASC
LIMIT ?`)
	cards := []flashcard.DueFlashcard{}
	if err := s.db.SelectContext(ctx, &cards, query, deckID, ownerID, srs.Date(asOf), flashcard.MaxDueFlashcards); err != nil {
		return nil, apperr.Store(op, fmt.Errorf("select due flashcards: %w", err))
	}
	if len(cards) > 0 {
		return cards, nil
	}

	// nothing due: tell an empty deck apart from a missing one
	if err := ensureDeck(ctx, s.db, ownerID, deckID, false); err != nil {
		return nil, apperr.Ensure(apperr.KindStore, op, err)
	}
	return cards, nil
}

type reviewRow struct {
	srs.State
	DeckID string `db:"deck_id"`
}

// ApplyReview runs the SM-2 step for one flashcard inside a transaction and
// returns its next due date and interval.
func (s *DBStore) ApplyReview(ctx context.Context, ownerID, flashcardID string, quality srs.Quality) (flashcard.ReviewResult, error) {
	const op = "apply review"
	if err := requireIDs(op, ownerID, flashcardID); err != nil {
		return flashcard.ReviewResult{}, err
	}
	if !quality.IsValid() {
		return flashcard.ReviewResult{}, apperr.Validation(op, fmt.Errorf("%w: %q", srs.ErrInvalidQuality, quality))
	}

	now := s.now().UTC()
	var result flashcard.ReviewResult
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := tx.Rebind(`SELECT s.repetition, s.interval_days, s.efactor, s.due_date, f.deck_id
FROM flashcard_srs_data s
JOIN flashcards f ON f.id = s.flashcard_id
JOIN decks d ON d.id = f.deck_id
WHERE s.flashcard_id = ? AND d.user_id = ?` + database.ForUpdate(s.db.DriverName()))
		var row reviewRow
		if err := tx.GetContext(ctx, &row, query, flashcardID, ownerID); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(op, ErrFlashcardNotFound)
			}
			return apperr.Store(op, fmt.Errorf("load scheduling state: %w", err))
		}

		next, err := srs.Next(row.State, quality, now)
		if err != nil {
			return apperr.Ensure(apperr.KindValidation, op, err)
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE flashcard_srs_data SET repetition = ?, interval_days = ?, efactor = ?, due_date = ? WHERE flashcard_id = ?"),
			next.Repetition, next.Interval, next.EFactor, next.DueDate, flashcardID); err != nil {
			return apperr.Store(op, fmt.Errorf("update scheduling state: %w", err))
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE decks SET last_reviewed_at = ? WHERE id = ?"), now, row.DeckID); err != nil {
			return apperr.Store(op, fmt.Errorf("update deck last reviewed: %w", err))
		}

		result = flashcard.ReviewResult{
			FlashcardID: flashcardID,
			NextDueDate: srs.FormatDate(next.DueDate),
			NewInterval: next.Interval,
		}
		return nil
	})
	if err != nil {
		return flashcard.ReviewResult{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return result, nil
}

// CountDue returns how many flashcards of the deck are due on asOf. Unlike
// FindDueFlashcards it is not bounded by MaxDueFlashcards.
func (s *DBStore) CountDue(ctx context.Context, ownerID, deckID string, asOf time.Time) (int, error) {
	const op = "count due flashcards"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return 0, err
	}
	if err := ensureDeck(ctx, s.db, ownerID, deckID, false); err != nil {
		return 0, apperr.Ensure(apperr.KindStore, op, err)
	}

	query := s.db.Rebind(`SELECT COUNT(*)
FROM flashcards f
JOIN flashcard_srs_data s ON s.flashcard_id = f.id
WHERE f.deck_id = ? AND s.due_date <= ?`)
	var due int
	if err := s.db.GetContext(ctx, &due, query, deckID, srs.Date(asOf)); err != nil {
		return 0, apperr.Store(op, fmt.Errorf("count due flashcards: %w", err))
	}
	return due, nil
}

// DueCounts returns the number of due flashcards per deck across all users.
func (s *DBStore) DueCounts(ctx context.Context, asOf time.Time) ([]flashcard.DueCount, error) {
	query := s.db.Rebind(`SELECT d.user_id, d.id AS deck_id, d.name AS deck_name, COUNT(*) AS due
FROM decks d
JOIN flashcards f ON f.deck_id = d.id
JOIN flashcard_srs_data s ON s.flashcard_id = f.id
WHERE s.due_date <= ?
GROUP BY d.user_id, d.id, d.name
ORDER BY d.user_id, d.name`)
	var counts []flashcard.DueCount
	if err := s.db.SelectContext(ctx, &counts, query, srs.Date(asOf)); err != nil {
		return nil, apperr.Store("due counts", fmt.Errorf("select due counts: %w", err))
	}
	return counts, nil
}

func ensureDeck(ctx context.Context, q sqlx.QueryerContext, ownerID, deckID string, lock bool) error {
	query := "SELECT id FROM decks WHERE id = ? AND user_id = ?"
	if lock {
		query += database.ForUpdate(driverName(q))
	}
	var id string
	if err := sqlx.GetContext(ctx, q, &id, sqlx.Rebind(sqlx.BindType(driverName(q)), query), deckID, ownerID); err != nil {
		if isNoRows(err) {
			return apperr.NotFound("find deck", ErrDeckNotFound)
		}
		return apperr.Store("find deck", fmt.Errorf("select deck: %w", err))
	}
	return nil
}

func driverName(q sqlx.QueryerContext) string {
	switch v := q.(type) {
	case *sqlx.DB:
		return v.DriverName()
	case *sqlx.Tx:
		return v.DriverName()
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func requireIDs(op string, ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return apperr.Validation(op, fmt.Errorf("invalid id %q", id))
		}
	}
	return nil
}
