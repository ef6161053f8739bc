package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// GeneratedDeckNameLayout names decks saved from AI proposals without an explicit name.
const GeneratedDeckNameLayout = "2006-01-02_15-04"

var (
	flashcardColumns = []string{"id", "deck_id", "front", "back", "creation_source", "created_at"}
	srsColumns       = []string{"flashcard_id", "repetition", "interval_days", "efactor", "due_date"}
)

// DeckSummary is a deck together with the number of flashcards it holds.
type DeckSummary struct {
	flashcard.Deck
	FlashcardCount int `db:"flashcard_count" json:"flashcard_count"`
}

// CreateDeck creates a deck with its flashcards and their default scheduling state.
// Inputs without their own source get defaultSource.
func (s *DBStore) CreateDeck(ctx context.Context, ownerID, name string, cards []flashcard.Input, defaultSource flashcard.CreationSource) (flashcard.Deck, error) {
	const op = "create deck"
	if err := requireIDs(op, ownerID); err != nil {
		return flashcard.Deck{}, err
	}

	var deck flashcard.Deck
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		deck, err = s.createDeck(ctx, tx, ownerID, name, cards, defaultSource)
		return err
	})
	if err != nil {
		return flashcard.Deck{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return deck, nil
}

// SaveGeneratedDeck stores accepted AI proposals as a new deck and records the
// generation metrics in the same transaction.
func (s *DBStore) SaveGeneratedDeck(ctx context.Context, ownerID, name string, cards []flashcard.Input, metrics flashcard.GenerationMetrics) (flashcard.Deck, error) {
	const op = "save generated deck"
	if err := requireIDs(op, ownerID); err != nil {
		return flashcard.Deck{}, err
	}
	if metrics.Proposed < 0 || metrics.Accepted < 0 || metrics.Edited < 0 {
		return flashcard.Deck{}, apperr.Validation(op, errors.New("metrics must not be negative"))
	}
	if strings.TrimSpace(name) == "" {
		name = s.now().UTC().Format(GeneratedDeckNameLayout)
	}

	var deck flashcard.Deck
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error
		deck, err = s.createDeck(ctx, tx, ownerID, name, cards, flashcard.SourceAIGenerated)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO ai_generation_metrics
(id, user_id, proposed_flashcards_count, accepted_flashcards_count, edited_flashcards_count, created_at)
VALUES (?, ?, ?, ?, ?, ?)`),
			s.newID(), ownerID, metrics.Proposed, metrics.Accepted, metrics.Edited, deck.CreatedAt); err != nil {
			return apperr.Store(op, fmt.Errorf("insert generation metrics: %w", err))
		}
		return nil
	})
	if err != nil {
		return flashcard.Deck{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return deck, nil
}

func (s *DBStore) createDeck(ctx context.Context, tx *sqlx.Tx, ownerID, name string, cards []flashcard.Input, defaultSource flashcard.CreationSource) (flashcard.Deck, error) {
	const op = "create deck"
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > flashcard.MaxDeckNameLength {
		return flashcard.Deck{}, apperr.Validation(op, fmt.Errorf("deck name must be 1 to %d characters", flashcard.MaxDeckNameLength))
	}
	if len(cards) == 0 || len(cards) > flashcard.MaxCardsPerDeck {
		return flashcard.Deck{}, apperr.Validation(op, fmt.Errorf("a deck needs 1 to %d flashcards, got %d", flashcard.MaxCardsPerDeck, len(cards)))
	}

	now := s.now().UTC()
	deck := flashcard.Deck{
		ID:        s.newID(),
		UserID:    ownerID,
		Name:      name,
		CreatedAt: now,
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO decks (id, user_id, name, created_at) VALUES (?, ?, ?, ?)"),
		deck.ID, deck.UserID, deck.Name, deck.CreatedAt); err != nil {
		return flashcard.Deck{}, apperr.Store(op, fmt.Errorf("insert deck: %w", err))
	}

	cardRows := make([][]any, 0, len(cards))
	srsRows := make([][]any, 0, len(cards))
	for i, in := range cards {
		card, err := s.newFlashcard(deck.ID, in, defaultSource, now)
		if err != nil {
			return flashcard.Deck{}, apperr.Validation(op, fmt.Errorf("flashcard %d: %w", i+1, err))
		}
		state := srs.NewState(now)
		cardRows = append(cardRows, []any{card.ID, card.DeckID, card.Front, card.Back, card.CreationSource, card.CreatedAt})
		srsRows = append(srsRows, []any{card.ID, state.Repetition, state.Interval, state.EFactor, state.DueDate})
	}
	if err := insertRows(ctx, tx, "flashcards", flashcardColumns, cardRows); err != nil {
		return flashcard.Deck{}, apperr.Store(op, err)
	}
	if err := insertRows(ctx, tx, "flashcard_srs_data", srsColumns, srsRows); err != nil {
		return flashcard.Deck{}, apperr.Store(op, err)
	}
	return deck, nil
}

// AddFlashcard adds one flashcard to an existing deck.
func (s *DBStore) AddFlashcard(ctx context.Context, ownerID, deckID string, in flashcard.Input, source flashcard.CreationSource) (flashcard.Flashcard, error) {
	const op = "add flashcard"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return flashcard.Flashcard{}, err
	}
	now := s.now().UTC()
	card, err := s.newFlashcard(deckID, in, source, now)
	if err != nil {
		return flashcard.Flashcard{}, apperr.Validation(op, err)
	}

	err = database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureDeck(ctx, tx, ownerID, deckID, true); err != nil {
			return err
		}
		state := srs.NewState(now)
		if err := insertRows(ctx, tx, "flashcards", flashcardColumns, [][]any{
			{card.ID, card.DeckID, card.Front, card.Back, card.CreationSource, card.CreatedAt},
		}); err != nil {
			return apperr.Store(op, err)
		}
		if err := insertRows(ctx, tx, "flashcard_srs_data", srsColumns, [][]any{
			{card.ID, state.Repetition, state.Interval, state.EFactor, state.DueDate},
		}); err != nil {
			return apperr.Store(op, err)
		}
		return nil
	})
	if err != nil {
		return flashcard.Flashcard{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return card, nil
}

// DeleteFlashcard removes a flashcard owned by ownerID. Its scheduling state goes with it.
func (s *DBStore) DeleteFlashcard(ctx context.Context, ownerID, flashcardID string) error {
	const op = "delete flashcard"
	if err := requireIDs(op, ownerID, flashcardID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM flashcards WHERE id = ? AND deck_id IN (SELECT id FROM decks WHERE user_id = ?)"), flashcardID, ownerID)
	if err != nil {
		return apperr.Store(op, fmt.Errorf("delete flashcard: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store(op, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return apperr.NotFound(op, ErrFlashcardNotFound)
	}
	return nil
}

// UpdateFlashcard replaces both sides of a flashcard owned by ownerID and stamps changed_at.
// An edited AI card becomes ai_generated_edited. Its scheduling state is left as it is.
func (s *DBStore) UpdateFlashcard(ctx context.Context, ownerID, flashcardID string, in flashcard.Input) (flashcard.Flashcard, error) {
	const op = "update flashcard"
	if err := requireIDs(op, ownerID, flashcardID); err != nil {
		return flashcard.Flashcard{}, err
	}
	if err := ValidateInput(in); err != nil {
		return flashcard.Flashcard{}, apperr.Validation(op, err)
	}

	now := s.now().UTC()
	var card flashcard.Flashcard
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := tx.Rebind(`SELECT f.id, f.deck_id, f.front, f.back, f.creation_source, f.created_at, f.changed_at
FROM flashcards f
JOIN decks d ON d.id = f.deck_id
WHERE f.id = ? AND d.user_id = ?` + database.ForUpdate(s.db.DriverName()))
		if err := tx.GetContext(ctx, &card, query, flashcardID, ownerID); err != nil {
			if isNoRows(err) {
				return apperr.NotFound(op, ErrFlashcardNotFound)
			}
			return apperr.Store(op, fmt.Errorf("select flashcard: %w", err))
		}

		card.Front = strings.TrimSpace(in.Front)
		card.Back = strings.TrimSpace(in.Back)
		card.ChangedAt = &now
		if card.CreationSource == flashcard.SourceAIGenerated {
			card.CreationSource = flashcard.SourceAIGeneratedEdited
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE flashcards SET front = ?, back = ?, creation_source = ?, changed_at = ?
WHERE id = ? AND deck_id IN (SELECT id FROM decks WHERE user_id = ?)`),
			card.Front, card.Back, card.CreationSource, now, flashcardID, ownerID)
		if err != nil {
			return apperr.Store(op, fmt.Errorf("update flashcard: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Store(op, fmt.Errorf("rows affected: %w", err))
		}
		if n == 0 {
			return apperr.NotFound(op, ErrFlashcardNotFound)
		}
		return nil
	})
	if err != nil {
		return flashcard.Flashcard{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return card, nil
}

// RenameDeck changes the name of a deck owned by ownerID.
func (s *DBStore) RenameDeck(ctx context.Context, ownerID, deckID, name string) (flashcard.Deck, error) {
	const op = "rename deck"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return flashcard.Deck{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > flashcard.MaxDeckNameLength {
		return flashcard.Deck{}, apperr.Validation(op, fmt.Errorf("deck name must be 1 to %d characters", flashcard.MaxDeckNameLength))
	}

	var deck flashcard.Deck
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE decks SET name = ? WHERE id = ? AND user_id = ?"), name, deckID, ownerID)
		if err != nil {
			return apperr.Store(op, fmt.Errorf("update deck: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Store(op, fmt.Errorf("rows affected: %w", err))
		}
		if n == 0 {
			// MySQL counts only changed rows, so an unchanged name reports zero
			if err := ensureDeck(ctx, tx, ownerID, deckID, false); err != nil {
				return err
			}
		}
		if err := tx.GetContext(ctx, &deck, tx.Rebind("SELECT id, user_id, name, created_at, last_reviewed_at FROM decks WHERE id = ? AND user_id = ?"), deckID, ownerID); err != nil {
			return apperr.Store(op, fmt.Errorf("select deck: %w", err))
		}
		return nil
	})
	if err != nil {
		return flashcard.Deck{}, apperr.Ensure(apperr.KindStore, op, err)
	}
	return deck, nil
}

// DeleteDeck removes a deck owned by ownerID together with its flashcards and their scheduling state.
func (s *DBStore) DeleteDeck(ctx context.Context, ownerID, deckID string) error {
	const op = "delete deck"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM decks WHERE id = ? AND user_id = ?"), deckID, ownerID)
	if err != nil {
		return apperr.Store(op, fmt.Errorf("delete deck: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store(op, fmt.Errorf("rows affected: %w", err))
	}
	if n == 0 {
		return apperr.NotFound(op, ErrDeckNotFound)
	}
	return nil
}

// GetDeck returns a deck owned by ownerID.
func (s *DBStore) GetDeck(ctx context.Context, ownerID, deckID string) (flashcard.Deck, error) {
	const op = "get deck"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return flashcard.Deck{}, err
	}
	var deck flashcard.Deck
	err := s.db.GetContext(ctx, &deck, s.db.Rebind("SELECT id, user_id, name, created_at, last_reviewed_at FROM decks WHERE id = ? AND user_id = ?"), deckID, ownerID)
	if err != nil {
		if isNoRows(err) {
			return flashcard.Deck{}, apperr.NotFound(op, ErrDeckNotFound)
		}
		return flashcard.Deck{}, apperr.Store(op, fmt.Errorf("select deck: %w", err))
	}
	return deck, nil
}

// ListDecks returns all decks of ownerID with their flashcard counts, by name.
func (s *DBStore) ListDecks(ctx context.Context, ownerID string) ([]DeckSummary, error) {
	const op = "list decks"
	if err := requireIDs(op, ownerID); err != nil {
		return nil, err
	}
	query := s.db.Rebind(`SELECT d.id, d.user_id, d.name, d.created_at, d.last_reviewed_at, COUNT(f.id) AS flashcard_count
FROM decks d
LEFT JOIN flashcards f ON f.deck_id = d.id
WHERE d.user_id = ?
GROUP BY d.id, d.user_id, d.name, d.created_at, d.last_reviewed_at
ORDER BY d.name, d.id`)
	decks := []DeckSummary{}
	if err := s.db.SelectContext(ctx, &decks, query, ownerID); err != nil {
		return nil, apperr.Store(op, fmt.Errorf("select decks: %w", err))
	}
	return decks, nil
}

// ListFlashcards returns every flashcard of a deck with its scheduling state.
func (s *DBStore) ListFlashcards(ctx context.Context, ownerID, deckID string) ([]flashcard.ScheduledFlashcard, error) {
	const op = "list flashcards"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return nil, err
	}
	if err := ensureDeck(ctx, s.db, ownerID, deckID, false); err != nil {
		return nil, err
	}
	query := s.db.Rebind(`SELECT f.id, f.deck_id, f.front, f.back, f.creation_source, f.created_at, f.changed_at,
s.repetition, s.interval_days, s.efactor, s.due_date
FROM flashcards f
JOIN flashcard_srs_data s ON s.flashcard_id = f.id
WHERE f.deck_id = ?
ORDER BY f.created_at ASC, f.id ASC`)
	cards := []flashcard.ScheduledFlashcard{}
	if err := s.db.SelectContext(ctx, &cards, query, deckID); err != nil {
		return nil, apperr.Store(op, fmt.Errorf("select flashcards: %w", err))
	}
	return cards, nil
}

// ResetDeckProgress puts every flashcard of the deck back to the never-reviewed state, due on today.
// It returns the number of flashcards reset.
func (s *DBStore) ResetDeckProgress(ctx context.Context, ownerID, deckID string, today time.Time) (int64, error) {
	const op = "reset deck progress"
	if err := requireIDs(op, ownerID, deckID); err != nil {
		return 0, err
	}
	state := srs.NewState(today)

	var reset int64
	err := database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := ensureDeck(ctx, tx, ownerID, deckID, true); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE flashcard_srs_data
SET repetition = ?, interval_days = ?, efactor = ?, due_date = ?
WHERE flashcard_id IN (SELECT id FROM flashcards WHERE deck_id = ?)`),
			state.Repetition, state.Interval, state.EFactor, state.DueDate, deckID)
		if err != nil {
			return apperr.Store(op, fmt.Errorf("reset scheduling state: %w", err))
		}
		if reset, err = res.RowsAffected(); err != nil {
			return apperr.Store(op, fmt.Errorf("rows affected: %w", err))
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Ensure(apperr.KindStore, op, err)
	}
	return reset, nil
}

func (s *DBStore) newFlashcard(deckID string, in flashcard.Input, defaultSource flashcard.CreationSource, now time.Time) (flashcard.Flashcard, error) {
	if err := ValidateInput(in); err != nil {
		return flashcard.Flashcard{}, err
	}
	source := in.Source
	if source == "" {
		source = defaultSource
	}
	if !source.IsValid() {
		return flashcard.Flashcard{}, fmt.Errorf("unknown creation source %q", source)
	}
	return flashcard.Flashcard{
		ID:             s.newID(),
		DeckID:         deckID,
		Front:          strings.TrimSpace(in.Front),
		Back:           strings.TrimSpace(in.Back),
		CreationSource: source,
		CreatedAt:      now,
	}, nil
}

// ValidateInput checks the length limits of a flashcard's sides.
func ValidateInput(in flashcard.Input) error {
	front := utf8.RuneCountInString(strings.TrimSpace(in.Front))
	back := utf8.RuneCountInString(strings.TrimSpace(in.Back))
	switch {
	case front == 0 || front > flashcard.MaxFrontLength:
		return fmt.Errorf("front must be 1 to %d characters", flashcard.MaxFrontLength)
	case back == 0 || back > flashcard.MaxBackLength:
		return fmt.Errorf("back must be 1 to %d characters", flashcard.MaxBackLength)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) error {
	query, args, err := database.BuildMultiRowInsert(table, columns, rows)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
