// Package session drives a single study session over the due flashcards of one deck.
//
// A Controller fetches the due cards once, steps through them in order and
// applies each rating through the Store. Progress is saved to a SnapshotStore
// while the session is ready, so a new Controller for the same deck resumes
// where the previous one stopped.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

var (
	ErrInvalidTransition = errors.New("operation not allowed in the current session state")
	ErrReviewPending     = errors.New("a review is still being submitted")
	ErrLoading           = errors.New("session is still loading")
)

// Env is what a Controller needs from its surroundings. It lives as long as the Controller.
type Env struct {
	Store     Store
	Snapshots SnapshotStore
	OwnerID   string
	Now       func() time.Time
	Logger    *slog.Logger
}

type Controller struct {
	deckID string
	env    Env

	mu      sync.Mutex
	state   State
	err     error
	pending bool
	loading bool
}

// NewController returns a controller in the loading state. Call Start to fetch the due cards.
func NewController(deckID string, env Env) *Controller {
	if env.Now == nil {
		env.Now = time.Now
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	if env.Snapshots == nil {
		env.Snapshots = NewMemorySnapshotStore()
	}
	return &Controller{
		deckID: deckID,
		env:    env,
		state:  State{DeckID: deckID, Status: StatusLoading},
	}
}

// Start fetches the due cards and moves the session to ready, empty or error.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrLoading
	}
	if c.state.Status != StatusLoading {
		c.mu.Unlock()
		return fmt.Errorf("start in %s: %w", c.state.Status, ErrInvalidTransition)
	}
	c.loading = true
	c.mu.Unlock()

	return c.load(ctx)
}

// Retry starts over after the due cards could not be fetched.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrLoading
	}
	if c.state.Status != StatusError {
		c.mu.Unlock()
		return fmt.Errorf("retry in %s: %w", c.state.Status, ErrInvalidTransition)
	}
	c.state = State{DeckID: c.deckID, Status: StatusLoading}
	c.err = nil
	c.loading = true
	c.mu.Unlock()

	return c.load(ctx)
}

// Restart drops the saved progress and fetches the due cards again.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return ErrReviewPending
	}
	if c.loading {
		c.mu.Unlock()
		return ErrLoading
	}
	c.clearSnapshot()
	c.state = State{DeckID: c.deckID, Status: StatusLoading}
	c.err = nil
	c.loading = true
	c.mu.Unlock()

	return c.load(ctx)
}

func (c *Controller) load(ctx context.Context) error {
	cards, err := c.env.Store.FindDueFlashcards(ctx, c.env.OwnerID, c.deckID, c.env.Now())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if err != nil {
		err = apperr.Ensure(apperr.KindStore, "load due flashcards", err)
		c.state.Status = StatusError
		c.err = err
		return err
	}
	if len(cards) == 0 {
		c.state.Status = StatusEmpty
		c.clearSnapshot()
		return nil
	}

	if saved, ok := c.loadSnapshot(); ok && saved.resumableWith(c.deckID, cards) {
		c.state = saved.clone()
		c.env.Logger.Debug("resumed study session",
			"deck_id", c.deckID,
			"index", c.state.CurrentIndex,
			"total", len(c.state.Flashcards))
	} else {
		c.state = State{
			DeckID:     c.deckID,
			Status:     StatusReady,
			Flashcards: append([]flashcard.DueFlashcard(nil), cards...),
			Stats:      Stats{Total: len(cards)},
		}
	}
	c.saveSnapshot()
	return nil
}

// RevealAnswer shows the back of the current card.
func (c *Controller) RevealAnswer() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusReady {
		return fmt.Errorf("reveal in %s: %w", c.state.Status, ErrInvalidTransition)
	}
	if c.state.Revealed {
		return nil
	}
	c.state.Revealed = true
	c.saveSnapshot()
	return nil
}

// SubmitReview rates the current card. On failure the session stays on the same
// card so the same rating can be submitted again.
func (c *Controller) SubmitReview(ctx context.Context, quality srs.Quality) (flashcard.ReviewResult, error) {
	const op = "submit review"
	if !quality.IsValid() {
		return flashcard.ReviewResult{}, apperr.Validation(op, fmt.Errorf("%w: %q", srs.ErrInvalidQuality, quality))
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return flashcard.ReviewResult{}, ErrReviewPending
	}
	card, ok := c.state.current()
	if !ok {
		status := c.state.Status
		c.mu.Unlock()
		return flashcard.ReviewResult{}, fmt.Errorf("review in %s: %w", status, ErrInvalidTransition)
	}
	c.pending = true
	c.mu.Unlock()

	result, err := c.env.Store.ApplyReview(ctx, c.env.OwnerID, card.ID, quality)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err != nil {
		return flashcard.ReviewResult{}, apperr.Ensure(apperr.KindStore, op, err)
	}

	c.state.Stats.record(quality)
	if c.state.CurrentIndex == len(c.state.Flashcards)-1 {
		c.state.Status = StatusFinished
		c.state.Revealed = false
		c.clearSnapshot()
		return result, nil
	}
	c.state.CurrentIndex++
	c.state.Revealed = false
	c.saveSnapshot()
	return result, nil
}

// EndSession finishes the session early without rating the current card.
func (c *Controller) EndSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		return ErrReviewPending
	}
	if c.state.Status != StatusReady {
		return fmt.Errorf("end in %s: %w", c.state.Status, ErrInvalidTransition)
	}
	c.state.Status = StatusFinished
	c.clearSnapshot()
	return nil
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// CurrentFlashcard returns the card being studied, if any.
func (c *Controller) CurrentFlashcard() (flashcard.DueFlashcard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.current()
}

func (c *Controller) Summary() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Stats
}

// Err is the error that moved the session into the error state.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Snapshot failures never reach the caller; the session carries on in memory.

func (c *Controller) saveSnapshot() {
	snapshot := c.state.clone()
	snapshot.SavedAt = c.env.Now().UTC()
	if err := c.env.Snapshots.Save(snapshot); err != nil {
		c.warn("save", err)
	}
}

func (c *Controller) loadSnapshot() (State, bool) {
	saved, ok, err := c.env.Snapshots.Load(c.deckID)
	if err != nil {
		c.warn("load", err)
		return State{}, false
	}
	return saved, ok
}

func (c *Controller) clearSnapshot() {
	if err := c.env.Snapshots.Clear(c.deckID); err != nil {
		c.warn("clear", err)
	}
}

func (c *Controller) warn(action string, err error) {
	err = apperr.Persistence(action+" session snapshot", err)
	c.env.Logger.Warn("study session snapshot unavailable",
		"deck_id", c.deckID,
		"action", action,
		"error", err)
}
