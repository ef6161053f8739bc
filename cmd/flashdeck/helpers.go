package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/internal/client"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

var errUserIDRequired = errors.New("client.user_id (or FLASHDECK_USER_ID) is required")

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// openLocalStore opens the configured database and applies pending migrations.
// The returned close function releases the connection pool.
func openLocalStore(ctx context.Context, cfg *config.Config) (*store.DBStore, func(), error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return store.NewDBStore(db), func() { _ = db.Close() }, nil
}

func openDB(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if _, err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store.Migrate() > %w", err)
	}
	return db, nil
}

// reviewStore is what study and due need from either the local database or a remote server.
type reviewStore interface {
	FindDueFlashcards(ctx context.Context, ownerID, deckID string, asOf time.Time) ([]flashcard.DueFlashcard, error)
	ApplyReview(ctx context.Context, ownerID, flashcardID string, quality srs.Quality) (flashcard.ReviewResult, error)
	ListDecks(ctx context.Context, ownerID string) ([]store.DeckSummary, error)
	CountDue(ctx context.Context, ownerID, deckID string, asOf time.Time) (int, error)
}

var (
	_ reviewStore = (*store.DBStore)(nil)
	_ reviewStore = (*client.Client)(nil)
)

// openReviewStore talks to serverURL when it is set, and to the local database otherwise.
func openReviewStore(ctx context.Context, cfg *config.Config, serverURL string) (reviewStore, func(), error) {
	if serverURL == "" {
		serverURL = cfg.Client.ServerURL
	}
	if serverURL != "" {
		c := client.New(serverURL, cfg.Client.UserID)
		return c, func() { _ = c.Close() }, nil
	}
	s, closeStore, err := openLocalStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return s, closeStore, nil
}

func ownerID(cfg *config.Config) (string, error) {
	if cfg.Client.UserID == "" {
		return "", errUserIDRequired
	}
	return cfg.Client.UserID, nil
}
