// Package server exposes the scheduling store and flashcard generation as a JSON HTTP API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/inference"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

//go:generate mockgen -source=server.go -destination=../mocks/server/mock_store.go -package=mock_server

// Store is the part of the scheduling store served over HTTP.
type Store interface {
	FindDueFlashcards(ctx context.Context, ownerID, deckID string, asOf time.Time) ([]flashcard.DueFlashcard, error)
	ApplyReview(ctx context.Context, ownerID, flashcardID string, quality srs.Quality) (flashcard.ReviewResult, error)
	ListDecks(ctx context.Context, ownerID string) ([]store.DeckSummary, error)
	GetDeck(ctx context.Context, ownerID, deckID string) (flashcard.Deck, error)
	ListFlashcards(ctx context.Context, ownerID, deckID string) ([]flashcard.ScheduledFlashcard, error)
	CountDue(ctx context.Context, ownerID, deckID string, asOf time.Time) (int, error)
	CreateDeck(ctx context.Context, ownerID, name string, cards []flashcard.Input, defaultSource flashcard.CreationSource) (flashcard.Deck, error)
	SaveGeneratedDeck(ctx context.Context, ownerID, name string, cards []flashcard.Input, metrics flashcard.GenerationMetrics) (flashcard.Deck, error)
	AddFlashcard(ctx context.Context, ownerID, deckID string, in flashcard.Input, source flashcard.CreationSource) (flashcard.Flashcard, error)
	DeleteFlashcard(ctx context.Context, ownerID, flashcardID string) error
	ResetDeckProgress(ctx context.Context, ownerID, deckID string, today time.Time) (int64, error)
	RenameDeck(ctx context.Context, ownerID, deckID, name string) (flashcard.Deck, error)
	DeleteDeck(ctx context.Context, ownerID, deckID string) error
	UpdateFlashcard(ctx context.Context, ownerID, flashcardID string, in flashcard.Input) (flashcard.Flashcard, error)
}

var _ Store = (*store.DBStore)(nil)

// UserIDHeader carries the UUID of the user every /api request acts for.
const UserIDHeader = "X-User-ID"

// Handler serves the flashcard API.
type Handler struct {
	store     Store
	generator inference.Client

	validate *validator.Validate
	trans    ut.Translator
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Handler)

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler creates a Handler. generator may be nil, in which case the AI routes answer 503.
func NewHandler(store Store, generator inference.Client, opts ...Option) (*Handler, error) {
	validate, trans, err := config.NewValidator("json")
	if err != nil {
		return nil, fmt.Errorf("config.NewValidator() > %w", err)
	}
	h := &Handler{
		store:     store,
		generator: generator,
		validate:  validate,
		trans:     trans,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Routes returns the API routes.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("GET /api/decks", h.requireUser(h.listDecks))
	mux.Handle("POST /api/decks", h.requireUser(h.createDeck))
	mux.Handle("GET /api/decks/{deckId}", h.requireUser(h.getDeck))
	mux.Handle("PATCH /api/decks/{deckId}", h.requireUser(h.renameDeck))
	mux.Handle("DELETE /api/decks/{deckId}", h.requireUser(h.deleteDeck))
	mux.Handle("GET /api/decks/{deckId}/review", h.requireUser(h.getDueFlashcards))
	mux.Handle("GET /api/decks/{deckId}/due-count", h.requireUser(h.countDue))
	mux.Handle("POST /api/decks/{deckId}/flashcards", h.requireUser(h.addFlashcard))
	mux.Handle("POST /api/decks/{deckId}/reset-progress", h.requireUser(h.resetProgress))
	mux.Handle("PATCH /api/flashcards/{flashcardId}", h.requireUser(h.updateFlashcard))
	mux.Handle("DELETE /api/flashcards/{flashcardId}", h.requireUser(h.deleteFlashcard))
	mux.Handle("POST /api/reviews", h.requireUser(h.submitReview))
	mux.Handle("POST /api/ai/generate", h.requireUser(h.generateFlashcards))
	mux.Handle("POST /api/ai/save", h.requireUser(h.saveGeneratedFlashcards))
	return mux
}

// NewHTTPHandler wraps the routes with CORS and cleartext HTTP/2 support.
func NewHTTPHandler(routes http.Handler, allowedOrigins []string) http.Handler {
	return corsMiddleware(allowedOrigins, h2c.NewHandler(routes, &http2.Server{}))
}

type userHandlerFunc func(w http.ResponseWriter, r *http.Request, ownerID string)

func (h *Handler) requireUser(next userHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(UserIDHeader)
		if err := h.validate.Var(ownerID, "required,uuid"); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized", Code: CodeUnauthorized})
			return
		}
		next(w, r, ownerID)
	})
}

func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowAny := slices.Contains(allowedOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (allowAny || slices.Contains(allowedOrigins, origin)) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+UserIDHeader)
			w.Header().Set("Access-Control-Max-Age", "3600")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
