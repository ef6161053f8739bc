package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
	"github.com/at-ishikawa/flashdeck/internal/testutil"
)

type fakeReviewStore struct {
	mu      sync.Mutex
	decks   []store.DeckSummary
	due     map[string]int
	failFor string
	queried []string
}

func (f *fakeReviewStore) FindDueFlashcards(_ context.Context, _, deckID string, _ time.Time) ([]flashcard.DueFlashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, deckID)
	if deckID == f.failFor {
		return nil, errors.New("connection refused")
	}
	return make([]flashcard.DueFlashcard, f.due[deckID]), nil
}

func (f *fakeReviewStore) CountDue(_ context.Context, _, deckID string, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, deckID)
	if deckID == f.failFor {
		return 0, errors.New("connection refused")
	}
	return f.due[deckID], nil
}

func (f *fakeReviewStore) ApplyReview(context.Context, string, string, srs.Quality) (flashcard.ReviewResult, error) {
	return flashcard.ReviewResult{}, errors.New("not used")
}

func (f *fakeReviewStore) ListDecks(context.Context, string) ([]store.DeckSummary, error) {
	return f.decks, nil
}

func TestCountDue(t *testing.T) {
	decks := []store.DeckSummary{
		{Deck: flashcard.Deck{ID: "deck-1", Name: "French"}},
		{Deck: flashcard.Deck{ID: "deck-2", Name: "Spanish"}},
		{Deck: flashcard.Deck{ID: "deck-3", Name: "German"}},
	}
	tests := []struct {
		name    string
		deckIDs []string
		failFor string
		want    []deckDue
		wantErr string
	}{
		{
			name: "every deck",
			want: []deckDue{
				{DeckID: "deck-1", Name: "French", Due: 3},
				{DeckID: "deck-2", Name: "Spanish", Due: 0},
				{DeckID: "deck-3", Name: "German", Due: 120},
			},
		},
		{
			name:    "selected decks keep their order",
			deckIDs: []string{"deck-3", "deck-1"},
			want: []deckDue{
				{DeckID: "deck-3", Due: 120},
				{DeckID: "deck-1", Due: 3},
			},
		},
		{
			name:    "a failed lookup fails the command",
			failFor: "deck-2",
			wantErr: "CountDue(deck-2) > connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := &fakeReviewStore{
				decks:   decks,
				due:     map[string]int{"deck-1": 3, "deck-3": 120},
				failFor: tt.failFor,
			}
			got, err := countDue(context.Background(), reviews, testutil.OwnerID, tt.deckIDs, time.Now())
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("countDue() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteDue(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeDue(&out, nil))
	assert.Equal(t, "No decks yet. Create one with `flashdeck deck import`.\n", out.String())

	out.Reset()
	require.NoError(t, writeDue(&out, []deckDue{{DeckID: "deck-1", Name: "French", Due: 3}}))
	assert.Equal(t, "DECK    NAME    DUE\ndeck-1  French  3\n", out.String())
}

func TestDueCommand(t *testing.T) {
	_, cfgPath, s := setupWorkspace(t)
	deck := testutil.CreateDeck(t, s, "Spanish", [2]string{"hola", "hello"}, [2]string{"adiós", "goodbye"})

	out, err := execute(t, cfgPath, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, deck.ID)
	assert.Contains(t, out, "Spanish")
}

func TestDueCommand_CountsPastTheSessionLimit(t *testing.T) {
	_, cfgPath, s := setupWorkspace(t)
	pairs := make([][2]string, flashcard.MaxDueFlashcards+5)
	for i := range pairs {
		pairs[i] = [2]string{fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)}
	}
	deck := testutil.CreateDeck(t, s, "Big", pairs...)

	out, err := execute(t, cfgPath, "", "due", deck.ID)
	require.NoError(t, err)
	assert.Regexp(t, fmt.Sprintf(`%s\s+%d\n`, deck.ID, flashcard.MaxDueFlashcards+5), out)
}
