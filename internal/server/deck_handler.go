package server

import (
	"fmt"
	"net/http"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

type DecksResponse struct {
	Decks []store.DeckSummary `json:"decks"`
}

// CreateDeckRequest is the body of POST /api/decks.
type CreateDeckRequest struct {
	Name       string            `json:"name" validate:"required,notblank,max=100"`
	Flashcards []flashcard.Input `json:"flashcards" validate:"required,min=1,max=100,dive"`
}

// DeckDetailsResponse is the body of GET /api/decks/{deckId}.
type DeckDetailsResponse struct {
	flashcard.Deck
	Flashcards []flashcard.ScheduledFlashcard `json:"flashcards"`
}

// RenameDeckRequest is the body of PATCH /api/decks/{deckId}.
type RenameDeckRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

type ResetProgressResponse struct {
	Message    string `json:"message"`
	ResetCount int64  `json:"reset_count"`
}

func (h *Handler) listDecks(w http.ResponseWriter, r *http.Request, ownerID string) {
	decks, err := h.store.ListDecks(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, err, "Failed to list decks")
		return
	}
	if decks == nil {
		decks = []store.DeckSummary{}
	}
	writeJSON(w, http.StatusOK, DecksResponse{Decks: decks})
}

func (h *Handler) createDeck(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req CreateDeckRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	deck, err := h.store.CreateDeck(r.Context(), ownerID, req.Name, req.Flashcards, flashcard.SourceManual)
	if err != nil {
		h.writeError(w, r, err, "Failed to create deck")
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (h *Handler) getDeck(w http.ResponseWriter, r *http.Request, ownerID string) {
	deckID := r.PathValue("deckId")
	deck, err := h.store.GetDeck(r.Context(), ownerID, deckID)
	if err != nil {
		h.writeError(w, r, err, "Failed to load deck")
		return
	}
	cards, err := h.store.ListFlashcards(r.Context(), ownerID, deckID)
	if err != nil {
		h.writeError(w, r, err, "Failed to load deck")
		return
	}
	if cards == nil {
		cards = []flashcard.ScheduledFlashcard{}
	}
	writeJSON(w, http.StatusOK, DeckDetailsResponse{Deck: deck, Flashcards: cards})
}

func (h *Handler) renameDeck(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req RenameDeckRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	deck, err := h.store.RenameDeck(r.Context(), ownerID, r.PathValue("deckId"), req.Name)
	if err != nil {
		h.writeError(w, r, err, "Failed to update deck")
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (h *Handler) deleteDeck(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := h.store.DeleteDeck(r.Context(), ownerID, r.PathValue("deckId")); err != nil {
		h.writeError(w, r, err, "Failed to delete deck")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addFlashcard(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req flashcard.Input
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	card, err := h.store.AddFlashcard(r.Context(), ownerID, r.PathValue("deckId"), req, flashcard.SourceManual)
	if err != nil {
		h.writeError(w, r, err, "Failed to create flashcard")
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) updateFlashcard(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req flashcard.Input
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	card, err := h.store.UpdateFlashcard(r.Context(), ownerID, r.PathValue("flashcardId"), req)
	if err != nil {
		h.writeError(w, r, err, "Failed to update flashcard")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) deleteFlashcard(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := h.store.DeleteFlashcard(r.Context(), ownerID, r.PathValue("flashcardId")); err != nil {
		h.writeError(w, r, err, "Failed to delete flashcard")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) resetProgress(w http.ResponseWriter, r *http.Request, ownerID string) {
	count, err := h.store.ResetDeckProgress(r.Context(), ownerID, r.PathValue("deckId"), h.now())
	if err != nil {
		h.writeError(w, r, err, "Failed to reset progress")
		return
	}
	writeJSON(w, http.StatusOK, ResetProgressResponse{
		Message:    fmt.Sprintf("Progress reset for %d flashcards", count),
		ResetCount: count,
	})
}
