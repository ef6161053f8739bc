package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// DueFlashcardsResponse is the body of GET /api/decks/{deckId}/review.
type DueFlashcardsResponse struct {
	Flashcards []flashcard.DueFlashcard `json:"flashcards"`
}

// DueCountResponse is the body of GET /api/decks/{deckId}/due-count.
type DueCountResponse struct {
	Due int `json:"due"`
}

// ReviewRequest is the body of POST /api/reviews.
type ReviewRequest struct {
	FlashcardID string      `json:"flashcard_id" validate:"required,uuid"`
	Quality     srs.Quality `json:"quality" validate:"required,oneof=again good easy"`
}

// AsOfParam optionally overrides the server's date when selecting due cards.
const AsOfParam = "as_of"

// asOf returns the as_of query parameter, or the current time when it is absent.
func (h *Handler) asOf(r *http.Request) (time.Time, error) {
	value := r.URL.Query().Get(AsOfParam)
	if value == "" {
		return h.now(), nil
	}
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, apperr.Validation("parse as_of", fmt.Errorf("%s must be a YYYY-MM-DD date", AsOfParam))
	}
	return parsed, nil
}

func (h *Handler) getDueFlashcards(w http.ResponseWriter, r *http.Request, ownerID string) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	cards, err := h.store.FindDueFlashcards(r.Context(), ownerID, r.PathValue("deckId"), asOf)
	if err != nil {
		h.writeError(w, r, err, "Failed to load due flashcards")
		return
	}
	writeJSON(w, http.StatusOK, DueFlashcardsResponse{Flashcards: cards})
}

func (h *Handler) countDue(w http.ResponseWriter, r *http.Request, ownerID string) {
	asOf, err := h.asOf(r)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	due, err := h.store.CountDue(r.Context(), ownerID, r.PathValue("deckId"), asOf)
	if err != nil {
		h.writeError(w, r, err, "Failed to count due flashcards")
		return
	}
	writeJSON(w, http.StatusOK, DueCountResponse{Due: due})
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req ReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	result, err := h.store.ApplyReview(r.Context(), ownerID, req.FlashcardID, req.Quality)
	if err != nil {
		h.writeError(w, r, err, "Failed to update review data")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
