package server

import (
	"errors"
	"net/http"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/inference"
)

// GenerateRequest is the body of POST /api/ai/generate.
type GenerateRequest struct {
	Text          string `json:"text" validate:"required,min=2000,max=10000"`
	MaxFlashcards int    `json:"max_flashcards" validate:"omitempty,min=1,max=100"`
}

// SaveGeneratedRequest is the body of POST /api/ai/save.
type SaveGeneratedRequest struct {
	Name       string                      `json:"name" validate:"omitempty,max=100"`
	Flashcards []AcceptedProposal          `json:"flashcards" validate:"required,min=1,max=100,dive"`
	Metrics    flashcard.GenerationMetrics `json:"metrics"`
}

// AcceptedProposal is a generated flashcard the user kept, possibly after editing it.
type AcceptedProposal struct {
	Front  string `json:"front" validate:"required,notblank,max=200"`
	Back   string `json:"back" validate:"required,notblank,max=500"`
	Edited bool   `json:"edited"`
}

const aiUnavailableMessage = "AI service is currently unavailable. Please try again later."

func (h *Handler) generateFlashcards(w http.ResponseWriter, r *http.Request, _ string) {
	if h.generator == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: aiUnavailableMessage, Code: CodeUnavailable})
		return
	}

	var req GenerateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	response, err := h.generator.GenerateFlashcards(r.Context(), inference.GenerateFlashcardsRequest{
		Text:          req.Text,
		MaxFlashcards: req.MaxFlashcards,
	})
	if err != nil {
		h.logger.Warn("flashcard generation failed", "error", err)
		if errors.Is(err, inference.ErrRateLimit) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests. Please try again later.", Code: CodeRateLimited})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: aiUnavailableMessage, Code: CodeUnavailable})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) saveGeneratedFlashcards(w http.ResponseWriter, r *http.Request, ownerID string) {
	var req SaveGeneratedRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, "")
		return
	}

	cards := make([]flashcard.Input, 0, len(req.Flashcards))
	edited := 0
	for _, p := range req.Flashcards {
		source := flashcard.SourceAIGenerated
		if p.Edited {
			source = flashcard.SourceAIGeneratedEdited
			edited++
		}
		cards = append(cards, flashcard.Input{Front: p.Front, Back: p.Back, Source: source})
	}

	metrics := req.Metrics
	if metrics.Accepted == 0 {
		metrics.Accepted = len(cards)
	}
	if metrics.Edited == 0 {
		metrics.Edited = edited
	}
	if metrics.Proposed < metrics.Accepted {
		metrics.Proposed = metrics.Accepted
	}

	deck, err := h.store.SaveGeneratedDeck(r.Context(), ownerID, req.Name, cards, metrics)
	if err != nil {
		h.writeError(w, r, err, "Failed to save flashcards")
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}
