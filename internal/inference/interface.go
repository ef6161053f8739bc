package inference

import (
	"context"
	"errors"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client generates flashcard proposals from free text with an LLM
type Client interface {
	GenerateFlashcards(ctx context.Context, params GenerateFlashcardsRequest) (GenerateFlashcardsResponse, error)
}

// Error taxonomy of the LLM provider. Callers match with errors.Is.
var (
	ErrAuth      = errors.New("llm authentication failed")
	ErrRateLimit = errors.New("llm rate limit exceeded")
	ErrFormat    = errors.New("llm response has an unexpected format")
	ErrAPI       = errors.New("llm api error")
	ErrNetwork   = errors.New("llm network error")
)

const (
	DefaultMaxRetryAttempts = 3

	MinTextLength = 2000
	MaxTextLength = 10000

	// DefaultMaxFlashcards caps the number of proposals asked for in one generation.
	DefaultMaxFlashcards = 20
)

type GenerateFlashcardsRequest struct {
	Text          string `json:"text"`
	MaxFlashcards int    `json:"max_flashcards,omitempty"`
}

// Proposal is a generated flashcard the user has not accepted yet.
// ID is temporary and only identifies the proposal on the client.
type Proposal struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

type GenerateFlashcardsResponse struct {
	Proposals []Proposal `json:"proposals"`
}
