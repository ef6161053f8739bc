// Package client talks to a flashdeck server so a study session can run against a remote store.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/server"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

const requestTimeout = 30 * time.Second

// Client implements session.Store over the HTTP API.
// The owner is fixed at construction and sent with every request.
type Client struct {
	httpClient *resty.Client
}

func New(serverURL, userID string) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(serverURL, "/"))
	httpClient.SetHeader(server.UserIDHeader, userID)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetTimeout(requestTimeout)
	return &Client{httpClient: httpClient}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

// FindDueFlashcards asks the server for the deck's due cards as of the given date.
// ownerID is ignored; the server acts for the user the client was created with.
func (c *Client) FindDueFlashcards(ctx context.Context, _ string, deckID string, asOf time.Time) ([]flashcard.DueFlashcard, error) {
	const op = "find due flashcards"
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("deckId", deckID).
		SetQueryParam(server.AsOfParam, srs.FormatDate(asOf)).
		SetResult(&server.DueFlashcardsResponse{}).
		Get("/api/decks/{deckId}/review")
	if err != nil {
		return nil, apperr.Store(op, fmt.Errorf("GET review: %w", err))
	}
	if response.IsError() {
		return nil, statusError(op, response.StatusCode(), response.String())
	}

	body, _ := response.Result().(*server.DueFlashcardsResponse)
	if body == nil || body.Flashcards == nil {
		return []flashcard.DueFlashcard{}, nil
	}
	return body.Flashcards, nil
}

// ApplyReview submits one rating. ownerID is ignored like in FindDueFlashcards.
func (c *Client) ApplyReview(ctx context.Context, _ string, flashcardID string, quality srs.Quality) (flashcard.ReviewResult, error) {
	const op = "apply review"
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(server.ReviewRequest{FlashcardID: flashcardID, Quality: quality}).
		SetResult(&flashcard.ReviewResult{}).
		Post("/api/reviews")
	if err != nil {
		return flashcard.ReviewResult{}, apperr.Store(op, fmt.Errorf("POST reviews: %w", err))
	}
	if response.IsError() {
		return flashcard.ReviewResult{}, statusError(op, response.StatusCode(), response.String())
	}

	result, _ := response.Result().(*flashcard.ReviewResult)
	if result == nil {
		return flashcard.ReviewResult{}, apperr.Store(op, errors.New("empty review response"))
	}
	return *result, nil
}

func (c *Client) ListDecks(ctx context.Context, _ string) ([]store.DeckSummary, error) {
	const op = "list decks"
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&server.DecksResponse{}).
		Get("/api/decks")
	if err != nil {
		return nil, apperr.Store(op, fmt.Errorf("GET decks: %w", err))
	}
	if response.IsError() {
		return nil, statusError(op, response.StatusCode(), response.String())
	}

	body, _ := response.Result().(*server.DecksResponse)
	if body == nil {
		return nil, nil
	}
	return body.Decks, nil
}

// CountDue asks the server how many cards of the deck are due, without the session limit.
func (c *Client) CountDue(ctx context.Context, _ string, deckID string, asOf time.Time) (int, error) {
	const op = "count due flashcards"
	response, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("deckId", deckID).
		SetQueryParam(server.AsOfParam, srs.FormatDate(asOf)).
		SetResult(&server.DueCountResponse{}).
		Get("/api/decks/{deckId}/due-count")
	if err != nil {
		return 0, apperr.Store(op, fmt.Errorf("GET due-count: %w", err))
	}
	if response.IsError() {
		return 0, statusError(op, response.StatusCode(), response.String())
	}

	body, _ := response.Result().(*server.DueCountResponse)
	if body == nil {
		return 0, apperr.Store(op, errors.New("empty due count response"))
	}
	return body.Due, nil
}

// statusError maps an API error response back onto the kind the server derived it from.
func statusError(op string, status int, body string) error {
	var decoded struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	message := body
	if err := json.Unmarshal([]byte(body), &decoded); err == nil && decoded.Error != "" {
		message = decoded.Error
	}

	switch decoded.Code {
	case server.CodeDeckNotFound:
		return apperr.NotFound(op, store.ErrDeckNotFound)
	case server.CodeFlashcardNotFound:
		return apperr.NotFound(op, store.ErrFlashcardNotFound)
	}
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized:
		return apperr.Validation(op, fmt.Errorf("%d: %s", status, message))
	case http.StatusNotFound:
		return apperr.NotFound(op, fmt.Errorf("%d: %s", status, message))
	default:
		return apperr.Store(op, fmt.Errorf("%d: %s", status, message))
	}
}
