// Package openrouter implements inference.Client on the OpenRouter chat completions API.
package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"resty.dev/v3"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/inference"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "openai/gpt-4o-mini"

	requestTimeout = 60 * time.Second
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	retryDelay       time.Duration
	systemPrompt     string
	newID            func() string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.httpClient.SetBaseURL(baseURL)
	}
}

// WithRetryDelay sets the base delay of the exponential backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithSystemPrompt replaces the built-in instructions sent to the model.
func WithSystemPrompt(prompt string) Option {
	return func(c *Client) {
		if strings.TrimSpace(prompt) != "" {
			c.systemPrompt = prompt
		}
	}
}

func NewClient(apiKey, model string, retryAttempts uint, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", inference.ErrAuth)
	}
	if model == "" {
		model = DefaultModel
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(DefaultBaseURL)
	httpClient.SetHeader("Authorization", "Bearer "+apiKey)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetTimeout(requestTimeout)

	client := &Client{
		httpClient:       httpClient,
		model:            model,
		maxRetryAttempts: retryAttempts,
		retryDelay:       time.Second,
		systemPrompt:     defaultSystemPrompt,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

func (client *Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// generatedFlashcards is the JSON object the model is instructed to return.
type generatedFlashcards struct {
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// GenerateFlashcards implements the inference.Client interface
func (client *Client) GenerateFlashcards(ctx context.Context, params inference.GenerateFlashcardsRequest) (inference.GenerateFlashcardsResponse, error) {
	length := utf8.RuneCountInString(params.Text)
	if length < inference.MinTextLength || length > inference.MaxTextLength {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("text must be %d to %d characters, got %d", inference.MinTextLength, inference.MaxTextLength, length)
	}
	if params.MaxFlashcards <= 0 {
		params.MaxFlashcards = inference.DefaultMaxFlashcards
	}

	var result inference.GenerateFlashcardsResponse
	if err := retry.Do(
		func() error {
			response, err := client.generateFlashcards(ctx, params)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Info("Retrying OpenRouter API call", "error", err)
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.Delay(client.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return inference.GenerateFlashcardsResponse{}, err
	}
	return result, nil
}

// isRetryableError retries transient failures only; a bad key or a malformed answer will not improve.
func isRetryableError(err error) bool {
	return errors.Is(err, inference.ErrRateLimit) ||
		errors.Is(err, inference.ErrNetwork) ||
		errors.Is(err, inference.ErrFormat) ||
		errors.Is(err, errServerSide)
}

var errServerSide = errors.New("server side failure")

func (client *Client) generateFlashcards(ctx context.Context, params inference.GenerateFlashcardsRequest) (inference.GenerateFlashcardsResponse, error) {
	requestBody := ChatCompletionRequest{
		Model: client.model,
		Messages: []Message{
			{Role: RoleSystem, Content: client.systemPrompt},
			{Role: RoleUser, Content: fmt.Sprintf("Create at most %d flashcards from the following text.\n\n%s", params.MaxFlashcards, params.Text)},
		},
		Temperature:    0.3,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: %w", inference.ErrNetwork, err)
	}
	if response.IsError() {
		return inference.GenerateFlashcardsResponse{}, statusError(response.StatusCode(), response.String())
	}

	responseBody, _ := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: empty response body or choices: %s", inference.ErrFormat, response.String())
	}
	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: empty response content", inference.ErrFormat)
	}
	slog.Default().Debug("openrouter response content",
		"model", responseBody.Model,
		"total_tokens", responseBody.Usage.TotalTokens,
	)

	return client.decodeProposals(content, params.MaxFlashcards)
}

func statusError(status int, body string) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: response error %d: %s", inference.ErrRateLimit, status, body)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: response error %d", inference.ErrAuth, status)
	case status >= 500:
		return fmt.Errorf("%w: %w: response error %d: %s", inference.ErrAPI, errServerSide, status, body)
	default:
		return fmt.Errorf("%w: response error %d: %s", inference.ErrAPI, status, body)
	}
}

func (client *Client) decodeProposals(content string, limit int) (inference.GenerateFlashcardsResponse, error) {
	content = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(content, "```json"), "```"), "```"))

	var decoded generatedFlashcards
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: json.Unmarshal: %w", inference.ErrFormat, err)
	}
	if len(decoded.Flashcards) == 0 {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: no flashcards in response", inference.ErrFormat)
	}

	proposals := make([]inference.Proposal, 0, len(decoded.Flashcards))
	for _, card := range decoded.Flashcards {
		front := strings.TrimSpace(card.Front)
		back := strings.TrimSpace(card.Back)
		if front == "" || back == "" ||
			utf8.RuneCountInString(front) > flashcard.MaxFrontLength ||
			utf8.RuneCountInString(back) > flashcard.MaxBackLength {
			slog.Default().Debug("dropping invalid proposal", "front", front)
			continue
		}
		proposals = append(proposals, inference.Proposal{ID: client.newID(), Front: front, Back: back})
		if len(proposals) == limit {
			break
		}
	}
	if len(proposals) == 0 {
		return inference.GenerateFlashcardsResponse{}, fmt.Errorf("%w: every proposal violated the length limits", inference.ErrFormat)
	}
	return inference.GenerateFlashcardsResponse{Proposals: proposals}, nil
}
