package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/at-ishikawa/flashdeck/internal/apperr"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

const maxRequestBytes = 1 << 20

// Error codes let clients tell failures apart without matching messages.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeUnauthorized      = "unauthorized"
	CodeDeckNotFound      = "deck_not_found"
	CodeFlashcardNotFound = "flashcard_not_found"
	CodeNotFound          = "not_found"
	CodeRateLimited       = "rate_limited"
	CodeUnavailable       = "unavailable"
	CodeInternal          = "internal_error"
)

type errorResponse struct {
	Error   string        `json:"error"`
	Code    string        `json:"code"`
	Details []errorDetail `json:"details,omitempty"`
}

type errorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decode reads a JSON body into dst and validates its struct tags.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(dst); err != nil {
		return apperr.Validation("decode request", fmt.Errorf("invalid JSON body: %w", err))
	}
	if err := h.validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// writeError renders err with the status of its kind. internalMessage is shown
// instead of the cause for store failures.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, internalMessage string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]errorDetail, 0, len(validationErrors))
		for _, fe := range validationErrors {
			details = append(details, errorDetail{Field: fe.Field(), Message: fe.Translate(h.trans)})
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request", Code: CodeInvalidRequest, Details: details})
		return
	}

	switch kind := apperr.KindOf(err); kind {
	case apperr.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: cause(err), Code: CodeInvalidRequest})
	case apperr.KindNotFound:
		message, code := notFound(err)
		writeJSON(w, http.StatusNotFound, errorResponse{Error: message, Code: code})
	default:
		// store and persistence failures, and any kind added later
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", kind.String(),
			"error", err,
		)
		if internalMessage == "" {
			internalMessage = "Internal server error"
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalMessage, Code: CodeInternal})
	}
}

func notFound(err error) (message, code string) {
	switch {
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found", CodeDeckNotFound
	case errors.Is(err, store.ErrFlashcardNotFound):
		return "Flashcard not found", CodeFlashcardNotFound
	}
	return "Not found", CodeNotFound
}

// cause drops the operation prefix of an apperr.Error.
func cause(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
