// Package apperr classifies failures into the kinds callers act on.
package apperr

import (
	"errors"
	"fmt"

	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// Kind is the failure category of an Error.
type Kind int

const (
	// KindStore is a transient persistence failure. Unclassified errors are treated as this kind.
	KindStore Kind = iota
	// KindValidation is malformed input, rejected before the engine or store is touched.
	KindValidation
	// KindNotFound is a missing deck or flashcard, or one the caller does not own.
	KindNotFound
	// KindPersistence is a failure to save or restore a session snapshot. It is logged, never surfaced.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindStore:
		return "store"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindPersistence:
		return "persistence"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is an error tagged with its Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op string, err error) error {
	return New(KindValidation, op, err)
}

func NotFound(op string, err error) error {
	return New(KindNotFound, op, err)
}

func Store(op string, err error) error {
	return New(KindStore, op, err)
}

func Persistence(op string, err error) error {
	return New(KindPersistence, op, err)
}

// Ensure tags err with kind unless it already carries a Kind.
func Ensure(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return New(kind, op, err)
}

// KindOf returns the kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, srs.ErrInvalidQuality) || errors.Is(err, srs.ErrInvalidState) {
		return KindValidation
	}
	return KindStore
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
