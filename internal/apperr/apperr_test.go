package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/flashdeck/internal/srs"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "tagged error",
			err:  NotFound("find deck", errors.New("deck 1")),
			want: KindNotFound,
		},
		{
			name: "tagged error wrapped by fmt.Errorf",
			err:  fmt.Errorf("start session: %w", Validation("parse", errors.New("bad"))),
			want: KindValidation,
		},
		{
			name: "engine quality error",
			err:  fmt.Errorf("rate: %w", srs.ErrInvalidQuality),
			want: KindValidation,
		},
		{
			name: "engine state error",
			err:  srs.ErrInvalidState,
			want: KindValidation,
		},
		{
			name: "unclassified error is a store failure",
			err:  errors.New("connection reset"),
			want: KindStore,
		},
		{
			name: "persistence warning",
			err:  Persistence("save snapshot", errors.New("disk full")),
			want: KindPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
			assert.True(t, Is(tt.err, tt.want))
		})
	}
}

func TestEnsure(t *testing.T) {
	assert.NoError(t, Ensure(KindStore, "op", nil))

	notFound := NotFound("load", errors.New("missing"))
	assert.Same(t, notFound, Ensure(KindStore, "op", notFound))

	cause := errors.New("commit failed")
	got := Ensure(KindStore, "apply review", cause)
	assert.Equal(t, KindStore, KindOf(got))
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "apply review: commit failed", got.Error())
}

func TestError_Error(t *testing.T) {
	assert.Equal(t, "find: not found", (&Error{Kind: KindNotFound, Op: "find"}).Error())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
