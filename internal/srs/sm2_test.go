package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateEasinessFactor(t *testing.T) {
	tests := []struct {
		name     string
		ef       float64
		grade    int
		expected float64
	}{
		{
			name:     "grade 5 increases EF",
			ef:       2.5,
			grade:    5,
			expected: 2.6,
		},
		{
			name:     "grade 4 maintains EF",
			ef:       2.5,
			grade:    4,
			expected: 2.5,
		},
		{
			name:     "grade 2 decreases EF",
			ef:       2.5,
			grade:    2,
			expected: 2.18,
		},
		{
			name:     "never goes below MinEasinessFactor",
			ef:       1.4,
			grade:    2,
			expected: MinEasinessFactor,
		},
		{
			name:     "default EF when zero",
			ef:       0,
			grade:    5,
			expected: 2.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UpdateEasinessFactor(tt.ef, tt.grade)
			assert.InDelta(t, tt.expected, got, 0.0001)
		})
	}
}

func TestCalculateNextInterval(t *testing.T) {
	tests := []struct {
		name         string
		lastInterval int
		ef           float64
		grade        int
		repetition   int
		expected     int
	}{
		{
			name:         "first successful repetition",
			lastInterval: 0,
			ef:           2.5,
			grade:        4,
			repetition:   1,
			expected:     1,
		},
		{
			name:         "second successful repetition",
			lastInterval: 1,
			ef:           2.5,
			grade:        4,
			repetition:   2,
			expected:     6,
		},
		{
			name:         "third repetition grows by EF",
			lastInterval: 6,
			ef:           2.5,
			grade:        4,
			repetition:   3,
			expected:     15,
		},
		{
			name:         "rounds half up",
			lastInterval: 6,
			ef:           2.6,
			grade:        5,
			repetition:   3,
			expected:     16,
		},
		{
			name:         "failed grade resets to one day",
			lastInterval: 120,
			ef:           2.8,
			grade:        2,
			repetition:   0,
			expected:     1,
		},
		{
			name:         "zero last interval never yields zero",
			lastInterval: 0,
			ef:           1.3,
			grade:        4,
			repetition:   5,
			expected:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateNextInterval(tt.lastInterval, tt.ef, tt.grade, tt.repetition)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNext(t *testing.T) {
	today := time.Date(2025, 10, 19, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		state   State
		quality Quality
		want    State
		wantErr error
	}{
		{
			name:    "new card rated good",
			state:   NewState(today),
			quality: QualityGood,
			want: State{
				Repetition: 1,
				Interval:   1,
				EFactor:    2.5,
				DueDate:    time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "second good review jumps to six days",
			state:   State{Repetition: 1, Interval: 1, EFactor: 2.5},
			quality: QualityGood,
			want: State{
				Repetition: 2,
				Interval:   6,
				EFactor:    2.5,
				DueDate:    time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "easy review grows interval by the new EF",
			state:   State{Repetition: 2, Interval: 6, EFactor: 2.5},
			quality: QualityEasy,
			want: State{
				Repetition: 3,
				Interval:   16,
				EFactor:    2.6,
				DueDate:    time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "again resets a mature card",
			state:   State{Repetition: 7, Interval: 90, EFactor: 2.7},
			quality: QualityAgain,
			want: State{
				Repetition: 0,
				Interval:   1,
				EFactor:    2.38,
				DueDate:    time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "invalid quality is rejected",
			state:   NewState(today),
			quality: Quality("hard"),
			wantErr: ErrInvalidQuality,
		},
		{
			name:    "negative interval is rejected",
			state:   State{Repetition: 1, Interval: -1, EFactor: 2.5},
			quality: QualityGood,
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.state, tt.quality, today)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.Repetition, got.Repetition)
			assert.Equal(t, tt.want.Interval, got.Interval)
			assert.InDelta(t, tt.want.EFactor, got.EFactor, 0.0001)
			assert.Equal(t, tt.want.DueDate, got.DueDate)
		})
	}
}

func sampleStates() []State {
	var states []State
	for _, repetition := range []int{0, 1, 2, 3, 8, 25} {
		for _, interval := range []int{0, 1, 6, 17, 365} {
			for _, ef := range []float64{0, 1.3, 1.31, 1.8, 2.5, 3.4} {
				states = append(states, State{Repetition: repetition, Interval: interval, EFactor: ef})
			}
		}
	}
	return states
}

func TestNext_Properties(t *testing.T) {
	today := time.Date(2025, 3, 30, 23, 59, 0, 0, time.UTC)
	reviewDate := Date(today)

	t.Run("good on a fresh card yields interval 1 and repetition 1", func(t *testing.T) {
		for _, ef := range []float64{1.3, 2.0, 2.5, 3.0} {
			got, err := Next(State{EFactor: ef}, QualityGood, today)
			require.NoError(t, err)
			assert.Equal(t, 1, got.Interval)
			assert.Equal(t, 1, got.Repetition)
		}
	})

	for _, state := range sampleStates() {
		for _, quality := range Qualities {
			got, err := Next(state, quality, today)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, got.EFactor, MinEasinessFactor, "state=%+v quality=%s", state, quality)
			assert.GreaterOrEqual(t, got.Interval, 1, "state=%+v quality=%s", state, quality)
			assert.True(t, got.DueDate.After(reviewDate), "state=%+v quality=%s", state, quality)
			assert.Equal(t, reviewDate.AddDate(0, 0, got.Interval), got.DueDate, "state=%+v quality=%s", state, quality)

			switch quality {
			case QualityAgain:
				assert.Equal(t, 0, got.Repetition)
				assert.Equal(t, 1, got.Interval)
			case QualityGood, QualityEasy:
				assert.Equal(t, state.Repetition+1, got.Repetition)
			}
		}
	}

	t.Run("again twice in a row gives the same repetition and interval", func(t *testing.T) {
		for _, state := range sampleStates() {
			first, err := Next(state, QualityAgain, today)
			require.NoError(t, err)
			second, err := Next(first, QualityAgain, today)
			require.NoError(t, err)

			assert.Equal(t, first.Repetition, second.Repetition)
			assert.Equal(t, first.Interval, second.Interval)
			assert.Equal(t, first.DueDate, second.DueDate)
		}
	})

	t.Run("identical inputs give identical outputs", func(t *testing.T) {
		state := State{Repetition: 4, Interval: 21, EFactor: 2.2}
		first, err := Next(state, QualityEasy, today)
		require.NoError(t, err)
		second, err := Next(state, QualityEasy, today)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
