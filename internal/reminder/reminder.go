// Package reminder periodically tells users how many flashcards are waiting for them.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
)

//go:generate mockgen -source=reminder.go -destination=../mocks/reminder/mock_reminder.go -package=mock_reminder

type Store interface {
	DueCounts(ctx context.Context, asOf time.Time) ([]flashcard.DueCount, error)
}

// Notifier delivers one digest per user. counts only holds decks with due cards.
type Notifier interface {
	Notify(ctx context.Context, userID string, counts []flashcard.DueCount) error
}

// Scheduler runs the reminder digest and other periodic maintenance jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Store
	notifier  Notifier
	now       func() time.Time
	logger    *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func New(store Store, notifier Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		notifier:  notifier,
		now:       time.Now,
		logger:    slog.Default(),
	}
	s.scheduler.SingletonModeAll()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleReminders sends the due-card digest every interval.
func (s *Scheduler) ScheduleReminders(interval time.Duration) error {
	return s.Schedule("reminders", interval, func(ctx context.Context) error {
		notified, err := s.RunOnce(ctx)
		if err != nil {
			return err
		}
		s.logger.Info("sent due flashcard reminders", "users", notified)
		return nil
	})
}

// Schedule registers a named job. Jobs run once right after Start and then every interval.
func (s *Scheduler) Schedule(name string, interval time.Duration, task func(ctx context.Context) error) error {
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}
	_, err := s.scheduler.Every(interval).Tag(name).Do(func() {
		if err := task(s.jobContext()); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("gocron.Do(%s) > %w", name, err)
	}
	return nil
}

// Start runs the scheduled jobs in the background until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.scheduler.Stop()
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// RunOnce sends one digest to every user with due cards and returns how many users were notified.
// A failed notification is logged and does not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	counts, err := s.store.DueCounts(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("store.DueCounts() > %w", err)
	}

	byUser := make(map[string][]flashcard.DueCount)
	for _, count := range counts {
		if count.Due <= 0 {
			continue
		}
		byUser[count.UserID] = append(byUser[count.UserID], count)
	}
	userIDs := make([]string, 0, len(byUser))
	for userID := range byUser {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	notified := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return notified, err
		}
		if err := s.notifier.Notify(ctx, userID, byUser[userID]); err != nil {
			s.logger.Warn("failed to send a reminder", "user_id", userID, "error", err)
			continue
		}
		notified++
	}
	return notified, nil
}

// LogNotifier writes digests to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, userID string, counts []flashcard.DueCount) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	total := 0
	decks := make([]string, 0, len(counts))
	for _, count := range counts {
		total += count.Due
		decks = append(decks, fmt.Sprintf("%s (%d)", count.DeckName, count.Due))
	}
	logger.Info("flashcards are due", "user_id", userID, "total", total, "decks", decks)
	return nil
}
