package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/cli"
	"github.com/at-ishikawa/flashdeck/internal/session"
)

func newStudyCommand() *cobra.Command {
	var (
		serverURL string
		restart   bool
	)
	command := &cobra.Command{
		Use:   "study <deck id>",
		Short: "Review the flashcards of a deck that are due today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			owner, err := ownerID(cfg)
			if err != nil {
				return err
			}

			reviews, closeStore, err := openReviewStore(ctx, cfg, serverURL)
			if err != nil {
				return err
			}
			defer closeStore()

			deckID := args[0]
			snapshots := session.NewFileSnapshotStore(cfg.Session.SnapshotDirectory)
			purgeStaleSnapshots(snapshots, cfg.Session.SnapshotTTL)
			if restart {
				if err := snapshots.Clear(deckID); err != nil {
					return fmt.Errorf("snapshots.Clear(%s) > %w", deckID, err)
				}
			}

			controller := session.NewController(deckID, session.Env{
				Store:     reviews,
				Snapshots: snapshots,
				OwnerID:   owner,
				Logger:    slog.Default(),
			})
			return cli.NewStudyCLI(controller, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
		},
	}
	command.Flags().StringVar(&serverURL, "server", "", "review against a flashdeck server instead of the local database")
	command.Flags().BoolVar(&restart, "restart", false, "discard the saved progress of this deck and start over")
	return command
}

// purgeStaleSnapshots drops sessions nobody resumed within ttl. A zero ttl keeps them forever.
func purgeStaleSnapshots(snapshots *session.FileSnapshotStore, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	purged, err := snapshots.Purge(ttl, time.Now())
	if err != nil {
		slog.Warn("failed to purge stale study sessions", "error", err)
		return
	}
	if purged > 0 {
		slog.Debug("purged stale study sessions", "count", purged)
	}
}
