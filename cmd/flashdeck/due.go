package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentDueQueries bounds the due lookups running at once.
const maxConcurrentDueQueries = 4

type deckDue struct {
	DeckID string
	Name   string
	Due    int
}

func newDueCommand() *cobra.Command {
	var serverURL string
	command := &cobra.Command{
		Use:   "due [deck id...]",
		Short: "Show how many flashcards are due today",
		Long:  "Show how many flashcards are due today in the given decks, or in every deck when none is given.",
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

			dues, err := countDue(ctx, reviews, owner, args, time.Now())
			if err != nil {
				return err
			}
			return writeDue(cmd.OutOrStdout(), dues)
		},
	}
	command.Flags().StringVar(&serverURL, "server", "", "query a flashdeck server instead of the local database")
	return command
}

// countDue counts the due flashcards of each deck concurrently. Without deckIDs it counts every deck of ownerID.
func countDue(ctx context.Context, reviews reviewStore, ownerID string, deckIDs []string, asOf time.Time) ([]deckDue, error) {
	var dues []deckDue
	if len(deckIDs) == 0 {
		decks, err := reviews.ListDecks(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("ListDecks() > %w", err)
		}
		for _, deck := range decks {
			dues = append(dues, deckDue{DeckID: deck.ID, Name: deck.Name})
		}
	} else {
		for _, id := range deckIDs {
			dues = append(dues, deckDue{DeckID: id})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDueQueries)
	for i := range dues {
		g.Go(func() error {
			due, err := reviews.CountDue(gctx, ownerID, dues[i].DeckID, asOf)
			if err != nil {
				return fmt.Errorf("CountDue(%s) > %w", dues[i].DeckID, err)
			}
			dues[i].Due = due
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dues, nil
}

func writeDue(output io.Writer, dues []deckDue) error {
	if len(dues) == 0 {
		_, err := fmt.Fprintln(output, "No decks yet. Create one with `flashdeck deck import`.")
		return err
	}
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DECK\tNAME\tDUE")
	for _, d := range dues {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", d.DeckID, d.Name, d.Due)
	}
	return w.Flush()
}
