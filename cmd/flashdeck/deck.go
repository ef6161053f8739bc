package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/flashdeck/internal/assets"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/importer"
	"github.com/at-ishikawa/flashdeck/internal/pdf"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

type ExportFormat string

const (
	ExportMarkdown ExportFormat = "markdown"
	ExportPDF      ExportFormat = "pdf"
)

// Set implements pflag.Value.
func (f *ExportFormat) Set(v string) error {
	switch v {
	case string(ExportMarkdown), "md":
		*f = ExportMarkdown
	case string(ExportPDF):
		*f = ExportPDF
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, ExportMarkdown, ExportPDF)
	}
	return nil
}

// String implements pflag.Value.
func (f *ExportFormat) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *ExportFormat) Type() string {
	return "ExportFormat"
}

var (
	_ pflag.Value = (*ExportFormat)(nil)
)

func newDeckCommand() *cobra.Command {
	deckCommand := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks and their flashcards",
	}
	deckCommand.AddCommand(
		newDeckListCommand(),
		newDeckShowCommand(),
		newDeckImportCommand(),
		newDeckRenameCommand(),
		newDeckDeleteCommand(),
		newDeckAddCommand(),
		newDeckEditCardCommand(),
		newDeckRemoveCardCommand(),
		newDeckResetCommand(),
		newDeckExportCommand(),
	)
	return deckCommand
}

// withLocalStore loads the configuration and runs fn against the local database.
func withLocalStore(cmd *cobra.Command, fn func(cfg *config.Config, s *store.DBStore, ownerID string) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	owner, err := ownerID(cfg)
	if err != nil {
		return err
	}
	s, closeStore, err := openLocalStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(cfg, s, owner)
}

func newDeckListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your decks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				decks, err := s.ListDecks(cmd.Context(), owner)
				if err != nil {
					return fmt.Errorf("ListDecks() > %w", err)
				}
				return writeDecks(cmd.OutOrStdout(), decks)
			})
		},
	}
}

func writeDecks(output io.Writer, decks []store.DeckSummary) error {
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tFLASHCARDS\tLAST REVIEWED")
	for _, d := range decks {
		lastReviewed := "-"
		if d.LastReviewedAt != nil {
			lastReviewed = srs.FormatDate(*d.LastReviewedAt)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", d.ID, d.Name, d.FlashcardCount, lastReviewed)
	}
	return w.Flush()
}

func newDeckShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <deck id>",
		Short: "List the flashcards of a deck with their schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				deck, err := s.GetDeck(cmd.Context(), owner, args[0])
				if err != nil {
					return fmt.Errorf("GetDeck() > %w", err)
				}
				cards, err := s.ListFlashcards(cmd.Context(), owner, deck.ID)
				if err != nil {
					return fmt.Errorf("ListFlashcards() > %w", err)
				}
				return writeDeckDetails(cmd.OutOrStdout(), deck, cards)
			})
		},
	}
}

func writeDeckDetails(output io.Writer, deck flashcard.Deck, cards []flashcard.ScheduledFlashcard) error {
	if _, err := fmt.Fprintf(output, "%s (%s)\n", deck.Name, deck.ID); err != nil {
		return err
	}
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tFRONT\tBACK\tDUE")
	for _, c := range cards {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Front, c.Back, srs.FormatDate(c.DueDate))
	}
	return w.Flush()
}

func newDeckRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <deck id> <name>",
		Short: "Rename a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				deck, err := s.RenameDeck(cmd.Context(), owner, args[0], args[1])
				if err != nil {
					return fmt.Errorf("RenameDeck() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Renamed deck %s to %q\n", deck.ID, deck.Name)
				return err
			})
		},
	}
}

func newDeckDeleteCommand() *cobra.Command {
	var yes bool
	command := &cobra.Command{
		Use:   "delete <deck id>",
		Short: "Delete a deck with all its flashcards and review progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				ctx := cmd.Context()
				deck, err := s.GetDeck(ctx, owner, args[0])
				if err != nil {
					return fmt.Errorf("GetDeck() > %w", err)
				}
				output := cmd.OutOrStdout()
				if !yes {
					_, _ = fmt.Fprintf(output, "Delete deck %q and all of its flashcards? [y/N] ", deck.Name)
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
						_, err := fmt.Fprintln(output, "Cancelled")
						return err
					}
				}
				if err := s.DeleteDeck(ctx, owner, deck.ID); err != nil {
					return fmt.Errorf("DeleteDeck() > %w", err)
				}
				_, err = fmt.Fprintf(output, "Deleted deck %q\n", deck.Name)
				return err
			})
		},
	}
	command.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return command
}

func newDeckImportCommand() *cobra.Command {
	var (
		name      string
		importCfg = importer.DefaultConfig()
	)
	command := &cobra.Command{
		Use:   "import <xlsx or csv file>",
		Short: "Create a deck from a spreadsheet with one flashcard per row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			result, err := importer.ReadFile(path, importCfg)
			if err != nil {
				return fmt.Errorf("importer.ReadFile(%s) > %w", path, err)
			}
			output := cmd.OutOrStdout()
			for _, skipped := range result.Skipped {
				_, _ = fmt.Fprintf(output, "skipped %s\n", skipped)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				deck, err := s.CreateDeck(cmd.Context(), owner, name, result.Inputs, flashcard.SourceManual)
				if err != nil {
					return fmt.Errorf("CreateDeck() > %w", err)
				}
				_, err = fmt.Fprintf(output, "Created deck %q (%s) with %d flashcards\n", deck.Name, deck.ID, len(result.Inputs))
				return err
			})
		},
	}
	flags := command.Flags()
	flags.StringVar(&name, "name", "", "deck name (defaults to the file name)")
	flags.StringVar(&importCfg.Sheet, "sheet", importCfg.Sheet, "worksheet to read (defaults to the first one)")
	flags.StringVar(&importCfg.FrontColumn, "front-column", importCfg.FrontColumn, "column holding the front of each card")
	flags.StringVar(&importCfg.BackColumn, "back-column", importCfg.BackColumn, "column holding the back of each card")
	flags.IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "first row to import, 1-based")
	return command
}

func newDeckAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <deck id> <front> <back>",
		Short: "Add a flashcard to a deck",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				card, err := s.AddFlashcard(cmd.Context(), owner, args[0], flashcard.Input{Front: args[1], Back: args[2]}, flashcard.SourceManual)
				if err != nil {
					return fmt.Errorf("AddFlashcard() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added flashcard %s\n", card.ID)
				return err
			})
		},
	}
}

func newDeckEditCardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit-card <flashcard id> <front> <back>",
		Short: "Replace both sides of a flashcard, keeping its review progress",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				card, err := s.UpdateFlashcard(cmd.Context(), owner, args[0], flashcard.Input{Front: args[1], Back: args[2]})
				if err != nil {
					return fmt.Errorf("UpdateFlashcard() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated flashcard %s\n", card.ID)
				return err
			})
		},
	}
}

func newDeckRemoveCardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-card <flashcard id>",
		Short: "Delete a flashcard and its review progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				if err := s.DeleteFlashcard(cmd.Context(), owner, args[0]); err != nil {
					return fmt.Errorf("DeleteFlashcard() > %w", err)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted flashcard %s\n", args[0])
				return err
			})
		},
	}
}

func newDeckResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <deck id>",
		Short: "Forget the review progress of every flashcard in a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(_ *config.Config, s *store.DBStore, owner string) error {
				n, err := s.ResetDeckProgress(cmd.Context(), owner, args[0], time.Now())
				if err != nil {
					return fmt.Errorf("ResetDeckProgress() > %w", err)
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Progress reset for %d flashcards\n", n)
				return err
			})
		},
	}
}

func newDeckExportCommand() *cobra.Command {
	var (
		outputDir string
		format    = ExportMarkdown
	)
	command := &cobra.Command{
		Use:   "export <deck id>",
		Short: "Write a deck and its schedule as Markdown or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLocalStore(cmd, func(cfg *config.Config, s *store.DBStore, owner string) error {
				ctx := cmd.Context()
				deck, err := s.GetDeck(ctx, owner, args[0])
				if err != nil {
					return fmt.Errorf("GetDeck() > %w", err)
				}
				cards, err := s.ListFlashcards(ctx, owner, deck.ID)
				if err != nil {
					return fmt.Errorf("ListFlashcards() > %w", err)
				}

				var markdown bytes.Buffer
				data := assets.NewDeckTemplate(deck, cards, time.Now())
				if err := assets.WriteDeck(&markdown, cfg.Templates.DeckTemplate, data); err != nil {
					return fmt.Errorf("assets.WriteDeck() > %w", err)
				}

				path, err := exportDeck(markdown.Bytes(), outputDir, exportFileName(deck.Name), format)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d flashcards to %s\n", len(cards), path)
				return err
			})
		},
	}
	flags := command.Flags()
	flags.StringVar(&outputDir, "output-dir", ".", "directory to write the export to")
	flags.Var(&format, "format", "export format. Options: markdown, pdf")
	return command
}

func exportDeck(markdown []byte, outputDir, baseName string, format ExportFormat) (string, error) {
	if format == ExportPDF {
		path, err := pdf.WritePDF(markdown, filepath.Join(outputDir, baseName+".pdf"))
		if err != nil {
			return "", fmt.Errorf("pdf.WritePDF() > %w", err)
		}
		return path, nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", outputDir, err)
	}
	path := filepath.Join(outputDir, baseName+".md")
	if err := os.WriteFile(path, markdown, 0o644); err != nil {
		return "", fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return path, nil
}

// exportFileName turns a deck name into a file name without path separators or spaces.
func exportFileName(name string) string {
	fileName := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if strings.Trim(fileName, "_") == "" {
		return "deck"
	}
	return fileName
}
