package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/inference"
	"github.com/at-ishikawa/flashdeck/internal/inference/openrouter"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

func newGenerateCommand() *cobra.Command {
	var (
		name          string
		maxFlashcards int
		acceptAll     bool
	)
	command := &cobra.Command{
		Use:   "generate <text file>",
		Short: "Generate flashcards from a text with an LLM and save the ones you accept as a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[0], err)
			}

			return withLocalStore(cmd, func(cfg *config.Config, s *store.DBStore, owner string) error {
				generator, err := newGenerator(cfg.AI)
				if err != nil {
					return err
				}
				defer func() {
					_ = generator.Close()
				}()

				output := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(output, "Generating flashcards with %s...\n", generator.GetModel())
				response, err := generator.GenerateFlashcards(cmd.Context(), inference.GenerateFlashcardsRequest{
					Text:          string(text),
					MaxFlashcards: maxFlashcards,
				})
				if err != nil {
					return fmt.Errorf("GenerateFlashcards() > %w", err)
				}

				accepted, metrics, err := reviewProposals(bufio.NewReader(cmd.InOrStdin()), output, response.Proposals, acceptAll)
				if err != nil {
					return err
				}
				if len(accepted) == 0 {
					_, err := fmt.Fprintln(output, "No flashcards accepted, nothing saved.")
					return err
				}

				deck, err := s.SaveGeneratedDeck(cmd.Context(), owner, name, accepted, metrics)
				if err != nil {
					return fmt.Errorf("SaveGeneratedDeck() > %w", err)
				}
				_, err = fmt.Fprintf(output, "Saved %d of %d flashcards to deck %q (%s)\n", metrics.Accepted, metrics.Proposed, deck.Name, deck.ID)
				return err
			})
		},
	}
	flags := command.Flags()
	flags.StringVar(&name, "name", "", "deck name (defaults to the current date and time)")
	flags.IntVar(&maxFlashcards, "max", inference.DefaultMaxFlashcards, "maximum number of flashcards to generate")
	flags.BoolVarP(&acceptAll, "yes", "y", false, "accept every generated flashcard without asking")
	return command
}

func newGenerator(cfg config.AIConfig) (*openrouter.Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENROUTER_API_KEY environment variable is required")
	}
	var opts []openrouter.Option
	if cfg.BaseURL != "" {
		opts = append(opts, openrouter.WithBaseURL(cfg.BaseURL))
	}
	if cfg.PromptFile != "" {
		prompt, err := os.ReadFile(cfg.PromptFile)
		if err != nil {
			return nil, fmt.Errorf("os.ReadFile(%s) > %w", cfg.PromptFile, err)
		}
		opts = append(opts, openrouter.WithSystemPrompt(string(prompt)))
	}
	client, err := openrouter.NewClient(cfg.APIKey, cfg.Model, cfg.MaxRetryAttempts, opts...)
	if err != nil {
		return nil, fmt.Errorf("openrouter.NewClient() > %w", err)
	}
	return client, nil
}

// reviewProposals asks about each proposal in turn. An edited proposal is saved with
// the edited creation source. Closing the input keeps what was accepted so far.
func reviewProposals(input *bufio.Reader, output io.Writer, proposals []inference.Proposal, acceptAll bool) ([]flashcard.Input, flashcard.GenerationMetrics, error) {
	metrics := flashcard.GenerationMetrics{Proposed: len(proposals)}
	accepted := make([]flashcard.Input, 0, len(proposals))

review:
	for i, proposal := range proposals {
		card := flashcard.Input{Front: proposal.Front, Back: proposal.Back, Source: flashcard.SourceAIGenerated}
		if acceptAll {
			accepted = append(accepted, card)
			continue
		}

		_, _ = fmt.Fprintf(output, "\n[%d/%d]\nFront: %s\nBack:  %s\n", i+1, len(proposals), proposal.Front, proposal.Back)
		answer, err := ask(input, output, "[y] accept, [n] skip, [e] edit, [q] stop: ")
		if errors.Is(err, io.EOF) {
			break review
		}
		if err != nil {
			return nil, metrics, err
		}

		switch strings.ToLower(answer) {
		case "y", "yes":
			accepted = append(accepted, card)
		case "e", "edit":
			edited, err := editProposal(input, output, card)
			if errors.Is(err, io.EOF) {
				break review
			}
			if err != nil {
				return nil, metrics, err
			}
			if edited.Source == flashcard.SourceAIGeneratedEdited {
				metrics.Edited++
			}
			accepted = append(accepted, edited)
		case "q", "quit":
			break review
		}
	}
	metrics.Accepted = len(accepted)
	return accepted, metrics, nil
}

// editProposal reads a new front and back. An empty answer keeps the generated text.
func editProposal(input *bufio.Reader, output io.Writer, generated flashcard.Input) (flashcard.Input, error) {
	card := generated
	front, err := ask(input, output, "Front (enter to keep): ")
	if err != nil {
		return generated, err
	}
	back, err := ask(input, output, "Back (enter to keep): ")
	if err != nil {
		return generated, err
	}
	if front != "" && front != card.Front {
		card.Front = front
		card.Source = flashcard.SourceAIGeneratedEdited
	}
	if back != "" && back != card.Back {
		card.Back = back
		card.Source = flashcard.SourceAIGeneratedEdited
	}
	if err := store.ValidateInput(card); err != nil {
		_, _ = fmt.Fprintf(output, "%v, keeping the generated flashcard\n", err)
		return generated, nil
	}
	return card, nil
}

func ask(input *bufio.Reader, output io.Writer, prompt string) (string, error) {
	_, _ = fmt.Fprint(output, prompt)
	line, err := input.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
