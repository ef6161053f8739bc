package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/flashdeck/internal/session"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

// errInputClosed is returned by the prompt when stdin reaches EOF.
var errInputClosed = errors.New("input closed")

// StudyCLI runs a study session in the terminal
type StudyCLI struct {
	controller   *session.Controller
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	faint        *color.Color
}

func NewStudyCLI(controller *session.Controller, stdin io.Reader, stdout io.Writer) *StudyCLI {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &StudyCLI{
		controller:   controller,
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		faint:        color.New(color.Faint),
	}
}

// Run starts the session and reads commands until it finishes, the user quits or stdin closes.
// An interrupted session keeps its saved progress.
func (cli *StudyCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- cli.loop(ctx)
	}()

	select {
	case <-ctx.Done():
		_, _ = fmt.Fprintln(cli.stdoutWriter, "\nReceived interrupt signal, exiting. Progress is saved.")
		return nil
	case err := <-errCh:
		return err
	}
}

func (cli *StudyCLI) loop(ctx context.Context) error {
	if cli.controller.State().Status == session.StatusLoading {
		// load errors move the controller into the error state handled below
		_ = cli.controller.Start(ctx)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		state := cli.controller.State()
		switch state.Status {
		case session.StatusEmpty:
			_, _ = color.New(color.FgGreen).Fprintln(cli.stdoutWriter, "No flashcards are due in this deck. Come back later!")
			return nil

		case session.StatusFinished:
			cli.printSummary(cli.controller.Summary())
			return nil

		case session.StatusError:
			_, _ = color.New(color.FgRed).Fprintf(cli.stdoutWriter, "Failed to load flashcards: %v\n", cli.controller.Err())
			answer, err := cli.prompt("Retry? [y/N]: ")
			if err != nil || !strings.EqualFold(answer, "y") {
				return fmt.Errorf("load due flashcards: %w", cli.controller.Err())
			}
			_ = cli.controller.Retry(ctx)

		case session.StatusReady:
			if err := cli.step(ctx, state); err != nil {
				if errors.Is(err, errInputClosed) {
					_, _ = fmt.Fprintln(cli.stdoutWriter, "\nProgress is saved. Run study again to resume.")
					return nil
				}
				return err
			}

		default:
			return fmt.Errorf("unexpected session status %q", state.Status)
		}
	}
}

// step shows the current card and handles one command.
func (cli *StudyCLI) step(ctx context.Context, state session.State) error {
	card, ok := cli.controller.CurrentFlashcard()
	if !ok {
		return fmt.Errorf("no current flashcard at index %d", state.CurrentIndex)
	}

	_, _ = cli.faint.Fprintf(cli.stdoutWriter, "Card %d/%d\n", state.CurrentIndex+1, len(state.Flashcards))
	_, _ = cli.bold.Fprintf(cli.stdoutWriter, "%s\n", card.Front)

	if !state.Revealed {
		answer, err := cli.prompt("[enter] show answer, [q] quit: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "q", "quit":
			return cli.controller.EndSession()
		case "", "r", "reveal":
			return cli.controller.RevealAnswer()
		}
		_, _ = fmt.Fprintf(cli.stdoutWriter, "Unknown command %q\n", answer)
		return nil
	}

	_, _ = fmt.Fprintf(cli.stdoutWriter, "%s\n", cli.italic.Sprint(card.Back))
	answer, err := cli.prompt("Rate [1] again, [2] good, [3] easy, [q] quit: ")
	if err != nil {
		return err
	}
	if a := strings.ToLower(answer); a == "q" || a == "quit" {
		return cli.controller.EndSession()
	}
	quality, ok := parseRating(answer)
	if !ok {
		_, _ = fmt.Fprintf(cli.stdoutWriter, "Unknown rating %q\n", answer)
		return nil
	}

	result, err := cli.controller.SubmitReview(ctx, quality)
	if err != nil {
		_, _ = fmt.Fprint(cli.stdoutWriter, "❌ ")
		_, _ = color.New(color.FgRed).Fprintf(cli.stdoutWriter, "Failed to save the review: %v. Please rate the card again.\n", err)
		return nil
	}
	_, _ = fmt.Fprint(cli.stdoutWriter, "✅ ")
	_, _ = cli.faint.Fprintf(cli.stdoutWriter, "Next review on %s (in %d days)\n\n", result.NextDueDate, result.NewInterval)
	return nil
}

func (cli *StudyCLI) prompt(message string) (string, error) {
	_, _ = fmt.Fprint(cli.stdoutWriter, message)
	line, err := cli.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return "", errInputClosed
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("error reading input: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

func (cli *StudyCLI) printSummary(stats session.Stats) {
	_, _ = fmt.Fprintln(cli.stdoutWriter)
	_, _ = cli.bold.Fprintln(cli.stdoutWriter, "Session complete!")
	_, _ = fmt.Fprintf(cli.stdoutWriter, "Reviewed %d of %d cards\n", stats.Reviewed(), stats.Total)
	_, _ = fmt.Fprintf(cli.stdoutWriter, "  again: %d\n  good:  %d\n  easy:  %d\n", stats.Again, stats.Good, stats.Easy)
}

func parseRating(answer string) (srs.Quality, bool) {
	switch strings.ToLower(answer) {
	case "1", "a":
		return srs.QualityAgain, true
	case "2", "g":
		return srs.QualityGood, true
	case "3", "e":
		return srs.QualityEasy, true
	}
	q, err := srs.ParseQuality(strings.ToLower(answer))
	return q, err == nil
}
