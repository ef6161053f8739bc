package assets

import (
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

const deckTemplateName = "deck.md.go.tmpl"

//go:embed templates/deck.md.go.tmpl
var fallbackDeckTemplate string

// DeckTemplate is the data a deck template is executed with
type DeckTemplate struct {
	Deck       flashcard.Deck
	ExportedAt time.Time
	Cards      []DeckCard
}

type DeckCard struct {
	Front      string
	Back       string
	Source     flashcard.CreationSource
	Reviewed   bool
	DueDate    string
	Interval   int
	Repetition int
	EFactor    float64
}

// NewDeckTemplate builds the template data of a deck and its scheduled flashcards.
func NewDeckTemplate(deck flashcard.Deck, cards []flashcard.ScheduledFlashcard, exportedAt time.Time) DeckTemplate {
	data := DeckTemplate{
		Deck:       deck,
		ExportedAt: exportedAt,
		Cards:      make([]DeckCard, 0, len(cards)),
	}
	for _, card := range cards {
		data.Cards = append(data.Cards, DeckCard{
			Front:      card.Front,
			Back:       card.Back,
			Source:     card.CreationSource,
			Reviewed:   card.Repetition > 0 || card.Interval > 0,
			DueDate:    srs.FormatDate(card.DueDate),
			Interval:   card.Interval,
			Repetition: card.Repetition,
			EFactor:    card.EFactor,
		})
	}
	return data
}

// WriteDeck renders a deck as Markdown. An empty templatePath uses the embedded template.
func WriteDeck(output io.Writer, templatePath string, data DeckTemplate) error {
	tmpl, err := parseTemplateWithFallback(templatePath, deckTemplateName, fallbackDeckTemplate)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, data); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
