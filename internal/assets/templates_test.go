package assets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
)

func TestParseTemplateWithFallback(t *testing.T) {
	tests := []struct {
		name             string
		templatePath     func(t *testing.T) string
		wantTemplateName string
	}{
		{
			name: "uses filesystem template when available",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "custom.md.go.tmpl")
				require.NoError(t, os.WriteFile(templatePath, []byte(`Custom: {{ .Deck.Name }}`), 0644))
				return templatePath
			},
			wantTemplateName: "custom.md.go.tmpl",
		},
		{
			name: "uses embedded template when file doesn't exist",
			templatePath: func(t *testing.T) string {
				return "/non/existent/invalid.md.go.tmpl"
			},
			wantTemplateName: deckTemplateName,
		},
		{
			name: "uses embedded template when path is empty",
			templatePath: func(t *testing.T) string {
				return ""
			},
			wantTemplateName: deckTemplateName,
		},
		{
			name: "uses embedded template when file has a syntax error",
			templatePath: func(t *testing.T) string {
				templatePath := filepath.Join(t.TempDir(), "broken.md.go.tmpl")
				require.NoError(t, os.WriteFile(templatePath, []byte(`{{ .Deck.Name `), 0644))
				return templatePath
			},
			wantTemplateName: deckTemplateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := parseTemplateWithFallback(tt.templatePath(t), deckTemplateName, fallbackDeckTemplate)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTemplateName, tmpl.Name())
		})
	}
}

func TestWriteDeck(t *testing.T) {
	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	deck := flashcard.Deck{ID: "deck-1", Name: "Spanish basics", CreatedAt: created}
	cards := []flashcard.ScheduledFlashcard{
		{
			Flashcard: flashcard.Flashcard{ID: "c1", Front: "hola", Back: "hello", CreationSource: flashcard.SourceManual},
			State:     srs.State{Repetition: 2, Interval: 6, EFactor: 2.6, DueDate: time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC)},
		},
		{
			Flashcard: flashcard.Flashcard{ID: "c2", Front: "adiós", Back: "goodbye", CreationSource: flashcard.SourceAIGenerated},
			State:     srs.NewState(created),
		},
	}
	data := NewDeckTemplate(deck, cards, time.Date(2025, 10, 19, 15, 30, 0, 0, time.UTC))

	t.Run("embedded template", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDeck(&buf, "", data))

		got := buf.String()
		for _, want := range []string{
			"# Spanish basics",
			"Exported on 2025-10-19 · 2 flashcards",
			"## 1. hola",
			"hello",
			"_Next review 2025-10-25 · interval 6 days · ease 2.60_",
			"## 2. adiós",
			"_New card_",
			"Source: ai_generated",
		} {
			assert.Contains(t, got, want)
		}
	})

	t.Run("custom template", func(t *testing.T) {
		templatePath := filepath.Join(t.TempDir(), "cards.md.go.tmpl")
		content := `{{ range .Cards }}{{ .Front }}={{ .Back }};{{ end }}`
		require.NoError(t, os.WriteFile(templatePath, []byte(content), 0644))

		var buf bytes.Buffer
		require.NoError(t, WriteDeck(&buf, templatePath, data))
		assert.Equal(t, "hola=hello;adiós=goodbye;", buf.String())
	})

	t.Run("template execution error", func(t *testing.T) {
		templatePath := filepath.Join(t.TempDir(), "bad.md.go.tmpl")
		require.NoError(t, os.WriteFile(templatePath, []byte(`{{ .Missing }}`), 0644))

		var buf bytes.Buffer
		err := WriteDeck(&buf, templatePath, data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tmpl.Execute()")
	})
}
