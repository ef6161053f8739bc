package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
	"github.com/at-ishikawa/flashdeck/internal/testutil"
)

func TestDeckCommands(t *testing.T) {
	ctx := context.Background()
	tmpDir, cfgPath, s := setupWorkspace(t)
	csvPath := writeFile(t, filepath.Join(tmpDir, "spanish.csv"), "front,back\nhola,hello\nadiós,goodbye\n,orphan back\n")

	out, err := execute(t, cfgPath, "", "deck", "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped row 4: front must be 1 to 200 characters")
	assert.Contains(t, out, `Created deck "spanish"`)
	assert.Contains(t, out, "with 2 flashcards")

	decks, err := s.ListDecks(ctx, testutil.OwnerID)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	deckID := decks[0].ID

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, cfgPath, "", "deck", "list")
		require.NoError(t, err)
		assert.Contains(t, out, deckID)
		assert.Contains(t, out, "spanish")
	})

	t.Run("add and remove a card", func(t *testing.T) {
		out, err := execute(t, cfgPath, "", "deck", "add", deckID, "gracias", "thank you")
		require.NoError(t, err)
		assert.Contains(t, out, "Added flashcard")

		cards, err := s.ListFlashcards(ctx, testutil.OwnerID, deckID)
		require.NoError(t, err)
		require.Len(t, cards, 3)
		var added flashcard.ScheduledFlashcard
		for _, card := range cards {
			if card.Front == "gracias" {
				added = card
			}
		}
		require.NotEmpty(t, added.ID)

		out, err = execute(t, cfgPath, "", "deck", "remove-card", added.ID)
		require.NoError(t, err)
		assert.Equal(t, "Deleted flashcard "+added.ID+"\n", out)

		_, err = execute(t, cfgPath, "", "deck", "remove-card", added.ID)
		assert.Error(t, err)
	})

	t.Run("reset", func(t *testing.T) {
		cards, err := s.ListFlashcards(ctx, testutil.OwnerID, deckID)
		require.NoError(t, err)
		_, err = s.ApplyReview(ctx, testutil.OwnerID, cards[0].ID, srs.QualityEasy)
		require.NoError(t, err)

		out, err := execute(t, cfgPath, "", "deck", "reset", deckID)
		require.NoError(t, err)
		assert.Equal(t, "Progress reset for 2 flashcards\n", out)

		cards, err = s.ListFlashcards(ctx, testutil.OwnerID, deckID)
		require.NoError(t, err)
		for _, card := range cards {
			assert.Equal(t, 0, card.Repetition)
		}
	})

	t.Run("export markdown", func(t *testing.T) {
		exportDir := filepath.Join(tmpDir, "exports")
		out, err := execute(t, cfgPath, "", "deck", "export", deckID, "--output-dir", exportDir)
		require.NoError(t, err)
		assert.Contains(t, out, "Exported 2 flashcards to")

		content, err := os.ReadFile(filepath.Join(exportDir, "spanish.md"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "# spanish")
		assert.Contains(t, string(content), "## 1. hola")
		assert.Contains(t, string(content), "_New card_")
	})

	t.Run("show, rename and edit a card", func(t *testing.T) {
		cards, err := s.ListFlashcards(ctx, testutil.OwnerID, deckID)
		require.NoError(t, err)
		require.Len(t, cards, 2)

		out, err := execute(t, cfgPath, "", "deck", "edit-card", cards[1].ID, "adiós", "bye")
		require.NoError(t, err)
		assert.Equal(t, "Updated flashcard "+cards[1].ID+"\n", out)

		out, err = execute(t, cfgPath, "", "deck", "rename", deckID, "Spanish basics")
		require.NoError(t, err)
		assert.Equal(t, "Renamed deck "+deckID+" to \"Spanish basics\"\n", out)

		out, err = execute(t, cfgPath, "", "deck", "show", deckID)
		require.NoError(t, err)
		assert.Contains(t, out, "Spanish basics ("+deckID+")")
		assert.Regexp(t, cards[1].ID+`\s+adiós\s+bye\s+\d{4}-\d{2}-\d{2}`, out)

		_, err = execute(t, cfgPath, "", "deck", "edit-card", cards[1].ID, "adiós", "")
		assert.ErrorContains(t, err, "back must be 1 to 500 characters")
	})

	t.Run("unknown deck", func(t *testing.T) {
		_, err := execute(t, cfgPath, "", "deck", "reset", "00000000-0000-4000-8000-000000000000")
		assert.ErrorContains(t, err, "deck not found")
		_, err = execute(t, cfgPath, "", "deck", "rename", "00000000-0000-4000-8000-000000000000", "x")
		assert.ErrorContains(t, err, "deck not found")
	})

	t.Run("delete asks before removing the deck", func(t *testing.T) {
		out, err := execute(t, cfgPath, "n\n", "deck", "delete", deckID)
		require.NoError(t, err)
		assert.Contains(t, out, "Cancelled")
		_, err = s.GetDeck(ctx, testutil.OwnerID, deckID)
		require.NoError(t, err)

		out, err = execute(t, cfgPath, "y\n", "deck", "delete", deckID)
		require.NoError(t, err)
		assert.Contains(t, out, `Deleted deck "Spanish basics"`)
		_, err = s.GetDeck(ctx, testutil.OwnerID, deckID)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)

		_, err = execute(t, cfgPath, "", "deck", "delete", deckID, "--yes")
		assert.ErrorContains(t, err, "deck not found")
	})
}

func TestDeckCommands_RequireUserID(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(tmpDir, "config.yml"), "database:\n  driver: sqlite\n  path: "+filepath.Join(tmpDir, "flashdeck.db")+"\n")
	t.Setenv("FLASHDECK_USER_ID", "")

	_, err := execute(t, cfgPath, "", "deck", "list")
	assert.ErrorIs(t, err, errUserIDRequired)
}

func TestExportFormat_Set(t *testing.T) {
	tests := []struct {
		value   string
		want    ExportFormat
		wantErr bool
	}{
		{value: "markdown", want: ExportMarkdown},
		{value: "md", want: ExportMarkdown},
		{value: "pdf", want: ExportPDF},
		{value: "docx", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var f ExportFormat
			err := f.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "spanish", want: "spanish"},
		{name: "Spanish verbs / week 1", want: "Spanish_verbs___week_1"},
		{name: "日本語", want: "日本語"},
		{name: "../..", want: "deck"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportFileName(tt.name))
		})
	}
}
