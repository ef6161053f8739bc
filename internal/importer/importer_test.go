package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/at-ishikawa/flashdeck/internal/flashcard"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	path := filepath.Join(t.TempDir(), "deck.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadFile_XLSX(t *testing.T) {
	tests := []struct {
		name        string
		sheet       string
		rows        [][]any
		cfg         Config
		wantInputs  []flashcard.Input
		wantSkipped []RowError
		wantErr     bool
	}{
		{
			name:  "reads the named sheet below the header",
			sheet: "Vocabulary",
			rows: [][]any{
				{"Front", "Back"},
				{"hola", "hello"},
				{"  gracias ", "thank you"},
				{},
				{"adiós", ""},
			},
			cfg: Config{Sheet: "Vocabulary", FrontColumn: "A", BackColumn: "B", StartRow: 2},
			wantInputs: []flashcard.Input{
				{Front: "hola", Back: "hello", Source: flashcard.SourceManual},
				{Front: "gracias", Back: "thank you", Source: flashcard.SourceManual},
			},
			wantSkipped: []RowError{{Row: 5, Reason: "back must be 1 to 500 characters"}},
		},
		{
			name:  "custom columns on the first sheet without a header",
			sheet: "Sheet1",
			rows: [][]any{
				{"ignored", "hello", "hola"},
			},
			cfg: Config{FrontColumn: "C", BackColumn: "B", StartRow: 1},
			wantInputs: []flashcard.Input{
				{Front: "hola", Back: "hello", Source: flashcard.SourceManual},
			},
		},
		{
			name:  "too long front is skipped",
			sheet: "Sheet1",
			rows: [][]any{
				{"Front", "Back"},
				{strings.Repeat("x", 201), "back"},
			},
			cfg:         DefaultConfig(),
			wantSkipped: []RowError{{Row: 2, Reason: "front must be 1 to 200 characters"}},
		},
		{
			name:    "unknown sheet",
			sheet:   "Sheet1",
			rows:    [][]any{{"a", "b"}},
			cfg:     Config{Sheet: "Missing", FrontColumn: "A", BackColumn: "B"},
			wantErr: true,
		},
		{
			name:    "invalid column",
			sheet:   "Sheet1",
			rows:    [][]any{{"a", "b"}},
			cfg:     Config{FrontColumn: "1", BackColumn: "B"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorkbook(t, tt.sheet, tt.rows)

			got, err := ReadFile(path, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantInputs, got.Inputs)
			assert.Equal(t, tt.wantSkipped, got.Skipped)
		})
	}
}

func TestReadFile_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.csv")
	content := "front,back\nhola,hello\n\"buenos días\",\"good morning, sir\"\nsolo\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	got, err := ReadFile(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []flashcard.Input{
		{Front: "hola", Back: "hello", Source: flashcard.SourceManual},
		{Front: "buenos días", Back: "good morning, sir", Source: flashcard.SourceManual},
	}, got.Inputs)
	assert.Equal(t, []RowError{{Row: 4, Reason: "back must be 1 to 500 characters"}}, got.Skipped)
	assert.Equal(t, "row 4: back must be 1 to 500 characters", got.Skipped[0].String())
}

func TestReadFile_UnsupportedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := ReadFile(path, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}
