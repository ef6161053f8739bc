// Package testutil provides shared test helpers for config files and database fixtures.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/flashcard"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

// OwnerID is the user the fixtures belong to.
const OwnerID = "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f"

// SetupTestConfig creates a config file pointing at a SQLite database and a
// session directory under tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	for _, d := range []string{"sessions", "exports"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`database:
  driver: sqlite
  path: %s
session:
  snapshot_directory: %s
client:
  user_id: %s
`,
		filepath.Join(tmpDir, "flashdeck.db"),
		filepath.Join(tmpDir, "sessions"),
		OwnerID,
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with a fake OpenRouter API key for tests
// that require API key validation to pass.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("ai:\n  api_key: fake-key-for-testing\n  model: openai/gpt-4o-mini\n")...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// OpenTestDB opens a migrated SQLite database in a temporary directory.
func OpenTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	return OpenTestDBAt(t, filepath.Join(t.TempDir(), "flashdeck.db"))
}

// OpenTestDBAt opens and migrates the SQLite database at path. It is closed when the test ends.
func OpenTestDBAt(t *testing.T, path string) *sqlx.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, Path: path})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = store.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

// CreateDeck creates a deck of OwnerID with one manual flashcard per front/back pair.
func CreateDeck(t *testing.T, s *store.DBStore, name string, pairs ...[2]string) flashcard.Deck {
	t.Helper()

	inputs := make([]flashcard.Input, 0, len(pairs))
	for _, pair := range pairs {
		inputs = append(inputs, flashcard.Input{Front: pair[0], Back: pair[1]})
	}
	deck, err := s.CreateDeck(context.Background(), OwnerID, name, inputs, flashcard.SourceManual)
	require.NoError(t, err)
	return deck
}
