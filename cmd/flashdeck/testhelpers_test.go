package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/store"
	"github.com/at-ishikawa/flashdeck/internal/testutil"
)

// execute runs the root command with a config file and returns what it printed.
func execute(t *testing.T, cfgPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	oldConfigFile, oldEnvFile := configFile, envFile
	t.Cleanup(func() {
		configFile = oldConfigFile
		envFile = oldEnvFile
	})

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--config", cfgPath, "--env-file", ""}, args...))
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// setupWorkspace writes a config file in a temporary directory and returns
// its path along with a store over the same database.
func setupWorkspace(t *testing.T) (string, string, *store.DBStore) {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := testutil.SetupTestConfig(t, tmpDir)
	db := testutil.OpenTestDBAt(t, filepath.Join(tmpDir, "flashdeck.db"))
	return tmpDir, cfgPath, store.NewDBStore(db)
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
