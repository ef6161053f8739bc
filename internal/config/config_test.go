package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigLoader_Load(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(promptFile, []byte("make cards"), 0o644))

	tests := []struct {
		name              string
		configContent     string
		env               map[string]string
		wantErr           bool
		wantErrorContains []string
		assertConfig      func(t *testing.T, cfg *Config)
	}{
		{
			name:          "defaults without config file",
			configContent: "",
			assertConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "sqlite", cfg.Database.Driver)
				assert.Equal(t, filepath.Join("data", "flashdeck.db"), cfg.Database.Path)
				assert.Equal(t, filepath.Join("data", "sessions"), cfg.Session.SnapshotDirectory)
				assert.Equal(t, 7*24*time.Hour, cfg.Session.SnapshotTTL)
				assert.Equal(t, "https://openrouter.ai/api/v1", cfg.AI.BaseURL)
				assert.Equal(t, uint(3), cfg.AI.MaxRetryAttempts)
				assert.Equal(t, time.Hour, cfg.Reminder.Interval)
			},
		},
		{
			name: "custom values",
			configContent: `server:
  port: 9000
database:
  driver: postgres
  host: db.internal
  port: 5432
session:
  snapshot_directory: custom/sessions
  snapshot_ttl: 48h
ai:
  prompt_file: ` + promptFile + `
reminder:
  enabled: true
  interval: 30m
client:
  server_url: http://localhost:9000
  user_id: 6f1d8c1e-4c4b-4f3a-9d55-0d2a0a4b7b11
`,
			assertConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, "postgres", cfg.Database.Driver)
				assert.Equal(t, "db.internal", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "custom/sessions", cfg.Session.SnapshotDirectory)
				assert.Equal(t, 48*time.Hour, cfg.Session.SnapshotTTL)
				assert.Equal(t, promptFile, cfg.AI.PromptFile)
				assert.True(t, cfg.Reminder.Enabled)
				assert.Equal(t, 30*time.Minute, cfg.Reminder.Interval)
				assert.Equal(t, "http://localhost:9000", cfg.Client.ServerURL)
			},
		},
		{
			name:          "secrets come from the environment",
			configContent: "database:\n  driver: mysql\n",
			env: map[string]string{
				"DB_PASSWORD":        "secret",
				"OPENROUTER_API_KEY": "sk-test",
			},
			assertConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "secret", cfg.Database.Password)
				assert.Equal(t, "sk-test", cfg.AI.APIKey)
			},
		},
		{
			name:              "unknown driver",
			configContent:     "database:\n  driver: oracle\n",
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "driver"},
		},
		{
			name:              "sqlite requires a path",
			configContent:     "database:\n  driver: sqlite\n  path: \"\"\n",
			wantErr:           true,
			wantErrorContains: []string{"path"},
		},
		{
			name:              "missing prompt file",
			configContent:     "ai:\n  prompt_file: /does/not/exist.txt\n",
			wantErr:           true,
			wantErrorContains: []string{"ai.prompt_file must be an existing and readable file"},
		},
		{
			name:              "client user id must be a uuid",
			configContent:     "client:\n  user_id: alice\n",
			wantErr:           true,
			wantErrorContains: []string{"user_id"},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 9000
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			configFile := ""
			if tt.configContent != "" {
				configFile = filepath.Join(t.TempDir(), "config.yml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.configContent), 0o644))
			} else {
				t.Chdir(t.TempDir())
			}

			loader, err := NewConfigLoader(configFile)
			require.NoError(t, err)
			got, err := loader.Load()
			if tt.wantErr {
				require.Error(t, err)
				for _, want := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), want)
				}
				return
			}
			require.NoError(t, err)
			tt.assertConfig(t, got)
		})
	}
}

func TestNewValidator_NotBlank(t *testing.T) {
	type card struct {
		Front string `json:"front" validate:"required,notblank"`
	}
	validate, trans, err := NewValidator("json")
	require.NoError(t, err)

	tests := []struct {
		name    string
		front   string
		wantErr string
	}{
		{name: "text", front: "hola"},
		{name: "empty", front: "", wantErr: "front is a required field"},
		{name: "only spaces", front: "   ", wantErr: "front must not be blank"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(card{Front: tt.front})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantErr, TranslateErrors(err, trans))
		})
	}
}
