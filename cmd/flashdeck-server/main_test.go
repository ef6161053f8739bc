package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/flashdeck/internal/client"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/srs"
	"github.com/at-ishikawa/flashdeck/internal/store"
	"github.com/at-ishikawa/flashdeck/internal/testutil"
)

func TestLoadConfig(t *testing.T) {
	oldConfigFile := configFile
	t.Cleanup(func() { configFile = oldConfigFile })
	configFile = testutil.SetupTestConfig(t, t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestNewGenerator(t *testing.T) {
	generator, err := newGenerator(config.AIConfig{})
	require.NoError(t, err)
	assert.Nil(t, generator)

	generator, err = newGenerator(config.AIConfig{APIKey: "key", BaseURL: "http://localhost:1"})
	require.NoError(t, err)
	assert.NotNil(t, generator)

	_, err = newGenerator(config.AIConfig{APIKey: "key", PromptFile: filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}

func TestNewHTTPHandler(t *testing.T) {
	ctx := context.Background()
	dbStore := store.NewDBStore(testutil.OpenTestDB(t))
	deck := testutil.CreateDeck(t, dbStore, "Spanish", [2]string{"hola", "hello"})

	cfg := &config.Config{Server: config.ServerConfig{CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}}}
	handler, err := newHTTPHandler(cfg, dbStore, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	defer server.Close()

	t.Run("health check", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() {
			_ = resp.Body.Close()
		}()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	})

	t.Run("review through the client", func(t *testing.T) {
		c := client.New(server.URL, testutil.OwnerID)
		defer func() {
			_ = c.Close()
		}()

		due, err := c.FindDueFlashcards(ctx, testutil.OwnerID, deck.ID, time.Now())
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, "hola", due[0].Front)

		result, err := c.ApplyReview(ctx, testutil.OwnerID, due[0].ID, srs.QualityGood)
		require.NoError(t, err)
		assert.Equal(t, 1, result.NewInterval)

		due, err = c.FindDueFlashcards(ctx, testutil.OwnerID, deck.ID, time.Now())
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("AI generation is disabled without a generator", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.URL+"/api/ai/generate", nil)
		require.NoError(t, err)
		req.Header.Set("X-User-ID", testutil.OwnerID)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() {
			_ = resp.Body.Close()
		}()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
