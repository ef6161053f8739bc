package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/bootstrap"
	"github.com/at-ishikawa/flashdeck/internal/config"
	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/inference"
	"github.com/at-ishikawa/flashdeck/internal/inference/openrouter"
	"github.com/at-ishikawa/flashdeck/internal/reminder"
	"github.com/at-ishikawa/flashdeck/internal/server"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "flashdeck-server",
		Short:         "Flashdeck review service HTTP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}
	rootCmd.Flags().StringVar(&configFile, "config", "", "config file path")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("godotenv.Load() > %w", err)
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}

	app := bootstrap.New(bootstrap.WithLogger(logger))

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddShutdownHook("database", func(context.Context) error {
		return db.Close()
	})
	applied, err := store.Migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("store.Migrate() > %w", err)
	}
	if len(applied) > 0 {
		logger.Info("applied migrations", "migrations", applied)
	}
	dbStore := store.NewDBStore(db)

	generator, err := newGenerator(cfg.AI)
	if err != nil {
		_ = db.Close()
		return err
	}
	if generator == nil {
		logger.Warn("OPENROUTER_API_KEY is not set, AI generation is disabled")
	}

	handler, err := newHTTPHandler(cfg, dbStore, generator, logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	scheduler := reminder.New(dbStore, reminder.LogNotifier{Logger: logger}, reminder.WithLogger(logger))
	if cfg.Reminder.Enabled {
		if err := scheduler.ScheduleReminders(cfg.Reminder.Interval); err != nil {
			_ = db.Close()
			return fmt.Errorf("scheduler.ScheduleReminders() > %w", err)
		}
	}
	app.AddShutdownHook("scheduler", func(context.Context) error {
		scheduler.Stop()
		return nil
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.AddShutdownHook("http server", srv.Shutdown)

	return app.Run(ctx, func(ctx context.Context) error {
		scheduler.Start(ctx)
		logger.Info("starting server", "addr", srv.Addr, "database", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

// newGenerator returns nil when no API key is configured.
func newGenerator(cfg config.AIConfig) (inference.Client, error) {
	if cfg.APIKey == "" {
		return nil, nil
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

func newHTTPHandler(cfg *config.Config, dbStore server.Store, generator inference.Client, logger *slog.Logger) (http.Handler, error) {
	h, err := server.NewHandler(dbStore, generator, server.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("server.NewHandler() > %w", err)
	}
	return server.NewHTTPHandler(h.Routes(), cfg.Server.CORS.AllowedOrigins), nil
}
