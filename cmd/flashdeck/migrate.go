package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/flashdeck/internal/database"
	"github.com/at-ishikawa/flashdeck/internal/store"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := database.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("database.Open() > %w", err)
			}
			defer func() {
				_ = db.Close()
			}()

			applied, err := store.Migrate(cmd.Context(), db)
			if err != nil {
				return fmt.Errorf("store.Migrate() > %w", err)
			}
			output := cmd.OutOrStdout()
			if len(applied) == 0 {
				_, err := fmt.Fprintln(output, "Database is up to date")
				return err
			}
			for _, name := range applied {
				_, _ = fmt.Fprintf(output, "applied %s\n", name)
			}
			return nil
		},
	}
}
