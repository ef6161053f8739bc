package store

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/flashdeck/schemas"
)

const migrationsTable = "schema_migrations"

// Migrate applies every embedded migration that has not been recorded yet.
func Migrate(ctx context.Context, db *sqlx.DB) ([]string, error) {
	return migrate(ctx, db, schemas.Migrations)
}

func migrate(ctx context.Context, db *sqlx.DB, migrations fs.FS) ([]string, error) {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS "+migrationsTable+" (version VARCHAR(255) NOT NULL PRIMARY KEY, applied_at TIMESTAMP NOT NULL)"); err != nil {
		return nil, fmt.Errorf("create %s: %w", migrationsTable, err)
	}

	var done []string
	if err := db.SelectContext(ctx, &done, "SELECT version FROM "+migrationsTable); err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(done))
	for _, v := range done {
		applied[v] = true
	}

	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	var ran []string
	for _, file := range files {
		version := strings.TrimSuffix(file[strings.LastIndex(file, "/")+1:], ".sql")
		if applied[version] {
			continue
		}
		content, err := fs.ReadFile(migrations, file)
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", file, err)
		}
		// DDL is not transactional on MySQL, so statements run one by one.
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return ran, fmt.Errorf("apply migration %s: %w", version, err)
			}
		}
		if _, err := db.ExecContext(ctx, db.Rebind("INSERT INTO "+migrationsTable+" (version, applied_at) VALUES (?, ?)"), version, time.Now().UTC()); err != nil {
			return ran, fmt.Errorf("record migration %s: %w", version, err)
		}
		slog.Default().Info("applied migration", "version", version)
		ran = append(ran, version)
	}
	return ran, nil
}

func splitStatements(content string) []string {
	var (
		stmts []string
		buf   strings.Builder
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmts = append(stmts, strings.TrimSuffix(strings.TrimSpace(buf.String()), ";"))
			buf.Reset()
		}
	}
	if rest := strings.TrimSpace(buf.String()); rest != "" {
		stmts = append(stmts, rest)
	}
	return stmts
}
