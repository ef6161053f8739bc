// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains all SQL migration files, applied in file name order.
// Statements are separated by ";" at the end of a line and must stay portable
// across MySQL, PostgreSQL and SQLite.
//
//go:embed migrations/*.sql
var Migrations embed.FS
