package taskearn

import "embed"

// MigrationsFS holds the SQL migrations applied on start-up and by cmd/migrate.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
