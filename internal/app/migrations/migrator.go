package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/yigit/unirecords/internal/db"
)

//go:embed sql
var embedded embed.FS

// Embedded returns the bundled migrations of a dialect, rooted at the
// directory holding its .sql files.
func Embedded(dialect db.Dialect) (fs.FS, error) {
	return fs.Sub(embedded, path.Join("sql", string(dialect)))
}

// Migrator manages database migrations
type Migrator struct {
	db     *db.Database
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(database *db.Database, lgr zerolog.Logger) *Migrator {
	return &Migrator{
		db:     database,
		logger: lgr,
	}
}

// Migrate applies the embedded migrations for the database's dialect.
func (m *Migrator) Migrate(ctx context.Context) error {
	fsys, err := Embedded(m.db.Dialect)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return m.MigrateFromFS(ctx, fsys)
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := m.db.DB.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	query, args, err := m.db.Builder().
		Select("COUNT(*)").
		From("schema_migrations").
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build migration status query: %w", err)
	}

	var count int
	if err := m.db.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return count > 0, nil
}

// recordMigration marks a migration as applied inside the migration's
// transaction.
func (m *Migrator) recordMigration(ctx context.Context, tx *sql.Tx, version string) error {
	query, args, err := m.db.Builder().
		Insert("schema_migrations").
		Columns("version").
		Values(version).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build migration record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// MigrateFromFile executes the SQL statements of one file unless its version
// (the filename prefix before the first underscore) is already recorded.
func (m *Migrator) MigrateFromFile(ctx context.Context, fsys fs.FS, filePath string) (bool, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return false, err
	}

	filename := path.Base(filePath)
	version := strings.Split(filename, "_")[0]

	applied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return false, err
	}
	if applied {
		m.logger.Debug().Str("migration", filename).Msg("Migration already applied, skipping")
		return false, nil
	}

	content, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return false, fmt.Errorf("failed to read migration file: %w", err)
	}

	err = m.db.WithTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("error occurred during SQL migration %s: %w", filename, err)
		}
		return m.recordMigration(ctx, tx, version)
	})
	if err != nil {
		return false, err
	}

	m.logger.Info().Str("migration", filename).Msg("Migration applied")
	return true, nil
}

// MigrateFromFS finds and executes all .sql files at the root of fsys in
// lexical order.
func (m *Migrator) MigrateFromFS(ctx context.Context, fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	appliedCount := 0
	for _, file := range sqlFiles {
		applied, err := m.MigrateFromFile(ctx, fsys, file)
		if err != nil {
			return err
		}
		if applied {
			appliedCount++
		}
	}

	m.logger.Info().Int("applied", appliedCount).Int("total", len(sqlFiles)).Msg("Database schema is up to date")
	return nil
}

// AppliedVersions lists the recorded migration versions in order.
func (m *Migrator) AppliedVersions(ctx context.Context) ([]string, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}

	query, args, err := m.db.Builder().
		Select("version").
		From("schema_migrations").
		OrderBy("version").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build migration list query: %w", err)
	}

	rows, err := m.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer rows.Close()

	versions := []string{}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}
