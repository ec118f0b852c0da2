package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/yigit/unirecords/internal/config"
	"github.com/yigit/unirecords/internal/pkg/logger"
)

// Dialect identifies the SQL flavour of the connected store.
type Dialect string

const (
	Postgres Dialect = config.DriverPostgres
	SQLite   Dialect = config.DriverSQLite
)

// Placeholder returns the bind parameter style of the dialect.
func (d Dialect) Placeholder() squirrel.PlaceholderFormat {
	if d == Postgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Database is a connection pool together with its dialect.
type Database struct {
	DB      *sql.DB
	Dialect Dialect
}

// Open creates the connection pool for the configured driver and verifies it
// with a ping.
func Open(cfg *config.Config) (*Database, error) {
	var (
		pool    *sql.DB
		dialect = Dialect(cfg.Database.Driver)
		err     error
	)

	switch dialect {
	case Postgres:
		connConfig, parseErr := pgx.ParseConfig(cfg.GetPostgresConnectionString())
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse postgres connection string: %w", parseErr)
		}
		pool = stdlib.OpenDB(*connConfig)
	case SQLite:
		pool, err = sql.Open("sqlite", cfg.GetSQLiteDSN())
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	pool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime())

	database := &Database{DB: pool, Dialect: dialect}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	return database, nil
}

// Builder returns a squirrel statement builder using the dialect's
// placeholders.
func (d *Database) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Dialect.Placeholder())
}

// Ping checks that the store is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// Close closes the pool.
func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs fn within a transaction, committing on success and
// rolling back on error or panic.
func (d *Database) WithTransaction(ctx context.Context, fn TransactionFn) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
