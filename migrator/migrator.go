package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/sqlmigrator"
	migrate "github.com/rubenv/sql-migrate"
)

// Migration constants
const (
	migrationsTableName = "schema_migrations"
	schemaHashPrefix    = "schema_only_"
)

// SQL queries
const (
	initCheckpointSQL = `
		INSERT INTO journal_checkpoint (single_row, last_sequence)
		VALUES (TRUE, $1)
		ON CONFLICT (single_row) DO NOTHING`

	setCheckpointSQL = `
		INSERT INTO journal_checkpoint (single_row, last_sequence)
		VALUES (TRUE, $1)
		ON CONFLICT (single_row) DO UPDATE SET last_sequence = EXCLUDED.last_sequence`
)

// Migration-related errors
var (
	ErrMigrationExecution  = errors.New("migration execution failed")
	ErrCheckpointOperation = errors.New("checkpoint operation failed")
)

// SchemaMigrator applies database schema migrations
// Used for production and tests that need schema-only setup
type SchemaMigrator struct {
	migrationsDir string
}

// NewSchemaMigrator creates a migrator that applies schema migrations only
func NewSchemaMigrator(migrationsDir string) *SchemaMigrator {
	return &SchemaMigrator{
		migrationsDir: migrationsDir,
	}
}

func (m *SchemaMigrator) Hash() (string, error) {
	source := &migrate.FileMigrationSource{Dir: m.migrationsDir}
	migrationSet := &migrate.MigrationSet{TableName: migrationsTableName}
	sqlMigrator := sqlmigrator.New(source, migrationSet)

	baseHash, err := sqlMigrator.Hash()
	if err != nil {
		return "", fmt.Errorf("failed to calculate migration hash for %s: %w", m.migrationsDir, err)
	}

	return schemaHashPrefix + baseHash, nil
}

func (m *SchemaMigrator) Migrate(ctx context.Context, db *sql.DB, conf pgtestdb.Config) error {
	return applyMigrations(db, m.migrationsDir)
}

// ApplyMigrations applies database migrations using sql-migrate with the provided pgx pool
func ApplyMigrations(pool *pgxpool.Pool, migrationsDir string) error {
	// Create sql.DB from the pgx pool for sql-migrate
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	return applyMigrations(db, migrationsDir)
}

// InitializeCheckpoint initializes the journal checkpoint if not already set
func InitializeCheckpoint(ctx context.Context, pool *pgxpool.Pool, initialCheckpoint uint64) error {
	_, err := pool.Exec(ctx, initCheckpointSQL, int64(initialCheckpoint))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointOperation, err)
	}
	return nil
}

// SetCheckpoint sets the journal checkpoint, overwriting any existing value
func SetCheckpoint(ctx context.Context, pool *pgxpool.Pool, checkpoint uint64) error {
	_, err := pool.Exec(ctx, setCheckpointSQL, int64(checkpoint))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointOperation, err)
	}
	return nil
}

// applyMigrations applies database migrations using sql-migrate
func applyMigrations(db *sql.DB, migrationsDir string) error {
	source := &migrate.FileMigrationSource{Dir: migrationsDir}
	migrationSet := &migrate.MigrationSet{TableName: migrationsTableName}

	_, err := migrationSet.Exec(db, "postgres", source, migrate.Up)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMigrationExecution, err)
	}
	return nil
}
