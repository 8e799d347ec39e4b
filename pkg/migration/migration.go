package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Salbajnr/blocktradepro-engine/pkg/postgresql"
)

// Migration represents a database migration
type Migration struct {
	ID    string
	Name  string
	UpSQL string
}

// Runner handles PostgreSQL migration execution
type Runner struct {
	client       postgresql.Client
	migrationDir string
	tableName    string
}

// Config for migration runner
type Config struct {
	MigrationDir string
	TableName    string // Migration table name (default: "schema_migrations")
}

// NewRunner creates a new migration runner for PostgreSQL
func NewRunner(client postgresql.Client, config Config) *Runner {
	if config.TableName == "" {
		config.TableName = "schema_migrations"
	}

	return &Runner{
		client:       client,
		migrationDir: config.MigrationDir,
		tableName:    config.TableName,
	}
}

// EnsureMigrationTable creates the migration table if it doesn't exist
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
	`, r.tableName)

	_, err := r.client.Exec(ctx, createTableSQL)
	return err
}

// GetAppliedMigrations returns a map of applied migration IDs
func (r *Runner) GetAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	query := fmt.Sprintf("SELECT id FROM %s ORDER BY applied_at", r.tableName)
	rows, err := r.client.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// LoadMigrations reads *.up.sql files from the migration directory, sorted by
// filename. The migration id is the filename prefix before the first underscore.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	entries, err := os.ReadDir(r.migrationDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration dir %s: %w", r.migrationDir, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(r.migrationDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".up.sql")
		id, _, found := strings.Cut(name, "_")
		if !found {
			id = name
		}

		migrations = append(migrations, Migration{
			ID:    id,
			Name:  name,
			UpSQL: string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	return migrations, nil
}

// Up applies all pending migrations in order, each in its own transaction.
func (r *Runner) Up(ctx context.Context) error {
	if err := r.EnsureMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to ensure migration table: %w", err)
	}

	applied, err := r.GetAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list applied migrations: %w", err)
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.ID] {
			continue
		}

		migration := m
		err := postgresql.WithTx(ctx, r.client, func(ctx context.Context) error {
			if _, err := r.client.Exec(ctx, migration.UpSQL); err != nil {
				return err
			}

			insertSQL := fmt.Sprintf("INSERT INTO %s (id, name) VALUES ($1, $2)", r.tableName)
			_, err := r.client.Exec(ctx, insertSQL, migration.ID, migration.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.Name, err)
		}
	}

	return nil
}
