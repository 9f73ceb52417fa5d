package ledger

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var schemaFS embed.FS

// schemaStep is one embedded migration. Files are named
// NNNN_description.sql; the numeric prefix orders them and is recorded in
// ledger_schema once applied.
type schemaStep struct {
	version int
	name    string
	sql     string
}

func loadSchemaSteps() ([]schemaStep, error) {
	entries, err := schemaFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded schema: %w", err)
	}

	steps := make([]schemaStep, 0, len(entries))
	seen := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("schema file %s: want NNNN_description.sql", entry.Name())
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("schema file %s: non-numeric version prefix", entry.Name())
		}
		if prior, dup := seen[version]; dup {
			return nil, fmt.Errorf("schema version %d defined by both %s and %s", version, prior, entry.Name())
		}
		seen[version] = entry.Name()

		data, err := schemaFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema file %s: %w", entry.Name(), err)
		}
		steps = append(steps, schemaStep{version: version, name: entry.Name(), sql: string(data)})
	}

	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// applyMigrations brings the ledger schema up to the latest embedded
// version. Steps at or below the recorded version are skipped, everything
// newer runs in one transaction so a failed upgrade leaves the previous
// schema intact.
func (s *Store) applyMigrations(ctx context.Context) error {
	steps, err := loadSchemaSteps()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS ledger_schema (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`,
	); err != nil {
		return fmt.Errorf("ensure ledger_schema: %w", err)
	}

	var current int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM ledger_schema`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, step := range steps {
		if step.version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return fmt.Errorf("apply schema step %s: %w", step.name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ledger_schema (version, applied_at) VALUES (?, ?)`,
			step.version,
			time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("record schema step %s: %w", step.name, err)
		}
		current = step.version
		applied++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema upgrade: %w", err)
	}

	if applied > 0 {
		s.logger.Info("ledger schema upgraded",
			slog.Int("steps", applied),
			slog.Int("version", current))
	}
	return nil
}
