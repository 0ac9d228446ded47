// Package migration applies versioned SQL files to QuestDB.
package migration

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/logger"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/questdb"
)

// Migration is one versioned schema change.
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Runner applies migrations found in a file system.
type Runner struct {
	client questdb.Client
	logger logger.Interface
	fsys   fs.FS
	dir    string
}

// NewRunner creates a runner reading *.up.sql and *.down.sql files from dir in fsys.
func NewRunner(client questdb.Client, log logger.Interface, fsys fs.FS, dir string) *Runner {
	if dir == "" {
		dir = "."
	}
	return &Runner{client: client, logger: log, fsys: fsys, dir: dir}
}

// EnsureMigrationTable creates the schema_migrations table if it doesn't exist.
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	createTableSQL := `CREATE TABLE IF NOT EXISTS schema_migrations (
	id VARCHAR,
	name VARCHAR,
	applied_at TIMESTAMP
) TIMESTAMP(applied_at) PARTITION BY YEAR`
	if err := r.client.Exec(ctx, createTableSQL); err != nil {
		return errors.TracerFromError(err)
	}
	return nil
}

// AppliedMigrations returns the set of applied migration ids.
func (r *Runner) AppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, "SELECT id FROM schema_migrations ORDER BY applied_at")
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.TracerFromError(err)
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return applied, nil
}

// LoadMigrations loads every migration, ordered by id.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	upFiles, err := fs.Glob(r.fsys, path.Join(r.dir, "*.up.sql"))
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		m, err := r.parse(upFile)
		if err != nil {
			return nil, errors.NewTracer(fmt.Sprintf("parse migration %s", upFile)).Wrap(err)
		}
		migrations = append(migrations, m)
	}

	return migrations, nil
}

func (r *Runner) parse(upFile string) (Migration, error) {
	upContent, err := fs.ReadFile(r.fsys, upFile)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(path.Base(upFile), ".up.sql")
	downFile := strings.TrimSuffix(upFile, ".up.sql") + ".down.sql"

	// file names are YYYYMMDDHHMMSS_name
	name := id
	timestamp := time.Unix(0, 0).UTC()
	if parts := strings.SplitN(id, "_", 2); len(parts) == 2 {
		name = parts[1]
		if ts, err := time.Parse("20060102150405", parts[0]); err == nil {
			timestamp = ts
		}
	}

	var downSQL string
	if downContent, err := fs.ReadFile(r.fsys, downFile); err == nil {
		downSQL = strings.TrimSpace(string(downContent))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upContent)),
		DownSQL:   downSQL,
	}, nil
}

// MigrateUp applies up to steps pending migrations, all of them when steps <= 0.
func (r *Runner) MigrateUp(ctx context.Context, steps int) error {
	if err := r.EnsureMigrationTable(ctx); err != nil {
		return err
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toApply []Migration
	for _, m := range migrations {
		if !applied[m.ID] {
			toApply = append(toApply, m)
		}
	}

	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}

	for _, m := range toApply {
		if m.UpSQL == "" {
			r.logger.Warn("migration has no up statements", logger.NewField("migration", m.ID))
			continue
		}

		for _, stmt := range Statements(m.UpSQL) {
			if err := r.client.Exec(ctx, stmt); err != nil {
				return errors.NewTracer(fmt.Sprintf("apply migration %s", m.ID)).Wrap(err)
			}
		}

		if err := r.client.Exec(ctx, "INSERT INTO schema_migrations VALUES ($1, $2, now())", m.ID, m.Name); err != nil {
			return errors.NewTracer(fmt.Sprintf("record migration %s", m.ID)).Wrap(err)
		}

		r.logger.Info("migration applied", logger.NewField("action", "migrate up"), logger.NewField("migration", m.ID))
	}

	return nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) error {
	if steps <= 0 {
		return errors.New(errors.ConfigError, "steps must be greater than 0 for down migrations", "steps")
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return err
	}

	applied, err := r.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	for _, m := range toRevert {
		if m.DownSQL == "" {
			return errors.New(errors.ConfigError, fmt.Sprintf("no down statements for migration %s", m.ID), "migration")
		}

		for _, stmt := range Statements(m.DownSQL) {
			if err := r.client.Exec(ctx, stmt); err != nil {
				return errors.NewTracer(fmt.Sprintf("revert migration %s", m.ID)).Wrap(err)
			}
		}

		if err := r.client.Exec(ctx, "DELETE FROM schema_migrations WHERE id = $1", m.ID); err != nil {
			return errors.NewTracer(fmt.Sprintf("remove migration record %s", m.ID)).Wrap(err)
		}

		r.logger.Info("migration reverted", logger.NewField("action", "migrate down"), logger.NewField("migration", m.ID))
	}

	return nil
}

// Statements splits a migration body into individual statements, dropping
// comment-only lines.
func Statements(sql string) []string {
	var (
		out     []string
		current strings.Builder
	)
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";"); stmt != "" {
				out = append(out, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		out = append(out, stmt)
	}
	return out
}
