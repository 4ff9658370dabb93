package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NNNN_name.up.sql / NNNN_name.down.sql
var fileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

type Migration struct {
	Version  int
	Name     string
	upFile   string
	downFile string
}

type Runner struct {
	db     *sql.DB
	files  fs.FS
	logger *zap.Logger
}

func NewRunner(db *sql.DB, logger ...*zap.Logger) *Runner {
	l := zap.L().Named("migration")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("migration")
	}
	return &Runner{db: db, files: migrationsFS, logger: l}
}

// Load lists the embedded migrations in version order.
func Load(files fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(files, "migrations")
	if err != nil {
		return nil, err
	}

	byVersion := map[int]Migration{}
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		var v int
		if _, err := fmt.Sscanf(m[1], "%04d", &v); err != nil {
			continue
		}
		item := byVersion[v]
		item.Version = v
		item.Name = m[2]
		path := "migrations/" + de.Name()
		if m[3] == "up" {
			item.upFile = path
		} else {
			item.downFile = path
		}
		byVersion[v] = item
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.upFile == "" {
			return nil, fmt.Errorf("missing up migration for version %04d", m.Version)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`)
	return err
}

func (r *Runner) applied(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	got := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		got[v] = true
	}
	return got, rows.Err()
}

// Up applies every pending migration, each in its own transaction, and
// returns the versions it applied. Running it twice is a no-op.
func (r *Runner) Up(ctx context.Context) ([]int, error) {
	migs, err := Load(r.files)
	if err != nil {
		return nil, err
	}
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	done, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	var applied []int
	for _, m := range migs {
		if done[m.Version] {
			continue
		}
		text, err := fs.ReadFile(r.files, m.upFile)
		if err != nil {
			return applied, err
		}
		if err := r.exec(ctx, string(text), `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version); err != nil {
			return applied, fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
		}
		r.logger.Info("migration applied", zap.Int("version", m.Version), zap.String("name", m.Name))
		applied = append(applied, m.Version)
	}
	return applied, nil
}

// Down reverts the most recently applied migration. It returns 0 when there
// is nothing to revert.
func (r *Runner) Down(ctx context.Context) (int, error) {
	if err := r.ensureTable(ctx); err != nil {
		return 0, err
	}

	var version int
	err := r.db.QueryRowContext(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	migs, err := Load(r.files)
	if err != nil {
		return 0, err
	}
	var target *Migration
	for i := range migs {
		if migs[i].Version == version {
			target = &migs[i]
		}
	}
	if target == nil || target.downFile == "" {
		return 0, fmt.Errorf("no down migration for version %04d", version)
	}

	text, err := fs.ReadFile(r.files, target.downFile)
	if err != nil {
		return 0, err
	}
	if err := r.exec(ctx, string(text), `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
		return 0, fmt.Errorf("rollback %04d_%s failed: %w", version, target.Name, err)
	}
	r.logger.Info("migration reverted", zap.Int("version", version), zap.String("name", target.Name))
	return version, nil
}

func (r *Runner) exec(ctx context.Context, script, bookkeeping string, version int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, bookkeeping, version); err != nil {
		return err
	}
	return tx.Commit()
}
