// Package storage persists BudgetState snapshots in SQLite. The state
// blob is opaque to this layer: it is serialized once by the caller's
// contract (JSON) and stored verbatim, revision by revision, with no
// schema knowledge of its contents.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pockets/internal/core"

	_ "modernc.org/sqlite"
)

// SnapshotInfo describes one stored snapshot without its payload.
type SnapshotInfo struct {
	Profile   string
	Revision  int64
	CreatedAt time.Time
}

// SQLiteRepository stores budget state snapshots per profile.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save stores a new snapshot of the state for a profile and returns its
// revision. Revisions increase monotonically per profile; the insert
// and the revision read happen in one transaction.
func (r *SQLiteRepository) Save(ctx context.Context, profile string, state *core.BudgetState) (int64, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("marshal state: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var revision int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(revision), 0) + 1 FROM snapshots WHERE profile = ?`,
		profile,
	).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("next revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (profile, revision, state) VALUES (?, ?, ?)`,
		profile, revision, string(blob),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot saved",
		"profile", profile,
		"revision", revision,
		"bytes", len(blob))

	return revision, nil
}

// Load returns the latest snapshot for a profile, or (nil, 0, nil) when
// the profile has never been saved.
func (r *SQLiteRepository) Load(ctx context.Context, profile string) (*core.BudgetState, int64, error) {
	return r.loadWhere(ctx, profile,
		`SELECT revision, state FROM snapshots WHERE profile = ? ORDER BY revision DESC LIMIT 1`,
		profile)
}

// LoadRevision returns one specific snapshot for a profile.
func (r *SQLiteRepository) LoadRevision(ctx context.Context, profile string, revision int64) (*core.BudgetState, int64, error) {
	return r.loadWhere(ctx, profile,
		`SELECT revision, state FROM snapshots WHERE profile = ? AND revision = ?`,
		profile, revision)
}

func (r *SQLiteRepository) loadWhere(ctx context.Context, profile, query string, args ...any) (*core.BudgetState, int64, error) {
	var (
		revision int64
		blob     string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&revision, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot for profile %s: %w", profile, err)
	}

	var state core.BudgetState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return nil, 0, fmt.Errorf("unmarshal snapshot state: %w", err)
	}
	state.Normalize()
	return &state, revision, nil
}

// History lists the most recent snapshots for a profile, newest first.
func (r *SQLiteRepository) History(ctx context.Context, profile string, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT profile, revision, created_at FROM snapshots
		 WHERE profile = ? ORDER BY revision DESC LIMIT ?`,
		profile, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Profile, &info.Revision, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot info: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Profiles lists every profile with at least one snapshot.
func (r *SQLiteRepository) Profiles(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT profile FROM snapshots ORDER BY profile`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots for a profile and
// returns how many rows were removed.
func (r *SQLiteRepository) Prune(ctx context.Context, profile string, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE profile = ? AND revision NOT IN (
		     SELECT revision FROM snapshots WHERE profile = ?
		     ORDER BY revision DESC LIMIT ?
		 )`,
		profile, profile, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned rows: %w", err)
	}
	if removed > 0 {
		slog.InfoContext(ctx, "Old snapshots pruned",
			"profile", profile,
			"removed", removed,
			"kept", keep)
	}
	return removed, nil
}
