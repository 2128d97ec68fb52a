package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"toolbar-cli/internal/model"
	"toolbar-cli/internal/reorder"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "toolbar.sqlite"

// Path is the SQLite database file.
func (s Store) Path() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.Path())
	if err != nil {
		return nil, err
	}
	// The TUI and CLI may run side by side: WAL gives one writer + many readers and
	// busy_timeout avoids "database is locked" on short overlaps.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS buttons (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			sort_key INTEGER NOT NULL,
			enabled INTEGER NOT NULL,
			pinned INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_buttons_sort ON buttons(sort_key);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite reads the toolbar state. An empty database is seeded with the default toolbar.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM buttons`).Scan(&n); err != nil {
		return nil, err
	}
	if n == 0 {
		seeded, err := DefaultDB(time.Now().UTC())
		if err != nil {
			return nil, err
		}
		if err := saveState(ctx, db, seeded); err != nil {
			return nil, err
		}
		return seeded, nil
	}
	return loadStateFromSQLite(ctx, db)
}

// SaveSQLite replaces the stored toolbar with st.
func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return saveState(ctx, db, st)
}

func saveState(ctx context.Context, db *sql.DB, st *DB) error {
	st.normalize()
	for _, b := range st.Buttons {
		if err := ValidateButton(b); err != nil {
			return err
		}
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, "version", strconv.Itoa(st.Version)); err != nil {
		return err
	}

	// Replace-all: a toolbar is a few dozen rows at most.
	if _, err := tx.ExecContext(ctx, `DELETE FROM buttons`); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	for _, b := range st.Buttons {
		raw, err := json.Marshal(b)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO buttons(id, name, kind, sort_key, enabled, pinned, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, string(b.Kind), b.SortKey, boolToInt(b.Enabled), boolToInt(b.Pinned), string(raw), nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveOrder writes only the sort keys of order, in one transaction. Every id must exist.
func (s Store) SaveOrder(ctx context.Context, order []reorder.Item) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	nowMs := time.Now().UTC().UnixMilli()
	for _, it := range order {
		var js string
		if err := tx.QueryRowContext(ctx, `SELECT json FROM buttons WHERE id = ?`, it.ID).Scan(&js); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("save order: %w", errNotFound("button", it.ID))
			}
			return err
		}
		var b model.Button
		if err := json.Unmarshal([]byte(js), &b); err != nil {
			return err
		}
		b.SortKey = it.SortKey
		raw, err := json.Marshal(b)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE buttons SET sort_key = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
			it.SortKey, string(raw), nowMs, it.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: 1}

	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "version").Scan(&v)
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		out.Version = n
	}

	xs, err := readJSONRows[model.Button](ctx, db, `SELECT json FROM buttons ORDER BY sort_key, id`)
	if err != nil {
		return nil, err
	}
	out.Buttons = xs
	if out.Buttons == nil {
		out.Buttons = []model.Button{}
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
