/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "goboard/internal/log"
	"goboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// BoardDirName holds the board database under the board directory.
	BoardDirName = ".goboard"
	DBFileName   = "board.sqlite"

	// schemaVersion tracks the local SQLite schema.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// DBPath returns the full path to the board database file.
func DBPath(boardDir string) string {
	return filepath.Join(boardDir, BoardDirName, DBFileName)
}

// SQLiteStore is the embedded Store.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  *slog.Logger
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite ensures the database exists at .goboard/board.sqlite under boardDir,
// enables WAL mode, creates the schema and runs migrations.
func OpenSQLite(ctx context.Context, boardDir string) (*SQLiteStore, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("board", boardDir),
	)
	if strings.TrimSpace(boardDir) == "" {
		return nil, errors.New("board directory is required")
	}
	if err := os.MkdirAll(filepath.Join(boardDir, BoardDirName), 0o755); err != nil {
		l.Error("create .goboard dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .goboard dir: %w", err)
	}
	path := DBPath(boardDir)
	// Use a URI with a busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer is all an embedded board needs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("board store ready", slog.String("path", path))
	return &SQLiteStore{db: db, path: path, log: applog.WithComponent("storage"), now: time.Now}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// DB exposes the handle for diagnostics and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func ensureVersion(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`); err != nil {
		return fmt.Errorf("create version table: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Fresh database: the schema below is created at the current version.
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// ensureSchema creates the current tables if they do not exist. On an older
// database the tables already exist and runMigrations brings them up to date.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			id         TEXT    PRIMARY KEY,
			type       TEXT    NOT NULL,
			content    TEXT    NOT NULL DEFAULT '',
			x          REAL    NOT NULL DEFAULT 0,
			y          REAL    NOT NULL DEFAULT 0,
			w          REAL,
			h          REAL,
			natural_w  REAL,
			natural_h  REAL,
			font_size  INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_created ON cards(created_at);`,
		`CREATE TABLE IF NOT EXISTS viewports (
			id          TEXT PRIMARY KEY,
			scale       REAL NOT NULL,
			translate_x REAL NOT NULL,
			translate_y REAL NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v1 boards predate image natural sizes and font sizes.
			stmts = []string{
				`ALTER TABLE cards ADD COLUMN natural_w REAL;`,
				`ALTER TABLE cards ADD COLUMN natural_h REAL;`,
				`ALTER TABLE cards ADD COLUMN font_size INTEGER NOT NULL DEFAULT 0;`,
				`UPDATE cards SET font_size = 14 WHERE type = 'text';`,
			}
		}
		if err := applyMigration(ctx, db, next, stmts); err != nil {
			return err
		}
		cur = next
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, next int, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", next, err)
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d stmt failed: %w", next, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d update version: %w", next, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d commit: %w", next, err)
	}
	return nil
}
