/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend stores boards in PostgreSQL through the pgx database/sql
// driver. PGStore satisfies storage.Store with the same semantics as the
// embedded SQLite store, so several clients can share one board.
package backend

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"goboard/internal/domain"
	applog "goboard/internal/log"
	"goboard/internal/storage"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PGStore is a storage.Store on PostgreSQL.
type PGStore struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

var _ storage.Store = (*PGStore)(nil)

// OpenPG connects to dsn, verifies the connection and applies pending migrations.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	l := applog.WithOperation(applog.WithComponent("backend"), "open")
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	l.Debug("postgres board store ready")
	return &PGStore{db: db, log: applog.WithComponent("backend"), now: time.Now}, nil
}

// DB exposes the handle for diagnostics and tests.
func (s *PGStore) DB() *sql.DB { return s.db }

func (s *PGStore) Close() error { return s.db.Close() }

func (s *PGStore) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+storage.CardColumns+` FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()
	var out []domain.Card
	for rows.Next() {
		c, err := storage.ScanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGStore) GetCard(ctx context.Context, id string) (domain.Card, error) {
	c, err := storage.ScanCard(s.db.QueryRowContext(ctx, `SELECT `+storage.CardColumns+` FROM cards WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, storage.NotFound(id)
	}
	if err != nil {
		return c, fmt.Errorf("get card %s: %w", id, err)
	}
	return c, nil
}

func (s *PGStore) CreateCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	c, err := storage.PrepareCard(c, s.now())
	if err != nil {
		return c, err
	}
	args := storage.CardArgs(c)
	if _, err := s.db.ExecContext(ctx, `INSERT INTO cards (`+storage.CardColumns+`) VALUES (`+placeholders(len(args))+`)`, args...); err != nil {
		return c, fmt.Errorf("insert card: %w", err)
	}
	s.log.Debug("card created", slog.String("card", c.ID), slog.String("type", string(c.Type)))
	return c, nil
}

func (s *PGStore) DeleteCard(ctx context.Context, id string) error {
	return s.execOne(ctx, id, `DELETE FROM cards WHERE id = $1`, id)
}

func (s *PGStore) UpdateCardPosition(ctx context.Context, id string, x, y float64) error {
	return s.execOne(ctx, id, `UPDATE cards SET x = $2, y = $3, updated_at = now() WHERE id = $1`, id, x, y)
}

func (s *PGStore) UpdateCardSize(ctx context.Context, id string, w, h float64) error {
	if err := storage.ValidSize(w, h); err != nil {
		return err
	}
	return s.execOne(ctx, id, `UPDATE cards SET w = $2, h = $3, updated_at = now() WHERE id = $1`, id, w, h)
}

func (s *PGStore) UpdateCardFontSize(ctx context.Context, id string, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: font size %d", domain.ErrInvalidCard, size)
	}
	return s.execOne(ctx, id, `UPDATE cards SET font_size = $2, updated_at = now() WHERE id = $1`, id, size)
}

func (s *PGStore) UpdateCardContent(ctx context.Context, id, content string) error {
	return s.execOne(ctx, id, `UPDATE cards SET content = $2, updated_at = now() WHERE id = $1`, id, content)
}

func (s *PGStore) execOne(ctx context.Context, id, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("card %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.NotFound(id)
	}
	return nil
}

func (s *PGStore) LoadViewport(ctx context.Context) (domain.Viewport, error) {
	v := domain.Viewport{ID: domain.MainViewportID}
	err := s.db.QueryRowContext(ctx, `SELECT scale, translate_x, translate_y FROM viewports WHERE id = $1`, v.ID).
		Scan(&v.Scale, &v.TranslateX, &v.TranslateY)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultViewport(), nil
	}
	if err != nil {
		return v, fmt.Errorf("load viewport: %w", err)
	}
	return v, nil
}

func (s *PGStore) SaveViewport(ctx context.Context, v domain.Viewport) error {
	if v.ID == "" {
		v.ID = domain.MainViewportID
	}
	if !(v.Scale > 0) {
		return fmt.Errorf("save viewport: invalid scale %v", v.Scale)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO viewports (id, scale, translate_x, translate_y) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET scale = EXCLUDED.scale, translate_x = EXCLUDED.translate_x, translate_y = EXCLUDED.translate_y`,
		v.ID, v.Scale, v.TranslateX, v.TranslateY)
	if err != nil {
		return fmt.Errorf("save viewport: %w", err)
	}
	return nil
}

// placeholders returns "$1, $2, ..., $n".
func placeholders(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		b.WriteString("$" + strconv.Itoa(i))
	}
	return b.String()
}

// applyMigrations applies embedded SQL migrations in filename order and records
// each one in schema_migrations.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	l := applog.WithOperation(applog.WithComponent("backend"), "migrate")
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	// dialect=PostgreSQL
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := map[int64]bool{}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("select schema_migrations: %w", err)
	}
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			_ = rows.Close()
			return err
		}
		applied[v] = true
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, fname := range files {
		version, err := parseVersion(fname)
		if err != nil {
			return err
		}
		if applied[version] {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		sqlText := string(b)
		if strings.TrimSpace(sqlText) == "" {
			continue
		}
		l.Info("applying migration", slog.String("file", fname))
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, version, fname); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", fname, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", fname, err)
		}
	}
	return nil
}

func parseVersion(name string) (int64, error) {
	base := path.Base(name)
	parts := strings.SplitN(base, "_", 2)
	if len(parts) < 2 {
		return 0, errors.New("invalid migration filename: " + name)
	}
	v, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse version from %s: %w", name, err)
	}
	return v, nil
}
