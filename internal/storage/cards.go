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

	"goboard/internal/domain"
)

// CardColumns is the column list ScanCard expects, shared by both SQL stores.
const CardColumns = `id, type, content, x, y, w, h, natural_w, natural_h, font_size, created_at`

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanCard reads one row selected with CardColumns.
func ScanCard(r RowScanner) (domain.Card, error) {
	var (
		c          domain.Card
		typ        string
		w, h       sql.NullFloat64
		natW, natH sql.NullFloat64
	)
	if err := r.Scan(&c.ID, &typ, &c.Content, &c.Position.X, &c.Position.Y, &w, &h, &natW, &natH, &c.FontSize, &c.CreatedAt); err != nil {
		return c, err
	}
	c.Type = domain.CardType(typ)
	if w.Valid && h.Valid {
		c.Size = &domain.Size{W: w.Float64, H: h.Float64}
	}
	if natW.Valid && natH.Valid {
		c.NaturalSize = &domain.Size{W: natW.Float64, H: natH.Float64}
	}
	return c, nil
}

// CardArgs returns c's values in CardColumns order.
func CardArgs(c domain.Card) []any {
	var w, h, natW, natH sql.NullFloat64
	if c.Size != nil {
		w = sql.NullFloat64{Float64: c.Size.W, Valid: true}
		h = sql.NullFloat64{Float64: c.Size.H, Valid: true}
	}
	if c.NaturalSize != nil {
		natW = sql.NullFloat64{Float64: c.NaturalSize.W, Valid: true}
		natH = sql.NullFloat64{Float64: c.NaturalSize.H, Valid: true}
	}
	return []any{c.ID, string(c.Type), c.Content, c.Position.X, c.Position.Y, w, h, natW, natH, c.FontSize, c.CreatedAt}
}

func (s *SQLiteStore) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+CardColumns+` FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()
	var out []domain.Card
	for rows.Next() {
		c, err := ScanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetCard(ctx context.Context, id string) (domain.Card, error) {
	c, err := ScanCard(s.db.QueryRowContext(ctx, `SELECT `+CardColumns+` FROM cards WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, NotFound(id)
	}
	if err != nil {
		return c, fmt.Errorf("get card %s: %w", id, err)
	}
	return c, nil
}

func (s *SQLiteStore) CreateCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	c, err := PrepareCard(c, s.now())
	if err != nil {
		return c, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO cards (`+CardColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`, CardArgs(c)...); err != nil {
		return c, fmt.Errorf("insert card: %w", err)
	}
	s.log.Debug("card created", slog.String("card", c.ID), slog.String("type", string(c.Type)))
	return c, nil
}

func (s *SQLiteStore) DeleteCard(ctx context.Context, id string) error {
	return s.execOne(ctx, id, `DELETE FROM cards WHERE id=?`, id)
}

func (s *SQLiteStore) UpdateCardPosition(ctx context.Context, id string, x, y float64) error {
	return s.execOne(ctx, id, `UPDATE cards SET x=?, y=? WHERE id=?`, x, y, id)
}

func (s *SQLiteStore) UpdateCardSize(ctx context.Context, id string, w, h float64) error {
	if err := ValidSize(w, h); err != nil {
		return err
	}
	return s.execOne(ctx, id, `UPDATE cards SET w=?, h=? WHERE id=?`, w, h, id)
}

func (s *SQLiteStore) UpdateCardFontSize(ctx context.Context, id string, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: font size %d", domain.ErrInvalidCard, size)
	}
	return s.execOne(ctx, id, `UPDATE cards SET font_size=? WHERE id=?`, size, id)
}

func (s *SQLiteStore) UpdateCardContent(ctx context.Context, id, content string) error {
	return s.execOne(ctx, id, `UPDATE cards SET content=? WHERE id=?`, content, id)
}

// execOne runs a statement that must touch exactly the row with id.
func (s *SQLiteStore) execOne(ctx context.Context, id, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("card %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFound(id)
	}
	return nil
}

func (s *SQLiteStore) LoadViewport(ctx context.Context) (domain.Viewport, error) {
	v := domain.Viewport{ID: domain.MainViewportID}
	err := s.db.QueryRowContext(ctx, `SELECT scale, translate_x, translate_y FROM viewports WHERE id=?`, v.ID).
		Scan(&v.Scale, &v.TranslateX, &v.TranslateY)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultViewport(), nil
	}
	if err != nil {
		return v, fmt.Errorf("load viewport: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) SaveViewport(ctx context.Context, v domain.Viewport) error {
	if v.ID == "" {
		v.ID = domain.MainViewportID
	}
	if !(v.Scale > 0) {
		return fmt.Errorf("save viewport: invalid scale %v", v.Scale)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO viewports (id, scale, translate_x, translate_y) VALUES (?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET scale=excluded.scale, translate_x=excluded.translate_x, translate_y=excluded.translate_y`,
		v.ID, v.Scale, v.TranslateX, v.TranslateY)
	if err != nil {
		return fmt.Errorf("save viewport: %w", err)
	}
	return nil
}
