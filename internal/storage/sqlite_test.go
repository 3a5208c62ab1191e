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
	"os"
	"path/filepath"
	"testing"
	"time"

	"goboard/internal/domain"

	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st, dir
}

func TestSQLiteStore_CardLifecycle(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	c, err := st.CreateCard(ctx, domain.Card{Type: domain.CardText, Content: "hello", Position: domain.Point{X: 10, Y: 20}})
	if err != nil {
		t.Fatalf("CreateCard: %v", err)
	}
	if c.ID == "" || c.CreatedAt == 0 || c.FontSize != domain.DefaultFontSize {
		t.Fatalf("card not prepared: %#v", c)
	}
	if err := st.UpdateCardPosition(ctx, c.ID, 110, 105); err != nil {
		t.Fatalf("UpdateCardPosition: %v", err)
	}
	if err := st.UpdateCardSize(ctx, c.ID, 60, 30); err != nil {
		t.Fatalf("UpdateCardSize: %v", err)
	}
	if err := st.UpdateCardFontSize(ctx, c.ID, 18); err != nil {
		t.Fatalf("UpdateCardFontSize: %v", err)
	}
	if err := st.UpdateCardContent(ctx, c.ID, "hello\nworld"); err != nil {
		t.Fatalf("UpdateCardContent: %v", err)
	}
	got, err := st.GetCard(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if got.Position != (domain.Point{X: 110, Y: 105}) || got.Size == nil || *got.Size != (domain.Size{W: 60, H: 30}) || got.FontSize != 18 || got.Content != "hello\nworld" {
		t.Fatalf("unexpected card: %#v", got)
	}
	if err := st.DeleteCard(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCard: %v", err)
	}
	if _, err := st.GetCard(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteStore_MissingCard(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	checks := map[string]error{
		"position": st.UpdateCardPosition(ctx, "nope", 1, 1),
		"size":     st.UpdateCardSize(ctx, "nope", 1, 1),
		"font":     st.UpdateCardFontSize(ctx, "nope", 12),
		"content":  st.UpdateCardContent(ctx, "nope", "x"),
		"delete":   st.DeleteCard(ctx, "nope"),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestSQLiteStore_RejectsInvalidValues(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	if _, err := st.CreateCard(ctx, domain.Card{Type: "video"}); !errors.Is(err, domain.ErrInvalidCard) {
		t.Fatalf("invalid type: %v", err)
	}
	c, _ := st.CreateCard(ctx, domain.Card{Type: domain.CardLink, Content: "https://example.com"})
	if err := st.UpdateCardSize(ctx, c.ID, 0, 10); !errors.Is(err, domain.ErrInvalidCard) {
		t.Fatalf("zero width: %v", err)
	}
	if err := st.SaveViewport(ctx, domain.Viewport{Scale: 0}); err == nil {
		t.Fatal("expected error for zero scale")
	}
}

func TestSQLiteStore_ListOrderAndImages(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "a", "c"} {
		st.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		c := domain.Card{ID: id, Type: domain.CardImage, Content: "data:image/png;base64,AA==",
			Size: &domain.Size{W: 100, H: 50}, NaturalSize: &domain.Size{W: 400, H: 200}}
		if _, err := st.CreateCard(ctx, c); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	cards, err := st.ListCards(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 3 || cards[0].ID != "b" || cards[1].ID != "a" || cards[2].ID != "c" {
		t.Fatalf("order: %v", cards)
	}
	if cards[0].NaturalSize == nil || cards[0].NaturalSize.W != 400 || cards[0].FontSize != 0 {
		t.Fatalf("image card: %#v", cards[0])
	}
}

func TestSQLiteStore_Viewport(t *testing.T) {
	st, dir := openTestStore(t)
	ctx := context.Background()
	v, err := st.LoadViewport(ctx)
	if err != nil || v != domain.DefaultViewport() {
		t.Fatalf("default viewport: %#v %v", v, err)
	}
	want := domain.Viewport{ID: domain.MainViewportID, Scale: 2, TranslateX: -40, TranslateY: 12.5}
	if err := st.SaveViewport(ctx, want); err != nil {
		t.Fatal(err)
	}
	if err := st.SaveViewport(ctx, domain.Viewport{Scale: 1.5}); err != nil {
		t.Fatal(err)
	}
	_ = st.Close()
	re, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer re.Close()
	v, _ = re.LoadViewport(ctx)
	if v.Scale != 1.5 || v.TranslateX != 0 {
		t.Fatalf("viewport after reopen: %#v", v)
	}
}

// A schema-1 board (no natural size or font size columns) is migrated on open.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	dir := t.TempDir()
	path := DBPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mk .goboard: %v", err)
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(path)))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE cards (id TEXT PRIMARY KEY, type TEXT NOT NULL, content TEXT NOT NULL DEFAULT '', x REAL NOT NULL DEFAULT 0, y REAL NOT NULL DEFAULT 0, w REAL, h REAL, created_at INTEGER NOT NULL);`,
		`INSERT INTO cards(id, type, content, x, y, created_at) VALUES('t1', 'text', 'old', 5, 6, 1);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	db.Close()

	st, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer st.Close()
	var schema int
	if err := st.DB().QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d, want %d", schema, schemaVersion)
	}
	c, err := st.GetCard(ctx, "t1")
	if err != nil {
		t.Fatalf("GetCard after migration: %v", err)
	}
	if c.FontSize != 14 || c.Position != (domain.Point{X: 5, Y: 6}) {
		t.Fatalf("migrated card: %#v", c)
	}
}
