/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goboard/internal/domain"
	"goboard/internal/replay"
)

// run executes the root command against board dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("GBD_STORAGE_DRIVER", "")
	var out bytes.Buffer
	cmd := newRootCommand(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--board", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("goboard %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestCLI_AddListRemove(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")
	id := strings.TrimSpace(mustRun(t, dir, "add", "hello", "--x", "10", "--y", "20"))
	if id == "" {
		t.Fatal("add printed no id")
	}
	mustRun(t, dir, "add", "https://example.com", "--type", "link", "--width", "120", "--height", "40")

	var cards []domain.Card
	if err := json.Unmarshal([]byte(mustRun(t, dir, "list", "--json")), &cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("cards = %+v", cards)
	}
	var text domain.Card
	for _, c := range cards {
		if c.ID == id {
			text = c
		}
	}
	if text.Position != (domain.Point{X: 10, Y: 20}) || text.FontSize != domain.DefaultFontSize {
		t.Fatalf("text card = %+v", text)
	}

	if out := mustRun(t, dir, "edit", id, "hello"); strings.TrimSpace(out) != "unchanged" {
		t.Fatalf("edit with same text: %q", out)
	}
	mustRun(t, dir, "edit", id, "hello again")
	if _, err := run(t, dir, "edit", cards[0].ID+cards[1].ID, "x"); err == nil {
		t.Fatal("edit of unknown card should fail")
	}
	if table := mustRun(t, dir, "list"); !strings.Contains(table, "hello again") {
		t.Fatalf("edit not stored:\n%s", table)
	}

	mustRun(t, dir, "rm", id)
	table := mustRun(t, dir, "list")
	if strings.Contains(table, id) || !strings.Contains(table, "example.com") {
		t.Fatalf("unexpected list after rm:\n%s", table)
	}
}

func TestCLI_AddRejectsUnknownType(t *testing.T) {
	if _, err := run(t, t.TempDir(), "add", "x", "--type", "video"); err == nil {
		t.Fatal("expected error for unknown card type")
	}
}

func TestCLI_ExportFormats(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "one", "--width", "100", "--height", "50")

	mustRun(t, dir, "export", "board.png", "--margin", "10")
	f, err := os.Open(filepath.Join(dir, "exports", "board.png"))
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if cfg.Width != 120 || cfg.Height != 70 {
		t.Fatalf("png = %dx%d, want 120x70", cfg.Width, cfg.Height)
	}

	pdf := filepath.Join(dir, "out.pdf")
	mustRun(t, dir, "export", pdf)
	if st, err := os.Stat(pdf); err != nil || st.Size() == 0 {
		t.Fatalf("pdf missing: %v", err)
	}

	mustRun(t, dir, "export", "dump", "--format", "json")
	if _, err := os.Stat(filepath.Join(dir, "exports", "dump")); err != nil {
		t.Fatalf("json export missing: %v", err)
	}

	if _, err := run(t, dir, "export", "board.svg"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCLI_SnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "kept")
	mustRun(t, dir, "snapshot", "save")
	if _, err := os.Stat(filepath.Join(dir, "board.json")); err != nil {
		t.Fatalf("board.json missing: %v", err)
	}
	out := mustRun(t, dir, "snapshot", "restore")
	if !strings.Contains(out, "Restored 1 cards") {
		t.Fatalf("restore output = %q", out)
	}
}

const cliScript = `{
  "viewport": {"scale": 2},
  "cards": [{"id": "a", "type": "text", "content": "A", "position": {"x": 100, "y": 100}}],
  "steps": [
    {"op": "down", "card": "a", "x": 200, "y": 200},
    {"op": "move", "x": 210, "y": 205},
    {"op": "up", "x": 220, "y": 210}
  ]
}`

func TestCLI_ReplayUsesScratchBoard(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(t.TempDir(), "drag.json")
	if err := os.WriteFile(script, []byte(cliScript), 0o644); err != nil {
		t.Fatal(err)
	}
	var res replay.Result
	if err := json.Unmarshal([]byte(mustRun(t, dir, "replay", script)), &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if len(res.Commits) != 1 || *res.Commits[0].Position != (domain.Point{X: 110, Y: 105}) {
		t.Fatalf("commits = %+v", res.Commits)
	}
	var cards []domain.Card
	if err := json.Unmarshal([]byte(mustRun(t, dir, "list", "--json")), &cards); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("scratch replay touched the board: %+v", cards)
	}
}

func TestCLI_Version(t *testing.T) {
	if out := mustRun(t, t.TempDir(), "version"); strings.TrimSpace(out) == "" {
		t.Fatal("version printed nothing")
	}
}
