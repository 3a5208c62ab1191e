/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatal("no log lines")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal %q: %v", last, err)
	}
	return m
}

func TestNew_JSONCarriesStaticAndScopeAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "debug", Format: "json"})
	ctx := ContextWithGesture(ContextWithCard(ContextWithBoard(context.Background(), "/boards/a"), "c1"), "drag")
	WithOperation(l.With(slog.String("component", "board")), "commit").InfoContext(ctx, "position committed", slog.Float64("x", 110))

	m := lastJSONLine(t, buf.Bytes())
	want := map[string]any{"app": "goboard", "component": "board", "op": "commit", "board": "/boards/a", "card": "c1", "gesture": "drag", "msg": "position committed"}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s = %v, want %v", k, m[k], v)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Error("missing ver")
	}
	if L() != l {
		t.Error("New did not replace the application logger")
	}
}

func TestScope_RecordAttrWinsOverContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Format: "json"})
	l.InfoContext(ContextWithCard(context.Background(), "from-ctx"), "x", slog.String("card", "explicit"))
	if m := lastJSONLine(t, buf.Bytes()); m["card"] != "explicit" {
		t.Fatalf("card = %v", m["card"])
	}
	if n := strings.Count(buf.String(), `"card"`); n != 1 {
		t.Fatalf("card written %d times: %s", n, buf.String())
	}
}

func TestWithScope_MergesFields(t *testing.T) {
	ctx := ContextWithBoard(context.Background(), "b")
	ctx = ContextWithCard(ctx, "c")
	ctx = WithScope(ctx, Scope{Gesture: "resize"})
	if got := ScopeFrom(ctx); got != (Scope{Board: "b", Card: "c", Gesture: "resize"}) {
		t.Fatalf("scope = %+v", got)
	}
	if got := ScopeFrom(context.Background()); got != (Scope{}) {
		t.Fatalf("empty scope = %+v", got)
	}
}

func TestConsole_ComponentPrefixAndFloat32Values(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "debug"})
	WithComponent("resize").DebugContext(ContextWithBoard(context.Background(), "/tmp/b 1"), "resize commit",
		slog.String("card", "a"), slog.Float64("w", float64(float32(0.1))), slog.Int("n", 3))
	l.Debug("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	first := lines[0]
	for _, want := range []string{" DBG resize: resize commit", "card=a", "w=0.1 ", "n=3", `board="/tmp/b 1"`} {
		if !strings.Contains(first, want) {
			t.Errorf("missing %q in %q", want, first)
		}
	}
	if strings.Contains(first, "app=") || strings.Contains(first, "component=") {
		t.Errorf("static attrs leaked to console: %q", first)
	}
	if strings.Contains(lines[1], "board=") || !strings.HasSuffix(lines[1], "DBG plain") {
		t.Errorf("plain line = %q", lines[1])
	}
}

func TestConsole_LevelAndGroups(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Level: "warn", AddSource: true})
	l.Info("dropped")
	l.WithGroup("vp").Error("boom", slog.Float64("scale", 2))
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info passed warn level: %q", out)
	}
	for _, want := range []string{"ERR boom", "vp.scale=2", "src=", "logger_test.go:"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestNew_FileSinkGetsJSON(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "goboard.log")
	var console bytes.Buffer
	New(&console, Options{Level: "info", File: fpath})
	WithComponent("drag").InfoContext(ContextWithCard(context.Background(), "k"), "drag commit")

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["component"] != "drag" || m["card"] != "k" || m["msg"] != "drag commit" {
		t.Fatalf("file record = %v", m)
	}
	if !strings.Contains(console.String(), "drag: drag commit card=k") {
		t.Fatalf("console = %q", console.String())
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GBD_LOG_LEVEL", "warn")
	t.Setenv("GBD_LOG_FORMAT", "json")
	t.Setenv("GBD_LOG_SOURCE", "TRUE")
	t.Setenv("GBD_LOG_FILE", "")
	if o := FromEnv(); o != (Options{Level: "warn", Format: "json", AddSource: true}) {
		t.Fatalf("FromEnv = %+v", o)
	}
	if parseLevel("bogus") != slog.LevelInfo || parseLevel(" Warning ") != slog.LevelWarn {
		t.Fatal("parseLevel")
	}
}
