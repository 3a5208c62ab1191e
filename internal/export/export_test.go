/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goboard/internal/domain"
)

func sampleCards() []domain.Card {
	return []domain.Card{
		{ID: "a", Type: domain.CardText, Content: "Hello board\nsecond line", Position: domain.Point{X: 0, Y: 0}},
		{ID: "b", Type: domain.CardLink, Content: "https://example.com", Position: domain.Point{X: 300, Y: 50}, Size: &domain.Size{W: 100, H: 40}},
		{ID: "c", Type: domain.CardImage, Content: "data:image/png;base64,", Position: domain.Point{X: -50, Y: 200}, Size: &domain.Size{W: 80, H: 60}},
	}
}

func TestCardBounds_UnionPlusMargin(t *testing.T) {
	b := cardBounds(sampleCards(), 10)
	want := bounds{MinX: -60, MinY: -10, MaxX: 410, MaxY: 270}
	if b != want {
		t.Fatalf("bounds = %+v, want %+v", b, want)
	}
	empty := cardBounds(nil, 10)
	if empty.W() != 20 || empty.H() != 20 {
		t.Fatalf("empty bounds = %vx%v", empty.W(), empty.H())
	}
}

func TestLabel(t *testing.T) {
	if got := label(domain.Card{Type: domain.CardText, Content: "first\nsecond"}); got != "first" {
		t.Fatalf("text label = %q", got)
	}
	if got := label(domain.Card{Type: domain.CardImage, Content: "data:..."}); got != "[image]" {
		t.Fatalf("image label = %q", got)
	}
	long := strings.Repeat("x", 100)
	got := label(domain.Card{Type: domain.CardLink, Content: long})
	if len([]rune(got)) != maxLabel || !strings.HasSuffix(got, "...") {
		t.Fatalf("long label = %q", got)
	}
}

func TestBoardPDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "board.pdf")
	if err := BoardPDF(sampleCards(), out, PDFOptions{Title: "Board"}); err != nil {
		t.Fatalf("BoardPDF: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", data[:min(8, len(data))])
	}
}

func TestBoardPDF_EmptyBoard(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.pdf")
	if err := BoardPDF(nil, out, PDFOptions{}); err != nil {
		t.Fatalf("BoardPDF: %v", err)
	}
	if st, err := os.Stat(out); err != nil || st.Size() == 0 {
		t.Fatalf("expected non-empty pdf, err=%v", err)
	}
}

func TestBoardPNG_Dimensions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "board.png")
	if err := BoardPNG(sampleCards(), out, PNGOptions{Scale: 2, Margin: 10}); err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// bounds 470x280 at scale 2
	if cfg.Width != 940 || cfg.Height != 560 {
		t.Fatalf("png size = %dx%d, want 940x560", cfg.Width, cfg.Height)
	}
}

func TestBoardPNG_DrawsOutline(t *testing.T) {
	out := filepath.Join(t.TempDir(), "one.png")
	cards := []domain.Card{{ID: "a", Type: domain.CardText, Content: "hi", Size: &domain.Size{W: 50, H: 20}}}
	if err := BoardPNG(cards, out, PNGOptions{Margin: 5}); err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	r, g, b, _ := img.At(5, 5).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("expected black outline corner at (5,5), got %d,%d,%d", r, g, b)
	}
	r, _, _, _ = img.At(0, 0).RGBA()
	if r != 0xffff {
		t.Fatalf("expected white margin at (0,0)")
	}
}
