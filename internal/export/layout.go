/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board's cards to printable files.
// Both exporters lay cards out in canvas units over the union of their
// rectangles, so the result matches the board at scale 1.
package export

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"goboard/internal/domain"
)

// DefaultMargin surrounds the card bounds on every side.
const DefaultMargin = 24.0

// maxLabel caps label length; longer content is cut with an ellipsis.
const maxLabel = 40

var (
	defaultStroke = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	textFill      = color.RGBA{R: 255, G: 250, B: 205, A: 255}
	imageFill     = color.RGBA{R: 230, G: 236, B: 245, A: 255}
	linkFill      = color.RGBA{R: 225, G: 245, B: 230, A: 255}
)

// bounds is the union of card rectangles in canvas space.
type bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b bounds) W() float64 { return b.MaxX - b.MinX }
func (b bounds) H() float64 { return b.MaxY - b.MinY }

// cardRect returns a card's canvas rectangle, falling back to the default size.
func cardRect(c domain.Card) (x, y, w, h float64) {
	sz := domain.DefaultCardSize
	if c.Size != nil {
		sz = *c.Size
	}
	return c.Position.X, c.Position.Y, sz.W, sz.H
}

// cardBounds grows the union of all card rects by margin. An empty board
// yields a square of 2*margin so exporters still produce a valid page.
func cardBounds(cards []domain.Card, margin float64) bounds {
	if len(cards) == 0 {
		return bounds{MinX: -margin, MinY: -margin, MaxX: margin, MaxY: margin}
	}
	b := bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, c := range cards {
		x, y, w, h := cardRect(c)
		b.MinX = math.Min(b.MinX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxX = math.Max(b.MaxX, x+w)
		b.MaxY = math.Max(b.MaxY, y+h)
	}
	b.MinX -= margin
	b.MinY -= margin
	b.MaxX += margin
	b.MaxY += margin
	return b
}

func fillFor(t domain.CardType) color.RGBA {
	switch t {
	case domain.CardImage:
		return imageFill
	case domain.CardLink:
		return linkFill
	}
	return textFill
}

// label is the single line printed inside a card.
func label(c domain.Card) string {
	switch c.Type {
	case domain.CardImage:
		return "[image]"
	case domain.CardLink:
		return truncate(c.Content)
	}
	line, _, _ := strings.Cut(c.Content, "\n")
	return truncate(line)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxLabel {
		return s
	}
	return string(r[:maxLabel-3]) + "..."
}

func ensureDir(out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return nil
}
