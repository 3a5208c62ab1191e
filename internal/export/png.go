/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"goboard/internal/domain"
	"goboard/internal/textlayout"
)

// labelPad is the inner padding of card text in pixels.
const labelPad = 4

// cardLines wraps text cards into the card; other types get their one-line label.
func cardLines(w *textlayout.Wrapper, c domain.Card, maxWidth float32, maxLines int) []string {
	if c.Type != domain.CardText {
		return w.Fit(label(c), maxWidth, min(maxLines, 1))
	}
	return w.Fit(strings.TrimSpace(c.Content), maxWidth, maxLines)
}

// PNGOptions controls raster export. Scale is pixels per canvas unit.
type PNGOptions struct {
	Scale  float64 // zero means 1
	Margin float64 // zero means DefaultMargin
	Stroke color.RGBA
}

// BoardPNG rasterizes every card outline and label into a single PNG.
func BoardPNG(cards []domain.Card, outPath string, opt PNGOptions) error {
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	stroke := opt.Stroke
	if stroke == (color.RGBA{}) {
		stroke = defaultStroke
	}

	b := cardBounds(cards, margin)
	pixW := int(math.Round(b.W() * scale))
	pixH := int(math.Round(b.H() * scale))
	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	wrap := textlayout.NewWrapper(basicfont.Face7x13)
	face := wrap.Face()
	ascent := face.Metrics().Ascent.Ceil()
	for _, c := range cards {
		x, y, w, h := cardRect(c)
		x0 := int(math.Round((x - b.MinX) * scale))
		y0 := int(math.Round((y - b.MinY) * scale))
		x1 := x0 + int(math.Round(w*scale)) - 1
		y1 := y0 + int(math.Round(h*scale)) - 1
		fillRect(img, x0, y0, x1, y1, fillFor(c.Type))
		strokeRect(img, x0, y0, x1, y1, stroke)

		clip := image.Rect(x0+1, y0+1, x1, y1)
		dst, ok := img.SubImage(clip).(*image.RGBA)
		if !ok || clip.Empty() {
			continue
		}
		d := font.Drawer{Dst: dst, Src: image.NewUniform(stroke), Face: face}
		for i, line := range cardLines(wrap, c, float32(x1-x0-2*labelPad), (y1-y0-2*labelPad)/wrap.LineHeight()) {
			d.Dot = fixed.P(x0+labelPad, y0+labelPad+ascent+i*wrap.LineHeight())
			d.DrawString(line)
		}
	}

	if err := ensureDir(outPath); err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	draw.Draw(img, image.Rect(x0, y0, x1+1, y1+1), &image.Uniform{C: col}, image.Point{}, draw.Src)
}
