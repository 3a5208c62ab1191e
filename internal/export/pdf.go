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
	"image/color"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"goboard/internal/domain"
)

// lineSpacing is the baseline distance as a multiple of the font size.
const lineSpacing = 1.2

// PDFOptions controls PDF export behavior.
// Units are points; one canvas unit maps to one point.
type PDFOptions struct {
	Title       string
	Margin      float64 // zero means DefaultMargin
	Stroke      color.RGBA
	StrokeWidth float64
	FontSize    float64 // label size; zero means 10
}

// BoardPDF writes a single page PDF showing every card at its canvas position.
func BoardPDF(cards []domain.Card, outPath string, opt PDFOptions) error {
	margin := opt.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	stroke := opt.Stroke
	if stroke == (color.RGBA{}) {
		stroke = defaultStroke
	}
	lw := opt.StrokeWidth
	if lw <= 0 {
		lw = 1
	}
	fsz := opt.FontSize
	if fsz <= 0 {
		fsz = 10
	}

	b := cardBounds(cards, margin)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: b.W(), Ht: b.H()},
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetAuthor("goboard", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: b.W(), Ht: b.H()})

	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "", fsz)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	const pad = 4.0
	setDrawColor(pdf, stroke)
	pdf.SetLineWidth(lw)
	for _, c := range cards {
		x, y, w, h := cardRect(c)
		x -= b.MinX
		y -= b.MinY
		setFillColor(pdf, fillFor(c.Type))
		pdf.Rect(x, y, w, h, "FD")

		lines := []string{label(c)}
		if c.Type == domain.CardText {
			lines = pdf.SplitText(tr(strings.TrimSpace(c.Content)), w-2*pad)
		}
		pdf.ClipRect(x, y, w, h, false)
		for i, line := range lines {
			base := y + pad + fsz + float64(i)*fsz*lineSpacing
			if base > y+h {
				break
			}
			if c.Type != domain.CardText {
				line = tr(line)
			}
			pdf.Text(x+pad, base, line)
		}
		pdf.ClipEnd()
	}

	if err := ensureDir(outPath); err != nil {
		return err
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
