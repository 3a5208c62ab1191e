/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout breaks card text into lines that fit a card's width.
// Measurement goes through font.Face so raster export and tests share the
// same deterministic metrics.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Ellipsis marks text cut off by Fit.
const Ellipsis = "..."

// Wrapper lays text out with a single face.
type Wrapper struct {
	face font.Face
}

// NewWrapper returns a Wrapper for face; nil selects basicfont.Face7x13.
func NewWrapper(face font.Face) *Wrapper {
	if face == nil {
		face = basicfont.Face7x13
	}
	return &Wrapper{face: face}
}

// Face returns the face used for measurement.
func (w *Wrapper) Face() font.Face { return w.face }

// LineHeight is the baseline-to-baseline distance in pixels.
func (w *Wrapper) LineHeight() int { return w.face.Metrics().Height.Ceil() }

// Measure returns the advance width of s in pixels.
func (w *Wrapper) Measure(s string) float32 {
	return float32(font.MeasureString(w.face, s)) / 64
}

// Wrap breaks text on spaces and newlines so that each line fits maxWidth.
// A single word wider than maxWidth is split by runes. maxWidth <= 0 only
// splits on newlines.
func (w *Wrapper) Wrap(text string, maxWidth float32) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		out = append(out, w.wrapLine(para, maxWidth)...)
	}
	return out
}

func (w *Wrapper) wrapLine(para string, maxWidth float32) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	cur := ""
	for _, word := range words {
		cand := word
		if cur != "" {
			cand = cur + " " + word
		}
		if w.Measure(cand) <= maxWidth {
			cur = cand
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
		}
		cur = word
		for w.Measure(cur) > maxWidth {
			head, tail := w.splitRunes(cur, maxWidth)
			lines = append(lines, head)
			cur = tail
		}
	}
	return append(lines, cur)
}

// splitRunes returns the longest prefix of s that fits, at least one rune.
func (w *Wrapper) splitRunes(s string, maxWidth float32) (string, string) {
	r := []rune(s)
	n := 1
	for n < len(r) && w.Measure(string(r[:n+1])) <= maxWidth {
		n++
	}
	return string(r[:n]), string(r[n:])
}

// Fit wraps text and keeps at most maxLines lines. When lines were dropped
// the last kept line ends with Ellipsis, trimmed to stay within maxWidth.
func (w *Wrapper) Fit(text string, maxWidth float32, maxLines int) []string {
	lines := w.Wrap(text, maxWidth)
	if maxLines <= 0 {
		return nil
	}
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	for len(last) > 0 && maxWidth > 0 && w.Measure(string(last)+Ellipsis) > maxWidth {
		last = last[:len(last)-1]
	}
	lines[maxLines-1] = string(last) + Ellipsis
	return lines
}
