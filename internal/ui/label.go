/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"strings"

	"goboard/internal/domain"
)

// maxLabel caps the text drawn on a card.
const maxLabel = 60

// cardLabel is the single line a card shows on the canvas.
func cardLabel(c domain.Card) string {
	var s string
	switch c.Type {
	case domain.CardImage:
		return "[image]"
	case domain.CardLink:
		s = c.Content
	default:
		s, _, _ = strings.Cut(c.Content, "\n")
	}
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > maxLabel {
		return string(r[:maxLabel-1]) + "…"
	}
	return s
}

// labelFontSize is used for cards without a font size of their own.
const labelFontSize = 12

// cardFontSize is the unscaled size a card's label is drawn at.
func cardFontSize(c domain.Card) float32 {
	if c.Type != domain.CardText {
		return labelFontSize
	}
	return float32(c.EffectiveFontSize())
}
