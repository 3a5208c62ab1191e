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
	"testing"

	"goboard/internal/domain"
)

func TestCardLabel(t *testing.T) {
	cases := []struct {
		name string
		card domain.Card
		want string
	}{
		{"text first line", domain.Card{Type: domain.CardText, Content: "  title \nbody"}, "title"},
		{"image", domain.Card{Type: domain.CardImage, Content: "data:image/png;base64,AAAA"}, "[image]"},
		{"link", domain.Card{Type: domain.CardLink, Content: "https://example.com"}, "https://example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cardLabel(tc.card); got != tc.want {
				t.Fatalf("cardLabel = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCardLabel_Truncates(t *testing.T) {
	got := cardLabel(domain.Card{Type: domain.CardText, Content: strings.Repeat("a", 200)})
	if n := len([]rune(got)); n != maxLabel || !strings.HasSuffix(got, "…") {
		t.Fatalf("len=%d label=%q", n, got)
	}
}

func TestCardFontSize(t *testing.T) {
	cases := []struct {
		card domain.Card
		want float32
	}{
		{domain.Card{Type: domain.CardText, FontSize: 32}, 32},
		{domain.Card{Type: domain.CardText}, domain.DefaultFontSize},
		{domain.Card{Type: domain.CardLink, FontSize: 48}, labelFontSize},
	}
	for _, tc := range cases {
		if got := cardFontSize(tc.card); got != tc.want {
			t.Errorf("cardFontSize(%+v) = %v, want %v", tc.card, got, tc.want)
		}
	}
}
