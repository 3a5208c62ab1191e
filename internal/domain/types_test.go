/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCardJSONFieldNames(t *testing.T) {
	c := Card{ID: "c1", Type: CardImage, Content: "data:image/png;base64,AA==", Position: Point{X: 10, Y: 20},
		Size: &Size{W: 120, H: 80}, NaturalSize: &Size{W: 240, H: 160}, CreatedAt: 1700000000000}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "type", "content", "position", "size", "naturalSize", "createdAt"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("missing key %q in %s", k, b)
		}
	}
	if _, ok := m["fontSize"]; ok {
		t.Fatalf("fontSize should be omitted when zero: %s", b)
	}
}

func TestCardValidate(t *testing.T) {
	cases := []struct {
		name string
		card Card
		ok   bool
	}{
		{"text", Card{ID: "a", Type: CardText}, true},
		{"empty id", Card{ID: " ", Type: CardText}, false},
		{"bad type", Card{ID: "a", Type: "video"}, false},
		{"zero size", Card{ID: "a", Type: CardText, Size: &Size{W: 0, H: 10}}, false},
		{"natural on text", Card{ID: "a", Type: CardText, NaturalSize: &Size{W: 1, H: 1}}, false},
		{"image natural", Card{ID: "a", Type: CardImage, NaturalSize: &Size{W: 1, H: 1}}, true},
		{"negative font", Card{ID: "a", Type: CardText, FontSize: -1}, false},
	}
	for _, tc := range cases {
		err := tc.card.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidCard) {
			t.Fatalf("%s: expected ErrInvalidCard, got %v", tc.name, err)
		}
	}
}

func TestParseCardType(t *testing.T) {
	if ct, err := ParseCardType(" Link "); err != nil || ct != CardLink {
		t.Fatalf("ParseCardType(Link) = %q, %v", ct, err)
	}
	if _, err := ParseCardType("video"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestImageScale(t *testing.T) {
	c := Card{ID: "i", Type: CardImage, Size: &Size{W: 300, H: 100}, NaturalSize: &Size{W: 150, H: 200}}
	sx, sy, ok := c.ImageScale()
	if !ok || sx != 2 || sy != 0.5 {
		t.Fatalf("ImageScale = %v,%v,%v", sx, sy, ok)
	}
	if _, _, ok := (Card{ID: "t", Type: CardText, Size: &Size{W: 1, H: 1}}).ImageScale(); ok {
		t.Fatalf("text card must not report an image scale")
	}
}

func TestEffectiveSizeDefaults(t *testing.T) {
	if got := (Card{}).EffectiveSize(); got != DefaultCardSize {
		t.Fatalf("EffectiveSize = %+v", got)
	}
	if got := (Card{Size: &Size{W: 5, H: 6}}).EffectiveSize(); got.W != 5 || got.H != 6 {
		t.Fatalf("EffectiveSize = %+v", got)
	}
}

func TestStepFontSize(t *testing.T) {
	cases := []struct {
		cur  int
		up   bool
		want int
	}{
		{14, true, 18},
		{14, false, 12},
		{12, false, 12},
		{48, true, 48},
		{16, true, 18},
		{16, false, 14},
		{8, false, 8},
		{60, true, 60},
		{60, false, 48},
	}
	for _, tc := range cases {
		if got := StepFontSize(tc.cur, tc.up); got != tc.want {
			t.Fatalf("StepFontSize(%d, %v) = %d, want %d", tc.cur, tc.up, got, tc.want)
		}
	}
}
