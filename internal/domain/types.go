/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the board data model. Cards are owned by the store; the
// interaction engine only reads their geometry and writes back committed values.

import (
	"errors"
	"fmt"
	"strings"
)

// CardType distinguishes how card content is presented.
type CardType string

const (
	CardText  CardType = "text"
	CardImage CardType = "image"
	CardLink  CardType = "link"
)

// Valid reports whether t is a known card type.
func (t CardType) Valid() bool {
	switch t {
	case CardText, CardImage, CardLink:
		return true
	}
	return false
}

// ParseCardType converts user input into a CardType.
func ParseCardType(s string) (CardType, error) {
	t := CardType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown card type %q", s)
	}
	return t, nil
}

// Point is a position in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in canvas units.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultCardSize is used wherever a card has not been resized yet.
var DefaultCardSize = Size{W: 200, H: 100}

// Card is a freeform content card placed on the board.
// Content holds the text, the image data URL or the link URL depending on Type.
type Card struct {
	ID          string   `json:"id"`
	Type        CardType `json:"type"`
	Content     string   `json:"content"`
	Position    Point    `json:"position"`
	Size        *Size    `json:"size,omitempty"`
	NaturalSize *Size    `json:"naturalSize,omitempty"` // images only
	FontSize    int      `json:"fontSize,omitempty"`    // text cards only
	CreatedAt   int64    `json:"createdAt"`             // unix millis
}

// ErrInvalidCard is wrapped by Validate failures.
var ErrInvalidCard = errors.New("invalid card")

// Validate checks the invariants the store relies on.
func (c Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCard)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: type %q", ErrInvalidCard, c.Type)
	}
	if c.Size != nil && (c.Size.W <= 0 || c.Size.H <= 0) {
		return fmt.Errorf("%w: non-positive size %vx%v", ErrInvalidCard, c.Size.W, c.Size.H)
	}
	if c.NaturalSize != nil && c.Type != CardImage {
		return fmt.Errorf("%w: natural size on %s card", ErrInvalidCard, c.Type)
	}
	if c.FontSize < 0 {
		return fmt.Errorf("%w: negative font size", ErrInvalidCard)
	}
	return nil
}

// EffectiveSize returns the card's size or DefaultCardSize.
func (c Card) EffectiveSize() Size {
	if c.Size != nil {
		return *c.Size
	}
	return DefaultCardSize
}

// ImageScale returns the per-axis scale from natural to current size.
// ok is false for cards that are not resized images.
func (c Card) ImageScale() (sx, sy float64, ok bool) {
	if c.Type != CardImage || c.Size == nil || c.NaturalSize == nil {
		return 1, 1, false
	}
	if c.NaturalSize.W <= 0 || c.NaturalSize.H <= 0 {
		return 1, 1, false
	}
	return c.Size.W / c.NaturalSize.W, c.Size.H / c.NaturalSize.H, true
}

// MainViewportID is the id of the single board viewport.
const MainViewportID = "main"

// Viewport is the persisted pan/zoom state of the board.
type Viewport struct {
	ID         string  `json:"id"`
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
}

// DefaultViewport is the unzoomed, unpanned board.
func DefaultViewport() Viewport {
	return Viewport{ID: MainViewportID, Scale: 1}
}
