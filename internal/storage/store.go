/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"goboard/internal/domain"
)

// ErrNotFound is returned when a card does not exist.
var ErrNotFound = errors.New("not found")

// Store is the board persistence contract. Update methods receive exactly one
// committed value per finished gesture.
type Store interface {
	ListCards(ctx context.Context) ([]domain.Card, error)
	GetCard(ctx context.Context, id string) (domain.Card, error)
	// CreateCard inserts c. An empty ID is replaced by a new UUID; the stored card is returned.
	CreateCard(ctx context.Context, c domain.Card) (domain.Card, error)
	DeleteCard(ctx context.Context, id string) error
	UpdateCardPosition(ctx context.Context, id string, x, y float64) error
	UpdateCardSize(ctx context.Context, id string, w, h float64) error
	UpdateCardFontSize(ctx context.Context, id string, size int) error
	UpdateCardContent(ctx context.Context, id, content string) error
	// LoadViewport returns the saved viewport, or domain.DefaultViewport when none was saved.
	LoadViewport(ctx context.Context) (domain.Viewport, error)
	SaveViewport(ctx context.Context, v domain.Viewport) error
	Close() error
}

// PrepareCard fills id and creation time and validates c. Store
// implementations call it from CreateCard.
func PrepareCard(c domain.Card, now time.Time) (domain.Card, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = now.UnixMilli()
	}
	if c.Type == domain.CardText && c.FontSize == 0 {
		c.FontSize = domain.DefaultFontSize
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// NotFound wraps ErrNotFound with the card id.
func NotFound(id string) error {
	return fmt.Errorf("card %s: %w", id, ErrNotFound)
}

// ValidSize reports whether a committed size may be stored.
func ValidSize(w, h float64) error {
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("%w: non-positive size %vx%v", domain.ErrInvalidCard, w, h)
	}
	return nil
}
