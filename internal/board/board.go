/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package board binds the interaction engine to a storage.Store: every
// committed gesture is written to the store exactly once. Store failures are
// logged and recorded; they never interrupt interaction.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"goboard/internal/config"
	"goboard/internal/domain"
	"goboard/internal/interaction"
	applog "goboard/internal/log"
	"goboard/internal/storage"
	"goboard/internal/vector"
)

// DefaultTimeout bounds each store write triggered by a gesture.
const DefaultTimeout = 5 * time.Second

// ErrNoSelection is returned by AdjustFontSize when nothing is selected.
var ErrNoSelection = errors.New("no card selected")

// ErrNotText is returned by AdjustFontSize and UpdateContent for non-text cards.
var ErrNotText = errors.New("only text cards have editable text")

// Options configures a Board.
type Options struct {
	Engine  interaction.Config
	Timeout time.Duration
	// OnViewportPresent receives intermediate viewports while panning/zooming.
	OnViewportPresent func(vector.Viewport)
}

// OptionsFromConfig maps the user configuration onto engine settings.
func OptionsFromConfig(c config.BoardConfig) Options {
	o := Options{Engine: interaction.Config{
		Resize:   interaction.ResizeConfig{MinWidth: float32(c.MinWidth), MinHeight: float32(c.MinHeight)},
		Viewport: interaction.ViewportConfig{MinScale: float32(c.MinScale), MaxScale: float32(c.MaxScale), ZoomStep: float32(c.ZoomStep)},
	}}
	if c.Snap.Enabled {
		o.Engine.Snap = vector.SnapOptions{Threshold: float32(c.Snap.Threshold), Edges: c.Snap.Edges, Centers: c.Snap.Centers}
	}
	return o
}

// Board is a loaded board: cached cards, the engine and its store.
type Board struct {
	Engine *interaction.Engine

	store   storage.Store
	timeout time.Duration
	log     *slog.Logger
	// base carries New's log scope without its cancellation.
	base context.Context

	mu      sync.Mutex
	cards   map[string]domain.Card
	order   []string
	commits []Commit
}

// New loads the persisted viewport and cards from st and builds an engine on host.
func New(ctx context.Context, st storage.Store, host interaction.Host, opts Options) (*Board, error) {
	vp, err := st.LoadViewport(ctx)
	if err != nil {
		return nil, fmt.Errorf("load viewport: %w", err)
	}
	cards, err := st.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	b := &Board{
		store:   st,
		timeout: opts.Timeout,
		log:     applog.WithComponent("board"),
		base:    context.WithoutCancel(ctx),
		cards:   make(map[string]domain.Card, len(cards)),
	}
	if b.timeout <= 0 {
		b.timeout = DefaultTimeout
	}
	for _, c := range cards {
		b.cards[c.ID] = c
		b.order = append(b.order, c.ID)
	}
	b.Engine = interaction.NewEngine(host, ToVectorViewport(vp), interaction.Callbacks{
		OnDragEnd:         b.commitPosition,
		OnResizeEnd:       b.commitSize,
		OnViewportPresent: opts.OnViewportPresent,
		OnViewportChange:  b.commitViewport,
	}, opts.Engine)
	b.log.DebugContext(ctx, "board loaded", slog.Int("cards", len(cards)), slog.Float64("scale", vp.Scale))
	return b, nil
}

// ToVectorViewport converts the persisted viewport into the engine's form.
func ToVectorViewport(v domain.Viewport) vector.Viewport {
	return vector.Viewport{Scale: float32(v.Scale), TranslateX: float32(v.TranslateX), TranslateY: float32(v.TranslateY)}
}

// FromVectorViewport converts the engine's viewport into the persisted form.
func FromVectorViewport(v vector.Viewport) domain.Viewport {
	return domain.Viewport{ID: domain.MainViewportID, Scale: float64(v.Scale), TranslateX: float64(v.TranslateX), TranslateY: float64(v.TranslateY)}
}

// Geometry returns the canvas position and size a card element starts with.
func Geometry(c domain.Card) (vector.Pt, vector.Size) {
	s := c.EffectiveSize()
	return vector.Pt{X: float32(c.Position.X), Y: float32(c.Position.Y)}, vector.Size{W: float32(s.W), H: float32(s.H)}
}

// Cards returns the cached cards in load/creation order.
func (b *Board) Cards() []domain.Card {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Card, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.cards[id])
	}
	return out
}

// Card returns the cached card.
func (b *Board) Card(id string) (domain.Card, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[id]
	return c, ok
}

// Store returns the underlying store.
func (b *Board) Store() storage.Store { return b.store }

// Mount registers a card element with the engine.
func (b *Board) Mount(el interaction.Element, cardID string) error {
	if _, ok := b.Card(cardID); !ok {
		return storage.NotFound(cardID)
	}
	return b.Engine.Mount(el, cardID)
}

// Unmount detaches a card element.
func (b *Board) Unmount(cardID string) { b.Engine.Unmount(cardID) }

// Select selects a mounted card; "" clears the selection.
func (b *Board) Select(cardID string) error { return b.Engine.Select(cardID) }

// AddCard creates a card in the store and caches it. The caller mounts its element.
func (b *Board) AddCard(ctx context.Context, c domain.Card) (domain.Card, error) {
	c, err := b.store.CreateCard(ctx, c)
	if err != nil {
		return c, err
	}
	b.mu.Lock()
	b.cards[c.ID] = c
	b.order = append(b.order, c.ID)
	b.mu.Unlock()
	return c, nil
}

// RemoveCard deletes a card from the store, then unmounts it. A failed
// delete leaves the card mounted and cached.
func (b *Board) RemoveCard(ctx context.Context, id string) error {
	if err := b.store.DeleteCard(ctx, id); err != nil {
		b.log.WarnContext(applog.ContextWithCard(ctx, id), "delete card failed", slog.Any("err", err))
		return err
	}
	b.Engine.Unmount(id)
	b.mu.Lock()
	delete(b.cards, id)
	for i, oid := range b.order {
		if oid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	return nil
}

// AdjustFontSize steps the selected text card's font size up or down and
// persists it. It returns the new size.
func (b *Board) AdjustFontSize(ctx context.Context, up bool) (int, error) {
	id, ok := b.Engine.Selection.Selected()
	if !ok {
		return 0, ErrNoSelection
	}
	c, ok := b.Card(id)
	if !ok {
		return 0, storage.NotFound(id)
	}
	if c.Type != domain.CardText {
		return 0, ErrNotText
	}
	cur := c.EffectiveFontSize()
	next := domain.StepFontSize(cur, up)
	if next == cur {
		return cur, nil
	}
	if err := b.store.UpdateCardFontSize(ctx, id, next); err != nil {
		return cur, err
	}
	b.update(id, func(c *domain.Card) { c.FontSize = next })
	b.record(Commit{Kind: CommitFontSize, CardID: id, FontSize: next})
	return next, nil
}

// UpdateContent replaces a text card's content. Unchanged text is not
// written; the result reports whether a commit happened.
func (b *Board) UpdateContent(ctx context.Context, id, content string) (bool, error) {
	c, ok := b.Card(id)
	if !ok {
		return false, storage.NotFound(id)
	}
	if c.Type != domain.CardText {
		return false, ErrNotText
	}
	if content == c.Content {
		return false, nil
	}
	ctx = applog.ContextWithGesture(applog.ContextWithCard(ctx, id), "edit")
	if err := b.store.UpdateCardContent(ctx, id, content); err != nil {
		b.log.ErrorContext(ctx, "persist content failed", slog.Any("err", err))
		return false, err
	}
	b.update(id, func(c *domain.Card) { c.Content = content })
	b.record(Commit{Kind: CommitContent, CardID: id, Content: &content})
	b.log.DebugContext(ctx, "content committed", slog.Int("len", len(content)))
	return true, nil
}

// Close tears down the engine. The store stays open; its owner closes it.
func (b *Board) Close() { b.Engine.Destroy() }

func (b *Board) update(id string, fn func(*domain.Card)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c, ok := b.cards[id]; ok {
		fn(&c)
		b.cards[id] = c
	}
}

// writeCtx bounds a gesture commit and scopes its log records.
func (b *Board) writeCtx(cardID, gesture string) (context.Context, context.CancelFunc) {
	ctx := applog.WithScope(b.base, applog.Scope{Card: cardID, Gesture: gesture})
	return context.WithTimeout(ctx, b.timeout)
}

func (b *Board) commitPosition(id string, x, y float32) {
	p := domain.Point{X: float64(x), Y: float64(y)}
	ctx, cancel := b.writeCtx(id, interaction.GestureDrag.String())
	defer cancel()
	err := b.store.UpdateCardPosition(ctx, id, p.X, p.Y)
	if err == nil {
		b.update(id, func(c *domain.Card) { c.Position = p })
		b.log.DebugContext(ctx, "position committed", slog.Float64("x", p.X), slog.Float64("y", p.Y))
	} else {
		b.log.ErrorContext(ctx, "persist position failed", slog.Any("err", err))
	}
	b.record(Commit{Kind: CommitPosition, CardID: id, Position: &p, Err: errString(err)})
}

func (b *Board) commitSize(id string, w, h float32) {
	s := domain.Size{W: float64(w), H: float64(h)}
	ctx, cancel := b.writeCtx(id, interaction.GestureResize.String())
	defer cancel()
	err := b.store.UpdateCardSize(ctx, id, s.W, s.H)
	if err == nil {
		b.update(id, func(c *domain.Card) { c.Size = &s })
		b.log.DebugContext(ctx, "size committed", slog.Float64("w", s.W), slog.Float64("h", s.H))
	} else {
		b.log.ErrorContext(ctx, "persist size failed", slog.Any("err", err))
	}
	b.record(Commit{Kind: CommitSize, CardID: id, Size: &s, Err: errString(err)})
}

func (b *Board) commitViewport(v vector.Viewport) {
	dv := FromVectorViewport(v)
	ctx, cancel := b.writeCtx("", "viewport")
	defer cancel()
	err := b.store.SaveViewport(ctx, dv)
	if err != nil {
		b.log.ErrorContext(ctx, "persist viewport failed", slog.Any("err", err))
	}
	b.record(Commit{Kind: CommitViewport, Viewport: &dv, Err: errString(err)})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
