/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"errors"
	"fmt"
	"log/slog"

	applog "goboard/internal/log"
	"goboard/internal/vector"
)

// Config bundles the per-controller settings.
type Config struct {
	Resize   ResizeConfig
	Viewport ViewportConfig
	Snap     vector.SnapOptions
}

// Callbacks are the engine's outputs. Each commit callback fires exactly once
// per completed gesture; cancelled gestures fire nothing.
type Callbacks struct {
	OnDragEnd   func(cardID string, x, y float32)
	OnResizeEnd func(cardID string, w, h float32)
	// OnViewportPresent receives every intermediate viewport during pan and zoom.
	OnViewportPresent func(vector.Viewport)
	// OnViewportChange receives the settled viewport.
	OnViewportChange func(vector.Viewport)
}

// Engine wires the controllers of one board around a single gesture lock.
type Engine struct {
	Lock      *GestureLock
	Selection *Selection
	Drag      *DragController
	Resize    *ResizeController
	Viewport  *ViewportController

	log     *slog.Logger
	mounted map[string]Unsubscribe
	hostSub Unsubscribe
}

// NewEngine builds the controllers on host. Both card controllers read their
// scale from the viewport controller.
func NewEngine(host Host, initial vector.Viewport, cb Callbacks, cfg Config) *Engine {
	e := &Engine{
		Lock:      NewGestureLock(),
		Selection: NewSelection(),
		log:       applog.WithComponent("engine"),
		mounted:   make(map[string]Unsubscribe),
	}
	// Registered before the viewport's pan listener so it sees the press
	// before a pan consumes it.
	e.hostSub = host.OnPointerDown(e.backgroundPress)
	e.Viewport = NewViewportController(host, e.Lock, initial, cb.OnViewportPresent, cb.OnViewportChange, cfg.Viewport)
	e.Drag = NewDragController(host, e.Lock, cb.OnDragEnd, e.Viewport.Scale, DragConfig{Snap: cfg.Snap})
	e.Resize = NewResizeController(host, e.Lock, e.Selection, cb.OnResizeEnd, e.Viewport.Scale, cfg.Resize)
	return e
}

// Mount registers el with both card controllers. On failure nothing stays
// registered.
func (e *Engine) Mount(el Element, cardID string) error {
	if err := e.Drag.Register(el, cardID); err != nil {
		return fmt.Errorf("mount %s: %w", cardID, err)
	}
	if err := e.Resize.Register(el, cardID); err != nil {
		e.Drag.Unregister(cardID)
		return fmt.Errorf("mount %s: %w", cardID, err)
	}
	e.mounted[cardID] = el.OnPointerDown(func(ev *PointerEvent) { e.cardPress(cardID) })
	return nil
}

// Unmount cancels any gesture on the card and releases everything Mount bound.
func (e *Engine) Unmount(cardID string) {
	e.Drag.Unregister(cardID)
	e.Resize.Unregister(cardID)
	if u, ok := e.mounted[cardID]; ok {
		u()
		delete(e.mounted, cardID)
	}
	if e.Selection.IsSelected(cardID) {
		e.Selection.Clear()
	}
}

// Mounted reports whether cardID is mounted.
func (e *Engine) Mounted(cardID string) bool {
	_, ok := e.mounted[cardID]
	return ok
}

// Select makes cardID the single selected card; "" clears the selection.
// Unknown ids are rejected.
func (e *Engine) Select(cardID string) error {
	if cardID != "" && !e.Mounted(cardID) {
		return fmt.Errorf("select %s: %w", cardID, ErrUnknownCard)
	}
	e.Resize.SetSelected(cardID)
	return nil
}

// ErrUnknownCard is returned by Select for a card that is not mounted.
var ErrUnknownCard = errors.New("card not mounted")

// Cancel aborts whichever gesture is active.
func (e *Engine) Cancel() {
	e.Drag.Cancel()
	e.Resize.Cancel()
	e.Viewport.Cancel()
}

// Destroy tears down every controller. The engine is unusable afterwards.
func (e *Engine) Destroy() {
	for id, u := range e.mounted {
		u()
		delete(e.mounted, id)
	}
	if e.hostSub != nil {
		e.hostSub()
		e.hostSub = nil
	}
	e.Drag.Destroy()
	e.Resize.Destroy()
	e.Viewport.Destroy()
	e.Selection.Clear()
	e.log.Debug("engine destroyed")
}

// cardPress selects the pressed card unless another card's gesture blocked it.
func (e *Engine) cardPress(cardID string) {
	if g, held := e.Lock.Active(); held && g.CardID != cardID {
		return
	}
	e.Resize.SetSelected(cardID)
}

// backgroundPress clears the selection when the press hit no card.
func (e *Engine) backgroundPress(ev *PointerEvent) {
	if ev.Consumed() || e.Lock.Held() {
		return
	}
	e.Selection.Clear()
}
