/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"log/slog"

	applog "goboard/internal/log"
	"goboard/internal/vector"
)

// Size floors in canvas units; they keep cards from collapsing to nothing.
const (
	DefaultMinWidth  = 60
	DefaultMinHeight = 30
)

// ResizeConfig tunes the resize controller. Floors may be raised above the
// defaults, never lowered; smaller values are clamped up.
type ResizeConfig struct {
	MinWidth  float32
	MinHeight float32
}

func (c ResizeConfig) withDefaults() ResizeConfig {
	c.MinWidth = max(c.MinWidth, DefaultMinWidth)
	c.MinHeight = max(c.MinHeight, DefaultMinHeight)
	return c
}

// ResizeController gives every registered card a bottom-right handle. Only the
// selected card's handle is visible. Dragging a handle grows or shrinks the
// card from its top-left anchor and commits the final size through onResizeEnd.
type ResizeController struct {
	lock        *GestureLock
	reg         *Registry
	sel         *Selection
	getScale    ScaleFunc
	onResizeEnd func(cardID string, w, h float32)
	cfg         ResizeConfig
	log         *slog.Logger

	g         *resizeGesture
	subs      []Unsubscribe
	destroyed bool
}

type resizeGesture struct {
	tok       *Token
	cardID    string
	el        Element
	start     vector.Pt   // screen
	startSize vector.Size // canvas
}

// NewResizeController binds to host's window-level signals. lock and sel may be
// shared with other components; nil creates private ones.
func NewResizeController(host Host, lock *GestureLock, sel *Selection, onResizeEnd func(cardID string, w, h float32), getScale ScaleFunc, cfg ResizeConfig) *ResizeController {
	if lock == nil {
		lock = NewGestureLock()
	}
	if sel == nil {
		sel = NewSelection()
	}
	l := applog.WithComponent("resize")
	r := &ResizeController{
		lock:        lock,
		reg:         newRegistry("resize", l),
		sel:         sel,
		getScale:    getScale,
		onResizeEnd: onResizeEnd,
		cfg:         cfg.withDefaults(),
		log:         l,
	}
	r.subs = []Unsubscribe{
		host.OnPointerMove(r.move),
		host.OnPointerUp(r.end),
		host.OnCancel(r.Cancel),
		sel.OnChange(r.selectionChanged),
	}
	return r
}

// Register appends a hidden resize handle to el and binds it to cardID.
// Registering a live id again returns ErrAlreadyRegistered.
func (r *ResizeController) Register(el Element, cardID string) error {
	if r.destroyed {
		return ErrDestroyed
	}
	if err := r.reg.reserve(el, cardID); err != nil {
		return err
	}
	h := el.NewHandle()
	h.SetVisible(r.sel.IsSelected(cardID))
	sub := h.OnPointerDown(func(ev *PointerEvent) { r.begin(cardID, el, ev) })
	r.reg.put(&registration{cardID: cardID, el: el, handle: h, subs: []Unsubscribe{sub}})
	return nil
}

// Unregister detaches the handle's listener and removes the handle. A resize in
// progress on the card is cancelled first. Unknown ids are ignored.
func (r *ResizeController) Unregister(cardID string) {
	if r.g != nil && r.g.cardID == cardID {
		r.cancel("unregister")
	}
	r.reg.drop(cardID)
}

// SetSelected shows cardID's handle and hides the previous one. "" hides all.
func (r *ResizeController) SetSelected(cardID string) { r.sel.Set(cardID) }

// Selection returns the gate driving handle visibility.
func (r *ResizeController) Selection() *Selection { return r.sel }

// Registered exposes the controller's bookkeeping for diagnostics.
func (r *ResizeController) Registered() *Registry { return r.reg }

// Resizing returns the card being resized, if any.
func (r *ResizeController) Resizing() (string, bool) {
	if r.g == nil {
		return "", false
	}
	return r.g.cardID, true
}

// Cancel aborts the active resize and restores the card's start size.
func (r *ResizeController) Cancel() { r.cancel("host") }

// Destroy releases the window-level listeners and every handle. The controller
// is inert afterwards; further use is a caller error.
func (r *ResizeController) Destroy() {
	r.cancel("destroy")
	releaseAll(r.subs)
	r.subs = nil
	r.reg.dropAll()
	r.destroyed = true
}

func (r *ResizeController) selectionChanged(prev, next string) {
	for _, id := range [2]string{prev, next} {
		if id == "" {
			continue
		}
		if reg, ok := r.reg.get(id); ok && reg.handle != nil {
			reg.handle.SetVisible(r.sel.IsSelected(id))
		}
	}
}

func (r *ResizeController) begin(cardID string, el Element, ev *PointerEvent) {
	// Only the selected card's handle is live. A press on a hidden handle
	// lands on the card body.
	if !r.sel.IsSelected(cardID) {
		return
	}
	// The handle sits inside the card: keep the press from reaching the drag
	// listener or the background even if the lock is taken.
	ev.Consume()
	tok, ok := r.lock.Acquire(GestureResize, cardID)
	if !ok {
		r.log.Debug("resize blocked", slog.String("card", cardID))
		return
	}
	scale := r.getScale()
	r.g = &resizeGesture{
		tok:       tok,
		cardID:    cardID,
		el:        el,
		start:     ev.Pos(),
		startSize: vector.SizeToCanvas(el.RenderedSize(), scale),
	}
	el.AddAffordance(AffordanceResizing)
	r.log.Debug("resize start", slog.String("card", cardID), slog.Float64("w", float64(r.g.startSize.W)), slog.Float64("h", float64(r.g.startSize.H)))
}

// sizeAt applies the canvas-space pointer displacement to the start size.
func (r *ResizeController) sizeAt(ev *PointerEvent) vector.Size {
	dx, dy := vector.ToCanvas(ev.X-r.g.start.X, ev.Y-r.g.start.Y, r.getScale())
	return vector.Size{
		W: max(r.cfg.MinWidth, r.g.startSize.W+dx),
		H: max(r.cfg.MinHeight, r.g.startSize.H+dy),
	}
}

func (r *ResizeController) move(ev *PointerEvent) {
	if r.g == nil {
		return
	}
	r.g.el.SetSize(r.sizeAt(ev))
}

func (r *ResizeController) end(ev *PointerEvent) {
	if r.g == nil {
		return
	}
	r.g.el.SetSize(r.sizeAt(ev))
	g := r.g
	r.g = nil
	g.el.RemoveAffordance(AffordanceResizing)
	final := vector.SizeToCanvas(g.el.RenderedSize(), r.getScale())
	// Dividing the rendered size back out can land a hair under the floor.
	final.W = max(final.W, r.cfg.MinWidth)
	final.H = max(final.H, r.cfg.MinHeight)
	g.tok.Release()
	r.log.Debug("resize commit", slog.String("card", g.cardID), slog.Float64("w", float64(final.W)), slog.Float64("h", float64(final.H)))
	if r.onResizeEnd != nil {
		r.onResizeEnd(g.cardID, final.W, final.H)
	}
}

func (r *ResizeController) cancel(reason string) {
	g := r.g
	if g == nil {
		return
	}
	r.g = nil
	g.el.SetSize(g.startSize)
	g.el.RemoveAffordance(AffordanceResizing)
	g.tok.Release()
	r.log.Debug("resize cancelled", slog.String("card", g.cardID), slog.String("reason", reason))
}
