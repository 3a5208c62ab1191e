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

// DragConfig tunes the drag controller. The zero value disables snapping.
type DragConfig struct {
	Snap vector.SnapOptions
}

// DragController moves one card at a time. Pointer-down on a registered
// element starts a drag; window-level moves update the element's visual
// position; the window-level release commits through onDragEnd once.
type DragController struct {
	lock      *GestureLock
	reg       *Registry
	getScale  ScaleFunc
	onDragEnd func(cardID string, x, y float32)
	cfg       DragConfig
	log       *slog.Logger

	g         *dragGesture
	hostSubs  []Unsubscribe
	destroyed bool
}

type dragGesture struct {
	tok    *Token
	cardID string
	el     Element
	start  vector.Pt   // screen
	anchor vector.Pt   // canvas position at start
	size   vector.Size // canvas size at start, for snapping
}

// NewDragController binds to host's window-level signals. lock may be shared
// with other controllers; nil creates a private one.
func NewDragController(host Host, lock *GestureLock, onDragEnd func(cardID string, x, y float32), getScale ScaleFunc, cfg DragConfig) *DragController {
	if lock == nil {
		lock = NewGestureLock()
	}
	l := applog.WithComponent("drag")
	d := &DragController{
		lock:      lock,
		reg:       newRegistry("drag", l),
		getScale:  getScale,
		onDragEnd: onDragEnd,
		cfg:       cfg,
		log:       l,
	}
	d.hostSubs = []Unsubscribe{
		host.OnPointerMove(d.move),
		host.OnPointerUp(d.end),
		host.OnCancel(d.Cancel),
	}
	return d
}

// Register binds pointer-down on el to start dragging cardID.
// Registering a live id again returns ErrAlreadyRegistered.
func (d *DragController) Register(el Element, cardID string) error {
	if d.destroyed {
		return ErrDestroyed
	}
	if err := d.reg.reserve(el, cardID); err != nil {
		return err
	}
	sub := el.OnPointerDown(func(ev *PointerEvent) { d.begin(cardID, el, ev) })
	d.reg.put(&registration{cardID: cardID, el: el, subs: []Unsubscribe{sub}})
	return nil
}

// Unregister detaches cardID's listener. A drag in progress on the card is
// cancelled first. Unknown ids are ignored.
func (d *DragController) Unregister(cardID string) {
	if d.g != nil && d.g.cardID == cardID {
		d.cancel("unregister")
	}
	d.reg.drop(cardID)
}

// Registered exposes the controller's bookkeeping for diagnostics.
func (d *DragController) Registered() *Registry { return d.reg }

// Dragging returns the card being dragged, if any.
func (d *DragController) Dragging() (string, bool) {
	if d.g == nil {
		return "", false
	}
	return d.g.cardID, true
}

// Cancel aborts the active drag and restores the card's start position.
func (d *DragController) Cancel() { d.cancel("host") }

// Destroy cancels any drag, detaches all listeners and clears registrations.
func (d *DragController) Destroy() {
	d.cancel("destroy")
	releaseAll(d.hostSubs)
	d.hostSubs = nil
	d.reg.dropAll()
	d.destroyed = true
}

func (d *DragController) begin(cardID string, el Element, ev *PointerEvent) {
	if ev.Consumed() {
		return
	}
	tok, ok := d.lock.Acquire(GestureDrag, cardID)
	if !ok {
		if g, held := d.lock.Active(); held {
			d.log.Debug("drag blocked", slog.String("card", cardID), slog.String("holder", g.Kind.String()), slog.String("holder_card", g.CardID))
		}
		return
	}
	ev.Consume()
	d.g = &dragGesture{
		tok:    tok,
		cardID: cardID,
		el:     el,
		start:  ev.Pos(),
		anchor: el.Position(),
		size:   vector.SizeToCanvas(el.RenderedSize(), d.getScale()),
	}
	el.AddAffordance(AffordanceDragging)
	d.log.Debug("drag start", slog.String("card", cardID), slog.Float64("x", float64(d.g.anchor.X)), slog.Float64("y", float64(d.g.anchor.Y)))
}

// positionAt converts the pointer displacement since start into a canvas position.
func (d *DragController) positionAt(ev *PointerEvent) vector.Pt {
	dx, dy := vector.ToCanvas(ev.X-d.g.start.X, ev.Y-d.g.start.Y, d.getScale())
	p := d.g.anchor.Add(vector.Pt{X: dx, Y: dy})
	if d.cfg.Snap.Threshold > 0 {
		snapped, _ := vector.Snap(vector.RectAt(p, d.g.size), d.neighbours(), d.cfg.Snap)
		p = snapped.Min()
	}
	return p
}

// neighbours returns the canvas rects of every other registered card.
func (d *DragController) neighbours() []vector.Rect {
	scale := d.getScale()
	out := make([]vector.Rect, 0, d.reg.Len())
	for _, id := range d.reg.IDs() {
		if id == d.g.cardID {
			continue
		}
		reg := d.reg.entries[id]
		out = append(out, vector.RectAt(reg.el.Position(), vector.SizeToCanvas(reg.el.RenderedSize(), scale)))
	}
	return out
}

func (d *DragController) move(ev *PointerEvent) {
	if d.g == nil {
		return
	}
	d.g.el.SetPosition(d.positionAt(ev))
}

func (d *DragController) end(ev *PointerEvent) {
	if d.g == nil {
		return
	}
	p := d.positionAt(ev)
	g := d.g
	d.g = nil
	g.el.SetPosition(p)
	g.el.RemoveAffordance(AffordanceDragging)
	g.tok.Release()
	d.log.Debug("drag commit", slog.String("card", g.cardID), slog.Float64("x", float64(p.X)), slog.Float64("y", float64(p.Y)))
	if d.onDragEnd != nil {
		d.onDragEnd(g.cardID, p.X, p.Y)
	}
}

func (d *DragController) cancel(reason string) {
	g := d.g
	if g == nil {
		return
	}
	d.g = nil
	g.el.SetPosition(g.anchor)
	g.el.RemoveAffordance(AffordanceDragging)
	g.tok.Release()
	d.log.Debug("drag cancelled", slog.String("card", g.cardID), slog.String("reason", reason))
}
