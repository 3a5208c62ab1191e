/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"maps"
	"slices"

	"goboard/internal/vector"
)

// HeadlessHost is an in-memory Host for tests, scripted replays and as a
// reference for toolkit adapters. It is not safe for concurrent use.
type HeadlessHost struct {
	scale  ScaleFunc
	down   Listeners[func(*PointerEvent)]
	move   Listeners[func(*PointerEvent)]
	up     Listeners[func(*PointerEvent)]
	cancel Listeners[func()]
}

var _ Host = (*HeadlessHost)(nil)

// NewHeadlessHost returns a host whose elements render at scale. A nil scale
// means 1.
func NewHeadlessHost(scale ScaleFunc) *HeadlessHost {
	if scale == nil {
		scale = func() float32 { return 1 }
	}
	return &HeadlessHost{scale: scale}
}

// SetScale replaces the scale source, typically with Engine.Viewport.Scale.
func (h *HeadlessHost) SetScale(scale ScaleFunc) { h.scale = scale }

func (h *HeadlessHost) OnPointerDown(fn func(*PointerEvent)) Unsubscribe { return h.down.Add(fn) }
func (h *HeadlessHost) OnPointerMove(fn func(*PointerEvent)) Unsubscribe { return h.move.Add(fn) }
func (h *HeadlessHost) OnPointerUp(fn func(*PointerEvent)) Unsubscribe   { return h.up.Add(fn) }
func (h *HeadlessHost) OnCancel(fn func()) Unsubscribe                   { return h.cancel.Add(fn) }

// PressBackground presses the board where no card is.
func (h *HeadlessHost) PressBackground(x, y float32) *PointerEvent {
	ev := &PointerEvent{X: x, Y: y}
	Dispatch(&h.down, ev)
	return ev
}

// Move sends a window-level pointer move.
func (h *HeadlessHost) Move(x, y float32) { Dispatch(&h.move, &PointerEvent{X: x, Y: y}) }

// Release sends a window-level pointer up.
func (h *HeadlessHost) Release(x, y float32) { Dispatch(&h.up, &PointerEvent{X: x, Y: y}) }

// CancelPointer simulates the window losing the pointer.
func (h *HeadlessHost) CancelPointer() {
	for _, fn := range h.cancel.Snapshot() {
		fn()
	}
}

// ListenerCount returns the number of live window-level listeners.
func (h *HeadlessHost) ListenerCount() int {
	return h.down.Len() + h.move.Len() + h.up.Len() + h.cancel.Len()
}

// NewElement creates a card element at canvas position pos with canvas size size.
func (h *HeadlessHost) NewElement(pos vector.Pt, size vector.Size) *HeadlessElement {
	return &HeadlessElement{host: h, pos: pos, size: size, affordances: map[string]bool{}}
}

// HeadlessElement records the visual state the engine writes to it.
type HeadlessElement struct {
	host        *HeadlessHost
	pos         vector.Pt
	size        vector.Size
	affordances map[string]bool
	handles     []*HeadlessHandle
	down        Listeners[func(*PointerEvent)]
}

var _ Element = (*HeadlessElement)(nil)

func (e *HeadlessElement) OnPointerDown(fn func(*PointerEvent)) Unsubscribe { return e.down.Add(fn) }
func (e *HeadlessElement) Position() vector.Pt                              { return e.pos }
func (e *HeadlessElement) SetPosition(p vector.Pt)                          { e.pos = p }

// RenderedSize is the canvas size at the host's current scale.
func (e *HeadlessElement) RenderedSize() vector.Size {
	return vector.SizeToScreen(e.size, e.host.scale())
}

func (e *HeadlessElement) SetSize(s vector.Size)          { e.size = s }
func (e *HeadlessElement) Size() vector.Size              { return e.size }
func (e *HeadlessElement) AddAffordance(name string)      { e.affordances[name] = true }
func (e *HeadlessElement) RemoveAffordance(name string)   { delete(e.affordances, name) }
func (e *HeadlessElement) HasAffordance(name string) bool { return e.affordances[name] }
func (e *HeadlessElement) Affordances() []string          { return slices.Sorted(maps.Keys(e.affordances)) }
func (e *HeadlessElement) ListenerCount() int             { return e.down.Len() }

func (e *HeadlessElement) NewHandle() Handle {
	hd := &HeadlessHandle{el: e}
	e.handles = append(e.handles, hd)
	return hd
}

// Handles returns the handles still attached to the element.
func (e *HeadlessElement) Handles() []*HeadlessHandle {
	return slices.Clone(e.handles)
}

// Handle returns the first attached handle, or nil.
func (e *HeadlessElement) Handle() *HeadlessHandle {
	if len(e.handles) == 0 {
		return nil
	}
	return e.handles[0]
}

// Press presses the card body. The event reaches the element's listeners and
// then bubbles to the host.
func (e *HeadlessElement) Press(x, y float32) *PointerEvent {
	ev := &PointerEvent{X: x, Y: y}
	e.bubble(ev)
	return ev
}

func (e *HeadlessElement) bubble(ev *PointerEvent) {
	Dispatch(&e.down, ev)
	Dispatch(&e.host.down, ev)
}

// HeadlessHandle is a resize handle attached to a HeadlessElement.
type HeadlessHandle struct {
	el      *HeadlessElement
	visible bool
	removed bool
	down    Listeners[func(*PointerEvent)]
}

var _ Handle = (*HeadlessHandle)(nil)

func (h *HeadlessHandle) OnPointerDown(fn func(*PointerEvent)) Unsubscribe { return h.down.Add(fn) }
func (h *HeadlessHandle) SetVisible(v bool)                                { h.visible = v }
func (h *HeadlessHandle) Visible() bool                                    { return h.visible && !h.removed }
func (h *HeadlessHandle) Removed() bool                                    { return h.removed }
func (h *HeadlessHandle) ListenerCount() int                               { return h.down.Len() }

// Remove detaches the handle from its element. Pressing it afterwards does nothing.
func (h *HeadlessHandle) Remove() {
	if h.removed {
		return
	}
	h.removed = true
	h.el.handles = slices.DeleteFunc(h.el.handles, func(x *HeadlessHandle) bool { return x == h })
}

// Press presses the handle. The event bubbles through the element to the host.
// It returns nil if the handle was removed.
func (h *HeadlessHandle) Press(x, y float32) *PointerEvent {
	if h.removed {
		return nil
	}
	ev := &PointerEvent{X: x, Y: y}
	Dispatch(&h.down, ev)
	h.el.bubble(ev)
	return ev
}
