/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import "goboard/internal/vector"

// Affordance class names applied to an element while a gesture runs.
const (
	AffordanceDragging = "is-dragging"
	AffordanceResizing = "is-resizing"
)

// PointerEvent is one pointer sample in screen space.
type PointerEvent struct {
	X, Y   float32
	Button int

	consumed bool
}

// Pos returns the event position.
func (e *PointerEvent) Pos() vector.Pt { return vector.Pt{X: e.X, Y: e.Y} }

// Consume marks the event as handled so ancestors and the background ignore it.
func (e *PointerEvent) Consume() { e.consumed = true }

// Consumed reports whether a listener already handled the event.
func (e *PointerEvent) Consumed() bool { return e.consumed }

// Unsubscribe detaches a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// Handle is the resize affordance appended to a card element.
type Handle interface {
	OnPointerDown(fn func(*PointerEvent)) Unsubscribe
	SetVisible(visible bool)
	Visible() bool
	// Remove detaches the handle from its card.
	Remove()
}

// Element is the narrow view of a mounted card the engine manipulates.
// Position and SetPosition are in canvas space; RenderedSize is the on-screen
// size in pixels; SetSize takes canvas units. The setters are visual only.
type Element interface {
	OnPointerDown(fn func(*PointerEvent)) Unsubscribe
	Position() vector.Pt
	SetPosition(p vector.Pt)
	RenderedSize() vector.Size
	SetSize(s vector.Size)
	AddAffordance(name string)
	RemoveAffordance(name string)
	// NewHandle creates a hidden handle as a child of the element.
	NewHandle() Handle
}

// Host delivers window-level pointer signals. Move and up events are observed
// at window level so a fast drag that leaves the card still ends the gesture.
type Host interface {
	// OnPointerDown receives presses after the element they hit, so a
	// listener can tell from Consumed whether a card already took it.
	OnPointerDown(fn func(*PointerEvent)) Unsubscribe
	OnPointerMove(fn func(*PointerEvent)) Unsubscribe
	OnPointerUp(fn func(*PointerEvent)) Unsubscribe
	// OnCancel fires when the host loses the pointer (focus loss, window leave).
	OnCancel(fn func()) Unsubscribe
}

// ScaleFunc reports the current viewport scale. It must return a positive value.
type ScaleFunc func() float32

func releaseAll(subs []Unsubscribe) {
	for _, u := range subs {
		if u != nil {
			u()
		}
	}
}
