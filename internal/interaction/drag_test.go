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
	"math"
	"testing"

	"goboard/internal/vector"
)

type pos struct {
	id   string
	x, y float32
}

type dragFixture struct {
	host    *HeadlessHost
	scale   float32
	drag    *DragController
	commits []pos
}

func newDragFixture(t *testing.T, scale float32, cfg DragConfig) *dragFixture {
	t.Helper()
	f := &dragFixture{scale: scale}
	get := func() float32 { return f.scale }
	f.host = NewHeadlessHost(get)
	f.drag = NewDragController(f.host, nil, func(id string, x, y float32) {
		f.commits = append(f.commits, pos{id, x, y})
	}, get, cfg)
	t.Cleanup(f.drag.Destroy)
	return f
}

func (f *dragFixture) card(t *testing.T, id string, x, y float32) *HeadlessElement {
	t.Helper()
	el := f.host.NewElement(vector.Pt{X: x, Y: y}, vector.Size{W: 100, H: 50})
	if err := f.drag.Register(el, id); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
	return el
}

func TestDrag_CommitsCanvasPositionOnceAtScale2(t *testing.T) {
	f := newDragFixture(t, 2, DragConfig{})
	el := f.card(t, "a", 100, 100)

	el.Press(50, 50)
	if !el.HasAffordance(AffordanceDragging) {
		t.Fatal("expected dragging affordance during gesture")
	}
	f.host.Move(60, 55)
	f.host.Move(70, 60)
	if got := el.Position(); got != (vector.Pt{X: 110, Y: 105}) {
		t.Fatalf("visual position during drag = %+v", got)
	}
	if len(f.commits) != 0 {
		t.Fatalf("committed during drag: %v", f.commits)
	}
	f.host.Release(70, 60)
	if len(f.commits) != 1 || f.commits[0] != (pos{"a", 110, 105}) {
		t.Fatalf("commits = %v", f.commits)
	}
	if el.HasAffordance(AffordanceDragging) {
		t.Fatal("affordance not removed")
	}
	// Moves and releases after the gesture are ignored.
	f.host.Move(200, 200)
	f.host.Release(200, 200)
	if len(f.commits) != 1 {
		t.Fatalf("extra commits: %v", f.commits)
	}
}

// approx compares float32 geometry with a tolerance relative to want.
func approx(got, want float32) bool {
	return math.Abs(float64(got-want)) <= 1e-4*math.Max(1, math.Abs(float64(want)))
}

func TestDrag_CommitIsAnchorPlusScaledDelta(t *testing.T) {
	deltas := [][2]float32{{7, -3}, {-13, 29}, {0.5, 101}, {-333, -1}, {1, 1}}
	anchors := []vector.Pt{{X: 100, Y: 100}, {X: -250, Y: 40}, {X: 0.25, Y: -999}}
	for _, scale := range []float32{0.1, 0.5, 1, 3, 4} {
		for _, anchor := range anchors {
			for _, d := range deltas {
				f := newDragFixture(t, scale, DragConfig{})
				el := f.card(t, "a", anchor.X, anchor.Y)
				press := vector.Pt{X: 37, Y: 11}
				el.Press(press.X, press.Y)
				f.host.Move(press.X+d[0]/3, press.Y+d[1]/3)
				f.host.Release(press.X+d[0], press.Y+d[1])
				if len(f.commits) != 1 {
					t.Fatalf("scale %v anchor %v delta %v: commits = %v", scale, anchor, d, f.commits)
				}
				c := f.commits[0]
				wx, wy := anchor.X+d[0]/scale, anchor.Y+d[1]/scale
				if c.id != "a" || !approx(c.x, wx) || !approx(c.y, wy) {
					t.Fatalf("scale %v anchor %v delta %v: committed (%v,%v), want (%v,%v)", scale, anchor, d, c.x, c.y, wx, wy)
				}
			}
		}
	}
}

func TestDrag_UsesReleaseCoordinates(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 0, 0)
	el.Press(10, 10)
	f.host.Move(20, 20)
	f.host.Release(40, 30)
	if len(f.commits) != 1 || f.commits[0] != (pos{"a", 30, 20}) {
		t.Fatalf("commits = %v", f.commits)
	}
}

func TestDrag_SecondCardBlockedWhileFirstDrags(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	a := f.card(t, "a", 0, 0)
	b := f.card(t, "b", 300, 0)

	a.Press(10, 10)
	b.Press(310, 10)
	f.host.Move(30, 10)
	if got := b.Position(); got != (vector.Pt{X: 300, Y: 0}) {
		t.Fatalf("b moved: %+v", got)
	}
	if b.HasAffordance(AffordanceDragging) {
		t.Fatal("b should not get the affordance")
	}
	f.host.Release(30, 10)
	if len(f.commits) != 1 || f.commits[0].id != "a" {
		t.Fatalf("commits = %v", f.commits)
	}
	if id, ok := f.drag.Dragging(); ok {
		t.Fatalf("still dragging %s", id)
	}
}

func TestDrag_DoubleRegisterIsError(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 0, 0)
	err := f.drag.Register(el, "a")
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if n := el.ListenerCount(); n != 1 {
		t.Fatalf("listener count = %d, want 1", n)
	}
	if err := f.drag.Register(nil, "b"); !errors.Is(err, ErrNilElement) {
		t.Fatalf("nil element: %v", err)
	}
	if err := f.drag.Register(el, ""); !errors.Is(err, ErrEmptyCardID) {
		t.Fatalf("empty id: %v", err)
	}
}

func TestDrag_UnregisterDetaches(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 0, 0)
	f.drag.Unregister("a")
	f.drag.Unregister("a") // unknown id: no-op
	if el.ListenerCount() != 0 {
		t.Fatalf("listeners left: %d", el.ListenerCount())
	}
	el.Press(0, 0)
	f.host.Release(50, 50)
	if len(f.commits) != 0 {
		t.Fatalf("unregistered card committed: %v", f.commits)
	}
	// The id can be registered again after unregister.
	if err := f.drag.Register(el, "a"); err != nil {
		t.Fatalf("re-register: %v", err)
	}
}

func TestDrag_CancelRevertsWithoutCommit(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 5, 5)
	el.Press(0, 0)
	f.host.Move(40, 40)
	f.host.CancelPointer()
	if got := el.Position(); got != (vector.Pt{X: 5, Y: 5}) {
		t.Fatalf("position after cancel = %+v", got)
	}
	f.host.Release(40, 40)
	if len(f.commits) != 0 {
		t.Fatalf("commits after cancel: %v", f.commits)
	}
	// The lock is free again.
	el.Press(0, 0)
	if _, ok := f.drag.Dragging(); !ok {
		t.Fatal("new drag should start after cancel")
	}
}

func TestDrag_UnregisterDuringGestureCancels(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	a := f.card(t, "a", 0, 0)
	b := f.card(t, "b", 200, 0)
	a.Press(0, 0)
	f.host.Move(10, 10)
	f.drag.Unregister("a")
	f.host.Release(10, 10)
	if len(f.commits) != 0 {
		t.Fatalf("commits: %v", f.commits)
	}
	b.Press(200, 0)
	if id, ok := f.drag.Dragging(); !ok || id != "b" {
		t.Fatal("lock was not released by unregister")
	}
}

func TestDrag_IgnoresConsumedPress(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 0, 0)
	h := el.NewHandle()
	h.OnPointerDown(func(ev *PointerEvent) { ev.Consume() })
	h.(*HeadlessHandle).Press(90, 40)
	if _, ok := f.drag.Dragging(); ok {
		t.Fatal("consumed press must not start a drag")
	}
}

func TestDrag_SnapsToNeighbour(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{Snap: vector.SnapOptions{Threshold: 6, Edges: true}})
	f.card(t, "a", 0, 0) // 100x50
	b := f.card(t, "b", 300, 200)
	b.Press(300, 200)
	// Drop b with its left edge 3 units right of a's right edge, top 2 below a's top.
	f.host.Release(103, 2)
	if len(f.commits) != 1 || f.commits[0] != (pos{"b", 100, 0}) {
		t.Fatalf("commits = %v", f.commits)
	}
}

func TestDrag_DestroyDetachesEverything(t *testing.T) {
	f := newDragFixture(t, 1, DragConfig{})
	el := f.card(t, "a", 0, 0)
	before := f.host.ListenerCount()
	f.drag.Destroy()
	if got := f.host.ListenerCount(); got != before-3 {
		t.Fatalf("host listeners %d -> %d", before, got)
	}
	if el.ListenerCount() != 0 {
		t.Fatal("element listener survived destroy")
	}
	if err := f.drag.Register(el, "a"); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("register after destroy: %v", err)
	}
}
