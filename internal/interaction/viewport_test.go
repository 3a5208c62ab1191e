/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"testing"

	"goboard/internal/vector"
)

type viewportFixture struct {
	host      *HeadlessHost
	lock      *GestureLock
	vc        *ViewportController
	presented []vector.Viewport
	commits   []vector.Viewport
}

func newViewportFixture(t *testing.T, initial vector.Viewport, cfg ViewportConfig) *viewportFixture {
	t.Helper()
	f := &viewportFixture{host: NewHeadlessHost(nil), lock: NewGestureLock()}
	f.vc = NewViewportController(f.host, f.lock, initial,
		func(v vector.Viewport) { f.presented = append(f.presented, v) },
		func(v vector.Viewport) { f.commits = append(f.commits, v) },
		cfg)
	t.Cleanup(f.vc.Destroy)
	return f
}

func TestViewport_PanCommitsOnce(t *testing.T) {
	f := newViewportFixture(t, vector.Viewport{Scale: 2, TranslateX: 10, TranslateY: 20}, ViewportConfig{})
	ev := f.host.PressBackground(100, 100)
	if !ev.Consumed() || !f.vc.Panning() {
		t.Fatal("background press should start a pan")
	}
	f.host.Move(110, 90)
	f.host.Move(130, 80)
	if len(f.presented) != 2 || len(f.commits) != 0 {
		t.Fatalf("presented=%d commits=%d", len(f.presented), len(f.commits))
	}
	f.host.Release(130, 80)
	want := vector.Viewport{Scale: 2, TranslateX: 40, TranslateY: 0}
	if len(f.commits) != 1 || f.commits[0] != want {
		t.Fatalf("commits = %+v", f.commits)
	}
	if f.lock.Held() {
		t.Fatal("lock held after pan")
	}
}

func TestViewport_ConsumedPressDoesNotPan(t *testing.T) {
	f := newViewportFixture(t, vector.Viewport{Scale: 1}, ViewportConfig{})
	ev := &PointerEvent{X: 1, Y: 1}
	ev.Consume()
	f.vc.BeginPan(ev)
	if f.vc.Panning() {
		t.Fatal("pan started from consumed press")
	}
}

func TestViewport_CancelRestores(t *testing.T) {
	start := vector.Viewport{Scale: 1, TranslateX: 5, TranslateY: 5}
	f := newViewportFixture(t, start, ViewportConfig{})
	f.host.PressBackground(0, 0)
	f.host.Move(50, 50)
	f.host.CancelPointer()
	if f.vc.Viewport() != start {
		t.Fatalf("viewport after cancel = %+v", f.vc.Viewport())
	}
	if len(f.commits) != 0 {
		t.Fatal("cancelled pan committed")
	}
}

func TestViewport_ZoomKeepsCursorPointFixed(t *testing.T) {
	f := newViewportFixture(t, vector.Viewport{Scale: 1}, ViewportConfig{ZoomStep: 0.5})
	at := vector.Pt{X: 100, Y: 100}
	before := f.vc.Viewport().ScreenToCanvas(at)
	if !f.vc.Zoom(at, 2) {
		t.Fatal("zoom refused")
	}
	vp := f.vc.Viewport()
	if vp.Scale != 2 || vp.TranslateX != -100 || vp.TranslateY != -100 {
		t.Fatalf("viewport = %+v", vp)
	}
	if after := vp.ScreenToCanvas(at); after != before {
		t.Fatalf("anchor moved: %+v -> %+v", before, after)
	}
	if len(f.commits) != 1 {
		t.Fatalf("commits = %d", len(f.commits))
	}
}

func TestViewport_ZoomClamps(t *testing.T) {
	f := newViewportFixture(t, vector.Viewport{Scale: 1}, ViewportConfig{})
	f.vc.Zoom(vector.Pt{}, 1000)
	if f.vc.Scale() != DefaultMaxScale {
		t.Fatalf("scale = %v", f.vc.Scale())
	}
	if f.vc.Zoom(vector.Pt{}, 1) {
		t.Fatal("zoom at max should report no change")
	}
	f.vc.Zoom(vector.Pt{}, -1000)
	if f.vc.Scale() != DefaultMinScale {
		t.Fatalf("scale = %v", f.vc.Scale())
	}
}

func TestViewport_ZoomRefusedDuringGesture(t *testing.T) {
	f := newViewportFixture(t, vector.Viewport{Scale: 1}, ViewportConfig{})
	tok, _ := f.lock.Acquire(GestureDrag, "a")
	if f.vc.Zoom(vector.Pt{}, 5) || f.vc.ZoomTo(vector.Pt{}, 2) {
		t.Fatal("zoom allowed while a card gesture runs")
	}
	tok.Release()
	if !f.vc.ZoomTo(vector.Pt{}, 2) || f.vc.Scale() != 2 {
		t.Fatalf("ZoomTo after release: scale %v", f.vc.Scale())
	}
}

func TestViewport_InvalidInitialScale(t *testing.T) {
	for _, s := range []float32{0, -1} {
		f := newViewportFixture(t, vector.Viewport{Scale: s}, ViewportConfig{})
		if f.vc.Scale() != 1 {
			t.Fatalf("initial %v: scale %v", s, f.vc.Scale())
		}
	}
	f := newViewportFixture(t, vector.Viewport{Scale: 9}, ViewportConfig{})
	if f.vc.Scale() != DefaultMaxScale {
		t.Fatalf("scale not clamped: %v", f.vc.Scale())
	}
}
