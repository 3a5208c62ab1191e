/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import "testing"

func TestGestureLock_Exclusive(t *testing.T) {
	l := NewGestureLock()
	a, ok := l.Acquire(GestureDrag, "a")
	if !ok {
		t.Fatal("first acquire should succeed")
	}
	if _, ok := l.Acquire(GestureResize, "b"); ok {
		t.Fatal("second acquire should fail while held")
	}
	g, held := l.Active()
	if !held || g.Kind != GestureDrag || g.CardID != "a" {
		t.Fatalf("unexpected holder: %+v held=%v", g, held)
	}
	a.Release()
	if l.Held() {
		t.Fatal("lock should be free after release")
	}
	b, ok := l.Acquire(GesturePan, "")
	if !ok {
		t.Fatal("acquire after release should succeed")
	}
	// A stale token must not free someone else's gesture.
	a.Release()
	if !l.Held() {
		t.Fatal("stale release freed the lock")
	}
	b.Release()
	b.Release()
	if l.Held() {
		t.Fatal("expected free lock")
	}
}

func TestGestureKind_String(t *testing.T) {
	cases := map[GestureKind]string{GestureNone: "none", GestureDrag: "drag", GestureResize: "resize", GesturePan: "pan"}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("%d: got %q want %q", k, got, want)
		}
	}
}
