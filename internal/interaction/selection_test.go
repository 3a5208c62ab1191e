/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import "testing"

func TestSelection_SetNotifiesAfterSwap(t *testing.T) {
	s := NewSelection()
	var seen [][2]string
	unsub := s.OnChange(func(prev, next string) {
		if cur, _ := s.Selected(); cur != next {
			t.Errorf("observer saw %q, want %q", cur, next)
		}
		seen = append(seen, [2]string{prev, next})
	})
	s.Set("a")
	s.Set("a") // no-op
	if prev := s.Set("b"); prev != "a" {
		t.Fatalf("prev = %q", prev)
	}
	s.Clear()
	if _, ok := s.Selected(); ok {
		t.Fatal("expected empty selection")
	}
	want := [][2]string{{"", "a"}, {"a", "b"}, {"b", ""}}
	if len(seen) != len(want) {
		t.Fatalf("notifications: %v", seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d: got %v want %v", i, seen[i], want[i])
		}
	}
	unsub()
	s.Set("c")
	if len(seen) != 3 {
		t.Fatal("observer called after unsubscribe")
	}
	if s.IsSelected("") {
		t.Fatal("empty id is never selected")
	}
}
