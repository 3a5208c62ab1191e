/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

// Selection tracks the single selected card. The empty id means nothing is selected.
// Observers run after the swap, so no observer ever sees two selected cards.
type Selection struct {
	id        string
	observers Listeners[func(prev, next string)]
}

// NewSelection returns a gate with nothing selected.
func NewSelection() *Selection { return &Selection{} }

// Selected returns the selected card id.
func (s *Selection) Selected() (string, bool) { return s.id, s.id != "" }

// IsSelected reports whether cardID is the selected card.
func (s *Selection) IsSelected(cardID string) bool { return cardID != "" && s.id == cardID }

// Set selects cardID (or clears the selection for "") and returns the previous id.
func (s *Selection) Set(cardID string) (prev string) {
	prev = s.id
	if prev == cardID {
		return prev
	}
	s.id = cardID
	for _, fn := range s.observers.Snapshot() {
		fn(prev, cardID)
	}
	return prev
}

// Clear deselects any card.
func (s *Selection) Clear() { s.Set("") }

// OnChange registers fn to observe selection changes.
func (s *Selection) OnChange(fn func(prev, next string)) Unsubscribe { return s.observers.Add(fn) }
