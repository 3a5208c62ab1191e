/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

// Listeners is an ordered callback list with removable entries. Hosts use it
// for their pointer signals; the zero value is ready to use.
type Listeners[T any] struct {
	nextID uint32
	items  []listener[T]
}

type listener[T any] struct {
	id uint32
	fn T
}

// Add appends fn and returns its remover.
func (l *Listeners[T]) Add(fn T) Unsubscribe {
	l.nextID++
	id := l.nextID
	l.items = append(l.items, listener[T]{id: id, fn: fn})
	return func() { l.remove(id) }
}

func (l *Listeners[T]) remove(id uint32) {
	for i := range l.items {
		if l.items[i].id == id {
			copy(l.items[i:], l.items[i+1:])
			l.items[len(l.items)-1] = listener[T]{}
			l.items = l.items[:len(l.items)-1]
			return
		}
	}
}

// Snapshot copies the callbacks so a callback may unsubscribe during dispatch.
func (l *Listeners[T]) Snapshot() []T {
	out := make([]T, len(l.items))
	for i, it := range l.items {
		out[i] = it.fn
	}
	return out
}

// Len returns the number of registered callbacks.
func (l *Listeners[T]) Len() int { return len(l.items) }

// Dispatch hands ev to every pointer listener in registration order.
func Dispatch(l *Listeners[func(*PointerEvent)], ev *PointerEvent) {
	for _, fn := range l.Snapshot() {
		fn(ev)
	}
}
