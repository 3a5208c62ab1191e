/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import "sync"

// GestureKind identifies who holds the gesture lock.
type GestureKind uint8

const (
	GestureNone GestureKind = iota
	GestureDrag
	GestureResize
	GesturePan
)

func (k GestureKind) String() string {
	switch k {
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	case GesturePan:
		return "pan"
	default:
		return "none"
	}
}

// Gesture describes the lock holder.
type Gesture struct {
	Kind   GestureKind
	CardID string // empty for pan
}

// GestureLock is the single exclusive token shared by all controllers.
// Whoever sees an interaction-start first acquires it; only the returned
// Token can release it.
type GestureLock struct {
	mu   sync.Mutex
	held *Token
}

// NewGestureLock returns an unheld lock.
func NewGestureLock() *GestureLock { return &GestureLock{} }

// Token proves ownership of the lock for one gesture.
type Token struct {
	lock    *GestureLock
	gesture Gesture
}

// Acquire takes the lock for a gesture. ok is false while another gesture holds it.
func (l *GestureLock) Acquire(kind GestureKind, cardID string) (tok *Token, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held != nil {
		return nil, false
	}
	l.held = &Token{lock: l, gesture: Gesture{Kind: kind, CardID: cardID}}
	return l.held, true
}

// Active returns the current holder, if any.
func (l *GestureLock) Active() (Gesture, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		return Gesture{}, false
	}
	return l.held.gesture, true
}

// Held reports whether any gesture holds the lock.
func (l *GestureLock) Held() bool {
	_, ok := l.Active()
	return ok
}

// Gesture returns what the token was acquired for.
func (t *Token) Gesture() Gesture { return t.gesture }

// Release frees the lock if t still holds it. Releasing twice is a no-op.
func (t *Token) Release() {
	if t == nil || t.lock == nil {
		return
	}
	l := t.lock
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == t {
		l.held = nil
	}
	t.lock = nil
}
