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
	"fmt"
	"log/slog"
	"sort"
)

var (
	// ErrAlreadyRegistered reports a second Register for a live card id.
	ErrAlreadyRegistered = errors.New("card already registered")
	ErrEmptyCardID       = errors.New("empty card id")
	ErrNilElement        = errors.New("nil element")
	// ErrDestroyed is returned by controllers after Destroy. Use after Destroy is
	// a caller error; the check is best effort.
	ErrDestroyed = errors.New("controller destroyed")
)

// registration is the bookkeeping for one mounted card in one controller.
// Every listener bound at Register time is recorded in subs so Unregister can
// release them before dropping the element.
type registration struct {
	cardID string
	el     Element
	handle Handle
	subs   []Unsubscribe
}

func (r *registration) release() {
	releaseAll(r.subs)
	r.subs = nil
	if r.handle != nil {
		r.handle.Remove()
		r.handle = nil
	}
}

// Registry maps card ids to their bound elements for as long as the card is mounted.
type Registry struct {
	owner   string
	entries map[string]*registration
	log     *slog.Logger
}

func newRegistry(owner string, l *slog.Logger) *Registry {
	return &Registry{owner: owner, entries: make(map[string]*registration), log: l}
}

// reserve validates a new registration before any listener is bound.
func (r *Registry) reserve(el Element, cardID string) error {
	if cardID == "" {
		return ErrEmptyCardID
	}
	if el == nil {
		return ErrNilElement
	}
	if _, ok := r.entries[cardID]; ok {
		r.log.Warn("double registration", slog.String("card", cardID), slog.String("owner", r.owner))
		return fmt.Errorf("%s: %w: %s", r.owner, ErrAlreadyRegistered, cardID)
	}
	return nil
}

func (r *Registry) put(reg *registration) { r.entries[reg.cardID] = reg }

func (r *Registry) get(cardID string) (*registration, bool) {
	reg, ok := r.entries[cardID]
	return reg, ok
}

// drop removes the entry and releases its listeners and handle.
func (r *Registry) drop(cardID string) bool {
	reg, ok := r.entries[cardID]
	if !ok {
		return false
	}
	reg.release()
	delete(r.entries, cardID)
	return true
}

func (r *Registry) dropAll() {
	for id := range r.entries {
		r.drop(id)
	}
}

// Has reports whether cardID is registered.
func (r *Registry) Has(cardID string) bool {
	_, ok := r.entries[cardID]
	return ok
}

// Len returns the number of registered cards.
func (r *Registry) Len() int { return len(r.entries) }

// IDs returns the registered card ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
