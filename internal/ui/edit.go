/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import "context"

// textEdit is one in-place edit of a text card. Enter commits, Escape
// reverts; whichever comes first ends the edit and later calls do nothing.
type textEdit struct {
	cardID string
	orig   string
	save   func(ctx context.Context, cardID, content string) (bool, error)
	done   bool
}

func newTextEdit(cardID, orig string, save func(context.Context, string, string) (bool, error)) *textEdit {
	return &textEdit{cardID: cardID, orig: orig, save: save}
}

// commit saves text. changed is false when the edit already ended or the
// store saw no change.
func (e *textEdit) commit(ctx context.Context, text string) (changed bool, err error) {
	if e.done {
		return false, nil
	}
	e.done = true
	return e.save(ctx, e.cardID, text)
}

// revert ends the edit and returns the text to restore.
func (e *textEdit) revert() string {
	e.done = true
	return e.orig
}
