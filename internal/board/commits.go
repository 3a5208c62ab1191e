/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import "goboard/internal/domain"

// CommitKind names what a commit wrote.
type CommitKind string

const (
	CommitPosition CommitKind = "position"
	CommitSize     CommitKind = "size"
	CommitViewport CommitKind = "viewport"
	CommitFontSize CommitKind = "font_size"
	CommitContent  CommitKind = "content"
)

// Commit is one value the board handed to its store.
type Commit struct {
	Kind     CommitKind       `json:"kind"`
	CardID   string           `json:"cardId,omitempty"`
	Position *domain.Point    `json:"position,omitempty"`
	Size     *domain.Size     `json:"size,omitempty"`
	Viewport *domain.Viewport `json:"viewport,omitempty"`
	FontSize int              `json:"fontSize,omitempty"`
	Content  *string          `json:"content,omitempty"`
	// Err is set when the store rejected the write.
	Err string `json:"error,omitempty"`
}

// Commits returns the commit history in order.
func (b *Board) Commits() []Commit {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Commit, len(b.commits))
	copy(out, b.commits)
	return out
}

func (b *Board) record(c Commit) {
	b.mu.Lock()
	b.commits = append(b.commits, c)
	b.mu.Unlock()
}
