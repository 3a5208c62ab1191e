/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"log/slog"

	"goboard/internal/board"
)

// selectCard selects a freshly mounted card. A failure is logged and leaves
// the selection as it was.
func selectCard(l *slog.Logger, b *board.Board, id string) bool {
	if err := b.Select(id); err != nil {
		l.Error("select card", slog.String("card", id), slog.Any("err", err))
		return false
	}
	return true
}
