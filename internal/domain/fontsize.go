/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// FontSizes are the steps offered for text cards, in pixels.
var FontSizes = []int{12, 14, 18, 24, 32, 48}

// DefaultFontSize applies to text cards without an explicit size.
const DefaultFontSize = 14

// EffectiveFontSize returns the card's font size or DefaultFontSize.
func (c Card) EffectiveFontSize() int {
	if c.FontSize > 0 {
		return c.FontSize
	}
	return DefaultFontSize
}

// StepFontSize moves cur one step up or down the FontSizes list.
// A size that is not in the list snaps to the closest larger (up) or smaller
// (down) entry. At either end of the list cur is returned unchanged.
func StepFontSize(cur int, up bool) int {
	idx := -1
	for i, s := range FontSizes {
		if s == cur {
			idx = i
			break
		}
	}
	if idx >= 0 {
		if up && idx < len(FontSizes)-1 {
			return FontSizes[idx+1]
		}
		if !up && idx > 0 {
			return FontSizes[idx-1]
		}
		return cur
	}
	if up {
		for _, s := range FontSizes {
			if s > cur {
				return s
			}
		}
		return cur
	}
	for i := len(FontSizes) - 1; i >= 0; i-- {
		if FontSizes[i] < cur {
			return FontSizes[i]
		}
	}
	return cur
}
