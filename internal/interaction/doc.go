/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction turns raw pointer events into card drags, card resizes
// and viewport pan/zoom.
//
// All controllers share one GestureLock: at most one gesture (drag, resize or
// pan) is active at any instant. During a gesture only the element's visual
// state is touched; the committed value is handed to the owner's callback
// exactly once when the gesture ends. Cancellation (host focus loss,
// unregistering the card, Destroy) restores the visual state and commits
// nothing.
//
// The package is single-threaded by contract: every method is expected to be
// called from the host's event loop. Host, Element and Handle abstract the UI
// toolkit; HeadlessHost and HeadlessElement implement them in memory.
package interaction
