/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"fmt"
	"math"
)

// Coordinate transforms between screen space (raw pointer pixels) and canvas
// space (board units, independent of zoom).
//
// ToCanvas and ToScreen only compensate for magnification. They are meant for
// gesture deltas: dragging 10 screen pixels at scale 2 moves 5 canvas units.
// Origin alignment is handled by Viewport, which only the viewport owner uses.

func mustScale(scale float32) {
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		panic(fmt.Sprintf("vector: scale must be a positive finite number, got %v", scale))
	}
}

// ToCanvas maps a screen-space value pair to canvas space. It panics when
// scale is not a positive finite number.
func ToCanvas(screenX, screenY, scale float32) (canvasX, canvasY float32) {
	mustScale(scale)
	return screenX / scale, screenY / scale
}

// ToScreen is the inverse of ToCanvas.
func ToScreen(canvasX, canvasY, scale float32) (screenX, screenY float32) {
	mustScale(scale)
	return canvasX * scale, canvasY * scale
}

// SizeToCanvas converts a rendered (screen) size to canvas units.
func SizeToCanvas(s Size, scale float32) Size {
	w, h := ToCanvas(s.W, s.H, scale)
	return Size{W: w, H: h}
}

// SizeToScreen converts a canvas size to its rendered size.
func SizeToScreen(s Size, scale float32) Size {
	w, h := ToScreen(s.W, s.H, scale)
	return Size{W: w, H: h}
}

// Viewport is the pan/zoom state of the board: screen = translate + canvas*scale.
type Viewport struct {
	Scale      float32
	TranslateX float32
	TranslateY float32
}

// Matrix returns the canvas-to-screen transform.
func (v Viewport) Matrix() Affine2D {
	mustScale(v.Scale)
	return Translate(v.TranslateX, v.TranslateY).Mul(Scale(v.Scale, v.Scale))
}

// CanvasToScreen maps an absolute canvas point to screen space.
func (v Viewport) CanvasToScreen(p Pt) Pt { return v.Matrix().Apply(p) }

// ScreenToCanvas maps an absolute screen point to canvas space.
func (v Viewport) ScreenToCanvas(p Pt) Pt {
	inv, _ := v.Matrix().Invert()
	return inv.Apply(p)
}

// ZoomAt returns the viewport rescaled to scale while keeping the canvas point
// under the screen point at fixed.
func (v Viewport) ZoomAt(at Pt, scale float32) Viewport {
	mustScale(scale)
	c := v.ScreenToCanvas(at)
	return Viewport{
		Scale:      scale,
		TranslateX: at.X - c.X*scale,
		TranslateY: at.Y - c.Y*scale,
	}
}

// Pan returns the viewport translated by a screen-space delta.
func (v Viewport) Pan(dx, dy float32) Viewport {
	v.TranslateX += dx
	v.TranslateY += dy
	return v
}
