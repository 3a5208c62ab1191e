/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"log/slog"

	applog "goboard/internal/log"
	"goboard/internal/vector"
)

// Zoom limits and wheel sensitivity.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 4.0
	DefaultZoomStep = 0.05
)

// ViewportConfig tunes pan/zoom. Zero fields take the defaults.
type ViewportConfig struct {
	MinScale float32
	MaxScale float32
	ZoomStep float32 // scale change per wheel unit
}

func (c ViewportConfig) withDefaults() ViewportConfig {
	if c.MinScale <= 0 {
		c.MinScale = DefaultMinScale
	}
	if c.MaxScale < c.MinScale {
		c.MaxScale = DefaultMaxScale
	}
	if c.MaxScale < c.MinScale {
		c.MaxScale = c.MinScale
	}
	if c.ZoomStep <= 0 {
		c.ZoomStep = DefaultZoomStep
	}
	return c
}

func (c ViewportConfig) clamp(s float32) float32 {
	return min(max(s, c.MinScale), c.MaxScale)
}

// ViewportController owns the board's pan and zoom. A press that no card
// consumed starts a pan, which holds the shared gesture lock like any card
// gesture. present receives every intermediate viewport; commit receives the
// settled viewport once per pan and once per zoom step.
type ViewportController struct {
	lock    *GestureLock
	cfg     ViewportConfig
	present func(vector.Viewport)
	commit  func(vector.Viewport)
	log     *slog.Logger

	vp   vector.Viewport
	pan  *panGesture
	subs []Unsubscribe
}

type panGesture struct {
	tok    *Token
	start  vector.Pt
	origin vector.Viewport
}

// NewViewportController starts from initial. A non-positive initial scale is
// replaced by 1; a scale outside the limits is clamped.
func NewViewportController(host Host, lock *GestureLock, initial vector.Viewport, present, commit func(vector.Viewport), cfg ViewportConfig) *ViewportController {
	if lock == nil {
		lock = NewGestureLock()
	}
	cfg = cfg.withDefaults()
	l := applog.WithComponent("viewport")
	if !(initial.Scale > 0) {
		l.Warn("invalid initial scale, resetting", slog.Float64("scale", float64(initial.Scale)))
		initial.Scale = 1
	}
	initial.Scale = cfg.clamp(initial.Scale)
	v := &ViewportController{lock: lock, cfg: cfg, present: present, commit: commit, log: l, vp: initial}
	v.subs = []Unsubscribe{
		host.OnPointerDown(v.BeginPan),
		host.OnPointerMove(v.move),
		host.OnPointerUp(v.end),
		host.OnCancel(v.Cancel),
	}
	return v
}

// Scale is the getScale accessor handed to the card controllers.
func (v *ViewportController) Scale() float32 { return v.vp.Scale }

// Viewport returns the current (possibly in-gesture) viewport.
func (v *ViewportController) Viewport() vector.Viewport { return v.vp }

// Panning reports whether a pan gesture is active.
func (v *ViewportController) Panning() bool { return v.pan != nil }

// BeginPan starts a pan for a press nobody else consumed.
func (v *ViewportController) BeginPan(ev *PointerEvent) {
	if ev.Consumed() || v.pan != nil {
		return
	}
	tok, ok := v.lock.Acquire(GesturePan, "")
	if !ok {
		return
	}
	ev.Consume()
	v.pan = &panGesture{tok: tok, start: ev.Pos(), origin: v.vp}
}

func (v *ViewportController) move(ev *PointerEvent) {
	if v.pan == nil {
		return
	}
	v.vp = v.pan.origin.Pan(ev.X-v.pan.start.X, ev.Y-v.pan.start.Y)
	v.show()
}

func (v *ViewportController) end(ev *PointerEvent) {
	if v.pan == nil {
		return
	}
	v.vp = v.pan.origin.Pan(ev.X-v.pan.start.X, ev.Y-v.pan.start.Y)
	p := v.pan
	v.pan = nil
	p.tok.Release()
	v.show()
	v.log.Debug("pan commit", slog.Float64("tx", float64(v.vp.TranslateX)), slog.Float64("ty", float64(v.vp.TranslateY)))
	if v.commit != nil {
		v.commit(v.vp)
	}
}

// Cancel aborts a pan and restores the viewport it started from.
func (v *ViewportController) Cancel() {
	if v.pan == nil {
		return
	}
	p := v.pan
	v.pan = nil
	v.vp = p.origin
	p.tok.Release()
	v.show()
}

// Zoom changes the scale by wheelDelta*ZoomStep around the screen point at.
// It is refused while any gesture holds the lock and reports whether the
// viewport changed.
func (v *ViewportController) Zoom(at vector.Pt, wheelDelta float32) bool {
	if v.lock.Held() {
		return false
	}
	return v.zoomTo(at, v.vp.Scale+wheelDelta*v.cfg.ZoomStep)
}

// ZoomTo sets an absolute scale (clamped) around at, e.g. "reset to 100%".
func (v *ViewportController) ZoomTo(at vector.Pt, scale float32) bool {
	if v.lock.Held() || !(scale > 0) {
		return false
	}
	return v.zoomTo(at, scale)
}

func (v *ViewportController) zoomTo(at vector.Pt, scale float32) bool {
	scale = v.cfg.clamp(scale)
	if scale == v.vp.Scale {
		return false
	}
	v.vp = v.vp.ZoomAt(at, scale)
	v.show()
	if v.commit != nil {
		v.commit(v.vp)
	}
	return true
}

// Destroy cancels a pan and detaches from the host.
func (v *ViewportController) Destroy() {
	v.Cancel()
	releaseAll(v.subs)
	v.subs = nil
}

func (v *ViewportController) show() {
	if v.present != nil {
		v.present(v.vp)
	}
}
