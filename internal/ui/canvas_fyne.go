//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"goboard/internal/domain"
	"goboard/internal/interaction"
	"goboard/internal/vector"
)

// handleSize is the on-screen edge of the resize handle in pixels.
const handleSize float32 = 12

var (
	colBackground = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colStroke     = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
	colSelected   = color.NRGBA{R: 30, G: 110, B: 230, A: 255}
	colText       = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	colHandle     = color.NRGBA{R: 30, G: 110, B: 230, A: 255}
)

func cardFill(t domain.CardType, dragging bool) color.NRGBA {
	c := color.NRGBA{R: 255, G: 250, B: 205, A: 255}
	switch t {
	case domain.CardImage:
		c = color.NRGBA{R: 230, G: 236, B: 245, A: 255}
	case domain.CardLink:
		c = color.NRGBA{R: 225, G: 245, B: 230, A: 255}
	}
	if dragging {
		c.A = 180
	}
	return c
}

// BoardCanvas is the Fyne widget hosting the board. It implements
// interaction.Host and lays out one cardView per mounted card.
type BoardCanvas struct {
	widget.BaseWidget

	vp    vector.Viewport
	views []*cardView

	down   interaction.Listeners[func(*interaction.PointerEvent)]
	move   interaction.Listeners[func(*interaction.PointerEvent)]
	up     interaction.Listeners[func(*interaction.PointerEvent)]
	cancel interaction.Listeners[func()]

	pressed bool
	last    fyne.Position

	// OnScroll is called with the pointer position and a wheel delta of +1 or -1.
	OnScroll func(at vector.Pt, delta float32)
	// OnEdit is called with the id of a double-tapped card.
	OnEdit func(cardID string)
}

var (
	_ interaction.Host    = (*BoardCanvas)(nil)
	_ desktop.Mouseable   = (*BoardCanvas)(nil)
	_ fyne.Draggable      = (*BoardCanvas)(nil)
	_ fyne.Scrollable     = (*BoardCanvas)(nil)
	_ fyne.DoubleTappable = (*BoardCanvas)(nil)
	_ interaction.Element = (*cardView)(nil)
)

// NewBoardCanvas returns an empty canvas at scale 1.
func NewBoardCanvas() *BoardCanvas {
	c := &BoardCanvas{vp: vector.Viewport{Scale: 1}}
	c.ExtendBaseWidget(c)
	return c
}

func (c *BoardCanvas) OnPointerDown(fn func(*interaction.PointerEvent)) interaction.Unsubscribe {
	return c.down.Add(fn)
}
func (c *BoardCanvas) OnPointerMove(fn func(*interaction.PointerEvent)) interaction.Unsubscribe {
	return c.move.Add(fn)
}
func (c *BoardCanvas) OnPointerUp(fn func(*interaction.PointerEvent)) interaction.Unsubscribe {
	return c.up.Add(fn)
}
func (c *BoardCanvas) OnCancel(fn func()) interaction.Unsubscribe { return c.cancel.Add(fn) }

// SetViewport repositions every card for v. It is wired to the engine's
// present callback, so it runs on each pan or zoom step.
func (c *BoardCanvas) SetViewport(v vector.Viewport) {
	c.vp = v
	c.Refresh()
}

// Viewport returns the viewport the canvas currently draws with.
func (c *BoardCanvas) Viewport() vector.Viewport { return c.vp }

// AddCard creates the element for card and stacks it on top.
func (c *BoardCanvas) AddCard(card domain.Card, pos vector.Pt, size vector.Size) interaction.Element {
	v := &cardView{canvas: c, id: card.ID, pos: pos, size: size, affordances: map[string]bool{}}
	v.show(card)
	c.views = append(c.views, v)
	c.Refresh()
	return v
}

// RemoveCard drops the element for id. The caller unmounts it first.
func (c *BoardCanvas) RemoveCard(id string) {
	c.views = slices.DeleteFunc(c.views, func(v *cardView) bool { return v.id == id })
	c.Refresh()
}

// UpdateCard redraws a card after its content or font size changed.
func (c *BoardCanvas) UpdateCard(card domain.Card) {
	for _, v := range c.views {
		if v.id == card.ID {
			v.show(card)
		}
	}
	c.Refresh()
}

// cardAt returns the topmost card under the widget point p.
func (c *BoardCanvas) cardAt(p vector.Pt) (string, bool) {
	for i := len(c.views) - 1; i >= 0; i-- {
		if c.views[i].contains(p) {
			return c.views[i].id, true
		}
	}
	return "", false
}

// CancelPointer aborts the running gesture, e.g. on Escape or focus loss.
func (c *BoardCanvas) CancelPointer() {
	c.pressed = false
	for _, fn := range c.cancel.Snapshot() {
		fn()
	}
	c.Refresh()
}

func toEvent(p fyne.Position) *interaction.PointerEvent {
	return &interaction.PointerEvent{X: p.X, Y: p.Y}
}

// MouseDown hit-tests from the top card down: a visible handle first, then
// the card body, then the host listeners see the press.
func (c *BoardCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = true
	c.last = e.Position
	ev := toEvent(e.Position)
	p := ev.Pos()
	for i := len(c.views) - 1; i >= 0; i-- {
		v := c.views[i]
		if h := v.handle; h != nil && h.Visible() && h.contains(p) {
			interaction.Dispatch(&h.down, ev)
			interaction.Dispatch(&v.down, ev)
			break
		}
		if v.contains(p) {
			interaction.Dispatch(&v.down, ev)
			break
		}
	}
	interaction.Dispatch(&c.down, ev)
	c.Refresh()
}

func (c *BoardCanvas) MouseUp(e *desktop.MouseEvent) {
	if !c.pressed {
		return
	}
	c.pressed = false
	interaction.Dispatch(&c.up, toEvent(e.Position))
	c.Refresh()
}

func (c *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if !c.pressed {
		return
	}
	c.last = e.Position
	interaction.Dispatch(&c.move, toEvent(e.Position))
	c.Refresh()
}

// DragEnd ends the gesture at the last drag position when no MouseUp arrived.
func (c *BoardCanvas) DragEnd() {
	if !c.pressed {
		return
	}
	c.pressed = false
	interaction.Dispatch(&c.up, toEvent(c.last))
	c.Refresh()
}

// DoubleTapped asks to edit the card under the pointer.
func (c *BoardCanvas) DoubleTapped(e *fyne.PointEvent) {
	if c.OnEdit == nil {
		return
	}
	if id, ok := c.cardAt(vector.Pt{X: e.Position.X, Y: e.Position.Y}); ok {
		c.OnEdit(id)
	}
}

func (c *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	if c.OnScroll == nil || e.Scrolled.DY == 0 {
		return
	}
	delta := float32(1)
	if e.Scrolled.DY < 0 {
		delta = -1
	}
	c.OnScroll(vector.Pt{X: e.Position.X, Y: e.Position.Y}, delta)
}

func (c *BoardCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (c *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{c: c, bg: canvas.NewRectangle(colBackground)}
	r.rebuild()
	return r
}

// cardView is the on-canvas element of one card.
type cardView struct {
	canvas   *BoardCanvas
	id       string
	typ      domain.CardType
	label    string
	fontSize float32

	pos         vector.Pt
	size        vector.Size
	affordances map[string]bool
	down        interaction.Listeners[func(*interaction.PointerEvent)]
	handle      *handleView
}

func (v *cardView) OnPointerDown(fn func(*interaction.PointerEvent)) interaction.Unsubscribe {
	return v.down.Add(fn)
}
func (v *cardView) Position() vector.Pt     { return v.pos }
func (v *cardView) SetPosition(p vector.Pt) { v.pos = p }
func (v *cardView) RenderedSize() vector.Size {
	return vector.SizeToScreen(v.size, v.canvas.vp.Scale)
}
func (v *cardView) SetSize(s vector.Size)        { v.size = s }
func (v *cardView) AddAffordance(name string)    { v.affordances[name] = true }
func (v *cardView) RemoveAffordance(name string) { delete(v.affordances, name) }
func (v *cardView) NewHandle() interaction.Handle {
	v.handle = &handleView{card: v}
	return v.handle
}

func (v *cardView) show(card domain.Card) {
	v.typ = card.Type
	v.label = cardLabel(card)
	v.fontSize = cardFontSize(card)
}

// screenRect returns the card's top-left and size in widget pixels.
func (v *cardView) screenRect() (vector.Pt, vector.Size) {
	return v.canvas.vp.CanvasToScreen(v.pos), v.RenderedSize()
}

func (v *cardView) contains(p vector.Pt) bool {
	o, s := v.screenRect()
	return p.X >= o.X && p.Y >= o.Y && p.X < o.X+s.W && p.Y < o.Y+s.H
}

// handleView sits inside the bottom-right corner of its card.
type handleView struct {
	card    *cardView
	visible bool
	down    interaction.Listeners[func(*interaction.PointerEvent)]
}

func (h *handleView) OnPointerDown(fn func(*interaction.PointerEvent)) interaction.Unsubscribe {
	return h.down.Add(fn)
}
func (h *handleView) SetVisible(visible bool) { h.visible = visible }
func (h *handleView) Visible() bool           { return h.visible && h.card.handle == h }
func (h *handleView) Remove() {
	if h.card.handle == h {
		h.card.handle = nil
	}
}

func (h *handleView) rect() (vector.Pt, vector.Size) {
	o, s := h.card.screenRect()
	return vector.Pt{X: o.X + s.W - handleSize, Y: o.Y + s.H - handleSize}, vector.Size{W: handleSize, H: handleSize}
}

func (h *handleView) contains(p vector.Pt) bool {
	o, s := h.rect()
	return p.X >= o.X && p.Y >= o.Y && p.X < o.X+s.W && p.Y < o.Y+s.H
}

type boardRenderer struct {
	c       *BoardCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Destroy()                     {}
func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) MinSize() fyne.Size           { return r.c.MinSize() }
func (r *boardRenderer) Layout(size fyne.Size)        { r.bg.Resize(size) }

func (r *boardRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.c.Size())
	canvas.Refresh(r.c)
}

// rebuild recreates the card objects; boards hold few enough cards for that.
func (r *boardRenderer) rebuild() {
	objs := []fyne.CanvasObject{r.bg}
	for _, v := range r.c.views {
		o, s := v.screenRect()
		rect := canvas.NewRectangle(cardFill(v.typ, v.affordances[interaction.AffordanceDragging]))
		rect.StrokeColor = colStroke
		rect.StrokeWidth = 1
		if v.handle != nil && v.handle.Visible() {
			rect.StrokeColor = colSelected
			rect.StrokeWidth = 2
		}
		rect.Move(fyne.NewPos(o.X, o.Y))
		rect.Resize(fyne.NewSize(s.W, s.H))
		objs = append(objs, rect)

		txt := canvas.NewText(v.label, colText)
		txt.TextSize = v.fontSize * v.canvas.vp.Scale
		txt.Move(fyne.NewPos(o.X+4, o.Y+4))
		objs = append(objs, txt)

		if h := v.handle; h != nil && h.Visible() {
			ho, hs := h.rect()
			hr := canvas.NewRectangle(colHandle)
			hr.Move(fyne.NewPos(ho.X, ho.Y))
			hr.Resize(fyne.NewSize(hs.W, hs.H))
			objs = append(objs, hr)
		}
	}
	r.objects = objs
}
