//go:build fyne && cgo

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
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"doccanvas/internal/editor"
	"doccanvas/internal/export"
	applog "doccanvas/internal/log"
	"doccanvas/internal/scene"
	"doccanvas/internal/vector"
)

// PageCanvas shows the active page of an editor session and forwards pointer
// and keyboard input to it. The page bitmap comes from the export renderer so
// what is on screen matches the exported output.
type PageCanvas struct {
	widget.BaseWidget

	ed *editor.Editor
	vp viewport

	// panning is set while a press on empty canvas is being dragged.
	panning bool
	pressed bool
	last    vector.Pt
	// hover is the element under the mouse, drives the cursor.
	hover string

	// OnEdit is called when a double-click asks for a text or image editor.
	OnEdit func(editor.EditAction, string)
	// OnError reports editor errors raised by input handling.
	OnError func(error)

	log *slog.Logger
}

var (
	_ desktop.Mouseable      = (*PageCanvas)(nil)
	_ desktop.Keyable        = (*PageCanvas)(nil)
	_ fyne.Draggable         = (*PageCanvas)(nil)
	_ fyne.DoubleTappable    = (*PageCanvas)(nil)
	_ fyne.Scrollable        = (*PageCanvas)(nil)
	_ fyne.Focusable         = (*PageCanvas)(nil)
	_ desktop.Hoverable      = (*PageCanvas)(nil)
	_ fyne.SecondaryTappable = (*PageCanvas)(nil)
	_ desktop.Cursorable     = (*PageCanvas)(nil)
)

func NewPageCanvas() *PageCanvas {
	pc := &PageCanvas{log: applog.WithComponent("ui.canvas")}
	pc.vp = viewport{zoom: defaultZoom, pageW: 800, pageH: 600}
	pc.ExtendBaseWidget(pc)
	return pc
}

// Attach binds the canvas to a session. A nil editor shows an empty page.
func (p *PageCanvas) Attach(ed *editor.Editor) {
	p.ed = ed
	if ed != nil {
		c := ed.Canvas()
		p.vp.pageW, p.vp.pageH = float32(c.Width), float32(c.Height)
	}
	p.Refresh()
}

// FitPage zooms so the whole page is visible.
func (p *PageCanvas) FitPage() {
	sz := p.Size()
	p.vp.fit(sz.Width, sz.Height, 24)
	p.Refresh()
}

func (p *PageCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

func (p *PageCanvas) toPage(pos fyne.Position) vector.Pt {
	sz := p.Size()
	return p.vp.toPage(sz.Width, sz.Height, pos.X, pos.Y)
}

func (p *PageCanvas) toScreen(pt vector.Pt) fyne.Position {
	sz := p.Size()
	x, y := p.vp.toScreen(sz.Width, sz.Height, pt)
	return fyne.NewPos(x, y)
}

func (p *PageCanvas) fail(err error) {
	if err == nil {
		return
	}
	p.log.Warn("canvas input", slog.Any("err", err))
	if p.OnError != nil {
		p.OnError(err)
	}
}

func (p *PageCanvas) MouseDown(e *desktop.MouseEvent) {
	if p.ed == nil || e.Button != desktop.MouseButtonPrimary {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(p); c != nil {
		c.Focus(p)
	}
	pt := p.toPage(e.Position)
	p.pressed, p.panning, p.last = true, false, pt
	p.fail(p.ed.PointerDown(pt))
	// nothing under the pointer: a drag pans the view
	p.panning = p.ed.SelectedID() == ""
}

func (p *PageCanvas) MouseUp(e *desktop.MouseEvent) {
	if p.ed == nil || !p.pressed {
		return
	}
	p.release(p.toPage(e.Position))
}

func (p *PageCanvas) release(pt vector.Pt) {
	p.pressed, p.panning = false, false
	p.fail(p.ed.PointerUp(pt))
	p.Refresh()
}

func (p *PageCanvas) Dragged(e *fyne.DragEvent) {
	if p.ed == nil || !p.pressed {
		return
	}
	if p.panning {
		p.vp.offsetX += e.Dragged.DX
		p.vp.offsetY += e.Dragged.DY
		p.Refresh()
		return
	}
	p.last = p.toPage(e.Position)
	p.fail(p.ed.PointerMove(p.last))
}

// DragEnd finishes a drag whose mouse-up was not delivered to the canvas.
func (p *PageCanvas) DragEnd() {
	if p.ed != nil && p.pressed {
		p.release(p.last)
	}
}

func (p *PageCanvas) DoubleTapped(e *fyne.PointEvent) {
	if p.ed == nil {
		return
	}
	act, el, err := p.ed.DoubleClick(p.toPage(e.Position))
	if err != nil {
		p.fail(err)
		return
	}
	if act != editor.EditNone && p.OnEdit != nil {
		p.OnEdit(act, el.ID)
	}
}

// TappedSecondary clears the selection.
func (p *PageCanvas) TappedSecondary(*fyne.PointEvent) {
	if p.ed != nil && !p.ed.Closed() {
		p.ed.ClearSelection()
	}
}

func (p *PageCanvas) Scrolled(e *fyne.ScrollEvent) {
	switch {
	case e.Scrolled.DY > 0:
		p.vp.zoomBy(1.1)
	case e.Scrolled.DY < 0:
		p.vp.zoomBy(1 / 1.1)
	default:
		return
	}
	p.Refresh()
}

func (p *PageCanvas) MouseIn(*desktop.MouseEvent) {}
func (p *PageCanvas) MouseMoved(e *desktop.MouseEvent) {
	if p.ed == nil {
		return
	}
	p.hover = p.ed.HoverID(p.toPage(e.Position))
}

func (p *PageCanvas) MouseOut() { p.hover = "" }

// Cursor shows a pointer over a drawn element.
func (p *PageCanvas) Cursor() desktop.Cursor {
	if p.hover != "" {
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

func (p *PageCanvas) FocusGained() {
	if p.ed != nil {
		p.ed.SetFocus(true)
	}
}

func (p *PageCanvas) FocusLost() {
	if p.ed != nil {
		p.ed.SetFocus(false)
	}
}

func (p *PageCanvas) TypedRune(rune)          {}
func (p *PageCanvas) TypedKey(*fyne.KeyEvent) {}

func (p *PageCanvas) KeyDown(e *fyne.KeyEvent) {
	if p.ed == nil {
		return
	}
	ev := editor.KeyEvent{Key: editor.NormalizeKey(string(e.Name))}
	if d, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
		m := d.CurrentKeyModifiers()
		ev.Ctrl = m&fyne.KeyModifierControl != 0
		ev.Meta = m&fyne.KeyModifierSuper != 0
		ev.Shift = m&fyne.KeyModifierShift != 0
	}
	cmd, err := p.ed.KeyDown(ev)
	if err != nil {
		p.fail(err)
		return
	}
	if cmd != editor.CmdNone {
		p.log.Debug("shortcut", slog.String("cmd", cmd.String()))
	}
}

func (p *PageCanvas) KeyUp(e *fyne.KeyEvent) {
	if p.ed != nil {
		p.ed.KeyUp(editor.NormalizeKey(string(e.Name)))
	}
}

func (p *PageCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 226, G: 232, B: 240, A: 255})

	page := canvas.NewRectangle(color.White)
	page.StrokeColor = color.RGBA{R: 148, G: 163, B: 184, A: 255}
	page.StrokeWidth = 1

	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScaleSmooth

	bbox := canvas.NewRectangle(color.Transparent)
	bbox.StrokeColor = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	bbox.StrokeWidth = 2
	bbox.Hide()

	r := &pageCanvasRenderer{pc: p, bg: bg, page: page, img: img, bbox: bbox}
	r.rebuildObjects()
	return r
}

// pageCanvasRenderer lays out the rendered page, the selection box and the
// smart guides according to the viewport.
type pageCanvasRenderer struct {
	pc      *PageCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	page    *canvas.Rectangle
	img     *canvas.Image
	bbox    *canvas.Rectangle
	guides  []*canvas.Line
}

func (r *pageCanvasRenderer) rebuildObjects() {
	r.objects = []fyne.CanvasObject{r.bg, r.page, r.img, r.bbox}
	for _, g := range r.guides {
		r.objects = append(r.objects, g)
	}
}

func (r *pageCanvasRenderer) Destroy()                     {}
func (r *pageCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *pageCanvasRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 150) }

func (r *pageCanvasRenderer) Refresh() {
	r.render()
	r.Layout(r.pc.Size())
	canvas.Refresh(r.pc)
}

func (r *pageCanvasRenderer) render() {
	ed := r.pc.ed
	if ed == nil || ed.Closed() {
		r.img.Image = nil
		return
	}
	scale := float64(r.pc.vp.zoom)
	if scale > 2 {
		scale = 2
	}
	m, err := export.RenderPage(ed.Document(), ed.ActivePage(), export.Options{Scale: scale, ShowGrid: ed.SnapToGrid()})
	if err != nil {
		r.pc.log.Error("render page", slog.Any("err", err))
		r.img.Image = nil
		return
	}
	r.img.Image = m
	r.img.Refresh()
}

func (r *pageCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	vp := r.pc.vp
	ox, oy := vp.origin(size.Width, size.Height)
	pageSize := fyne.NewSize(vp.pageW*vp.zoom, vp.pageH*vp.zoom)
	r.page.Move(fyne.NewPos(ox, oy))
	r.page.Resize(pageSize)
	r.img.Move(fyne.NewPos(ox, oy))
	r.img.Resize(pageSize)

	ed := r.pc.ed
	if ed == nil || ed.Closed() {
		r.bbox.Hide()
		r.layoutGuides(nil)
		return
	}
	if el, ok := ed.Selection(); ok {
		b := scene.Bounds(el)
		tl := r.pc.toScreen(vector.Pt{X: b.X, Y: b.Y})
		r.bbox.Move(fyne.NewPos(tl.X-1, tl.Y-1))
		r.bbox.Resize(fyne.NewSize(float32(b.W)*vp.zoom+2, float32(b.H)*vp.zoom+2))
		r.bbox.Show()
	} else {
		r.bbox.Hide()
	}
	r.layoutGuides(ed.Guides())
}

func (r *pageCanvasRenderer) layoutGuides(gs []vector.GuideLine) {
	if len(gs) != len(r.guides) {
		for len(r.guides) < len(gs) {
			l := canvas.NewLine(color.RGBA{R: 236, G: 72, B: 153, A: 255})
			l.StrokeWidth = 1
			r.guides = append(r.guides, l)
		}
		r.guides = r.guides[:len(gs)]
		r.rebuildObjects()
	}
	for i, g := range gs {
		r.guides[i].Position1 = r.pc.toScreen(g.From)
		r.guides[i].Position2 = r.pc.toScreen(g.To)
	}
}
