/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the document canvas editing session: pages, selection,
// pointer and keyboard interaction, clipboard, layering, the property form,
// image uploads and the save/cancel hand-off.
//
// An Editor is driven from a single event loop and is not safe for
// concurrent use. The only background work is reading uploaded images; their
// results are queued and applied by ProcessPending on the loop goroutine.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"doccanvas/internal/clipboard"
	"doccanvas/internal/config"
	"doccanvas/internal/domain"
	applog "doccanvas/internal/log"
	"doccanvas/internal/scene"
	"doccanvas/internal/undo"
	"doccanvas/internal/vector"
)

var (
	// ErrLastPage is returned when deleting the only remaining page.
	ErrLastPage = errors.New("editor: cannot delete the last page")
	// ErrClosed is returned by every operation after Save or Cancel.
	ErrClosed = errors.New("editor: session closed")
	// ErrNoSelection is returned by operations that need a selected element.
	ErrNoSelection = errors.New("editor: no element selected")
	// ErrClipboardEmpty is returned by Paste when nothing was copied.
	ErrClipboardEmpty = errors.New("editor: clipboard is empty")
	// ErrPageIndex is returned for a page index outside the document.
	ErrPageIndex = errors.New("editor: page index out of range")
)

// ValidationError blocks a commit until the user fixes Field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

// Options configures a session.
type Options struct {
	Format          domain.Format
	SnapToGrid      bool
	PasteOffset     float64
	HistoryDepth    int
	HistoryElements int
	Variables       []string
	// Mirror, when set, also publishes copied elements to the OS clipboard.
	Mirror clipboard.Mirror
	// OnSave receives the complete document. A returned error keeps the session open.
	OnSave func(domain.Document) error
	// OnCancel is called once when the session is discarded.
	OnCancel func()
	// Wake is called from the upload goroutine when a result is ready to be
	// applied with ProcessPending.
	Wake   func()
	Logger *slog.Logger
	Now    func() time.Time
}

// OptionsFromConfig maps the editor section of the user config.
func OptionsFromConfig(c config.EditorConfig) Options {
	o := Options{
		Format:          c.Format(),
		SnapToGrid:      c.SnapToGrid,
		PasteOffset:     c.PasteOffset,
		HistoryDepth:    c.HistoryDepth,
		HistoryElements: c.HistoryElements,
		Variables:       append([]string(nil), c.Variables...),
	}
	if c.SystemClipboard && (clipboard.System{}).Available() {
		o.Mirror = clipboard.System{}
	}
	return o
}

// DefaultPasteOffset is the paste delta used when Options leave it unset.
const DefaultPasteOffset = 20

type page struct {
	id    string
	scene *scene.Scene
}

// Editor is one editing session over one document.
type Editor struct {
	id        string
	name      string
	format    domain.Format
	createdAt time.Time

	pages  []*page
	active int

	selected string
	history  *undo.Manager
	clip     *clipboard.Clipboard

	snap        bool
	pasteOffset float64
	vars        []string

	// interaction
	state   State
	drag    dragState
	guides  []vector.GuideLine
	focused bool
	held    map[Key]bool
	staged  map[Field]string

	// uploads
	pendMu  sync.Mutex
	pending []uploadResult

	closed    bool
	onSave    func(domain.Document) error
	onCancel  func()
	wake      func()
	listeners []func(Event)
	log       *slog.Logger
	now       func() time.Time
}

// New starts a session. A nil initial document yields one empty page.
func New(initial *domain.Document, opts Options) *Editor {
	if !opts.Format.Valid() {
		opts.Format = domain.DefaultFormat
	}
	if opts.PasteOffset <= 0 {
		opts.PasteOffset = DefaultPasteOffset
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("editor")
	}
	e := &Editor{
		id:          domain.NewID("tpl"),
		format:      opts.Format,
		createdAt:   opts.Now(),
		history:     undo.NewManager(undo.Config{MaxPerPage: opts.HistoryDepth, MaxElements: opts.HistoryElements}),
		clip:        clipboard.New(opts.Mirror),
		snap:        opts.SnapToGrid,
		pasteOffset: opts.PasteOffset,
		vars:        cleanVariables(opts.Variables),
		held:        map[Key]bool{},
		staged:      map[Field]string{},
		onSave:      opts.OnSave,
		onCancel:    opts.OnCancel,
		wake:        opts.Wake,
		log:         opts.Logger,
		now:         opts.Now,
	}
	if initial != nil {
		e.seed(*initial)
	}
	if len(e.pages) == 0 {
		e.pages = append(e.pages, e.newPage("", nil))
	}
	return e
}

func (e *Editor) seed(doc domain.Document) {
	if doc.ID != "" {
		e.id = doc.ID
	}
	e.name = doc.Name
	if doc.Format.Valid() {
		e.format = doc.Format
	}
	if !doc.CreatedAt.IsZero() {
		e.createdAt = doc.CreatedAt
	}
	seenPages := map[string]bool{}
	for _, p := range doc.Pages {
		id := p.ID
		if id == "" || seenPages[id] {
			id = ""
		}
		np := e.newPage(id, sanitize(p.Elements))
		seenPages[np.id] = true
		e.pages = append(e.pages, np)
	}
}

// sanitize restores per-element invariants on loaded data: unique ids,
// non-negative geometry and a complete style.
func sanitize(in []domain.Element) []domain.Element {
	out := make([]domain.Element, 0, len(in))
	seen := map[string]bool{}
	for _, el := range in {
		if el.ID == "" || seen[el.ID] {
			el.ID = domain.NewID("elem")
		}
		seen[el.ID] = true
		el = scene.Patch{}.Apply(el)
		if el.Style == (domain.Style{}) {
			el.Style = scene.DefaultStyle()
		}
		out = append(out, el)
	}
	return out
}

func (e *Editor) newPage(id string, elems []domain.Element) *page {
	if id == "" {
		id = domain.NewID("page")
	}
	p := &page{id: id, scene: scene.New(elems)}
	e.history.Open(id, elems)
	return p
}

func cleanVariables(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Subscribe registers fn for change notifications. It is called on the
// goroutine that performed the change.
func (e *Editor) Subscribe(fn func(Event)) {
	if fn != nil {
		e.listeners = append(e.listeners, fn)
	}
}

func (e *Editor) emit(ev Event) {
	for _, fn := range e.listeners {
		fn(ev)
	}
}

func (e *Editor) cur() *page { return e.pages[e.active] }

func (e *Editor) pageByID(id string) *page {
	for _, p := range e.pages {
		if p.id == id {
			return p
		}
	}
	return nil
}

// commit runs fn against the active page and, when it reports a change,
// records exactly one snapshot of the resulting list.
func (e *Editor) commit(op string, fn func(s *scene.Scene) bool) bool {
	return e.commitOn(e.cur(), op, fn)
}

func (e *Editor) commitOn(p *page, op string, fn func(s *scene.Scene) bool) bool {
	if !fn(p.scene) {
		return false
	}
	elems := p.scene.Elements()
	e.history.Record(p.id, elems)
	e.revalidateSelection()
	e.log.DebugContext(e.logContext(p), "commit", slog.String("op", op), slog.Int("elements", len(elems)))
	e.emit(Event{Kind: EventChanged, PageID: p.id, Op: op})
	return true
}

// logContext tags log records with the document and the page p.
func (e *Editor) logContext(p *page) context.Context {
	return applog.WithPage(applog.WithDocument(context.Background(), e.id), p.id)
}

func (e *Editor) guard() error {
	if e.closed {
		return ErrClosed
	}
	return nil
}

// settle finishes a drag in progress and flushes staged property edits so a
// discrete command never interleaves with an unfinished gesture.
func (e *Editor) settle() {
	if e.state == StateDragging {
		e.finishDrag()
	}
	e.state = StateIdle
	e.drag = dragState{}
	e.guides = nil
	if len(e.staged) > 0 {
		if err := e.commitStaged(); err != nil {
			e.log.Warn("discarding invalid property edits", slog.String("err", err.Error()))
		}
		clear(e.staged)
	}
}

// Undo steps the active page back one snapshot. It reports false when there
// is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	e.settle()
	p := e.cur()
	elems, ok := e.history.Undo(p.id)
	if !ok {
		return false, nil
	}
	e.applyHistory(p, elems, "undo")
	return true, nil
}

// Redo steps the active page forward one snapshot.
func (e *Editor) Redo() (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	e.settle()
	p := e.cur()
	elems, ok := e.history.Redo(p.id)
	if !ok {
		return false, nil
	}
	e.applyHistory(p, elems, "redo")
	return true, nil
}

func (e *Editor) applyHistory(p *page, elems []domain.Element, op string) {
	p.scene.Replace(elems)
	e.revalidateSelection()
	e.log.DebugContext(e.logContext(p), op, slog.Int("elements", len(elems)))
	e.emit(Event{Kind: EventChanged, PageID: p.id, Op: op})
}

func (e *Editor) CanUndo() bool { return !e.closed && e.history.CanUndo(e.cur().id) }
func (e *Editor) CanRedo() bool { return !e.closed && e.history.CanRedo(e.cur().id) }

// HistoryPosition returns the active page's history index and length.
func (e *Editor) HistoryPosition() (index, length int) {
	i, n, _ := e.history.Position(e.cur().id)
	return i, n
}

// Select makes id the selection if it exists on the active page.
func (e *Editor) Select(id string) bool {
	if e.closed {
		return false
	}
	if _, ok := e.cur().scene.Find(id); !ok {
		return false
	}
	e.setSelection(id)
	return true
}

// ClearSelection drops the selection.
func (e *Editor) ClearSelection() { e.setSelection("") }

func (e *Editor) setSelection(id string) {
	if e.selected == id {
		return
	}
	if len(e.staged) > 0 {
		if err := e.commitStaged(); err != nil {
			e.log.Warn("discarding invalid property edits", slog.String("err", err.Error()))
		}
		clear(e.staged)
	}
	e.selected = id
	e.emit(Event{Kind: EventSelection, PageID: e.cur().id, ElementID: id})
}

func (e *Editor) revalidateSelection() {
	if e.selected == "" {
		return
	}
	if _, ok := e.cur().scene.Find(e.selected); !ok {
		e.selected = ""
		clear(e.staged)
		e.emit(Event{Kind: EventSelection, PageID: e.cur().id})
	}
}

// Selection returns the selected element.
func (e *Editor) Selection() (domain.Element, bool) {
	if e.selected == "" || e.closed {
		return domain.Element{}, false
	}
	return e.cur().scene.Find(e.selected)
}

// SelectedID returns the selected element id or "".
func (e *Editor) SelectedID() string { return e.selected }

// Elements returns the active page's elements in paint order.
func (e *Editor) Elements() []domain.Element {
	if e.closed {
		return nil
	}
	return e.cur().scene.PaintOrder()
}

// Element looks up id on the active page.
func (e *Editor) Element(id string) (domain.Element, bool) {
	if e.closed {
		return domain.Element{}, false
	}
	return e.cur().scene.Find(id)
}

// Name returns the document name.
func (e *Editor) Name() string { return e.name }

// SetName changes the document name. It is document metadata and is not
// part of any page history.
func (e *Editor) SetName(name string) error {
	if err := e.guard(); err != nil {
		return err
	}
	e.name = name
	return nil
}

// Format returns the document format.
func (e *Editor) Format() domain.Format { return e.format }

// SetFormat switches canvas size and grid. Elements are not moved.
func (e *Editor) SetFormat(f domain.Format) error {
	if err := e.guard(); err != nil {
		return err
	}
	if !f.Valid() {
		return &ValidationError{Field: "format", Msg: fmt.Sprintf("unknown format %q", f)}
	}
	e.format = f
	e.emit(Event{Kind: EventChanged, PageID: e.cur().id, Op: "format"})
	return nil
}

// Canvas returns the active canvas dimensions and grid.
func (e *Editor) Canvas() domain.CanvasSpec { return e.format.Canvas() }

// SnapToGrid reports whether dragging snaps to the grid.
func (e *Editor) SnapToGrid() bool { return e.snap }

// SetSnapToGrid toggles grid snapping for subsequent drags.
func (e *Editor) SetSnapToGrid(on bool) { e.snap = on }

// Closed reports whether Save or Cancel ended the session.
func (e *Editor) Closed() bool { return e.closed }

// Document returns the current in-memory document.
func (e *Editor) Document() domain.Document {
	c := e.format.Canvas()
	doc := domain.Document{
		ID:         e.id,
		Name:       e.name,
		Format:     e.format,
		CanvasSize: domain.Size{Width: c.Width, Height: c.Height},
		CreatedAt:  e.createdAt,
		UpdatedAt:  e.now(),
		Pages:      make([]domain.Page, 0, len(e.pages)),
	}
	for _, p := range e.pages {
		doc.Pages = append(doc.Pages, domain.Page{ID: p.id, Elements: p.scene.Elements()})
	}
	return doc
}
