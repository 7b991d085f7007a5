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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"doccanvas/internal/config"
	"doccanvas/internal/crash"
	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	"doccanvas/internal/export"
	applog "doccanvas/internal/log"
	"doccanvas/internal/scene"
	"doccanvas/internal/storage"
	"doccanvas/internal/stylepack"
	"doccanvas/internal/telemetry"
	"doccanvas/internal/version"
)

// errNoFolder makes Save ask for a document folder first.
var errNoFolder = errors.New("document has no folder yet")

const keepRevisions = 50

// session is the window state around one editor session. A successful save
// or a cancel starts a fresh session on the stored document.
type session struct {
	app fyne.App
	w   fyne.Window
	cfg config.AppConfig
	log *slog.Logger

	h  *storage.DocumentHandle
	ed *editor.Editor

	pc        *PageCanvas
	status    *widget.Label
	pageList  *widget.List
	varList   *widget.List
	props     *fyne.Container
	nameEntry *widget.Entry
	formatSel *widget.Select
	snapCheck *widget.Check
	presetSel *widget.Select

	// syncing suppresses widget callbacks while the chrome mirrors the editor.
	syncing bool
}

// Run starts the desktop editor. Pass a document folder to open it, or an
// empty string to start a new document.
func Run(dir string) error {
	cfg, cerr := config.Load()
	applog.Init(applog.FromConfig(cfg.Logging))
	telemetry.NewDefault(telemetry.FromConfig(cfg.General))
	l := applog.WithComponent("ui")
	if cerr != nil {
		l.Warn("config", slog.Any("err", cerr))
	}
	l.Info("starting UI", slog.String("version", version.String()))

	s := &session{cfg: cfg, log: l}
	var doc *domain.Document
	if strings.TrimSpace(dir) != "" {
		h, err := storage.Open(dir)
		if err != nil {
			return fmt.Errorf("open document: %w", err)
		}
		s.h = h
		d := h.Document
		doc = &d
	}
	defer crash.Recover(s.h, s.snapshot)

	s.app = app.NewWithID("dev.doccanvas")
	s.w = s.app.NewWindow("DocCanvas")
	prefs := s.app.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 820)
	if winW < 900 {
		winW = 900
	}
	if winH < 600 {
		winH = 600
	}
	s.w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	s.build()
	s.start(doc)
	if s.h != nil {
		addRecentDocument(prefs, s.h.Root)
	}

	s.w.SetCloseIntercept(func() {
		sz := s.w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		s.w.Close()
	})
	s.w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func (s *session) snapshot() domain.Document {
	if s.ed == nil {
		return domain.Document{}
	}
	return s.ed.Document()
}

// start opens a new editor session on doc (nil for a blank document).
func (s *session) start(doc *domain.Document) {
	opts := editor.OptionsFromConfig(s.cfg.Editor)
	opts.Logger = applog.WithComponent("editor")
	opts.OnSave = s.persist
	var ed *editor.Editor
	opts.Wake = func() { fyne.Do(func() { ed.ProcessPending() }) }
	ed = editor.New(doc, opts)
	ed.Subscribe(s.onEvent)
	s.ed = ed
	s.pc.Attach(ed)
	s.sync()
	s.rebuildProps()
	s.refreshPresets()
}

// refreshPresets reloads the preset names of the open document.
func (s *session) refreshPresets() {
	var names []string
	if s.h != nil {
		presets, err := stylepack.List(s.h.Root)
		if err != nil {
			s.log.Warn("list presets", slog.Any("err", err))
		}
		for _, p := range presets {
			names = append(names, p.Name)
		}
	}
	s.presetSel.SetOptions(names)
	s.presetSel.ClearSelected()
}

func (s *session) applyPreset() {
	name := s.presetSel.Selected
	if s.h == nil || name == "" {
		return
	}
	p, err := stylepack.Load(s.h.Root, name)
	if err != nil {
		s.report(err)
		return
	}
	n, err := stylepack.Apply(s.ed, p)
	if err != nil {
		s.report(err)
		return
	}
	s.rebuildProps()
	s.status.SetText(fmt.Sprintf("Applied %s (%d properties)", name, n))
}

// savePreset stores the style of the selected element as a preset.
func (s *session) savePreset() {
	if s.h == nil {
		dialog.ShowInformation("Style presets", "Save the document once before adding presets.", s.w)
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Headline")
	dialog.ShowForm("Save style preset", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok {
				return
			}
			p, err := stylepack.Capture(s.ed, strings.TrimSpace(entry.Text))
			if err == nil {
				err = stylepack.Save(s.h.Root, p)
			}
			if err != nil {
				s.report(err)
				return
			}
			s.refreshPresets()
			s.status.SetText("Saved preset " + p.Name)
		}, s.w)
}

func (s *session) persist(doc domain.Document) error {
	if s.h == nil {
		return errNoFolder
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	opt := storage.PersistOptions{Index: s.cfg.Storage.Index, KeepRevisions: keepRevisions}
	if err := storage.Persist(ctx, s.h, doc, opt); err != nil {
		return err
	}
	telemetry.DocumentSaved(doc)
	addRecentDocument(s.app.Preferences(), s.h.Root)
	return nil
}

func (s *session) onEvent(ev editor.Event) {
	switch ev.Kind {
	case editor.EventSaved:
		d := s.h.Document
		s.start(&d)
		s.status.SetText("Saved to " + s.h.Root)
		return
	case editor.EventCancelled:
		if s.h != nil {
			d := s.h.Document
			s.start(&d)
		} else {
			s.start(nil)
		}
		s.status.SetText("Changes discarded")
		return
	case editor.EventUploadFailed:
		s.report(ev.Err)
	case editor.EventUploadDone:
		s.status.SetText("Image placed")
	case editor.EventSelection:
		s.rebuildProps()
	case editor.EventPage:
		s.pc.Attach(s.ed)
		s.rebuildProps()
	case editor.EventChanged:
		if ev.ElementID != "" && ev.ElementID == s.ed.SelectedID() && !s.ed.Staged() {
			s.rebuildProps()
		}
	}
	s.pc.Refresh()
	s.sync()
}

// report shows err in the status bar and logs it. A nil err resets the bar.
func (s *session) report(err error) {
	if err != nil {
		s.log.Warn("editor", slog.Any("err", err))
	}
	s.status.SetText(statusText(err))
}

// sync mirrors editor state into the chrome widgets.
func (s *session) sync() {
	s.syncing = true
	defer func() { s.syncing = false }()
	s.nameEntry.SetText(s.ed.Name())
	s.formatSel.SetSelected(string(s.ed.Format()))
	s.snapCheck.SetChecked(s.ed.SnapToGrid())
	s.pageList.Refresh()
	s.pageList.Select(s.ed.ActivePage())
	s.varList.Refresh()
	title := "DocCanvas"
	if n := strings.TrimSpace(s.ed.Name()); n != "" {
		title = n + " - DocCanvas"
	}
	s.w.SetTitle(title)
}

func (s *session) build() {
	s.status = widget.NewLabel("Ready")
	s.pc = NewPageCanvas()
	s.pc.OnError = s.report
	s.pc.OnEdit = s.openEditor

	s.nameEntry = widget.NewEntry()
	s.nameEntry.SetPlaceHolder("Document name")
	s.nameEntry.OnChanged = func(v string) {
		if !s.syncing {
			s.report(s.ed.SetName(v))
		}
	}
	var formats []string
	for _, f := range domain.Formats() {
		formats = append(formats, string(f))
	}
	s.formatSel = widget.NewSelect(formats, func(v string) {
		if s.syncing {
			return
		}
		f, err := domain.ParseFormat(v)
		if err == nil {
			err = s.ed.SetFormat(f)
		}
		s.report(err)
		s.pc.Attach(s.ed)
	})
	s.snapCheck = widget.NewCheck("Snap to grid", func(on bool) {
		if !s.syncing {
			s.ed.SetSnapToGrid(on)
			s.pc.Refresh()
		}
	})

	s.pageList = widget.NewList(
		func() int {
			if s.ed == nil {
				return 0
			}
			return s.ed.PageCount()
		},
		func() fyne.CanvasObject { return widget.NewLabel("Page") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			n := 0
			if pages := s.ed.Document().Pages; i < len(pages) {
				n = len(pages[i].Elements)
			}
			o.(*widget.Label).SetText(pageLabel(i, n))
		},
	)
	s.pageList.OnSelected = func(i widget.ListItemID) {
		if !s.syncing && i != s.ed.ActivePage() {
			s.report(s.ed.SwitchPage(i))
		}
	}

	s.varList = widget.NewList(
		func() int {
			if s.ed == nil {
				return 0
			}
			return len(s.ed.Variables())
		},
		func() fyne.CanvasObject { return widget.NewLabel("variable") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if vs := s.ed.Variables(); i < len(vs) {
				o.(*widget.Label).SetText(domain.VariableContent(vs[i]))
			}
		},
	)
	var chosenVar string
	s.varList.OnSelected = func(i widget.ListItemID) {
		if vs := s.ed.Variables(); i < len(vs) {
			chosenVar = vs[i]
		}
	}

	palette := container.NewVBox(widget.NewLabelWithStyle("Insert", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}))
	for _, it := range scene.PaletteItems() {
		it := it
		palette.Add(widget.NewButton(it.Label(), func() {
			_, err := s.ed.AddElement(it)
			s.report(err)
		}))
	}

	varBox := container.NewBorder(
		widget.NewLabelWithStyle("Variables", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(3,
			widget.NewButton("New…", s.addVariable),
			widget.NewButton("Insert", func() {
				if chosenVar == "" {
					return
				}
				_, err := s.ed.InsertVariable(chosenVar)
				s.report(err)
			}),
			widget.NewButton("Bind", func() {
				if chosenVar != "" {
					s.report(s.ed.BindVariable(chosenVar))
				}
			}),
		),
		nil, nil, s.varList,
	)

	pageBox := container.NewBorder(
		widget.NewLabelWithStyle("Pages", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			widget.NewButton("Add", func() {
				_, err := s.ed.AddPage()
				s.report(err)
			}),
			widget.NewButton("Delete", s.deletePage),
		),
		nil, nil, s.pageList,
	)

	left := container.NewBorder(palette, nil, nil, nil,
		container.NewVSplit(pageBox, varBox))

	s.props = container.NewVBox()
	arrange := container.NewGridWithColumns(2,
		widget.NewButton("Bring to front", func() { s.report(s.ed.BringToFront()) }),
		widget.NewButton("Send to back", func() { s.report(s.ed.SendToBack()) }),
	)
	align := container.NewGridWithColumns(3,
		widget.NewButton("Left", func() { s.report(s.ed.Align(editor.AlignLeft)) }),
		widget.NewButton("Center", func() { s.report(s.ed.Align(editor.AlignCenter)) }),
		widget.NewButton("Right", func() { s.report(s.ed.Align(editor.AlignRight)) }),
	)
	s.presetSel = widget.NewSelect(nil, nil)
	s.presetSel.PlaceHolder = "Style preset"
	presets := container.NewBorder(nil, nil, nil,
		container.NewHBox(
			widget.NewButton("Apply", s.applyPreset),
			widget.NewButton("Save…", s.savePreset),
		),
		s.presetSel,
	)
	right := container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Properties", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		s.props, widget.NewSeparator(),
		widget.NewLabel("Style presets"), presets,
		widget.NewLabel("Arrange"), arrange,
		widget.NewLabel("Align on canvas"), align,
	))

	top := container.NewBorder(nil, nil, nil,
		container.NewHBox(
			widget.NewButton("Cancel", s.cancel),
			widget.NewButton("Save", s.save),
		),
		container.NewHBox(container.NewGridWrap(fyne.NewSize(260, s.nameEntry.MinSize().Height), s.nameEntry), s.formatSel, s.snapCheck, layout.NewSpacer()),
	)

	center := container.NewHSplit(left, container.NewHSplit(s.pc, right))
	center.Offset = 0.18
	content := container.NewBorder(top, s.status, nil, nil, center)
	s.w.SetContent(content)
	s.w.SetMainMenu(s.menu())
}

func (s *session) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New", s.newDocument),
		fyne.NewMenuItem("Open…", s.openDialog),
		fyne.NewMenuItem("Open Recent…", s.recentDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", s.save),
		fyne.NewMenuItem("Discard Changes", s.cancel),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() {
			_, err := s.ed.Undo()
			s.report(err)
		}),
		fyne.NewMenuItem("Redo", func() {
			_, err := s.ed.Redo()
			s.report(err)
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", func() { s.report(s.ed.Copy()) }),
		fyne.NewMenuItem("Paste", func() {
			_, err := s.ed.Paste()
			s.report(err)
		}),
		fyne.NewMenuItem("Paste from System Clipboard", func() {
			if err := s.ed.ImportClipboard(); err != nil {
				s.report(err)
				return
			}
			_, err := s.ed.Paste()
			s.report(err)
		}),
		fyne.NewMenuItem("Delete", func() { s.report(s.ed.DeleteSelected()) }),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Fit Page", s.pc.FitPage),
	)
	exp := fyne.NewMenu("Export",
		fyne.NewMenuItem("PDF…", func() { s.exportFile(".pdf", export.PDFFile) }),
		fyne.NewMenuItem("Zip Archive…", func() {
			s.exportFile(".zip", func(doc domain.Document, out string, opt export.Options) error {
				_, err := export.ArchiveFile(doc, out, opt)
				return err
			})
		}),
		fyne.NewMenuItem("PNG Pages…", func() { s.exportDir("png", export.PNGPages) }),
		fyne.NewMenuItem("SVG Pages…", func() { s.exportDir("svg", export.SVGPages) }),
	)
	about := fyne.NewMenu("About",
		fyne.NewMenuItem("About DocCanvas", func() {
			dialog.ShowInformation("About", "DocCanvas "+version.String(), s.w)
		}),
	)
	return fyne.NewMainMenu(file, edit, view, exp, about)
}

// rebuildProps recreates the property form for the selected element.
func (s *session) rebuildProps() {
	s.props.RemoveAll()
	el, ok := s.ed.Selection()
	if !ok {
		s.props.Add(widget.NewLabel("Nothing selected"))
		s.props.Refresh()
		return
	}
	form := container.New(layout.NewFormLayout())
	for _, f := range editor.Fields(el) {
		v, _ := s.ed.Property(f)
		form.Add(widget.NewLabel(fieldLabel(f)))
		form.Add(s.fieldWidget(f, v))
	}
	s.props.Add(widget.NewLabel(string(el.Kind) + " " + el.ID))
	s.props.Add(form)
	s.props.Add(container.NewGridWithColumns(2,
		widget.NewButton("Apply", func() {
			if err := s.ed.CommitProperties(); err != nil {
				s.report(err)
				return
			}
			s.report(nil)
			s.rebuildProps()
		}),
		widget.NewButton("Revert", func() {
			s.ed.DiscardProperties()
			s.rebuildProps()
		}),
	))
	s.props.Refresh()
}

func (s *session) fieldWidget(f editor.Field, v string) fyne.CanvasObject {
	stage := func(val string) {
		if err := s.ed.Stage(f, val); err != nil {
			s.report(err)
		}
	}
	kind, options := fieldInput(f)
	switch kind {
	case inputCheck:
		c := widget.NewCheck("", nil)
		c.SetChecked(v == "true")
		c.OnChanged = func(on bool) {
			if on {
				stage("true")
			} else {
				stage("false")
			}
		}
		return c
	case inputChoice:
		sel := widget.NewSelect(options, nil)
		sel.SetSelected(v)
		sel.OnChanged = stage
		return sel
	case inputMultiline:
		e := widget.NewMultiLineEntry()
		e.SetText(v)
		e.SetMinRowsVisible(3)
		e.OnChanged = stage
		return e
	}
	e := widget.NewEntry()
	e.SetText(v)
	e.OnChanged = stage
	return e
}

// openEditor handles a double-click affordance.
func (s *session) openEditor(act editor.EditAction, id string) {
	switch act {
	case editor.EditText:
		el, ok := s.ed.Element(id)
		if !ok {
			return
		}
		entry := widget.NewMultiLineEntry()
		entry.SetText(el.Content)
		entry.SetMinRowsVisible(6)
		dlg := dialog.NewForm("Edit text", "Apply", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Text", entry)},
			func(ok bool) {
				if ok {
					s.report(s.ed.CommitText(id, entry.Text))
				}
			}, s.w)
		dlg.Resize(fyne.NewSize(520, 300))
		dlg.Show()
	case editor.EditImage:
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				s.report(err)
				return
			}
			if rc == nil {
				return
			}
			up, err := s.ed.BeginImageUpload(id, rc.URI().Name(), rc)
			if err != nil {
				_ = rc.Close()
				s.report(err)
				return
			}
			s.status.SetText("Uploading " + rc.URI().Name() + "…")
			go func() {
				<-up.Done()
				_ = rc.Close()
			}()
		}, s.w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tif", ".tiff"}))
		fd.Show()
	}
}

func (s *session) addVariable() {
	entry := widget.NewEntry()
	entry.SetPlaceHolder("name")
	dialog.ShowForm("New variable", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			name := strings.TrimSpace(entry.Text)
			if !ok || name == "" {
				return
			}
			s.ed.SetVariables(append(s.ed.Variables(), name))
			s.varList.Refresh()
		}, s.w)
}

func (s *session) deletePage() {
	if s.ed.PageCount() <= 1 {
		s.report(editor.ErrLastPage)
		return
	}
	i := s.ed.ActivePage()
	dialog.ShowConfirm("Delete page", fmt.Sprintf("Delete page %d and its elements?", i+1), func(ok bool) {
		if ok {
			s.report(s.ed.DeletePage(i))
		}
	}, s.w)
}

func (s *session) save() {
	if s.ed.Closed() {
		return
	}
	err := s.ed.Save()
	if !errors.Is(err, errNoFolder) {
		if err != nil {
			s.report(err)
		}
		return
	}
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			s.report(err)
			return
		}
		if uri == nil {
			return
		}
		h, err := storage.InitDocument(uri.Path(), s.ed.Document())
		if err != nil {
			s.report(err)
			return
		}
		s.h = h
		s.save()
	}, s.w)
}

func (s *session) cancel() {
	if s.ed.Closed() {
		return
	}
	dialog.ShowConfirm("Discard changes", "Discard all changes since the last save?", func(ok bool) {
		if ok {
			s.report(s.ed.Cancel())
		}
	}, s.w)
}

func (s *session) newDocument() {
	s.h = nil
	s.start(nil)
	s.status.SetText("New document")
}

func (s *session) openDialog() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			s.report(err)
			return
		}
		if uri != nil {
			s.openDocument(uri.Path())
		}
	}, s.w)
}

func (s *session) openDocument(dir string) {
	h, err := storage.Open(dir)
	if err != nil {
		s.log.Error("open document", slog.String("root", dir), slog.Any("err", err))
		dialog.ShowError(err, s.w)
		return
	}
	s.h = h
	d := h.Document
	s.start(&d)
	addRecentDocument(s.app.Preferences(), dir)
	msg := "Opened " + dir
	if h.Recovered {
		msg += " (recovered from backup)"
	}
	s.status.SetText(msg)
}

func (s *session) recentDialog() {
	recent := loadRecentDocuments(s.app.Preferences())
	if len(recent) == 0 {
		dialog.ShowInformation("Open Recent", "No recent documents.", s.w)
		return
	}
	var dlg dialog.Dialog
	list := widget.NewList(
		func() int { return len(recent) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(recent[i]) },
	)
	list.OnSelected = func(i widget.ListItemID) {
		dlg.Hide()
		s.openDocument(recent[i])
	}
	dlg = dialog.NewCustom("Open Recent", "Close", container.NewGridWrap(fyne.NewSize(560, 320), list), s.w)
	dlg.Show()
}

func (s *session) exportOptions() export.Options {
	return export.Options{Values: map[string]string{}}
}

func (s *session) exportFile(ext string, write func(domain.Document, string, export.Options) error) {
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, s.w)
			return
		}
		if uc == nil {
			return
		}
		out := uc.URI().Path()
		_ = uc.Close()
		if err := write(s.ed.Document(), out, s.exportOptions()); err != nil {
			s.log.Error("export", slog.String("out", out), slog.Any("err", err))
			dialog.ShowError(err, s.w)
			return
		}
		telemetry.DocumentExported(strings.TrimPrefix(ext, "."), len(s.ed.Document().Pages))
		s.status.SetText("Exported to " + out)
	}, s.w)
	save.SetFileName(exportBaseName(s.ed.Name()) + ext)
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	save.Show()
}

func (s *session) exportDir(kind string, write func(domain.Document, string, export.Options) ([]string, error)) {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, s.w)
			return
		}
		if uri == nil {
			return
		}
		files, err := write(s.ed.Document(), uri.Path(), s.exportOptions())
		if err != nil {
			s.log.Error("export", slog.String("dir", uri.Path()), slog.Any("err", err))
			dialog.ShowError(err, s.w)
			return
		}
		telemetry.DocumentExported(kind, len(files))
		s.status.SetText(fmt.Sprintf("Exported %d pages to %s", len(files), uri.Path()))
	}, s.w)
}

func exportBaseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "document"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '-'
		}
		return r
	}, name)
}

// Recent documents are kept in preferences as a JSON array.
const recentPrefsKey = "recent.documents"
const recentMax = 10

func loadRecentDocuments(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentDocuments(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentDocument(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentDocuments(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentDocuments(p, out)
}
