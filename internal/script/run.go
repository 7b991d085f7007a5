/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	applog "doccanvas/internal/log"
	"doccanvas/internal/scene"
)

// ErrExpectation is wrapped by Run when an expect step does not hold.
var ErrExpectation = errors.New("expectation failed")

// Report summarizes a run.
type Report struct {
	Steps  int
	Labels map[string]string // label -> element id
}

// Run replays the script against ed. The session gets canvas focus, the
// script's variables and, when set, its name. Run stops at the first
// failing step.
func Run(ed *editor.Editor, s Script) (Report, error) {
	rep := Report{Labels: map[string]string{}}
	lg := applog.WithOperation(applog.WithComponent("script"), "run")
	if len(s.Variables) > 0 {
		ed.SetVariables(s.Variables)
	}
	if s.Name != "" {
		if err := ed.SetName(s.Name); err != nil {
			return rep, err
		}
	}
	ed.SetFocus(true)
	r := &runner{ed: ed, s: s, labels: rep.Labels}
	for i, st := range s.Steps {
		if err := r.step(st); err != nil {
			lg.Warn("step failed", slog.Int("step", i+1), slog.Int("line", st.LineNo), slog.String("action", string(st.Action)), slog.String("err", err.Error()))
			return rep, fmt.Errorf("step %d (line %d, %s): %w", i+1, st.LineNo, st.Action, err)
		}
		rep.Steps++
	}
	lg.Debug("script finished", slog.Int("steps", rep.Steps))
	return rep, nil
}

type runner struct {
	ed     *editor.Editor
	s      Script
	labels map[string]string
}

func (r *runner) ref(name string) string {
	if id, ok := r.labels[name]; ok {
		return id
	}
	return name
}

func (r *runner) label(as, id string) {
	if as != "" && id != "" {
		r.labels[as] = id
	}
}

func (r *runner) step(st Step) error {
	ed := r.ed
	switch st.Action {
	case ActAdd:
		it, err := scene.ParseItem(strings.ToLower(strings.TrimSpace(st.Arg)))
		if err != nil {
			return err
		}
		id, err := ed.AddElement(it)
		r.label(st.As, id)
		return err
	case ActSelect:
		if !ed.Select(r.ref(st.Arg)) {
			return fmt.Errorf("no element %q on the active page", st.Arg)
		}
	case ActDeselect:
		ed.ClearSelection()
	case ActSet:
		for k, v := range st.Props {
			f, err := editor.ParseField(k)
			if err != nil {
				ed.DiscardProperties()
				return err
			}
			if err := ed.Stage(f, v); err != nil {
				ed.DiscardProperties()
				return err
			}
		}
		if err := ed.CommitProperties(); err != nil {
			ed.DiscardProperties()
			return err
		}
	case ActDrag:
		if err := ed.PointerDown(st.From); err != nil {
			return err
		}
		if err := ed.PointerMove(st.To); err != nil {
			return err
		}
		return ed.PointerUp(st.To)
	case ActClick:
		if err := ed.PointerDown(st.From); err != nil {
			return err
		}
		return ed.PointerUp(st.From)
	case ActAlign:
		a, err := parseAlignment(st.Arg)
		if err != nil {
			return err
		}
		return ed.Align(a)
	case ActFront:
		return ed.BringToFront()
	case ActBack:
		return ed.SendToBack()
	case ActCopy:
		return ed.Copy()
	case ActPaste:
		id, err := ed.Paste()
		r.label(st.As, id)
		return err
	case ActDelete:
		return ed.DeleteSelected()
	case ActUndo, ActRedo:
		for i := 0; i < st.Count; i++ {
			var err error
			if st.Action == ActUndo {
				_, err = ed.Undo()
			} else {
				_, err = ed.Redo()
			}
			if err != nil {
				return err
			}
		}
	case ActKey:
		ev, err := ParseShortcut(st.Arg)
		if err != nil {
			return err
		}
		_, err = ed.KeyDown(ev)
		ed.KeyUp(ev.Key)
		return err
	case ActText:
		id := ed.SelectedID()
		if id == "" {
			return editor.ErrNoSelection
		}
		return ed.CommitText(id, st.Arg)
	case ActAddPage:
		_, err := ed.AddPage()
		return err
	case ActSwitchPage, ActDeletePage:
		n, err := strconv.Atoi(strings.TrimSpace(st.Arg))
		if err != nil {
			return fmt.Errorf("page number %q: %w", st.Arg, err)
		}
		if st.Action == ActSwitchPage {
			return ed.SwitchPage(n - 1)
		}
		return ed.DeletePage(n - 1)
	case ActInsertVar:
		id, err := ed.InsertVariable(st.Arg)
		r.label(st.As, id)
		return err
	case ActBind:
		return ed.BindVariable(st.Arg)
	case ActUpload:
		return r.upload(st.Arg)
	case ActSnap:
		on, err := strconv.ParseBool(st.Arg)
		if err != nil {
			return fmt.Errorf("snap: %w", err)
		}
		ed.SetSnapToGrid(on)
	case ActRename:
		return ed.SetName(st.Arg)
	case ActFormat:
		f, err := domain.ParseFormat(st.Arg)
		if err != nil {
			return err
		}
		return ed.SetFormat(f)
	case ActExpect:
		return r.expect(st.Expect)
	case ActSave:
		return ed.Save()
	case ActCancel:
		return ed.Cancel()
	default:
		return fmt.Errorf("unsupported action %q", st.Action)
	}
	return nil
}

// upload reads the file into the selected image element and waits for the
// result to be applied.
func (r *runner) upload(path string) error {
	id := r.ed.SelectedID()
	if id == "" {
		return editor.ErrNoSelection
	}
	if !filepath.IsAbs(path) && r.s.BaseDir != "" {
		path = filepath.Join(r.s.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	up, err := r.ed.BeginImageUpload(id, filepath.Base(path), f)
	if err != nil {
		return err
	}
	<-up.Done()
	r.ed.ProcessPending()
	return up.Err()
}

func (r *runner) expect(x Expect) error {
	ed := r.ed
	var fails []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			fails = append(fails, fmt.Sprintf(format, args...))
		}
	}
	if x.Elements != nil {
		n := len(ed.Elements())
		check(n == *x.Elements, "elements = %d, want %d", n, *x.Elements)
	}
	if x.Pages != nil {
		check(ed.PageCount() == *x.Pages, "pages = %d, want %d", ed.PageCount(), *x.Pages)
	}
	if x.Page != nil {
		check(ed.ActivePage()+1 == *x.Page, "active page = %d, want %d", ed.ActivePage()+1, *x.Page)
	}
	if x.Selected != nil {
		want := *x.Selected
		if want != "" {
			want = r.ref(want)
		}
		check(ed.SelectedID() == want, "selected = %q, want %q", ed.SelectedID(), want)
	}
	if x.CanUndo != nil {
		check(ed.CanUndo() == *x.CanUndo, "canUndo = %v, want %v", ed.CanUndo(), *x.CanUndo)
	}
	if x.CanRedo != nil {
		check(ed.CanRedo() == *x.CanRedo, "canRedo = %v, want %v", ed.CanRedo(), *x.CanRedo)
	}
	if x.X != nil || x.Y != nil || x.Content != nil {
		el, ok := ed.Selection()
		if !ok {
			return fmt.Errorf("%w: nothing selected", ErrExpectation)
		}
		if x.X != nil {
			check(math.Abs(el.X-*x.X) < 1e-9, "x = %v, want %v", el.X, *x.X)
		}
		if x.Y != nil {
			check(math.Abs(el.Y-*x.Y) < 1e-9, "y = %v, want %v", el.Y, *x.Y)
		}
		if x.Content != nil {
			check(el.Content == *x.Content, "content = %q, want %q", el.Content, *x.Content)
		}
	}
	if len(fails) > 0 {
		return fmt.Errorf("%w: %s", ErrExpectation, strings.Join(fails, "; "))
	}
	return nil
}

func parseAlignment(s string) (editor.Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return editor.AlignLeft, nil
	case "center", "centre":
		return editor.AlignCenter, nil
	case "right":
		return editor.AlignRight, nil
	}
	return 0, fmt.Errorf("unknown alignment %q", s)
}

// ParseShortcut turns "ctrl+shift+z", "cmd+c" or "delete" into a key event.
func ParseShortcut(s string) (editor.KeyEvent, error) {
	var ev editor.KeyEvent
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			if p == "" {
				return ev, fmt.Errorf("shortcut %q has no key", s)
			}
			ev.Key = editor.NormalizeKey(p)
			break
		}
		switch p {
		case "ctrl", "control":
			ev.Ctrl = true
		case "cmd", "meta", "super":
			ev.Meta = true
		case "shift":
			ev.Shift = true
		default:
			return ev, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	return ev, nil
}
