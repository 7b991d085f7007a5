/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "strings"

// Key is a normalised key name: a lower-case letter or a named key.
type Key string

const (
	KeyDelete Key = "delete"
	KeyEscape Key = "escape"
)

// KeyEvent is one key press.
type KeyEvent struct {
	Key   Key
	Ctrl  bool
	Meta  bool
	Shift bool
	// Repeat marks auto-repeat presses generated while the key is held.
	Repeat bool
}

// NormalizeKey maps host key names such as "Z" or "Delete" to a Key.
func NormalizeKey(name string) Key {
	return Key(strings.ToLower(strings.TrimSpace(name)))
}

// Command is the editor action bound to a shortcut.
type Command int

const (
	CmdNone Command = iota
	CmdUndo
	CmdRedo
	CmdCopy
	CmdPaste
	CmdDelete
	CmdCancelDrag
)

func (c Command) String() string {
	switch c {
	case CmdUndo:
		return "undo"
	case CmdRedo:
		return "redo"
	case CmdCopy:
		return "copy"
	case CmdPaste:
		return "paste"
	case CmdDelete:
		return "delete"
	case CmdCancelDrag:
		return "cancel-drag"
	}
	return "none"
}

// Resolve maps a key event to a command without checking editor state.
func Resolve(ev KeyEvent) Command {
	mod := ev.Ctrl || ev.Meta
	switch {
	case mod && ev.Key == "z" && !ev.Shift:
		return CmdUndo
	case mod && (ev.Key == "z" && ev.Shift || ev.Key == "y"):
		return CmdRedo
	case mod && ev.Key == "c":
		return CmdCopy
	case mod && ev.Key == "v":
		return CmdPaste
	case !mod && ev.Key == KeyDelete:
		return CmdDelete
	case ev.Key == KeyEscape:
		return CmdCancelDrag
	}
	return CmdNone
}

// SetFocus tells the editor whether the canvas has keyboard focus. Losing
// focus forgets held keys.
func (e *Editor) SetFocus(on bool) {
	e.focused = on
	if !on {
		clear(e.held)
	}
}

// Focused reports whether the canvas has keyboard focus.
func (e *Editor) Focused() bool { return e.focused }

// KeyDown dispatches a shortcut. Each physical press runs its command at most
// once: repeats and presses of a key that was never released are ignored.
// It returns the command that ran, or CmdNone.
func (e *Editor) KeyDown(ev KeyEvent) (Command, error) {
	if err := e.guard(); err != nil {
		return CmdNone, err
	}
	if !e.focused {
		return CmdNone, nil
	}
	if ev.Repeat || e.held[ev.Key] {
		return CmdNone, nil
	}
	e.held[ev.Key] = true

	cmd := Resolve(ev)
	switch cmd {
	case CmdUndo:
		_, err := e.Undo()
		return cmd, err
	case CmdRedo:
		_, err := e.Redo()
		return cmd, err
	case CmdCopy:
		if e.selected == "" {
			return CmdNone, nil
		}
		return cmd, e.Copy()
	case CmdPaste:
		if !e.clip.Has() {
			return CmdNone, nil
		}
		_, err := e.Paste()
		return cmd, err
	case CmdDelete:
		if e.selected == "" {
			return CmdNone, nil
		}
		return cmd, e.DeleteSelected()
	case CmdCancelDrag:
		if e.state != StateDragging {
			return CmdNone, nil
		}
		e.CancelDrag()
		return cmd, nil
	}
	return CmdNone, nil
}

// KeyUp releases a key so its next press dispatches again.
func (e *Editor) KeyUp(k Key) { delete(e.held, k) }
