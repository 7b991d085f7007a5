/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"

	"doccanvas/internal/vector"
)

// Script is a parsed editing script: a document name and variable list for
// the session plus the steps to replay against it.
type Script struct {
	Name      string
	Variables []string
	Steps     []Step
	// BaseDir resolves relative upload paths. LoadFile sets it to the
	// script's directory.
	BaseDir string
}

// Action names one editor operation. The YAML key of a step is its action.
type Action string

const (
	ActAdd        Action = "add"    // palette item: textbox, image, variable, rectangle, circle...
	ActSelect     Action = "select" // element id or label
	ActDeselect   Action = "deselect"
	ActSet        Action = "set"   // mapping of property -> value, one commit
	ActDrag       Action = "drag"  // {from: [x, y], to: [x, y]}
	ActClick      Action = "click" // [x, y]
	ActAlign      Action = "align" // left, center, right
	ActFront      Action = "front"
	ActBack       Action = "back"
	ActCopy       Action = "copy"
	ActPaste      Action = "paste"
	ActDelete     Action = "delete"
	ActUndo       Action = "undo" // optional count
	ActRedo       Action = "redo" // optional count
	ActKey        Action = "key"  // shortcut such as ctrl+shift+z
	ActText       Action = "text" // commit new content of the selected text element
	ActAddPage    Action = "add-page"
	ActSwitchPage Action = "page"        // 1-based page number
	ActDeletePage Action = "delete-page" // 1-based page number
	ActInsertVar  Action = "variable"    // insert a variable element
	ActBind       Action = "bind"        // bind the selection to a variable
	ActUpload     Action = "upload"      // image file for the selected image element
	ActSnap       Action = "snap"        // true/false
	ActRename     Action = "rename"      // document name
	ActFormat     Action = "format"      // docx, pptx, xlsx
	ActExpect     Action = "expect"      // assertions on editor state
	ActSave       Action = "save"
	ActCancel     Action = "cancel"
)

var knownActions = map[Action]bool{
	ActAdd: true, ActSelect: true, ActDeselect: true, ActSet: true, ActDrag: true, ActClick: true,
	ActAlign: true, ActFront: true, ActBack: true, ActCopy: true, ActPaste: true, ActDelete: true,
	ActUndo: true, ActRedo: true, ActKey: true, ActText: true, ActAddPage: true, ActSwitchPage: true,
	ActDeletePage: true, ActInsertVar: true, ActBind: true, ActUpload: true, ActSnap: true,
	ActRename: true, ActFormat: true, ActExpect: true, ActSave: true, ActCancel: true,
}

// Step is one action with its arguments. Only the fields the action uses
// are set.
type Step struct {
	Action Action
	Arg    string            // scalar argument
	Props  map[string]string // set
	From   vector.Pt         // drag start, click point
	To     vector.Pt         // drag end
	Count  int               // undo/redo repetitions
	Expect Expect
	// As names the element created or pasted by this step so later steps
	// can refer to it.
	As     string
	LineNo int // 1-based line of the step in the source
}

// Expect asserts editor state. Nil fields are not checked.
type Expect struct {
	Elements *int     `yaml:"elements"`
	Pages    *int     `yaml:"pages"`
	Page     *int     `yaml:"page"` // 1-based active page
	Selected *string  `yaml:"selected"`
	CanUndo  *bool    `yaml:"canUndo"`
	CanRedo  *bool    `yaml:"canRedo"`
	X        *float64 `yaml:"x"` // of the selection
	Y        *float64 `yaml:"y"`
	Content  *string  `yaml:"content"`
}

// Error represents a parse error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e Error) Error() string { return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message) }
