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
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"doccanvas/internal/vector"
)

// Parse parses a YAML editing script.
//
//	name: Quarterly report
//	variables: [client, date]
//	steps:
//	  - add: textbox
//	    as: title
//	  - set: {content: "Hello {{client}}", fontSize: 24}
//	  - drag: {from: [60, 60], to: [215, 118]}
//	  - align: center
//	  - undo: 2
//	  - expect: {elements: 1, canRedo: true}
//
// Every step is a mapping with exactly one action key plus an optional "as"
// label. Parse keeps going after a bad step and reports every problem.
func Parse(input string) (Script, []Error) {
	var s Script
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(input), &root); err != nil {
		return s, []Error{{Line: 1, Column: 1, Message: err.Error()}}
	}
	if len(root.Content) == 0 {
		return s, []Error{{Line: 1, Column: 1, Message: "empty script"}}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return s, []Error{errAt(doc, "script must be a mapping")}
	}

	var errs []Error
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "name":
			s.Name = val.Value
		case "variables":
			if err := val.Decode(&s.Variables); err != nil {
				errs = append(errs, errAt(val, "variables must be a list of names"))
			}
		case "steps":
			if val.Kind != yaml.SequenceNode {
				errs = append(errs, errAt(val, "steps must be a list"))
				continue
			}
			for _, n := range val.Content {
				st, err := parseStep(n)
				if err != nil {
					errs = append(errs, *err)
					continue
				}
				s.Steps = append(s.Steps, st)
			}
		default:
			errs = append(errs, errAt(key, fmt.Sprintf("unknown key %q", key.Value)))
		}
	}
	return s, errs
}

// Load reads and parses a script. All parse errors are joined.
func Load(r io.Reader) (Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	s, errs := Parse(string(data))
	if len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return s, errors.Join(joined...)
	}
	return s, nil
}

// LoadFile loads a script and resolves uploads relative to its directory.
func LoadFile(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return Script{}, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()
	s, err := Load(f)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	s.BaseDir = filepath.Dir(path)
	return s, nil
}

func errAt(n *yaml.Node, msg string) Error {
	return Error{Line: n.Line, Column: n.Column, Message: msg}
}

func parseStep(n *yaml.Node) (Step, *Error) {
	fail := func(at *yaml.Node, msg string) (Step, *Error) {
		e := errAt(at, msg)
		return Step{}, &e
	}
	if n.Kind == yaml.ScalarNode {
		// bare actions such as "- copy"
		n = &yaml.Node{Kind: yaml.MappingNode, Line: n.Line, Column: n.Column, Content: []*yaml.Node{
			n, {Kind: yaml.ScalarNode, Tag: "!!null", Line: n.Line, Column: n.Column},
		}}
	}
	if n.Kind != yaml.MappingNode {
		return fail(n, "step must be a mapping")
	}
	st := Step{LineNo: n.Line}
	var val *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Value == "as" {
			st.As = strings.TrimSpace(v.Value)
			continue
		}
		if st.Action != "" {
			return fail(k, fmt.Sprintf("step has more than one action (%s, %s)", st.Action, k.Value))
		}
		a := Action(k.Value)
		if !knownActions[a] {
			return fail(k, fmt.Sprintf("unknown action %q", k.Value))
		}
		st.Action, val = a, v
	}
	if st.Action == "" {
		return fail(n, "step has no action")
	}

	switch st.Action {
	case ActSet:
		if val.Kind != yaml.MappingNode || len(val.Content) == 0 {
			return fail(val, "set needs a mapping of properties")
		}
		st.Props = map[string]string{}
		for i := 0; i+1 < len(val.Content); i += 2 {
			if val.Content[i+1].Kind != yaml.ScalarNode {
				return fail(val.Content[i+1], "property values must be scalars")
			}
			st.Props[val.Content[i].Value] = val.Content[i+1].Value
		}
	case ActDrag:
		var d struct {
			From []float64 `yaml:"from"`
			To   []float64 `yaml:"to"`
		}
		if err := val.Decode(&d); err != nil || len(d.From) != 2 || len(d.To) != 2 {
			return fail(val, "drag needs {from: [x, y], to: [x, y]}")
		}
		st.From, st.To = vector.Pt{X: d.From[0], Y: d.From[1]}, vector.Pt{X: d.To[0], Y: d.To[1]}
	case ActClick:
		var p []float64
		if err := val.Decode(&p); err != nil || len(p) != 2 {
			return fail(val, "click needs [x, y]")
		}
		st.From = vector.Pt{X: p[0], Y: p[1]}
	case ActUndo, ActRedo:
		st.Count = 1
		if val.Tag != "!!null" && val.Value != "" {
			c, err := strconv.Atoi(val.Value)
			if err != nil || c < 1 {
				return fail(val, "count must be a positive integer")
			}
			st.Count = c
		}
	case ActExpect:
		if err := val.Decode(&st.Expect); err != nil {
			return fail(val, "expect: "+err.Error())
		}
	case ActSelect, ActAdd, ActAlign, ActKey, ActSwitchPage, ActDeletePage, ActInsertVar,
		ActBind, ActUpload, ActSnap, ActRename, ActFormat, ActText:
		if val.Kind != yaml.ScalarNode || val.Tag == "!!null" {
			return fail(val, fmt.Sprintf("%s needs a value", st.Action))
		}
		st.Arg = val.Value
	}
	return st, nil
}
