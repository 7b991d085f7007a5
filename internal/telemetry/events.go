/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"encoding/json"
	"runtime"
	"time"

	"doccanvas/internal/domain"
	"doccanvas/internal/version"
)

// Payload is the wire form of a usage event. Props hold counts and enum
// values only; document names, ids and content are never included.
type Payload struct {
	Name    string         `json:"name"`
	TS      string         `json:"ts"`
	Version string         `json:"version"`
	OS      string         `json:"os"`
	Arch    string         `json:"arch"`
	Props   map[string]any `json:"props,omitempty"`
}

// Event queues a usage event. Empty names are ignored.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	ev := Payload{
		Name:    name,
		TS:      time.Now().UTC().Format(time.RFC3339Nano),
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Props:   props,
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return
	}
	c.enqueue(delivery{url: c.cfg.EventsURL, contentType: "application/json", body: body})
}

// DocumentSaved reports the format and size of a saved document.
func (c *Client) DocumentSaved(doc domain.Document) {
	c.Event("document_saved", map[string]any{
		"format":   string(doc.Format),
		"pages":    len(doc.Pages),
		"elements": doc.ElementCount(),
	})
}

// DocumentExported reports an export by output kind and page count.
func (c *Client) DocumentExported(kind string, pages int) {
	c.Event("document_exported", map[string]any{"kind": kind, "pages": pages})
}

// Event queues a usage event on the default client.
func Event(name string, props map[string]any) { Default().Event(name, props) }

// DocumentSaved reports a save on the default client.
func DocumentSaved(doc domain.Document) { Default().DocumentSaved(doc) }

// DocumentExported reports an export on the default client.
func DocumentExported(kind string, pages int) { Default().DocumentExported(kind, pages) }
