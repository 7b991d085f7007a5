/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

// EventKind classifies an Event.
type EventKind int

const (
	// EventChanged follows every change to a page's element list.
	EventChanged EventKind = iota
	EventSelection
	EventPage
	EventUploadDone
	EventUploadFailed
	EventSaved
	EventCancelled
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventSelection:
		return "selection"
	case EventPage:
		return "page"
	case EventUploadDone:
		return "upload-done"
	case EventUploadFailed:
		return "upload-failed"
	case EventSaved:
		return "saved"
	case EventCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Event is the redraw signal published to subscribers.
type Event struct {
	Kind      EventKind
	PageID    string
	ElementID string
	Op        string
	Err       error
}
