/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

// MaxImageBytes bounds an uploaded image file.
const MaxImageBytes = 10 << 20

// ErrUnsupportedImage is returned for files that do not decode as an image.
var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Upload tracks one background image read.
type Upload struct {
	PageID    string
	ElementID string
	done      chan struct{}
	err       error
}

// Done is closed once the result is queued for ProcessPending.
func (u *Upload) Done() <-chan struct{} { return u.done }

// Err returns the read or decode error after Done is closed.
func (u *Upload) Err() error {
	<-u.done
	return u.err
}

type uploadResult struct {
	up  *Upload
	ref string
}

// BeginImageUpload reads r in the background and, once ProcessPending runs,
// sets the image element's reference to a data URI. The element keeps its
// previous state if reading or decoding fails.
func (e *Editor) BeginImageUpload(elementID, name string, r io.Reader) (*Upload, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	el, ok := e.cur().scene.Find(elementID)
	if !ok {
		return nil, fmt.Errorf("upload: element %s not on the active page", elementID)
	}
	if el.Kind != domain.KindImage {
		return nil, &ValidationError{Field: "image", Msg: "element is not an image"}
	}
	up := &Upload{PageID: e.cur().id, ElementID: elementID, done: make(chan struct{})}
	go func() {
		ref, err := readImage(name, r)
		up.err = err
		e.pendMu.Lock()
		e.pending = append(e.pending, uploadResult{up: up, ref: ref})
		e.pendMu.Unlock()
		close(up.done)
		if e.wake != nil {
			e.wake()
		}
	}()
	return up, nil
}

// ProcessPending applies finished uploads. Each successful upload becomes one
// element update and one history snapshot on the page it was started on.
// It returns the number of uploads handled.
func (e *Editor) ProcessPending() int {
	e.pendMu.Lock()
	batch := e.pending
	e.pending = nil
	e.pendMu.Unlock()
	if e.closed {
		return 0
	}
	for _, res := range batch {
		up := res.up
		if up.err != nil {
			e.log.Error("image upload failed", slog.String("element", up.ElementID), slog.String("err", up.err.Error()))
			e.emit(Event{Kind: EventUploadFailed, PageID: up.PageID, ElementID: up.ElementID, Err: up.err})
			continue
		}
		p := e.pageByID(up.PageID)
		if p == nil {
			continue
		}
		ref := res.ref
		if e.commitOn(p, "image", func(s *scene.Scene) bool { return s.Update(up.ElementID, scene.Patch{ImageRef: &ref}) }) {
			e.emit(Event{Kind: EventUploadDone, PageID: up.PageID, ElementID: up.ElementID})
		}
	}
	return len(batch)
}

func readImage(name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%s: larger than %d bytes", name, MaxImageBytes)
	}
	return DataURI(data)
}

// DataURI validates data as an image and encodes it as a data URI.
func DataURI(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(uri string) (mime string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return "", nil, errors.New("data URI is not base64")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return strings.TrimSuffix(meta, ";base64"), data, nil
}
