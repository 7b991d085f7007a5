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
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func wait(t *testing.T, u *Upload) {
	t.Helper()
	select {
	case <-u.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("upload did not finish")
	}
}

func TestImageUploadAppliesOnce(t *testing.T) {
	woke := make(chan struct{}, 1)
	e := newTestEditor(t, func(o *Options) { o.Wake = func() { woke <- struct{}{} } })
	id := mustAdd(t, e, scene.Item{Kind: domain.KindImage})
	_, n0 := e.HistoryPosition()

	up, err := e.BeginImageUpload(id, "dot.png", bytes.NewReader(pngBytes(t)))
	if err != nil {
		t.Fatal(err)
	}
	wait(t, up)
	<-woke
	if up.Err() != nil {
		t.Fatalf("upload err: %v", up.Err())
	}
	if el, _ := e.Element(id); el.ImageRef != "" {
		t.Fatalf("result must wait for ProcessPending")
	}
	var events []EventKind
	e.Subscribe(func(ev Event) { events = append(events, ev.Kind) })
	if n := e.ProcessPending(); n != 1 {
		t.Fatalf("ProcessPending = %d", n)
	}
	el, _ := e.Element(id)
	if !strings.HasPrefix(el.ImageRef, "data:image/png;base64,") {
		t.Fatalf("imageRef = %.40q", el.ImageRef)
	}
	if _, n := e.HistoryPosition(); n != n0+1 {
		t.Fatalf("upload should record exactly once")
	}
	if e.ProcessPending() != 0 {
		t.Fatalf("queue should be empty")
	}
	if len(events) != 2 || events[0] != EventChanged || events[1] != EventUploadDone {
		t.Fatalf("events = %v", events)
	}
	mime, data, err := DecodeDataURI(el.ImageRef)
	if err != nil || mime != "image/png" || !bytes.Equal(data, pngBytes(t)) {
		t.Fatalf("round trip: %s %v", mime, err)
	}
}

func TestImageUploadFailureLeavesElement(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, scene.Item{Kind: domain.KindImage})
	_, n0 := e.HistoryPosition()
	var failed error
	e.Subscribe(func(ev Event) {
		if ev.Kind == EventUploadFailed {
			failed = ev.Err
		}
	})
	up, err := e.BeginImageUpload(id, "notes.txt", strings.NewReader("definitely not an image"))
	if err != nil {
		t.Fatal(err)
	}
	wait(t, up)
	e.ProcessPending()
	if !errors.Is(up.Err(), ErrUnsupportedImage) || !errors.Is(failed, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v / %v", up.Err(), failed)
	}
	if el, _ := e.Element(id); el.ImageRef != "" {
		t.Fatalf("failed upload must not set imageRef")
	}
	if _, n := e.HistoryPosition(); n != n0 {
		t.Fatalf("failed upload must not record")
	}
}

func TestUploadTargetsItsOwnPage(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, scene.Item{Kind: domain.KindImage})
	up, _ := e.BeginImageUpload(id, "dot.png", bytes.NewReader(pngBytes(t)))
	wait(t, up)
	_, _ = e.AddPage()
	e.ProcessPending()
	if e.CanUndo() {
		t.Fatalf("upload must not record on the active page")
	}
	_ = e.SwitchPage(0)
	if el, _ := e.Element(id); el.ImageRef == "" {
		t.Fatalf("upload should land on the page it started on")
	}
}

func TestUploadRejectsNonImageElement(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, textbox)
	var ve *ValidationError
	if _, err := e.BeginImageUpload(id, "x.png", bytes.NewReader(nil)); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := e.BeginImageUpload("missing", "x.png", bytes.NewReader(nil)); err == nil {
		t.Fatalf("unknown element should fail")
	}
}
