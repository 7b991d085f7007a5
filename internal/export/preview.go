/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"fmt"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
)

// CachedThumbnail returns the page thumbnail from the document's preview
// cache, rendering and storing it on a miss. Persist invalidates the cache
// on every save, so entries never outlive the content they show.
func CachedThumbnail(ctx context.Context, root string, doc domain.Document, idx, maxW int) ([]byte, error) {
	if idx < 0 || idx >= len(doc.Pages) {
		return nil, fmt.Errorf("page index %d out of range", idx)
	}
	size := canvasOf(doc)
	w := maxW
	if w <= 0 || float64(w) > size.Width {
		w = int(size.Width)
	}
	key := storage.PreviewKey{
		PageID: doc.Pages[idx].ID,
		Kind:   storage.PreviewKindThumb,
		W:      w,
		H:      int(size.Height * float64(w) / size.Width),
	}
	return storage.GetOrCreatePreview(ctx, root, key, func(context.Context) ([]byte, error) {
		return Thumbnail(doc, idx, w)
	})
}
