/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"fmt"

	"scenewright/internal/domain"
)

// AddElement appends a default element of type t and returns it so the caller can select it.
func AddElement(sl domain.Slide, t domain.ElementType) (domain.Slide, domain.Element) {
	el := domain.NewElement(t)
	sl.Elements = appendCopy(sl.Elements, el)
	return sl, el
}

// InsertElement appends an existing element value, e.g. a pasted clone.
func InsertElement(sl domain.Slide, el domain.Element) domain.Slide {
	sl.Elements = appendCopy(sl.Elements, el)
	return sl
}

// UpdateElement merges patch into the element with id. A missing id leaves the slide unchanged.
func UpdateElement(sl domain.Slide, id string, patch domain.ElementPatch) domain.Slide {
	i := sl.ElementIndex(id)
	if i < 0 || patch.IsZero() {
		return sl
	}
	sl.Elements = replaceAt(sl.Elements, i, sl.Elements[i].Apply(patch))
	return sl
}

// DeleteElement removes the element with id. Timeline items linked to it are left for SyncTimeline.
func DeleteElement(sl domain.Slide, id string) (domain.Slide, error) {
	i := sl.ElementIndex(id)
	if i < 0 {
		return sl, fmt.Errorf("delete element %q: %w", id, domain.ErrNotFound)
	}
	sl.Elements = removeAt(sl.Elements, i)
	return sl, nil
}

// BringToFront gives the element a z-index above every other element on the slide.
func BringToFront(sl domain.Slide, id string) (domain.Slide, error) {
	i := sl.ElementIndex(id)
	if i < 0 {
		return sl, fmt.Errorf("bring to front %q: %w", id, domain.ErrNotFound)
	}
	top := 0
	for j, el := range sl.Elements {
		if j != i {
			top = max(top, el.Z(j))
		}
	}
	return UpdateElement(sl, id, domain.ElementPatch{ZIndex: domain.Ptr(top + 1)}), nil
}

// SendToBack gives the element a z-index below every other element on the slide.
func SendToBack(sl domain.Slide, id string) (domain.Slide, error) {
	i := sl.ElementIndex(id)
	if i < 0 {
		return sl, fmt.Errorf("send to back %q: %w", id, domain.ErrNotFound)
	}
	bottom := 0
	for j, el := range sl.Elements {
		if j != i {
			bottom = min(bottom, el.Z(j))
		}
	}
	return UpdateElement(sl, id, domain.ElementPatch{ZIndex: domain.Ptr(bottom - 1)}), nil
}
