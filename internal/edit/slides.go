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

// AddSlide appends "Slide n" with order n = len+1. A nil scene is a precondition failure.
func AddSlide(scene *domain.Scene) (domain.Scene, domain.Slide, error) {
	if scene == nil {
		return domain.Scene{}, domain.Slide{}, fmt.Errorf("add slide: %w", domain.ErrNoScene)
	}
	sc := *scene
	sl := domain.NewSlide(len(sc.Slides) + 1)
	sc.Slides = appendCopy(sc.Slides, sl)
	return sc, sl, nil
}

// DeleteSlide removes the slide with id and returns the repaired current slide id.
// The last slide of a scene is never removed. When the current slide goes, its preceding sibling
// (or the new first slide) becomes current; otherwise current is returned unchanged.
func DeleteSlide(scene domain.Scene, id, current string) (domain.Scene, string, error) {
	if len(scene.Slides) <= 1 {
		return scene, current, fmt.Errorf("delete slide %q: %w", id, domain.ErrLastSlide)
	}
	i := scene.SlideIndex(id)
	if i < 0 {
		return scene, current, fmt.Errorf("delete slide %q: %w", id, domain.ErrNotFound)
	}
	scene.Slides = removeAt(scene.Slides, i)
	if id == current {
		current = scene.Slides[max(i-1, 0)].ID
	}
	return scene, current, nil
}

// SelectSlide checks that id belongs to scene.
func SelectSlide(scene domain.Scene, id string) error {
	if scene.SlideIndex(id) < 0 {
		return fmt.Errorf("select slide %q in scene %q: %w", id, scene.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdateSlide merges patch into sl.
func UpdateSlide(sl domain.Slide, patch domain.SlidePatch) domain.Slide {
	return sl.Apply(patch)
}

// MoveSlide moves the slide with id to position to (clamped) and renumbers order 1..n.
func MoveSlide(scene domain.Scene, id string, to int) (domain.Scene, error) {
	i := scene.SlideIndex(id)
	if i < 0 {
		return scene, fmt.Errorf("move slide %q: %w", id, domain.ErrNotFound)
	}
	to = min(max(to, 0), len(scene.Slides)-1)
	sl := scene.Slides[i]
	slides := insertAt(removeAt(scene.Slides, i), to, sl)
	for k := range slides {
		slides[k].Order = k + 1
	}
	scene.Slides = slides
	return scene, nil
}

// DuplicateSlide inserts a deep copy of the slide with id right after it. The copy gets fresh ids for itself,
// its elements and its timeline items; timeline links follow the new element ids.
func DuplicateSlide(scene domain.Scene, id string) (domain.Scene, domain.Slide, error) {
	i := scene.SlideIndex(id)
	if i < 0 {
		return scene, domain.Slide{}, fmt.Errorf("duplicate slide %q: %w", id, domain.ErrNotFound)
	}
	src := scene.Slides[i]
	dup := src
	dup.ID = domain.NewID()
	dup.Title = src.Title + " (copy)"
	dup.Order = src.Order + 1
	remap := make(map[string]string, len(src.Elements))
	dup.Elements = make([]domain.Element, len(src.Elements))
	for k, el := range src.Elements {
		c := domain.CloneElement(el, 0, 0)
		remap[el.ID] = c.ID
		dup.Elements[k] = c
	}
	if src.TimelineItems != nil {
		dup.TimelineItems = make([]domain.TimelineItem, 0, len(src.TimelineItems))
		for _, it := range src.TimelineItems {
			it.ID = domain.NewID()
			if nid, ok := remap[it.LinkedElementID]; ok {
				it.LinkedElementID = nid
			}
			dup.TimelineItems = append(dup.TimelineItems, it)
		}
	}
	scene.Slides = insertAt(scene.Slides, i+1, dup)
	return scene, dup, nil
}
