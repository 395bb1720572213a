/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"

	"scenewright/internal/domain"
	"scenewright/internal/edit"
)

// UpdateSlide merges patch into the current slide.
func (e *Editor) UpdateSlide(patch domain.SlidePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked("update slide")
	if err != nil {
		return e.fail("update_slide", err)
	}
	e.installLocked(withSlide(v, edit.UpdateSlide(*v.Slide, patch)), "update_slide")
	return nil
}

// AddSlide appends a slide to the current scene and makes it current.
func (e *Editor) AddSlide() (domain.Slide, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	sc, sl, err := edit.AddSlide(v.Scene)
	if err != nil {
		return domain.Slide{}, e.fail("add_slide", err)
	}
	p := withScene(v, sc)
	p.CurrentSceneID = sc.ID
	p.CurrentSlideID = sl.ID
	e.installLocked(p, "add_slide")
	e.selectedID = ""
	return sl, nil
}

// InitiateDeleteSlide opens the confirmation gate for deleting the slide with id (the current slide when id
// is empty). Nothing is removed until ConfirmDeleteSlide.
func (e *Editor) InitiateDeleteSlide(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked("delete slide")
	if err != nil {
		return e.fail("delete_slide", err)
	}
	if id == "" {
		id = v.Slide.ID
	}
	if v.Scene.SlideIndex(id) < 0 {
		return e.fail("delete_slide", fmt.Errorf("delete slide %q: %w", id, domain.ErrNotFound))
	}
	if len(v.Scene.Slides) <= 1 {
		return e.fail("delete_slide", fmt.Errorf("delete slide %q: %w", id, domain.ErrLastSlide))
	}
	e.pendingSlide = id
	return nil
}

// PendingSlideDelete returns the slide awaiting confirmation.
func (e *Editor) PendingSlideDelete() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pendingSlide, e.pendingSlide != ""
}

// ConfirmDeleteSlide removes the slide named by InitiateDeleteSlide and closes the gate.
func (e *Editor) ConfirmDeleteSlide() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.pendingSlide
	e.pendingSlide = ""
	if id == "" {
		return e.fail("delete_slide", fmt.Errorf("confirm delete slide: %w", domain.ErrNoPendingDelete))
	}
	v := e.resolveLocked()
	if v.Scene == nil {
		return e.fail("delete_slide", fmt.Errorf("delete slide: %w", domain.ErrNoScene))
	}
	current := e.project.CurrentSlideID
	if v.Slide != nil {
		current = v.Slide.ID
	}
	sc, next, err := edit.DeleteSlide(*v.Scene, id, current)
	if err != nil {
		return e.fail("delete_slide", err)
	}
	p := withScene(v, sc)
	p.CurrentSceneID = sc.ID
	p.CurrentSlideID = next
	e.installLocked(p, "delete_slide")
	if next != current {
		e.selectedID = ""
	}
	return nil
}

// CancelDeleteSlide closes the confirmation gate without deleting anything.
func (e *Editor) CancelDeleteSlide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingSlide = ""
}

// SelectSlide makes the slide with id current. It must belong to the current scene.
func (e *Editor) SelectSlide(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	if v.Scene == nil {
		return e.fail("select_slide", fmt.Errorf("select slide: %w", domain.ErrNoScene))
	}
	if err := edit.SelectSlide(*v.Scene, id); err != nil {
		return e.fail("select_slide", err)
	}
	if e.project.CurrentSlideID == id && e.project.CurrentSceneID == v.Scene.ID {
		return nil
	}
	p := e.project
	p.CurrentSceneID = v.Scene.ID
	p.CurrentSlideID = id
	e.installLocked(p, "select_slide")
	e.selectedID = ""
	return nil
}

// MoveSlide moves the slide with id to index to within the current scene.
func (e *Editor) MoveSlide(id string, to int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	if v.Scene == nil {
		return e.fail("move_slide", fmt.Errorf("move slide: %w", domain.ErrNoScene))
	}
	sc, err := edit.MoveSlide(*v.Scene, id, to)
	if err != nil {
		return e.fail("move_slide", err)
	}
	e.installLocked(withScene(v, sc), "move_slide")
	return nil
}

// DuplicateSlide copies the slide with id (the current slide when empty) and selects the copy.
func (e *Editor) DuplicateSlide(id string) (domain.Slide, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked("duplicate slide")
	if err != nil {
		return domain.Slide{}, e.fail("duplicate_slide", err)
	}
	if id == "" {
		id = v.Slide.ID
	}
	sc, dup, err := edit.DuplicateSlide(*v.Scene, id)
	if err != nil {
		return domain.Slide{}, e.fail("duplicate_slide", err)
	}
	p := withScene(v, sc)
	p.CurrentSceneID = sc.ID
	p.CurrentSlideID = dup.ID
	e.installLocked(p, "duplicate_slide")
	e.selectedID = ""
	return dup, nil
}

// UpdateScene merges patch into the scene with id (the current scene when empty).
func (e *Editor) UpdateScene(id string, patch domain.ScenePatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	if id == "" {
		if v.Scene == nil {
			return e.fail("update_scene", fmt.Errorf("update scene: %w", domain.ErrNoScene))
		}
		id = v.Scene.ID
	}
	sc, ok := e.project.FindScene(id)
	if !ok {
		return e.fail("update_scene", fmt.Errorf("update scene %q: %w", id, domain.ErrNotFound))
	}
	p, _ := edit.ReplaceScene(e.project, edit.UpdateScene(sc, patch))
	e.installLocked(p, "update_scene")
	return nil
}

// AddScene appends a scene with one slide and makes both current.
func (e *Editor) AddScene() domain.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, sc := edit.AddScene(e.project)
	e.installLocked(p, "add_scene")
	e.selectedID = ""
	return sc
}

// DeleteScene removes the scene with id. The last scene is never removed.
func (e *Editor) DeleteScene(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := edit.DeleteScene(e.resolveLocked().Project, id)
	if err != nil {
		return e.fail("delete_scene", err)
	}
	if p.CurrentSceneID != e.project.CurrentSceneID {
		e.selectedID = ""
	}
	e.installLocked(p, "delete_scene")
	return nil
}

// SelectScene makes the scene with id current, moves to its first slide and clears the selection.
func (e *Editor) SelectScene(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, err := edit.SelectScene(e.project, id)
	if err != nil {
		return e.fail("select_scene", err)
	}
	e.installLocked(p, "select_scene")
	e.selectedID = ""
	return nil
}

// MoveTimelineItem sets the start time of a timeline item on the current slide.
func (e *Editor) MoveTimelineItem(id string, start float64) error {
	return e.timeline("move_timeline_item", func(sl domain.Slide) (domain.Slide, error) {
		return edit.MoveTimelineItem(sl, id, start)
	})
}

// ResizeTimelineItem sets the duration of a timeline item on the current slide.
func (e *Editor) ResizeTimelineItem(id string, duration float64) error {
	return e.timeline("resize_timeline_item", func(sl domain.Slide) (domain.Slide, error) {
		return edit.ResizeTimelineItem(sl, id, duration)
	})
}

// SetTimelineFlags changes the lock and visibility flags; nil leaves a flag as is.
func (e *Editor) SetTimelineFlags(id string, locked, visible *bool) error {
	return e.timeline("set_timeline_flags", func(sl domain.Slide) (domain.Slide, error) {
		return edit.SetTimelineFlags(sl, id, locked, visible)
	})
}

// Timeline returns the timeline items of the current slide that still have an element.
func (e *Editor) Timeline() []domain.TimelineItem {
	v := e.View()
	if v.Slide == nil {
		return nil
	}
	return edit.ActiveTimeline(*v.Slide)
}

func (e *Editor) timeline(op string, fn func(domain.Slide) (domain.Slide, error)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked(op)
	if err != nil {
		return e.fail(op, err)
	}
	sl, err := fn(edit.SyncTimeline(*v.Slide))
	if err != nil {
		return e.fail(op, err)
	}
	e.installLocked(withSlide(v, sl), op)
	return nil
}
