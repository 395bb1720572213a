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
	"log/slog"

	"scenewright/internal/domain"
	"scenewright/internal/edit"
)

// currentSlideLocked resolves the current slide or fails with ErrNoSlide.
func (e *Editor) currentSlideLocked(op string) (View, error) {
	v := e.resolveLocked()
	if v.Scene == nil {
		return v, fmt.Errorf("%s: %w", op, domain.ErrNoScene)
	}
	if v.Slide == nil {
		return v, fmt.Errorf("%s: %w", op, domain.ErrNoSlide)
	}
	return v, nil
}

// putSlideLocked installs sl as the new current slide after syncing its timeline.
func (e *Editor) putSlideLocked(v View, sl domain.Slide, op string) {
	e.installLocked(withSlide(v, edit.SyncTimeline(sl)), op)
}

// AddElement appends a default element of type t to the current slide and selects it.
func (e *Editor) AddElement(t domain.ElementType) (domain.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked("add element")
	if err != nil {
		return domain.Element{}, e.fail("add_element", err)
	}
	sl, el := edit.AddElement(*v.Slide, t)
	e.putSlideLocked(v, sl, "add_element")
	e.selectedID = el.ID
	return el, nil
}

// UpdateElement merges patch into the element with id on the current slide.
// A missing element is ignored; the update may have raced a delete.
func (e *Editor) UpdateElement(id string, patch domain.ElementPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	if v.Slide == nil || patch.IsZero() {
		return
	}
	if v.Slide.ElementIndex(id) < 0 {
		e.log.Debug("update of missing element ignored", slog.String("element_id", id))
		return
	}
	e.putSlideLocked(v, edit.UpdateElement(*v.Slide, id, patch), "update_element")
}

// DeleteElement removes the element with id from the current slide. Its timeline item is kept as an orphan.
func (e *Editor) DeleteElement(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked("delete element")
	if err != nil {
		return e.fail("delete_element", err)
	}
	sl, err := edit.DeleteElement(*v.Slide, id)
	if err != nil {
		return e.fail("delete_element", err)
	}
	e.putSlideLocked(v, sl, "delete_element")
	if e.selectedID == id {
		e.selectedID = ""
	}
	return nil
}

// DeleteSelected removes the selected element.
func (e *Editor) DeleteSelected() error {
	e.mu.Lock()
	id := e.selectedID
	e.mu.Unlock()
	if id == "" {
		return e.fail("delete_element", fmt.Errorf("delete element: %w", domain.ErrNoSelection))
	}
	return e.DeleteElement(id)
}

// SelectElement selects the element with id on the current slide; an empty id clears the selection.
func (e *Editor) SelectElement(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id == "" {
		e.selectedID = ""
		return nil
	}
	v := e.resolveLocked()
	if v.Slide == nil || v.Slide.ElementIndex(id) < 0 {
		return e.fail("select_element", fmt.Errorf("select element %q: %w", id, domain.ErrNotFound))
	}
	e.selectedID = id
	return nil
}

// BringToFront raises the element above all others on the current slide.
func (e *Editor) BringToFront(id string) error { return e.restack(id, edit.BringToFront, "bring_to_front") }

// SendToBack lowers the element below all others on the current slide.
func (e *Editor) SendToBack(id string) error { return e.restack(id, edit.SendToBack, "send_to_back") }

func (e *Editor) restack(id string, fn func(domain.Slide, string) (domain.Slide, error), op string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.currentSlideLocked(op)
	if err != nil {
		return e.fail(op, err)
	}
	sl, err := fn(*v.Slide, id)
	if err != nil {
		return e.fail(op, err)
	}
	e.putSlideLocked(v, sl, op)
	return nil
}

// Copy puts a copy of the element with id (the selection when id is empty) on the clipboard.
// The clipboard holds one element; a later copy replaces it.
func (e *Editor) Copy(id string) error {
	e.mu.Lock()
	v := e.resolveLocked()
	if id == "" {
		id = e.selectedID
	}
	if id == "" || v.Slide == nil {
		e.mu.Unlock()
		return e.fail("copy", fmt.Errorf("copy: %w", domain.ErrNoSelection))
	}
	el, ok := v.Slide.FindElement(id)
	if !ok {
		e.mu.Unlock()
		return e.fail("copy", fmt.Errorf("copy element %q: %w", id, domain.ErrNotFound))
	}
	e.clipboard = &el
	e.mu.Unlock()

	if e.opts.Mirror != nil {
		if err := e.opts.Mirror.WriteElement(el); err != nil {
			e.log.Warn("clipboard mirror failed", slog.Any("err", err))
		}
	}
	return nil
}

// Clipboard returns the element on the clipboard.
func (e *Editor) Clipboard() (domain.Element, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return domain.Element{}, false
	}
	return *e.clipboard, true
}

// Paste appends a clone of the clipboard element, shifted by PasteOffset, to the current slide and selects it.
// Every paste clones the clipboard as copied, so repeated pastes land on the same spot.
func (e *Editor) Paste() (domain.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return domain.Element{}, e.fail("paste", fmt.Errorf("paste: %w", domain.ErrEmptyClipboard))
	}
	return e.insertCloneLocked(*e.clipboard, "paste")
}

// Duplicate clones the selected element with the paste offset and selects the clone.
func (e *Editor) Duplicate() (domain.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.resolveLocked()
	if v.Selected == nil {
		return domain.Element{}, e.fail("duplicate", fmt.Errorf("duplicate: %w", domain.ErrNoSelection))
	}
	return e.insertCloneLocked(*v.Selected, "duplicate")
}

func (e *Editor) insertCloneLocked(src domain.Element, op string) (domain.Element, error) {
	v, err := e.currentSlideLocked(op)
	if err != nil {
		return domain.Element{}, e.fail(op, err)
	}
	el := domain.CloneElement(src, domain.PasteOffset, domain.PasteOffset)
	e.putSlideLocked(v, edit.InsertElement(*v.Slide, el), op)
	e.selectedID = el.ID
	return el, nil
}
