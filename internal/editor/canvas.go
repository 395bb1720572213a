/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"scenewright/internal/canvas"
	"scenewright/internal/domain"
)

// Canvas binds a canvas engine to the current slide of an editor. Geometry produced by drags and
// resizes is written back through UpdateElement.
type Canvas struct {
	ed  *Editor
	eng *canvas.Engine
}

// NewCanvas returns a canvas for e. A zero Snap threshold disables smart guides.
func (e *Editor) NewCanvas(opts canvas.Options) *Canvas {
	next := opts.OnGeometry
	opts.OnGeometry = func(id string, r canvas.Rect) {
		e.UpdateElement(id, r.Patch())
		if next != nil {
			next(id, r)
		}
	}
	return &Canvas{ed: e, eng: canvas.New(opts)}
}

func (c *Canvas) Engine() *canvas.Engine { return c.eng }

// Press hit-tests the current slide at the viewport point p and starts the matching interaction.
// Pressing an element selects it; pressing the background clears the selection.
func (c *Canvas) Press(p canvas.Pt, btn canvas.Button, handle canvas.Handle) canvas.Mode {
	if c.eng.Mode() != canvas.Idle {
		return c.eng.Mode()
	}
	v := c.ed.View()
	var t canvas.Target
	if v.Slide != nil {
		if el, ok := canvas.HitTest(*v.Slide, c.eng.Viewport().ToSlide(p)); ok {
			t = canvas.Target{ElementID: el.ID, Bounds: canvas.RectOf(el), Handle: handle}
		} else if handle != canvas.HandleNone && v.Selected != nil {
			t = canvas.Target{ElementID: v.Selected.ID, Bounds: canvas.RectOf(*v.Selected), Handle: handle}
		}
	}
	if btn == canvas.ButtonPrimary {
		_ = c.ed.SelectElement(t.ElementID)
	}
	if t.ElementID != "" && v.Slide != nil {
		c.eng.SetAnchors(anchorsFor(*v.Slide, t.ElementID, c.ed.Canvas()))
	}
	return c.eng.Press(p, btn, t)
}

// Move forwards a pointer move.
func (c *Canvas) Move(p canvas.Pt) (canvas.Rect, bool) { return c.eng.Move(p) }

// Release ends the interaction.
func (c *Canvas) Release() { c.eng.Release() }

// Wheel forwards a wheel event; only modifier-held wheels zoom.
func (c *Canvas) Wheel(cursor canvas.Pt, deltaY float64, modifier bool) bool {
	return c.eng.Wheel(cursor, deltaY, modifier)
}

// anchorsFor returns the rects an element snaps to: the slide bounds and every other element.
func anchorsFor(sl domain.Slide, movingID string, size domain.CanvasSize) []canvas.Anchor {
	out := make([]canvas.Anchor, 0, len(sl.Elements)+1)
	out = append(out, canvas.Anchor{Rect: canvas.R(0, 0, float64(size.Width), float64(size.Height)), Weight: 0.5})
	for _, el := range sl.Elements {
		if el.ID != movingID {
			out = append(out, canvas.Anchor{Rect: canvas.RectOf(el), Weight: 1})
		}
	}
	return out
}
