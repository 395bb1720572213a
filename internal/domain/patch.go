/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "math"

// ElementPatch is a partial update of an element. Nil fields are left unchanged.
// Variant fields that do not belong to the element's type are ignored; a patch never changes the type.
type ElementPatch struct {
	X      *float64
	Y      *float64
	Width  *float64
	Height *float64
	ZIndex *int

	// text
	Text       *string
	FontSize   *float64
	FontColor  *string
	FontWeight *string
	FontStyle  *string
	Align      *string

	// image
	Src       *string
	Alt       *string
	ObjectFit *string

	// button
	Label  *string
	Action *string
	Style  *string

	// hotspot
	Tooltip *string
	Shape   *string
}

// IsZero reports whether the patch carries no changes.
func (p ElementPatch) IsZero() bool { return p == ElementPatch{} }

// Apply returns e with the patch merged in. Width and height are floored at MinElementSize;
// NaN and infinite numbers are dropped.
func (e Element) Apply(p ElementPatch) Element {
	if p.IsZero() {
		return e
	}
	setFinite(&e.X, p.X)
	setFinite(&e.Y, p.Y)
	if p.Width != nil {
		e.Width = max(Finite(*p.Width, e.Width), MinElementSize)
	}
	if p.Height != nil {
		e.Height = max(Finite(*p.Height, e.Height), MinElementSize)
	}
	if p.ZIndex != nil {
		z := *p.ZIndex
		e.ZIndex = &z
	}
	switch c := e.Content.(type) {
	case TextContent:
		set(&c.Text, p.Text)
		setFinite(&c.FontSize, p.FontSize)
		set(&c.FontColor, p.FontColor)
		set(&c.FontWeight, p.FontWeight)
		set(&c.FontStyle, p.FontStyle)
		set(&c.Align, p.Align)
		e.Content = c
	case ImageContent:
		set(&c.Src, p.Src)
		set(&c.Alt, p.Alt)
		set(&c.ObjectFit, p.ObjectFit)
		e.Content = c
	case ButtonContent:
		set(&c.Label, p.Label)
		set(&c.Action, p.Action)
		set(&c.Style, p.Style)
		e.Content = c
	case HotspotContent:
		set(&c.Tooltip, p.Tooltip)
		set(&c.Shape, p.Shape)
		e.Content = c
	}
	return e
}

// SlidePatch is a partial update of a slide's own fields.
type SlidePatch struct {
	Title      *string
	Background *string
	Order      *int
}

// Apply returns s with the patch merged in.
func (s Slide) Apply(p SlidePatch) Slide {
	set(&s.Title, p.Title)
	set(&s.Background, p.Background)
	set(&s.Order, p.Order)
	return s
}

// ScenePatch is a partial update of a scene's own fields.
type ScenePatch struct {
	Title *string
}

// Apply returns s with the patch merged in.
func (s Scene) Apply(p ScenePatch) Scene {
	set(&s.Title, p.Title)
	return s
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setFinite is set for numbers; NaN and infinities leave dst unchanged.
func setFinite(dst *float64, v *float64) {
	if v != nil {
		*dst = Finite(*v, *dst)
	}
}

// Finite returns v, or fallback when v is NaN or infinite.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
