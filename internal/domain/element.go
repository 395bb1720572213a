/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"fmt"
)

// ElementType is the discriminant of an element variant.
type ElementType string

const (
	TypeText    ElementType = "text"
	TypeImage   ElementType = "image"
	TypeButton  ElementType = "button"
	TypeHotspot ElementType = "hotspot"
)

// ElementTypes lists the known variants in toolbar order.
var ElementTypes = []ElementType{TypeText, TypeImage, TypeButton, TypeHotspot}

// Known reports whether t names a supported variant.
func (t ElementType) Known() bool {
	switch t {
	case TypeText, TypeImage, TypeButton, TypeHotspot:
		return true
	}
	return false
}

// Content is the variant payload of an Element. The set of implementations is closed.
type Content interface {
	Type() ElementType
	isContent()
}

// TextContent is a styled text block.
type TextContent struct {
	Text       string  `json:"content"`
	FontSize   float64 `json:"fontSize"`
	FontColor  string  `json:"fontColor"`
	FontWeight string  `json:"fontWeight"`
	FontStyle  string  `json:"fontStyle"`
	Align      string  `json:"align"`
}

// ImageContent references an image by URL or asset key.
type ImageContent struct {
	Src       string `json:"src"`
	Alt       string `json:"alt"`
	ObjectFit string `json:"objectFit"`
}

// ButtonContent is a clickable button carrying a navigation action (see Action).
type ButtonContent struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Style  string `json:"style"`
}

// HotspotContent is an invisible clickable region.
type HotspotContent struct {
	Tooltip string `json:"tooltip"`
	Shape   string `json:"shape"`
}

func (TextContent) Type() ElementType    { return TypeText }
func (ImageContent) Type() ElementType   { return TypeImage }
func (ButtonContent) Type() ElementType  { return TypeButton }
func (HotspotContent) Type() ElementType { return TypeHotspot }

func (TextContent) isContent()    {}
func (ImageContent) isContent()   {}
func (ButtonContent) isContent()  {}
func (HotspotContent) isContent() {}

// Element is a positioned, typed object on a slide.
// Geometry is in slide-local pixels with (X, Y) as the top-left corner.
type Element struct {
	ID      string
	X       float64
	Y       float64
	Width   float64
	Height  float64
	ZIndex  *int
	Content Content
}

// Type returns the variant tag, or "" for an element without content.
func (e Element) Type() ElementType {
	if e.Content == nil {
		return ""
	}
	return e.Content.Type()
}

// Button returns the button payload when e is a button.
func (e Element) Button() (ButtonContent, bool) {
	b, ok := e.Content.(ButtonContent)
	return b, ok
}

// Text returns the text payload when e is a text element.
func (e Element) Text() (TextContent, bool) {
	t, ok := e.Content.(TextContent)
	return t, ok
}

// Image returns the image payload when e is an image.
func (e Element) Image() (ImageContent, bool) {
	i, ok := e.Content.(ImageContent)
	return i, ok
}

// Hotspot returns the hotspot payload when e is a hotspot.
func (e Element) Hotspot() (HotspotContent, bool) {
	h, ok := e.Content.(HotspotContent)
	return h, ok
}

// Z returns the stacking order, falling back to the list position when no explicit z-index is set.
func (e Element) Z(pos int) int {
	if e.ZIndex != nil {
		return *e.ZIndex
	}
	return pos
}

// Label returns a short display name, used for timeline rows and exports.
func (e Element) Label() string {
	switch c := e.Content.(type) {
	case TextContent:
		return "Text: " + truncate(c.Text, 24)
	case ImageContent:
		return "Image: " + truncate(c.Alt, 24)
	case ButtonContent:
		return "Button: " + truncate(c.Label, 24)
	case HotspotContent:
		return "Hotspot: " + truncate(c.Tooltip, 24)
	}
	return "Element"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// elementBase holds the fields shared by every variant on the wire.
type elementBase struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	ZIndex *int        `json:"zIndex,omitempty"`
}

// MarshalJSON flattens the common fields and the variant payload into one object.
func (e Element) MarshalJSON() ([]byte, error) {
	base := elementBase{ID: e.ID, Type: e.Type(), X: e.X, Y: e.Y, Width: e.Width, Height: e.Height, ZIndex: e.ZIndex}
	switch c := e.Content.(type) {
	case TextContent:
		return json.Marshal(struct {
			elementBase
			TextContent
		}{base, c})
	case ImageContent:
		return json.Marshal(struct {
			elementBase
			ImageContent
		}{base, c})
	case ButtonContent:
		return json.Marshal(struct {
			elementBase
			ButtonContent
		}{base, c})
	case HotspotContent:
		return json.Marshal(struct {
			elementBase
			HotspotContent
		}{base, c})
	}
	return nil, fmt.Errorf("%w: element %q has no content", ErrFormat, e.ID)
}

// UnmarshalJSON reads the discriminant first and decodes the matching variant.
func (e *Element) UnmarshalJSON(data []byte) error {
	var base elementBase
	if err := json.Unmarshal(data, &base); err != nil {
		return fmt.Errorf("%w: element: %v", ErrFormat, err)
	}
	var content Content
	var err error
	switch base.Type {
	case TypeText:
		var c TextContent
		err = json.Unmarshal(data, &c)
		content = c
	case TypeImage:
		var c ImageContent
		err = json.Unmarshal(data, &c)
		content = c
	case TypeButton:
		var c ButtonContent
		err = json.Unmarshal(data, &c)
		content = c
	case TypeHotspot:
		var c HotspotContent
		err = json.Unmarshal(data, &c)
		content = c
	default:
		return fmt.Errorf("%w: element %q: unknown type %q", ErrFormat, base.ID, base.Type)
	}
	if err != nil {
		return fmt.Errorf("%w: element %q: %v", ErrFormat, base.ID, err)
	}
	*e = Element{ID: base.ID, X: base.X, Y: base.Y, Width: base.Width, Height: base.Height, ZIndex: base.ZIndex, Content: content}
	return nil
}
