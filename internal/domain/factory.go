/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// MinElementSize is the floor for element width and height.
	MinElementSize = 20.0
	// MinTimelineDuration is the floor for a timeline item's duration in seconds.
	MinTimelineDuration = 0.5
	// DefaultTimelineDuration is the duration given to a newly synced timeline item.
	DefaultTimelineDuration = 5.0
	// PasteOffset is added to x and y of pasted or duplicated elements.
	PasteOffset = 20.0
	// DefaultBackground is the background of a new slide.
	DefaultBackground = "#ffffff"
)

// NewID returns a fresh unique identifier.
func NewID() string { return uuid.NewString() }

// NewProject returns a project with one scene holding one slide; both are current.
func NewProject(title string) Project {
	sc := NewScene("Scene 1")
	return Project{
		ID:             NewID(),
		Title:          title,
		Scenes:         []Scene{sc},
		CurrentSceneID: sc.ID,
		CurrentSlideID: sc.Slides[0].ID,
	}
}

// NewScene returns a scene pre-populated with a single default slide.
func NewScene(title string) Scene {
	return Scene{ID: NewID(), Title: title, Slides: []Slide{NewSlide(1)}}
}

// NewSlide returns an empty white slide titled "Slide n".
func NewSlide(n int) Slide {
	return Slide{
		ID:         NewID(),
		Title:      fmt.Sprintf("Slide %d", n),
		Order:      n,
		Background: DefaultBackground,
		Elements:   []Element{},
	}
}

// NewElement builds an element of type t with default geometry at (200, 200).
// It panics for an unknown type; element types come from code, not from user data.
func NewElement(t ElementType) Element {
	e := Element{ID: NewID(), X: 200, Y: 200, Content: DefaultContent(t)}
	switch t {
	case TypeText:
		e.Width, e.Height = 300, 60
	case TypeImage:
		e.Width, e.Height = 200, 150
	case TypeButton:
		e.Width, e.Height = 150, 50
	case TypeHotspot:
		e.Width, e.Height = 100, 100
	}
	return e
}

// DefaultContent returns the initial payload for a variant.
func DefaultContent(t ElementType) Content {
	switch t {
	case TypeText:
		return TextContent{Text: "New text", FontSize: 16, FontColor: "#000000", FontWeight: "normal", FontStyle: "normal", Align: "left"}
	case TypeImage:
		return ImageContent{Src: "", Alt: "Image", ObjectFit: "contain"}
	case TypeButton:
		return ButtonContent{Label: "Button", Action: string(ActionNextSlide), Style: "primary"}
	case TypeHotspot:
		return HotspotContent{Tooltip: "Hotspot", Shape: "circle"}
	}
	panic(fmt.Sprintf("domain: unknown element type %q", t))
}

// NewTimelineItem returns the default timeline row for el.
func NewTimelineItem(el Element) TimelineItem {
	return TimelineItem{
		ID:              NewID(),
		Name:            el.Label(),
		Type:            el.Type(),
		StartTime:       0,
		Duration:        DefaultTimelineDuration,
		LinkedElementID: el.ID,
		IsVisible:       true,
	}
}

// CloneElement returns a copy of el with a fresh id, shifted by (dx, dy).
func CloneElement(el Element, dx, dy float64) Element {
	c := el
	c.ID = NewID()
	c.X += dx
	c.Y += dy
	if el.ZIndex != nil {
		z := *el.ZIndex
		c.ZIndex = &z
	}
	return c
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T { return &v }
