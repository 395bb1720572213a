/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the authoring document: Project > Scene > Slide > Element.
// Every type serializes to the persisted project JSON (camelCase keys).
// Values are treated as immutable once installed in an editor; mutation code
// always builds a new value instead of writing through a shared slice.

// Project is the root authoring document.
type Project struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Scenes         []Scene `json:"scenes"`
	CurrentSceneID string  `json:"currentSceneId"`
	CurrentSlideID string  `json:"currentSlideId"`
}

// Scene is a named, ordered group of slides.
type Scene struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

// Slide is a single canvas page.
type Slide struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Order         int            `json:"order"` // display hint, gaps tolerated
	Background    string         `json:"background"`
	Elements      []Element      `json:"elements"`
	TimelineItems []TimelineItem `json:"timelineItems,omitempty"`
}

// TimelineItem carries temporal visibility for one element.
// LinkedElementID is a back-reference; deleting the element orphans the item.
type TimelineItem struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Type            ElementType `json:"type"`
	StartTime       float64     `json:"startTime"`
	Duration        float64     `json:"duration"` // seconds
	LinkedElementID string      `json:"linkedElementId"`
	IsLocked        bool        `json:"isLocked"`
	IsVisible       bool        `json:"isVisible"`
}

// CanvasSize is the authoring canvas in slide-local pixels.
type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultCanvas is the canvas used when no size is configured.
var DefaultCanvas = CanvasSize{Width: 1280, Height: 720}

// SceneIndex returns the position of the scene with id, or -1.
func (p Project) SceneIndex(id string) int {
	for i := range p.Scenes {
		if p.Scenes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindScene returns the scene with id.
func (p Project) FindScene(id string) (Scene, bool) {
	if i := p.SceneIndex(id); i >= 0 {
		return p.Scenes[i], true
	}
	return Scene{}, false
}

// FindSlide searches every scene for the slide with id and returns it with its owning scene index.
func (p Project) FindSlide(id string) (Slide, int, bool) {
	for i := range p.Scenes {
		if j := p.Scenes[i].SlideIndex(id); j >= 0 {
			return p.Scenes[i].Slides[j], i, true
		}
	}
	return Slide{}, -1, false
}

// SlideCount returns the number of slides across all scenes.
func (p Project) SlideCount() int {
	n := 0
	for i := range p.Scenes {
		n += len(p.Scenes[i].Slides)
	}
	return n
}

// SlideIndex returns the position of the slide with id, or -1.
func (s Scene) SlideIndex(id string) int {
	for i := range s.Slides {
		if s.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// ElementIndex returns the position of the element with id, or -1.
func (s Slide) ElementIndex(id string) int {
	for i := range s.Elements {
		if s.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// FindElement returns the element with id.
func (s Slide) FindElement(id string) (Element, bool) {
	if i := s.ElementIndex(id); i >= 0 {
		return s.Elements[i], true
	}
	return Element{}, false
}

// TimelineIndex returns the position of the timeline item with id, or -1.
func (s Slide) TimelineIndex(id string) int {
	for i := range s.TimelineItems {
		if s.TimelineItems[i].ID == id {
			return i
		}
	}
	return -1
}
