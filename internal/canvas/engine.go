/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas turns pointer events into element geometry changes and viewport changes.
//
// The Engine is a small state machine (Idle, Dragging, Resizing, Panning). Pointer positions are given in
// viewport pixels; element geometry is in slide pixels. Out-of-range input is clamped, never rejected.
package canvas

import (
	"math"

	"scenewright/internal/domain"
)

// Mode is the engine's interaction state.
type Mode int

const (
	Idle Mode = iota
	Dragging
	Resizing
	Panning
)

func (m Mode) String() string {
	switch m {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	case Panning:
		return "panning"
	}
	return "idle"
}

// Handle names a resize grip.
type Handle string

const (
	HandleNone Handle = ""
	HandleN    Handle = "n"
	HandleS    Handle = "s"
	HandleE    Handle = "e"
	HandleW    Handle = "w"
	HandleNE   Handle = "ne"
	HandleNW   Handle = "nw"
	HandleSE   Handle = "se"
	HandleSW   Handle = "sw"
)

func (h Handle) north() bool { return h == HandleN || h == HandleNE || h == HandleNW }
func (h Handle) south() bool { return h == HandleS || h == HandleSE || h == HandleSW }
func (h Handle) east() bool  { return h == HandleE || h == HandleNE || h == HandleSE }
func (h Handle) west() bool  { return h == HandleW || h == HandleNW || h == HandleSW }

// Button is the pressed pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// Target is what lies under the pointer at press time. An empty ElementID means the canvas background.
type Target struct {
	ElementID string
	Bounds    Rect
	Handle    Handle
}

// Viewport is the scroll offset (viewport pixels) and zoom factor of the canvas.
type Viewport struct {
	ScrollX float64
	ScrollY float64
	Zoom    float64
}

// ToSlide converts a viewport point into slide coordinates.
func (v Viewport) ToSlide(p Pt) Pt {
	return Pt{(p.X + v.ScrollX) / v.Zoom, (p.Y + v.ScrollY) / v.Zoom}
}

const (
	DefaultMinZoom  = 0.1
	DefaultMaxZoom  = 3.0
	DefaultZoomStep = 1.1
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	MinZoom  float64
	MaxZoom  float64
	ZoomStep float64
	MinSize  float64
	Snap     SnapOptions

	// OnGeometry receives every geometry change produced by a drag or resize.
	OnGeometry func(elementID string, bounds Rect)
}

// Engine is not safe for concurrent use; feed it from one event loop.
type Engine struct {
	opts Options
	view Viewport
	mode Mode

	pointerStart Pt
	scrollStart  Pt
	target       Target
	current      Rect
	anchors      []Anchor
	guides       []GuideLine
}

// New returns an idle engine at zoom 1.
func New(opts Options) *Engine {
	if opts.MinZoom <= 0 {
		opts.MinZoom = DefaultMinZoom
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = DefaultMaxZoom
	}
	if opts.ZoomStep <= 1 {
		opts.ZoomStep = DefaultZoomStep
	}
	if opts.MinSize <= 0 {
		opts.MinSize = domain.MinElementSize
	}
	return &Engine{opts: opts, view: Viewport{Zoom: 1}}
}

func (e *Engine) Mode() Mode            { return e.mode }
func (e *Engine) Viewport() Viewport    { return e.view }
func (e *Engine) Guides() []GuideLine   { return e.guides }
func (e *Engine) ActiveElement() string { return e.target.ElementID }

// SetViewport replaces the viewport, clamping zoom and scroll.
func (e *Engine) SetViewport(v Viewport) {
	v.Zoom = clamp(v.Zoom, e.opts.MinZoom, e.opts.MaxZoom)
	v.ScrollX = math.Max(domain.Finite(v.ScrollX, 0), 0)
	v.ScrollY = math.Max(domain.Finite(v.ScrollY, 0), 0)
	e.view = v
}

// SetAnchors sets the rects a dragged element snaps to, typically the other elements and the canvas bounds.
func (e *Engine) SetAnchors(anchors []Anchor) { e.anchors = anchors }

// Press starts an interaction and returns the new mode. It is ignored unless the engine is idle.
// The middle button always pans; the primary button drags an element, resizes it through a handle,
// or pans on the background.
func (e *Engine) Press(p Pt, btn Button, t Target) Mode {
	if e.mode != Idle {
		return e.mode
	}
	e.pointerStart = p
	e.scrollStart = Pt{e.view.ScrollX, e.view.ScrollY}
	e.guides = nil
	switch {
	case btn == ButtonMiddle || (btn == ButtonPrimary && t.ElementID == ""):
		e.target = Target{}
		e.mode = Panning
	case btn == ButtonPrimary && t.Handle != HandleNone:
		e.target, e.current = t, t.Bounds
		e.mode = Resizing
	case btn == ButtonPrimary:
		e.target, e.current = t, t.Bounds
		e.mode = Dragging
	}
	return e.mode
}

// Move advances the current interaction. For drags and resizes it returns the element's new bounds
// and true; the same bounds are passed to Options.OnGeometry.
func (e *Engine) Move(p Pt) (Rect, bool) {
	switch e.mode {
	case Dragging:
		e.current = e.drag(p)
	case Resizing:
		e.current = e.resize(p)
	case Panning:
		d := finitePt(p.Sub(e.pointerStart))
		e.view.ScrollX = math.Max(e.scrollStart.X-d.X, 0)
		e.view.ScrollY = math.Max(e.scrollStart.Y-d.Y, 0)
		return Rect{}, false
	default:
		return Rect{}, false
	}
	if e.opts.OnGeometry != nil {
		e.opts.OnGeometry(e.target.ElementID, e.current)
	}
	return e.current, true
}

// Release ends the interaction.
func (e *Engine) Release() {
	e.mode = Idle
	e.target = Target{}
	e.guides = nil
}

// delta is the pointer travel in slide units. Non-finite components count as no travel.
func (e *Engine) delta(p Pt) Pt {
	return finitePt(p.Sub(e.pointerStart).Scale(1 / e.view.Zoom))
}

func finitePt(p Pt) Pt {
	return Pt{domain.Finite(p.X, 0), domain.Finite(p.Y, 0)}
}

func (e *Engine) drag(p Pt) Rect {
	d := e.delta(p)
	r := e.target.Bounds
	r.X += d.X
	r.Y += d.Y
	if e.opts.Snap.Enabled() {
		r, e.guides = ComputeSmartGuides(r, e.anchors, e.opts.Snap)
	}
	r.X, r.Y = math.Max(r.X, 0), math.Max(r.Y, 0)
	return r
}

// resize applies the handle rule: east/south grips grow the size, north/west grips also move the origin so
// the opposite edge stays put. Sizes never drop below the minimum.
func (e *Engine) resize(p Pt) Rect {
	d := e.delta(p)
	s := e.target.Bounds
	r := s
	h := e.target.Handle
	minSize := e.opts.MinSize
	if h.east() {
		r.W = math.Max(s.W+d.X, minSize)
	}
	if h.west() {
		r.W = math.Max(s.W-d.X, minSize)
		r.X = s.X + s.W - r.W
		if r.X < 0 {
			r.W, r.X = math.Max(r.W+r.X, minSize), 0
		}
	}
	if h.south() {
		r.H = math.Max(s.H+d.Y, minSize)
	}
	if h.north() {
		r.H = math.Max(s.H-d.Y, minSize)
		r.Y = s.Y + s.H - r.H
		if r.Y < 0 {
			r.H, r.Y = math.Max(r.H+r.Y, minSize), 0
		}
	}
	return r
}

// Wheel handles a wheel event at cursor (viewport pixels). Without the zoom modifier it does nothing and
// returns false. Scrolling up zooms in. The slide point under the cursor stays under the cursor.
func (e *Engine) Wheel(cursor Pt, deltaY float64, modifier bool) bool {
	if !modifier || deltaY == 0 {
		return false
	}
	old := e.view.Zoom
	next := old * e.opts.ZoomStep
	if deltaY > 0 {
		next = old / e.opts.ZoomStep
	}
	e.ZoomAt(cursor, next)
	return true
}

// ZoomAt sets the zoom factor (clamped) keeping the content under cursor fixed.
func (e *Engine) ZoomAt(cursor Pt, zoom float64) {
	old := e.view.Zoom
	cursor = finitePt(cursor)
	zoom = clamp(zoom, e.opts.MinZoom, e.opts.MaxZoom)
	ratio := zoom / old
	e.view.ScrollX = math.Max((e.view.ScrollX+cursor.X)*ratio-cursor.X, 0)
	e.view.ScrollY = math.Max((e.view.ScrollY+cursor.Y)*ratio-cursor.Y, 0)
	e.view.Zoom = zoom
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
