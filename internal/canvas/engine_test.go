/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"
	"testing"

	"scenewright/internal/domain"
)

func TestDragScalesByZoomAndClamps(t *testing.T) {
	e := New(Options{})
	e.SetViewport(Viewport{Zoom: 2})
	start := R(100, 100, 50, 50)
	if m := e.Press(Pt{10, 10}, ButtonPrimary, Target{ElementID: "a", Bounds: start}); m != Dragging {
		t.Fatalf("mode = %v", m)
	}
	r, ok := e.Move(Pt{50, 30})
	if !ok || r.X != 120 || r.Y != 110 || r.W != 50 {
		t.Fatalf("drag result %+v", r)
	}
	r, _ = e.Move(Pt{-1000, -1000})
	if r.X != 0 || r.Y != 0 {
		t.Fatalf("drag not clamped at origin: %+v", r)
	}
	e.Release()
	if e.Mode() != Idle {
		t.Fatalf("release did not return to idle")
	}
	if _, ok := e.Move(Pt{1, 1}); ok {
		t.Fatalf("move while idle produced geometry")
	}
}

func TestPressIgnoredWhileBusy(t *testing.T) {
	e := New(Options{})
	e.Press(Pt{}, ButtonPrimary, Target{ElementID: "a", Bounds: R(0, 0, 40, 40)})
	if m := e.Press(Pt{}, ButtonMiddle, Target{}); m != Dragging {
		t.Fatalf("second press changed mode to %v", m)
	}
	if e.ActiveElement() != "a" {
		t.Fatalf("active element changed")
	}
}

func TestResizeHandles(t *testing.T) {
	start := R(100, 100, 100, 80)
	cases := []struct {
		h    Handle
		d    Pt
		want Rect
	}{
		{HandleE, Pt{30, 30}, R(100, 100, 130, 80)},
		{HandleS, Pt{30, 30}, R(100, 100, 100, 110)},
		{HandleW, Pt{30, 30}, R(130, 100, 70, 80)},
		{HandleN, Pt{30, 30}, R(100, 130, 100, 50)},
		{HandleSE, Pt{10, 20}, R(100, 100, 110, 100)},
		{HandleNW, Pt{10, 20}, R(110, 120, 90, 60)},
		{HandleNE, Pt{10, 20}, R(100, 120, 110, 60)},
		{HandleSW, Pt{10, 20}, R(110, 100, 90, 100)},
	}
	for _, c := range cases {
		e := New(Options{})
		e.Press(Pt{500, 500}, ButtonPrimary, Target{ElementID: "a", Bounds: start, Handle: c.h})
		got, _ := e.Move(Pt{500 + c.d.X, 500 + c.d.Y})
		if got != c.want {
			t.Errorf("%s: got %+v want %+v", c.h, got, c.want)
		}
	}
}

func TestResizeNeverBelowMinimum(t *testing.T) {
	start := R(100, 100, 100, 80)
	handles := []Handle{HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW}
	for _, h := range handles {
		for _, far := range []float64{-5000, -150, -90, 90, 150, 5000} {
			e := New(Options{})
			e.SetViewport(Viewport{Zoom: 0.5})
			e.Press(Pt{0, 0}, ButtonPrimary, Target{ElementID: "a", Bounds: start, Handle: h})
			got, _ := e.Move(Pt{far, far})
			if got.W < domain.MinElementSize || got.H < domain.MinElementSize {
				t.Fatalf("%s by %v: %+v below minimum", h, far, got)
			}
		}
	}
}

func TestResizeAnchorsOppositeEdge(t *testing.T) {
	e := New(Options{})
	start := R(100, 100, 100, 80)
	e.Press(Pt{0, 0}, ButtonPrimary, Target{ElementID: "a", Bounds: start, Handle: HandleNW})
	got, _ := e.Move(Pt{500, 500})
	if got.X+got.W != 200 || got.Y+got.H != 180 {
		t.Fatalf("opposite corner moved: %+v", got)
	}
}

func TestNonFinitePointerIsNoTravel(t *testing.T) {
	start := R(100, 100, 100, 80)
	for _, h := range []Handle{HandleNone, HandleSE, HandleNW} {
		e := New(Options{})
		e.Press(Pt{0, 0}, ButtonPrimary, Target{ElementID: "a", Bounds: start, Handle: h})
		got, _ := e.Move(Pt{math.NaN(), math.Inf(1)})
		if got != start {
			t.Errorf("%s: got %+v want %+v", h, got, start)
		}
	}

	e := New(Options{})
	e.Press(Pt{math.NaN(), 0}, ButtonPrimary, Target{ElementID: "a", Bounds: start, Handle: HandleE})
	if got, _ := e.Move(Pt{40, 0}); got != start {
		t.Fatalf("NaN press point: %+v", got)
	}
	e.Release()

	e.Press(Pt{0, 0}, ButtonMiddle, Target{})
	e.Move(Pt{math.Inf(-1), math.NaN()})
	e.Release()
	e.ZoomAt(Pt{math.NaN(), 10}, 2)
	v := e.Viewport()
	if math.IsNaN(v.ScrollX) || math.IsInf(v.ScrollX, 0) || math.IsNaN(v.ScrollY) || v.Zoom != 2 {
		t.Fatalf("viewport = %+v", v)
	}
}

func TestPanOnBackgroundAndMiddleButton(t *testing.T) {
	e := New(Options{})
	e.SetViewport(Viewport{ScrollX: 100, ScrollY: 100, Zoom: 1})
	if m := e.Press(Pt{50, 50}, ButtonPrimary, Target{}); m != Panning {
		t.Fatalf("background press mode = %v", m)
	}
	e.Move(Pt{80, 60})
	if v := e.Viewport(); v.ScrollX != 70 || v.ScrollY != 90 {
		t.Fatalf("scroll = %+v", v)
	}
	e.Release()

	if m := e.Press(Pt{0, 0}, ButtonMiddle, Target{ElementID: "a", Bounds: R(0, 0, 30, 30)}); m != Panning {
		t.Fatalf("middle press mode = %v", m)
	}
	e.Move(Pt{1000, 1000})
	if v := e.Viewport(); v.ScrollX != 0 || v.ScrollY != 0 {
		t.Fatalf("scroll not clamped: %+v", v)
	}
}

func TestWheelZoomKeepsCursorAnchored(t *testing.T) {
	e := New(Options{})
	e.SetViewport(Viewport{ScrollX: 200, ScrollY: 100, Zoom: 1})
	cursor := Pt{300, 200}
	before := e.Viewport().ToSlide(cursor)
	if !e.Wheel(cursor, -1, true) {
		t.Fatalf("modifier wheel ignored")
	}
	v := e.Viewport()
	if math.Abs(v.Zoom-1.1) > 1e-9 {
		t.Fatalf("zoom = %v", v.Zoom)
	}
	after := v.ToSlide(cursor)
	if math.Abs(after.X-before.X) > 1e-9 || math.Abs(after.Y-before.Y) > 1e-9 {
		t.Fatalf("anchor drifted: %+v -> %+v", before, after)
	}
	if e.Wheel(cursor, -1, false) {
		t.Fatalf("wheel without modifier should not zoom")
	}
}

func TestZoomClamped(t *testing.T) {
	e := New(Options{})
	for i := 0; i < 100; i++ {
		e.Wheel(Pt{}, -1, true)
	}
	if z := e.Viewport().Zoom; z != DefaultMaxZoom {
		t.Fatalf("zoom in clamp: %v", z)
	}
	for i := 0; i < 200; i++ {
		e.Wheel(Pt{}, 1, true)
	}
	if z := e.Viewport().Zoom; z != DefaultMinZoom {
		t.Fatalf("zoom out clamp: %v", z)
	}
}

func TestOnGeometryCallback(t *testing.T) {
	var gotID string
	var gotRect Rect
	e := New(Options{OnGeometry: func(id string, r Rect) { gotID, gotRect = id, r }})
	e.Press(Pt{}, ButtonPrimary, Target{ElementID: "el", Bounds: R(10, 10, 30, 30)})
	e.Move(Pt{5, 5})
	if gotID != "el" || gotRect != R(15, 15, 30, 30) {
		t.Fatalf("callback got %q %+v", gotID, gotRect)
	}
}

func TestDragSnapsToAnchor(t *testing.T) {
	e := New(Options{Snap: SnapOptions{Threshold: 6, SnapToEdges: true}})
	e.SetAnchors([]Anchor{{Rect: R(0, 0, 1280, 720), Weight: 1}})
	e.Press(Pt{}, ButtonPrimary, Target{ElementID: "a", Bounds: R(10, 10, 50, 50)})
	got, _ := e.Move(Pt{-6, -7})
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("expected snap to canvas corner, got %+v", got)
	}
	if len(e.Guides()) != 2 {
		t.Fatalf("expected two guides, got %d", len(e.Guides()))
	}
}

func TestHitTestPrefersTopmost(t *testing.T) {
	sl := domain.NewSlide(1)
	a := domain.NewElement(domain.TypeImage)
	b := domain.NewElement(domain.TypeHotspot)
	a.ZIndex = domain.Ptr(5)
	sl.Elements = []domain.Element{a, b}
	got, ok := HitTest(sl, Pt{250, 250})
	if !ok || got.ID != a.ID {
		t.Fatalf("hit %v %q, want %q", ok, got.ID, a.ID)
	}
	if _, ok := HitTest(sl, Pt{5, 5}); ok {
		t.Fatalf("hit on empty background")
	}
}
