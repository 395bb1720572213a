/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import "testing"

func TestComputeSmartGuides_SnapToEdges(t *testing.T) {
	canvas := R(0, 0, 200, 100)
	moving := R(3, 4, 80, 40)
	opts := SnapOptions{Threshold: 6, SnapToEdges: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: canvas, Weight: 1}}, opts)
	if snapped.X != 0 || snapped.Y != 0 {
		t.Fatalf("expected snap to origin, got %+v", snapped)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == "vertical" && g.Position == 0 {
			vOK = true
		}
		if g.Orientation == "horizontal" && g.Position == 0 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected guides at x=0 (%v) and y=0 (%v)", vOK, hOK)
	}
}

func TestComputeSmartGuides_SnapToCenters(t *testing.T) {
	canvas := R(0, 0, 200, 100)
	moving := R(200/2-50-2, 100/2-30-3, 100, 60)
	opts := SnapOptions{Threshold: 5, SnapToCenters: true}

	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: canvas, Weight: 1}}, opts)
	if snapped.X != 50 || snapped.Y != 20 {
		t.Fatalf("expected centered rect, got %+v", snapped)
	}
	for _, g := range guides {
		if g.Kind != "center" {
			t.Fatalf("unexpected guide kind %q", g.Kind)
		}
	}
}

func TestComputeSmartGuides_OutsideThreshold(t *testing.T) {
	moving := R(30, 30, 10, 10)
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: R(0, 0, 10, 10), Weight: 1}}, SnapOptions{Threshold: 4, SnapToEdges: true, SnapToCenters: true})
	if snapped != moving || len(guides) != 0 {
		t.Fatalf("unexpected snap %+v %v", snapped, guides)
	}
}

func TestComputeSmartGuides_Disabled(t *testing.T) {
	moving := R(1, 1, 10, 10)
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: R(0, 0, 10, 10)}}, SnapOptions{SnapToEdges: true})
	if snapped != moving || guides != nil {
		t.Fatalf("zero threshold should disable snapping")
	}
}
