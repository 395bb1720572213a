/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

// Slide-space geometry shared by the interaction engine and hit testing.

import (
	"math"
	"sort"

	"scenewright/internal/domain"
)

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

func (p Pt) Sub(o Pt) Pt        { return Pt{p.X - o.X, p.Y - o.Y} }
func (p Pt) Scale(f float64) Pt { return Pt{p.X * f, p.Y * f} }

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// RectOf returns the element's bounds.
func RectOf(el domain.Element) Rect { return Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height} }

// Patch converts bounds into an element geometry update.
func (r Rect) Patch() domain.ElementPatch {
	return domain.ElementPatch{X: domain.Ptr(r.X), Y: domain.Ptr(r.Y), Width: domain.Ptr(r.W), Height: domain.Ptr(r.H)}
}

// Stacked returns the slide's elements sorted bottom to top: explicit z-index first, list order on ties.
func Stacked(sl domain.Slide) []domain.Element {
	type item struct {
		el  domain.Element
		z   int
		pos int
	}
	items := make([]item, len(sl.Elements))
	for i, el := range sl.Elements {
		items[i] = item{el, el.Z(i), i}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].z < items[j].z })
	out := make([]domain.Element, len(items))
	for i, it := range items {
		out[i] = it.el
	}
	return out
}

// HitTest returns the topmost element under p (slide coordinates).
func HitTest(sl domain.Slide, p Pt) (domain.Element, bool) {
	stack := Stacked(sl)
	for i := len(stack) - 1; i >= 0; i-- {
		if RectOf(stack[i]).Contains(p) {
			return stack[i], true
		}
	}
	return domain.Element{}, false
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
