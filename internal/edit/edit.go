/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package edit holds the pure store operations over the authoring tree.
//
// Every function takes values and returns new values. Slices of the input are never written to: a changed
// level gets a freshly allocated slice while unchanged siblings are shared with the input.
package edit

import (
	"slices"

	"scenewright/internal/domain"
)

func replaceAt[T any](s []T, i int, v T) []T {
	out := slices.Clone(s)
	out[i] = v
	return out
}

func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func insertAt[T any](s []T, i int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}

func appendCopy[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s...)
	return append(out, v)
}

// ReplaceSlide swaps in sl for the slide with the same id inside scene. The bool is false when absent.
func ReplaceSlide(scene domain.Scene, sl domain.Slide) (domain.Scene, bool) {
	i := scene.SlideIndex(sl.ID)
	if i < 0 {
		return scene, false
	}
	scene.Slides = replaceAt(scene.Slides, i, sl)
	return scene, true
}

// ReplaceScene swaps in sc for the scene with the same id inside p. The bool is false when absent.
func ReplaceScene(p domain.Project, sc domain.Scene) (domain.Project, bool) {
	i := p.SceneIndex(sc.ID)
	if i < 0 {
		return p, false
	}
	p.Scenes = replaceAt(p.Scenes, i, sc)
	return p, true
}
