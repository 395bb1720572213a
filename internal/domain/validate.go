/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a project: an id, at least one scene, at least one slide per
// scene, unique ids, known element types and current pointers that resolve. It returns an error wrapping
// ErrFormat that lists every problem found.
func Validate(p Project) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if p.ID == "" {
		add("project id is empty")
	}
	if len(p.Scenes) == 0 {
		add("project has no scenes")
	}
	seen := make(map[string]string)
	claim := func(id, what string) {
		if id == "" {
			add("%s has an empty id", what)
			return
		}
		if prev, ok := seen[id]; ok {
			add("duplicate id %q (%s and %s)", id, prev, what)
			return
		}
		seen[id] = what
	}
	for i, sc := range p.Scenes {
		claim(sc.ID, fmt.Sprintf("scene %d", i+1))
		if len(sc.Slides) == 0 {
			add("scene %q has no slides", sc.ID)
		}
		for j, sl := range sc.Slides {
			claim(sl.ID, fmt.Sprintf("slide %d of scene %q", j+1, sc.ID))
			ids := make(map[string]struct{}, len(sl.Elements))
			for k, el := range sl.Elements {
				if el.ID == "" {
					add("element %d on slide %q has an empty id", k+1, sl.ID)
				} else if _, dup := ids[el.ID]; dup {
					add("duplicate element id %q on slide %q", el.ID, sl.ID)
				}
				ids[el.ID] = struct{}{}
				if !el.Type().Known() {
					add("element %q on slide %q has unknown type %q", el.ID, sl.ID, el.Type())
				}
			}
		}
	}
	if len(p.Scenes) > 0 {
		if sc, ok := p.FindScene(p.CurrentSceneID); !ok {
			add("current scene %q does not exist", p.CurrentSceneID)
		} else if len(sc.Slides) > 0 && sc.SlideIndex(p.CurrentSlideID) < 0 {
			add("current slide %q is not in scene %q", p.CurrentSlideID, sc.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrFormat, errors.Join(errs...))
}

// RepairPointers points stale or empty current pointers at the first scene and its first slide.
// It reports whether anything changed.
func RepairPointers(p Project) (Project, bool) {
	if len(p.Scenes) == 0 {
		return p, false
	}
	changed := false
	i := p.SceneIndex(p.CurrentSceneID)
	if i < 0 {
		i = 0
		p.CurrentSceneID = p.Scenes[0].ID
		changed = true
	}
	sc := p.Scenes[i]
	if len(sc.Slides) > 0 && sc.SlideIndex(p.CurrentSlideID) < 0 {
		p.CurrentSlideID = sc.Slides[0].ID
		changed = true
	}
	return p, changed
}
