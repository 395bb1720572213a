/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"fmt"

	"scenewright/internal/domain"
)

// AddScene appends "Scene n" holding one fresh slide and makes both current.
func AddScene(p domain.Project) (domain.Project, domain.Scene) {
	sc := domain.NewScene(fmt.Sprintf("Scene %d", len(p.Scenes)+1))
	p.Scenes = appendCopy(p.Scenes, sc)
	p.CurrentSceneID = sc.ID
	p.CurrentSlideID = sc.Slides[0].ID
	return p, sc
}

// DeleteScene removes the scene with id. The last scene is never removed.
// When the current scene goes, its preceding sibling (or the new first scene) becomes current and
// the current slide moves to that scene's first slide.
func DeleteScene(p domain.Project, id string) (domain.Project, error) {
	if len(p.Scenes) <= 1 {
		return p, fmt.Errorf("delete scene %q: %w", id, domain.ErrLastScene)
	}
	i := p.SceneIndex(id)
	if i < 0 {
		return p, fmt.Errorf("delete scene %q: %w", id, domain.ErrNotFound)
	}
	p.Scenes = removeAt(p.Scenes, i)
	if id == p.CurrentSceneID {
		next := p.Scenes[max(i-1, 0)]
		p.CurrentSceneID = next.ID
		if len(next.Slides) > 0 {
			p.CurrentSlideID = next.Slides[0].ID
		}
	}
	return p, nil
}

// SelectScene makes the scene with id current and points the current slide at its first slide.
// An empty target scene leaves the slide pointer alone.
func SelectScene(p domain.Project, id string) (domain.Project, error) {
	sc, ok := p.FindScene(id)
	if !ok {
		return p, fmt.Errorf("select scene %q: %w", id, domain.ErrNotFound)
	}
	p.CurrentSceneID = sc.ID
	if len(sc.Slides) > 0 {
		p.CurrentSlideID = sc.Slides[0].ID
	}
	return p, nil
}

// UpdateScene merges patch into sc.
func UpdateScene(sc domain.Scene, patch domain.ScenePatch) domain.Scene {
	return sc.Apply(patch)
}
