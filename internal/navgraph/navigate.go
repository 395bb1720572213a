/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package navgraph

import (
	"scenewright/internal/domain"
)

// Position is a playback location.
type Position struct {
	SceneID string
	SlideID string
}

// Navigate resolves a button action from pos. nextSlide and prevSlide stay inside the scene and report false
// at its ends; goToSlide looks in the current scene first and then the whole project; goToScene lands on the
// target's first slide. Unknown or unresolvable actions report false and return pos.
func Navigate(p domain.Project, pos Position, action string) (Position, bool) {
	a := domain.ParseAction(action)
	sc, ok := p.FindScene(pos.SceneID)
	switch a.Kind {
	case domain.ActionNextSlide, domain.ActionPrevSlide:
		if !ok {
			return pos, false
		}
		i := sc.SlideIndex(pos.SlideID)
		if i < 0 {
			return pos, false
		}
		if a.Kind == domain.ActionNextSlide {
			i++
		} else {
			i--
		}
		if i < 0 || i >= len(sc.Slides) {
			return pos, false
		}
		return Position{SceneID: sc.ID, SlideID: sc.Slides[i].ID}, true
	case domain.ActionGoToSlide:
		if ok && sc.SlideIndex(a.Target) >= 0 {
			return Position{SceneID: sc.ID, SlideID: a.Target}, true
		}
		if _, si, found := p.FindSlide(a.Target); found {
			return Position{SceneID: p.Scenes[si].ID, SlideID: a.Target}, true
		}
	case domain.ActionGoToScene:
		if target, found := p.FindScene(a.Target); found && len(target.Slides) > 0 {
			return Position{SceneID: target.ID, SlideID: target.Slides[0].ID}, true
		}
	}
	return pos, false
}
