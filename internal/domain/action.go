/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "strings"

// ActionKind is the command half of a button action string.
type ActionKind string

const (
	ActionNextSlide ActionKind = "nextSlide"
	ActionPrevSlide ActionKind = "prevSlide"
	ActionGoToSlide ActionKind = "goToSlide"
	ActionGoToScene ActionKind = "goToScene"
)

// Action is a decoded button action: "nextSlide", "prevSlide", "goToSlide:<slideId>" or "goToScene:<sceneId>".
type Action struct {
	Kind   ActionKind
	Target string
}

// ParseAction splits s at the first colon. Unknown commands are returned as-is; callers check Known.
func ParseAction(s string) Action {
	kind, target, _ := strings.Cut(strings.TrimSpace(s), ":")
	return Action{Kind: ActionKind(kind), Target: target}
}

// Known reports whether the command is one of the four supported kinds with a target where one is required.
func (a Action) Known() bool {
	switch a.Kind {
	case ActionNextSlide, ActionPrevSlide:
		return true
	case ActionGoToSlide, ActionGoToScene:
		return a.Target != ""
	}
	return false
}

func (a Action) String() string {
	if a.Target == "" {
		return string(a.Kind)
	}
	return string(a.Kind) + ":" + a.Target
}

// GoToScene encodes a scene jump.
func GoToScene(sceneID string) string { return Action{Kind: ActionGoToScene, Target: sceneID}.String() }

// GoToSlide encodes a slide jump.
func GoToSlide(slideID string) string { return Action{Kind: ActionGoToSlide, Target: slideID}.String() }
