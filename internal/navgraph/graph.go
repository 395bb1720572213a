/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package navgraph derives the scene-to-scene connection graph implied by button actions and resolves those
// actions during playback.
package navgraph

import (
	"sync"

	"scenewright/internal/domain"
)

// Connection is a directed edge from the slide holding a "goToScene" button to the target scene.
type Connection struct {
	FromSceneID string `json:"fromSceneId"`
	FromSlideID string `json:"fromSlideId"`
	ToSceneID   string `json:"toSceneId"`
	Label       string `json:"label"`
	ElementID   string `json:"elementId"`
}

// Extract scans every button on every slide and returns one Connection per "goToScene:<id>" action whose
// target scene exists. Unresolvable targets are skipped. The result is never nil.
func Extract(scenes []domain.Scene) []Connection {
	ids := make(map[string]struct{}, len(scenes))
	for _, sc := range scenes {
		ids[sc.ID] = struct{}{}
	}
	conns := []Connection{}
	for _, sc := range scenes {
		for _, sl := range sc.Slides {
			for _, el := range sl.Elements {
				b, ok := el.Button()
				if !ok {
					continue
				}
				a := domain.ParseAction(b.Action)
				if a.Kind != domain.ActionGoToScene {
					continue
				}
				if _, ok := ids[a.Target]; !ok {
					continue
				}
				conns = append(conns, Connection{
					FromSceneID: sc.ID,
					FromSlideID: sl.ID,
					ToSceneID:   a.Target,
					Label:       b.Label,
					ElementID:   el.ID,
				})
			}
		}
	}
	return conns
}

// Memo caches Extract keyed on the identity of the scenes slice. Copy-on-write updates allocate a new
// slice whenever any scene changes, so identity is a sufficient dependency. Safe for concurrent use.
type Memo struct {
	mu    sync.Mutex
	first *domain.Scene
	n     int
	conns []Connection
	valid bool
}

// Get returns the cached connections for scenes, recomputing when the slice differs from the last call.
func (m *Memo) Get(scenes []domain.Scene) []Connection {
	var first *domain.Scene
	if len(scenes) > 0 {
		first = &scenes[0]
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.first == first && m.n == len(scenes) {
		return m.conns
	}
	m.conns = Extract(scenes)
	m.first, m.n, m.valid = first, len(scenes), true
	return m.conns
}

// Reset drops the cached result.
func (m *Memo) Reset() {
	m.mu.Lock()
	m.valid, m.first, m.conns = false, nil, nil
	m.mu.Unlock()
}
