/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/storage"
)

var errNoRepository = errors.New("no repository configured")

// Canvas returns the canvas size written into exports.
func (e *Editor) Canvas() domain.CanvasSize { return e.opts.Canvas }

// Snapshot encodes the live project as a bare document. It is used for autosave and crash recovery.
func (e *Editor) Snapshot() (id string, payload []byte, err error) {
	p := e.Project()
	payload, err = storage.EncodeProject(p)
	return p.ID, payload, err
}

// Save writes the live project to the repository. Edits made while the call is in flight are not blocked.
func (e *Editor) Save(ctx context.Context) error {
	if e.opts.Repository == nil {
		return e.fail("save", fmt.Errorf("save: %w", errNoRepository))
	}
	id, payload, err := e.Snapshot()
	if err != nil {
		return e.fail("save", err)
	}
	ctx = applog.ContextWithProject(ctx, id)
	if err := e.opts.Repository.Save(ctx, id, payload); err != nil {
		return e.fail("save", fmt.Errorf("save project %q: %w", id, err))
	}
	e.log.InfoContext(ctx, "project saved", slog.Int("bytes", len(payload)))
	e.notify(Notice{Level: LevelInfo, Message: "Project saved."})
	return nil
}

// Load replaces the live project with the stored project id. A payload that fails validation is rejected
// and the live tree is kept. If the tree changed while the load was in flight, the result is discarded
// with ErrStaleLoad.
func (e *Editor) Load(ctx context.Context, id string) error {
	if e.opts.Repository == nil {
		return e.fail("load", fmt.Errorf("load: %w", errNoRepository))
	}
	start := e.Generation()
	ctx = applog.ContextWithProject(ctx, id)
	data, err := e.opts.Repository.Load(ctx, id)
	if err != nil {
		return e.fail("load", fmt.Errorf("load project %q: %w", id, err))
	}
	p, err := decodeValid(data)
	if err != nil {
		return e.fail("load", fmt.Errorf("load project %q: %w", id, err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != start {
		return e.fail("load", fmt.Errorf("load project %q: %w", id, domain.ErrStaleLoad))
	}
	e.replaceLocked(p, "load")
	e.log.InfoContext(ctx, "project loaded", slog.Int("scenes", len(p.Scenes)))
	return nil
}

// List returns the summaries known to the repository.
func (e *Editor) List(ctx context.Context) ([]storage.Summary, error) {
	if e.opts.Repository == nil {
		return nil, e.fail("list", fmt.Errorf("list: %w", errNoRepository))
	}
	out, err := e.opts.Repository.List(ctx)
	if err != nil {
		return nil, e.fail("list", fmt.Errorf("list projects: %w", err))
	}
	return out, nil
}

// Delete removes a stored project. The live tree is not touched.
func (e *Editor) Delete(ctx context.Context, id string) error {
	if e.opts.Repository == nil {
		return e.fail("delete", fmt.Errorf("delete: %w", errNoRepository))
	}
	if err := e.opts.Repository.Delete(applog.ContextWithProject(ctx, id), id); err != nil {
		return e.fail("delete", fmt.Errorf("delete project %q: %w", id, err))
	}
	return nil
}

// Import replaces the live project with a bare or wrapped document and returns its canvas size
// (the editor canvas when the document carries none). Invalid documents leave the live tree untouched.
func (e *Editor) Import(data []byte) (domain.CanvasSize, error) {
	env, err := storage.DecodeEnvelope(data)
	if err != nil {
		return domain.CanvasSize{}, e.fail("import", fmt.Errorf("import: %w", err))
	}
	p, err := repairAndValidate(env.Project)
	if err != nil {
		return domain.CanvasSize{}, e.fail("import", fmt.Errorf("import: %w", err))
	}
	size := env.CanvasSize
	if size.Width <= 0 || size.Height <= 0 {
		size = e.opts.Canvas
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaceLocked(p, "import")
	return size, nil
}

// Export encodes the live project in the wrapped export form. A zero size means the editor canvas.
func (e *Editor) Export(size domain.CanvasSize) ([]byte, error) {
	if size.Width <= 0 || size.Height <= 0 {
		size = e.opts.Canvas
	}
	data, err := storage.EncodeEnvelope(e.Project(), size)
	if err != nil {
		return nil, e.fail("export", err)
	}
	return data, nil
}

// replaceLocked installs a whole new project and resets the session state tied to the old tree.
// The clipboard survives.
func (e *Editor) replaceLocked(p domain.Project, op string) {
	e.installLocked(p, op)
	e.selectedID = ""
	e.pendingSlide = ""
	e.graph.Reset()
}

func decodeValid(data []byte) (domain.Project, error) {
	p, err := storage.DecodeProject(data)
	if err != nil {
		return domain.Project{}, err
	}
	return repairAndValidate(p)
}

// repairAndValidate fixes stale current pointers, then requires a structurally valid tree.
func repairAndValidate(p domain.Project) (domain.Project, error) {
	p, _ = domain.RepairPointers(p)
	if err := domain.Validate(p); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}
