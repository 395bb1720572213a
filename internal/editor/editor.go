/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor owns the live project tree and is its only mutation surface.
//
// Every handler reads the current tree, computes a new one through the pure functions in package edit,
// and installs it under the editor lock. Unchanged subtrees are shared between versions. Handlers that fail
// leave the tree untouched, return the error and forward a Notice to the configured Notifier.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/navgraph"
	"scenewright/internal/storage"
)

// Repository is the persistence collaborator. Payloads are encoded project documents.
type Repository interface {
	Save(ctx context.Context, id string, payload []byte) error
	Load(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]storage.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Level classifies a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a user-facing notification.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Repair records a stale pointer that was resolved to a fallback while computing a View.
type Repair struct {
	Pointer string // "scene", "slide" or "selection"
	From    string
	To      string
}

// ClipboardMirror receives a copy of every element put on the clipboard.
type ClipboardMirror interface {
	WriteElement(domain.Element) error
}

type Options struct {
	Repository Repository
	Notifier   Notifier
	// OnRepair is called for every pointer repaired while resolving a View.
	OnRepair func(Repair)
	// Mirror, when set, also receives copied elements (see OSClipboard).
	Mirror ClipboardMirror
	Canvas domain.CanvasSize
}

// Editor holds one editing session: the project, the selected element, the clipboard and
// the pending slide deletion. It is safe for concurrent use.
type Editor struct {
	opts Options
	log  *slog.Logger

	mu           sync.Mutex
	project      domain.Project
	selectedID   string
	clipboard    *domain.Element
	pendingSlide string
	gen          uint64
	graph        navgraph.Memo
}

// New starts a session on p. A project without scenes is replaced by a fresh default project.
func New(p domain.Project, opts Options) *Editor {
	if opts.Canvas.Width <= 0 || opts.Canvas.Height <= 0 {
		opts.Canvas = domain.DefaultCanvas
	}
	if len(p.Scenes) == 0 {
		title := p.Title
		if title == "" {
			title = "Untitled project"
		}
		p = domain.NewProject(title)
	}
	p, _ = domain.RepairPointers(p)
	return &Editor{opts: opts, log: applog.WithComponent("editor"), project: p}
}

// Project returns the current tree.
func (e *Editor) Project() domain.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project
}

// Generation counts installed trees. It changes on every successful mutation.
func (e *Editor) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// View is the derived state of a session. Nil fields mean "none".
type View struct {
	Project  domain.Project
	Scene    *domain.Scene
	Slide    *domain.Slide
	Selected *domain.Element

	sceneIdx int
	slideIdx int
}

// View resolves the current scene, slide and selection. Stale pointers fall back to the first scene,
// the first slide of the current scene and no selection; each fallback is reported through OnRepair.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveLocked()
}

func (e *Editor) resolveLocked() View {
	v, repairs := resolveOrRepair(e.project, e.selectedID)
	for _, r := range repairs {
		e.log.Debug("pointer repaired", slog.String("pointer", r.Pointer), slog.String("from", r.From), slog.String("to", r.To))
		if e.opts.OnRepair != nil {
			e.opts.OnRepair(r)
		}
	}
	return v
}

func resolveOrRepair(p domain.Project, selectedID string) (View, []Repair) {
	v := View{Project: p, sceneIdx: -1, slideIdx: -1}
	var repairs []Repair
	if len(p.Scenes) == 0 {
		return v, nil
	}
	si := p.SceneIndex(p.CurrentSceneID)
	if si < 0 {
		si = 0
		repairs = append(repairs, Repair{Pointer: "scene", From: p.CurrentSceneID, To: p.Scenes[0].ID})
	}
	sc := p.Scenes[si]
	v.Scene, v.sceneIdx = &sc, si
	if len(sc.Slides) == 0 {
		return v, repairs
	}
	li := sc.SlideIndex(p.CurrentSlideID)
	if li < 0 {
		li = 0
		repairs = append(repairs, Repair{Pointer: "slide", From: p.CurrentSlideID, To: sc.Slides[0].ID})
	}
	sl := sc.Slides[li]
	v.Slide, v.slideIdx = &sl, li
	if selectedID == "" {
		return v, repairs
	}
	if el, ok := sl.FindElement(selectedID); ok {
		v.Selected = &el
	} else {
		repairs = append(repairs, Repair{Pointer: "selection", From: selectedID})
	}
	return v, repairs
}

// install replaces the tree and bumps the generation. Pointers left stale by the mutation are repaired.
func (e *Editor) installLocked(p domain.Project, op string) {
	if fixed, changed := domain.RepairPointers(p); changed {
		e.log.Debug("pointers repaired after mutation", slog.String("op", op))
		p = fixed
	}
	e.project = p
	e.gen++
	e.log.Debug("mutation", slog.String("op", op), slog.Uint64("gen", e.gen))
}

// withSlide threads sl back into the current scene and the project.
func withSlide(v View, sl domain.Slide) domain.Project {
	sc := *v.Scene
	sc.Slides = replace(sc.Slides, v.slideIdx, sl)
	return withScene(v, sc)
}

func withScene(v View, sc domain.Scene) domain.Project {
	p := v.Project
	p.Scenes = replace(p.Scenes, v.sceneIdx, sc)
	return p
}

func replace[T any](s []T, i int, v T) []T {
	out := make([]T, len(s))
	copy(out, s)
	out[i] = v
	return out
}

// fail logs and reports err, then returns it.
func (e *Editor) fail(op string, err error) error {
	level := LevelWarning
	switch {
	case isTransportOrFormat(err):
		level = LevelError
		e.log.Warn("operation failed", slog.String("op", op), slog.Any("err", err))
	default:
		e.log.Info("operation refused", slog.String("op", op), slog.Any("err", err))
	}
	e.notify(Notice{Level: level, Message: domain.UserMessage(err), Err: err})
	return err
}

func (e *Editor) notify(n Notice) {
	if e.opts.Notifier != nil {
		e.opts.Notifier.Notify(n)
	}
}

// Connections returns the scene navigation graph of the current tree, memoized on the scene list.
func (e *Editor) Connections() []navgraph.Connection {
	e.mu.Lock()
	scenes := e.project.Scenes
	e.mu.Unlock()
	return e.graph.Get(scenes)
}

// Navigate resolves a button action from pos, as playback would.
func (e *Editor) Navigate(pos navgraph.Position, action string) (navgraph.Position, bool) {
	return navgraph.Navigate(e.Project(), pos, action)
}

// RenameProject sets the project title.
func (e *Editor) RenameProject(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.project
	if p.Title == title {
		return
	}
	p.Title = title
	e.installLocked(p, "rename_project")
}

func isTransportOrFormat(err error) bool {
	return errors.Is(err, domain.ErrTransport) || errors.Is(err, domain.ErrFormat)
}
