/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"scenewright/internal/domain"
	"scenewright/internal/editor"
	"scenewright/internal/navgraph"
	"scenewright/internal/storage"
)

func dirFlag(fs *flag.FlagSet) {
	fs.String("dir", "", "projects directory (default from config)")
}

func searchFlags(fs *flag.FlagSet) {
	dirFlag(fs)
	fs.String("project", "", "restrict to one project id")
	fs.Int("limit", 20, "maximum results")
}

func flagString(fs *flag.FlagSet, name string) string {
	if f := fs.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func flagInt(fs *flag.FlagSet, name string) int {
	if f := fs.Lookup(name); f != nil {
		if g, ok := f.Value.(flag.Getter); ok {
			if v, ok := g.Get().(int); ok {
				return v
			}
		}
	}
	return 0
}

// openStore opens the projects directory and points crash reports at its backups folder.
func (a *app) openStore(ctx context.Context, fs *flag.FlagSet) (*storage.FileStore, error) {
	dir := flagString(fs, "dir")
	if dir == "" {
		dir = a.cfg.Storage.ProjectsDir
	}
	store, err := storage.OpenFileStore(ctx, dir)
	if err != nil {
		return nil, err
	}
	a.crash.ReportDir = filepath.Join(store.Dir(), storage.BackupsDirName)
	a.crash.Sink = store
	return store, nil
}

// newEditor builds an editor over repo whose notices go to the command log.
func (a *app) newEditor(p domain.Project, repo editor.Repository) *editor.Editor {
	ed := editor.New(p, editor.Options{
		Repository: repo,
		Canvas:     domain.CanvasSize{Width: a.cfg.Editor.CanvasWidth, Height: a.cfg.Editor.CanvasHeight},
		Notifier: editor.NotifierFunc(func(n editor.Notice) {
			a.log.Debug("notice", slog.String("level", string(n.Level)), slog.String("msg", n.Message))
		}),
		OnRepair: func(r editor.Repair) {
			a.log.Info("pointer repaired", slog.String("pointer", r.Pointer), slog.String("from", r.From), slog.String("to", r.To))
		},
	})
	a.crash.Source = ed
	return ed
}

// loadProject opens the store and loads id through an editor.
func (a *app) loadProject(ctx context.Context, fs *flag.FlagSet, id string) (*editor.Editor, *storage.FileStore, error) {
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return nil, nil, err
	}
	ed := a.newEditor(domain.NewProject(""), store)
	if err := ed.Load(ctx, id); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return ed, store, nil
}

func cmdNew(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	title, err := oneArg(args)
	if err != nil {
		return err
	}
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return err
	}
	defer store.Close()
	ed := a.newEditor(domain.NewProject(title), store)
	if err := ed.Save(ctx); err != nil {
		return err
	}
	a.log.Info("project created", slog.String("id", ed.Project().ID), slog.String("dir", store.Dir()))
	_, err = fmt.Fprintln(a.stdout, ed.Project().ID)
	return err
}

func cmdList(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return err
	}
	defer store.Close()
	list, err := store.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tSCENES\tSLIDES\tUPDATED")
	for _, s := range list {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", s.ID, s.Title, s.Scenes, s.Slides, s.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func cmdSearch(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	store, err := a.openStore(ctx, fs)
	if err != nil {
		return err
	}
	defer store.Close()
	res, err := store.Search(ctx, storage.SearchQuery{
		Text:      strings.Join(args, " "),
		ProjectID: flagString(fs, "project"),
		Limit:     flagInt(fs, "limit"),
	})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, r := range res {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ProjectTitle, r.SlideID, r.Type, r.Text)
	}
	if len(res) == 0 {
		_, _ = fmt.Fprintln(tw, "no matches")
	}
	return tw.Flush()
}

func cmdInfo(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	ed, store, err := a.loadProject(ctx, fs, id)
	if err != nil {
		return err
	}
	defer store.Close()

	p := ed.Project()
	v := ed.View()
	w := a.stdout
	_, _ = fmt.Fprintf(w, "Project: %s\n", p.Title)
	_, _ = fmt.Fprintf(w, "ID:      %s\n", p.ID)
	_, _ = fmt.Fprintf(w, "Scenes:  %d\n", len(p.Scenes))
	_, _ = fmt.Fprintf(w, "Slides:  %d\n", p.SlideCount())
	if v.Scene != nil && v.Slide != nil {
		_, _ = fmt.Fprintf(w, "Current: %s / %s\n", v.Scene.Title, v.Slide.Title)
	}
	for i, sc := range p.Scenes {
		elements := 0
		for _, sl := range sc.Slides {
			elements += len(sl.Elements)
		}
		_, _ = fmt.Fprintf(w, "  %d. %s: %d slides, %d elements\n", i+1, sc.Title, len(sc.Slides), elements)
	}
	_, err = fmt.Fprintf(w, "Scene links: %d\n", len(ed.Connections()))
	return err
}

func cmdGraph(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	ed, store, err := a.loadProject(ctx, fs, id)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = fmt.Fprint(a.stdout, navgraph.DOT(ed.Project(), ed.Connections()))
	return err
}

func cmdValidate(_ context.Context, a *app, _ *flag.FlagSet, args []string) error {
	path, err := oneArg(args)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	env, err := storage.DecodeEnvelope(data)
	if err != nil {
		return err
	}
	p, repaired := domain.RepairPointers(env.Project)
	if err := domain.Validate(p); err != nil {
		return err
	}
	if repaired {
		_, _ = fmt.Fprintln(a.stdout, "note: stale current scene/slide pointers are repaired on load")
	}
	form := "project document"
	if env.Version != "" {
		form = fmt.Sprintf("export envelope v%s, canvas %dx%d", env.Version, env.CanvasSize.Width, env.CanvasSize.Height)
	}
	_, err = fmt.Fprintf(a.stdout, "OK: %q (%s; %d scenes, %d slides)\n", p.Title, form, len(p.Scenes), p.SlideCount())
	return err
}
