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
	"path/filepath"
	"strings"

	"scenewright/internal/export"
)

// sceneList collects repeated -scene flags.
type sceneList []string

func (s *sceneList) String() string { return strings.Join(*s, ",") }

func (s *sceneList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func pdfFlags(fs *flag.FlagSet) {
	dirFlag(fs)
	fs.String("o", "", "output file (default <projects>/exports/<id>.pdf)")
	fs.String("author", "", "document author")
	fs.Var(&sceneList{}, "scene", "scene id to include (repeatable; default all)")
}

func thumbFlags(fs *flag.FlagSet) {
	dirFlag(fs)
	fs.String("o", "", "output directory (default <projects>/exports/<id>-thumbs)")
	fs.Int("w", 320, "thumbnail width in pixels")
	fs.Int("h", 180, "thumbnail height in pixels")
}

func cmdPDF(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	ed, store, err := a.loadProject(ctx, fs, id)
	if err != nil {
		return err
	}
	defer store.Close()

	out := flagString(fs, "o")
	if out == "" {
		out = filepath.Join(store.Dir(), "exports", id+".pdf")
	}
	var scenes []string
	if f := fs.Lookup("scene"); f != nil {
		scenes = *f.Value.(*sceneList)
	}
	pages, err := export.ExportStoryboardPDF(ed.Project(), out, export.StoryboardOptions{
		Canvas: ed.Canvas(),
		Scenes: scenes,
		Author: flagString(fs, "author"),
	})
	if err != nil {
		return err
	}
	a.log.Info("storyboard written", slog.String("path", out), slog.Int("pages", pages))
	_, err = fmt.Fprintf(a.stdout, "Wrote %s (%d pages)\n", out, pages)
	return err
}

func cmdThumbs(ctx context.Context, a *app, fs *flag.FlagSet, args []string) error {
	id, err := oneArg(args)
	if err != nil {
		return err
	}
	ed, store, err := a.loadProject(ctx, fs, id)
	if err != nil {
		return err
	}
	defer store.Close()

	out := flagString(fs, "o")
	if out == "" {
		out = filepath.Join(store.Dir(), "exports", id+"-thumbs")
	}
	opt := export.ThumbnailOptions{Width: flagInt(fs, "w"), Height: flagInt(fs, "h"), Canvas: ed.Canvas()}
	paths, err := export.WriteThumbnails(ctx, ed.Project(), out, opt, store.Library())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "Wrote %d thumbnails to %s\n", len(paths), out)
	return err
}
