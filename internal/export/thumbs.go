/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/storage"
)

// rendererRevision is mixed into cache hashes; bump it when wireframe drawing changes.
const rendererRevision = "wire-1"

// PreviewCache stores rendered thumbnails keyed by slide and content hash. *storage.Library implements it.
type PreviewCache interface {
	GetPreview(ctx context.Context, key storage.PreviewKey, hash string) ([]byte, bool, error)
	PutPreview(ctx context.Context, key storage.PreviewKey, hash string, blob []byte) error
}

// Thumbnail is one rendered slide.
type Thumbnail struct {
	SceneID string
	SlideID string
	Scene   int // 0-based scene position
	Slide   int // 0-based slide position within the scene
	PNG     []byte
	Cached  bool
}

// RenderProjectThumbnails renders every slide of p concurrently. Results keep project order.
// When cache is non-nil, slides whose content hash is cached are not redrawn and fresh renders are stored.
// Cache failures are logged and do not fail the render.
func RenderProjectThumbnails(ctx context.Context, p domain.Project, opt ThumbnailOptions, cache PreviewCache) ([]Thumbnail, error) {
	opt = opt.normalized()
	l := applog.WithOperation(applog.WithComponent("export"), "thumbnails")
	ctx = applog.ContextWithProject(ctx, p.ID)

	var out []Thumbnail
	for i, sc := range p.Scenes {
		for j, sl := range sc.Slides {
			out = append(out, Thumbnail{SceneID: sc.ID, SlideID: sl.ID, Scene: i, Slide: j})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for k := range out {
		t := &out[k]
		sl := p.Scenes[t.Scene].Slides[t.Slide]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := slideHash(sl, opt)
			if err != nil {
				return err
			}
			key := storage.PreviewKey{ProjectID: p.ID, SlideID: sl.ID, W: opt.Width, H: opt.Height}
			if cache != nil {
				blob, ok, err := cache.GetPreview(gctx, key, hash)
				if err != nil {
					l.WarnContext(gctx, "preview lookup failed", slog.String("slide_id", sl.ID), slog.Any("err", err))
				} else if ok {
					t.PNG, t.Cached = blob, true
					return nil
				}
			}
			blob, err := EncodeThumbnail(sl, opt)
			if err != nil {
				return fmt.Errorf("slide %s: %w", sl.ID, err)
			}
			t.PNG = blob
			if cache != nil {
				if err := cache.PutPreview(gctx, key, hash, blob); err != nil {
					l.WarnContext(gctx, "preview store failed", slog.String("slide_id", sl.ID), slog.Any("err", err))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cached := 0
	for _, t := range out {
		if t.Cached {
			cached++
		}
	}
	l.DebugContext(ctx, "thumbnails rendered", slog.Int("slides", len(out)), slog.Int("cached", cached))
	return out, nil
}

// WriteThumbnails renders p and writes one PNG per slide to dir as <scene>-<slide>-<slideID>.png.
func WriteThumbnails(ctx context.Context, p domain.Project, dir string, opt ThumbnailOptions, cache PreviewCache) ([]string, error) {
	thumbs, err := RenderProjectThumbnails(ctx, p, opt, cache)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	paths := make([]string, 0, len(thumbs))
	for _, t := range thumbs {
		name := filepath.Join(dir, ThumbnailName(t))
		if err := os.WriteFile(name, t.PNG, 0o644); err != nil {
			return paths, fmt.Errorf("write png: %w", err)
		}
		paths = append(paths, name)
	}
	return paths, nil
}

// ThumbnailName is the file name WriteThumbnails uses for t. The slide id is reduced to
// [A-Za-z0-9_-], so the name never leaves the output directory.
func ThumbnailName(t Thumbnail) string {
	return fmt.Sprintf("%02d-%02d-%s.png", t.Scene+1, t.Slide+1, safeName(t.SlideID))
}

const maxNameLen = 64

func safeName(id string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
	if len(clean) > maxNameLen {
		clean = clean[:maxNameLen]
	}
	if clean == "" {
		return "slide"
	}
	return clean
}

func slideHash(sl domain.Slide, opt ThumbnailOptions) (string, error) {
	b, err := json.Marshal(sl)
	if err != nil {
		return "", fmt.Errorf("hash slide %s: %w", sl.ID, err)
	}
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s|%dx%d|%dx%d|", rendererRevision, opt.Width, opt.Height, opt.Canvas.Width, opt.Canvas.Height)
	_, _ = h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}
