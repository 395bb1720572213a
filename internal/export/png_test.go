/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/font/basicfont"

	"scenewright/internal/domain"
	"scenewright/internal/storage"
)

func TestRenderThumbnail(t *testing.T) {
	sl := domain.NewSlide(1)
	sl.Background = "#000000"
	img := domain.NewElement(domain.TypeImage)
	img.X, img.Y, img.Width, img.Height = 0, 0, 400, 400
	sl.Elements = []domain.Element{img}

	out := RenderThumbnail(sl, ThumbnailOptions{})
	if b := out.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("bounds = %v", b)
	}
	if got := out.RGBAAt(0, 0); got != colorMuted {
		t.Fatalf("image border = %v", got)
	}
	if got := out.RGBAAt(50, 50); got != colorImage {
		t.Fatalf("image fill = %v", got)
	}
	if got := out.RGBAAt(300, 170); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("background = %v", got)
	}
}

func TestRenderThumbnailLetterbox(t *testing.T) {
	sl := domain.NewSlide(1)
	sl.Background = "#ff0000"
	out := RenderThumbnail(sl, ThumbnailOptions{Width: 320, Height: 180, Canvas: domain.CanvasSize{Width: 100, Height: 100}})
	if got := out.RGBAAt(10, 10); got != colorWhite {
		t.Fatalf("letterbox = %v", got)
	}
	if got := out.RGBAAt(160, 90); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("slide = %v", got)
	}
}

func TestEncodeThumbnailDecodes(t *testing.T) {
	b, err := EncodeThumbnail(storyProject().Scenes[0].Slides[0], ThumbnailOptions{Width: 64, Height: 36})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	if err != nil || cfg.Width != 64 || cfg.Height != 36 {
		t.Fatalf("config = %+v, %v", cfg, err)
	}
}

type countingCache struct {
	mu   sync.Mutex
	m    map[storage.PreviewKey]string
	blob map[storage.PreviewKey][]byte
	puts int
}

func newCountingCache() *countingCache {
	return &countingCache{m: map[storage.PreviewKey]string{}, blob: map[storage.PreviewKey][]byte{}}
}

func (c *countingCache) GetPreview(_ context.Context, key storage.PreviewKey, hash string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m[key] != hash {
		return nil, false, nil
	}
	return c.blob[key], true, nil
}

func (c *countingCache) PutPreview(_ context.Context, key storage.PreviewKey, hash string, blob []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key], c.blob[key] = hash, blob
	c.puts++
	return nil
}

func TestRenderProjectThumbnailsCaches(t *testing.T) {
	ctx := context.Background()
	p := storyProject()
	cache := newCountingCache()

	first, err := RenderProjectThumbnails(ctx, p, ThumbnailOptions{}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || first[0].SceneID != p.Scenes[0].ID || first[1].SceneID != p.Scenes[1].ID {
		t.Fatalf("order = %+v", first)
	}
	if first[0].Cached || first[1].Cached || cache.puts != 2 {
		t.Fatalf("first pass cached=%v/%v puts=%d", first[0].Cached, first[1].Cached, cache.puts)
	}

	p.Scenes[1].Slides[0].Background = "#123456"
	second, err := RenderProjectThumbnails(ctx, p, ThumbnailOptions{}, cache)
	if err != nil {
		t.Fatal(err)
	}
	if !second[0].Cached || second[1].Cached {
		t.Fatalf("second pass cached=%v/%v", second[0].Cached, second[1].Cached)
	}
	if !bytes.Equal(second[0].PNG, first[0].PNG) || bytes.Equal(second[1].PNG, first[1].PNG) {
		t.Fatal("cached bytes mismatch")
	}
}

func TestRenderProjectThumbnailsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RenderProjectThumbnails(ctx, storyProject(), ThumbnailOptions{}, nil); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWriteThumbnailsWithLibraryCache(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.OpenFileStore(ctx, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()

	p := storyProject()
	dir := filepath.Join(t.TempDir(), "thumbs")
	paths, err := WriteThumbnails(ctx, p, dir, ThumbnailOptions{Width: 160, Height: 90}, fs.Library())
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "01-01-"+p.Scenes[0].Slides[0].ID+".png" {
		t.Fatalf("paths = %v", paths)
	}
	for _, path := range paths {
		if st, err := os.Stat(path); err != nil || st.Size() == 0 {
			t.Fatalf("stat %s: %v", path, err)
		}
	}

	again, err := RenderProjectThumbnails(ctx, p, ThumbnailOptions{Width: 160, Height: 90}, fs.Library())
	if err != nil {
		t.Fatal(err)
	}
	for _, th := range again {
		if !th.Cached {
			t.Fatalf("slide %s not served from library cache", th.SlideID)
		}
	}
}

func TestWriteThumbnailsStaysInDir(t *testing.T) {
	p := storyProject()
	p.Scenes[0].Slides[0].ID = "x/../../escaped"
	root := t.TempDir()
	dir := filepath.Join(root, "thumbs")
	paths, err := WriteThumbnails(context.Background(), p, dir, ThumbnailOptions{Width: 64, Height: 36}, nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, path := range paths {
		if filepath.Dir(path) != dir {
			t.Fatalf("%s written outside %s", path, dir)
		}
	}
	if got := filepath.Base(paths[0]); got != "01-01-x_______escaped.png" {
		t.Fatalf("name = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "escaped.png")); !os.IsNotExist(err) {
		t.Fatalf("escaped file exists: %v", err)
	}
}

func TestThumbnailName(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"abc-DEF_9", "02-03-abc-DEF_9.png"},
		{"..", "02-03-__.png"},
		{"", "02-03-slide.png"},
		{"a\\b:c", "02-03-a_b_c.png"},
		{strings.Repeat("z", 100), "02-03-" + strings.Repeat("z", 64) + ".png"},
	}
	for _, c := range cases {
		if got := ThumbnailName(Thumbnail{Scene: 1, Slide: 2, SlideID: c.id}); got != c.want {
			t.Errorf("%q: got %q want %q", c.id, got, c.want)
		}
	}
}

func TestWrapLines(t *testing.T) {
	face := basicfont.Face7x13 // 7px advance
	cases := []struct {
		text  string
		width int
		max   int
		want  []string
	}{
		{"hello world", 100, 3, []string{"hello world"}},
		{"hello world", 50, 3, []string{"hello", "world"}},
		{"one two three four", 35, 2, []string{"one", "two..."}},
		{"first\nsecond", 200, 5, []string{"first", "second"}},
		{"antidisestablishment", 35, 2, []string{"antidisestablishment"}},
		{"", 100, 2, nil},
	}
	for _, c := range cases {
		got := wrapLines(face, c.text, c.width, c.max)
		if len(got) != len(c.want) {
			t.Errorf("wrapLines(%q, %d) = %q, want %q", c.text, c.width, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("wrapLines(%q, %d) = %q, want %q", c.text, c.width, got, c.want)
				break
			}
		}
	}
}
