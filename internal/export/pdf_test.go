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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"scenewright/internal/domain"
)

// storyProject has two scenes; the first slide jumps to the second scene.
func storyProject() domain.Project {
	p := domain.NewProject("Storyboard été")
	second := domain.NewScene("Ending")
	p.Scenes = append(p.Scenes, second)

	txt := domain.NewElement(domain.TypeText)
	btn := domain.NewElement(domain.TypeButton)
	btn.Y = 400
	btn.Content = domain.ButtonContent{Label: "Finish", Action: domain.GoToScene(second.ID)}
	img := domain.NewElement(domain.TypeImage)
	img.X, img.Y = 700, 100
	hot := domain.NewElement(domain.TypeHotspot)
	hot.X, hot.Y = 1000, 500
	p.Scenes[0].Slides[0].Elements = []domain.Element{txt, btn, img, hot}
	return p
}

func TestWriteStoryboardPDF(t *testing.T) {
	p := storyProject()
	var buf bytes.Buffer
	pages, err := WriteStoryboardPDF(&buf, p, StoryboardOptions{Author: "tester"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if pages != 3 {
		t.Fatalf("pages = %d, want cover + 2 slides", pages)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:16])
	}
}

func TestWriteStoryboardPDFSceneFilter(t *testing.T) {
	p := storyProject()
	var buf bytes.Buffer
	pages, err := WriteStoryboardPDF(&buf, p, StoryboardOptions{Scenes: []string{p.Scenes[1].ID}})
	if err != nil || pages != 2 {
		t.Fatalf("pages = %d, err = %v", pages, err)
	}
	_, err = WriteStoryboardPDF(&buf, p, StoryboardOptions{Scenes: []string{"nope"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown scene: %v", err)
	}
	_, err = WriteStoryboardPDF(&buf, domain.Project{ID: "x", Title: "empty"}, StoryboardOptions{})
	if !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("empty project: %v", err)
	}
}

func TestExportStoryboardPDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "story.pdf")
	if _, err := ExportStoryboardPDF(storyProject(), out, StoryboardOptions{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	st, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf file empty")
	}
}

func TestDescribeAction(t *testing.T) {
	p := storyProject()
	sl := p.Scenes[1].Slides[0]
	cases := map[string]string{
		"nextSlide":                      "next slide",
		"prevSlide":                      "previous slide",
		domain.GoToScene(p.Scenes[1].ID): "scene Ending",
		domain.GoToScene("gone"):         "missing scene gone",
		domain.GoToSlide(sl.ID):          "slide " + sl.Title,
		"":                               "no action",
		"dance":                          "unknown action dance",
	}
	for in, want := range cases {
		if got := describeAction(p, in); got != want {
			t.Errorf("describeAction(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	if c, ok := parseHexColor("#0a0"); !ok || c.G != 0xaa || c.R != 0 {
		t.Fatalf("short form: %v %v", c, ok)
	}
	if c, ok := parseHexColor("ff8000"); !ok || c.R != 0xff || c.G != 0x80 || c.B != 0 || c.A != 255 {
		t.Fatalf("long form: %v %v", c, ok)
	}
	for _, bad := range []string{"", "#12", "#gggggg", "red"} {
		if _, ok := parseHexColor(bad); ok {
			t.Errorf("%q parsed", bad)
		}
	}
}
