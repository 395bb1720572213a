/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package navgraph

import (
	"strings"
	"testing"

	"scenewright/internal/domain"
	"scenewright/internal/edit"
)

// twoScenes returns a project with S1 (two slides) and S2, and a button on S1's first slide.
func twoScenes(action string) (domain.Project, string) {
	p := domain.NewProject("Nav")
	p, _ = edit.AddScene(p)
	s1 := p.Scenes[0]
	s1, _, _ = edit.AddSlide(&s1)
	sl, btn := edit.AddElement(s1.Slides[0], domain.TypeButton)
	sl = edit.UpdateElement(sl, btn.ID, domain.ElementPatch{Action: domain.Ptr(action), Label: domain.Ptr("Go")})
	s1, _ = edit.ReplaceSlide(s1, sl)
	p, _ = edit.ReplaceScene(p, s1)
	return p, btn.ID
}

func TestExtractSingleConnection(t *testing.T) {
	p, _ := twoScenes("")
	p, btn := twoScenesWithTarget(p)
	conns := Extract(p.Scenes)
	if len(conns) != 1 {
		t.Fatalf("want 1 connection, got %d", len(conns))
	}
	c := conns[0]
	if c.FromSceneID != p.Scenes[0].ID || c.ToSceneID != p.Scenes[1].ID || c.FromSlideID != p.Scenes[0].Slides[0].ID || c.Label != "Go" || c.ElementID != btn {
		t.Fatalf("unexpected connection %+v", c)
	}
}

func twoScenesWithTarget(p domain.Project) (domain.Project, string) {
	sl := p.Scenes[0].Slides[0]
	id := sl.Elements[0].ID
	sl = edit.UpdateElement(sl, id, domain.ElementPatch{Action: domain.Ptr(domain.GoToScene(p.Scenes[1].ID))})
	s1, _ := edit.ReplaceSlide(p.Scenes[0], sl)
	p, _ = edit.ReplaceScene(p, s1)
	return p, id
}

func TestExtractDropsDanglingTarget(t *testing.T) {
	p, _ := twoScenes(domain.GoToScene("does-not-exist"))
	if conns := Extract(p.Scenes); len(conns) != 0 {
		t.Fatalf("want 0 connections, got %+v", conns)
	}
	if conns := Extract(nil); conns == nil || len(conns) != 0 {
		t.Fatalf("empty project should yield an empty, non-nil list")
	}
}

func TestExtractIgnoresOtherActions(t *testing.T) {
	for _, a := range []string{"nextSlide", "prevSlide", "goToSlide:x", "goToScene:"} {
		p, _ := twoScenes(a)
		if conns := Extract(p.Scenes); len(conns) != 0 {
			t.Errorf("%q produced %d connections", a, len(conns))
		}
	}
}

func TestMemoTracksSliceIdentity(t *testing.T) {
	p, _ := twoScenes("")
	var m Memo
	first := m.Get(p.Scenes)
	if len(first) != 0 {
		t.Fatalf("unexpected connections")
	}
	p2, _ := twoScenesWithTarget(p)
	if got := m.Get(p2.Scenes); len(got) != 1 {
		t.Fatalf("memo did not recompute after scenes changed")
	}
	if got := m.Get(p.Scenes); len(got) != 0 {
		t.Fatalf("memo returned stale result for old slice")
	}
}

func TestNavigate(t *testing.T) {
	p, _ := twoScenes("")
	s1, s2 := p.Scenes[0], p.Scenes[1]
	start := Position{SceneID: s1.ID, SlideID: s1.Slides[0].ID}

	cases := []struct {
		name   string
		from   Position
		action string
		want   Position
		ok     bool
	}{
		{"next", start, "nextSlide", Position{s1.ID, s1.Slides[1].ID}, true},
		{"prev at start", start, "prevSlide", start, false},
		{"next at end", Position{s1.ID, s1.Slides[1].ID}, "nextSlide", Position{s1.ID, s1.Slides[1].ID}, false},
		{"scene", start, domain.GoToScene(s2.ID), Position{s2.ID, s2.Slides[0].ID}, true},
		{"slide elsewhere", start, domain.GoToSlide(s2.Slides[0].ID), Position{s2.ID, s2.Slides[0].ID}, true},
		{"slide here", start, domain.GoToSlide(s1.Slides[1].ID), Position{s1.ID, s1.Slides[1].ID}, true},
		{"missing scene", start, domain.GoToScene("x"), start, false},
		{"garbage", start, "dance", start, false},
	}
	for _, c := range cases {
		got, ok := Navigate(p, c.from, c.action)
		if got != c.want || ok != c.ok {
			t.Errorf("%s: got %+v %v, want %+v %v", c.name, got, ok, c.want, c.ok)
		}
	}
}

func TestDOT(t *testing.T) {
	p, _ := twoScenes("")
	p, _ = twoScenesWithTarget(p)
	p.Title = `Say "hi"`
	out := DOT(p, Extract(p.Scenes))
	if !strings.HasPrefix(out, "digraph Scenes {") || !strings.HasSuffix(out, "}\n") {
		t.Fatalf("unexpected framing:\n%s", out)
	}
	edge := `"` + p.Scenes[0].ID + `" -> "` + p.Scenes[1].ID + `" [label="Go"]`
	if !strings.Contains(out, edge) {
		t.Fatalf("edge missing:\n%s", out)
	}
	if !strings.Contains(out, `Say \"hi\"`) {
		t.Fatalf("title not escaped:\n%s", out)
	}
}
