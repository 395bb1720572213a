/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"

	"scenewright/internal/backend"
	"scenewright/internal/version"
)

// isolate points config, projects and keyring at throwaway locations.
func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv("SW_CONFIG_DIR", filepath.Join(dir, "config"))
	t.Setenv("SW_PROJECTS_DIR", filepath.Join(dir, "projects"))
	t.Setenv("SW_LOG_LEVEL", "error")
	t.Setenv("SW_LOG_FILE", "")
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersionAndUsage(t *testing.T) {
	isolate(t)
	if code, out, _ := runCLI(t, "version"); code != 0 || strings.TrimSpace(out) != version.String() {
		t.Fatalf("version = %d %q", code, out)
	}
	if code, out, _ := runCLI(t); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("usage = %d %q", code, out)
	}
	if code, _, errOut := runCLI(t, "frobnicate"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown = %d %q", code, errOut)
	}
	if code, _, errOut := runCLI(t, "info"); code != 2 || !strings.Contains(errOut, "usage: scenewright info") {
		t.Fatalf("missing arg = %d %q", code, errOut)
	}
}

func TestProjectCommands(t *testing.T) {
	root := isolate(t)
	code, out, errOut := runCLI(t, "new", "Haunted House")
	if code != 0 {
		t.Fatalf("new: %d %s", code, errOut)
	}
	id := strings.TrimSpace(out)
	if id == "" {
		t.Fatal("new printed no id")
	}

	if _, out, _ := runCLI(t, "list"); !strings.Contains(out, "Haunted House") || !strings.Contains(out, id) {
		t.Fatalf("list = %q", out)
	}
	if _, out, _ := runCLI(t, "info", id); !strings.Contains(out, "Project: Haunted House") || !strings.Contains(out, "Scenes:  1") {
		t.Fatalf("info = %q", out)
	}
	if _, out, _ := runCLI(t, "graph", id); !strings.Contains(out, "digraph") {
		t.Fatalf("graph = %q", out)
	}
	if code, out, _ := runCLI(t, "search", "zzzzqx"); code != 0 || !strings.Contains(out, "no matches") {
		t.Fatalf("search = %d %q", code, out)
	}

	doc := filepath.Join(root, "projects", id+".json")
	if code, out, _ := runCLI(t, "validate", doc); code != 0 || !strings.HasPrefix(out, "OK: \"Haunted House\"") {
		t.Fatalf("validate = %d %q", code, out)
	}
	bad := filepath.Join(root, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"title":"no id","scenes":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, errOut := runCLI(t, "validate", bad); code != 1 || !strings.Contains(errOut, "Error:") {
		t.Fatalf("validate bad = %d %q", code, errOut)
	}

	pdf := filepath.Join(root, "out", "story.pdf")
	if code, out, errOut := runCLI(t, "pdf", "-o", pdf, id); code != 0 || !strings.Contains(out, "(2 pages)") {
		t.Fatalf("pdf = %d %q %q", code, out, errOut)
	}
	if _, err := os.Stat(pdf); err != nil {
		t.Fatal(err)
	}
	thumbs := filepath.Join(root, "out", "thumbs")
	if code, out, errOut := runCLI(t, "thumbs", "-o", thumbs, "-w", "64", "-h", "36", id); code != 0 || !strings.Contains(out, "Wrote 1 thumbnails") {
		t.Fatalf("thumbs = %d %q %q", code, out, errOut)
	}
	if files, _ := filepath.Glob(filepath.Join(thumbs, "*.png")); len(files) != 1 {
		t.Fatalf("thumbnails = %v", files)
	}

	if code, _, errOut := runCLI(t, "info", "does-not-exist"); code != 1 || !strings.Contains(errOut, "Error:") {
		t.Fatalf("missing project = %d %q", code, errOut)
	}
}

func TestRemoteCommands(t *testing.T) {
	root := isolate(t)
	ts := httptest.NewServer(backend.NewServer(backend.NewMemoryStore(), nil, "cli-secret").Handler())
	defer ts.Close()
	t.Setenv("SW_BACKEND_URL", ts.URL)

	_, out, _ := runCLI(t, "new", "Shared")
	id := strings.TrimSpace(out)

	if code, _, errOut := runCLI(t, "push", id); code != 1 || !strings.Contains(errOut, "not signed in") {
		t.Fatalf("push before login = %d %q", code, errOut)
	}
	if code, out, errOut := runCLI(t, "login", "carol"); code != 0 || !strings.Contains(out, "Signed in as carol") {
		t.Fatalf("login = %d %q %q", code, out, errOut)
	}
	if code, _, errOut := runCLI(t, "push", id); code != 0 {
		t.Fatalf("push = %d %q", code, errOut)
	}

	other := filepath.Join(root, "elsewhere")
	if code, out, errOut := runCLI(t, "pull", "-dir", other, id); code != 0 || !strings.Contains(out, `Pulled "Shared"`) {
		t.Fatalf("pull = %d %q %q", code, out, errOut)
	}
	if _, err := os.Stat(filepath.Join(other, id+".json")); err != nil {
		t.Fatalf("pulled document missing: %v", err)
	}
	if code, _, errOut := runCLI(t, "pull", "-dir", other, "missing-id"); code != 1 || !strings.Contains(errOut, "Error:") {
		t.Fatalf("pull missing = %d %q", code, errOut)
	}
}
