/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenewright/internal/domain"
	"scenewright/internal/editor"
	"scenewright/internal/storage"
)

// silenceStderr redirects os.Stderr for the duration of the test.
func silenceStderr(t *testing.T) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w
	done := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, r)
		close(done)
	}()
	t.Cleanup(func() {
		_ = w.Close()
		<-done
		os.Stderr = old
	})
}

func interceptExit(t *testing.T) *int {
	t.Helper()
	code := -1
	old := exitFn
	exitFn = func(c int) { code = c }
	t.Cleanup(func() { exitFn = old })
	return &code
}

func findReport(t *testing.T, dir string) []byte {
	t.Helper()
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "crash-") && strings.HasSuffix(f.Name(), ".log") {
			b, err := os.ReadFile(filepath.Join(dir, f.Name()))
			if err != nil {
				t.Fatalf("read report: %v", err)
			}
			return b
		}
	}
	t.Fatalf("expected crash report file under %s", dir)
	return nil
}

func TestRecoverAutosavesEditorProject(t *testing.T) {
	silenceStderr(t)
	code := interceptExit(t)

	ctx := context.Background()
	root := t.TempDir()
	fs, err := storage.OpenFileStore(ctx, filepath.Join(root, "projects"))
	if err != nil {
		t.Fatal(err)
	}
	defer fs.Close()

	ed := editor.New(domain.NewProject("Unsaved work"), editor.Options{Repository: fs})
	if _, err := ed.AddElement(domain.TypeText); err != nil {
		t.Fatal(err)
	}
	reports := filepath.Join(root, "reports")

	func() {
		defer Recover(&Target{ReportDir: reports, Source: ed, Sink: fs})
		panic("boom")
	}()

	if *code != 2 {
		t.Fatalf("expected exit code 2, got %d", *code)
	}
	report := findReport(t, reports)
	if !bytes.Contains(report, []byte("Panic: boom")) || !bytes.Contains(report, []byte("Project: "+ed.Project().ID)) {
		t.Fatalf("report = %s", report)
	}

	saves, _ := filepath.Glob(filepath.Join(fs.Dir(), storage.AutosaveDir, ed.Project().ID+".*.json"))
	if len(saves) != 1 {
		t.Fatalf("autosaves = %v", saves)
	}
	data, err := os.ReadFile(saves[0])
	if err != nil {
		t.Fatal(err)
	}
	p, err := storage.DecodeProject(data)
	if err != nil {
		t.Fatalf("autosave does not decode: %v", err)
	}
	if p.Title != "Unsaved work" || len(p.Scenes[0].Slides[0].Elements) != 1 {
		t.Fatalf("autosaved project = %+v", p)
	}
}

type failingSource struct{}

func (failingSource) Snapshot() (string, []byte, error) { return "", nil, errors.New("no project") }

type panickingSource struct{}

func (panickingSource) Snapshot() (string, []byte, error) { panic("editor broken") }

type nopSink struct{ called bool }

func (s *nopSink) Autosave(string, []byte) (string, error) {
	s.called = true
	return "", nil
}

func TestRecoverStillReportsWhenSnapshotFails(t *testing.T) {
	silenceStderr(t)
	for name, src := range map[string]Snapshotter{"error": failingSource{}, "panic": panickingSource{}} {
		t.Run(name, func(t *testing.T) {
			code := interceptExit(t)
			dir := t.TempDir()
			sink := &nopSink{}
			func() {
				defer Recover(&Target{ReportDir: dir, Source: src, Sink: sink})
				panic("first")
			}()
			if *code != 2 {
				t.Fatalf("exit code %d", *code)
			}
			if sink.called {
				t.Fatal("sink called without a snapshot")
			}
			if report := findReport(t, dir); !bytes.Contains(report, []byte("Panic: first")) {
				t.Fatalf("report = %s", report)
			}
		})
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	code := interceptExit(t)
	func() {
		defer Recover(nil)
	}()
	if *code != -1 {
		t.Fatalf("exit called with %d", *code)
	}
}
