/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestInitJSONCarriesStaticAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Options{Output: os.Stderr}) })

	WithOperation(WithComponent("test"), "probe").Debug("hello")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if rec["app"] != "scenewright" || rec["component"] != "test" || rec["op"] != "probe" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["msg"] != "hello" {
		t.Fatalf("msg: %v", rec["msg"])
	}
}

func TestContextProjectIsAdded(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Options{Output: os.Stderr}) })

	ctx := ContextWithProject(context.Background(), "p-42")
	L().InfoContext(ctx, "saved")
	L().Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], `"project_id":"p-42"`) {
		t.Fatalf("project_id missing: %s", lines[0])
	}
	if strings.Contains(lines[1], "project_id") {
		t.Fatalf("project_id leaked: %s", lines[1])
	}
}

func TestProjectFromContext(t *testing.T) {
	if _, ok := ProjectFromContext(context.Background()); ok {
		t.Fatal("empty context should not carry a project")
	}
	if _, ok := ProjectFromContext(ContextWithProject(context.Background(), "")); ok {
		t.Fatal("empty id should not count")
	}
	id, ok := ProjectFromContext(ContextWithProject(context.Background(), "x"))
	if !ok || id != "x" {
		t.Fatalf("got %q %v", id, ok)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Options{Output: os.Stderr}) })

	L().Info("quiet")
	L().Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "WRN loud") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sw.log")
	var buf bytes.Buffer
	Init(Options{Output: &buf, File: path})
	t.Cleanup(func() { Init(Options{Output: os.Stderr}) })

	L().Error("to both", slog.Int("n", 1))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to both"`) {
		t.Fatalf("file sink missing record: %s", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Fatalf("console missing record: %q", buf.String())
	}
}

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("SW_LOG_LEVEL", "warn")
	t.Setenv("SW_LOG_FORMAT", "json")
	t.Setenv("SW_LOG_SOURCE", "true")
	t.Setenv("SW_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("SW_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyTextHandlerGroupsAndValues(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &buf, mu: new(sync.Mutex)}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should not be enabled at warn level")
	}
	h = h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")

	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("s", "two words"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ERR boom", " k=v", "grp.n=42", "grp.pi=3.14", `grp.s="two words"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestPrettyTextHandlerSource(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelInfo, AddSource: true}, w: &buf, mu: new(sync.Mutex)}
	slog.New(h).Info("here")
	out := buf.String()
	if !strings.Contains(out, " src=") || !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("source missing in %q", out)
	}
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := multiHandler(
		slog.NewJSONHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	l := slog.New(h)
	l.Info("one")
	l.Error("two")
	if strings.Count(a.String(), "\n") != 2 || strings.Count(b.String(), "\n") != 1 {
		t.Fatalf("a=%q b=%q", a.String(), b.String())
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) || h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("Enabled should be the union of the handlers")
	}
}
