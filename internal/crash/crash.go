/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and an autosave of the open project.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "scenewright/internal/log"
	"scenewright/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Snapshotter serializes the live project. *editor.Editor implements it.
type Snapshotter interface {
	Snapshot() (id string, payload []byte, err error)
}

// Autosaver writes a crash snapshot and returns its path. *storage.FileStore implements it.
type Autosaver interface {
	Autosave(id string, payload []byte) (string, error)
}

// Target says where reports go and what to autosave. A nil or zero Target is allowed:
// reports then land in the OS temp dir and no autosave is attempted. Fields may be filled
// in after the deferred call is registered.
type Target struct {
	ReportDir string
	Source    Snapshotter
	Sink      Autosaver
}

// Recover captures a panic, logs it with the stack, writes a crash report, autosaves the
// project and exits with status 2.
//
// Usage: defer crash.Recover(&target)
func Recover(t *Target) {
	r := recover()
	if r == nil {
		return
	}
	if t == nil {
		t = &Target{}
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	projectID := ""
	if t.Source != nil && t.Sink != nil {
		if path, id, err := autosave(t.Source, t.Sink); err != nil {
			l.Error("autosave crash snapshot failed", slog.Any("err", err))
		} else {
			projectID = id
			l.Info("autosave crash snapshot written", slog.String("path", path))
		}
	}
	reportPath, err := writeReport(t.ReportDir, projectID, r, stack)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func autosave(src Snapshotter, sink Autosaver) (path, id string, err error) {
	defer func() {
		// The editor itself may be what panicked; a second panic must not hide the first.
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	id, payload, err := src.Snapshot()
	if err != nil {
		return "", id, fmt.Errorf("snapshot: %w", err)
	}
	path, err = sink.Autosave(id, payload)
	return path, id, err
}

func writeReport(dir, projectID string, panicVal any, stack []byte) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Scenewright Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if projectID != "" {
		_, _ = fmt.Fprintf(&buf, "Project: %s\n", projectID)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
