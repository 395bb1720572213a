/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()
	keyring.MockInit()
	dir := t.TempDir()
	t.Setenv("SW_CONFIG_DIR", dir)
	for _, name := range envKeys {
		t.Setenv(name, "")
	}
	t.Setenv(EnvMinIOAccessKey, "")
	t.Setenv(EnvMinIOSecretKey, "")
	return dir
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("unexpected token %q", tok)
	}
	if cfg.Editor.CanvasWidth != 1280 || cfg.Editor.CanvasHeight != 720 || !cfg.Editor.ConfirmDeletes {
		t.Fatalf("editor defaults: %+v", cfg.Editor)
	}
	if cfg.Server.Driver != "memory" || cfg.Logging.Level != "info" {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestSaveLoadRoundTripWithToken(t *testing.T) {
	dir := isolate(t)
	cfg := Defaults()
	cfg.Editor.SnapThreshold = 6
	cfg.Editor.ConfirmDeletes = false
	cfg.Storage.ProjectsDir = "/data/projects"
	cfg.Server.Driver = "postgres"
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "secret-token") {
		t.Fatal("token must not be written to the config file")
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q", tok)
	}
	if got.Editor.SnapThreshold != 6 || got.Editor.ConfirmDeletes || got.Storage.ProjectsDir != "/data/projects" || got.Server.Driver != "postgres" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if _, tok, _ = Load(); tok != "" {
		t.Fatalf("token survived ClearToken: %q", tok)
	}
}

func TestOmittedBooleanKeepsDefault(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("editor:\n  canvas_width: 1920\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Editor.CanvasWidth != 1920 || cfg.Editor.CanvasHeight != 720 || !cfg.Editor.ConfirmDeletes {
		t.Fatalf("merge: %+v", cfg.Editor)
	}
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load()
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if cfg.Editor.CanvasWidth != 1280 {
		t.Fatalf("defaults not returned: %+v", cfg.Editor)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvBackendURL, "https://example.test:8443")
	t.Setenv(EnvBackendTimeoutMs, "2500")
	t.Setenv(EnvBackendTLSInsec, "yes")
	t.Setenv(EnvServerDriver, "MONGO")
	t.Setenv(EnvSnapThreshold, "4.5")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/sw.log")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://example.test:8443" || cfg.Backend.TimeoutMs != 2500 || !cfg.Backend.TLSInsecure {
		t.Fatalf("backend: %+v", cfg.Backend)
	}
	if cfg.Server.Driver != "mongo" || cfg.Editor.SnapThreshold != 4.5 {
		t.Fatalf("server/editor: %+v %+v", cfg.Server, cfg.Editor)
	}
	if cfg.Logging.Level != "error" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/sw.log" {
		t.Fatalf("logging: %+v", cfg.Logging)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	isolate(t)
	if _, ok := EnvOverrideFor("backend.base_url"); ok {
		t.Fatal("no override expected")
	}
	t.Setenv(EnvBackendURL, "http://x")
	if name, ok := EnvOverrideFor("backend.base_url"); !ok || name != EnvBackendURL {
		t.Fatalf("got %q %v", name, ok)
	}
	if _, ok := EnvOverrideFor("no.such.key"); ok {
		t.Fatal("unknown key should not report an override")
	}
}

func TestTimeout(t *testing.T) {
	if got := (BackendConfig{TimeoutMs: 250}).Timeout(); got != 250*time.Millisecond {
		t.Fatalf("got %v", got)
	}
	if got := (BackendConfig{}).Timeout(); got != 15*time.Second {
		t.Fatalf("default: %v", got)
	}
}

func TestSaveTokenLeavesFileAlone(t *testing.T) {
	isolate(t)
	if err := SaveToken("tok-2"); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	path, _ := ConfigPath()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("config file written: %v", err)
	}
	if _, tok, err := Load(); err != nil || tok != "tok-2" {
		t.Fatalf("Load token = %q, %v", tok, err)
	}
}
