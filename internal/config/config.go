/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Backend       BackendConfig `yaml:"backend"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

type EditorConfig struct {
	CanvasWidth     int     `yaml:"canvas_width"`
	CanvasHeight    int     `yaml:"canvas_height"`
	ConfirmDeletes  bool    `yaml:"confirm_deletes"`
	SnapThreshold   float64 `yaml:"snap_threshold"` // 0 disables smart guides
	MirrorClipboard bool    `yaml:"mirror_clipboard"`
}

type StorageConfig struct {
	ProjectsDir string `yaml:"projects_dir"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type ServerConfig struct {
	Addr        string      `yaml:"addr"`
	Driver      string      `yaml:"driver"` // memory | postgres | mongo
	DatabaseURL string      `yaml:"database_url"`
	MongoDB     string      `yaml:"mongo_database"`
	AuthSecret  string      `yaml:"auth_secret"`
	MinIO       MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor:        EditorConfig{CanvasWidth: 1280, CanvasHeight: 720, ConfirmDeletes: true},
		Storage:       StorageConfig{ProjectsDir: defaultProjectsDir()},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Server:        ServerConfig{Addr: ":8080", Driver: "memory", MongoDB: "scenewright", MinIO: MinIOConfig{Bucket: "scenewright-assets"}},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvProjectsDir      = "SW_PROJECTS_DIR"
	EnvBackendURL       = "SW_BACKEND_URL"
	EnvBackendTimeoutMs = "SW_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "SW_TLS_INSECURE"
	EnvServerAddr       = "SW_SERVER_ADDR"
	EnvServerDriver     = "SW_SERVER_DRIVER"
	EnvDatabaseURL      = "SW_DATABASE_URL"
	EnvMongoDB          = "SW_MONGO_DATABASE"
	EnvAuthSecret       = "SW_AUTH_SECRET"
	EnvMinIOEndpoint    = "SW_MINIO_ENDPOINT"
	EnvMinIOAccessKey   = "SW_MINIO_ACCESS_KEY"
	EnvMinIOSecretKey   = "SW_MINIO_SECRET_KEY"
	EnvMinIOBucket      = "SW_MINIO_BUCKET"
	EnvSnapThreshold    = "SW_SNAP_THRESHOLD"
	EnvLogLevel         = "SW_LOG_LEVEL"
	EnvLogFormat        = "SW_LOG_FORMAT"
	EnvLogSource        = "SW_LOG_SOURCE"
	EnvLogFile          = "SW_LOG_FILE"
)

// envKeys maps dotted config keys to the env var overriding them.
var envKeys = map[string]string{
	"storage.projects_dir":  EnvProjectsDir,
	"backend.base_url":      EnvBackendURL,
	"backend.timeout_ms":    EnvBackendTimeoutMs,
	"backend.tls_insecure":  EnvBackendTLSInsec,
	"server.addr":           EnvServerAddr,
	"server.driver":         EnvServerDriver,
	"server.database_url":   EnvDatabaseURL,
	"server.mongo_database": EnvMongoDB,
	"server.auth_secret":    EnvAuthSecret,
	"server.minio.endpoint": EnvMinIOEndpoint,
	"server.minio.bucket":   EnvMinIOBucket,
	"editor.snap_threshold": EnvSnapThreshold,
	"logging.level":         EnvLogLevel,
	"logging.format":        EnvLogFormat,
	"logging.source":        EnvLogSource,
	"logging.file":          EnvLogFile,
}

// Service/keys for OS keyring.
const (
	keyringService = "Scenewright"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// ConfigPath returns the per-user config file path.
// SW_CONFIG_DIR, when set, replaces the platform directory.
func ConfigPath() (string, error) {
	if d := strings.TrimSpace(os.Getenv("SW_CONFIG_DIR")); d != "" {
		return filepath.Join(d, "config.yaml"), nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Scenewright")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Scenewright")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "scenewright")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

func defaultProjectsDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "Scenewright")
	}
	return "projects"
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// The backend token comes from the keyring and is returned separately.
// A malformed file is reported but the defaults plus env overrides are still returned.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = err
		} else {
			mergeInto(&cfg, &fileCfg, data)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, fileErr
}

// Save writes the user config YAML and persists the token into the OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// SaveToken stores the backend token in the OS keyring without rewriting the config file.
func SaveToken(token string) error {
	return tokenStore.Set(keyringService, keyringToken, token)
}

// ClearToken removes the stored backend token.
func ClearToken() error {
	err := tokenStore.Delete(keyringService, keyringToken)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// mergeInto copies non-zero file values over dst. Booleans are taken from the file only when
// the key is present in raw, so an omitted confirm_deletes keeps its default of true.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	present := presentKeys(raw)
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}

	if src.Editor.CanvasWidth > 0 {
		dst.Editor.CanvasWidth = src.Editor.CanvasWidth
	}
	if src.Editor.CanvasHeight > 0 {
		dst.Editor.CanvasHeight = src.Editor.CanvasHeight
	}
	if src.Editor.SnapThreshold > 0 {
		dst.Editor.SnapThreshold = src.Editor.SnapThreshold
	}
	if present["editor.confirm_deletes"] {
		dst.Editor.ConfirmDeletes = src.Editor.ConfirmDeletes
	}
	dst.Editor.MirrorClipboard = src.Editor.MirrorClipboard

	if s := strings.TrimSpace(src.Storage.ProjectsDir); s != "" {
		dst.Storage.ProjectsDir = s
	}

	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure

	mergeString(&dst.Server.Addr, src.Server.Addr)
	mergeString(&dst.Server.Driver, strings.ToLower(src.Server.Driver))
	mergeString(&dst.Server.DatabaseURL, src.Server.DatabaseURL)
	mergeString(&dst.Server.MongoDB, src.Server.MongoDB)
	mergeString(&dst.Server.AuthSecret, src.Server.AuthSecret)
	mergeString(&dst.Server.MinIO.Endpoint, src.Server.MinIO.Endpoint)
	mergeString(&dst.Server.MinIO.AccessKey, src.Server.MinIO.AccessKey)
	mergeString(&dst.Server.MinIO.SecretKey, src.Server.MinIO.SecretKey)
	mergeString(&dst.Server.MinIO.Bucket, src.Server.MinIO.Bucket)
	dst.Server.MinIO.UseSSL = src.Server.MinIO.UseSSL

	mergeString(&dst.Logging.Level, strings.ToLower(src.Logging.Level))
	mergeString(&dst.Logging.Format, strings.ToLower(src.Logging.Format))
	dst.Logging.Source = src.Logging.Source
	mergeString(&dst.Logging.File, src.Logging.File)
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// presentKeys lists the dotted two-level keys that appear in a YAML document.
func presentKeys(raw []byte) map[string]bool {
	out := map[string]bool{}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out
	}
	for section, v := range doc {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k := range fields {
			out[section+"."+k] = true
		}
	}
	return out
}

func applyEnvOverrides(cfg *AppConfig) {
	envString(EnvProjectsDir, &cfg.Storage.ProjectsDir)
	envString(EnvBackendURL, &cfg.Backend.BaseURL)
	if v := strings.TrimSpace(os.Getenv(EnvBackendTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendTLSInsec)); v != "" {
		cfg.Backend.TLSInsecure = truthy(v)
	}
	envString(EnvServerAddr, &cfg.Server.Addr)
	if v := strings.TrimSpace(os.Getenv(EnvServerDriver)); v != "" {
		cfg.Server.Driver = strings.ToLower(v)
	}
	envString(EnvDatabaseURL, &cfg.Server.DatabaseURL)
	envString(EnvMongoDB, &cfg.Server.MongoDB)
	envString(EnvAuthSecret, &cfg.Server.AuthSecret)
	envString(EnvMinIOEndpoint, &cfg.Server.MinIO.Endpoint)
	envString(EnvMinIOAccessKey, &cfg.Server.MinIO.AccessKey)
	envString(EnvMinIOSecretKey, &cfg.Server.MinIO.SecretKey)
	envString(EnvMinIOBucket, &cfg.Server.MinIO.Bucket)
	if v := strings.TrimSpace(os.Getenv(EnvSnapThreshold)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Editor.SnapThreshold = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	envString(EnvLogFile, &cfg.Logging.File)
}

func envString(name string, dst *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Timeout returns the backend timeout, falling back to the default for non-positive values.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutMs <= 0 {
		return time.Duration(Defaults().Backend.TimeoutMs) * time.Millisecond
	}
	return time.Duration(b.TimeoutMs) * time.Millisecond
}
