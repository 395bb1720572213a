/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"scenewright/internal/domain"
	applog "scenewright/internal/log"
)

const (
	DocumentExt    = ".json"
	BackupsDirName = "backups"
	AutosaveDir    = "autosave"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// FileStore keeps one JSON document per project in a directory:
//
//	<dir>/<id>.json                         current document
//	<dir>/backups/<id>.json.<stamp>.bak     previous versions
//	<dir>/autosave/<id>.<stamp>.json        crash autosaves
//	<dir>/.sw/library.sqlite                derived index (summaries, search, thumbnails)
//
// Writes are transactional: temp file, fsync, rename.
type FileStore struct {
	dir string
	lib *Library
	log *slog.Logger
	now func() time.Time
}

// OpenFileStore prepares dir and opens its library index. A corrupt index is backed up and rebuilt from the
// documents; an empty index next to existing documents is populated.
func OpenFileStore(ctx context.Context, dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("projects directory is required")
	}
	for _, d := range []string{dir, filepath.Join(dir, BackupsDirName)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	s := &FileStore{dir: dir, log: applog.WithComponent("storage").With(slog.String("dir", dir)), now: time.Now}
	rebuilt, err := s.openLibrary(ctx)
	if err != nil {
		return nil, err
	}
	if !rebuilt {
		n, err := s.lib.Count(ctx)
		if err == nil && n == 0 {
			if err := s.Reindex(ctx); err != nil {
				s.log.Warn("initial reindex failed", slog.Any("err", err))
			}
		}
	}
	return s, nil
}

// openLibrary opens the index, replacing it when it is unreadable or fails its integrity check.
func (s *FileStore) openLibrary(ctx context.Context) (bool, error) {
	path := LibraryPath(s.dir)
	lib, err := OpenLibrary(ctx, s.dir)
	if err == nil && lib.Healthy(ctx) {
		s.lib = lib
		return false, nil
	}
	if lib != nil {
		_ = lib.Close()
	}
	s.log.Warn("library index unusable; rebuilding", slog.Any("err", err))
	backupIndexFile(path)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		_ = os.Remove(path + suffix)
	}
	lib, err = OpenLibrary(ctx, s.dir)
	if err != nil {
		return false, fmt.Errorf("reopen library: %w", err)
	}
	s.lib = lib
	return true, s.Reindex(ctx)
}

// Close releases the library index.
func (s *FileStore) Close() error { return s.lib.Close() }

// Dir returns the projects directory.
func (s *FileStore) Dir() string { return s.dir }

// Library returns the index backing List and search.
func (s *FileStore) Library() *Library { return s.lib }

func (s *FileStore) docPath(id string) string { return filepath.Join(s.dir, id+DocumentExt) }

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: invalid project id %q", domain.ErrFormat, id)
	}
	return nil
}

// Save validates payload, backs up the previous document and replaces it atomically.
// The library index is updated afterwards; an index failure is logged, not returned.
func (s *FileStore) Save(ctx context.Context, id string, payload []byte) error {
	if err := checkID(id); err != nil {
		return err
	}
	p, err := DecodeProject(payload)
	if err != nil {
		return err
	}
	if p.ID != id {
		return fmt.Errorf("%w: payload id %q does not match %q", domain.ErrFormat, p.ID, id)
	}
	path := s.docPath(id)
	if _, statErr := os.Stat(path); statErr == nil {
		stamp := s.now().Format("20060102-150405")
		bpath := filepath.Join(s.dir, BackupsDirName, fmt.Sprintf("%s%s.%s.bak", id, DocumentExt, stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current document: %w", cerr)
		}
	}
	if err := atomicWrite(path, payload); err != nil {
		return err
	}
	if err := s.lib.Upsert(ctx, p, s.now()); err != nil {
		s.log.Warn("index update failed", slog.String("id", id), slog.Any("err", err))
	}
	s.log.Debug("project saved", slog.String("id", id), slog.Int("bytes", len(payload)))
	return nil
}

// Load returns the stored document. A missing or invalid document falls back to the newest valid backup.
func (s *FileStore) Load(ctx context.Context, id string) ([]byte, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.docPath(id))
	if err == nil {
		if err = CheckPayload(b); err == nil {
			return b, nil
		}
	}
	if bb, berr := s.latestBackup(id); berr == nil {
		s.log.Warn("loaded project from backup", slog.String("id", id), slog.Any("err", err))
		return bb, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %q: %w", id, domain.ErrNotFound)
	}
	return nil, fmt.Errorf("load %q: %w", id, err)
}

// List returns summaries from the library index.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	return s.lib.List(ctx)
}

// Delete removes the document, its backups and its index entries.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.docPath(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %q: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete %q: %w", id, err)
	}
	for _, b := range s.backups(id) {
		_ = os.Remove(b)
	}
	if err := s.lib.Remove(ctx, id); err != nil {
		s.log.Warn("index remove failed", slog.String("id", id), slog.Any("err", err))
	}
	return nil
}

// Search runs a full-text query over the library.
func (s *FileStore) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	return s.lib.Search(ctx, q)
}

// Reindex rebuilds the library from every readable document in the directory.
func (s *FileStore) Reindex(ctx context.Context) error {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read projects dir: %w", err)
	}
	var projects []domain.Project
	mod := map[string]time.Time{}
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, DocumentExt) || strings.HasPrefix(name, ".") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		p, err := DecodeProject(b)
		if err != nil {
			s.log.Warn("skipping unreadable document", slog.String("file", name), slog.Any("err", err))
			continue
		}
		if info, err := e.Info(); err == nil {
			mod[p.ID] = info.ModTime()
		}
		projects = append(projects, p)
	}
	return s.lib.Rebuild(ctx, projects, func(id string) time.Time { return mod[id] })
}

// Autosave writes payload to the autosave folder and returns the file path. Used on crashes.
func (s *FileStore) Autosave(id string, payload []byte) (string, error) {
	if err := checkID(id); err != nil {
		id = "unsaved"
	}
	dir := filepath.Join(s.dir, AutosaveDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create autosave dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s.%s%s", id, s.now().Format("20060102-150405"), DocumentExt))
	if err := writeFileSync(path, payload); err != nil {
		return "", fmt.Errorf("write autosave: %w", err)
	}
	return path, nil
}

func (s *FileStore) backups(id string) []string {
	bdir := filepath.Join(s.dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	prefix := id + DocumentExt + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

// latestBackup returns the newest backup of id that passes the schema check.
func (s *FileStore) latestBackup(id string) ([]byte, error) {
	candidates := s.backups(id)
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			continue
		}
		if CheckPayload(b) == nil {
			return b, nil
		}
	}
	return nil, errors.New("no usable backup")
}

// atomicWrite writes to a temp file in the same directory and renames it over path.
func atomicWrite(path string, data []byte) error {
	temp := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp document: %w", err)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sf.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
