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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName holds derived, disposable data next to the project documents.
	IndexDirName  = ".sw"
	IndexFileName = "library.sqlite"

	// schemaVersion tracks the library schema. Bump it together with a step in runMigrations.
	schemaVersion = 2
)

// Summary describes a stored project for listings.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	Scenes    int       `json:"scenes"`
	Slides    int       `json:"slides"`
}

// Library is the SQLite index over a directory of projects: summaries, full-text search over slide text,
// and a thumbnail cache. Everything in it can be rebuilt from the project documents.
type Library struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// LibraryPath returns the index file location for a projects directory.
func LibraryPath(dir string) string {
	return filepath.Join(dir, IndexDirName, IndexFileName)
}

// OpenLibrary creates or opens the index under dir, enables WAL and brings the schema up to date.
func OpenLibrary(ctx context.Context, dir string) (*Library, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "library_open").With(slog.String("dir", dir))
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("projects directory is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	path := LibraryPath(dir)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureLibrarySchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure library schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("library ready", slog.String("path", path))
	return &Library{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

// Close releases the database handle.
func (lib *Library) Close() error {
	if lib == nil || lib.db == nil {
		return nil
	}
	return lib.db.Close()
}

// Path returns the index file path.
func (lib *Library) Path() string { return lib.path }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// a fresh database starts at schema 1 and migrates forward
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, 1, ?, ?, ?)`, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema steps up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_documents_slide ON documents(project_id, slide_id);`,
				`CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access);`,
			}
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		cur = next
	}
	return nil
}

func ensureLibrarySchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id         TEXT    PRIMARY KEY,
			title      TEXT    NOT NULL,
			scenes     INTEGER NOT NULL DEFAULT 0,
			slides     INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT    NOT NULL
		);`,
		// One row per searchable string: titles, text content, button labels, alt texts, tooltips.
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     INTEGER PRIMARY KEY,
			project_id TEXT    NOT NULL,
			scene_id   TEXT,
			slide_id   TEXT,
			element_id TEXT,
			type       TEXT    NOT NULL,
			text       TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			project_id  TEXT    NOT NULL,
			slide_id    TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			hash        TEXT    NOT NULL,
			blob        BLOB    NOT NULL,
			size        INTEGER NOT NULL DEFAULT 0,
			updated_at  TEXT    NOT NULL,
			last_access TEXT,
			PRIMARY KEY(project_id, slide_id, w, h)
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure library schema: %w", err)
		}
	}
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// Healthy runs a quick integrity check and probes the core tables.
func (lib *Library) Healthy(ctx context.Context) bool {
	var chk string
	if err := lib.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		return false
	}
	if _, err := lib.db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
		return false
	}
	if _, err := lib.db.ExecContext(ctx, `SELECT 1 FROM projects LIMIT 1;`); err != nil {
		return false
	}
	return true
}

// Count returns the number of indexed projects.
func (lib *Library) Count(ctx context.Context) (int, error) {
	var n int
	if err := lib.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

type docRow struct {
	typ       string
	sceneID   sql.NullString
	slideID   sql.NullString
	elementID sql.NullString
	text      string
}

func nullStr(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

// documentsOf flattens every searchable string of p.
func documentsOf(p domain.Project) []docRow {
	rows := make([]docRow, 0, 64)
	add := func(typ, sc, sl, el, text string) {
		if s := strings.TrimSpace(text); s != "" {
			rows = append(rows, docRow{typ: typ, sceneID: nullStr(sc), slideID: nullStr(sl), elementID: nullStr(el), text: s})
		}
	}
	add("project_title", "", "", "", p.Title)
	for _, sc := range p.Scenes {
		add("scene_title", sc.ID, "", "", sc.Title)
		for _, sl := range sc.Slides {
			add("slide_title", sc.ID, sl.ID, "", sl.Title)
			for _, el := range sl.Elements {
				switch c := el.Content.(type) {
				case domain.TextContent:
					add("text", sc.ID, sl.ID, el.ID, c.Text)
				case domain.ImageContent:
					add("image_alt", sc.ID, sl.ID, el.ID, c.Alt)
				case domain.ButtonContent:
					add("button", sc.ID, sl.ID, el.ID, c.Label)
				case domain.HotspotContent:
					add("hotspot", sc.ID, sl.ID, el.ID, c.Tooltip)
				}
			}
		}
	}
	return rows
}

// Upsert records p's summary and replaces its searchable documents in one transaction.
func (lib *Library) Upsert(ctx context.Context, p domain.Project, updatedAt time.Time) error {
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO projects(id, title, scenes, slides, updated_at) VALUES(?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET title=excluded.title, scenes=excluded.scenes, slides=excluded.slides, updated_at=excluded.updated_at`,
		p.ID, p.Title, len(p.Scenes), p.SlideCount(), updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert project: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE project_id=?`, p.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO documents(project_id, scene_id, slide_id, element_id, type, text) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range documentsOf(p) {
		if _, err := ins.ExecContext(ctx, p.ID, r.sceneID, r.slideID, r.elementID, r.typ, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Remove drops a project, its documents and its cached previews.
func (lib *Library) Remove(ctx context.Context, id string) error {
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range []string{
		`DELETE FROM documents WHERE project_id=?`,
		`DELETE FROM previews WHERE project_id=?`,
		`DELETE FROM projects WHERE id=?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("remove project: %w", err)
		}
	}
	return tx.Commit()
}

// List returns all project summaries, most recently updated first.
func (lib *Library) List(ctx context.Context) ([]Summary, error) {
	rows, err := lib.db.QueryContext(ctx, `SELECT id, title, scenes, slides, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	out := []Summary{}
	for rows.Next() {
		var s Summary
		var ts string
		if err := rows.Scan(&s.ID, &s.Title, &s.Scenes, &s.Slides, &ts); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		s.UpdatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Rebuild drops the derived tables and repopulates them from the given projects.
func (lib *Library) Rebuild(ctx context.Context, projects []domain.Project, updatedAt func(id string) time.Time) error {
	drops := []string{
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
		"DROP TABLE IF EXISTS projects;",
	}
	tx, err := lib.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureLibrarySchema(ctx, lib.db); err != nil {
		return err
	}
	if _, err := lib.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_documents_slide ON documents(project_id, slide_id);`); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	for _, p := range projects {
		if err := lib.Upsert(ctx, p, updatedAt(p.ID)); err != nil {
			return err
		}
	}
	lib.log.Info("library rebuilt", slog.Int("projects", len(projects)))
	return nil
}

// backupIndexFile copies the index file into a timestamped backup next to it.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}
