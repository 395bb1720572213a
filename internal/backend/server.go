/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"scenewright/internal/config"
	"scenewright/internal/domain"
	applog "scenewright/internal/log"
	"scenewright/internal/storage"
)

const (
	maxPayloadBytes = 16 << 20
	maxAssetBytes   = 32 << 20
	devSecret       = "dev-secret-change-me"
)

// Server is the reference project backend.
type Server struct {
	store  ProjectStore
	assets AssetStore
	secret string
	log    *slog.Logger
	now    func() time.Time
}

// NewServer returns a server over store. assets may be nil; uploads then answer 501.
// An empty secret falls back to an insecure development secret.
func NewServer(store ProjectStore, assets AssetStore, secret string) *Server {
	l := applog.WithComponent("backend")
	if secret == "" {
		secret = devSecret
		l.Warn("auth secret not set; using insecure dev secret")
	}
	return &Server{store: store, assets: assets, secret: secret, log: l, now: time.Now}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/token", s.handleToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.requireAuth)
	api.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.handlePut).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/assets", s.handleUpload).Methods(http.MethodPost)
	return r
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// POST /api/auth/token {subject, ttl_seconds} → {token, expires_at}
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject    string `json:"subject"`
		TTLSeconds int64  `json:"ttl_seconds"`
	}
	b, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = json.Unmarshal(b, &req)
	if req.Subject == "" {
		req.Subject = "dev"
	}
	if req.TTLSeconds <= 0 || req.TTLSeconds > 24*3600 {
		req.TTLSeconds = 3600
	}
	exp := s.now().Add(time.Duration(req.TTLSeconds) * time.Second)
	tok, err := signToken(s.secret, req.Subject, exp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      tok,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"subject": Subject(r.Context())})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), Subject(r.Context()))
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// POST /api/projects {title, payload} → 201 {id}. The id is the payload's own project id.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string          `json:"title"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	head, err := checkDocument(req.Payload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	title := req.Title
	if title == "" {
		title = head.Title
	}
	rec := Record{ID: head.ID, Owner: Subject(r.Context()), Title: title, Payload: req.Payload}
	if err := s.store.Create(r.Context(), rec); err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": rec.ID})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), Subject(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", rec.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec.Payload)
}

// PUT /api/projects/{id} with the project document as body; creates or replaces.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	head, err := checkDocument(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if head.ID != id {
		writeError(w, http.StatusBadRequest, fmt.Errorf("payload id %q does not match %q", head.ID, id))
		return
	}
	if err := s.store.Put(r.Context(), Record{ID: id, Owner: Subject(r.Context()), Title: head.Title, Payload: body}); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), Subject(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/assets multipart field "file" → 201 {url}
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusNotImplemented, errors.New("asset storage is not configured"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxAssetBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	defer f.Close()
	ct := hdr.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, fmt.Errorf("content type %q is not an image", ct))
		return
	}
	u, err := s.assets.Put(r.Context(), Subject(r.Context()), hdr.Filename, ct, f, hdr.Size)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"url": u})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err)
	default:
		s.log.Error("store failure", slog.String("path", r.URL.Path), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

type documentHead struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// checkDocument schema-checks a project document and returns its id and title.
func checkDocument(payload []byte) (documentHead, error) {
	if len(payload) == 0 {
		return documentHead{}, fmt.Errorf("%w: empty payload", domain.ErrFormat)
	}
	if err := storage.CheckPayload(payload); err != nil {
		return documentHead{}, err
	}
	var head documentHead
	if err := json.Unmarshal(payload, &head); err != nil {
		return documentHead{}, fmt.Errorf("%w: %v", domain.ErrFormat, err)
	}
	return head, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("dur", s.now().Sub(start)))
	})
}

// OpenStore opens the project store selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.ServerConfig) (ProjectStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres", "pg":
		return OpenPG(ctx, cfg.DatabaseURL)
	case "mongo", "mongodb":
		return OpenMongo(ctx, cfg.DatabaseURL, cfg.MongoDB)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// Run serves the backend until ctx is cancelled.
func Run(ctx context.Context, cfg config.ServerConfig) error {
	l := applog.WithOperation(applog.WithComponent("backend"), "serve")
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			l.Warn("store close", slog.Any("err", err))
		}
	}()
	var assets AssetStore
	if cfg.MinIO.Endpoint != "" {
		m, err := OpenMinIO(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		assets = m
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(store, assets, cfg.AuthSecret).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	l.Info("listening", slog.String("addr", cfg.Addr), slog.String("driver", cfg.Driver), slog.Bool("assets", assets != nil))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
