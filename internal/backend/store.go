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
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"scenewright/internal/domain"
)

// ErrConflict is returned when a project id is already taken.
var ErrConflict = errors.New("project already exists")

// Record is a stored project. Payload is the project document as sent by the client.
type Record struct {
	ID        string
	Owner     string
	Title     string
	Payload   []byte
	UpdatedAt time.Time
}

// Summary is the listing projection of a Record.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectStore persists project records per owner. Missing records yield errors wrapping domain.ErrNotFound.
type ProjectStore interface {
	Create(ctx context.Context, rec Record) error
	// Put creates or replaces the owner's record. A record with the same id owned by someone else is a conflict.
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, owner, id string) (Record, error)
	List(ctx context.Context, owner string) ([]Summary, error)
	Delete(ctx context.Context, owner, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// MemoryStore is a ProjectStore kept in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]Record
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: map[string]Record{}, now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.ID]; ok {
		return ErrConflict
	}
	m.store(rec)
	return nil
}

func (m *MemoryStore) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.recs[rec.ID]; ok && cur.Owner != rec.Owner {
		return ErrConflict
	}
	m.store(rec)
	return nil
}

func (m *MemoryStore) store(rec Record) {
	rec.Payload = append([]byte(nil), rec.Payload...)
	rec.UpdatedAt = m.now().UTC()
	m.recs[rec.ID] = rec
}

func (m *MemoryStore) Get(_ context.Context, owner, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.recs[id]
	if !ok || rec.Owner != owner {
		return Record{}, notFound(id)
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return rec, nil
}

func (m *MemoryStore) List(_ context.Context, owner string) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Summary{}
	for _, rec := range m.recs {
		if rec.Owner == owner {
			out = append(out, Summary{ID: rec.ID, Title: rec.Title, UpdatedAt: rec.UpdatedAt})
		}
	}
	sortSummaries(out)
	return out, nil
}

func (m *MemoryStore) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok || rec.Owner != owner {
		return notFound(id)
	}
	delete(m.recs, id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error  { return nil }
func (m *MemoryStore) Close(context.Context) error { return nil }

// sortSummaries orders by most recent update, then id.
func sortSummaries(s []Summary) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].UpdatedAt.Equal(s[j].UpdatedAt) {
			return s[i].UpdatedAt.After(s[j].UpdatedAt)
		}
		return s[i].ID < s[j].ID
	})
}

func notFound(id string) error {
	return fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
}
