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
	"fmt"
	"strings"
)

// SearchQuery describes a library search.
// Text uses SQLite FTS5 syntax (terms, quoted phrases, AND/OR/NOT); empty Text lists documents by filter only.
// Types restricts to document kinds: project_title, scene_title, slide_title, text, button, image_alt, hotspot.
type SearchQuery struct {
	Text      string
	ProjectID string
	Types     []string
	Limit     int
	Offset    int
}

// SearchResult is one matching document.
type SearchResult struct {
	DocID        int64  `json:"docId"`
	ProjectID    string `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
	SceneID      string `json:"sceneId,omitempty"`
	SlideID      string `json:"slideId,omitempty"`
	ElementID    string `json:"elementId,omitempty"`
	Type         string `json:"type"`
	Text         string `json:"text"`
}

// Search runs q against the library.
func (lib *Library) Search(ctx context.Context, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT d.doc_id, d.project_id, p.title, COALESCE(d.scene_id,''), COALESCE(d.slide_id,''), COALESCE(d.element_id,''), d.type, COALESCE(d.text,'')\n")
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("JOIN projects p ON p.id = d.project_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("FROM documents d JOIN projects p ON p.id = d.project_id\nWHERE 1=1\n")
	}
	if q.ProjectID != "" {
		sb.WriteString(" AND d.project_id = ?\n")
		args = append(args, q.ProjectID)
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sb.WriteString("ORDER BY p.updated_at DESC, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, max(q.Offset, 0))

	rows, err := lib.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.DocID, &r.ProjectID, &r.ProjectTitle, &r.SceneID, &r.SlideID, &r.ElementID, &r.Type, &r.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
