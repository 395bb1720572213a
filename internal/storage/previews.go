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
	"os"
	"strconv"
	"time"
)

// PreviewKey addresses one cached slide thumbnail.
type PreviewKey struct {
	ProjectID string
	SlideID   string
	W, H      int
}

// GetPreview returns the cached thumbnail when one exists for key with the same content hash.
// A hit refreshes the entry's access time.
func (lib *Library) GetPreview(ctx context.Context, key PreviewKey, hash string) ([]byte, bool, error) {
	var blob []byte
	var stored string
	err := lib.db.QueryRowContext(ctx, `SELECT hash, blob FROM previews WHERE project_id=? AND slide_id=? AND w=? AND h=?`,
		key.ProjectID, key.SlideID, key.W, key.H).Scan(&stored, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query preview: %w", err)
	}
	if stored != hash {
		return nil, false, nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, _ = lib.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE project_id=? AND slide_id=? AND w=? AND h=?`,
		now, key.ProjectID, key.SlideID, key.W, key.H)
	return blob, true, nil
}

// PutPreview stores a thumbnail and evicts least recently used entries above the size cap.
func (lib *Library) PutPreview(ctx context.Context, key PreviewKey, hash string, blob []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := lib.db.ExecContext(ctx, `INSERT INTO previews(project_id, slide_id, w, h, hash, blob, size, updated_at, last_access)
		VALUES(?,?,?,?,?,?,?,?,?)
		ON CONFLICT(project_id, slide_id, w, h) DO UPDATE SET hash=excluded.hash, blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key.ProjectID, key.SlideID, key.W, key.H, hash, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return lib.EvictPreviewsToFit(ctx, capBytes)
	}
	return nil
}

// EvictPreviewsToFit deletes least recently used previews until their total size is at most capBytes.
func (lib *Library) EvictPreviewsToFit(ctx context.Context, capBytes int64) error {
	var total int64
	if err := lib.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := lib.db.QueryContext(ctx, `SELECT rowid, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	victims := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// close the cursor before writing; the pool holds a single connection
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	if _, err := lib.db.ExecContext(ctx, `DELETE FROM previews WHERE rowid IN (`+placeholders(len(victims))+`)`, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns the summed size of all cached previews.
func (lib *Library) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := lib.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads SW_PREVIEWS_MAX_BYTES, defaulting to 64MB.
func MaxPreviewsBytesFromEnv() int64 {
	const def = 64 * 1024 * 1024
	v := os.Getenv("SW_PREVIEWS_MAX_BYTES")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
