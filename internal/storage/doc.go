/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists projects.
// It encodes and validates the project JSON document (bare or wrapped in an export envelope), keeps one
// document per project in a directory with transactional writes and timestamped backups, and maintains a
// SQLite library index at <dir>/.sw/library.sqlite for summaries, full-text search and thumbnail caching.
// The index is derived from the documents and is rebuilt when it is missing or corrupt.
package storage
