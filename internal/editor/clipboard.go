/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"fmt"

	"github.com/atotto/clipboard"

	"scenewright/internal/domain"
)

// OSClipboard mirrors copied elements to the system clipboard as JSON.
type OSClipboard struct{}

func (OSClipboard) WriteElement(el domain.Element) error {
	if clipboard.Unsupported {
		return fmt.Errorf("system clipboard unsupported on this platform")
	}
	data, err := json.Marshal(el)
	if err != nil {
		return err
	}
	return clipboard.WriteAll(string(data))
}

// ReadOSClipboard decodes an element previously mirrored to the system clipboard.
func ReadOSClipboard() (domain.Element, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return domain.Element{}, err
	}
	var el domain.Element
	if err := json.Unmarshal([]byte(text), &el); err != nil {
		return domain.Element{}, fmt.Errorf("%w: clipboard does not hold an element: %v", domain.ErrFormat, err)
	}
	return el, nil
}

// SetClipboard replaces the session clipboard, e.g. with an element read by ReadOSClipboard.
func (e *Editor) SetClipboard(el domain.Element) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clipboard = &el
}
