/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// Error categories. Callers test with errors.Is.
var (
	ErrPrecondition = errors.New("precondition failed")
	ErrLastItem     = errors.New("last item")
	ErrNotFound     = errors.New("not found")
	ErrFormat       = errors.New("invalid format")
	ErrTransport    = errors.New("transport failure")
	ErrStaleLoad    = errors.New("stale load")
)

// Specific conditions, each wrapping its category.
var (
	ErrNoScene         = fmt.Errorf("%w: no current scene", ErrPrecondition)
	ErrNoSlide         = fmt.Errorf("%w: no current slide", ErrPrecondition)
	ErrNoSelection     = fmt.Errorf("%w: no element selected", ErrPrecondition)
	ErrEmptyClipboard  = fmt.Errorf("%w: clipboard is empty", ErrPrecondition)
	ErrLocked          = fmt.Errorf("%w: timeline item is locked", ErrPrecondition)
	ErrNoPendingDelete = fmt.Errorf("%w: no slide deletion pending", ErrPrecondition)
	ErrLastScene       = fmt.Errorf("%w: cannot delete the last scene", ErrLastItem)
	ErrLastSlide       = fmt.Errorf("%w: cannot delete the last slide of a scene", ErrLastItem)
)

// UserMessage maps err to the text shown in a user notification.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoScene):
		return "Create a scene first."
	case errors.Is(err, ErrNoSlide):
		return "Add a slide first."
	case errors.Is(err, ErrNoSelection):
		return "Select an element first."
	case errors.Is(err, ErrEmptyClipboard):
		return "Nothing to paste. Copy an element first."
	case errors.Is(err, ErrLocked):
		return "This timeline item is locked."
	case errors.Is(err, ErrNoPendingDelete):
		return "There is no slide deletion to confirm."
	case errors.Is(err, ErrLastScene):
		return "A project needs at least one scene."
	case errors.Is(err, ErrLastSlide):
		return "A scene needs at least one slide."
	case errors.Is(err, ErrStaleLoad):
		return "The project changed while loading; the load was discarded."
	case errors.Is(err, ErrNotFound):
		return "The item no longer exists."
	case errors.Is(err, ErrFormat):
		return "The project file is invalid and was not loaded."
	case errors.Is(err, ErrTransport):
		return "Could not reach the project server. Please try again."
	case errors.Is(err, ErrPrecondition):
		return "This action is not available right now."
	}
	return "Something went wrong."
}
