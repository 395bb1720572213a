/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"fmt"

	"scenewright/internal/domain"
)

// SyncTimeline makes sure every element has exactly one timeline item. Missing items are appended with
// defaults, extra items for the same element are dropped, names and types follow the element.
// Items whose element is gone are kept; ActiveTimeline filters them.
// The slide is returned unchanged (same slice) when nothing needs to change.
func SyncTimeline(sl domain.Slide) domain.Slide {
	byElement := make(map[string]int, len(sl.Elements))
	for i, el := range sl.Elements {
		byElement[el.ID] = i
	}
	changed := false
	seen := make(map[string]bool, len(sl.TimelineItems))
	items := make([]domain.TimelineItem, 0, len(sl.Elements))
	for _, it := range sl.TimelineItems {
		i, live := byElement[it.LinkedElementID]
		if live {
			if seen[it.LinkedElementID] {
				changed = true
				continue
			}
			seen[it.LinkedElementID] = true
			el := sl.Elements[i]
			if it.Name != el.Label() || it.Type != el.Type() {
				it.Name, it.Type = el.Label(), el.Type()
				changed = true
			}
		}
		items = append(items, it)
	}
	for _, el := range sl.Elements {
		if !seen[el.ID] {
			items = append(items, domain.NewTimelineItem(el))
			changed = true
		}
	}
	if !changed {
		return sl
	}
	if len(items) == 0 {
		items = nil
	}
	sl.TimelineItems = items
	return sl
}

// ActiveTimeline returns the items whose element still exists, in timeline order.
func ActiveTimeline(sl domain.Slide) []domain.TimelineItem {
	out := make([]domain.TimelineItem, 0, len(sl.TimelineItems))
	for _, it := range sl.TimelineItems {
		if sl.ElementIndex(it.LinkedElementID) >= 0 {
			out = append(out, it)
		}
	}
	return out
}

// VisibleAt returns the ids of elements whose timeline item is visible at time t.
// Elements without an item are treated as always visible.
func VisibleAt(sl domain.Slide, t float64) []string {
	items := make(map[string]domain.TimelineItem, len(sl.TimelineItems))
	for _, it := range sl.TimelineItems {
		if _, ok := items[it.LinkedElementID]; !ok {
			items[it.LinkedElementID] = it
		}
	}
	var ids []string
	for _, el := range sl.Elements {
		it, ok := items[el.ID]
		if !ok || (it.IsVisible && t >= it.StartTime && t < it.StartTime+it.Duration) {
			ids = append(ids, el.ID)
		}
	}
	return ids
}

func timelineItem(sl domain.Slide, id string) (int, error) {
	i := sl.TimelineIndex(id)
	if i < 0 {
		return -1, fmt.Errorf("timeline item %q: %w", id, domain.ErrNotFound)
	}
	if sl.TimelineItems[i].IsLocked {
		return -1, fmt.Errorf("timeline item %q: %w", id, domain.ErrLocked)
	}
	return i, nil
}

// MoveTimelineItem sets the start time of an unlocked item, clamped at zero.
func MoveTimelineItem(sl domain.Slide, id string, start float64) (domain.Slide, error) {
	i, err := timelineItem(sl, id)
	if err != nil {
		return sl, err
	}
	it := sl.TimelineItems[i]
	it.StartTime = max(domain.Finite(start, it.StartTime), 0)
	sl.TimelineItems = replaceAt(sl.TimelineItems, i, it)
	return sl, nil
}

// ResizeTimelineItem sets the duration of an unlocked item, floored at domain.MinTimelineDuration.
func ResizeTimelineItem(sl domain.Slide, id string, duration float64) (domain.Slide, error) {
	i, err := timelineItem(sl, id)
	if err != nil {
		return sl, err
	}
	it := sl.TimelineItems[i]
	it.Duration = max(domain.Finite(duration, it.Duration), domain.MinTimelineDuration)
	sl.TimelineItems = replaceAt(sl.TimelineItems, i, it)
	return sl, nil
}

// SetTimelineFlags changes lock and visibility of an item. Nil leaves a flag as is. Locked items accept this.
func SetTimelineFlags(sl domain.Slide, id string, locked, visible *bool) (domain.Slide, error) {
	i := sl.TimelineIndex(id)
	if i < 0 {
		return sl, fmt.Errorf("timeline item %q: %w", id, domain.ErrNotFound)
	}
	it := sl.TimelineItems[i]
	if locked != nil {
		it.IsLocked = *locked
	}
	if visible != nil {
		it.IsVisible = *visible
	}
	sl.TimelineItems = replaceAt(sl.TimelineItems, i, it)
	return sl, nil
}
