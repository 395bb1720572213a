/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package edit

import (
	"errors"
	"math"
	"testing"

	"scenewright/internal/domain"
)

func TestSyncTimelineOnePerElement(t *testing.T) {
	sl := SyncTimeline(slideWith(domain.TypeText, domain.TypeImage))
	if len(sl.TimelineItems) != 2 {
		t.Fatalf("want 2 items, got %d", len(sl.TimelineItems))
	}
	for i, it := range sl.TimelineItems {
		if it.LinkedElementID != sl.Elements[i].ID || it.Duration != 5 || !it.IsVisible || it.IsLocked {
			t.Fatalf("unexpected item %+v", it)
		}
	}
	again := SyncTimeline(sl)
	if &again.TimelineItems[0] != &sl.TimelineItems[0] {
		t.Fatalf("sync of a synced slide should not reallocate")
	}
}

func TestSyncTimelineKeepsOrphansAndDropsDuplicates(t *testing.T) {
	sl := SyncTimeline(slideWith(domain.TypeText, domain.TypeImage))
	gone := sl.Elements[0].ID
	sl, _ = DeleteElement(sl, gone)
	sl.TimelineItems = append(sl.TimelineItems, domain.NewTimelineItem(sl.Elements[0]))
	sl = SyncTimeline(sl)
	if len(sl.TimelineItems) != 2 {
		t.Fatalf("want orphan + one live item, got %d", len(sl.TimelineItems))
	}
	active := ActiveTimeline(sl)
	if len(active) != 1 || active[0].LinkedElementID != sl.Elements[0].ID {
		t.Fatalf("active timeline = %+v", active)
	}
}

func TestTimelineDragRules(t *testing.T) {
	sl := SyncTimeline(slideWith(domain.TypeButton))
	id := sl.TimelineItems[0].ID
	sl, err := MoveTimelineItem(sl, id, -3)
	if err != nil || sl.TimelineItems[0].StartTime != 0 {
		t.Fatalf("move: %v %+v", err, sl.TimelineItems[0])
	}
	sl, err = ResizeTimelineItem(sl, id, 0.1)
	if err != nil || sl.TimelineItems[0].Duration != domain.MinTimelineDuration {
		t.Fatalf("resize: %v %+v", err, sl.TimelineItems[0])
	}
	sl, _ = SetTimelineFlags(sl, id, domain.Ptr(true), nil)
	if _, err := MoveTimelineItem(sl, id, 2); !errors.Is(err, domain.ErrLocked) {
		t.Fatalf("locked item moved: %v", err)
	}
	if _, err := ResizeTimelineItem(sl, "nope", 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestTimelineIgnoresNonFinite(t *testing.T) {
	sl := SyncTimeline(slideWith(domain.TypeButton))
	id := sl.TimelineItems[0].ID
	sl, _ = MoveTimelineItem(sl, id, 2)
	sl, _ = MoveTimelineItem(sl, id, math.NaN())
	sl, _ = ResizeTimelineItem(sl, id, math.Inf(1))
	if it := sl.TimelineItems[0]; it.StartTime != 2 || it.Duration != 5 {
		t.Fatalf("item = %+v", it)
	}
}

func TestVisibleAt(t *testing.T) {
	sl := SyncTimeline(slideWith(domain.TypeText, domain.TypeImage))
	sl, _ = MoveTimelineItem(sl, sl.TimelineItems[1].ID, 3)
	if got := VisibleAt(sl, 1); len(got) != 1 || got[0] != sl.Elements[0].ID {
		t.Fatalf("visible at 1 = %v", got)
	}
	if got := VisibleAt(sl, 4); len(got) != 2 {
		t.Fatalf("visible at 4 = %v", got)
	}
}
