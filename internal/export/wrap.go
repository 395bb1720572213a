/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strings"

	"golang.org/x/image/font"
)

// wrapLines breaks text on spaces and newlines so that each line fits maxWidth pixels in face.
// A word wider than maxWidth gets a line of its own. At most maxLines lines are returned; a
// truncated result ends in "...".
func wrapLines(face font.Face, text string, maxWidth, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	width := func(s string) int { return font.MeasureString(face, s).Ceil() }
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			next := word
			if cur != "" {
				next = cur + " " + word
			}
			if cur != "" && width(next) > maxWidth {
				lines = append(lines, cur)
				cur = word
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = strings.TrimRight(lines[maxLines-1], " ") + "..."
	}
	return lines
}
