/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"
	"strconv"
	"strings"

	"scenewright/internal/domain"
)

// Wireframe palette shared by the PDF and PNG renderers.
var (
	colorWhite  = color.RGBA{255, 255, 255, 255}
	colorInk    = color.RGBA{51, 51, 51, 255}
	colorMuted  = color.RGBA{140, 140, 140, 255}
	colorImage  = color.RGBA{224, 224, 224, 255}
	colorButton = color.RGBA{210, 228, 252, 255}
	colorLink   = color.RGBA{21, 101, 192, 255}
	colorHot    = color.RGBA{230, 81, 0, 255}
)

// elementStyle is the fill and stroke used for one element type. A zero fill alpha means no fill.
type elementStyle struct {
	fill   color.RGBA
	stroke color.RGBA
	dashed bool
}

func styleFor(t domain.ElementType) elementStyle {
	switch t {
	case domain.TypeImage:
		return elementStyle{fill: colorImage, stroke: colorMuted}
	case domain.TypeButton:
		return elementStyle{fill: colorButton, stroke: colorLink}
	case domain.TypeHotspot:
		return elementStyle{stroke: colorHot, dashed: true}
	}
	return elementStyle{stroke: colorInk}
}

// caption is the text drawn inside an element's wireframe.
func caption(el domain.Element) string {
	switch c := el.Content.(type) {
	case domain.TextContent:
		return c.Text
	case domain.ImageContent:
		if c.Alt != "" {
			return "[" + c.Alt + "]"
		}
		return "[image]"
	case domain.ButtonContent:
		return c.Label
	case domain.HotspotContent:
		return c.Tooltip
	}
	return ""
}

// parseHexColor accepts #rgb and #rrggbb.
func parseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

func backgroundOf(sl domain.Slide) color.RGBA {
	if c, ok := parseHexColor(sl.Background); ok {
		return c
	}
	return colorWhite
}

func canvasOrDefault(c domain.CanvasSize) domain.CanvasSize {
	if c.Width <= 0 || c.Height <= 0 {
		return domain.DefaultCanvas
	}
	return c
}
