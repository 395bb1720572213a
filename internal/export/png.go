/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"scenewright/internal/canvas"
	"scenewright/internal/domain"
)

// ThumbnailOptions controls wireframe thumbnail size. The slide is letterboxed into Width x Height.
type ThumbnailOptions struct {
	Width  int
	Height int
	Canvas domain.CanvasSize
}

// DefaultThumbnailOptions renders 320x180 thumbnails of the default canvas.
func DefaultThumbnailOptions() ThumbnailOptions {
	return ThumbnailOptions{Width: 320, Height: 180, Canvas: domain.DefaultCanvas}
}

func (o ThumbnailOptions) normalized() ThumbnailOptions {
	d := DefaultThumbnailOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	o.Canvas = canvasOrDefault(o.Canvas)
	return o
}

// RenderThumbnail draws sl as a wireframe: slide background, then each element bottom to top as a
// filled or outlined box with its caption in a 7x13 bitmap font.
func RenderThumbnail(sl domain.Slide, opt ThumbnailOptions) *image.RGBA {
	opt = opt.normalized()
	img := image.NewRGBA(image.Rect(0, 0, opt.Width, opt.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colorWhite}, image.Point{}, draw.Src)

	scale := math.Min(float64(opt.Width)/float64(opt.Canvas.Width), float64(opt.Height)/float64(opt.Canvas.Height))
	fw := int(math.Round(float64(opt.Canvas.Width) * scale))
	fh := int(math.Round(float64(opt.Canvas.Height) * scale))
	origin := image.Pt((opt.Width-fw)/2, (opt.Height-fh)/2)
	frame := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(fw, fh))}

	draw.Draw(img, frame, &image.Uniform{C: backgroundOf(sl)}, image.Point{}, draw.Src)
	slide := img.SubImage(frame).(*image.RGBA)

	for _, el := range canvas.Stacked(sl) {
		r := image.Rect(
			origin.X+int(math.Round(el.X*scale)),
			origin.Y+int(math.Round(el.Y*scale)),
			origin.X+int(math.Round((el.X+el.Width)*scale)),
			origin.Y+int(math.Round((el.Y+el.Height)*scale)),
		).Intersect(frame)
		if r.Empty() {
			continue
		}
		drawElementPNG(slide, r, el)
	}
	return img
}

func drawElementPNG(img *image.RGBA, r image.Rectangle, el domain.Element) {
	st := styleFor(el.Type())
	if st.fill.A != 0 {
		fillRect(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, st.fill)
	}
	if st.dashed {
		dashRect(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, st.stroke)
	} else {
		strokeRect(img, r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1, st.stroke)
	}

	face := basicfont.Face7x13
	text := caption(el)
	if text == "" || r.Dy() < face.Height+2 || r.Dx() < face.Advance+4 {
		return
	}
	col := colorInk
	if tc, ok := el.Text(); ok {
		if fc, ok := parseHexColor(tc.FontColor); ok {
			col = fc
		}
	}
	// The drawer clips to the destination bounds, so captions never leave their box.
	inner := img.SubImage(r.Inset(1)).(*image.RGBA)
	d := &font.Drawer{Dst: inner, Src: image.NewUniform(col), Face: face}
	lines := wrapLines(face, text, r.Dx()-6, (r.Dy()-2)/face.Height)
	for i, line := range lines {
		d.Dot = fixed.P(r.Min.X+3, r.Min.Y+1+face.Ascent+i*face.Height)
		d.DrawString(line)
	}
}

// EncodeThumbnail renders sl and returns PNG bytes.
func EncodeThumbnail(sl domain.Slide, opt ThumbnailOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, RenderThumbnail(sl, opt)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

// dashRect is strokeRect with 3-on 2-off dashes.
func dashRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	on := func(i int) bool { return i%5 < 3 }
	for x := x0; x <= x1; x++ {
		if on(x - x0) {
			img.SetRGBA(x, y0, col)
			img.SetRGBA(x, y1, col)
		}
	}
	for y := y0; y <= y1; y++ {
		if on(y - y0) {
			img.SetRGBA(x0, y, col)
			img.SetRGBA(x1, y, col)
		}
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
