/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"scenewright/internal/canvas"
	"scenewright/internal/domain"
	"scenewright/internal/navgraph"
	"scenewright/internal/version"
)

// Storyboard page geometry in points (A4 landscape).
const (
	pageW   = 842.0
	pageH   = 595.0
	margin  = 36.0
	headerH = 28.0
	footerH = 56.0
)

// StoryboardOptions controls the storyboard PDF.
//
// The document starts with a cover page listing every scene and the scene-to-scene
// jumps found on its buttons, followed by one page per slide showing the slide's
// elements as wireframes scaled into the page.
type StoryboardOptions struct {
	Canvas domain.CanvasSize // slide coordinate space; domain.DefaultCanvas when zero
	Scenes []string          // scene ids to include, in project order; all when empty
	Author string
}

// WriteStoryboardPDF renders p to w and returns the number of pages written.
func WriteStoryboardPDF(w io.Writer, p domain.Project, opt StoryboardOptions) (int, error) {
	if len(p.Scenes) == 0 {
		return 0, fmt.Errorf("%w: project has no scenes", domain.ErrPrecondition)
	}
	scenes, err := selectScenes(p.Scenes, opt.Scenes)
	if err != nil {
		return 0, err
	}
	cv := canvasOrDefault(opt.Canvas)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(p.Title+" storyboard", true)
	pdf.SetCreator(version.String(), true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := drawCover(pdf, tr, p, navgraph.Extract(p.Scenes))
	total := 0
	for _, sc := range scenes {
		total += len(sc.Slides)
	}
	n := 0
	for _, sc := range scenes {
		for _, sl := range sc.Slides {
			n++
			drawSlidePage(pdf, tr, p, sc, sl, cv, n, total)
		}
	}
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return pages + total, nil
}

// ExportStoryboardPDF writes the storyboard to outPath, creating its directory.
func ExportStoryboardPDF(p domain.Project, outPath string, opt StoryboardOptions) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create pdf: %w", err)
	}
	bw := bufio.NewWriter(f)
	pages, err := WriteStoryboardPDF(bw, p, opt)
	if err == nil {
		err = bw.Flush()
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close pdf: %w", cerr)
	}
	if err != nil {
		_ = os.Remove(outPath)
		return 0, err
	}
	return pages, nil
}

func selectScenes(all []domain.Scene, ids []string) ([]domain.Scene, error) {
	if len(ids) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		found := false
		for _, sc := range all {
			if sc.ID == id {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: scene %q", domain.ErrNotFound, id)
		}
		want[id] = true
	}
	out := make([]domain.Scene, 0, len(ids))
	for _, sc := range all {
		if want[sc.ID] {
			out = append(out, sc)
		}
	}
	return out, nil
}

// drawCover writes the title and scene flow and returns the number of pages used.
func drawCover(pdf *gofpdf.Fpdf, tr func(string) string, p domain.Project, conns []navgraph.Connection) int {
	pdf.AddPage()
	pages := 1
	setTextColor(pdf, colorInk)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.Text(margin, margin+24, tr(p.Title))
	pdf.SetFont("Helvetica", "", 11)
	setTextColor(pdf, colorMuted)
	pdf.Text(margin, margin+44, fmt.Sprintf("%d scenes, %d slides", len(p.Scenes), p.SlideCount()))

	incoming := make(map[string]bool)
	for _, c := range conns {
		if c.ToSceneID != c.FromSceneID {
			incoming[c.ToSceneID] = true
		}
	}

	y := margin + 80
	line := func(text string, style string, size float64, col color.RGBA, indent float64) {
		if y > pageH-margin {
			pdf.AddPage()
			pages++
			y = margin + 12
		}
		pdf.SetFont("Helvetica", style, size)
		setTextColor(pdf, col)
		pdf.Text(margin+indent, y, tr(text))
		y += size * 1.5
	}
	line("Scene flow", "B", 14, colorInk, 0)
	for i, sc := range p.Scenes {
		head := fmt.Sprintf("%d. %s (%d slides)", i+1, sceneTitle(sc, i), len(sc.Slides))
		if i > 0 && !incoming[sc.ID] {
			head += "  - no incoming jumps"
		}
		line(head, "", 11, colorInk, 0)
		for _, c := range conns {
			if c.FromSceneID != sc.ID {
				continue
			}
			to := c.ToSceneID
			if j := p.SceneIndex(c.ToSceneID); j >= 0 {
				to = sceneTitle(p.Scenes[j], j)
			}
			text := "-> " + to
			if c.Label != "" {
				text += "  (" + c.Label + ")"
			}
			line(text, "", 10, colorLink, 18)
		}
	}
	return pages
}

func drawSlidePage(pdf *gofpdf.Fpdf, tr func(string) string, p domain.Project, sc domain.Scene, sl domain.Slide, cv domain.CanvasSize, n, total int) {
	pdf.AddPage()
	setTextColor(pdf, colorInk)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(margin, margin+12, tr(fmt.Sprintf("%s / %s", sc.Title, sl.Title)))
	pdf.SetFont("Helvetica", "", 9)
	setTextColor(pdf, colorMuted)
	pageLabel := fmt.Sprintf("%d / %d", n, total)
	pdf.Text(pageW-margin-pdf.GetStringWidth(pageLabel), margin+12, pageLabel)

	aw := pageW - 2*margin
	ah := pageH - 2*margin - headerH - footerH
	scale := math.Min(aw/float64(cv.Width), ah/float64(cv.Height))
	fw, fh := float64(cv.Width)*scale, float64(cv.Height)*scale
	ox := margin + (aw-fw)/2
	oy := margin + headerH

	setFillColor(pdf, backgroundOf(sl))
	setDrawColor(pdf, colorMuted)
	pdf.SetLineWidth(0.5)
	pdf.Rect(ox, oy, fw, fh, "FD")

	pdf.ClipRect(ox, oy, fw, fh, false)
	for _, el := range canvas.Stacked(sl) {
		drawElementPDF(pdf, tr, el, ox, oy, scale)
	}
	pdf.ClipEnd()

	y := oy + fh + 16
	pdf.SetFont("Helvetica", "", 9)
	for _, el := range sl.Elements {
		b, ok := el.Button()
		if !ok {
			continue
		}
		if y > pageH-margin {
			break
		}
		setTextColor(pdf, colorLink)
		pdf.Text(margin, y, tr(fmt.Sprintf("[%s] -> %s", b.Label, describeAction(p, b.Action))))
		y += 12
	}
}

func drawElementPDF(pdf *gofpdf.Fpdf, tr func(string) string, el domain.Element, ox, oy, scale float64) {
	st := styleFor(el.Type())
	x, y := ox+el.X*scale, oy+el.Y*scale
	w, h := el.Width*scale, el.Height*scale

	pdf.SetLineWidth(0.8)
	setDrawColor(pdf, st.stroke)
	if st.dashed {
		pdf.SetDashPattern([]float64{3, 2}, 0)
	}
	style := "D"
	if st.fill.A != 0 {
		setFillColor(pdf, st.fill)
		style = "FD"
	}
	pdf.Rect(x, y, w, h, style)
	pdf.SetDashPattern([]float64{}, 0)
	if el.Type() == domain.TypeImage {
		pdf.SetLineWidth(0.3)
		pdf.Line(x, y, x+w, y+h)
		pdf.Line(x+w, y, x, y+h)
	}

	text := caption(el)
	if text == "" || w < 8 || h < 6 {
		return
	}
	size, fontStyle, align := 9.0, "", "L"
	col := colorInk
	switch c := el.Content.(type) {
	case domain.TextContent:
		if c.FontSize > 0 {
			size = math.Max(4, math.Min(36, c.FontSize*scale))
		}
		if strings.EqualFold(c.FontWeight, "bold") {
			fontStyle += "B"
		}
		if strings.EqualFold(c.FontStyle, "italic") {
			fontStyle += "I"
		}
		switch strings.ToLower(c.Align) {
		case "center":
			align = "C"
		case "right":
			align = "R"
		}
		if fc, ok := parseHexColor(c.FontColor); ok {
			col = fc
		}
	case domain.ButtonContent:
		align = "C"
		col = colorLink
	default:
		col = colorMuted
	}
	pdf.SetFont("Helvetica", fontStyle, size)
	setTextColor(pdf, col)
	pdf.ClipRect(x, y, w, h, false)
	pdf.SetXY(x+2, y+2)
	pdf.MultiCell(w-4, size*1.2, tr(text), "", align, false)
	pdf.ClipEnd()
}

// describeAction renders a button action for humans, resolving scene and slide titles.
func describeAction(p domain.Project, action string) string {
	a := domain.ParseAction(action)
	switch a.Kind {
	case domain.ActionNextSlide:
		return "next slide"
	case domain.ActionPrevSlide:
		return "previous slide"
	case domain.ActionGoToScene:
		if i := p.SceneIndex(a.Target); i >= 0 {
			return "scene " + sceneTitle(p.Scenes[i], i)
		}
		return "missing scene " + a.Target
	case domain.ActionGoToSlide:
		if sl, _, ok := p.FindSlide(a.Target); ok {
			return "slide " + sl.Title
		}
		return "missing slide " + a.Target
	}
	if action == "" {
		return "no action"
	}
	return "unknown action " + action
}

func sceneTitle(sc domain.Scene, i int) string {
	if strings.TrimSpace(sc.Title) != "" {
		return sc.Title
	}
	return fmt.Sprintf("Scene %d", i+1)
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
