// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfread

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// Glyph is one positioned character of a page content stream.
type Glyph struct {
	// X and Y are the baseline origin in PDF user space.
	X, Y float64

	// W is the advance width and Size the font size, in points.
	W, Size float64

	S string
}

// center is the point tested against marked regions: horizontally the
// middle of the advance, vertically about a third of the font size above
// the baseline.
func (g Glyph) center() (float64, float64) {
	return g.X + g.W/2, g.Y + g.Size/3
}

func inBox(x, y float64, b types.Box) bool {
	const slack = 0.5
	return x >= b.X1-slack && x <= b.X2+slack && y >= b.Y1-slack && y <= b.Y2+slack
}

// CaptureText joins, in content order, the glyphs whose centers fall inside
// any of boxes. A new baseline starts a new line; a horizontal gap wider
// than a third of the font size becomes a space.
func CaptureText(glyphs []Glyph, boxes []types.Box) string {
	var b strings.Builder
	var prev *Glyph
	for i := range glyphs {
		g := &glyphs[i]
		x, y := g.center()
		hit := false
		for _, box := range boxes {
			if inBox(x, y, box) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}

		if prev != nil && b.Len() > 0 {
			last := b.String()[b.Len()-1]
			switch {
			case math.Abs(g.Y-prev.Y) > math.Max(g.Size, prev.Size)/2:
				b.WriteByte('\n')
			case g.X-(prev.X+prev.W) > g.Size/3 && last != ' ' && g.S != " ":
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
	}
	return b.String()
}

// pageGlyphs reads the positioned text of the given zero-based pages.
func pageGlyphs(path string, pages map[int]bool) (map[int][]Glyph, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s for text: %w", path, err)
	}
	defer f.Close()

	out := make(map[int][]Glyph, len(pages))
	for page := range pages {
		if page < 0 || page >= r.NumPage() {
			continue
		}
		glyphs, err := contentGlyphs(r.Page(page + 1))
		if err != nil {
			return nil, fmt.Errorf("reading page %d text: %w", page+1, err)
		}
		out[page] = glyphs
	}
	return out, nil
}

// contentGlyphs interprets a page content stream. The interpreter panics on
// malformed operators; that is reported as an error.
func contentGlyphs(p pdf.Page) (glyphs []Glyph, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("interpreting content stream: %v", v)
		}
	}()
	if p.V.IsNull() {
		return nil, nil
	}
	for _, t := range p.Content().Text {
		glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	return glyphs, nil
}

// captureText fills Text for the markup annotations in annots from the page
// text under their boxes. Failures leave Text empty, so GetText falls back
// to the comment.
func (r *Reader) captureText(path string, annots []types.Annotation) {
	pages := map[int]bool{}
	for _, a := range annots {
		if a.Subtype.IsMarkup() && len(a.Boxes) > 0 {
			pages[a.Page] = true
		}
	}
	if len(pages) == 0 {
		return
	}

	glyphs, err := pageGlyphs(path, pages)
	if err != nil {
		r.logger().WithFields(logrus.Fields{"path": path, "error": err}).Debug("page text unavailable")
		return
	}
	for i := range annots {
		a := &annots[i]
		if !a.Subtype.IsMarkup() || len(a.Boxes) == 0 {
			continue
		}
		a.Text = CaptureText(glyphs[a.Page], a.Boxes)
	}
}
