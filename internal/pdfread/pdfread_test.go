// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfread

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// --- test helpers ---

// sampleObjects is a two-page document: page 1 inherits a letter MediaBox
// and carries a highlight and a link, page 2 is A4 with a text note below
// the "Method" outline entry.
var sampleObjects = []string{
	`<< /Type /Catalog /Pages 2 0 R /Outlines 7 0 R >>`,
	`<< /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /MediaBox [0 0 612 792] >>`,
	`<< /Type /Page /Parent 2 0 R /Annots [5 0 R 6 0 R] >>`,
	`<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Annots [9 0 R] >>`,
	`<< /Type /Annot /Subtype /Highlight /Rect [100 100 200 150] ` +
		`/QuadPoints [100 150 200 150 100 100 200 100] /Contents (Hello) /T (Reader) ` +
		`/CreationDate (D:20230301120000Z) /C [1 1 0] >>`,
	`<< /Type /Annot /Subtype /Link /Rect [0 0 10 10] >>`,
	`<< /Type /Outlines /First 8 0 R /Last 8 0 R /Count 1 >>`,
	`<< /Title (Method) /Parent 7 0 R /Dest [4 0 R /XYZ 0 700 0] >>`,
	`<< /Type /Annot /Subtype /Text /Rect [50 600 70 620] /Contents (check this) >>`,
	`<< /Title (A Sample Paper) /Author (Someone) /Trapped /False >>`,
}

// writePDF serializes objects (numbered from 1) with a correct cross
// reference table. The last object is used as the Info dictionary.
func writePDF(t *testing.T, objects []string) string {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, len(objects), xref)

	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func ptr(f float64) *float64 { return &f }

// textObjects is a one-page document whose highlight has no /Contents and
// covers the word "Hello" drawn by the page content stream.
func textObjects() []string {
	content := "BT /F1 24 Tf 100 110 Td (Hello) Tj ET\nBT /F1 24 Tf 100 400 Td (Elsewhere) Tj ET"
	widths := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
	return []string{
		`<< /Type /Catalog /Pages 2 0 R >>`,
		`<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>`,
		`<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R /Annots [6 0 R] >>`,
		`<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding ` +
			`/FirstChar 32 /LastChar 126 /Widths [` + widths + `] >>`,
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		`<< /Type /Annot /Subtype /Highlight /Rect [100 100 200 150] ` +
			`/QuadPoints [100 150 200 150 100 100 200 100] >>`,
		`<< /Title (Text Under Highlights) >>`,
	}
}

// --- tests ---

func TestPageSizes(t *testing.T) {
	path := writePDF(t, sampleObjects)
	var r Reader

	sizes, err := r.PageSizes(path)
	require.NoError(t, err)
	assert.Equal(t, []types.PageSize{
		{Width: 612, Height: 792},
		{Width: 595, Height: 842},
	}, sizes)
}

func TestMetadata(t *testing.T) {
	path := writePDF(t, sampleObjects)
	var r Reader

	meta, err := r.Metadata(path)
	require.NoError(t, err)
	assert.Equal(t, "A Sample Paper", meta["title"])
	assert.Equal(t, "Someone", meta["author"])
	assert.NotContains(t, meta, "trapped", "non-text entries are dropped")

	title, ok := meta.Title()
	assert.True(t, ok)
	assert.Equal(t, "A Sample Paper", title)
}

func TestAnnotations(t *testing.T) {
	path := writePDF(t, sampleObjects)
	var r Reader

	annots, err := r.Annotations(path)
	require.NoError(t, err)
	require.Len(t, annots, 2, "link annotations are skipped")

	hl := annots[0]
	assert.Equal(t, types.AnnotHighlight, hl.Subtype)
	assert.Equal(t, 0, hl.Page)
	assert.Equal(t, []types.Box{{X1: 100, Y1: 100, X2: 200, Y2: 150}}, hl.Boxes)
	assert.Equal(t, types.Box{X1: 100, Y1: 100, X2: 200, Y2: 150}, hl.Rect)
	assert.Equal(t, "Hello", hl.Contents)
	assert.Equal(t, "Hello", hl.GetText(true))
	assert.Equal(t, "Reader", hl.Author)
	assert.True(t, hl.Created.Equal(time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)), hl.Created.String())
	assert.Equal(t, []float64{1, 1, 0}, hl.Color)
	assert.Empty(t, hl.PriorOutline)

	note := annots[1]
	assert.Equal(t, types.AnnotText, note.Subtype)
	assert.Equal(t, 1, note.Page)
	assert.Empty(t, note.Boxes, "non-markup annotations get no boxes from their rect")
	assert.Equal(t, "check this", note.GetText(true))
	assert.Equal(t, "Method", note.PriorOutline)
}

func TestAnnotationsCaptureHighlightedText(t *testing.T) {
	path := writePDF(t, textObjects())
	var r Reader

	annots, err := r.Annotations(path)
	require.NoError(t, err)
	require.Len(t, annots, 1)

	hl := annots[0]
	assert.Empty(t, hl.Contents)
	assert.Equal(t, "Hello", hl.Text)
	assert.Equal(t, "Hello", hl.GetText(true))
}

func TestCaptureText(t *testing.T) {
	box := types.Box{X1: 100, Y1: 100, X2: 300, Y2: 150}
	word := func(s string, x, y float64) []Glyph {
		var gs []Glyph
		for _, c := range s {
			gs = append(gs, Glyph{X: x, Y: y, W: 6, Size: 12, S: string(c)})
			x += 6
		}
		return gs
	}
	concat := func(parts ...[]Glyph) []Glyph {
		var out []Glyph
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}

	tests := []struct {
		name   string
		glyphs []Glyph
		boxes  []types.Box
		want   string
	}{
		{name: "no glyphs", boxes: []types.Box{box}, want: ""},
		{name: "no boxes", glyphs: word("Hello", 100, 120), want: ""},
		{
			name:   "glyphs outside are dropped",
			glyphs: concat(word("out", 10, 120), word("in", 120, 120), word("above", 120, 400)),
			boxes:  []types.Box{box},
			want:   "in",
		},
		{
			name:   "gap becomes a space",
			glyphs: concat(word("two", 100, 120), word("words", 140, 120)),
			boxes:  []types.Box{box},
			want:   "two words",
		},
		{
			name:   "space glyph is kept once",
			glyphs: word("two words", 100, 120),
			boxes:  []types.Box{box},
			want:   "two words",
		},
		{
			name:   "new baseline starts a line",
			glyphs: concat(word("hyph-", 100, 135), word("enated", 100, 105)),
			boxes:  []types.Box{box},
			want:   "hyph-\nenated",
		},
		{
			name:   "any box matches",
			glyphs: concat(word("first", 100, 120), word("second", 400, 500)),
			boxes:  []types.Box{box, {X1: 390, Y1: 490, X2: 500, Y2: 520}},
			want:   "first\nsecond",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CaptureText(tt.glyphs, tt.boxes))
		})
	}
}

func TestOpenMissingFile(t *testing.T) {
	var r Reader
	_, err := r.PageSizes(filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading PDF")
}

func TestQuadBoxes(t *testing.T) {
	tests := []struct {
		name string
		quad []float64
		want []types.Box
	}{
		{name: "empty", quad: nil, want: nil},
		{
			name: "single quad in spec order",
			quad: []float64{100, 150, 200, 150, 100, 100, 200, 100},
			want: []types.Box{{X1: 100, Y1: 100, X2: 200, Y2: 150}},
		},
		{
			name: "two lines",
			quad: []float64{
				10, 700, 300, 700, 10, 688, 300, 688,
				10, 686, 120, 686, 10, 674, 120, 674,
			},
			want: []types.Box{
				{X1: 10, Y1: 688, X2: 300, Y2: 700},
				{X1: 10, Y1: 674, X2: 120, Y2: 686},
			},
		},
		{
			name: "rotated quad uses its envelope",
			quad: []float64{0, 10, 10, 20, 10, 0, 20, 10},
			want: []types.Box{{X1: 0, Y1: 0, X2: 20, Y2: 20}},
		},
		{
			name: "trailing partial quad ignored",
			quad: []float64{0, 1, 1, 1, 0, 0, 1, 0, 5, 5},
			want: []types.Box{{X1: 0, Y1: 0, X2: 1, Y2: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuadBoxes(tt.quad))
		})
	}
}

func TestAssignOutlines(t *testing.T) {
	outlines := []types.Outline{
		{Title: "Results", Page: 2, Top: ptr(500)},
		{Title: "Introduction", Page: 0, Top: ptr(700)},
		{Title: "Method", Page: 1},
		{Title: "Discussion", Page: 2, Top: ptr(200)},
	}
	annots := []types.Annotation{
		{Page: 0, Boxes: []types.Box{{X1: 10, Y1: 740, X2: 50, Y2: 750}}},
		{Page: 0, Boxes: []types.Box{{X1: 10, Y1: 600, X2: 50, Y2: 610}}},
		{Page: 1, Rect: types.Box{X1: 10, Y1: 780, X2: 20, Y2: 790}},
		{Page: 2, Boxes: []types.Box{{X1: 10, Y1: 590, X2: 50, Y2: 600}}},
		{Page: 2, Boxes: []types.Box{{X1: 10, Y1: 490, X2: 50, Y2: 500}}},
		{Page: 2, Boxes: []types.Box{{X1: 10, Y1: 100, X2: 50, Y2: 150}}},
		{Page: 5, Boxes: []types.Box{{X1: 10, Y1: 100, X2: 50, Y2: 150}}},
	}

	AssignOutlines(annots, outlines)

	var got []string
	for _, a := range annots {
		got = append(got, a.PriorOutline)
	}
	assert.Equal(t, []string{
		"",             // above the first outline entry
		"Introduction", // below it
		"Method",       // whole-page destination counts as the top
		"Method",       // above Results on its page
		"Results",      // exactly at the Results position
		"Discussion",
		"Discussion", // later pages keep the last entry
	}, got)

	assert.Equal(t, "Results", outlines[0].Title, "input order is not modified")
}

func TestAssignOutlinesWithoutOutlines(t *testing.T) {
	annots := []types.Annotation{{Page: 0, PriorOutline: "kept"}}
	AssignOutlines(annots, nil)
	assert.Equal(t, "kept", annots[0].PriorOutline)
}
