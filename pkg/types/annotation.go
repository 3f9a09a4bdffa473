// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for export-pdfannots: the
// annotation records read from a PDF, the geometry handed to Logseq, and the
// rows pushed to remote tables.
package types

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// AnnotationType is the PDF annotation subtype name (the /Subtype entry).
type AnnotationType string

const (
	AnnotText      AnnotationType = "Text"
	AnnotFreeText  AnnotationType = "FreeText"
	AnnotHighlight AnnotationType = "Highlight"
	AnnotUnderline AnnotationType = "Underline"
	AnnotStrikeOut AnnotationType = "StrikeOut"
	AnnotSquiggly  AnnotationType = "Squiggly"
	AnnotCaret     AnnotationType = "Caret"
	AnnotInk       AnnotationType = "Ink"
	AnnotSquare    AnnotationType = "Square"
	AnnotCircle    AnnotationType = "Circle"
	AnnotLine      AnnotationType = "Line"
	AnnotPolygon   AnnotationType = "Polygon"
	AnnotPolyLine  AnnotationType = "PolyLine"
	AnnotStamp     AnnotationType = "Stamp"
)

// supportedTypes lists the subtypes read from a PDF. Links, widgets, popups
// and other non-note annotations are ignored.
var supportedTypes = map[AnnotationType]bool{
	AnnotText: true, AnnotFreeText: true, AnnotHighlight: true, AnnotUnderline: true,
	AnnotStrikeOut: true, AnnotSquiggly: true, AnnotCaret: true, AnnotInk: true,
	AnnotSquare: true, AnnotCircle: true, AnnotLine: true, AnnotPolygon: true,
	AnnotPolyLine: true, AnnotStamp: true,
}

// Supported reports whether annotations of this subtype are extracted.
func (t AnnotationType) Supported() bool {
	return supportedTypes[t]
}

// IsMarkup reports whether the subtype marks up page text (and therefore
// carries captured text rather than a free-standing comment).
func (t AnnotationType) IsMarkup() bool {
	switch t {
	case AnnotHighlight, AnnotUnderline, AnnotStrikeOut, AnnotSquiggly:
		return true
	}
	return false
}

// PageSize holds a page MediaBox. Width and Height are the upper-right
// corner of the box, which equal the page width and height for boxes
// anchored at the origin.
type PageSize struct {
	X0     float64 `json:"x0" yaml:"x0"`
	Y0     float64 `json:"y0" yaml:"y0"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Metadata maps lower-cased document info keys (title, author, ...) to
// decoded values.
type Metadata map[string]string

// Title returns the document title and whether one was present.
func (m Metadata) Title() (string, bool) {
	t, ok := m["title"]
	return t, ok
}

// Box is a rectangle in PDF user space (origin at the bottom-left corner).
type Box struct {
	X1 float64 `json:"x1" yaml:"x1"`
	Y1 float64 `json:"y1" yaml:"y1"`
	X2 float64 `json:"x2" yaml:"x2"`
	Y2 float64 `json:"y2" yaml:"y2"`
}

// Point is a position in PDF user space.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Annotation is a single annotation as read from the PDF.
type Annotation struct {
	// Subtype is the PDF annotation subtype.
	Subtype AnnotationType `json:"subtype" yaml:"subtype"`

	// Page is the zero-based page index.
	Page int `json:"page" yaml:"page"`

	// Boxes are the marked regions, one per quadrilateral, in PDF space.
	Boxes []Box `json:"boxes,omitempty" yaml:"boxes,omitempty"`

	// Rect is the annotation rectangle (/Rect).
	Rect Box `json:"rect" yaml:"rect"`

	// Text is the text captured under a markup annotation.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Contents is the annotation comment (/Contents).
	Contents string `json:"contents,omitempty" yaml:"contents,omitempty"`

	// Author is the annotation author (/T).
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Created is the creation date, falling back to the modification date.
	Created time.Time `json:"created,omitempty" yaml:"created,omitempty"`

	// Color holds the /C components (gray, RGB or CMYK).
	Color []float64 `json:"color,omitempty" yaml:"color,omitempty"`

	// PriorOutline is the title of the nearest outline entry at or before
	// the start of the annotation.
	PriorOutline string `json:"prior_outline,omitempty" yaml:"prior_outline,omitempty"`
}

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	hyphenated = regexp.MustCompile(`(\p{L})-\s*\n\s*(\p{L})`)
)

// GetText returns the text an annotation contributes to a note. Markup
// annotations yield their captured text, falling back to the comment when
// nothing was captured; other subtypes yield their comment.
//
// With normalize set, hyphenation at line ends is joined, whitespace runs
// collapse to single spaces, the result is trimmed and compatibility
// characters (ligatures and the like) are folded.
func (a Annotation) GetText(normalize bool) string {
	text := a.Contents
	if a.Subtype.IsMarkup() && a.Text != "" {
		text = a.Text
	}
	if !normalize {
		return text
	}
	text = norm.NFKC.String(text)
	text = hyphenated.ReplaceAllString(text, "$1$2")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// StartXY is the top-left corner of the first marked region, or of the
// annotation rectangle when there are no regions.
func (a Annotation) StartXY() Point {
	if len(a.Boxes) > 0 {
		return Point{X: a.Boxes[0].X1, Y: a.Boxes[0].Y2}
	}
	return Point{X: a.Rect.X1, Y: a.Rect.Y2}
}

// Outline is a document outline (bookmark) entry resolved to a page position.
type Outline struct {
	Title string `json:"title" yaml:"title"`

	// Page is the zero-based target page index.
	Page int `json:"page" yaml:"page"`

	// Top is the target y coordinate, nil when the destination does not
	// name one (the whole page).
	Top *float64 `json:"top,omitempty" yaml:"top,omitempty"`
}
