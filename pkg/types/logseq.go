// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strconv"

// Rect is a rectangle in Logseq viewer space (origin at the top-left
// corner) together with the page dimensions it was measured against.
type Rect struct {
	X1     float64 `json:"x1" yaml:"x1" edn:"x1"`
	Y1     float64 `json:"y1" yaml:"y1" edn:"y1"`
	X2     float64 `json:"x2" yaml:"x2" edn:"x2"`
	Y2     float64 `json:"y2" yaml:"y2" edn:"y2"`
	Width  float64 `json:"width" yaml:"width" edn:"width"`
	Height float64 `json:"height" yaml:"height" edn:"height"`
}

// Position locates a highlight on its page: the envelope of all marked
// regions plus the regions themselves.
type Position struct {
	Bounding Rect   `json:"bounding" yaml:"bounding" edn:"bounding"`
	Rects    []Rect `json:"rects" yaml:"rects" edn:"rects,list"`

	// Page is the one-based page number.
	Page int `json:"page" yaml:"page" edn:"page"`
}

// HighlightID is a highlight identifier. It encodes as an EDN #uuid literal.
type HighlightID string

// MarshalEDN writes the identifier as a tagged #uuid string.
func (id HighlightID) MarshalEDN() ([]byte, error) {
	return []byte("#uuid " + strconv.Quote(string(id))), nil
}

// HighlightContent holds the highlighted text.
type HighlightContent struct {
	Text string `json:"text" yaml:"text" edn:"text"`
}

// HighlightProperties holds display properties of a highlight.
type HighlightProperties struct {
	Color string `json:"color" yaml:"color" edn:"color"`
}

// Highlight is one entry of a Logseq highlights file.
type Highlight struct {
	ID         HighlightID         `json:"id" yaml:"id" edn:"id"`
	Page       int                 `json:"page" yaml:"page" edn:"page"`
	Position   Position            `json:"position" yaml:"position" edn:"position"`
	Content    HighlightContent    `json:"content" yaml:"content" edn:"content"`
	Properties HighlightProperties `json:"properties" yaml:"properties" edn:"properties"`
}

// HighlightFile is the top-level document of a Logseq .edn highlights file.
type HighlightFile struct {
	Highlights []Highlight `json:"highlights" yaml:"highlights" edn:"highlights"`
}

// NoteItem is one block of a generated Logseq page: the annotation text
// followed by its block properties, in render order.
type NoteItem struct {
	Text       string
	Properties []NoteProperty
}

// NoteProperty is a single `key value` line under a note block.
type NoteProperty struct {
	Key   string
	Value string
}
