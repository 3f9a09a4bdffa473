// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"math"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// Coordinates converts the marked regions of an annotation from PDF space
// to Logseq viewer space, one rectangle per box in box order. The vertical
// axis is flipped against the page height, which swaps the roles of y1
// and y2. Every rectangle carries the page width and height.
func (d *Document) Coordinates(a types.Annotation) ([]types.Rect, error) {
	size, err := d.pageSize(a.Page)
	if err != nil {
		return nil, err
	}
	rects := make([]types.Rect, len(a.Boxes))
	for i, b := range a.Boxes {
		rects[i] = types.Rect{
			X1:     b.X1,
			Y1:     size.Height - b.Y2,
			X2:     b.X2,
			Y2:     size.Height - b.Y1,
			Width:  size.Width,
			Height: size.Height,
		}
	}
	return rects, nil
}

// Union returns the envelope of rects: the smallest x1/y1, the largest
// x2/y2 and the width/height of the first rectangle. rects must not be
// empty.
func Union(rects []types.Rect) types.Rect {
	if len(rects) == 0 {
		panic("annotation: Union of no rectangles")
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u.X1 = math.Min(u.X1, r.X1)
		u.Y1 = math.Min(u.Y1, r.Y1)
		u.X2 = math.Max(u.X2, r.X2)
		u.Y2 = math.Max(u.Y2, r.Y2)
	}
	return u
}
