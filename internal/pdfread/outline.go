// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfread

import (
	"fmt"
	"math"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// outlines walks the document outline tree depth-first and returns every
// entry whose destination resolves to a page. pageIndex maps page object
// numbers to zero-based page indices.
func (r *Reader) outlines(ctx *model.Context, pageIndex map[int]int) ([]types.Outline, error) {
	catalog, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	o, ok := catalog["Outlines"]
	if !ok {
		return nil, nil
	}
	root, err := ctx.DereferenceDict(o)
	if err != nil || root == nil {
		r.logger().Debug("ignoring unreadable outline root")
		return nil, nil
	}

	var named pdftypes.Dict
	if o, ok := catalog["Dests"]; ok {
		named, _ = ctx.DereferenceDict(o)
	}

	var out []types.Outline
	seen := map[int]bool{}
	var walk func(item pdftypes.Object)
	walk = func(item pdftypes.Object) {
		for item != nil {
			if ref, ok := item.(pdftypes.IndirectRef); ok {
				if seen[int(ref.ObjectNumber)] {
					return
				}
				seen[int(ref.ObjectNumber)] = true
			}
			d, err := ctx.DereferenceDict(item)
			if err != nil || d == nil {
				return
			}
			title, _ := text(ctx, d["Title"])
			if ol, ok := r.resolveDest(ctx, destOf(ctx, d), named, pageIndex); ok {
				ol.Title = title
				out = append(out, ol)
			} else {
				r.logger().WithField("title", title).Debug("outline entry has no resolvable destination")
			}
			if kid, ok := d["First"]; ok {
				walk(kid)
			}
			item = d["Next"]
		}
	}
	walk(root["First"])
	return out, nil
}

// destOf returns the destination of an outline item, either /Dest or the
// /D entry of a GoTo action.
func destOf(ctx *model.Context, d pdftypes.Dict) pdftypes.Object {
	if dest, ok := d["Dest"]; ok {
		return dest
	}
	action, err := ctx.DereferenceDict(d["A"])
	if err != nil || action == nil {
		return nil
	}
	if nameOf(ctx, action["S"]) != "GoTo" {
		return nil
	}
	return action["D"]
}

func (r *Reader) resolveDest(ctx *model.Context, dest pdftypes.Object, named pdftypes.Dict, pageIndex map[int]int) (types.Outline, bool) {
	if dest == nil {
		return types.Outline{}, false
	}
	dest, err := ctx.Dereference(dest)
	if err != nil {
		return types.Outline{}, false
	}

	switch v := dest.(type) {
	case pdftypes.Name, pdftypes.StringLiteral, pdftypes.HexLiteral:
		if named == nil {
			return types.Outline{}, false
		}
		key := nameOf(ctx, v)
		if key == "" {
			key, _ = text(ctx, v)
		}
		target, ok := named[key]
		if !ok {
			return types.Outline{}, false
		}
		// Old-style named destinations may wrap the array in a dict.
		if d, err := ctx.DereferenceDict(target); err == nil && d != nil {
			target = d["D"]
		}
		return r.resolveDest(ctx, target, nil, pageIndex)
	case pdftypes.Dict:
		return r.resolveDest(ctx, v["D"], named, pageIndex)
	case pdftypes.Array:
		return explicitDest(ctx, v, pageIndex)
	}
	return types.Outline{}, false
}

// explicitDest decodes [page /XYZ left top zoom], [page /FitH top] and
// [page /FitBH top]. Other fit types resolve to the whole page.
func explicitDest(ctx *model.Context, arr pdftypes.Array, pageIndex map[int]int) (types.Outline, bool) {
	if len(arr) == 0 {
		return types.Outline{}, false
	}

	var ol types.Outline
	switch p := arr[0].(type) {
	case pdftypes.IndirectRef:
		idx, ok := pageIndex[int(p.ObjectNumber)]
		if !ok {
			return types.Outline{}, false
		}
		ol.Page = idx
	case pdftypes.Integer:
		ol.Page = int(p)
	default:
		return types.Outline{}, false
	}

	topAt := -1
	if len(arr) > 1 {
		switch nameOf(ctx, arr[1]) {
		case "XYZ":
			topAt = 3
		case "FitH", "FitBH":
			topAt = 2
		}
	}
	if topAt > 0 && topAt < len(arr) {
		if top, err := number(ctx, arr[topAt]); err == nil {
			ol.Top = &top
		}
	}
	return ol, true
}

// AssignOutlines sets PriorOutline on every annotation to the title of the
// last outline entry positioned at or before the annotation start in
// reading order (page ascending, then top of page downwards). Entries
// without a vertical position count as the top of their page.
func AssignOutlines(annots []types.Annotation, outlines []types.Outline) {
	if len(outlines) == 0 {
		return
	}
	sorted := make([]types.Outline, len(outlines))
	copy(sorted, outlines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return outlineTop(sorted[i]) > outlineTop(sorted[j])
	})

	for i := range annots {
		start := annots[i].StartXY()
		title := ""
		for _, ol := range sorted {
			if ol.Page > annots[i].Page {
				break
			}
			if ol.Page == annots[i].Page && outlineTop(ol) < start.Y {
				break
			}
			title = ol.Title
		}
		annots[i].PriorOutline = title
	}
}

func outlineTop(ol types.Outline) float64 {
	if ol.Top == nil {
		return math.Inf(1)
	}
	return *ol.Top
}
