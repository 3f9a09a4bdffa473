// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfread reads page geometry, document metadata, annotations and
// outlines from PDF files using pdfcpu. The text under markup annotations
// is taken from the positioned glyphs of the page content stream.
package pdfread

import (
	"fmt"
	"math"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// Reader loads PDF data with pdfcpu. Every call opens and parses the file
// independently. The zero value is ready to use.
type Reader struct {
	// Logger receives diagnostics about skipped objects. Defaults to the
	// logrus standard logger.
	Logger logrus.FieldLogger
}

func (r *Reader) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

func open(path string) (*model.Context, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", path, err)
	}
	return ctx, nil
}

// PageSizes returns the MediaBox of every page in page order.
func (r *Reader) PageSizes(path string) ([]types.PageSize, error) {
	ctx, err := open(path)
	if err != nil {
		return nil, err
	}

	sizes := make([]types.PageSize, 0, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		d, _, inherited, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", pageNr, err)
		}
		size, err := mediaBox(ctx, d, inherited)
		if err != nil {
			return nil, fmt.Errorf("reading page %d media box: %w", pageNr, err)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func mediaBox(ctx *model.Context, d pdftypes.Dict, inherited *model.InheritedPageAttrs) (types.PageSize, error) {
	if o, ok := d["MediaBox"]; ok {
		nums, err := numberArray(ctx, o)
		if err != nil {
			return types.PageSize{}, err
		}
		if len(nums) != 4 {
			return types.PageSize{}, fmt.Errorf("media box has %d entries", len(nums))
		}
		return types.PageSize{X0: nums[0], Y0: nums[1], Width: nums[2], Height: nums[3]}, nil
	}
	if inherited != nil && inherited.MediaBox != nil {
		mb := inherited.MediaBox
		return types.PageSize{X0: mb.LL.X, Y0: mb.LL.Y, Width: mb.UR.X, Height: mb.UR.Y}, nil
	}
	return types.PageSize{}, fmt.Errorf("page has no media box")
}

// Metadata returns the document info dictionary with lower-cased keys.
// Entries that are not text, or whose text cannot be decoded, are dropped.
func (r *Reader) Metadata(path string) (types.Metadata, error) {
	ctx, err := open(path)
	if err != nil {
		return nil, err
	}

	meta := types.Metadata{}
	if ctx.Info == nil {
		return meta, nil
	}
	info, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil {
		return nil, fmt.Errorf("reading info dictionary: %w", err)
	}
	for key, o := range info {
		s, err := text(ctx, o)
		if err != nil {
			r.logger().WithFields(logrus.Fields{"key": key, "error": err}).Debug("dropping metadata field")
			continue
		}
		meta[strings.ToLower(key)] = s
	}
	return meta, nil
}

// Annotations returns the supported annotations of every page in document
// order, each tagged with the title of its preceding outline entry.
func (r *Reader) Annotations(path string) ([]types.Annotation, error) {
	ctx, err := open(path)
	if err != nil {
		return nil, err
	}

	var annots []types.Annotation
	pageIndex := make(map[int]int, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		d, ref, _, err := ctx.PageDict(pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", pageNr, err)
		}
		if ref != nil {
			pageIndex[int(ref.ObjectNumber)] = pageNr - 1
		}
		o, ok := d["Annots"]
		if !ok {
			continue
		}
		arr, err := ctx.DereferenceArray(o)
		if err != nil {
			return nil, fmt.Errorf("reading page %d annotations: %w", pageNr, err)
		}
		for _, item := range arr {
			ad, err := ctx.DereferenceDict(item)
			if err != nil || ad == nil {
				r.logger().WithField("page", pageNr).Debug("skipping unreadable annotation")
				continue
			}
			a, ok := r.annotation(ctx, ad, pageNr-1)
			if !ok {
				continue
			}
			annots = append(annots, a)
		}
	}

	outlines, err := r.outlines(ctx, pageIndex)
	if err != nil {
		return nil, err
	}
	AssignOutlines(annots, outlines)
	r.captureText(path, annots)
	return annots, nil
}

func (r *Reader) annotation(ctx *model.Context, d pdftypes.Dict, page int) (types.Annotation, bool) {
	subtype := types.AnnotationType(nameOf(ctx, d["Subtype"]))
	if !subtype.Supported() {
		return types.Annotation{}, false
	}

	a := types.Annotation{Subtype: subtype, Page: page}
	if nums, err := numberArray(ctx, d["Rect"]); err == nil && len(nums) == 4 {
		a.Rect = normalizeBox(nums[0], nums[1], nums[2], nums[3])
	}
	if o, ok := d["QuadPoints"]; ok {
		nums, err := numberArray(ctx, o)
		if err != nil {
			r.logger().WithFields(logrus.Fields{"page": page + 1, "error": err}).Debug("ignoring quad points")
		} else {
			a.Boxes = QuadBoxes(nums)
		}
	}
	if len(a.Boxes) == 0 && subtype.IsMarkup() && a.Rect != (types.Box{}) {
		a.Boxes = []types.Box{a.Rect}
	}
	a.Contents, _ = text(ctx, d["Contents"])
	a.Author, _ = text(ctx, d["T"])
	for _, key := range []string{"CreationDate", "M"} {
		s, err := text(ctx, d[key])
		if err != nil {
			continue
		}
		if t, ok := pdftypes.DateTime(s, true); ok {
			a.Created = t
			break
		}
	}
	if o, ok := d["C"]; ok {
		a.Color, _ = numberArray(ctx, o)
	}
	return a, true
}

// QuadBoxes converts a /QuadPoints array into one bounding box per
// quadrilateral. Trailing values that do not form a full quadrilateral are
// ignored.
func QuadBoxes(quad []float64) []types.Box {
	var boxes []types.Box
	for i := 0; i+8 <= len(quad); i += 8 {
		q := quad[i : i+8]
		minX, maxX := math.Inf(1), math.Inf(-1)
		minY, maxY := math.Inf(1), math.Inf(-1)
		for j := 0; j < 8; j += 2 {
			minX, maxX = math.Min(minX, q[j]), math.Max(maxX, q[j])
			minY, maxY = math.Min(minY, q[j+1]), math.Max(maxY, q[j+1])
		}
		boxes = append(boxes, types.Box{X1: minX, Y1: minY, X2: maxX, Y2: maxY})
	}
	return boxes
}

func normalizeBox(x1, y1, x2, y2 float64) types.Box {
	return types.Box{
		X1: math.Min(x1, x2), Y1: math.Min(y1, y2),
		X2: math.Max(x1, x2), Y2: math.Max(y1, y2),
	}
}

// text decodes a PDF string object (literal or hex) to UTF-8.
func text(ctx *model.Context, o pdftypes.Object) (string, error) {
	if o == nil {
		return "", fmt.Errorf("missing value")
	}
	o, err := ctx.Dereference(o)
	if err != nil {
		return "", err
	}
	switch v := o.(type) {
	case pdftypes.StringLiteral:
		return pdftypes.StringLiteralToString(v)
	case pdftypes.HexLiteral:
		return pdftypes.HexLiteralToString(v)
	}
	return "", fmt.Errorf("not a string: %T", o)
}

func nameOf(ctx *model.Context, o pdftypes.Object) string {
	if o == nil {
		return ""
	}
	o, err := ctx.Dereference(o)
	if err != nil {
		return ""
	}
	if n, ok := o.(pdftypes.Name); ok {
		return string(n)
	}
	return ""
}

func number(ctx *model.Context, o pdftypes.Object) (float64, error) {
	o, err := ctx.Dereference(o)
	if err != nil {
		return 0, err
	}
	switch v := o.(type) {
	case pdftypes.Integer:
		return float64(v), nil
	case pdftypes.Float:
		return float64(v), nil
	}
	return 0, fmt.Errorf("not a number: %T", o)
}

func numberArray(ctx *model.Context, o pdftypes.Object) ([]float64, error) {
	if o == nil {
		return nil, fmt.Errorf("missing array")
	}
	arr, err := ctx.DereferenceArray(o)
	if err != nil {
		return nil, err
	}
	nums := make([]float64, 0, len(arr))
	for _, item := range arr {
		f, err := number(ctx, item)
		if err != nil {
			return nil, err
		}
		nums = append(nums, f)
	}
	return nums, nil
}
