// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// Rows returns one row per annotation of any subtype, in document order.
func (d *Document) Rows() []types.Row {
	book := d.Title()
	rows := make([]types.Row, len(d.Entries))
	for i, e := range d.Entries {
		rows[i] = types.Row{
			Text:         e.GetText(true),
			Page:         e.Page + 1,
			Type:         e.Subtype,
			StartXY:      e.StartXY(),
			PriorOutline: e.PriorOutline,
			Created:      e.Created,
			Book:         book,
		}
	}
	return rows
}

// GroupByOutline buckets rows by prior outline title. Buckets appear in the
// order their title is first seen; rows keep document order inside a bucket.
func GroupByOutline(rows []types.Row) *orderedmap.OrderedMap[string, []types.Row] {
	groups := orderedmap.New[string, []types.Row]()
	for _, r := range rows {
		bucket, _ := groups.Get(r.PriorOutline)
		groups.Set(r.PriorOutline, append(bucket, r))
	}
	return groups
}

// ExportMarkdown renders the annotations as Markdown grouped under their
// preceding outline titles, each group a heading of the given level
// (clamped to 1-6) followed by a bullet per annotation. Annotations before
// the first outline entry are listed without a heading.
func (d *Document) ExportMarkdown(level int) string {
	level = min(max(level, 1), 6)
	prefix := strings.Repeat("#", level)

	var sections []string
	groups := GroupByOutline(d.Rows())
	for pair := groups.Oldest(); pair != nil; pair = pair.Next() {
		bullets := make([]string, len(pair.Value))
		for i, r := range pair.Value {
			bullets[i] = "- " + r.Text
		}
		body := strings.Join(bullets, "\n")
		if pair.Key == "" {
			sections = append(sections, body)
			continue
		}
		sections = append(sections, fmt.Sprintf("%s %s \n\n%s", prefix, pair.Key, body))
	}
	return strings.Join(sections, "\n\n")
}
