// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotation

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"olympos.io/encoding/edn"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// Highlights builds the Logseq highlight entries for every Highlight
// annotation in document order, tagged with color. Highlights without any
// marked region have no position and are left out.
func (d *Document) Highlights(color string) ([]types.Highlight, error) {
	if color == "" {
		color = types.DefaultColor
	}
	highlights := make([]types.Highlight, 0, len(d.Entries))
	for _, e := range d.Entries {
		if e.Subtype != types.AnnotHighlight || len(e.Boxes) == 0 {
			continue
		}
		rects, err := d.Coordinates(e.Annotation)
		if err != nil {
			return nil, fmt.Errorf("highlight %s: %w", e.ID, err)
		}
		page := e.Page + 1
		highlights = append(highlights, types.Highlight{
			ID:   types.HighlightID(e.ID),
			Page: page,
			Position: types.Position{
				Bounding: Union(rects),
				Rects:    rects,
				Page:     page,
			},
			Content:    types.HighlightContent{Text: e.GetText(false)},
			Properties: types.HighlightProperties{Color: color},
		})
	}
	return highlights, nil
}

// ExportEDN encodes the highlights as a Logseq .edn document:
// {:highlights [...]}.
func (d *Document) ExportEDN(color string) (string, error) {
	highlights, err := d.Highlights(color)
	if err != nil {
		return "", err
	}
	data, err := edn.Marshal(types.HighlightFile{Highlights: highlights})
	if err != nil {
		return "", fmt.Errorf("encoding EDN: %w", err)
	}
	return string(data), nil
}

// WriteEDN writes the .edn document to path, replacing any existing file.
func (d *Document) WriteEDN(path, color string) error {
	s, err := d.ExportEDN(color)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// NoteItems returns one Logseq block per annotation of any subtype, in
// document order. Block properties are ls-type, hl-page and id, in that
// order.
func (d *Document) NoteItems() []types.NoteItem {
	items := make([]types.NoteItem, len(d.Entries))
	for i, e := range d.Entries {
		items[i] = types.NoteItem{
			Text: e.GetText(true),
			Properties: []types.NoteProperty{
				{Key: "ls-type::", Value: "annotation"},
				{Key: "hl-page::", Value: strconv.Itoa(e.Page + 1)},
				{Key: "id::", Value: e.ID},
			},
		}
	}
	return items
}

// ExportNote renders NoteItems as Logseq page content.
func (d *Document) ExportNote() string {
	return RenderNote(d.NoteItems())
}

// RenderNote writes each item as "- <text>" followed by one indented
// "<key> <value>" line per property.
func RenderNote(items []types.NoteItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item.Text)
		for _, p := range item.Properties {
			fmt.Fprintf(&b, "  %s %s\n", p.Key, p.Value)
		}
	}
	return b.String()
}
