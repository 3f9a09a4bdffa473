// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Column names of the tabular export, in table order.
const (
	ColText         = "text"
	ColPage         = "page"
	ColType         = "type"
	ColStartXY      = "start_xy"
	ColPriorOutline = "prior_outline"
	ColCreated      = "created"
	ColBook         = "book"
)

// Columns lists the table columns written by remote exporters.
var Columns = []string{ColText, ColPage, ColType, ColStartXY, ColPriorOutline, ColCreated, ColBook}

// Row is one annotation in tabular form.
type Row struct {
	Text string `json:"text" yaml:"text"`

	// Page is the one-based page number.
	Page int `json:"page" yaml:"page"`

	Type AnnotationType `json:"type" yaml:"type"`

	StartXY Point `json:"start_xy" yaml:"start_xy"`

	PriorOutline string `json:"prior_outline" yaml:"prior_outline"`

	Created time.Time `json:"created" yaml:"created"`

	// Book is the document title; nil when the PDF has none.
	Book *string `json:"book" yaml:"book"`
}

// Values returns the row as column name to cell value. Coordinates are
// rendered as "x,y", timestamps as RFC 3339 (empty when unknown) and a
// missing book as nil.
func (r Row) Values() map[string]any {
	created := ""
	if !r.Created.IsZero() {
		created = r.Created.UTC().Format(time.RFC3339)
	}
	var book any
	if r.Book != nil {
		book = *r.Book
	}
	return map[string]any{
		ColText:         r.Text,
		ColPage:         r.Page,
		ColType:         string(r.Type),
		ColStartXY:      fmt.Sprintf("%g,%g", r.StartXY.X, r.StartXY.Y),
		ColPriorOutline: r.PriorOutline,
		ColCreated:      created,
		ColBook:         book,
	}
}
