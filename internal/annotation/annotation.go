// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotation turns the annotations of a PDF into Logseq highlight
// data, Logseq note blocks, tabular rows and grouped Markdown notes.
//
// PDF user space has its origin at the bottom-left corner of the page while
// the Logseq PDF viewer measures from the top-left, so every exported
// rectangle is flipped vertically against the page height.
package annotation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// ErrPageGeometry is returned when an annotation refers to a page whose
// size was not loaded.
var ErrPageGeometry = errors.New("page geometry not available")

// newID generates highlight identifiers. Tests replace it for stable output.
var newID = uuid.NewString

// Reader loads the pieces of a PDF that the exporters need. Each method
// reads the file independently.
type Reader interface {
	PageSizes(path string) ([]types.PageSize, error)
	Metadata(path string) (types.Metadata, error)
	Annotations(path string) ([]types.Annotation, error)
}

// Entry pairs an annotation read from the PDF with the identifier
// generated for it in this extraction run.
type Entry struct {
	types.Annotation
	ID string
}

// Document holds everything extracted from one PDF.
type Document struct {
	Path      string
	PageSizes []types.PageSize
	Metadata  types.Metadata
	Entries   []Entry
}

// New reads page sizes, metadata and annotations of the PDF at path and
// assigns a fresh identifier to every annotation. Identifiers are random,
// so two extractions of the same file never share them.
func New(path string, r Reader) (*Document, error) {
	sizes, err := r.PageSizes(path)
	if err != nil {
		return nil, fmt.Errorf("loading page sizes: %w", err)
	}
	meta, err := r.Metadata(path)
	if err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	annots, err := r.Annotations(path)
	if err != nil {
		return nil, fmt.Errorf("loading annotations: %w", err)
	}
	return FromAnnotations(path, sizes, meta, annots), nil
}

// FromAnnotations builds a Document from already loaded parts, generating
// an identifier for each annotation.
func FromAnnotations(path string, sizes []types.PageSize, meta types.Metadata, annots []types.Annotation) *Document {
	if meta == nil {
		meta = types.Metadata{}
	}
	entries := make([]Entry, len(annots))
	for i, a := range annots {
		entries[i] = Entry{Annotation: a, ID: newID()}
	}
	return &Document{
		Path:      path,
		PageSizes: sizes,
		Metadata:  meta,
		Entries:   entries,
	}
}

// Title returns the document title from the PDF metadata, or nil.
func (d *Document) Title() *string {
	if t, ok := d.Metadata.Title(); ok {
		return &t
	}
	return nil
}

// pageSize returns the geometry of the zero-based page index.
func (d *Document) pageSize(page int) (types.PageSize, error) {
	if page < 0 || page >= len(d.PageSizes) {
		return types.PageSize{}, fmt.Errorf("page index %d of %d pages: %w", page, len(d.PageSizes), ErrPageGeometry)
	}
	return d.PageSizes[page], nil
}
