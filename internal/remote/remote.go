// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package remote appends annotation rows to a row-oriented table, skipping
// rows whose text is already stored. Tables are a Notion database or a
// local SQLite table with the same columns.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// ErrUnsupportedLocator is returned by Open for locators that name no
// known table backend.
var ErrUnsupportedLocator = errors.New("unsupported table locator")

// Frame holds a table column-wise: column name to cell values, one per row.
type Frame map[string][]any

// Len returns the number of rows, taken from the longest column.
func (f Frame) Len() int {
	n := 0
	for _, col := range f {
		n = max(n, len(col))
	}
	return n
}

// Table is a remote store of annotation rows.
type Table interface {
	// Read returns every stored row.
	Read(ctx context.Context) (Frame, error)

	// Append stores rows after the existing ones.
	Append(ctx context.Context, rows []types.Row) error

	io.Closer
}

// Summary holds counts from one AddAnnotations run.
type Summary struct {
	Extracted  int
	Duplicates int
	Appended   int
}

// Exporter pushes the annotations of a document to a Table.
type Exporter struct {
	Table  Table
	Logger logrus.FieldLogger
}

func (e *Exporter) logger() logrus.FieldLogger {
	if e.Logger == nil {
		return logrus.StandardLogger()
	}
	return e.Logger
}

// AddAnnotations converts doc to rows, drops the rows whose text hash
// matches the hash of a text already in the table and appends the rest.
// Rows are not deduplicated against each other, only against stored rows.
func (e *Exporter) AddAnnotations(ctx context.Context, doc *annotation.Document, w io.Writer) (Summary, error) {
	rows := doc.Rows()
	summary := Summary{Extracted: len(rows)}

	stored, err := e.Table.Read(ctx)
	if err != nil {
		return summary, fmt.Errorf("reading table: %w", err)
	}
	seen := storedHashes(stored)
	e.logger().WithFields(logrus.Fields{
		"stored":    stored.Len(),
		"extracted": len(rows),
	}).Debug("comparing annotation rows with table")

	var fresh []types.Row
	for _, r := range rows {
		if seen[hashText(r.Text)] {
			summary.Duplicates++
			continue
		}
		fresh = append(fresh, r)
	}

	if len(fresh) > 0 {
		if err := e.Table.Append(ctx, fresh); err != nil {
			return summary, fmt.Errorf("appending %d rows: %w", len(fresh), err)
		}
	}
	summary.Appended = len(fresh)

	fmt.Fprintf(w, "pushed:  %s (%d new, %d already stored)\n", doc.Path, summary.Appended, summary.Duplicates)
	return summary, nil
}

// storedHashes hashes the text column of a frame. Column names are matched
// case-insensitively.
func storedHashes(f Frame) map[uint64]bool {
	seen := make(map[uint64]bool)
	for name, col := range f {
		if !strings.EqualFold(name, types.ColText) {
			continue
		}
		for _, v := range col {
			if v == nil {
				continue
			}
			seen[hashText(fmt.Sprint(v))] = true
		}
	}
	return seen
}

func hashText(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Open returns the table named by locator:
//
//   - sqlite://<path>#<table> opens (creating if needed) a SQLite table;
//     the table name defaults to "annotations".
//   - a Notion database URL or a bare database id selects a NotionTable
//     that authenticates with apiKey and sends requests through client.
func Open(locator, apiKey string, client *http.Client) (Table, error) {
	if rest, ok := strings.CutPrefix(locator, sqliteScheme); ok {
		path, table, err := parseSQLiteLocator(rest)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path, table)
	}

	id, err := ParseNotionID(locator)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, fmt.Errorf("notion database %s: no API key configured", id)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &NotionTable{
		DatabaseID: id,
		APIKey:     apiKey,
		Version:    types.DefaultNotionVersion,
		Client:     client,
	}, nil
}

// OpenConfig opens the table named by cfg.Database with an HTTP client
// built from cfg.
func OpenConfig(cfg types.TableConfig) (Table, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	t, err := Open(cfg.Database, cfg.APIKey, client)
	if err != nil {
		return nil, err
	}
	if nt, ok := t.(*NotionTable); ok {
		if cfg.NotionVersion != "" {
			nt.Version = cfg.NotionVersion
		}
		nt.UserAgent = cfg.UserAgent
	}
	return t, nil
}
