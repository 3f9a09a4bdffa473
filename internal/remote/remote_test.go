// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package remote

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/export-pdfannots/internal/annotation"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// --- test helpers ---

// memTable is an in-memory Table.
type memTable struct {
	frame    Frame
	appended [][]types.Row
	readErr  error
}

func (m *memTable) Read(context.Context) (Frame, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.frame, nil
}

func (m *memTable) Append(_ context.Context, rows []types.Row) error {
	m.appended = append(m.appended, rows)
	if m.frame == nil {
		m.frame = Frame{}
	}
	for _, r := range rows {
		m.frame[types.ColText] = append(m.frame[types.ColText], r.Text)
	}
	return nil
}

func (m *memTable) Close() error { return nil }

func sampleDoc() *annotation.Document {
	return annotation.FromAnnotations("/papers/sample.pdf",
		[]types.PageSize{{Width: 612, Height: 792}, {Width: 612, Height: 792}},
		types.Metadata{"title": "A Sample Paper"},
		[]types.Annotation{
			{Subtype: types.AnnotHighlight, Page: 0, Boxes: []types.Box{{X1: 100, Y1: 100, X2: 200, Y2: 150}}, Text: "Hello"},
			{Subtype: types.AnnotText, Page: 0, Contents: "check this", PriorOutline: "Intro"},
			{Subtype: types.AnnotUnderline, Page: 1, Boxes: []types.Box{{X1: 10, Y1: 10, X2: 20, Y2: 20}}, Text: "under  lined"},
		})
}

// --- tests ---

func TestFrameLen(t *testing.T) {
	assert.Equal(t, 0, Frame{}.Len())
	assert.Equal(t, 3, Frame{"a": {1, 2}, "b": {1, 2, 3}}.Len())
}

func TestAddAnnotationsAppendsNewRows(t *testing.T) {
	table := &memTable{}
	e := &Exporter{Table: table}

	var buf strings.Builder
	summary, err := e.AddAnnotations(context.Background(), sampleDoc(), &buf)
	require.NoError(t, err)

	assert.Equal(t, Summary{Extracted: 3, Appended: 3}, summary)
	require.Len(t, table.appended, 1)
	rows := table.appended[0]
	assert.Equal(t, "Hello", rows[0].Text)
	assert.Equal(t, "under lined", rows[2].Text, "rows carry normalized text")
	require.NotNil(t, rows[0].Book)
	assert.Equal(t, "A Sample Paper", *rows[0].Book)
	assert.Contains(t, buf.String(), "pushed:  /papers/sample.pdf (3 new, 0 already stored)")
}

func TestAddAnnotationsSkipsStoredText(t *testing.T) {
	table := &memTable{frame: Frame{
		"Text": {"check this", nil, 42},
		"page": {1, 2, 3},
	}}
	e := &Exporter{Table: table}

	var buf strings.Builder
	summary, err := e.AddAnnotations(context.Background(), sampleDoc(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 2, summary.Appended)
	require.Len(t, table.appended, 1)
	for _, r := range table.appended[0] {
		assert.NotEqual(t, "check this", r.Text)
	}
}

func TestAddAnnotationsSecondRunAppendsNothing(t *testing.T) {
	table := &memTable{}
	e := &Exporter{Table: table}
	doc := sampleDoc()

	var buf strings.Builder
	_, err := e.AddAnnotations(context.Background(), doc, &buf)
	require.NoError(t, err)

	summary, err := e.AddAnnotations(context.Background(), doc, &buf)
	require.NoError(t, err)
	assert.Equal(t, Summary{Extracted: 3, Duplicates: 3}, summary)
	assert.Len(t, table.appended, 1, "no append call when nothing is new")
}

func TestAddAnnotationsKeepsDuplicatesWithinDocument(t *testing.T) {
	doc := annotation.FromAnnotations("twice.pdf", []types.PageSize{{Width: 10, Height: 10}}, nil, []types.Annotation{
		{Subtype: types.AnnotText, Contents: "same"},
		{Subtype: types.AnnotText, Contents: "same"},
	})
	table := &memTable{}
	e := &Exporter{Table: table}

	var buf strings.Builder
	summary, err := e.AddAnnotations(context.Background(), doc, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Appended)
	assert.Nil(t, table.appended[0][0].Book)
}

func TestAddAnnotationsReadError(t *testing.T) {
	table := &memTable{readErr: errors.New("connection refused")}
	e := &Exporter{Table: table}

	var buf strings.Builder
	_, err := e.AddAnnotations(context.Background(), sampleDoc(), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, table.appended)
}

func TestAddAnnotationsSQLiteEndToEnd(t *testing.T) {
	locator := "sqlite://" + filepath.Join(t.TempDir(), "annots.db") + "#reading"
	table, err := Open(locator, "", nil)
	require.NoError(t, err)
	defer table.Close()

	e := &Exporter{Table: table}
	doc := sampleDoc()

	var buf strings.Builder
	first, err := e.AddAnnotations(context.Background(), doc, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Appended)

	second, err := e.AddAnnotations(context.Background(), doc, &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Appended)
	assert.Equal(t, 3, second.Duplicates)

	frame, err := table.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, frame.Len())
}

func TestOpen(t *testing.T) {
	t.Run("sqlite locator", func(t *testing.T) {
		table, err := Open("sqlite://"+filepath.Join(t.TempDir(), "a.db"), "", nil)
		require.NoError(t, err)
		defer table.Close()
		st, ok := table.(*SQLiteTable)
		require.True(t, ok)
		assert.Equal(t, defaultSQLiteTable, st.table)
	})

	t.Run("notion url", func(t *testing.T) {
		table, err := Open("https://www.notion.so/me/Reading-0123456789abcdef0123456789abcdef?v=1", "secret", nil)
		require.NoError(t, err)
		nt, ok := table.(*NotionTable)
		require.True(t, ok)
		assert.Equal(t, "01234567-89ab-cdef-0123-456789abcdef", nt.DatabaseID)
		assert.Equal(t, types.DefaultNotionVersion, nt.Version)
		assert.NotNil(t, nt.Client)
	})

	t.Run("notion without key", func(t *testing.T) {
		_, err := Open("0123456789abcdef0123456789abcdef", "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no API key")
	})

	t.Run("unsupported", func(t *testing.T) {
		for _, loc := range []string{"postgres://db/annots", "annots.db", "sqlite://#table", "sqlite://a.db#drop table"} {
			_, err := Open(loc, "secret", nil)
			assert.ErrorIs(t, err, ErrUnsupportedLocator, loc)
		}
	})
}

func TestOpenConfig(t *testing.T) {
	table, err := OpenConfig(types.TableConfig{
		HTTPConfig:    types.HTTPConfig{UserAgent: "export-pdfannots/test"},
		Database:      "0123456789abcdef0123456789abcdef",
		APIKey:        "secret",
		NotionVersion: "2025-09-03",
	})
	require.NoError(t, err)
	nt := table.(*NotionTable)
	assert.Equal(t, "2025-09-03", nt.Version)
	assert.Equal(t, "export-pdfannots/test", nt.UserAgent)
}
