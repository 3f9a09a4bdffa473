// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/export-pdfannots/internal/httputil"
	"github.com/pdiddy/export-pdfannots/pkg/types"
)

// notionAPIBase is the Notion REST API root. Declared as a var so tests can
// substitute an httptest server.
var notionAPIBase = "https://api.notion.com/v1"

const (
	notionPageSize = 100

	// Notion rejects text objects longer than this many characters.
	notionTextLimit = 2000
)

// NotionTable reads and appends pages of a Notion database. Columns map to
// database properties by case-insensitive name; the text column fills the
// title property when no property is called "text".
type NotionTable struct {
	DatabaseID string
	APIKey     string

	// Version is sent as the Notion-Version header.
	Version string

	UserAgent string
	Client    *http.Client
	Logger    logrus.FieldLogger

	// schema maps property name to property type, loaded on first Append.
	schema map[string]string
}

// ParseNotionID extracts the database id from a Notion URL
// (https://www.notion.so/<workspace>/<title>-<id>?v=...) or a bare id, with
// or without dashes, and returns it in dashed form.
func ParseNotionID(locator string) (string, error) {
	s := strings.TrimSpace(locator)
	if u, err := url.Parse(s); err == nil && u.Scheme != "" {
		host := strings.ToLower(u.Hostname())
		notionHost := host == "notion.so" || strings.HasSuffix(host, ".notion.so") || strings.HasSuffix(host, ".notion.site")
		if (u.Scheme != "https" && u.Scheme != "http") || !notionHost {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedLocator, locator)
		}
		s = path.Base(u.Path)
	}

	compact := strings.ReplaceAll(s, "-", "")
	if len(compact) < 32 {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLocator, locator)
	}
	id, err := uuid.Parse(compact[len(compact)-32:])
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLocator, locator)
	}
	return id.String(), nil
}

func (t *NotionTable) logger() logrus.FieldLogger {
	if t.Logger == nil {
		return logrus.StandardLogger()
	}
	return t.Logger
}

// Close is a no-op; NotionTable holds no connection of its own.
func (t *NotionTable) Close() error { return nil }

type notionRichText struct {
	PlainText string `json:"plain_text"`
}

type notionOption struct {
	Name string `json:"name"`
}

type notionDate struct {
	Start string `json:"start"`
}

// notionProperty is a page property value as returned by the API.
type notionProperty struct {
	Type           string           `json:"type"`
	Title          []notionRichText `json:"title"`
	RichText       []notionRichText `json:"rich_text"`
	Number         *float64         `json:"number"`
	Select         *notionOption    `json:"select"`
	MultiSelect    []notionOption   `json:"multi_select"`
	Date           *notionDate      `json:"date"`
	Checkbox       bool             `json:"checkbox"`
	URL            *string          `json:"url"`
	Email          *string          `json:"email"`
	PhoneNumber    *string          `json:"phone_number"`
	CreatedTime    string           `json:"created_time"`
	LastEditedTime string           `json:"last_edited_time"`
}

type notionPage struct {
	Properties map[string]notionProperty `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor *string      `json:"next_cursor"`
}

type notionDatabase struct {
	Properties map[string]struct {
		Type string `json:"type"`
	} `json:"properties"`
}

// Read queries every page of the database, following pagination cursors.
// Frame columns are the lower-cased property names.
func (t *NotionTable) Read(ctx context.Context) (Frame, error) {
	frame := Frame{}
	n := 0
	var cursor string
	for {
		body := map[string]any{"page_size": notionPageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var qr notionQueryResponse
		if err := t.do(ctx, http.MethodPost, "/databases/"+t.DatabaseID+"/query", body, &qr); err != nil {
			return nil, fmt.Errorf("querying notion database: %w", err)
		}

		for _, page := range qr.Results {
			for col, v := range pageValues(page) {
				for len(frame[col]) < n {
					frame[col] = append(frame[col], nil)
				}
				frame[col] = append(frame[col], v)
			}
			n++
		}

		if !qr.HasMore || qr.NextCursor == nil || *qr.NextCursor == "" {
			break
		}
		cursor = *qr.NextCursor
	}

	for col := range frame {
		for len(frame[col]) < n {
			frame[col] = append(frame[col], nil)
		}
	}
	return frame, nil
}

// pageValues returns the cell values of a page keyed by lower-cased
// property name. Without a property called "text", the title property is
// also reported as the text column.
func pageValues(page notionPage) map[string]any {
	values := make(map[string]any, len(page.Properties)+1)
	title, hasTitle := "", false
	for name, prop := range page.Properties {
		values[strings.ToLower(name)] = propertyValue(prop)
		if prop.Type == "title" {
			title, hasTitle = joinPlainText(prop.Title), true
		}
	}
	if _, ok := values[types.ColText]; !ok && hasTitle {
		values[types.ColText] = title
	}
	return values
}

// propertyValue flattens a property value into a plain cell value.
func propertyValue(p notionProperty) any {
	switch p.Type {
	case "title":
		return joinPlainText(p.Title)
	case "rich_text":
		return joinPlainText(p.RichText)
	case "number":
		if p.Number == nil {
			return nil
		}
		return *p.Number
	case "select":
		if p.Select == nil {
			return nil
		}
		return p.Select.Name
	case "multi_select":
		names := make([]string, len(p.MultiSelect))
		for i, o := range p.MultiSelect {
			names[i] = o.Name
		}
		return strings.Join(names, ", ")
	case "date":
		if p.Date == nil {
			return nil
		}
		return p.Date.Start
	case "checkbox":
		return p.Checkbox
	case "url":
		return derefOrNil(p.URL)
	case "email":
		return derefOrNil(p.Email)
	case "phone_number":
		return derefOrNil(p.PhoneNumber)
	case "created_time":
		return p.CreatedTime
	case "last_edited_time":
		return p.LastEditedTime
	}
	return nil
}

func joinPlainText(parts []notionRichText) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.PlainText)
	}
	return b.String()
}

func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Append creates one database page per row, in order. It stops at the first
// failure; the error reports how many rows were created before it.
func (t *NotionTable) Append(ctx context.Context, rows []types.Row) error {
	if t.schema == nil {
		if err := t.loadSchema(ctx); err != nil {
			return err
		}
	}

	for i, r := range rows {
		body := map[string]any{
			"parent":     map[string]any{"database_id": t.DatabaseID},
			"properties": t.properties(r),
		}
		if err := t.do(ctx, http.MethodPost, "/pages", body, nil); err != nil {
			return fmt.Errorf("creating page for row %d (%d of %d rows written): %w", i, i, len(rows), err)
		}
	}
	return nil
}

func (t *NotionTable) loadSchema(ctx context.Context) error {
	var db notionDatabase
	if err := t.do(ctx, http.MethodGet, "/databases/"+t.DatabaseID, nil, &db); err != nil {
		return fmt.Errorf("retrieving notion database: %w", err)
	}
	t.schema = make(map[string]string, len(db.Properties))
	for name, p := range db.Properties {
		t.schema[name] = p.Type
	}
	return nil
}

// properties encodes a row as page property values for the loaded schema.
func (t *NotionTable) properties(r types.Row) map[string]any {
	values := r.Values()
	props := make(map[string]any)
	titleSet := false

	for _, col := range types.Columns {
		name, typ, ok := t.property(col)
		if !ok {
			t.logger().WithField("column", col).Debug("no matching notion property, column not written")
			continue
		}
		enc, ok := encodeProperty(typ, values[col])
		if !ok {
			t.logger().WithFields(logrus.Fields{"column": col, "type": typ}).Debug("unsupported notion property type")
			continue
		}
		props[name] = enc
		titleSet = titleSet || typ == "title"
	}

	if !titleSet {
		for name, typ := range t.schema {
			if typ == "title" {
				props[name], _ = encodeProperty(typ, values[types.ColText])
				break
			}
		}
	}
	return props
}

// property finds the schema property for a column by case-insensitive name.
func (t *NotionTable) property(col string) (name, typ string, ok bool) {
	for name, typ := range t.schema {
		if strings.EqualFold(name, col) {
			return name, typ, true
		}
	}
	return "", "", false
}

// encodeProperty builds the request value for a property of type typ.
func encodeProperty(typ string, v any) (any, bool) {
	s := cellString(v)
	switch typ {
	case "title":
		return map[string]any{"title": richText(s)}, true
	case "rich_text":
		return map[string]any{"rich_text": richText(s)}, true
	case "number":
		switch n := v.(type) {
		case int:
			return map[string]any{"number": n}, true
		case float64:
			return map[string]any{"number": n}, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return map[string]any{"number": f}, true
		}
		return map[string]any{"number": nil}, true
	case "select":
		if s == "" {
			return map[string]any{"select": nil}, true
		}
		return map[string]any{"select": map[string]any{"name": s}}, true
	case "date":
		if s == "" {
			return map[string]any{"date": nil}, true
		}
		return map[string]any{"date": map[string]any{"start": s}}, true
	case "url", "email", "phone_number":
		if s == "" {
			return map[string]any{typ: nil}, true
		}
		return map[string]any{typ: s}, true
	}
	return nil, false
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// richText splits s into text objects within the per-object length limit.
func richText(s string) []map[string]any {
	parts := []map[string]any{}
	for s != "" {
		cut := 0
		for n := 0; cut < len(s) && n < notionTextLimit; n++ {
			_, size := utf8.DecodeRuneInString(s[cut:])
			cut += size
		}
		chunk := s[:cut]
		s = s[cut:]
		parts = append(parts, map[string]any{
			"type": "text",
			"text": map[string]any{"content": chunk},
		})
	}
	return parts
}

// do sends a JSON request to the Notion API and decodes the response into
// out when out is non-nil.
func (t *NotionTable) do(ctx context.Context, method, endpoint string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, notionAPIBase+endpoint, payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.APIKey)
	version := t.Version
	if version == "" {
		version = types.DefaultNotionVersion
	}
	req.Header.Set("Notion-Version", version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.UserAgent != "" {
		req.Header.Set("User-Agent", t.UserAgent)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return fmt.Errorf("notion API request: %w", err)
	}
	if err := httputil.CheckResponse(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing notion response: %w", err)
	}
	return nil
}
