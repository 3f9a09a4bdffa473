// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package remote

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/export-pdfannots/pkg/types"
)

const (
	sqliteScheme       = "sqlite://"
	defaultSQLiteTable = "annotations"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteTable stores annotation rows in a local SQLite table whose columns
// match types.Columns.
type SQLiteTable struct {
	db    *sql.DB
	table string
}

// parseSQLiteLocator splits "<path>#<table>" (the part after sqlite://).
func parseSQLiteLocator(rest string) (path, table string, err error) {
	path, table = rest, defaultSQLiteTable
	if i := strings.LastIndex(rest, "#"); i >= 0 {
		path, table = rest[:i], rest[i+1:]
	}
	if path == "" {
		return "", "", fmt.Errorf("%w: sqlite locator without a database path", ErrUnsupportedLocator)
	}
	if !tableNameRe.MatchString(table) {
		return "", "", fmt.Errorf("%w: invalid sqlite table name %q", ErrUnsupportedLocator, table)
	}
	return path, table, nil
}

// OpenSQLite opens or creates the database at path and creates table if it
// does not exist.
func OpenSQLite(path, table string) (*SQLiteTable, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid sqlite table name %q", table)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	t := &SQLiteTable{db: db, table: table}
	if err := t.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return t, nil
}

// Close releases the database connection.
func (t *SQLiteTable) Close() error {
	return t.db.Close()
}

func (t *SQLiteTable) createSchema() error {
	stmt := `CREATE TABLE IF NOT EXISTS ` + t.table + ` (
		text TEXT NOT NULL,
		page INTEGER,
		type TEXT,
		start_xy TEXT,
		prior_outline TEXT,
		created TEXT,
		book TEXT
	)`
	if _, err := t.db.Exec(stmt); err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Read returns all rows in insertion order.
func (t *SQLiteTable) Read(ctx context.Context) (Frame, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+strings.Join(types.Columns, ", ")+` FROM `+t.table+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", t.table, err)
	}
	defer rows.Close()

	frame := make(Frame, len(types.Columns))
	for _, c := range types.Columns {
		frame[c] = []any{}
	}
	for rows.Next() {
		var (
			text                               string
			page                               sql.NullInt64
			typ, startXY, prior, created, book sql.NullString
		)
		if err := rows.Scan(&text, &page, &typ, &startXY, &prior, &created, &book); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.table, err)
		}
		frame[types.ColText] = append(frame[types.ColText], text)
		frame[types.ColPage] = append(frame[types.ColPage], nullable(page.Int64, page.Valid))
		frame[types.ColType] = append(frame[types.ColType], nullable(typ.String, typ.Valid))
		frame[types.ColStartXY] = append(frame[types.ColStartXY], nullable(startXY.String, startXY.Valid))
		frame[types.ColPriorOutline] = append(frame[types.ColPriorOutline], nullable(prior.String, prior.Valid))
		frame[types.ColCreated] = append(frame[types.ColCreated], nullable(created.String, created.Valid))
		frame[types.ColBook] = append(frame[types.ColBook], nullable(book.String, book.Valid))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.table, err)
	}
	return frame, nil
}

func nullable[T any](v T, valid bool) any {
	if !valid {
		return nil
	}
	return v
}

// Append inserts rows in one transaction; either all rows are stored or
// none are.
func (t *SQLiteTable) Append(ctx context.Context, rows []types.Row) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(types.Columns)), ", ")
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO `+t.table+` (`+strings.Join(types.Columns, ", ")+`) VALUES (`+placeholders+`)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		values := r.Values()
		args := make([]any, len(types.Columns))
		for j, c := range types.Columns {
			args[j] = values[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
