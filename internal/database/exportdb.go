package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/relevador/internal/model"
	"github.com/nao1215/relevador/internal/report"
)

// Table names besides the two report tables.
const (
	HitsTable  = "coincidencias"
	PagesTable = "paginas"
)

// ExportDB is a SQLite file holding the tables of one survey run.
type ExportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the path to the SQLite database file.
	path string
}

// Options configures ExportDB behavior.
type Options struct {
	// Recreate removes an existing file before opening, so the export
	// only ever holds one run.
	Recreate bool

	// EnableWAL enables Write-Ahead Logging. It leaves -wal and -shm files
	// next to the database, so it is off for exports.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		Recreate:  true,
		EnableWAL: false,
	}
}

// Open opens or creates an ExportDB at path, creating its directory.
func Open(path string, opts Options) (*ExportDB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if opts.Recreate {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove previous export: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return &ExportDB{db: db, path: path}, nil
}

// Close closes the database connection.
func (e *ExportDB) Close() error {
	return e.db.Close()
}

// Path returns the database file path.
func (e *ExportDB) Path() string {
	return e.path
}

// WriteTable creates a table for t and inserts its rows, tagged with runID.
// Column names are derived from the header: lower case, accents removed,
// other characters replaced by underscores. Values keep their own type,
// so counts are stored as integers.
func (e *ExportDB) WriteTable(ctx context.Context, runID string, t report.Table) error {
	name := identifier(t.Name)
	columns := columnNames(t.Header)

	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = quote(c)
	}
	schema := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY AUTOINCREMENT, run_id TEXT NOT NULL, %s)",
		quote(name), strings.Join(defs, ", "),
	)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)+1), ", ")
	insert := fmt.Sprintf("INSERT INTO %s (run_id, %s) VALUES (%s)",
		quote(name), strings.Join(defs, ", "), placeholders)

	return e.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create table %s: %w", name, err)
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", name, err)
		}
		defer stmt.Close()

		for _, row := range t.Rows {
			args := make([]any, 0, len(row)+1)
			args = append(args, runID)
			for _, v := range row {
				args = append(args, value(v))
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert into %s: %w", name, err)
			}
		}
		return nil
	})
}

// WriteHits stores every hit of every institution, one row per hit.
func (e *ExportDB) WriteHits(ctx context.Context, result *model.SurveyResult) error {
	schema := `
	CREATE TABLE IF NOT EXISTS coincidencias (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		universidad TEXT NOT NULL,
		categoria TEXT NOT NULL,
		termino TEXT NOT NULL,
		url TEXT NOT NULL,
		contexto TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_coincidencias_universidad ON coincidencias(universidad);
	CREATE INDEX IF NOT EXISTS idx_coincidencias_categoria ON coincidencias(categoria);
	`
	insert := `
	INSERT INTO coincidencias (run_id, universidad, categoria, termino, url, contexto)
	VALUES (?, ?, ?, ?, ?, ?)`

	return e.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create table %s: %w", HitsTable, err)
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", HitsTable, err)
		}
		defer stmt.Close()

		for _, rec := range result.Records {
			for _, c := range model.AllCategories() {
				for _, h := range rec.CoverageFor(c).Hits {
					if _, err := stmt.ExecContext(ctx,
						result.RunID, rec.Institution.Name, c.String(), h.Term, h.SourceURL, h.Snippet,
					); err != nil {
						return fmt.Errorf("failed to insert hit: %w", err)
					}
				}
			}
		}
		return nil
	})
}

// WritePages stores every attempted URL with its outcome.
func (e *ExportDB) WritePages(ctx context.Context, result *model.SurveyResult) error {
	schema := `
	CREATE TABLE IF NOT EXISTS paginas (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		universidad TEXT NOT NULL,
		url TEXT NOT NULL,
		url_final TEXT,
		tipo TEXT NOT NULL,
		ok INTEGER NOT NULL,
		codigo_http INTEGER,
		bytes INTEGER,
		fallo_tipo TEXT,
		fallo TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_paginas_universidad ON paginas(universidad);
	`
	insert := `
	INSERT INTO paginas (run_id, universidad, url, url_final, tipo, ok, codigo_http, bytes, fallo_tipo, fallo)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return e.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schema); err != nil {
			return fmt.Errorf("failed to create table %s: %w", PagesTable, err)
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare insert into %s: %w", PagesTable, err)
		}
		defer stmt.Close()

		for _, rec := range result.Records {
			for _, p := range rec.Pages {
				if _, err := stmt.ExecContext(ctx,
					result.RunID, rec.Institution.Name, p.URL, p.FinalURL, string(p.Kind),
					p.OK, p.StatusCode, p.Size, string(p.FailureKind), p.Failure,
				); err != nil {
					return fmt.Errorf("failed to insert page: %w", err)
				}
			}
		}
		return nil
	})
}

// CountRows returns the number of rows in table.
func (e *ExportDB) CountRows(ctx context.Context, table string) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM " + quote(identifier(table))
	if err := e.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return n, nil
}

// inTx runs fn in a transaction, committing on success.
func (e *ExportDB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Export writes result to a new SQLite file at path: the Relevamiento and
// Resumen tables plus the hits and pages behind them.
func Export(ctx context.Context, path string, result *model.SurveyResult) error {
	db, err := Open(path, DefaultOptions())
	if err != nil {
		return err
	}

	tables := report.NewTables(result)
	for _, t := range tables.All() {
		if err := db.WriteTable(ctx, result.RunID, t); err != nil {
			_ = db.Close()
			return err
		}
	}
	if err := db.WriteHits(ctx, result); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.WritePages(ctx, result); err != nil {
		_ = db.Close()
		return err
	}

	return db.Close()
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// identifier turns a header into a lower-case ASCII SQL identifier.
func identifier(s string) string {
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pending = false
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "col"
	}
	return b.String()
}

// columnNames derives unique identifiers from header.
func columnNames(header []string) []string {
	seen := map[string]bool{"id": true, "run_id": true}
	names := make([]string, len(header))
	for i, h := range header {
		name := identifier(h)
		for n := 2; seen[name]; n++ {
			name = fmt.Sprintf("%s_%d", identifier(h), n)
		}
		seen[name] = true
		names[i] = name
	}
	return names
}

// quote quotes an identifier.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// value stores plain integers as numbers.
func value(s string) any {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != s {
		return s
	}
	return n
}
