package masterdb

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Reader provides read-only access to a master database snapshot.
// The snapshot is immutable for the life of the process, so every query
// is a plain synchronous read; there is no caching and no transactions.
type Reader struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// New creates a reader for the snapshot at path. The file is not opened
// until Connect is called.
func New(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the snapshot file path.
func (r *Reader) Path() string {
	return r.path
}

// Connect opens the snapshot for reading. Calling Connect on an already
// connected reader is a no-op.
func (r *Reader) Connect() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return nil
	}

	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("snapshot not found: %s: %w", r.path, err)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", r.path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	// The snapshot is never written, so a single connection avoids
	// holding multiple file handles.
	db.SetMaxOpenConns(1)

	r.db = db
	log.Debug().Str("path", r.path).Msg("Snapshot opened")
	return nil
}

// Connected reports whether the snapshot is currently open.
func (r *Reader) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db != nil
}

// Query executes a parameterized read statement and returns all result
// rows. Execution failures are logged and yield an empty result; callers
// treat "no rows" and "query failed" identically, which is acceptable for
// an immutable reference snapshot.
func (r *Reader) Query(query string, args ...any) []Row {
	r.mu.Lock()
	db := r.db
	r.mu.Unlock()

	if db == nil {
		log.Error().Msg("Query on unconnected snapshot reader")
		return nil
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		log.Error().Err(err).Msg("Snapshot query failed")
		return nil
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		log.Error().Err(err).Msg("Failed to read result columns")
		return nil
	}

	var results []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			log.Error().Err(err).Msg("Failed to scan snapshot row")
			return nil
		}
		row := Row{columns: cols, values: make(map[string]any, len(cols))}
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				values[i] = string(b)
			}
			row.values[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Failed to iterate snapshot rows")
		return nil
	}

	return results
}

// Column describes one column of a snapshot table.
type Column struct {
	CID     int
	Name    string
	Type    string
	NotNull bool
	Default any
	PK      bool
}

// Tables returns the names of all tables in the snapshot.
func (r *Reader) Tables() []string {
	rows := r.Query(`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`)
	tables := make([]string, 0, len(rows))
	for _, row := range rows {
		if name, ok := row.Text("name"); ok {
			tables = append(tables, name)
		}
	}
	return tables
}

// TableSchema returns column descriptions for a table, or nil if the
// table does not exist.
func (r *Reader) TableSchema(name string) []Column {
	rows := r.Query(fmt.Sprintf("PRAGMA table_info(%q)", name))
	cols := make([]Column, 0, len(rows))
	for _, row := range rows {
		var col Column
		if v, ok := row.Int("cid"); ok {
			col.CID = int(v)
		}
		col.Name, _ = row.Text("name")
		col.Type, _ = row.Text("type")
		if v, ok := row.Int("notnull"); ok {
			col.NotNull = v != 0
		}
		col.Default = row.values["dflt_value"]
		if v, ok := row.Int("pk"); ok {
			col.PK = v != 0
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return nil
	}
	return cols
}

// Close releases the snapshot connection. Safe to call when not
// connected, and safe to call more than once.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return
	}
	if err := r.db.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close snapshot")
	}
	r.db = nil
}
