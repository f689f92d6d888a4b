// Package store is the SQLite sink for the export command: it writes a
// SymbolIndex's files, symbols, and occurrences into a database for
// downstream ad-hoc querying. Inserts happen in the index's canonical
// order inside one transaction, so the row IDs of two exports of the same
// artifact are identical.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/codeindex/internal/model"
)

// Store is the SQLite data access layer.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS indexes (
  id              INTEGER PRIMARY KEY,
  schema_version  TEXT NOT NULL,
  profile_id      TEXT NOT NULL,
  ordering        TEXT NOT NULL,
  generated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  index_id        INTEGER NOT NULL REFERENCES indexes(id),
  file_id         TEXT NOT NULL,
  lines           INTEGER NOT NULL,
  bytes           INTEGER NOT NULL,
  sha256          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
  id                INTEGER PRIMARY KEY,
  index_id          INTEGER NOT NULL REFERENCES indexes(id),
  identifier        TEXT NOT NULL,
  occurrence_count  INTEGER NOT NULL,
  unique_line_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS occurrences (
  id              INTEGER PRIMARY KEY,
  symbol_id       INTEGER NOT NULL REFERENCES symbols(id),
  file_id         TEXT NOT NULL,
  line            INTEGER NOT NULL,
  col_start       INTEGER NOT NULL,
  col_end         INTEGER NOT NULL,
  byte_start      INTEGER,
  byte_end        INTEGER
);

CREATE INDEX IF NOT EXISTS idx_symbols_identifier ON symbols(identifier);
CREATE INDEX IF NOT EXISTS idx_occurrences_file ON occurrences(file_id, line);
`

// InsertIndex writes one SymbolIndex in canonical order within a single
// transaction and returns the new index row's ID.
func (s *Store) InsertIndex(idx *model.SymbolIndex) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("insert index: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO indexes (schema_version, profile_id, ordering, generated_at) VALUES (?, ?, ?, ?)`,
		idx.SchemaVersion, idx.ProfileID, idx.Ordering, idx.GeneratedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert index: %w", err)
	}
	indexID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert index: last id: %w", err)
	}

	for _, f := range idx.Files {
		if _, err := tx.Exec(
			`INSERT INTO files (index_id, file_id, lines, bytes, sha256) VALUES (?, ?, ?, ?, ?)`,
			indexID, f.FileID, f.Lines, f.Bytes, f.SHA256,
		); err != nil {
			return 0, fmt.Errorf("insert file %q: %w", f.FileID, err)
		}
	}

	for _, sym := range idx.Symbols {
		res, err := tx.Exec(
			`INSERT INTO symbols (index_id, identifier, occurrence_count, unique_line_count) VALUES (?, ?, ?, ?)`,
			indexID, sym.Identifier, sym.Stats.OccurrenceCount, sym.Stats.UniqueLineCount,
		)
		if err != nil {
			return 0, fmt.Errorf("insert symbol %q: %w", sym.Identifier, err)
		}
		symbolID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert symbol %q: last id: %w", sym.Identifier, err)
		}
		for _, occ := range sym.Occurrences {
			if _, err := tx.Exec(
				`INSERT INTO occurrences (symbol_id, file_id, line, col_start, col_end, byte_start, byte_end)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				symbolID, occ.FileID, occ.Line, occ.ColStart, occ.ColEnd,
				nullableInt(occ.ByteStart), nullableInt(occ.ByteEnd),
			); err != nil {
				return 0, fmt.Errorf("insert occurrence of %q: %w", sym.Identifier, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert index: commit: %w", err)
	}
	return indexID, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
