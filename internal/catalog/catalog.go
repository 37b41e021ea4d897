// Package catalog stores lattice source files in a local SQLite database.
//
// Build modes:
//   - Default (CGO_ENABLED=0): Uses pure Go modernc.org/sqlite
//   - CGO mode (CGO_ENABLED=1 -tags cgo_sqlite): Uses mattn/go-sqlite3
//
// Entries are deduplicated by the BLAKE3 hash of the source text; the text
// itself is held xz-compressed.
package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/hex"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/latticemill/latticemill/core/errors"
)

// Entry is one stored lattice.
type Entry struct {
	// ID is the entry's UUID.
	ID string

	// Name is the caller-chosen entry name. Names need not be unique; the
	// hash is the dedup key.
	Name string

	// Format is the format identifier of the source text.
	Format string

	// Title is the machine title parsed from the source.
	Title string

	// Root is the root lattice name parsed from the source.
	Root string

	// Hash is the hex BLAKE3 hash of the uncompressed source.
	Hash string

	// CreatedAt is the insertion time.
	CreatedAt time.Time

	// Source is the lattice text. Populated by Get, empty in List results.
	Source string
}

// Store is a catalog backed by one SQLite database file.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS lattices (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	format     TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	root       TEXT NOT NULL DEFAULT '',
	hash       TEXT NOT NULL UNIQUE,
	source     BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lattices_name ON lattices(name);
`

// DriverType returns a string identifying the underlying SQLite
// implementation: "purego" for modernc.org/sqlite, "cgo" for
// mattn/go-sqlite3.
func DriverType() string {
	return driverType
}

// Open opens (creating if necessary) a catalog database.
func Open(path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open catalog database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize catalog schema")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a lattice source text. If an entry with the same content hash
// already exists it is returned unchanged instead of inserting a duplicate.
func (s *Store) Put(ctx context.Context, name, format, title, root, source string) (*Entry, error) {
	hash := hashText(source)

	if existing, err := s.byHash(ctx, hash); err == nil {
		return existing, nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	compressed, err := compress(source)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:        uuid.NewString(),
		Name:      name,
		Format:    format,
		Title:     title,
		Root:      root,
		Hash:      hash,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lattices (id, name, format, title, root, hash, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Format, entry.Title, entry.Root, entry.Hash,
		compressed, entry.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert catalog entry")
	}
	return entry, nil
}

// Get returns the entry with the given ID, source text included.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, format, title, root, hash, source, created_at
		 FROM lattices WHERE id = ?`, id)

	entry, compressed, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("catalog entry", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog entry")
	}

	entry.Source, err = decompress(compressed)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all entries ordered by insertion time, without source text.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, format, title, root, hash, created_at
		 FROM lattices ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list catalog entries")
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Format, &e.Title, &e.Root, &e.Hash, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan catalog entry")
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Delete removes the entry with the given ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lattices WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete catalog entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.NewNotFound("catalog entry", id)
	}
	return nil
}

// byHash returns the entry with the given content hash, without source.
func (s *Store) byHash(ctx context.Context, hash string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, format, title, root, hash, created_at
		 FROM lattices WHERE hash = ?`, hash)

	var e Entry
	err := row.Scan(&e.ID, &e.Name, &e.Format, &e.Title, &e.Root, &e.Hash, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("catalog entry", hash)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog entry")
	}
	return &e, nil
}

func scanEntry(row *sql.Row) (*Entry, []byte, error) {
	var e Entry
	var compressed []byte
	err := row.Scan(&e.ID, &e.Name, &e.Format, &e.Title, &e.Root, &e.Hash, &compressed, &e.CreatedAt)
	return &e, compressed, err
}

// hashText returns the hex BLAKE3 hash of the text.
func hashText(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// compress xz-compresses text for storage.
func compress(text string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create xz writer")
	}
	if _, err := io.WriteString(w, text); err != nil {
		return nil, errors.Wrap(err, "failed to compress source")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finish compression")
	}
	return buf.Bytes(), nil
}

// decompress restores text from its stored form.
func decompress(data []byte) (string, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "failed to create xz reader")
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return "", errors.Wrap(err, "failed to decompress source")
	}
	return string(text), nil
}
