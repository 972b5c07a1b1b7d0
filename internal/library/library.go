// Package library persists expression masks in a SQLite database so they can
// be imported once and loaded into mask stores on later runs.
package library

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Faultbox/blendmask/pkg/formats"
	"github.com/Faultbox/blendmask/pkg/mask"
)

// ErrCorruptWeights is returned when a stored weight blob cannot be decoded.
var ErrCorruptWeights = errors.New("corrupt weight blob")

// Library manages the SQLite connection and schema.
type Library struct {
	db *sql.DB
}

// Entry describes one stored mask without its weights.
type Entry struct {
	Name        string
	VertexCount int
	UpdatedAt   time.Time
}

// Open opens (or creates) the library at path.
// Use ":memory:" for a throwaway library.
func Open(path string) (*Library, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	l := &Library{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return l, nil
}

// Close closes the underlying database connection.
func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS masks (
		name TEXT PRIMARY KEY,
		vertex_count INTEGER NOT NULL,
		weights BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := l.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create masks table: %w", err)
	}
	return nil
}

const upsertMask = `
	INSERT INTO masks (name, vertex_count, weights, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		vertex_count = excluded.vertex_count,
		weights = excluded.weights,
		updated_at = excluded.updated_at
`

// Put stores w under name, replacing any previous mask.
func (l *Library) Put(ctx context.Context, name string, w mask.Weights) error {
	_, err := l.db.ExecContext(ctx, upsertMask, name, len(w), encodeWeights(w), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing mask %q: %w", name, err)
	}
	return nil
}

// Import stores all masks in one transaction and returns how many were written.
func (l *Library) Import(ctx context.Context, masks map[string]mask.Weights) (int, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertMask)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for name, w := range masks {
		if _, err := stmt.ExecContext(ctx, name, len(w), encodeWeights(w), now); err != nil {
			return 0, fmt.Errorf("importing mask %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(masks), nil
}

// ImportJSON parses expression mask JSON and imports every entry.
func (l *Library) ImportJSON(ctx context.Context, data []byte) (int, error) {
	masks, err := formats.ParseMasks(data)
	if err != nil {
		return 0, err
	}
	return l.Import(ctx, masks)
}

// Get returns the mask stored under name.
func (l *Library) Get(ctx context.Context, name string) (mask.Weights, error) {
	var blob []byte
	var count int
	err := l.db.QueryRowContext(ctx,
		"SELECT vertex_count, weights FROM masks WHERE name = ?", name).Scan(&count, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no mask for %q in library", mask.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading mask %q: %w", name, err)
	}
	return decodeWeights(blob, count)
}

// Delete removes the mask stored under name.
func (l *Library) Delete(ctx context.Context, name string) error {
	res, err := l.db.ExecContext(ctx, "DELETE FROM masks WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting mask %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: no mask for %q in library", mask.ErrNotFound, name)
	}
	return nil
}

// List returns all stored masks ordered by name.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT name, vertex_count, updated_at FROM masks ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing masks: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.VertexCount, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning mask row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Names returns the stored mask names in sorted order.
func (l *Library) Names(ctx context.Context) ([]string, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// LoadInto copies every stored mask into store and returns the count.
func (l *Library) LoadInto(ctx context.Context, store *mask.Store) (int, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT name, vertex_count, weights FROM masks")
	if err != nil {
		return 0, fmt.Errorf("loading masks: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var name string
		var count int
		var blob []byte
		if err := rows.Scan(&name, &count, &blob); err != nil {
			return n, fmt.Errorf("scanning mask row: %w", err)
		}
		w, err := decodeWeights(blob, count)
		if err != nil {
			return n, fmt.Errorf("mask %q: %w", name, err)
		}
		store.Put(name, w)
		n++
	}
	return n, rows.Err()
}

// encodeWeights packs weights as little-endian float32 values.
func encodeWeights(w mask.Weights) []byte {
	buf := make([]byte, 4*len(w))
	for i, v := range w {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeWeights(buf []byte, count int) (mask.Weights, error) {
	if len(buf) != 4*count {
		return nil, fmt.Errorf("%w: %d bytes for %d weights", ErrCorruptWeights, len(buf), count)
	}
	w := make(mask.Weights, count)
	for i := range w {
		w[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return w, nil
}
