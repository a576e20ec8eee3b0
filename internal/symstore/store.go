// Package symstore persists indexing results in a pebble database, one
// record per (configuration, file path).
//
// Key layout:
//
//	'f' <configuration> 0x00 <path>  ->  JSON record{fingerprint, symbols}
//
// Keys of one configuration are contiguous, so evicting a configuration is
// a single range delete.
package symstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"symbol-indexer/internal/symbols"
)

// ErrNotFound is returned when no record exists for a (configuration, path).
var ErrNotFound = errors.New("symstore: record not found")

const filePrefix = 'f'

type record struct {
	Fingerprint uint64           `json:"fingerprint"`
	Symbols     []symbols.Symbol `json:"symbols"`
}

// Store is a pebble-backed symbol store. It is safe for concurrent use.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if needed) the store at dir.
func Open(dir string) (*Store, error) {
	return open(dir, &pebble.Options{})
}

// OpenInMemory opens a store that lives only in memory.
func OpenInMemory() (*Store, error) {
	return open("", &pebble.Options{FS: vfs.NewMem()})
}

func open(dir string, opts *pebble.Options) (*Store, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open symbol store %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Fingerprint digests a file's content together with the defines it is
// indexed under, so a changed configuration invalidates stored results.
func Fingerprint(data []byte, defines ...string) uint64 {
	d := xxhash.New()
	_, _ = d.Write(data)
	for _, def := range defines {
		_, _ = d.Write([]byte{0})
		_, _ = d.Write([]byte(def))
	}
	return d.Sum64()
}

// Fingerprint returns the stored content digest for (config, path).
func (s *Store) Fingerprint(config, path string) (uint64, bool, error) {
	rec, err := s.get(config, path)
	if errors.Is(err, ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rec.Fingerprint, true, nil
}

// FileSymbols returns the stored symbols for (config, path).
func (s *Store) FileSymbols(config, path string) ([]symbols.Symbol, error) {
	rec, err := s.get(config, path)
	if err != nil {
		return nil, err
	}
	return rec.Symbols, nil
}

// StoreFileSymbols replaces the record for (config, path) and returns the
// symbols it held before (nil when there was none).
func (s *Store) StoreFileSymbols(config, path string, fingerprint uint64, syms []symbols.Symbol) ([]symbols.Symbol, error) {
	prev, err := s.get(config, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	val, err := json.Marshal(record{Fingerprint: fingerprint, Symbols: syms})
	if err != nil {
		return nil, fmt.Errorf("encode symbols for %s: %w", path, err)
	}
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(fileKey(config, path), val, nil); err != nil {
		return nil, err
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("commit symbols for %s: %w", path, err)
	}
	return prev.Symbols, nil
}

// Paths lists the file paths recorded under config, in key order.
func (s *Store) Paths(config string) ([]string, error) {
	lo, hi := configBounds(config)
	it, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lo, UpperBound: hi})
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []string
	for it.First(); it.Valid(); it.Next() {
		out = append(out, string(it.Key()[len(lo):]))
	}
	return out, it.Error()
}

// DeleteConfiguration drops every record stored under config.
func (s *Store) DeleteConfiguration(config string) error {
	lo, hi := configBounds(config)
	if err := s.db.DeleteRange(lo, hi, pebble.Sync); err != nil {
		return fmt.Errorf("delete configuration %q: %w", config, err)
	}
	return nil
}

func (s *Store) get(config, path string) (record, error) {
	val, closer, err := s.db.Get(fileKey(config, path))
	if errors.Is(err, pebble.ErrNotFound) {
		return record{}, ErrNotFound
	}
	if err != nil {
		return record{}, err
	}
	defer closer.Close()
	var rec record
	if err := json.Unmarshal(val, &rec); err != nil {
		return record{}, fmt.Errorf("decode symbols for %s: %w", path, err)
	}
	return rec, nil
}

func fileKey(config, path string) []byte {
	k := make([]byte, 0, len(config)+len(path)+2)
	k = append(k, filePrefix)
	k = append(k, config...)
	k = append(k, 0)
	return append(k, path...)
}

func configBounds(config string) (lo, hi []byte) {
	lo = fileKey(config, "")
	hi = append(lo[:len(lo)-1:len(lo)-1], 1)
	return lo, hi
}
