// Package storage provides the key-value store interface and implementations
// backing the Ratatosk graph engine.
//
// The graph engine never talks to a database directly; it consumes the Store
// interface, which models an ordered byte-key/byte-value store with single
// and batched reads and writes. Two implementations ship with Ratatosk:
//
//   - BadgerStore: persistent, log-structured storage on BadgerDB
//   - MemoryStore: map-backed storage for tests and small datasets
//
// Contract required of any conforming Store:
//
//   - PutBatch is all-or-nothing: either every pair in the batch becomes
//     visible to subsequent Gets through the same handle, or none do.
//   - GetBatch returns exactly one entry per requested key. Missing keys map
//     to a nil value; a partial miss is never an error.
//   - Reads issued after a successful write through the same handle observe
//     that write (read-your-writes).
//   - A present key always reads back as a non-nil value, even when the
//     stored value is empty; only absent keys read back nil.
//
// Example:
//
//	store, err := storage.NewBadgerStore("./data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Put([]byte("k"), []byte("v")); err != nil {
//		log.Fatal(err)
//	}
package storage

import "errors"

// Common errors returned by Store implementations.
var (
	ErrStoreClosed = errors.New("store closed")
	ErrInvalidKey  = errors.New("invalid key")
)

// Store is the minimal key-value contract consumed by the graph engine.
//
// All implementations must be safe for concurrent use. Get returns
// (nil, nil) when the key is absent; absence is a normal result, not an
// error.
type Store interface {
	// Put stores a single key-value pair.
	Put(key, value []byte) error

	// PutBatch stores every pair in items atomically. Keys are passed as
	// strings so the batch can be built as a plain map; values are raw
	// bytes. If PutBatch returns an error, no pair from the batch is
	// visible to subsequent reads.
	PutBatch(items map[string][]byte) error

	// Get retrieves the value for key, or (nil, nil) if the key is absent.
	Get(key []byte) ([]byte, error)

	// GetBatch retrieves multiple keys at once. The result maps every
	// requested key (as a string) to its value, or to nil if the key is
	// absent. GetBatch never fails on a partial miss.
	GetBatch(keys [][]byte) (map[string][]byte, error)

	// Close releases the store. Close is idempotent; operations issued
	// after Close fail with ErrStoreClosed.
	Close() error
}
