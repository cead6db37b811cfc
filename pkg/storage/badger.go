// Package storage - BadgerStore provides persistent disk-based storage using
// BadgerDB. It implements the Store interface with transactional batch
// writes.
package storage

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is the log-structured merge realization of Store.
//
// Features:
//   - Batched writes run inside a single Badger transaction, so a batch is
//     either fully visible or not at all
//   - In-memory mode for testing (no disk I/O)
//   - Optional synchronous writes for maximum durability
//
// Example:
//
//	store, err := storage.NewBadgerStoreWithOptions(storage.BadgerOptions{
//		DataDir:  "./data",
//		InMemory: false,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
type BadgerStore struct {
	db     *badger.DB
	mu     sync.RWMutex // protects closed
	closed bool
}

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// DataDir is the directory for the Badger value log and LSM tree.
	// Ignored when InMemory is true.
	DataDir string

	// InMemory keeps all data in RAM. Data is lost on Close. Intended for
	// tests.
	InMemory bool

	// SyncWrites forces an fsync after every write. Slower but safer.
	SyncWrites bool
}

// NewBadgerStore opens a persistent BadgerStore rooted at dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerStoreWithOptions opens a BadgerStore with custom configuration.
func NewBadgerStoreWithOptions(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}

	// Badger's default logger is chatty; keep it quiet.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", opts.DataDir, err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) ensureOpen() error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}
	return nil
}

// Put stores a single key-value pair.
func (s *BadgerStore) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if err := s.ensureOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// PutBatch stores every pair in items inside one Badger transaction.
// Either the whole batch commits or none of it does.
func (s *BadgerStore) PutBatch(items map[string][]byte) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for k, v := range items {
			if len(k) == 0 {
				return ErrInvalidKey
			}
			if err := txn.Set([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get retrieves the value for key, or (nil, nil) if absent.
func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrInvalidKey
	}
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	var (
		value []byte
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// GetBatch retrieves multiple keys in one read transaction. Absent keys map
// to a nil value.
func (s *BadgerStore) GetBatch(keys [][]byte) (map[string][]byte, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	results := make(map[string][]byte, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get(key)
			if err == badger.ErrKeyNotFound {
				results[string(key)] = nil
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if value == nil {
				value = []byte{}
			}
			results[string(key)] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the Badger handle. Safe to call more than once.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Verify BadgerStore implements Store.
var _ Store = (*BadgerStore)(nil)
