package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStores returns one instance of every Store implementation so the
// contract tests run against all of them.
func newStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := NewBadgerStoreWithOptions(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { badgerStore.Close() })

	memStore := NewMemoryStore()
	t.Cleanup(func() { memStore.Close() })

	return map[string]Store{
		"badger": badgerStore,
		"memory": memStore,
	}
}

func TestStore_PutGet(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put([]byte("key-1"), []byte("value-1")))

			got, err := store.Get([]byte("key-1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("value-1"), got)
		})
	}
}

func TestStore_GetAbsent(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			got, err := store.Get([]byte("no-such-key"))
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put([]byte("k"), []byte("old")))
			require.NoError(t, store.Put([]byte("k"), []byte("new")))

			got, err := store.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("new"), got)
		})
	}
}

func TestStore_PutBatch(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			items := make(map[string][]byte)
			for i := 0; i < 10; i++ {
				items[fmt.Sprintf("batch-%d", i)] = []byte(fmt.Sprintf("v-%d", i))
			}
			require.NoError(t, store.PutBatch(items))

			// Every pair from the batch is visible.
			for i := 0; i < 10; i++ {
				got, err := store.Get([]byte(fmt.Sprintf("batch-%d", i)))
				require.NoError(t, err)
				assert.Equal(t, []byte(fmt.Sprintf("v-%d", i)), got)
			}
		})
	}
}

func TestStore_PutBatchEmpty(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, store.PutBatch(nil))
			assert.NoError(t, store.PutBatch(map[string][]byte{}))
		})
	}
}

func TestStore_GetBatchPartialMiss(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put([]byte("present"), []byte("yes")))

			results, err := store.GetBatch([][]byte{
				[]byte("present"),
				[]byte("absent"),
			})
			require.NoError(t, err)

			// Exactly one entry per requested key; absent keys map to nil.
			require.Len(t, results, 2)
			assert.Equal(t, []byte("yes"), results["present"])
			assert.Nil(t, results["absent"])
		})
	}
}

func TestStore_EmptyValueIsNotAbsent(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put([]byte("empty"), []byte{}))
			require.NoError(t, store.Put([]byte("nil"), nil))

			// A present key always reads back non-nil, even when its value
			// is empty, so callers can tell it apart from an absent key.
			for _, key := range []string{"empty", "nil"} {
				got, err := store.Get([]byte(key))
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}

			results, err := store.GetBatch([][]byte{[]byte("nil"), []byte("absent")})
			require.NoError(t, err)
			assert.NotNil(t, results["nil"])
			assert.Nil(t, results["absent"])
		})
	}
}

func TestStore_GetBatchEmpty(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			results, err := store.GetBatch(nil)
			require.NoError(t, err)
			assert.Empty(t, results)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, store.Put(nil, []byte("v")), ErrInvalidKey)

			_, err := store.Get(nil)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestStore_ClosedOperationsFail(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Close())

			assert.ErrorIs(t, store.Put([]byte("k"), []byte("v")), ErrStoreClosed)
			assert.ErrorIs(t, store.PutBatch(map[string][]byte{"k": []byte("v")}), ErrStoreClosed)

			_, err := store.Get([]byte("k"))
			assert.ErrorIs(t, err, ErrStoreClosed)

			_, err = store.GetBatch([][]byte{[]byte("k")})
			assert.ErrorIs(t, err, ErrStoreClosed)
		})
	}
}

func TestStore_CloseIdempotent(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Close())
			assert.NoError(t, store.Close())
		})
	}
}

func TestMemoryStore_ValueIsolation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	value := []byte("original")
	require.NoError(t, store.Put([]byte("k"), value))

	// Mutating the caller's slice must not change the stored copy.
	value[0] = 'X'

	got, err := store.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	// Mutating a returned slice must not change the stored copy either.
	got[0] = 'Y'
	again, err := store.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put([]byte("durable"), []byte("value")))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get([]byte("durable"))
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestBadgerStore_PutBatchInvalidKeyAborts(t *testing.T) {
	store, err := NewBadgerStoreWithOptions(BadgerOptions{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	err = store.PutBatch(map[string][]byte{
		"good": []byte("v"),
		"":     []byte("bad"),
	})
	require.ErrorIs(t, err, ErrInvalidKey)

	// Nothing from the failed batch is visible.
	got, err := store.Get([]byte("good"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
