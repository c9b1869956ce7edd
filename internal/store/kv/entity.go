package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/store"
)

// entity provides JSON CRUD for one record type plus the secondary indexes
// that go with it. Every method works inside a caller-owned transaction so
// that a record and its indexes, and several records of different types,
// commit together.
type entity[T any] struct {
	prefix  string
	indexes []index[T]
}

// index defines a secondary index on an entity.
//
// A unique index stores prefix+"idx:"+name+":"+value -> id and rejects a
// second record with the same value. A non-unique index stores
// prefix+"idx:"+name+":"+value+":"+id -> nil and is read with scanIndex.
type index[T any] struct {
	name   string
	unique bool
	keyGen func(*T) []string
}

func newEntity[T any](prefix string) *entity[T] {
	return &entity[T]{prefix: prefix}
}

// withUnique adds a unique secondary index.
func (e *entity[T]) withUnique(name string, keyGen func(*T) []string) *entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, unique: true, keyGen: keyGen})
	return e
}

// withIndex adds a non-unique secondary index.
func (e *entity[T]) withIndex(name string, keyGen func(*T) []string) *entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

func (e *entity[T]) key(id string) []byte {
	return []byte(e.prefix + id)
}

func (e *entity[T]) indexPrefix(name string) string {
	return e.prefix + "idx:" + name + ":"
}

func (e *entity[T]) indexKey(idx index[T], value, id string) []byte {
	if idx.unique {
		return []byte(e.indexPrefix(idx.name) + value)
	}
	return []byte(e.indexPrefix(idx.name) + value + ":" + id)
}

// create stores a new record. Returns store.ErrAlreadyExists if the id or
// any unique index value is taken.
func (e *entity[T]) create(txn *badger.Txn, id string, v *T) error {
	_, err := txn.Get(e.key(id))
	if err == nil {
		return store.ErrAlreadyExists
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing key: %w", err)
	}

	if err := e.checkUnique(txn, v, nil); err != nil {
		return err
	}
	return e.write(txn, id, v)
}

// get loads a record by id. Returns store.ErrNotFound if absent.
func (e *entity[T]) get(txn *badger.Txn, id string) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var v T
	err = item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, &v); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// getByUnique loads a record through a unique index.
func (e *entity[T]) getByUnique(txn *badger.Txn, name, value string) (*T, error) {
	item, err := txn.Get([]byte(e.indexPrefix(name) + value))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get index key: %w", err)
	}

	var id string
	err = item.Value(func(val []byte) error {
		id = string(val)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.get(txn, id)
}

// update replaces an existing record and rewrites its index entries.
// Returns store.ErrNotFound if absent.
func (e *entity[T]) update(txn *badger.Txn, id string, v *T) error {
	old, err := e.get(txn, id)
	if err != nil {
		return err
	}

	if err := e.checkUnique(txn, v, old); err != nil {
		return err
	}
	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	return e.write(txn, id, v)
}

// delete removes a record and its index entries. Returns store.ErrNotFound if absent.
func (e *entity[T]) delete(txn *badger.Txn, id string) error {
	old, err := e.get(txn, id)
	if err != nil {
		return err
	}
	if err := e.deleteIndexes(txn, id, old); err != nil {
		return err
	}
	if err := txn.Delete(e.key(id)); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// list returns every record under the prefix, in key order, skipping index keys.
func (e *entity[T]) list(txn *badger.Txn) ([]*T, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(e.prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	var out []*T
	for it.Rewind(); it.Valid(); it.Next() {
		remainder := string(it.Item().Key()[len(e.prefix):])
		if strings.HasPrefix(remainder, "idx:") {
			continue
		}

		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}

// scanIndex returns the records whose non-unique index entry starts with
// valuePrefix, in index key order.
func (e *entity[T]) scanIndex(txn *badger.Txn, name, valuePrefix string) ([]*T, error) {
	prefix := []byte(e.indexPrefix(name) + valuePrefix)

	// Collect ids first: a read-write txn allows only one open iterator and
	// get below must not run while it is open.
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false

	var ids []string
	it := txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Item().Key())
		ids = append(ids, key[strings.LastIndexByte(key, ':')+1:])
	}
	it.Close()

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v, err := e.get(txn, id)
		if err != nil {
			return nil, fmt.Errorf("index %s points at %s: %w", name, id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *entity[T]) write(txn *badger.Txn, id string, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(v) {
			var val []byte
			if idx.unique {
				val = []byte(id)
			}
			if err := txn.Set(e.indexKey(idx, value, id), val); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

// checkUnique fails if any unique index value of v is held by another record.
// Values v shares with old (the record being replaced) are skipped.
func (e *entity[T]) checkUnique(txn *badger.Txn, v, old *T) error {
	for _, idx := range e.indexes {
		if !idx.unique {
			continue
		}

		held := make(map[string]bool)
		if old != nil {
			for _, k := range idx.keyGen(old) {
				held[k] = true
			}
		}

		for _, value := range idx.keyGen(v) {
			if held[value] {
				continue
			}
			_, err := txn.Get(e.indexKey(idx, value, ""))
			if err == nil {
				return fmt.Errorf("index %s conflict on key %s: %w", idx.name, value, store.ErrAlreadyExists)
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check index key: %w", err)
			}
		}
	}
	return nil
}

func (e *entity[T]) deleteIndexes(txn *badger.Txn, id string, v *T) error {
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(v) {
			if err := txn.Delete(e.indexKey(idx, value, id)); err != nil {
				return fmt.Errorf("failed to delete index key: %w", err)
			}
		}
	}
	return nil
}
