package kv

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("", slog.New(slog.DiscardHandler), Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestOpen_OnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")

	s, err := Open(dir, nil, Options{})
	require.NoError(t, err)

	f := domain.NewFreet("frt-1", "usr-a", "persisted")
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateFreet(f)
	}))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil, Options{})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(context.Background(), func(tx store.Tx) error {
		got, err := tx.GetFreet("frt-1")
		require.NoError(t, err)
		assert.Equal(t, "persisted", got.Content)
		return nil
	}))

	// The counter survives a reopen, so seqs never repeat.
	g := domain.NewFreet("frt-2", "usr-a", "next")
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateFreet(g)
	}))
	assert.Greater(t, g.Seq, f.Seq)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestUpdate_RetriesOnConflict(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateTag(domain.NewTag("tag-1", "go"))
	}))

	attempts := 0
	err := s.Update(context.Background(), func(tx store.Tx) error {
		attempts++
		tag, err := tx.GetTag("tag-1")
		if err != nil {
			return err
		}

		// Commit a competing write to the key just read, once.
		if attempts == 1 {
			err := s.db.Update(func(txn *badger.Txn) error {
				other, err := s.tags.get(txn, "tag-1")
				if err != nil {
					return err
				}
				other.AddFreet("frt-other")
				return s.tags.update(txn, other.ID, other)
			})
			if err != nil {
				return err
			}
		}

		tag.AddFreet("frt-mine")
		return tx.UpdateTag(tag)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "conflicting transaction is re-run")

	require.NoError(t, s.View(context.Background(), func(tx store.Tx) error {
		tag, err := tx.GetTag("tag-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"frt-other", "frt-mine"}, tag.TaggedIDs)
		return nil
	}))
}

func TestUpdate_GivesUpAfterMaxRetries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateTag(domain.NewTag("tag-1", "go"))
	}))

	attempts := 0
	err := s.Update(context.Background(), func(tx store.Tx) error {
		attempts++
		if _, err := tx.GetTag("tag-1"); err != nil {
			return err
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			other, err := s.tags.get(txn, "tag-1")
			if err != nil {
				return err
			}
			other.Touch()
			return s.tags.update(txn, other.ID, other)
		})
		if err != nil {
			return err
		}
		return tx.CreateFlag(domain.NewFlag("flg-x", "frt-1", domain.FlagKindFact, "src"))
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, store.MaxTxnRetries, attempts)
}

func TestIndexKeysAreRemovedOnDelete(t *testing.T) {
	s := newTestStore(t)
	f := domain.NewFreet("frt-1", "usr-a", "x")
	require.NoError(t, s.Update(context.Background(), func(tx store.Tx) error {
		if err := tx.CreateFreet(f); err != nil {
			return err
		}
		return tx.DeleteFreet("frt-1")
	}))

	var keys []string
	require.NoError(t, s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(freetPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	}))
	assert.Empty(t, keys)
}
