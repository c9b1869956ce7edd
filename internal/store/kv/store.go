// Package kv implements store.Store on an embedded Badger database.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// Key prefixes.
const (
	freetPrefix = "freet:"
	tagPrefix   = "tag:"
	flagPrefix  = "flag:"
	feedPrefix  = "feed:"
	userPrefix  = "user:"

	freetSeqKey = "meta:seq:freet"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	freets *entity[domain.Freet]
	tags   *entity[domain.Tag]
	flags  *entity[domain.Flag]
	feeds  *entity[domain.Feed]
	users  *entity[domain.User]
}

var _ store.Store = (*Store)(nil)

// Options configures Open.
type Options struct {
	// InMemory runs Badger without touching disk. Used by tests.
	InMemory bool
}

// Open opens (or creates) the database at path.
func Open(path string, logger *slog.Logger, o Options) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil // Disable Badger's internal logging
	opts.SyncWrites = !o.InMemory
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
		freets: newEntity[domain.Freet](freetPrefix).
			withIndex("seq", func(f *domain.Freet) []string {
				return []string{seqKey(f.Seq)}
			}).
			withIndex("author", func(f *domain.Freet) []string {
				return []string{f.AuthorID + ":" + seqKey(f.Seq)}
			}),
		tags: newEntity[domain.Tag](tagPrefix).
			withUnique("content", func(t *domain.Tag) []string {
				return []string{t.Content}
			}),
		flags: newEntity[domain.Flag](flagPrefix),
		feeds: newEntity[domain.Feed](feedPrefix).
			withIndex("owner", func(f *domain.Feed) []string {
				return []string{f.OwnerID}
			}),
		users: newEntity[domain.User](userPrefix).
			withUnique("username", func(u *domain.User) []string {
				return []string{u.Username}
			}),
	}

	logger.Info("Badger database opened successfully", "path", path, "in_memory", o.InMemory)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger db: %w", err)
	}
	return nil
}

// Ping reports whether the database is open and readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// View runs fn in a read-only Badger transaction.
func (s *Store) View(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&tx{s: s, txn: txn})
	})
}

// Update runs fn in a read-write Badger transaction.
//
// Badger transactions are serializable: a commit fails with
// badger.ErrConflict when another transaction wrote a key this one read.
// The whole transaction is then re-run against fresh state, up to
// store.MaxTxnRetries times.
func (s *Store) Update(ctx context.Context, fn func(store.Tx) error) error {
	for attempt := 1; attempt <= store.MaxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			return fn(&tx{s: s, txn: txn})
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("transaction conflict, retrying", "attempt", attempt)
	}
	return store.ErrConflict
}
