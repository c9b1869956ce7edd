// Package store defines the persistence boundary of the engine.
//
// Services never talk to a database directly. Every mutation runs inside
// Store.Update and every query inside Store.View, so both sides of a
// freet/tag or freet/flag edge are read and written in one transaction.
// Implementations live in the kv (badger) and sqlite subpackages.
package store

import (
	"context"

	"github.com/fritterapp/fritter-server/internal/domain"
)

// MaxTxnRetries bounds how many times Update re-runs a transaction that lost
// a write conflict before giving up with ErrConflict.
const MaxTxnRetries = 32

// Store is a transactional record store.
type Store interface {
	// View runs fn in a read-only transaction over a consistent snapshot.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a read-write transaction and commits if fn returns nil.
	// fn may be invoked more than once when the backend retries a conflicting
	// transaction, so it must not leak side effects outside the Tx.
	Update(ctx context.Context, fn func(Tx) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Tx is the set of record accessors available inside a transaction.
type Tx interface {
	FreetTx
	TagTx
	FlagTx
	FeedTx
	UserTx
}

// FreetTx persists freets.
type FreetTx interface {
	// CreateFreet stores a new freet and assigns its Seq.
	CreateFreet(f *domain.Freet) error
	GetFreet(id string) (*domain.Freet, error)
	UpdateFreet(f *domain.Freet) error
	DeleteFreet(id string) error
	// ListFreets returns every freet in insertion order.
	ListFreets() ([]*domain.Freet, error)
	// ListFreetsByAuthors returns the freets of the given authors in insertion order.
	ListFreetsByAuthors(authorIDs []string) ([]*domain.Freet, error)
}

// TagTx persists tags. Tag content is unique.
type TagTx interface {
	CreateTag(t *domain.Tag) error
	GetTag(id string) (*domain.Tag, error)
	GetTagByContent(content string) (*domain.Tag, error)
	UpdateTag(t *domain.Tag) error
	// ListTags returns every tag sorted by content.
	ListTags() ([]*domain.Tag, error)
}

// FlagTx persists flags, retired tombstones included.
type FlagTx interface {
	CreateFlag(f *domain.Flag) error
	GetFlag(id string) (*domain.Flag, error)
	UpdateFlag(f *domain.Flag) error
	// ListFlags returns every flag, retired ones included, ordered by creation time.
	ListFlags() ([]*domain.Flag, error)
}

// FeedTx persists feeds.
type FeedTx interface {
	CreateFeed(f *domain.Feed) error
	GetFeed(id string) (*domain.Feed, error)
	UpdateFeed(f *domain.Feed) error
	DeleteFeed(id string) error
	// ListFeeds returns every feed ordered by creation time.
	ListFeeds() ([]*domain.Feed, error)
	ListFeedsByOwner(ownerID string) ([]*domain.Feed, error)
}

// UserTx persists users. Usernames are unique.
type UserTx interface {
	CreateUser(u *domain.User) error
	GetUser(id string) (*domain.User, error)
	GetUserByUsername(username string) (*domain.User, error)
	ListUsers() ([]*domain.User, error)
}
