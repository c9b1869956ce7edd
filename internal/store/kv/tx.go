package kv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// tx binds the entity helpers to one Badger transaction.
type tx struct {
	s   *Store
	txn *badger.Txn
}

var _ store.Tx = (*tx)(nil)

// seqKey renders a sequence number so that lexical order equals numeric order.
func seqKey(seq uint64) string {
	return fmt.Sprintf("%020d", seq)
}

// nextSeq increments and returns the freet sequence counter.
// Concurrent creators conflict on this key and are retried by Update.
func (t *tx) nextSeq() (uint64, error) {
	var cur uint64
	item, err := t.txn.Get([]byte(freetSeqKey))
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
	case err != nil:
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	default:
		err = item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("corrupt sequence value of %d bytes", len(val))
			}
			cur = binary.BigEndian.Uint64(val)
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	next := cur + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := t.txn.Set([]byte(freetSeqKey), buf); err != nil {
		return 0, fmt.Errorf("failed to write sequence: %w", err)
	}
	return next, nil
}

// Freets

func (t *tx) CreateFreet(f *domain.Freet) error {
	seq, err := t.nextSeq()
	if err != nil {
		return err
	}
	f.Seq = seq
	return t.s.freets.create(t.txn, f.ID, f)
}

func (t *tx) GetFreet(id string) (*domain.Freet, error) {
	return t.s.freets.get(t.txn, id)
}

func (t *tx) UpdateFreet(f *domain.Freet) error {
	return t.s.freets.update(t.txn, f.ID, f)
}

func (t *tx) DeleteFreet(id string) error {
	return t.s.freets.delete(t.txn, id)
}

func (t *tx) ListFreets() ([]*domain.Freet, error) {
	return t.s.freets.scanIndex(t.txn, "seq", "")
}

func (t *tx) ListFreetsByAuthors(authorIDs []string) ([]*domain.Freet, error) {
	var out []*domain.Freet
	seen := make(map[string]bool, len(authorIDs))
	for _, authorID := range authorIDs {
		if seen[authorID] {
			continue
		}
		seen[authorID] = true

		freets, err := t.s.freets.scanIndex(t.txn, "author", authorID+":")
		if err != nil {
			return nil, err
		}
		out = append(out, freets...)
	}
	slices.SortFunc(out, func(a, b *domain.Freet) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

// Tags

func (t *tx) CreateTag(tag *domain.Tag) error {
	return t.s.tags.create(t.txn, tag.ID, tag)
}

func (t *tx) GetTag(id string) (*domain.Tag, error) {
	return t.s.tags.get(t.txn, id)
}

func (t *tx) GetTagByContent(content string) (*domain.Tag, error) {
	return t.s.tags.getByUnique(t.txn, "content", content)
}

func (t *tx) UpdateTag(tag *domain.Tag) error {
	return t.s.tags.update(t.txn, tag.ID, tag)
}

func (t *tx) ListTags() ([]*domain.Tag, error) {
	tags, err := t.s.tags.list(t.txn)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tags, func(a, b *domain.Tag) int {
		return strings.Compare(a.Content, b.Content)
	})
	return tags, nil
}

// Flags

func (t *tx) CreateFlag(f *domain.Flag) error {
	return t.s.flags.create(t.txn, f.ID, f)
}

func (t *tx) GetFlag(id string) (*domain.Flag, error) {
	return t.s.flags.get(t.txn, id)
}

func (t *tx) UpdateFlag(f *domain.Flag) error {
	return t.s.flags.update(t.txn, f.ID, f)
}

func (t *tx) ListFlags() ([]*domain.Flag, error) {
	flags, err := t.s.flags.list(t.txn)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(flags, func(a, b *domain.Flag) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return flags, nil
}

// Feeds

func (t *tx) CreateFeed(f *domain.Feed) error {
	return t.s.feeds.create(t.txn, f.ID, f)
}

func (t *tx) GetFeed(id string) (*domain.Feed, error) {
	return t.s.feeds.get(t.txn, id)
}

func (t *tx) UpdateFeed(f *domain.Feed) error {
	return t.s.feeds.update(t.txn, f.ID, f)
}

func (t *tx) DeleteFeed(id string) error {
	return t.s.feeds.delete(t.txn, id)
}

func (t *tx) ListFeeds() ([]*domain.Feed, error) {
	feeds, err := t.s.feeds.list(t.txn)
	if err != nil {
		return nil, err
	}
	sortFeeds(feeds)
	return feeds, nil
}

func (t *tx) ListFeedsByOwner(ownerID string) ([]*domain.Feed, error) {
	feeds, err := t.s.feeds.scanIndex(t.txn, "owner", ownerID+":")
	if err != nil {
		return nil, err
	}
	sortFeeds(feeds)
	return feeds, nil
}

func sortFeeds(feeds []*domain.Feed) {
	slices.SortStableFunc(feeds, func(a, b *domain.Feed) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Users

func (t *tx) CreateUser(u *domain.User) error {
	return t.s.users.create(t.txn, u.ID, u)
}

func (t *tx) GetUser(id string) (*domain.User, error) {
	return t.s.users.get(t.txn, id)
}

func (t *tx) GetUserByUsername(username string) (*domain.User, error) {
	return t.s.users.getByUnique(t.txn, "username", username)
}

func (t *tx) ListUsers() ([]*domain.User, error) {
	users, err := t.s.users.list(t.txn)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(a.Username, b.Username)
	})
	return users, nil
}
