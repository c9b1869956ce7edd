// Package storetest holds the behavior every store.Store backend must share.
// Backends call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// Opener returns a fresh, empty store. It registers its own cleanup.
type Opener func(t *testing.T) store.Store

// Run executes the shared contract against stores produced by open.
func Run(t *testing.T, open Opener) {
	t.Run("Users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("FreetsRoundTrip", func(t *testing.T) { testFreetsRoundTrip(t, open(t)) })
	t.Run("FreetsOrdering", func(t *testing.T) { testFreetsOrdering(t, open(t)) })
	t.Run("FreetsDelete", func(t *testing.T) { testFreetsDelete(t, open(t)) })
	t.Run("Tags", func(t *testing.T) { testTags(t, open(t)) })
	t.Run("Flags", func(t *testing.T) { testFlags(t, open(t)) })
	t.Run("Feeds", func(t *testing.T) { testFeeds(t, open(t)) })
	t.Run("MissingRecords", func(t *testing.T) { testMissingRecords(t, open(t)) })
	t.Run("Rollback", func(t *testing.T) { testRollback(t, open(t)) })
	t.Run("ConcurrentUpdates", func(t *testing.T) { testConcurrentUpdates(t, open(t)) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceledContext(t, open(t)) })
}

func update(t *testing.T, s store.Store, fn func(store.Tx) error) {
	t.Helper()
	require.NoError(t, s.Update(context.Background(), fn))
}

func view(t *testing.T, s store.Store, fn func(store.Tx) error) {
	t.Helper()
	require.NoError(t, s.View(context.Background(), fn))
}

func freetIDs(freets []*domain.Freet) []string {
	ids := make([]string, len(freets))
	for i, f := range freets {
		ids[i] = f.ID
	}
	return ids
}

func testUsers(t *testing.T, s store.Store) {
	alice := &domain.User{ID: "usr-alice", Username: "alice", CreatedAt: time.Now().UTC()}
	update(t, s, func(tx store.Tx) error { return tx.CreateUser(alice) })

	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateUser(&domain.User{ID: "usr-other", Username: "alice", CreatedAt: time.Now().UTC()})
	})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	view(t, s, func(tx store.Tx) error {
		got, err := tx.GetUser("usr-alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.True(t, alice.CreatedAt.Equal(got.CreatedAt))

		got, err = tx.GetUserByUsername("alice")
		require.NoError(t, err)
		assert.Equal(t, "usr-alice", got.ID)

		_, err = tx.GetUserByUsername("Alice")
		assert.ErrorIs(t, err, store.ErrNotFound)

		users, err := tx.ListUsers()
		require.NoError(t, err)
		assert.Len(t, users, 1)
		return nil
	})
}

func testFreetsRoundTrip(t *testing.T, s store.Store) {
	f := domain.NewFreet("frt-1", "usr-a", "hello")
	f.TagIDs = []string{"tag-b", "tag-a"}
	f.FlagIDs = []string{"flg-2", "flg-1"}
	update(t, s, func(tx store.Tx) error { return tx.CreateFreet(f) })
	assert.NotZero(t, f.Seq)

	view(t, s, func(tx store.Tx) error {
		got, err := tx.GetFreet("frt-1")
		require.NoError(t, err)
		assert.Equal(t, "usr-a", got.AuthorID)
		assert.Equal(t, "hello", got.Content)
		assert.Equal(t, f.Seq, got.Seq)
		assert.Equal(t, []string{"tag-b", "tag-a"}, got.TagIDs)
		assert.Equal(t, []string{"flg-2", "flg-1"}, got.FlagIDs)
		assert.True(t, f.ModifiedAt.Equal(got.ModifiedAt))
		return nil
	})

	update(t, s, func(tx store.Tx) error {
		got, err := tx.GetFreet("frt-1")
		if err != nil {
			return err
		}
		got.Edit("edited")
		got.RemoveTag("tag-b")
		got.AddTag("tag-c")
		return tx.UpdateFreet(got)
	})

	view(t, s, func(tx store.Tx) error {
		got, err := tx.GetFreet("frt-1")
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)
		assert.Equal(t, f.Seq, got.Seq, "seq is stable across updates")
		assert.Equal(t, []string{"tag-a", "tag-c"}, got.TagIDs)
		return nil
	})

	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateFreet(domain.NewFreet("frt-1", "usr-a", "again"))
	})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func testFreetsOrdering(t *testing.T, s store.Store) {
	authors := []string{"usr-a", "usr-b", "usr-a", "usr-c", "usr-b"}
	var seqs []uint64
	for i, author := range authors {
		f := domain.NewFreet(fmt.Sprintf("frt-%d", i), author, "post")
		update(t, s, func(tx store.Tx) error { return tx.CreateFreet(f) })
		seqs = append(seqs, f.Seq)
	}
	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1], "seq increases with insertion")
	}

	view(t, s, func(tx store.Tx) error {
		all, err := tx.ListFreets()
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"frt-0", "frt-1", "frt-2", "frt-3", "frt-4"}, freetIDs(all)); diff != "" {
			t.Errorf("ListFreets order mismatch (-want +got):\n%s", diff)
		}

		byAuthors, err := tx.ListFreetsByAuthors([]string{"usr-b", "usr-a"})
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"frt-0", "frt-1", "frt-2", "frt-4"}, freetIDs(byAuthors)); diff != "" {
			t.Errorf("ListFreetsByAuthors order mismatch (-want +got):\n%s", diff)
		}

		none, err := tx.ListFreetsByAuthors(nil)
		require.NoError(t, err)
		assert.Empty(t, none)
		return nil
	})
}

func testFreetsDelete(t *testing.T, s store.Store) {
	f := domain.NewFreet("frt-del", "usr-a", "bye")
	f.TagIDs = []string{"tag-x"}
	update(t, s, func(tx store.Tx) error { return tx.CreateFreet(f) })
	update(t, s, func(tx store.Tx) error { return tx.DeleteFreet("frt-del") })

	view(t, s, func(tx store.Tx) error {
		_, err := tx.GetFreet("frt-del")
		assert.ErrorIs(t, err, store.ErrNotFound)

		all, err := tx.ListFreets()
		require.NoError(t, err)
		assert.Empty(t, all)

		byAuthor, err := tx.ListFreetsByAuthors([]string{"usr-a"})
		require.NoError(t, err)
		assert.Empty(t, byAuthor)
		return nil
	})

	err := s.Update(context.Background(), func(tx store.Tx) error { return tx.DeleteFreet("frt-del") })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testTags(t *testing.T, s store.Store) {
	for i, content := range []string{"zeta", "Go", "go", "alpha"} {
		tag := domain.NewTag(fmt.Sprintf("tag-%d", i), content)
		update(t, s, func(tx store.Tx) error { return tx.CreateTag(tag) })
	}

	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.CreateTag(domain.NewTag("tag-dup", "go"))
	})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	update(t, s, func(tx store.Tx) error {
		tag, err := tx.GetTagByContent("go")
		if err != nil {
			return err
		}
		tag.AddFreet("frt-2")
		tag.AddFreet("frt-1")
		return tx.UpdateTag(tag)
	})

	view(t, s, func(tx store.Tx) error {
		tag, err := tx.GetTagByContent("go")
		require.NoError(t, err)
		assert.Equal(t, "tag-2", tag.ID)
		assert.Equal(t, []string{"frt-2", "frt-1"}, tag.TaggedIDs)

		upper, err := tx.GetTag("tag-1")
		require.NoError(t, err)
		assert.Equal(t, "Go", upper.Content)
		assert.Empty(t, upper.TaggedIDs)

		_, err = tx.GetTagByContent("GO")
		assert.ErrorIs(t, err, store.ErrNotFound)

		tags, err := tx.ListTags()
		require.NoError(t, err)
		contents := make([]string, len(tags))
		for i, tg := range tags {
			contents[i] = tg.Content
		}
		assert.Equal(t, []string{"Go", "alpha", "go", "zeta"}, contents)
		return nil
	})
}

func testFlags(t *testing.T, s store.Store) {
	f := domain.NewFlag("flg-1", "frt-1", domain.FlagKindFact, "https://example.com")
	update(t, s, func(tx store.Tx) error { return tx.CreateFlag(f) })

	update(t, s, func(tx store.Tx) error {
		got, err := tx.GetFlag("flg-1")
		if err != nil {
			return err
		}
		got.RecordChallenge("usr-a")
		got.RecordChallenge("usr-b")
		got.Retire(domain.RetiredByDeletion)
		return tx.UpdateFlag(got)
	})

	view(t, s, func(tx store.Tx) error {
		got, err := tx.GetFlag("flg-1")
		require.NoError(t, err)
		assert.Equal(t, domain.FlagKindFact, got.Kind)
		assert.Equal(t, "frt-1", got.FreetID)
		assert.Equal(t, 2, got.Challenges)
		assert.Equal(t, []string{"usr-a", "usr-b"}, got.ChallengerIDs)
		assert.Equal(t, domain.FlagStateRetired, got.State)
		assert.Equal(t, domain.RetiredByDeletion, got.RetiredReason)
		require.NotNil(t, got.RetiredAt)
		return nil
	})

	later := domain.NewFlag("flg-2", "frt-2", domain.FlagKindFact, "https://example.org")
	later.CreatedAt = f.CreatedAt.Add(time.Second)
	update(t, s, func(tx store.Tx) error { return tx.CreateFlag(later) })

	view(t, s, func(tx store.Tx) error {
		all, err := tx.ListFlags()
		require.NoError(t, err)
		ids := make([]string, len(all))
		for i, fl := range all {
			ids[i] = fl.ID
		}
		assert.Equal(t, []string{"flg-1", "flg-2"}, ids, "retired flags are listed, oldest first")
		return nil
	})
}

func testFeeds(t *testing.T, s store.Store) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, owner := range []string{"usr-a", "usr-b", "usr-a"} {
		feed := domain.NewFeed(fmt.Sprintf("fed-%d", i), owner)
		feed.CreatedAt = base.Add(time.Duration(i) * time.Second)
		update(t, s, func(tx store.Tx) error { return tx.CreateFeed(feed) })
	}

	update(t, s, func(tx store.Tx) error {
		feed, err := tx.GetFeed("fed-0")
		if err != nil {
			return err
		}
		feed.AddUser("usr-x")
		feed.AddTag("tag-y")
		return tx.UpdateFeed(feed)
	})

	view(t, s, func(tx store.Tx) error {
		feed, err := tx.GetFeed("fed-0")
		require.NoError(t, err)
		assert.Equal(t, []string{"usr-x"}, feed.UserIDs)
		assert.Equal(t, []string{"tag-y"}, feed.TagIDs)

		owned, err := tx.ListFeedsByOwner("usr-a")
		require.NoError(t, err)
		require.Len(t, owned, 2)
		assert.Equal(t, "fed-0", owned[0].ID)
		assert.Equal(t, "fed-2", owned[1].ID)

		all, err := tx.ListFeeds()
		require.NoError(t, err)
		assert.Len(t, all, 3)
		return nil
	})

	update(t, s, func(tx store.Tx) error { return tx.DeleteFeed("fed-0") })
	view(t, s, func(tx store.Tx) error {
		_, err := tx.GetFeed("fed-0")
		assert.ErrorIs(t, err, store.ErrNotFound)

		owned, err := tx.ListFeedsByOwner("usr-a")
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, "fed-2", owned[0].ID)
		return nil
	})
}

func testMissingRecords(t *testing.T, s store.Store) {
	view(t, s, func(tx store.Tx) error {
		_, err := tx.GetFreet("frt-none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetTag("tag-none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetTagByContent("none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetFlag("flg-none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetFeed("fed-none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetUser("usr-none")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})

	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.UpdateTag(domain.NewTag("tag-none", "none"))
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.Update(context.Background(), func(tx store.Tx) error {
		return tx.UpdateFlag(domain.NewFlag("flg-none", "frt-none", domain.FlagKindFact, "src"))
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testRollback(t *testing.T, s store.Store) {
	boom := errors.New("boom")
	err := s.Update(context.Background(), func(tx store.Tx) error {
		if err := tx.CreateTag(domain.NewTag("tag-rb", "rollback")); err != nil {
			return err
		}
		if err := tx.CreateFreet(domain.NewFreet("frt-rb", "usr-a", "rolled back")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	view(t, s, func(tx store.Tx) error {
		_, err := tx.GetTagByContent("rollback")
		assert.ErrorIs(t, err, store.ErrNotFound)
		_, err = tx.GetFreet("frt-rb")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})
}

// testConcurrentUpdates has many writers append to one record. Every append
// must survive, which only holds if read-modify-write transactions serialize.
func testConcurrentUpdates(t *testing.T, s store.Store) {
	update(t, s, func(tx store.Tx) error { return tx.CreateTag(domain.NewTag("tag-hot", "hot")) })

	const writers = 20
	var g errgroup.Group
	for i := range writers {
		g.Go(func() error {
			return s.Update(context.Background(), func(tx store.Tx) error {
				tag, err := tx.GetTag("tag-hot")
				if err != nil {
					return err
				}
				tag.AddFreet(fmt.Sprintf("frt-%02d", i))
				return tx.UpdateTag(tag)
			})
		})
	}
	require.NoError(t, g.Wait())

	view(t, s, func(tx store.Tx) error {
		tag, err := tx.GetTag("tag-hot")
		require.NoError(t, err)
		assert.Len(t, tag.TaggedIDs, writers)
		return nil
	})
}

func testCanceledContext(t *testing.T, s store.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Update(ctx, func(store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)

	err = s.View(ctx, func(store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
