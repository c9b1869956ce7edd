package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/domain"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
)

// feedCorpus has authors A, B, C:
//
//	a1 by A tagged x
//	b1 by B tagged x, y
//	c1 by C tagged y
//	a2 by A untagged
type feedCorpus struct {
	a, b, c        *domain.User
	a1, b1, c1, a2 *domain.Freet
}

func seedFeedCorpus(t *testing.T, e *engine) feedCorpus {
	t.Helper()
	var fc feedCorpus
	fc.a = e.mustUser(t, "A")
	fc.b = e.mustUser(t, "B")
	fc.c = e.mustUser(t, "C")
	e.mustTag(t, "x")
	e.mustTag(t, "y")

	fc.a1 = e.mustFreet(t, fc.a, "a1")
	fc.b1 = e.mustFreet(t, fc.b, "b1")
	fc.c1 = e.mustFreet(t, fc.c, "c1")
	fc.a2 = e.mustFreet(t, fc.a, "a2")

	e.mustAttach(t, fc.a1, "x")
	e.mustAttach(t, fc.b1, "x")
	e.mustAttach(t, fc.b1, "y")
	e.mustAttach(t, fc.c1, "y")
	return fc
}

func TestFeedService_Evaluate(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		fc := seedFeedCorpus(t, e)

		tests := []struct {
			name  string
			users []*domain.User
			tags  []string
			want  []*domain.Freet
		}{
			{"empty feed matches everything", nil, nil, []*domain.Freet{fc.a2, fc.c1, fc.b1, fc.a1}},
			{"authors only", []*domain.User{fc.a}, nil, []*domain.Freet{fc.a2, fc.a1}},
			{"tags only", nil, []string{"x"}, []*domain.Freet{fc.b1, fc.a1}},
			{"authors and tags", []*domain.User{fc.a, fc.b}, []string{"y"}, []*domain.Freet{fc.b1}},
			{"disjoint selection", []*domain.User{fc.c}, []string{"x"}, []*domain.Freet{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				feed, err := e.feeds.Create(ctx, fc.a.ID)
				require.NoError(t, err)
				for _, u := range tt.users {
					_, err := e.feeds.AddUser(ctx, feed.ID, u.ID)
					require.NoError(t, err)
				}
				for _, tag := range tt.tags {
					_, err := e.feeds.AddTagFilter(ctx, feed.ID, tag)
					require.NoError(t, err)
				}

				got, err := e.feeds.Evaluate(ctx, feed.ID)
				require.NoError(t, err)
				if diff := cmp.Diff(freetIDs(tt.want), freetIDs(got)); diff != "" {
					t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})
}

func TestFeedService_EvaluateOrdersByModification(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		fc := seedFeedCorpus(t, e)

		// Editing a1 moves it to the front.
		_, err := e.freets.UpdateFreet(ctx, fc.a1.ID, "a1 edited")
		require.NoError(t, err)

		feed, err := e.feeds.Create(ctx, fc.b.ID)
		require.NoError(t, err)
		got, err := e.feeds.Evaluate(ctx, feed.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{fc.a1.ID, fc.a2.ID, fc.c1.ID, fc.b1.ID}, freetIDs(got))
	})
}

func TestFeedService_Selectors(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		fc := seedFeedCorpus(t, e)

		feed, err := e.feeds.Create(ctx, fc.a.ID)
		require.NoError(t, err)
		assert.Empty(t, feed.UserIDs)
		assert.Empty(t, feed.TagIDs)

		_, err = e.feeds.AddUser(ctx, feed.ID, fc.b.ID)
		require.NoError(t, err)
		_, err = e.feeds.AddUser(ctx, feed.ID, fc.b.ID)
		assert.ErrorIs(t, err, ErrUserAlreadySelected)
		_, err = e.feeds.AddUser(ctx, feed.ID, "usr-ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)

		updated, err := e.feeds.RemoveUser(ctx, feed.ID, fc.b.ID)
		require.NoError(t, err)
		assert.Empty(t, updated.UserIDs)
		_, err = e.feeds.RemoveUser(ctx, feed.ID, fc.b.ID)
		assert.ErrorIs(t, err, ErrUserNotSelected)

		_, err = e.feeds.AddTagFilter(ctx, feed.ID, "x")
		require.NoError(t, err)
		_, err = e.feeds.AddTagFilter(ctx, feed.ID, "x")
		assert.ErrorIs(t, err, ErrTagAlreadySelected)
		_, err = e.feeds.AddTagFilter(ctx, feed.ID, "nope")
		assert.ErrorIs(t, err, ErrTagNotFound)

		_, err = e.feeds.RemoveTagFilter(ctx, feed.ID, "y")
		assert.ErrorIs(t, err, ErrTagNotSelected)
		_, err = e.feeds.RemoveTagFilter(ctx, feed.ID, "x")
		require.NoError(t, err)

		_, err = e.feeds.AddUser(ctx, "fed-missing", fc.b.ID)
		assert.ErrorIs(t, err, ErrFeedNotFound)
		_, err = e.feeds.AddTagFilter(ctx, "fed-missing", "x")
		assert.ErrorIs(t, err, ErrFeedNotFound)
		_, err = e.feeds.Evaluate(ctx, "fed-missing")
		assert.ErrorIs(t, err, ErrFeedNotFound)
	})
}

func TestFeedService_OwnershipAndLifecycle(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		bob := e.mustUser(t, "bob")

		f1, err := e.feeds.Create(ctx, alice.ID)
		require.NoError(t, err)
		f2, err := e.feeds.Create(ctx, alice.ID)
		require.NoError(t, err)
		_, err = e.feeds.Create(ctx, bob.ID)
		require.NoError(t, err)

		_, err = e.feeds.Create(ctx, "usr-ghost")
		assert.ErrorIs(t, err, ErrUserNotFound)

		owned, err := e.feeds.ListByOwner(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{f1.ID, f2.ID}, ids(owned, func(f *domain.Feed) string { return f.ID }))

		all, err := e.feeds.ListFeeds(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		_, err = e.feeds.Authorize(ctx, f1.ID, alice.ID)
		assert.NoError(t, err)
		_, err = e.feeds.Authorize(ctx, f1.ID, bob.ID)
		assert.ErrorIs(t, err, ErrNotFeedOwner)
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)

		require.NoError(t, e.feeds.Delete(ctx, f1.ID))
		assert.ErrorIs(t, e.feeds.Delete(ctx, f1.ID), ErrFeedNotFound)
		_, err = e.feeds.Get(ctx, f1.ID)
		assert.ErrorIs(t, err, ErrFeedNotFound)
		_, err = e.feeds.Authorize(ctx, f1.ID, alice.ID)
		assert.ErrorIs(t, err, ErrFeedNotFound)
	})
}
