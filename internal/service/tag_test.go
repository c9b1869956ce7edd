package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/fritterapp/fritter-server/internal/domain"
	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
)

func TestTagService_CreateTag(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()

		tag, err := e.tags.CreateTag(ctx, "golang")
		require.NoError(t, err)
		assert.Equal(t, "golang", tag.Content)
		assert.Empty(t, tag.TaggedIDs)
		assert.True(t, strings.HasPrefix(tag.ID, "tag-"))

		_, err = e.tags.CreateTag(ctx, "golang")
		assert.ErrorIs(t, err, ErrDuplicateTag)
		assert.ErrorIs(t, err, domainerrors.ErrConflict)

		// Content is case-sensitive.
		_, err = e.tags.CreateTag(ctx, "GoLang")
		assert.NoError(t, err)
	})
}

func TestTagService_CreateTag_InvalidContent(t *testing.T) {
	e := newEngine(openKV(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace only", "   \t"},
		{"too long", strings.Repeat("a", domain.MaxTagContentLength+1)},
		{"invalid utf-8", "go\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.tags.CreateTag(ctx, tt.content)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}

	_, err := e.tags.CreateTag(ctx, strings.Repeat("é", domain.MaxTagContentLength))
	assert.NoError(t, err, "limit counts characters, not bytes")
}

func TestTagService_AttachIsBidirectional(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		f := e.mustFreet(t, alice, "hello")
		tag := e.mustTag(t, "news")

		_, err := e.tags.Attach(ctx, f.ID, "news")
		require.NoError(t, err)

		gotFreet, gotTag := e.reload(t, f.ID, tag.ID)
		assert.Equal(t, []string{tag.ID}, gotFreet.TagIDs)
		assert.Equal(t, []string{f.ID}, gotTag.TaggedIDs)
		assert.True(t, f.ModifiedAt.Equal(gotFreet.ModifiedAt), "tagging is not an edit")

		_, err = e.tags.Attach(ctx, f.ID, "news")
		assert.ErrorIs(t, err, ErrAlreadyTagged)

		gotFreet, gotTag = e.reload(t, f.ID, tag.ID)
		assert.Len(t, gotFreet.TagIDs, 1)
		assert.Len(t, gotTag.TaggedIDs, 1)
	})
}

func TestTagService_AttachErrors(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		f := e.mustFreet(t, alice, "hello")
		e.mustTag(t, "news")

		_, err := e.tags.Attach(ctx, "frt-missing", "news")
		assert.ErrorIs(t, err, ErrContentNotFound)

		_, err = e.tags.Attach(ctx, "frt-missing", "nope")
		assert.ErrorIs(t, err, ErrContentNotFound, "missing freet is reported before missing tag")

		_, err = e.tags.Attach(ctx, f.ID, "nope")
		assert.ErrorIs(t, err, ErrTagNotFound)
		assert.ErrorIs(t, err, domainerrors.ErrNotFound)
		assert.NotErrorIs(t, err, ErrContentNotFound)

		_, err = e.tags.Attach(ctx, f.ID, "News")
		assert.ErrorIs(t, err, ErrTagNotFound, "lookup is case-sensitive")
	})
}

func TestTagService_Detach(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		f := e.mustFreet(t, alice, "hello")
		tag := e.mustTag(t, "news")
		e.mustAttach(t, f, "news")

		require.NoError(t, e.tags.Detach(ctx, f.ID, "news"))

		gotFreet, gotTag := e.reload(t, f.ID, tag.ID)
		assert.Empty(t, gotFreet.TagIDs)
		assert.Empty(t, gotTag.TaggedIDs)

		err := e.tags.Detach(ctx, f.ID, "news")
		assert.ErrorIs(t, err, ErrNotTagged, "second detach fails the same way every time")
		err = e.tags.Detach(ctx, f.ID, "news")
		assert.ErrorIs(t, err, ErrNotTagged)

		// The tag outlives its last freet.
		found, err := e.tags.FindByContent(ctx, "news")
		require.NoError(t, err)
		assert.Equal(t, tag.ID, found.ID)

		assert.ErrorIs(t, e.tags.Detach(ctx, "frt-missing", "news"), ErrContentNotFound)
		assert.ErrorIs(t, e.tags.Detach(ctx, f.ID, "nope"), ErrTagNotFound)
	})
}

func TestTagService_Ordering(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		f1 := e.mustFreet(t, alice, "one")
		f2 := e.mustFreet(t, alice, "two")
		f3 := e.mustFreet(t, alice, "three")
		for _, c := range []string{"zeta", "alpha", "mid"} {
			e.mustTag(t, c)
		}

		// Tagged set keeps attach order, not creation order.
		e.mustAttach(t, f3, "alpha")
		e.mustAttach(t, f1, "alpha")
		e.mustAttach(t, f2, "alpha")

		freets, err := e.tags.FreetsForTag(ctx, "alpha")
		require.NoError(t, err)
		if diff := cmp.Diff([]string{f3.ID, f1.ID, f2.ID}, freetIDs(freets)); diff != "" {
			t.Errorf("FreetsForTag mismatch (-want +got):\n%s", diff)
		}

		// Tag list keeps attach order too.
		e.mustAttach(t, f1, "zeta")
		e.mustAttach(t, f1, "mid")
		tags, err := e.tags.TagsForFreet(ctx, f1.ID)
		require.NoError(t, err)
		contents := ids(tags, func(tg *domain.Tag) string { return tg.Content })
		assert.Equal(t, []string{"alpha", "zeta", "mid"}, contents)

		all, err := e.tags.ListTags(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, ids(all, func(tg *domain.Tag) string { return tg.Content }))

		_, err = e.tags.FreetsForTag(ctx, "missing")
		assert.ErrorIs(t, err, ErrTagNotFound)
		_, err = e.tags.TagsForFreet(ctx, "frt-missing")
		assert.ErrorIs(t, err, ErrContentNotFound)
	})
}

func TestTagService_ConcurrentAttachSameEdge(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		f := e.mustFreet(t, alice, "hello")
		tag := e.mustTag(t, "news")

		const callers = 8
		errs := make([]error, callers)
		var g errgroup.Group
		for i := range callers {
			g.Go(func() error {
				_, errs[i] = e.tags.Attach(ctx, f.ID, "news")
				return nil
			})
		}
		require.NoError(t, g.Wait())

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, ErrAlreadyTagged)
		}
		assert.Equal(t, 1, succeeded)

		gotFreet, gotTag := e.reload(t, f.ID, tag.ID)
		assert.Equal(t, []string{tag.ID}, gotFreet.TagIDs)
		assert.Equal(t, []string{f.ID}, gotTag.TaggedIDs)
	})
}

func TestTagService_ConcurrentAttachDetachStayConsistent(t *testing.T) {
	eachBackend(t, func(t *testing.T, e *engine) {
		ctx := context.Background()
		alice := e.mustUser(t, "alice")
		tag := e.mustTag(t, "hot")

		const n = 12
		freets := make([]*domain.Freet, n)
		for i := range n {
			freets[i] = e.mustFreet(t, alice, fmt.Sprintf("freet %d", i))
		}
		// Even freets start tagged and get detached; odd ones get attached.
		for i := 0; i < n; i += 2 {
			e.mustAttach(t, freets[i], "hot")
		}

		var g errgroup.Group
		for i, f := range freets {
			g.Go(func() error {
				if i%2 == 0 {
					return e.tags.Detach(ctx, f.ID, "hot")
				}
				_, err := e.tags.Attach(ctx, f.ID, "hot")
				return err
			})
		}
		require.NoError(t, g.Wait())

		var want []string
		for i := 1; i < n; i += 2 {
			want = append(want, freets[i].ID)
		}

		_, gotTag := e.reload(t, freets[0].ID, tag.ID)
		got := slices.Clone(gotTag.TaggedIDs)
		slices.Sort(got)
		slices.Sort(want)
		assert.Equal(t, want, got)

		for i, f := range freets {
			gotFreet, _ := e.reload(t, f.ID, tag.ID)
			assert.Equal(t, i%2 == 1, gotFreet.HasTag(tag.ID), "freet %d", i)
		}
	})
}
