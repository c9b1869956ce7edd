package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/kv"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// engine bundles every service over one store.
type engine struct {
	store  store.Store
	users  *UserService
	freets *FreetService
	tags   *TagService
	flags  *FlagService
	feeds  *FeedService
}

func newEngine(s store.Store) *engine {
	logger := slog.New(slog.DiscardHandler)
	return &engine{
		store:  s,
		users:  NewUserService(s, logger),
		freets: NewFreetService(s, logger),
		tags:   NewTagService(s, logger),
		flags:  NewFlagService(s, logger),
		feeds:  NewFeedService(s, logger),
	}
}

func openKV(t *testing.T) store.Store {
	t.Helper()
	s, err := kv.Open("", slog.New(slog.DiscardHandler), kv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openSQLite(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "fritter.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// eachBackend runs fn once per store implementation.
func eachBackend(t *testing.T, fn func(t *testing.T, e *engine)) {
	t.Helper()
	backends := []struct {
		name string
		open func(*testing.T) store.Store
	}{
		{"badger", openKV},
		{"sqlite", openSQLite},
	}
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			fn(t, newEngine(b.open(t)))
		})
	}
}

func (e *engine) mustUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), username)
	require.NoError(t, err)
	return u
}

func (e *engine) mustFreet(t *testing.T, author *domain.User, content string) *domain.Freet {
	t.Helper()
	f, err := e.freets.CreateFreet(context.Background(), author.ID, content)
	require.NoError(t, err)
	return f
}

func (e *engine) mustTag(t *testing.T, content string) *domain.Tag {
	t.Helper()
	tag, err := e.tags.CreateTag(context.Background(), content)
	require.NoError(t, err)
	return tag
}

func (e *engine) mustAttach(t *testing.T, f *domain.Freet, tagContent string) {
	t.Helper()
	_, err := e.tags.Attach(context.Background(), f.ID, tagContent)
	require.NoError(t, err)
}

func (e *engine) mustFlag(t *testing.T, f *domain.Freet) *domain.Flag {
	t.Helper()
	flag, err := e.flags.CreateFlag(context.Background(), f.ID, domain.FlagKindFact, "https://example.com/source")
	require.NoError(t, err)
	return flag
}

// reload fetches current copies of a freet and a tag in one snapshot.
func (e *engine) reload(t *testing.T, freetID, tagID string) (*domain.Freet, *domain.Tag) {
	t.Helper()
	var (
		f   *domain.Freet
		tag *domain.Tag
	)
	require.NoError(t, e.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		if f, err = tx.GetFreet(freetID); err != nil {
			return err
		}
		tag, err = tx.GetTag(tagID)
		return err
	}))
	return f, tag
}

func ids[T any](items []*T, idOf func(*T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = idOf(it)
	}
	return out
}

func freetIDs(freets []*domain.Freet) []string {
	return ids(freets, func(f *domain.Freet) string { return f.ID })
}

func challengerName(i int) string {
	return fmt.Sprintf("usr-challenger-%02d", i)
}
