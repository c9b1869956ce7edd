package service

import (
	"errors"
	"fmt"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/store"
)

// The helpers below load one record inside a transaction and translate
// store.ErrNotFound into the named failure kind for that record.

func getFreet(tx store.Tx, freetID string) (*domain.Freet, error) {
	f, err := tx.GetFreet(freetID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrContentNotFound.WithMessagef("freet %s not found", freetID)
	}
	if err != nil {
		return nil, fmt.Errorf("get freet: %w", err)
	}
	return f, nil
}

func getTagByContent(tx store.Tx, content string) (*domain.Tag, error) {
	t, err := tx.GetTagByContent(content)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTagNotFound.WithMessagef("tag %q not found", content)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return t, nil
}

// getActiveFlag treats a retired flag exactly like a missing one.
func getActiveFlag(tx store.Tx, flagID string) (*domain.Flag, error) {
	f, err := tx.GetFlag(flagID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFlagNotFound.WithMessagef("flag %s not found", flagID)
	}
	if err != nil {
		return nil, fmt.Errorf("get flag: %w", err)
	}
	if !f.IsActive() {
		return nil, ErrFlagNotFound.WithMessagef("flag %s not found", flagID)
	}
	return f, nil
}

func getFeed(tx store.Tx, feedID string) (*domain.Feed, error) {
	f, err := tx.GetFeed(feedID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrFeedNotFound.WithMessagef("feed %s not found", feedID)
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return f, nil
}

func getUser(tx store.Tx, userID string) (*domain.User, error) {
	u, err := tx.GetUser(userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound.WithMessagef("user %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// loadFreets resolves ids in order. A missing id means a back-reference
// outlived its freet, which the write paths never allow.
func loadFreets(tx store.Tx, freetIDs []string) ([]*domain.Freet, error) {
	out := make([]*domain.Freet, 0, len(freetIDs))
	for _, freetID := range freetIDs {
		f, err := tx.GetFreet(freetID)
		if err != nil {
			return nil, fmt.Errorf("load freet %s: %w", freetID, err)
		}
		out = append(out, f)
	}
	return out, nil
}
