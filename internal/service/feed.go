package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/id"
	"github.com/fritterapp/fritter-server/internal/store"
)

// FeedService owns saved feeds and evaluates their filter against all freets.
//
// A feed selects by author set U and tag set T. An empty set places no
// constraint, so an empty feed matches everything; when both are non-empty
// a freet must satisfy both. Results are newest-modified first.
type FeedService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFeedService creates a new feed service.
func NewFeedService(store store.Store, logger *slog.Logger) *FeedService {
	return &FeedService{
		store:  store,
		logger: logger,
	}
}

// Create makes an empty feed owned by ownerID.
func (s *FeedService) Create(ctx context.Context, ownerID string) (*domain.Feed, error) {
	feedID, err := id.Generate(id.PrefixFeed)
	if err != nil {
		return nil, fmt.Errorf("generate feed id: %w", err)
	}
	feed := domain.NewFeed(feedID, ownerID)

	err = s.store.Update(ctx, func(tx store.Tx) error {
		if _, err := getUser(tx, ownerID); err != nil {
			return err
		}
		return tx.CreateFeed(feed)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feed created", "feed_id", feed.ID, "owner_id", ownerID)
	return feed, nil
}

// Get returns a feed by id.
func (s *FeedService) Get(ctx context.Context, feedID string) (*domain.Feed, error) {
	var feed *domain.Feed
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		feed, err = getFeed(tx, feedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return feed, nil
}

// ListByOwner returns a user's feeds, oldest first.
func (s *FeedService) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Feed, error) {
	var feeds []*domain.Feed
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		feeds, err = tx.ListFeedsByOwner(ownerID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// ListFeeds returns every feed, oldest first.
func (s *FeedService) ListFeeds(ctx context.Context) ([]*domain.Feed, error) {
	var feeds []*domain.Feed
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		feeds, err = tx.ListFeeds()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	return feeds, nil
}

// Delete removes a feed.
func (s *FeedService) Delete(ctx context.Context, feedID string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		err := tx.DeleteFeed(feedID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrFeedNotFound.WithMessagef("feed %s not found", feedID)
		}
		return err
	})
	if err != nil {
		return err
	}

	s.logger.Info("feed deleted", "feed_id", feedID)
	return nil
}

// Authorize returns the feed if userID owns it.
func (s *FeedService) Authorize(ctx context.Context, feedID, userID string) (*domain.Feed, error) {
	feed, err := s.Get(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if !feed.IsOwnedBy(userID) {
		return nil, ErrNotFeedOwner.WithMessagef("user %s does not own feed %s", userID, feedID)
	}
	return feed, nil
}

// AddUser selects an author.
func (s *FeedService) AddUser(ctx context.Context, feedID, userID string) (*domain.Feed, error) {
	return s.mutate(ctx, feedID, "feed user added", func(tx store.Tx, feed *domain.Feed) error {
		if _, err := getUser(tx, userID); err != nil {
			return err
		}
		if !feed.AddUser(userID) {
			return ErrUserAlreadySelected.WithMessagef("user %s is already selected in feed %s", userID, feedID)
		}
		return nil
	}, "user_id", userID)
}

// RemoveUser deselects an author.
func (s *FeedService) RemoveUser(ctx context.Context, feedID, userID string) (*domain.Feed, error) {
	return s.mutate(ctx, feedID, "feed user removed", func(tx store.Tx, feed *domain.Feed) error {
		if _, err := getUser(tx, userID); err != nil {
			return err
		}
		if !feed.RemoveUser(userID) {
			return ErrUserNotSelected.WithMessagef("user %s is not selected in feed %s", userID, feedID)
		}
		return nil
	}, "user_id", userID)
}

// AddTagFilter selects a tag by content.
func (s *FeedService) AddTagFilter(ctx context.Context, feedID, tagContent string) (*domain.Feed, error) {
	return s.mutate(ctx, feedID, "feed tag added", func(tx store.Tx, feed *domain.Feed) error {
		tag, err := getTagByContent(tx, tagContent)
		if err != nil {
			return err
		}
		if !feed.AddTag(tag.ID) {
			return ErrTagAlreadySelected.WithMessagef("tag %q is already selected in feed %s", tagContent, feedID)
		}
		return nil
	}, "tag_content", tagContent)
}

// RemoveTagFilter deselects a tag by content.
func (s *FeedService) RemoveTagFilter(ctx context.Context, feedID, tagContent string) (*domain.Feed, error) {
	return s.mutate(ctx, feedID, "feed tag removed", func(tx store.Tx, feed *domain.Feed) error {
		tag, err := getTagByContent(tx, tagContent)
		if err != nil {
			return err
		}
		if !feed.RemoveTag(tag.ID) {
			return ErrTagNotSelected.WithMessagef("tag %q is not selected in feed %s", tagContent, feedID)
		}
		return nil
	}, "tag_content", tagContent)
}

// mutate loads a feed, applies fn, and saves it in one transaction.
func (s *FeedService) mutate(ctx context.Context, feedID, msg string, fn func(store.Tx, *domain.Feed) error, logArgs ...any) (*domain.Feed, error) {
	var feed *domain.Feed
	err := s.store.Update(ctx, func(tx store.Tx) error {
		f, err := getFeed(tx, feedID)
		if err != nil {
			return err
		}
		if err := fn(tx, f); err != nil {
			return err
		}
		if err := tx.UpdateFeed(f); err != nil {
			return fmt.Errorf("update feed: %w", err)
		}
		feed = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(msg, append([]any{"feed_id", feedID}, logArgs...)...)
	return feed, nil
}

// Evaluate returns the freets a feed selects, most recently modified first.
// Ties are broken by insertion order, newest first.
func (s *FeedService) Evaluate(ctx context.Context, feedID string) ([]*domain.Freet, error) {
	var result []*domain.Freet
	err := s.store.View(ctx, func(tx store.Tx) error {
		feed, err := getFeed(tx, feedID)
		if err != nil {
			return err
		}

		var candidates []*domain.Freet
		if len(feed.UserIDs) > 0 {
			candidates, err = tx.ListFreetsByAuthors(feed.UserIDs)
		} else {
			candidates, err = tx.ListFreets()
		}
		if err != nil {
			return fmt.Errorf("list freets: %w", err)
		}

		result = make([]*domain.Freet, 0, len(candidates))
		for _, f := range candidates {
			if feed.Matches(f) {
				result = append(result, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	domain.SortNewestFirst(result)
	return result, nil
}
