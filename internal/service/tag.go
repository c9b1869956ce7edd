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

// TagService owns the bidirectional mapping between tags and freets.
// Tags are community-wide: any freet can carry any tag, addressed by content.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// CreateTag registers a new tag with an empty tagged set.
// Content is stored exactly as given; "Go" and "go" are different tags.
func (s *TagService) CreateTag(ctx context.Context, content string) (*domain.Tag, error) {
	if err := domain.ValidateTagContent(content); err != nil {
		return nil, invalidInput(err)
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, fmt.Errorf("generate tag id: %w", err)
	}
	tag := domain.NewTag(tagID, content)

	err = s.store.Update(ctx, func(tx store.Tx) error {
		err := tx.CreateTag(tag)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrDuplicateTag.WithMessagef("tag %q already exists", content)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "tag_content", content)
	return tag, nil
}

// FindByContent returns the tag with exactly this content.
func (s *TagService) FindByContent(ctx context.Context, content string) (*domain.Tag, error) {
	var tag *domain.Tag
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		tag, err = getTagByContent(tx, content)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// ListTags returns every tag sorted by content.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		tags, err = tx.ListTags()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Attach labels a freet with a tag. Both sides of the edge are written in
// one transaction. Returns the updated tag.
func (s *TagService) Attach(ctx context.Context, freetID, tagContent string) (*domain.Tag, error) {
	var tag *domain.Tag
	err := s.store.Update(ctx, func(tx store.Tx) error {
		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}
		t, err := getTagByContent(tx, tagContent)
		if err != nil {
			return err
		}

		if !freet.AddTag(t.ID) {
			return ErrAlreadyTagged.WithMessagef("freet %s is already tagged %q", freetID, tagContent)
		}
		t.AddFreet(freet.ID)

		if err := tx.UpdateFreet(freet); err != nil {
			return fmt.Errorf("update freet: %w", err)
		}
		if err := tx.UpdateTag(t); err != nil {
			return fmt.Errorf("update tag: %w", err)
		}
		tag = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tag attached", "freet_id", freetID, "tag_content", tagContent)
	return tag, nil
}

// Detach removes a tag from a freet, both sides in one transaction.
// The tag itself survives even when its tagged set becomes empty.
func (s *TagService) Detach(ctx context.Context, freetID, tagContent string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}
		t, err := getTagByContent(tx, tagContent)
		if err != nil {
			return err
		}

		if !freet.RemoveTag(t.ID) {
			return ErrNotTagged.WithMessagef("freet %s is not tagged %q", freetID, tagContent)
		}
		t.RemoveFreet(freet.ID)

		if err := tx.UpdateFreet(freet); err != nil {
			return fmt.Errorf("update freet: %w", err)
		}
		if err := tx.UpdateTag(t); err != nil {
			return fmt.Errorf("update tag: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("tag detached", "freet_id", freetID, "tag_content", tagContent)
	return nil
}

// FreetsForTag returns the freets carrying a tag, in the order they were tagged.
func (s *TagService) FreetsForTag(ctx context.Context, tagContent string) ([]*domain.Freet, error) {
	var freets []*domain.Freet
	err := s.store.View(ctx, func(tx store.Tx) error {
		t, err := getTagByContent(tx, tagContent)
		if err != nil {
			return err
		}
		freets, err = loadFreets(tx, t.TaggedIDs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return freets, nil
}

// TagsForFreet returns the full tag records of a freet in its tag-list order.
func (s *TagService) TagsForFreet(ctx context.Context, freetID string) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	err := s.store.View(ctx, func(tx store.Tx) error {
		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}

		tags = make([]*domain.Tag, 0, len(freet.TagIDs))
		for _, tagID := range freet.TagIDs {
			t, err := tx.GetTag(tagID)
			if err != nil {
				return fmt.Errorf("load tag %s: %w", tagID, err)
			}
			tags = append(tags, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}
