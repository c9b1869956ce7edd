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

// FreetService supplies freets to the rest of the engine and handles
// author-facing create, edit, and delete.
type FreetService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFreetService creates a new freet service.
func NewFreetService(store store.Store, logger *slog.Logger) *FreetService {
	return &FreetService{
		store:  store,
		logger: logger,
	}
}

// CreateFreet publishes a new freet by authorID.
func (s *FreetService) CreateFreet(ctx context.Context, authorID, content string) (*domain.Freet, error) {
	if err := domain.ValidateFreetContent(content); err != nil {
		return nil, invalidInput(err)
	}

	freetID, err := id.Generate(id.PrefixFreet)
	if err != nil {
		return nil, fmt.Errorf("generate freet id: %w", err)
	}

	var freet *domain.Freet
	err = s.store.Update(ctx, func(tx store.Tx) error {
		if _, err := getUser(tx, authorID); err != nil {
			return err
		}
		freet = domain.NewFreet(freetID, authorID, content)
		return tx.CreateFreet(freet)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("freet created", "freet_id", freet.ID, "author_id", authorID)
	return freet, nil
}

// GetFreet returns a freet by id.
func (s *FreetService) GetFreet(ctx context.Context, freetID string) (*domain.Freet, error) {
	var freet *domain.Freet
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		freet, err = getFreet(tx, freetID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return freet, nil
}

// Authorize returns the freet if userID wrote it.
func (s *FreetService) Authorize(ctx context.Context, freetID, userID string) (*domain.Freet, error) {
	freet, err := s.GetFreet(ctx, freetID)
	if err != nil {
		return nil, err
	}
	if freet.AuthorID != userID {
		return nil, ErrNotFreetAuthor.WithMessagef("user %s is not the author of freet %s", userID, freetID)
	}
	return freet, nil
}

// ListFreets returns every freet, most recently modified first.
func (s *FreetService) ListFreets(ctx context.Context) ([]*domain.Freet, error) {
	var freets []*domain.Freet
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		freets, err = tx.ListFreets()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list freets: %w", err)
	}
	domain.SortNewestFirst(freets)
	return freets, nil
}

// ListByAuthor returns one author's freets, most recently modified first.
func (s *FreetService) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Freet, error) {
	var freets []*domain.Freet
	err := s.store.View(ctx, func(tx store.Tx) error {
		if _, err := getUser(tx, authorID); err != nil {
			return err
		}
		var err error
		freets, err = tx.ListFreetsByAuthors([]string{authorID})
		return err
	})
	if err != nil {
		return nil, err
	}
	domain.SortNewestFirst(freets)
	return freets, nil
}

// UpdateFreet replaces a freet's content and bumps its modification time.
func (s *FreetService) UpdateFreet(ctx context.Context, freetID, content string) (*domain.Freet, error) {
	if err := domain.ValidateFreetContent(content); err != nil {
		return nil, invalidInput(err)
	}

	var freet *domain.Freet
	err := s.store.Update(ctx, func(tx store.Tx) error {
		f, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}
		f.Edit(content)
		if err := tx.UpdateFreet(f); err != nil {
			return fmt.Errorf("update freet: %w", err)
		}
		freet = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("freet updated", "freet_id", freetID)
	return freet, nil
}

// DeleteFreet removes a freet together with every back-reference to it:
// the freet leaves each tag's tagged set and all its active flags are
// retired, in the same transaction as the delete.
func (s *FreetService) DeleteFreet(ctx context.Context, freetID string) error {
	var tagsCleared, flagsRetired int
	err := s.store.Update(ctx, func(tx store.Tx) error {
		tagsCleared, flagsRetired = 0, 0

		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}

		for _, tagID := range freet.TagIDs {
			tag, err := tx.GetTag(tagID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get tag: %w", err)
			}
			if tag.RemoveFreet(freet.ID) {
				if err := tx.UpdateTag(tag); err != nil {
					return fmt.Errorf("update tag: %w", err)
				}
				tagsCleared++
			}
		}

		for _, flagID := range freet.FlagIDs {
			flag, err := tx.GetFlag(flagID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get flag: %w", err)
			}
			if flag.IsActive() {
				flag.Retire(domain.RetiredByDeletion)
				if err := tx.UpdateFlag(flag); err != nil {
					return fmt.Errorf("update flag: %w", err)
				}
				flagsRetired++
			}
		}

		if err := tx.DeleteFreet(freet.ID); err != nil {
			return fmt.Errorf("delete freet: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("freet deleted",
		"freet_id", freetID,
		"tags_cleared", tagsCleared,
		"flags_retired", flagsRetired,
	)
	return nil
}
