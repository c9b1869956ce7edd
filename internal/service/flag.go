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

// FlagService owns moderation flags on freets and the challenge state machine:
//
//	active --challenge reaching threshold--> retired(challenged)
//	active --delete--> retired(deleted)
//
// Retired flags are kept as tombstones but every lookup reports them as not found.
type FlagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFlagService creates a new flag service.
func NewFlagService(store store.Store, logger *slog.Logger) *FlagService {
	return &FlagService{
		store:  store,
		logger: logger,
	}
}

// ChallengeResult is the outcome of a successful challenge.
type ChallengeResult struct {
	Flag *domain.Flag `json:"flag"`
	// Retired is true when this challenge pushed the flag over the threshold.
	Retired bool `json:"retired"`
}

// CreateFlag attaches a new flag of kind to a freet.
// A freet carries at most one active flag per kind.
func (s *FlagService) CreateFlag(ctx context.Context, freetID string, kind domain.FlagKind, source string) (*domain.Flag, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidInput.WithMessagef("unknown flag kind %q", kind)
	}
	if err := domain.ValidateFlagSource(source); err != nil {
		return nil, invalidInput(err)
	}

	flagID, err := id.Generate(id.PrefixFlag)
	if err != nil {
		return nil, fmt.Errorf("generate flag id: %w", err)
	}

	var flag *domain.Flag
	err = s.store.Update(ctx, func(tx store.Tx) error {
		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}

		for _, existingID := range freet.FlagIDs {
			existing, err := tx.GetFlag(existingID)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get flag: %w", err)
			}
			if existing.IsActive() && existing.Kind == kind {
				return ErrDuplicateKind.WithMessagef("freet %s already has an active %s flag", freetID, kind)
			}
		}

		flag = domain.NewFlag(flagID, freet.ID, kind, source)
		if err := tx.CreateFlag(flag); err != nil {
			return fmt.Errorf("create flag: %w", err)
		}
		freet.AddFlag(flag.ID)
		if err := tx.UpdateFreet(freet); err != nil {
			return fmt.Errorf("update freet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("flag created", "flag_id", flag.ID, "freet_id", freetID, "kind", kind)
	return flag, nil
}

// GetFlag returns an active flag.
func (s *FlagService) GetFlag(ctx context.Context, flagID string) (*domain.Flag, error) {
	var flag *domain.Flag
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		flag, err = getActiveFlag(tx, flagID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return flag, nil
}

// Challenge records userID's challenge against a flag. The challenge that
// brings the count to domain.ChallengeRetirementThreshold retires the flag
// and detaches it from its freet in the same transaction, so concurrent
// challengers at the boundary see exactly one retirement.
func (s *FlagService) Challenge(ctx context.Context, flagID, userID string) (*ChallengeResult, error) {
	var result *ChallengeResult
	err := s.store.Update(ctx, func(tx store.Tx) error {
		flag, err := getActiveFlag(tx, flagID)
		if err != nil {
			return err
		}
		if !flag.RecordChallenge(userID) {
			return ErrAlreadyChallenged.WithMessagef("user %s already challenged flag %s", userID, flagID)
		}

		retired := !flag.IsActive()
		if retired {
			if err := s.detachFromFreet(tx, flag); err != nil {
				return err
			}
		}
		if err := tx.UpdateFlag(flag); err != nil {
			return fmt.Errorf("update flag: %w", err)
		}

		result = &ChallengeResult{Flag: flag, Retired: retired}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("flag challenged",
		"flag_id", flagID,
		"user_id", userID,
		"challenges", result.Flag.Challenges,
		"retired", result.Retired,
	)
	return result, nil
}

// DeleteFlag retires a flag and removes it from its freet.
// A second delete of the same id fails with ErrFlagNotFound.
func (s *FlagService) DeleteFlag(ctx context.Context, flagID string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		flag, err := getActiveFlag(tx, flagID)
		if err != nil {
			return err
		}

		flag.Retire(domain.RetiredByDeletion)
		if err := s.detachFromFreet(tx, flag); err != nil {
			return err
		}
		if err := tx.UpdateFlag(flag); err != nil {
			return fmt.Errorf("update flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("flag deleted", "flag_id", flagID)
	return nil
}

// ListFlags returns every active flag, oldest first.
func (s *FlagService) ListFlags(ctx context.Context) ([]*domain.Flag, error) {
	var active []*domain.Flag
	err := s.store.View(ctx, func(tx store.Tx) error {
		all, err := tx.ListFlags()
		if err != nil {
			return fmt.Errorf("list flags: %w", err)
		}
		active = make([]*domain.Flag, 0, len(all))
		for _, f := range all {
			if f.IsActive() {
				active = append(active, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return active, nil
}

// FlagsForFreet returns a freet's active flags in the order they were created.
func (s *FlagService) FlagsForFreet(ctx context.Context, freetID string) ([]*domain.Flag, error) {
	var flags []*domain.Flag
	err := s.store.View(ctx, func(tx store.Tx) error {
		freet, err := getFreet(tx, freetID)
		if err != nil {
			return err
		}

		flags = make([]*domain.Flag, 0, len(freet.FlagIDs))
		for _, flagID := range freet.FlagIDs {
			flag, err := tx.GetFlag(flagID)
			if err != nil {
				return fmt.Errorf("load flag %s: %w", flagID, err)
			}
			if flag.IsActive() {
				flags = append(flags, flag)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flags, nil
}

// detachFromFreet drops a flag id from its owning freet's flag list.
func (s *FlagService) detachFromFreet(tx store.Tx, flag *domain.Flag) error {
	freet, err := tx.GetFreet(flag.FreetID)
	if errors.Is(err, store.ErrNotFound) {
		// The freet was deleted; its flags were retired with it.
		return nil
	}
	if err != nil {
		return fmt.Errorf("get freet: %w", err)
	}
	if !freet.RemoveFlag(flag.ID) {
		return nil
	}
	if err := tx.UpdateFreet(freet); err != nil {
		return fmt.Errorf("update freet: %w", err)
	}
	return nil
}
