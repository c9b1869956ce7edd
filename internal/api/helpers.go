package api

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/domain"
	"github.com/fritterapp/fritter-server/internal/service"
)

// authenticate resolves the X-User-ID header to a known user.
func (s *Server) authenticate(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, huma.Error401Unauthorized("Missing " + HeaderUserID + " header")
	}

	user, err := s.services.User.GetUser(ctx, userID)
	if errors.Is(err, service.ErrUserNotFound) {
		return nil, huma.Error401Unauthorized("Unknown user")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// requireFreetAuthor authenticates the caller and checks they wrote the freet.
func (s *Server) requireFreetAuthor(ctx context.Context, userID, freetID string) (*domain.User, error) {
	user, err := s.authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.services.Freet.Authorize(ctx, freetID, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// requireFeedOwner authenticates the caller and checks they own the feed.
func (s *Server) requireFeedOwner(ctx context.Context, userID, feedID string) (*domain.Feed, error) {
	user, err := s.authenticate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.services.Feed.Authorize(ctx, feedID, user.ID)
}

// validate runs struct-tag validation on a request body.
func (s *Server) validate(body any) error {
	return s.validator.Validate(body)
}
