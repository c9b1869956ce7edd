package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/domain"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFeed",
		Method:        http.MethodPost,
		Path:          "/api/v1/feeds",
		Summary:       "Create feed",
		Description:   "Creates an empty feed owned by the caller. An empty feed selects every freet.",
		Tags:          []string{"Feeds"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeeds",
		Method:      http.MethodGet,
		Path:        "/api/v1/feeds",
		Summary:     "List feeds",
		Description: "Returns the caller's feeds",
		Tags:        []string{"Feeds"},
	}, s.handleListFeeds)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feeds/{id}",
		Summary:     "Get feed",
		Description: "Returns a feed. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleGetFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFeed",
		Method:      http.MethodDelete,
		Path:        "/api/v1/feeds/{id}",
		Summary:     "Delete feed",
		Description: "Deletes a feed. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleDeleteFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "evaluateFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feeds/{id}/freets",
		Summary:     "Evaluate feed",
		Description: "Returns the freets the feed selects, most recently modified first. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleEvaluateFeed)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFeedUser",
		Method:      http.MethodPut,
		Path:        "/api/v1/feeds/{id}/users/{username}",
		Summary:     "Select author",
		Description: "Adds an author to the feed's author filter. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleAddFeedUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFeedUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/feeds/{id}/users/{username}",
		Summary:     "Deselect author",
		Description: "Removes an author from the feed's author filter. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleRemoveFeedUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "addFeedTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/feeds/{id}/tags/{content}",
		Summary:     "Select tag",
		Description: "Adds a tag to the feed's tag filter. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleAddFeedTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFeedTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/feeds/{id}/tags/{content}",
		Summary:     "Deselect tag",
		Description: "Removes a tag from the feed's tag filter. Owner only.",
		Tags:        []string{"Feeds"},
	}, s.handleRemoveFeedTag)
}

// === DTOs ===

// CallerInput carries only the caller identity.
type CallerInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
}

// FeedInput identifies a feed and the caller acting on it.
type FeedInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Feed ID"`
}

// FeedUserInput identifies a feed and an author selector.
type FeedUserInput struct {
	UserID   string `header:"X-User-ID" doc:"Caller user ID"`
	ID       string `path:"id" doc:"Feed ID"`
	Username string `path:"username" doc:"Author username"`
}

// FeedTagInput identifies a feed and a tag selector.
type FeedTagInput struct {
	UserID  string `header:"X-User-ID" doc:"Caller user ID"`
	ID      string `path:"id" doc:"Feed ID"`
	Content string `path:"content" doc:"Tag content"`
}

// FeedOutput wraps the feed response for Huma.
type FeedOutput struct {
	Body FeedResponse
}

// FeedListOutput wraps the feed list response for Huma.
type FeedListOutput struct {
	Body FeedListResponse
}

// === Handlers ===

func (s *Server) handleCreateFeed(ctx context.Context, input *CallerInput) (*FeedOutput, error) {
	user, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	feed, err := s.services.Feed.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: newFeedResponse(feed)}, nil
}

func (s *Server) handleListFeeds(ctx context.Context, input *CallerInput) (*FeedListOutput, error) {
	user, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	feeds, err := s.services.Feed.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]FeedResponse, len(feeds))
	for i, f := range feeds {
		resp[i] = newFeedResponse(f)
	}
	return &FeedListOutput{Body: FeedListResponse{Feeds: resp}}, nil
}

func (s *Server) handleGetFeed(ctx context.Context, input *FeedInput) (*FeedOutput, error) {
	feed, err := s.requireFeedOwner(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: newFeedResponse(feed)}, nil
}

func (s *Server) handleDeleteFeed(ctx context.Context, input *FeedInput) (*struct{}, error) {
	if _, err := s.requireFeedOwner(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	if err := s.services.Feed.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleEvaluateFeed(ctx context.Context, input *FeedInput) (*FreetListOutput, error) {
	if _, err := s.requireFeedOwner(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}

	freets, err := s.services.Feed.Evaluate(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FreetListOutput{Body: FreetListResponse{Freets: newFreetResponses(freets)}}, nil
}

func (s *Server) handleAddFeedUser(ctx context.Context, input *FeedUserInput) (*FeedOutput, error) {
	return s.editFeedUsers(ctx, input, s.services.Feed.AddUser)
}

func (s *Server) handleRemoveFeedUser(ctx context.Context, input *FeedUserInput) (*FeedOutput, error) {
	return s.editFeedUsers(ctx, input, s.services.Feed.RemoveUser)
}

func (s *Server) handleAddFeedTag(ctx context.Context, input *FeedTagInput) (*FeedOutput, error) {
	return s.editFeedTags(ctx, input, s.services.Feed.AddTagFilter)
}

func (s *Server) handleRemoveFeedTag(ctx context.Context, input *FeedTagInput) (*FeedOutput, error) {
	return s.editFeedTags(ctx, input, s.services.Feed.RemoveTagFilter)
}

type feedEdit func(ctx context.Context, feedID, selector string) (*domain.Feed, error)

func (s *Server) editFeedUsers(ctx context.Context, input *FeedUserInput, edit feedEdit) (*FeedOutput, error) {
	if _, err := s.requireFeedOwner(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	author, err := s.services.User.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	feed, err := edit(ctx, input.ID, author.ID)
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: newFeedResponse(feed)}, nil
}

func (s *Server) editFeedTags(ctx context.Context, input *FeedTagInput, edit feedEdit) (*FeedOutput, error) {
	if _, err := s.requireFeedOwner(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}

	feed, err := edit(ctx, input.ID, input.Content)
	if err != nil {
		return nil, err
	}
	return &FeedOutput{Body: newFeedResponse(feed)}, nil
}
