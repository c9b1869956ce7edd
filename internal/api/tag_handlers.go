package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag sorted by content",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a community-wide tag. Content is case-sensitive.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{content}",
		Summary:     "Get tag",
		Description: "Returns a tag by its exact content",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagFreets",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{content}/freets",
		Summary:     "Get tag freets",
		Description: "Returns the freets carrying a tag, in tagging order",
		Tags:        []string{"Tags"},
	}, s.handleGetTagFreets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFreetTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/freets/{id}/tags",
		Summary:     "Get freet tags",
		Description: "Returns a freet's tags in the order they were attached",
		Tags:        []string{"Tags"},
	}, s.handleGetFreetTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "attachTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/freets/{id}/tags",
		Summary:     "Attach tag",
		Description: "Labels a freet with an existing tag. Author only.",
		Tags:        []string{"Tags"},
	}, s.handleAttachTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "detachTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/freets/{id}/tags/{content}",
		Summary:     "Detach tag",
		Description: "Removes a tag from a freet. The tag itself is kept. Author only.",
		Tags:        []string{"Tags"},
	}, s.handleDetachTag)
}

// === DTOs ===

// TagContentRequest names a tag by its content.
type TagContentRequest struct {
	Content string `json:"content" validate:"notblank,max=20" doc:"Tag text, 1-20 characters"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	Body   TagContentRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// TagListOutput wraps the tag list response for Huma.
type TagListOutput struct {
	Body TagListResponse
}

// GetTagInput contains parameters for getting a tag.
type GetTagInput struct {
	Content string `path:"content" doc:"Tag content"`
}

// AttachTagInput wraps the attach request for Huma.
type AttachTagInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Freet ID"`
	Body   TagContentRequest
}

// DetachTagInput contains parameters for detaching a tag.
type DetachTagInput struct {
	UserID  string `header:"X-User-ID" doc:"Caller user ID"`
	ID      string `path:"id" doc:"Freet ID"`
	Content string `path:"content" doc:"Tag content"`
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagListOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Body: TagListResponse{Tags: newTagResponses(tags)}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	if _, err := s.authenticate(ctx, input.UserID); err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.CreateTag(ctx, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(t)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *GetTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.FindByContent(ctx, input.Content)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(t)}, nil
}

func (s *Server) handleGetTagFreets(ctx context.Context, input *GetTagInput) (*FreetListOutput, error) {
	freets, err := s.services.Tag.FreetsForTag(ctx, input.Content)
	if err != nil {
		return nil, err
	}
	return &FreetListOutput{Body: FreetListResponse{Freets: newFreetResponses(freets)}}, nil
}

func (s *Server) handleGetFreetTags(ctx context.Context, input *GetFreetInput) (*TagListOutput, error) {
	tags, err := s.services.Tag.TagsForFreet(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Body: TagListResponse{Tags: newTagResponses(tags)}}, nil
}

func (s *Server) handleAttachTag(ctx context.Context, input *AttachTagInput) (*TagOutput, error) {
	if _, err := s.requireFreetAuthor(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	t, err := s.services.Tag.Attach(ctx, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: newTagResponse(t)}, nil
}

func (s *Server) handleDetachTag(ctx context.Context, input *DetachTagInput) (*struct{}, error) {
	if _, err := s.requireFreetAuthor(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	if err := s.services.Tag.Detach(ctx, input.ID, input.Content); err != nil {
		return nil, err
	}
	return nil, nil
}
