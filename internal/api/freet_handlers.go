package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerFreetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFreet",
		Method:        http.MethodPost,
		Path:          "/api/v1/freets",
		Summary:       "Create freet",
		Description:   "Posts a freet authored by the caller",
		Tags:          []string{"Freets"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFreet)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFreets",
		Method:      http.MethodGet,
		Path:        "/api/v1/freets",
		Summary:     "List freets",
		Description: "Returns every freet, most recently modified first",
		Tags:        []string{"Freets"},
	}, s.handleListFreets)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFreet",
		Method:      http.MethodGet,
		Path:        "/api/v1/freets/{id}",
		Summary:     "Get freet",
		Description: "Returns a freet by ID",
		Tags:        []string{"Freets"},
	}, s.handleGetFreet)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFreet",
		Method:      http.MethodPatch,
		Path:        "/api/v1/freets/{id}",
		Summary:     "Edit freet",
		Description: "Replaces a freet's content. Author only.",
		Tags:        []string{"Freets"},
	}, s.handleUpdateFreet)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFreet",
		Method:      http.MethodDelete,
		Path:        "/api/v1/freets/{id}",
		Summary:     "Delete freet",
		Description: "Deletes a freet, detaching its tags and retiring its flags. Author only.",
		Tags:        []string{"Freets"},
	}, s.handleDeleteFreet)
}

// === DTOs ===

// FreetContentRequest is the request body for creating or editing a freet.
type FreetContentRequest struct {
	Content string `json:"content" validate:"notblank,max=140" doc:"Freet body, 1-140 characters"`
}

// CreateFreetInput wraps the create freet request for Huma.
type CreateFreetInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	Body   FreetContentRequest
}

// FreetOutput wraps the freet response for Huma.
type FreetOutput struct {
	Body FreetResponse
}

// FreetListOutput wraps the freet list response for Huma.
type FreetListOutput struct {
	Body FreetListResponse
}

// GetFreetInput contains parameters for getting a freet.
type GetFreetInput struct {
	ID string `path:"id" doc:"Freet ID"`
}

// UpdateFreetInput wraps the edit freet request for Huma.
type UpdateFreetInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Freet ID"`
	Body   FreetContentRequest
}

// DeleteFreetInput contains parameters for deleting a freet.
type DeleteFreetInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Freet ID"`
}

// === Handlers ===

func (s *Server) handleCreateFreet(ctx context.Context, input *CreateFreetInput) (*FreetOutput, error) {
	user, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	freet, err := s.services.Freet.CreateFreet(ctx, user.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &FreetOutput{Body: newFreetResponse(freet)}, nil
}

func (s *Server) handleListFreets(ctx context.Context, _ *struct{}) (*FreetListOutput, error) {
	freets, err := s.services.Freet.ListFreets(ctx)
	if err != nil {
		return nil, err
	}
	return &FreetListOutput{Body: FreetListResponse{Freets: newFreetResponses(freets)}}, nil
}

func (s *Server) handleGetFreet(ctx context.Context, input *GetFreetInput) (*FreetOutput, error) {
	freet, err := s.services.Freet.GetFreet(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FreetOutput{Body: newFreetResponse(freet)}, nil
}

func (s *Server) handleUpdateFreet(ctx context.Context, input *UpdateFreetInput) (*FreetOutput, error) {
	if _, err := s.requireFreetAuthor(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	freet, err := s.services.Freet.UpdateFreet(ctx, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}
	return &FreetOutput{Body: newFreetResponse(freet)}, nil
}

func (s *Server) handleDeleteFreet(ctx context.Context, input *DeleteFreetInput) (*struct{}, error) {
	if _, err := s.requireFreetAuthor(ctx, input.UserID, input.ID); err != nil {
		return nil, err
	}
	if err := s.services.Freet.DeleteFreet(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
