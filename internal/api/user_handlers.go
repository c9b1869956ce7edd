package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register user",
		Description:   "Registers a new username. The returned id is the caller identity for X-User-ID.",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns every user sorted by username",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}",
		Summary:     "Get user",
		Description: "Returns a user by username",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserFreets",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{username}/freets",
		Summary:     "Get user freets",
		Description: "Returns a user's freets, most recently modified first",
		Tags:        []string{"Users"},
	}, s.handleGetUserFreets)
}

// === DTOs ===

// CreateUserRequest is the request body for registering a user.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=32,username" doc:"Letters, digits, and underscore"`
}

// CreateUserInput wraps the create user request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UserListResponse contains a list of users.
type UserListResponse struct {
	Users []UserResponse `json:"users" doc:"Users"`
}

// UserListOutput wraps the user list response for Huma.
type UserListOutput struct {
	Body UserListResponse
}

// GetUserInput contains parameters for getting a user.
type GetUserInput struct {
	Username string `path:"username" doc:"Username"`
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.User.CreateUser(ctx, input.Body.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*UserListOutput, error) {
	users, err := s.services.User.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = newUserResponse(u)
	}
	return &UserListOutput{Body: UserListResponse{Users: resp}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	user, err := s.services.User.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: newUserResponse(user)}, nil
}

func (s *Server) handleGetUserFreets(ctx context.Context, input *GetUserInput) (*FreetListOutput, error) {
	user, err := s.services.User.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	freets, err := s.services.Freet.ListByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &FreetListOutput{Body: FreetListResponse{Freets: newFreetResponses(freets)}}, nil
}
