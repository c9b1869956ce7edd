package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fritterapp/fritter-server/internal/domain"
)

func (s *Server) registerFlagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createFlag",
		Method:        http.MethodPost,
		Path:          "/api/v1/flags",
		Summary:       "Create flag",
		Description:   "Flags a freet. At most one active flag per kind. Any user may flag.",
		Tags:          []string{"Flags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateFlag)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFlags",
		Method:      http.MethodGet,
		Path:        "/api/v1/flags",
		Summary:     "List flags",
		Description: "Returns every active flag, oldest first",
		Tags:        []string{"Flags"},
	}, s.handleListFlags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFlag",
		Method:      http.MethodGet,
		Path:        "/api/v1/flags/{id}",
		Summary:     "Get flag",
		Description: "Returns an active flag",
		Tags:        []string{"Flags"},
	}, s.handleGetFlag)

	huma.Register(s.api, huma.Operation{
		OperationID: "challengeFlag",
		Method:      http.MethodPost,
		Path:        "/api/v1/flags/{id}/challenges",
		Summary:     "Challenge flag",
		Description: "Records the caller's challenge. The eleventh distinct challenger retires the flag.",
		Tags:        []string{"Flags"},
	}, s.handleChallengeFlag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFlag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/flags/{id}",
		Summary:     "Delete flag",
		Description: "Retires a flag. Any user may delete a flag.",
		Tags:        []string{"Flags"},
	}, s.handleDeleteFlag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFreetFlags",
		Method:      http.MethodGet,
		Path:        "/api/v1/freets/{id}/flags",
		Summary:     "Get freet flags",
		Description: "Returns a freet's active flags in creation order",
		Tags:        []string{"Flags"},
	}, s.handleGetFreetFlags)
}

// === DTOs ===

// CreateFlagRequest is the request body for creating a flag.
type CreateFlagRequest struct {
	FreetID string `json:"freet_id" validate:"required" doc:"Freet to flag"`
	Kind    string `json:"kind" validate:"required,flagkind" doc:"Flag kind" example:"Fact"`
	Source  string `json:"source" validate:"notblank,max=140" doc:"Supporting source, 1-140 characters"`
}

// CreateFlagInput wraps the create flag request for Huma.
type CreateFlagInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	Body   CreateFlagRequest
}

// FlagOutput wraps the flag response for Huma.
type FlagOutput struct {
	Body FlagResponse
}

// FlagListOutput wraps the flag list response for Huma.
type FlagListOutput struct {
	Body FlagListResponse
}

// ChallengeOutput wraps the challenge response for Huma.
type ChallengeOutput struct {
	Body ChallengeResponse
}

// GetFlagInput contains parameters for getting a flag.
type GetFlagInput struct {
	ID string `path:"id" doc:"Flag ID"`
}

// FlagActionInput identifies a flag and the caller acting on it.
type FlagActionInput struct {
	UserID string `header:"X-User-ID" doc:"Caller user ID"`
	ID     string `path:"id" doc:"Flag ID"`
}

// === Handlers ===

func (s *Server) handleCreateFlag(ctx context.Context, input *CreateFlagInput) (*FlagOutput, error) {
	if err := s.validate(input.Body); err != nil {
		return nil, err
	}
	if _, err := s.authenticate(ctx, input.UserID); err != nil {
		return nil, err
	}

	flag, err := s.services.Flag.CreateFlag(ctx, input.Body.FreetID, domain.FlagKind(input.Body.Kind), input.Body.Source)
	if err != nil {
		return nil, err
	}
	return &FlagOutput{Body: newFlagResponse(flag)}, nil
}

func (s *Server) handleGetFlag(ctx context.Context, input *GetFlagInput) (*FlagOutput, error) {
	flag, err := s.services.Flag.GetFlag(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FlagOutput{Body: newFlagResponse(flag)}, nil
}

func (s *Server) handleChallengeFlag(ctx context.Context, input *FlagActionInput) (*ChallengeOutput, error) {
	user, err := s.authenticate(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Flag.Challenge(ctx, input.ID, user.ID)
	if err != nil {
		return nil, err
	}
	return &ChallengeOutput{Body: newChallengeResponse(result)}, nil
}

func (s *Server) handleDeleteFlag(ctx context.Context, input *FlagActionInput) (*struct{}, error) {
	if _, err := s.authenticate(ctx, input.UserID); err != nil {
		return nil, err
	}

	if err := s.services.Flag.DeleteFlag(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleListFlags(ctx context.Context, _ *struct{}) (*FlagListOutput, error) {
	flags, err := s.services.Flag.ListFlags(ctx)
	if err != nil {
		return nil, err
	}
	return &FlagListOutput{Body: newFlagListResponse(flags)}, nil
}

func (s *Server) handleGetFreetFlags(ctx context.Context, input *GetFreetInput) (*FlagListOutput, error) {
	flags, err := s.services.Flag.FlagsForFreet(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &FlagListOutput{Body: newFlagListResponse(flags)}, nil
}

func newFlagListResponse(flags []*domain.Flag) FlagListResponse {
	resp := make([]FlagResponse, len(flags))
	for i, f := range flags {
		resp[i] = newFlagResponse(f)
	}
	return FlagListResponse{Flags: resp}
}
