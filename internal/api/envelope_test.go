package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/fritterapp/fritter-server/internal/errors"
	"github.com/fritterapp/fritter-server/internal/service"
	"github.com/fritterapp/fritter-server/internal/store"
)

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"no content response", "204", nil},
		{"plain error", "500", errors.New("boom")},
		{"api error", "404", &APIError{Code: "NOT_FOUND", Reason: "TAG_NOT_FOUND", Message: "tag not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			jsonBytes, err := json.Marshal(result)
			require.NoError(t, err)

			var envelope map[string]any
			require.NoError(t, json.Unmarshal(jsonBytes, &envelope))
			assert.Equal(t, float64(EnvelopeVersion), envelope["v"])
			assert.Contains(t, envelope, "success")
		})
	}
}

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"content": "golang"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_ErrorWithReason(t *testing.T) {
	apiErr := &APIError{
		Code:    "CONFLICT",
		Reason:  "ALREADY_TAGGED",
		Message: "freet already has this tag",
		Details: map[string]string{"tag": "go"},
	}

	result, err := EnvelopeTransformer(nil, "409", apiErr)
	require.NoError(t, err)

	envelope, ok := result.(APIErrorEnvelope)
	require.True(t, ok, "Expected APIErrorEnvelope type")
	assert.False(t, envelope.Success)
	assert.Equal(t, "CONFLICT", envelope.Code)
	assert.Equal(t, "ALREADY_TAGGED", envelope.Reason)
	assert.Equal(t, "freet already has this tag", envelope.Error)
	assert.Equal(t, map[string]string{"tag": "go"}, envelope.Details)
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantReason string
	}{
		{"not found kind", service.ErrTagNotFound, http.StatusNotFound, "NOT_FOUND", "TAG_NOT_FOUND"},
		{"conflict kind", service.ErrAlreadyChallenged, http.StatusConflict, "CONFLICT", "ALREADY_CHALLENGED"},
		{"forbidden kind", service.ErrNotFeedOwner, http.StatusForbidden, "FORBIDDEN", "NOT_FEED_OWNER"},
		{"validation", domainerrors.Validation("bad"), http.StatusBadRequest, "VALIDATION", ""},
		{"wrapped kind", errors.Join(errors.New("ctx"), service.ErrFlagNotFound), http.StatusNotFound, "NOT_FOUND", "FLAG_NOT_FOUND"},
		{"exhausted txn retries", fmt.Errorf("attach tag: %w", store.ErrConflict), http.StatusConflict, "CONFLICT", "TXN_CONFLICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statusErr := huma.NewError(http.StatusInternalServerError, "unexpected error occurred", tt.err)

			var apiErr *APIError
			require.ErrorAs(t, statusErr, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.GetStatus())
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantReason, apiErr.Reason)
		})
	}
}

func TestErrorHandler_TxnConflictIsRetryable(t *testing.T) {
	RegisterErrorHandler()

	statusErr := huma.NewError(http.StatusInternalServerError, "unexpected error occurred",
		fmt.Errorf("update flag: %w", store.ErrConflict))

	var apiErr *APIError
	require.ErrorAs(t, statusErr, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.GetStatus())
	assert.Equal(t, "concurrent update, retry the request", apiErr.Message)
	assert.NotContains(t, apiErr.Message, "internal server error")
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	RegisterErrorHandler()

	statusErr := huma.NewError(http.StatusInternalServerError, "badger: disk full", errors.New("badger: disk full"))
	assert.Equal(t, http.StatusInternalServerError, statusErr.GetStatus())
	assert.Equal(t, "internal server error", statusErr.Error())
}
