package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/service"
	"github.com/fritterapp/fritter-server/internal/store/kv"
)

// testEnvelope mirrors the response envelope with a typed payload.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a server over an in-memory store.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	st, err := kv.Open("", logger, kv.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	services := &Services{
		User:  service.NewUserService(st, logger),
		Freet: service.NewFreetService(st, logger),
		Tag:   service.NewTagService(st, logger),
		Flag:  service.NewFlagService(st, logger),
		Feed:  service.NewFeedService(st, logger),
	}

	s := NewServer(config.ServerConfig{CORSAllowedOrigins: []string{"*"}}, st, services, logger)
	return &testServer{Server: s, api: humatest.Wrap(t, s.api)}
}

// decode unmarshals an envelope and returns it.
func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), "body: %s", resp.Body.String())
	assert.Equal(t, EnvelopeVersion, envelope.Version)
	return envelope
}

// requireFailure asserts an error response with the given status and reason.
func requireFailure(t *testing.T, resp *httptest.ResponseRecorder, status int, reason string) {
	t.Helper()
	require.Equal(t, status, resp.Code, "body: %s", resp.Body.String())
	envelope := decode[json.RawMessage](t, resp)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Error)
	if reason != "" {
		assert.Equal(t, reason, envelope.Reason)
	}
}

func as(userID string) string {
	return HeaderUserID + ": " + userID
}

func (ts *testServer) createUser(t *testing.T, username string) UserResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/users", map[string]any{"username": username})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	return decode[UserResponse](t, resp).Data
}

func (ts *testServer) createFreet(t *testing.T, author UserResponse, content string) FreetResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/freets", as(author.ID), map[string]any{"content": content})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	return decode[FreetResponse](t, resp).Data
}

func (ts *testServer) createTag(t *testing.T, caller UserResponse, content string) TagResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/tags", as(caller.ID), map[string]any{"content": content})
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	return decode[TagResponse](t, resp).Data
}

func (ts *testServer) attach(t *testing.T, author UserResponse, freet FreetResponse, content string) {
	t.Helper()
	resp := ts.api.Put("/api/v1/freets/"+freet.ID+"/tags", as(author.ID), map[string]any{"content": content})
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())
}

func freetResponseIDs(freets []FreetResponse) []string {
	ids := make([]string, len(freets))
	for i, f := range freets {
		ids[i] = f.ID
	}
	return ids
}

// === Tests ===

func TestServer_RequestIDHeader(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.NotEmpty(t, resp.Header().Get(HeaderRequestID))

	resp = ts.api.Get("/health", HeaderRequestID+": req-123")
	assert.Equal(t, "req-123", resp.Header().Get(HeaderRequestID))
}

func TestServer_Identity(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/freets", map[string]any{"content": "hi"})
	requireFailure(t, resp, http.StatusUnauthorized, "")

	resp = ts.api.Post("/api/v1/freets", as("usr-ghost"), map[string]any{"content": "hi"})
	requireFailure(t, resp, http.StatusUnauthorized, "")
	assert.Equal(t, "UNAUTHORIZED", decode[json.RawMessage](t, resp).Code)
}

func TestServer_OpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/api/v1/feeds/{id}/freets")
	assert.Contains(t, doc.Paths, "/api/v1/flags/{id}/challenges")
}
