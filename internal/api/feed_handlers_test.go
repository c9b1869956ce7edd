package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createFeed(t *testing.T, owner UserResponse) FeedResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/feeds", as(owner.ID))
	require.Equal(t, http.StatusCreated, resp.Code, "body: %s", resp.Body.String())
	return decode[FeedResponse](t, resp).Data
}

func (ts *testServer) evaluate(t *testing.T, owner UserResponse, feed FeedResponse) []string {
	t.Helper()
	resp := ts.api.Get("/api/v1/feeds/"+feed.ID+"/freets", as(owner.ID))
	require.Equal(t, http.StatusOK, resp.Code, "body: %s", resp.Body.String())
	return freetResponseIDs(decode[FreetListResponse](t, resp).Data.Freets)
}

func TestFeed_Filters(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	carol := ts.createUser(t, "carol")

	ts.createTag(t, alice, "x")
	ts.createTag(t, alice, "y")

	a1 := ts.createFreet(t, alice, "a1")
	ts.attach(t, alice, a1, "x")
	b1 := ts.createFreet(t, bob, "b1")
	ts.attach(t, bob, b1, "x")
	ts.attach(t, bob, b1, "y")
	c1 := ts.createFreet(t, carol, "c1")
	ts.attach(t, carol, c1, "y")

	feed := ts.createFeed(t, carol)
	assert.Equal(t, carol.ID, feed.OwnerID)

	// Empty feed selects everything, newest first.
	assert.Equal(t, []string{c1.ID, b1.ID, a1.ID}, ts.evaluate(t, carol, feed))

	resp := ts.api.Put("/api/v1/feeds/"+feed.ID+"/users/alice", as(carol.ID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/users/bob", as(carol.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{b1.ID, a1.ID}, ts.evaluate(t, carol, feed))

	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/tags/y", as(carol.ID))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{b1.ID}, ts.evaluate(t, carol, feed))

	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/tags/y", as(carol.ID))
	requireFailure(t, resp, http.StatusConflict, "TAG_ALREADY_SELECTED")

	resp = ts.api.Delete("/api/v1/feeds/"+feed.ID+"/users/alice", as(carol.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Delete("/api/v1/feeds/"+feed.ID+"/users/alice", as(carol.ID))
	requireFailure(t, resp, http.StatusConflict, "USER_NOT_SELECTED")

	resp = ts.api.Delete("/api/v1/feeds/"+feed.ID+"/tags/y", as(carol.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decode[FeedResponse](t, resp).Data
	assert.Equal(t, []string{bob.ID}, updated.UserIDs)
	assert.Empty(t, updated.TagIDs)
}

func TestFeed_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice")
	bob := ts.createUser(t, "bob")
	feed := ts.createFeed(t, alice)

	resp := ts.api.Get("/api/v1/feeds/"+feed.ID, as(bob.ID))
	requireFailure(t, resp, http.StatusForbidden, "NOT_FEED_OWNER")

	resp = ts.api.Get("/api/v1/feeds/"+feed.ID+"/freets", as(bob.ID))
	requireFailure(t, resp, http.StatusForbidden, "NOT_FEED_OWNER")

	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/users/bob", as(bob.ID))
	requireFailure(t, resp, http.StatusForbidden, "NOT_FEED_OWNER")

	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/users/nobody", as(alice.ID))
	requireFailure(t, resp, http.StatusNotFound, "USER_NOT_FOUND")

	resp = ts.api.Put("/api/v1/feeds/"+feed.ID+"/tags/nothing", as(alice.ID))
	requireFailure(t, resp, http.StatusNotFound, "TAG_NOT_FOUND")

	resp = ts.api.Get("/api/v1/feeds", as(bob.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[FeedListResponse](t, resp).Data.Feeds)

	resp = ts.api.Get("/api/v1/feeds", as(alice.ID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[FeedListResponse](t, resp).Data.Feeds, 1)

	resp = ts.api.Delete("/api/v1/feeds/"+feed.ID, as(alice.ID))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/feeds/"+feed.ID, as(alice.ID))
	requireFailure(t, resp, http.StatusNotFound, "FEED_NOT_FOUND")
}
