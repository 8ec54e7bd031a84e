package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefanpenner/taskbuddy/pkg/api"
)

func serve(t *testing.T, s *Server, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(api.HeaderAuthToken, token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestUnknownRouteIsJSON(t *testing.T) {
	rec := serve(t, New(nil), http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Not found", errorBody(t, rec))
}

func TestGoalsRequireKnownToken(t *testing.T) {
	s := New(nil)
	rec := serve(t, s, http.MethodGet, "/goals", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, s, http.MethodGet, "/goals", "made-up")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorBody(t, rec))

	u := s.AddUser("a@b.c", "pw", "a")
	tok := s.IssueToken(u.ID)
	rec = serve(t, s, http.MethodGet, "/goals", tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.RevokeToken(tok)
	rec = serve(t, s, http.MethodGet, "/goals", tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteIsSoft(t *testing.T) {
	s := New(nil)
	u := s.AddUser("a@b.c", "pw", "a")
	tok := s.IssueToken(u.ID)
	g := s.AddGoal(u.ID, api.GoalInput{Title: "x", Category: "home", Priority: "low"})

	rec := serve(t, s, http.MethodDelete, "/goals?id=999", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, s, http.MethodDelete, "/goals", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, s, http.MethodDelete, "/goals?id="+strconv.FormatInt(g.ID, 10), tok)
	require.Equal(t, http.StatusOK, rec.Code)

	goals := s.Goals(u.ID)
	require.Len(t, goals, 1)
	assert.Equal(t, api.GoalStatusDeleted, goals[0].Status)
}

func TestGoalsAreScopedToOwner(t *testing.T) {
	s := New(nil)
	alice := s.AddUser("alice@b.c", "pw", "alice")
	bob := s.AddUser("bob@b.c", "pw", "bob")
	g := s.AddGoal(alice.ID, api.GoalInput{Title: "x", Category: "home", Priority: "low"})

	rec := serve(t, s, http.MethodDelete, "/goals?id="+strconv.FormatInt(g.ID, 10), s.IssueToken(bob.ID))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Goal not found", errorBody(t, rec))
}

func TestSeedDemo(t *testing.T) {
	s := New(nil)
	today := time.Date(2025, 10, 14, 9, 0, 0, 0, time.Local)
	u, tok := s.SeedDemo(today)

	assert.Equal(t, DemoEmail, u.Email)
	assert.NotEmpty(t, tok)
	goals := s.Goals(u.ID)
	assert.Len(t, goals, len(demoGoals))
	assert.Equal(t, 4, s.UnreadCount(u.ID))

	var completed int
	for _, g := range goals {
		if g.Status == api.GoalStatusCompleted {
			completed++
			assert.Equal(t, 100, g.Progress)
		}
	}
	assert.Equal(t, 1, completed)
}

func TestPurgedGoalIsNotFound(t *testing.T) {
	s := New(nil)
	u := s.AddUser("a@b.c", "pw", "a")
	tok := s.IssueToken(u.ID)
	g := s.AddGoal(u.ID, api.GoalInput{Title: "x", Category: "home", Priority: "low"})

	assert.True(t, s.PurgeGoal(g.ID))
	assert.False(t, s.PurgeGoal(g.ID))
	assert.Empty(t, s.Goals(u.ID))

	rec := serve(t, s, http.MethodDelete, "/goals?id="+strconv.FormatInt(g.ID, 10), tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
