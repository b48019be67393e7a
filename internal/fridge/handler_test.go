package fridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrekaya/fridgemate/backend/internal/middleware"
	"github.com/emrekaya/fridgemate/backend/internal/models"
)

// setupTestServer wires the fridge routes behind header-mode auth, the same
// shape the real router uses.
func setupTestServer(t *testing.T, users ...*models.User) *httptest.Server {
	t.Helper()

	svc := NewService(newMemUserStore(users...), newMemFridgeStore(), 5)
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Route("/fridges", func(r chi.Router) {
		r.Use(middleware.RequireAuth(middleware.ModeHeader, nil))
		r.Post("/", h.Create)
		r.Post("/join", h.Join)
		r.Post("/leave", h.Leave)
		r.Get("/me", h.Me)
		r.Get("/me/members", h.Members)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, userID string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestFridgeRoutesRequireAuth(t *testing.T) {
	srv := setupTestServer(t)

	resp := do(t, srv, http.MethodGet, "/fridges/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateFridgeValidation(t *testing.T) {
	srv := setupTestServer(t, user("alice", "Alice"))

	resp := do(t, srv, http.MethodPost, "/fridges", "alice", models.CreateFridgeRequest{Name: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "VALIDATION", body["code"])
}

// TestFridgeLifecycle walks the full scenario: create, join, list members,
// leave, and the resulting 404.
func TestFridgeLifecycle(t *testing.T) {
	srv := setupTestServer(t, user("alice", "Alice"), user("bob", "Bob"))

	// Alice creates a fridge.
	resp := do(t, srv, http.MethodPost, "/fridges", "alice", models.CreateFridgeRequest{Name: "Kitchen"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.CreateFridgeResponse](t, resp)
	require.NotEmpty(t, created.FridgeID)
	require.Regexp(t, `^[A-Z0-9]{6}$`, created.InviteCode)

	// Bob joins with the code.
	resp = do(t, srv, http.MethodPost, "/fridges/join", "bob", models.JoinFridgeRequest{InviteCode: created.InviteCode})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	joined := decode[models.JoinFridgeResponse](t, resp)
	assert.Equal(t, created.FridgeID, joined.FridgeID)

	// Bob joining again conflicts.
	resp = do(t, srv, http.MethodPost, "/fridges/join", "bob", models.JoinFridgeRequest{InviteCode: created.InviteCode})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Members for either user come back in join order.
	type membersBody struct {
		Items []models.MemberProfile `json:"items"`
		Total int                    `json:"total"`
		Page  int                    `json:"page"`
		Limit int                    `json:"limit"`
	}
	for _, uid := range []string{"alice", "bob"} {
		resp = do(t, srv, http.MethodGet, "/fridges/me/members", uid, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[membersBody](t, resp)
		assert.Equal(t, 2, body.Total)
		require.Len(t, body.Items, 2)
		assert.Equal(t, "alice", body.Items[0].UserID)
		assert.Equal(t, "bob", body.Items[1].UserID)
		assert.Equal(t, 1, body.Page)
	}

	// Bob leaves.
	resp = do(t, srv, http.MethodPost, "/fridges/leave", "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	leave := decode[map[string]bool](t, resp)
	assert.True(t, leave["ok"])

	// Alice's member list shrinks to just her.
	resp = do(t, srv, http.MethodGet, "/fridges/me/members", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[membersBody](t, resp)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "alice", body.Items[0].UserID)

	// Bob no longer has a fridge.
	resp = do(t, srv, http.MethodGet, "/fridges/me", "bob", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errBody := decode[map[string]string](t, resp)
	assert.Equal(t, "NO_ACTIVE_FRIDGE", errBody["code"])

	// A second leave is a bad request.
	resp = do(t, srv, http.MethodPost, "/fridges/leave", "bob", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
