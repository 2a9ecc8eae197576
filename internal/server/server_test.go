package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"vibelet/internal/config"
	"vibelet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testApp runs the full route surface against an in-memory database with no
// Redis and no image store.
type testApp struct {
	app *fiber.App
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Vibe{},
		&models.Comment{},
		&models.Like{},
		&models.Friendship{},
	))

	cfg := &config.Config{
		JWTSecret: "test-secret-with-at-least-32-characters",
		Port:      "8460",
		Env:       "test",
	}
	srv := NewServerWithDeps(cfg, db, nil, nil)

	app := fiber.New()
	srv.SetupRoutes(app)
	return &testApp{app: app}
}

func (ta *testApp) requestRaw(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (ta *testApp) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := ta.requestRaw(t, method, path, token, body)
	var parsed map[string]any
	if len(raw) > 0 && json.Valid(raw) {
		_ = json.Unmarshal(raw, &parsed)
	}
	return status, parsed
}

func (ta *testApp) requestList(t *testing.T, method, path, token string) (int, []map[string]any) {
	t.Helper()
	status, raw := ta.requestRaw(t, method, path, token, nil)
	var parsed []map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return status, parsed
}

// signup registers a user and returns the auth token and user ID.
func (ta *testApp) signup(t *testing.T, username string) (string, uint) {
	t.Helper()
	status, body := ta.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "Sup3rSecurePass",
	})
	require.Equal(t, http.StatusCreated, status, "signup for %s", username)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	return token, uint(user["id"].(float64))
}

func TestSignupAndLogin(t *testing.T) {
	ta := setupTestApp(t)

	token, _ := ta.signup(t, "alice")
	require.NotEmpty(t, token)

	status, _ := ta.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "Sup3rSecurePass",
	})
	assert.Equal(t, http.StatusConflict, status, "duplicate username must conflict")

	status, body := ta.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"])

	status, body = ta.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Sup3rSecurePass",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["token"])
}

func TestSignupRejectsWeakInput(t *testing.T) {
	ta := setupTestApp(t)

	status, _ := ta.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "ok_user",
		"email":    "ok@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ta.request(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"username": "has spaces",
		"email":    "ok@example.com",
		"password": "Sup3rSecurePass",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ta := setupTestApp(t)

	status, _ := ta.request(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.request(t, http.MethodGet, "/api/v1/vibes/feed", "not-a-valid-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestVibeLifecycle(t *testing.T) {
	ta := setupTestApp(t)
	aliceToken, _ := ta.signup(t, "alice")
	bobToken, _ := ta.signup(t, "bob")

	status, created := ta.request(t, http.MethodPost, "/api/v1/vibes", aliceToken, map[string]string{
		"content": "hello world",
		"privacy": "PUBLIC",
	})
	require.Equal(t, http.StatusCreated, status)
	vibePath := fmt.Sprintf("/api/v1/vibes/%d", int(created["id"].(float64)))

	status, got := ta.request(t, http.MethodGet, vibePath, bobToken, nil)
	assert.Equal(t, http.StatusOK, status, "public vibe is readable by anyone")
	assert.Equal(t, "hello world", got["content"])

	status, _ = ta.request(t, http.MethodPut, vibePath, bobToken, map[string]string{
		"content": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, status, "only the owner may edit")

	status, updated := ta.request(t, http.MethodPut, vibePath, aliceToken, map[string]string{
		"content": "edited",
		"privacy": "PRIVATE",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "edited", updated["content"])
	assert.Equal(t, "PRIVATE", updated["privacy"])

	status, _ = ta.request(t, http.MethodGet, vibePath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "private vibe is owner-only")

	status, _ = ta.request(t, http.MethodDelete, vibePath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ta.request(t, http.MethodDelete, vibePath, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = ta.request(t, http.MethodGet, vibePath, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestFriendshipGatesVisibility(t *testing.T) {
	ta := setupTestApp(t)
	aliceToken, aliceID := ta.signup(t, "alice")
	bobToken, bobID := ta.signup(t, "bob")

	status, created := ta.request(t, http.MethodPost, "/api/v1/vibes", bobToken, map[string]string{
		"content": "friends only",
		"privacy": "FRIENDS_ONLY",
	})
	require.Equal(t, http.StatusCreated, status)
	vibePath := fmt.Sprintf("/api/v1/vibes/%d", int(created["id"].(float64)))

	status, _ = ta.request(t, http.MethodGet, vibePath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "strangers cannot see FRIENDS_ONLY")

	status, edge := ta.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/friends/requests/%d", bobID), aliceToken, nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", edge["status"])
	edgeID := int(edge["id"].(float64))

	status, _ = ta.request(t, http.MethodGet, vibePath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "pending request grants nothing")

	status, pending := ta.requestList(t, http.MethodGet, "/api/v1/friends/requests", bobToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, pending, 1)
	assert.Equal(t, float64(aliceID), pending[0]["requester_id"])

	status, _ = ta.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/friends/requests/%d/accept", edgeID), aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "only the receiver may accept")

	status, accepted := ta.request(t, http.MethodPost,
		fmt.Sprintf("/api/v1/friends/requests/%d/accept", edgeID), bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACCEPTED", accepted["status"])

	status, got := ta.request(t, http.MethodGet, vibePath, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "friends only", got["content"])

	status, feed := ta.requestList(t, http.MethodGet, "/api/v1/vibes/feed", aliceToken)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, feed, 1, "friend's FRIENDS_ONLY vibe appears in the feed")

	status, _ = ta.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/friends/%d", edgeID), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = ta.request(t, http.MethodGet, vibePath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "unfriending revokes access")
}

func TestLikeAndCommentFlow(t *testing.T) {
	ta := setupTestApp(t)
	aliceToken, _ := ta.signup(t, "alice")
	bobToken, _ := ta.signup(t, "bob")

	status, created := ta.request(t, http.MethodPost, "/api/v1/vibes", aliceToken, map[string]string{
		"content": "like me",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PUBLIC", created["privacy"], "privacy defaults to PUBLIC")
	vibeID := int(created["id"].(float64))

	likePath := fmt.Sprintf("/api/v1/interactions/vibe/%d/like", vibeID)
	status, body := ta.request(t, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["liked"])
	assert.Equal(t, float64(1), body["like_count"])

	status, body = ta.request(t, http.MethodPost, likePath, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["liked"], "second like toggles off")
	assert.Equal(t, float64(0), body["like_count"])

	commentPath := fmt.Sprintf("/api/v1/interactions/vibe/%d/comment", vibeID)
	status, _ = ta.request(t, http.MethodPost, commentPath, bobToken, map[string]string{
		"content": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, status, "blank comment rejected")

	status, comment := ta.request(t, http.MethodPost, commentPath, bobToken, map[string]string{
		"content": "nice one",
	})
	require.Equal(t, http.StatusCreated, status)
	commentID := int(comment["id"].(float64))

	status, comments := ta.requestList(t, http.MethodGet,
		fmt.Sprintf("/api/v1/vibes/%d/comments", vibeID), aliceToken)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, comments, 1)

	status, _ = ta.request(t, http.MethodPut,
		fmt.Sprintf("/api/v1/comments/%d", commentID), aliceToken, map[string]string{
			"content": "rewritten",
		})
	assert.Equal(t, http.StatusForbidden, status, "only the author may edit a comment")

	status, _ = ta.request(t, http.MethodDelete,
		fmt.Sprintf("/api/v1/comments/%d", commentID), bobToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestExportImportRoundTrip(t *testing.T) {
	ta := setupTestApp(t)
	aliceToken, _ := ta.signup(t, "alice")

	status, _ := ta.request(t, http.MethodPost, "/api/v1/vibes", aliceToken, map[string]string{
		"content": "keep this",
	})
	require.Equal(t, http.StatusCreated, status)

	status, raw := ta.requestRaw(t, http.MethodGet, "/api/v1/data/export", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var snapshot models.DataExport
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	assert.Equal(t, "alice", snapshot.Username)
	require.Len(t, snapshot.Vibes, 1)

	// Replaying a snapshot into the same account must be a no-op.
	status, result := ta.request(t, http.MethodPost, "/api/v1/data/import", aliceToken, snapshot)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), result["imported_vibes"])
	assert.Equal(t, float64(0), result["imported_friends"])
}

func TestHealthEndpoints(t *testing.T) {
	ta := setupTestApp(t)

	status, body := ta.request(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = ta.request(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	checks, _ := body["checks"].(map[string]any)
	require.NotNil(t, checks)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}
