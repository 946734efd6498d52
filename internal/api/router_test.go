package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rngapp/rng-api/internal/auth"
	"github.com/rngapp/rng-api/internal/database"
	"github.com/rngapp/rng-api/internal/lucra"
	"github.com/rngapp/rng-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// newTestServer spins up the full router over an in-memory database and a
// permissive fake Lucra API.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	fakeLucra := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	t.Cleanup(fakeLucra.Close)

	userService := services.NewUserService(db)
	numberService := services.NewNumberService(db)
	bindingService := services.NewBindingService(db)
	lucraService := services.NewLucraService(db, lucra.NewClient(fakeLucra.URL, "test-key"), bindingService)

	srv := httptest.NewServer(NewRouter(db, userService, numberService, bindingService, lucraService))
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a request with an optional body and rng-user-id header, and
// decodes the JSON response into a generic map.
func doJSON(t *testing.T, srv *httptest.Server, method, path, userID string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(auth.HeaderUserID, userID)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// signupUser registers a user through the API and returns its id as a string
// suitable for the rng-user-id header.
func signupUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()

	status, body := doJSON(t, srv, http.MethodPost, "/signup", "", map[string]any{
		"fullName": "Test User",
		"email":    email,
		"password": "test123",
	})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "id")
	return fmt.Sprintf("%.0f", body["id"].(float64))
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)

	// Missing header, before any database access.
	status, body := doJSON(t, srv, http.MethodGet, "/rng", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])

	// Header present but not an integer.
	status, body = doJSON(t, srv, http.MethodGet, "/rng", "not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid user ID", body["error"])

	// Integer, but no such user.
	status, body = doJSON(t, srv, http.MethodGet, "/rng", "424242", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["error"])
}

func TestSignupAndLogin(t *testing.T) {
	srv := newTestServer(t)

	userID := signupUser(t, srv, "flow@example.com")
	assert.NotEmpty(t, userID)

	// Duplicate email.
	status, body := doJSON(t, srv, http.MethodPost, "/signup", "", map[string]any{
		"fullName": "Someone Else",
		"email":    "flow@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already have an account", body["error"])

	// Missing required fields.
	status, body = doJSON(t, srv, http.MethodPost, "/signup", "", map[string]any{
		"email": "incomplete@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Full name, email, and password are required", body["error"])

	// Successful login returns the projection, never the password.
	status, body = doJSON(t, srv, http.MethodPost, "/login", "", map[string]any{
		"email":    "flow@example.com",
		"password": "test123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "flow@example.com", body["email"])
	assert.Equal(t, "Test User", body["fullName"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "passwordHash")

	// Wrong password.
	status, body = doJSON(t, srv, http.MethodPost, "/login", "", map[string]any{
		"email":    "flow@example.com",
		"password": "nope",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestRngAndStats(t *testing.T) {
	srv := newTestServer(t)
	userID := signupUser(t, srv, "rng@example.com")

	for i := 0; i < 3; i++ {
		status, body := doJSON(t, srv, http.MethodGet, "/rng", userID, nil)
		require.Equal(t, http.StatusOK, status)
		number := body["number"].(float64)
		assert.GreaterOrEqual(t, number, 1.0)
		assert.LessOrEqual(t, number, 10000.0)
		assert.Contains(t, body, "created_at")
	}

	status, body := doJSON(t, srv, http.MethodGet, "/stats", userID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3.0, body["totalNumbersGenerated"])
	assert.Positive(t, body["bestNumber"].(float64))
}

func TestHistoryPagination(t *testing.T) {
	srv := newTestServer(t)
	userID := signupUser(t, srv, "history@example.com")

	for i := 0; i < 3; i++ {
		status, _ := doJSON(t, srv, http.MethodGet, "/rng", userID, nil)
		require.Equal(t, http.StatusOK, status)
	}

	status, body := doJSON(t, srv, http.MethodGet, "/numbers?limit=2&page=1", userID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["page"])
	assert.Equal(t, 2.0, body["totalPages"])
	page1 := body["numbers"].([]any)
	require.Len(t, page1, 2)
	// Most-recent-first by id.
	first := page1[0].(map[string]any)["id"].(float64)
	second := page1[1].(map[string]any)["id"].(float64)
	assert.Greater(t, first, second)
	// Absolute next link pointing at page 2.
	next, ok := body["next"].(string)
	require.True(t, ok, "next should be set on a non-final page")
	assert.Contains(t, next, "/numbers?limit=2&page=2")
	assert.Contains(t, next, "http://")

	status, body = doJSON(t, srv, http.MethodGet, "/numbers?limit=2&page=2", userID, nil)
	require.Equal(t, http.StatusOK, status)
	page2 := body["numbers"].([]any)
	require.Len(t, page2, 1)
	assert.Nil(t, body["next"], "final page has no next link")
	// Disjoint from page 1.
	third := page2[0].(map[string]any)["id"].(float64)
	assert.NotEqual(t, first, third)
	assert.NotEqual(t, second, third)
}

func TestHistoryClampsAbsurdInput(t *testing.T) {
	srv := newTestServer(t)
	userID := signupUser(t, srv, "clamp@example.com")

	status, _ := doJSON(t, srv, http.MethodGet, "/rng", userID, nil)
	require.Equal(t, http.StatusOK, status)

	for _, query := range []string{
		"?limit=999999999999999999999&page=1",
		"?limit=-5&page=-2",
		"?limit=abc&page=xyz",
		"?page=100000",
	} {
		status, body := doJSON(t, srv, http.MethodGet, "/numbers"+query, userID, nil)
		assert.Equal(t, http.StatusOK, status, "query %s must not error", query)
		assert.Equal(t, 1.0, body["totalPages"])
	}
}

func TestBindingsEndpoints(t *testing.T) {
	srv := newTestServer(t)
	userID := signupUser(t, srv, "bind@example.com")

	status, body := doJSON(t, srv, http.MethodPut, "/bindings", userID, map[string]any{
		"externalId": "ext_12345",
		"type":       "External_API",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ext_12345", body["externalId"])
	assert.Equal(t, "external_api", body["type"])
	createdID := body["id"]

	// Same (user, type) updates in place.
	status, body = doJSON(t, srv, http.MethodPut, "/bindings", userID, map[string]any{
		"externalId": "ext_67890",
		"type":       "external_api",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, createdID, body["id"])
	assert.Equal(t, "ext_67890", body["externalId"])

	// Non-string fields are rejected with the contract message.
	status, body = doJSON(t, srv, http.MethodPut, "/bindings", userID, map[string]any{
		"externalId": 12345,
		"type":       "external_api",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "External ID and type must be strings", body["error"])

	status, body = doJSON(t, srv, http.MethodPut, "/bindings", userID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "External ID and type are required", body["error"])

	// Delete is case-insensitive; a second delete is a 404.
	status, body = doJSON(t, srv, http.MethodDelete, "/bindings/EXTERNAL_API", userID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Binding deleted successfully", body["message"])

	status, body = doJSON(t, srv, http.MethodDelete, "/bindings/external_api", userID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Binding not found", body["error"])
}

func TestLucraUserBinding(t *testing.T) {
	srv := newTestServer(t)
	userID := signupUser(t, srv, "lucra@example.com")

	status, body := doJSON(t, srv, http.MethodGet, "/lucra/user", userID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Lucra user binding not found", body["error"])

	status, body = doJSON(t, srv, http.MethodPut, "/lucra/user", userID, map[string]any{
		"externalId": "lucra_user_456",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "lucra", body["type"])

	status, body = doJSON(t, srv, http.MethodGet, "/lucra/user", userID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "lucra_user_456", body["externalId"])
}

func TestMatchupEventEndpoint(t *testing.T) {
	srv := newTestServer(t)
	userA := signupUser(t, srv, "a@example.com")
	userB := signupUser(t, srv, "b@example.com")

	for user, external := range map[string]string{userA: "lucra_a", userB: "lucra_b"} {
		status, _ := doJSON(t, srv, http.MethodPut, "/lucra/user", user, map[string]any{"externalId": external})
		require.Equal(t, http.StatusOK, status)
	}

	event := map[string]any{
		"id":    "matchup_1",
		"event": "RecreationalGameCreated",
		"type":  "RECREATIONAL_GAME",
		"groups": []map[string]any{
			{"groupId": "g1", "users": []map[string]any{{"userId": "lucra_a"}}},
			{"groupId": "g2", "users": []map[string]any{{"userId": "lucra_b"}}},
		},
	}
	status, body := doJSON(t, srv, http.MethodPost, "/lucra/matchup-event", "", event)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Matchup event processed successfully", body["message"])

	// A participant without a binding fails the event.
	event["groups"] = []map[string]any{
		{"groupId": "g1", "users": []map[string]any{{"userId": "lucra_stranger"}}},
	}
	status, body = doJSON(t, srv, http.MethodPost, "/lucra/matchup-event", "", event)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Missing user bindings")

	// Payload without an id or event name is rejected.
	status, body = doJSON(t, srv, http.MethodPost, "/lucra/matchup-event", "", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid webhook payload", body["error"])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
}
