package kakera

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.MarshalWrite(w, body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"v": 1, "success": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"v": 1, "success": false, "code": code, "message": message})
}

func testAuthPayload() map[string]any {
	return map[string]any{
		"access_token":  "test-access-token",
		"refresh_token": "test-refresh-token",
		"session_id":    "session-1",
		"token_type":    "Bearer",
		"expires_in":    900,
		"user": map[string]any{
			"id":           "user-1",
			"email":        "aki@example.com",
			"display_name": "Aki",
		},
	}
}

func TestClient_Login_SetsSessionAndNotifies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.UnmarshalRead(r.Body, &body))
		assert.Equal(t, "aki@example.com", body["email"])
		writeData(w, testAuthPayload())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	var events []SessionEvent
	client.OnSessionChange(func(ev SessionEvent) { events = append(events, ev) })

	auth, err := client.Login(context.Background(), "aki@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "test-access-token", auth.AccessToken)
	assert.Equal(t, "user-1", auth.User.ID)
	assert.True(t, client.Authenticated())
	require.NotNil(t, client.CurrentUser())
	assert.Equal(t, "Aki", client.CurrentUser().DisplayName)

	require.Len(t, events, 1)
	assert.Equal(t, SessionSignedIn, events[0].Type)
	assert.Equal(t, "user-1", events[0].User.ID)
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeData(w, map[string]any{"projects": []any{}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetSession(&Session{AccessToken: "restored-token"}, &User{ID: "user-1"})

	_, err := client.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer restored-token", gotAuth)
}

func TestClient_Login_BadCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Login(context.Background(), "aki@example.com", "wrong")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "INVALID_CREDENTIALS", apiErr.Code)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, client.Authenticated())
}

func TestClient_Logout_DropsSessionEvenOnServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Session not found")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetSession(&Session{AccessToken: "tok", SessionID: "session-1"}, &User{ID: "user-1"})

	var events []SessionEvent
	client.OnSessionChange(func(ev SessionEvent) { events = append(events, ev) })

	err := client.Logout(context.Background())
	assert.Error(t, err)
	assert.False(t, client.Authenticated(), "local session is dropped regardless")

	require.Len(t, events, 1)
	assert.Equal(t, SessionSignedOut, events[0].Type)
	assert.Nil(t, events[0].User)
}

func TestClient_Refresh_EmitsRefreshed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.UnmarshalRead(r.Body, &body))
		assert.Equal(t, "old-refresh", body["refresh_token"])
		writeData(w, testAuthPayload())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetSession(&Session{AccessToken: "old-access", RefreshToken: "old-refresh"}, &User{ID: "user-1"})

	var events []SessionEvent
	client.OnSessionChange(func(ev SessionEvent) { events = append(events, ev) })

	auth, err := client.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", auth.AccessToken)

	require.Len(t, events, 1)
	assert.Equal(t, SessionRefreshed, events[0].Type)
}

func TestClient_Refresh_WithoutSession(t *testing.T) {
	client := NewClient("http://unused.invalid")
	_, err := client.Refresh(context.Background())
	assert.True(t, IsUnauthorized(err))
}

func TestClient_GetShared(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/shared/{token}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "share-abc", r.PathValue("token"))
		writeData(w, map[string]any{
			"project": map[string]any{"id": "proj-1", "name": "Walnut Table", "share_id": "share-abc"},
			"entries": []any{
				map[string]any{"id": "entry-1", "project_id": "proj-1", "type": "text", "notes": "first cut"},
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	shared, err := client.GetShared(context.Background(), "share-abc")
	require.NoError(t, err)

	assert.Equal(t, "Walnut Table", shared.Project.Name)
	require.Len(t, shared.Entries, 1)
	assert.Equal(t, "first cut", shared.Entries[0].Notes)
}

func TestClient_CreateEntry_RoundTrip(t *testing.T) {
	ts := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/projects/{id}/entries", func(w http.ResponseWriter, r *http.Request) {
		var req CreateEntryRequest
		require.NoError(t, json.UnmarshalRead(r.Body, &req))
		assert.Equal(t, "text", req.Type)
		writeJSON(w, http.StatusCreated, map[string]any{"v": 1, "success": true, "data": map[string]any{
			"id":         "entry-1",
			"project_id": r.PathValue("id"),
			"type":       req.Type,
			"notes":      req.Notes,
			"timestamp":  ts,
			"is_public":  req.IsPublic,
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	entry, err := client.CreateEntry(context.Background(), "proj-1", CreateEntryRequest{
		Type: "text", Notes: "glued the legs", IsPublic: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "entry-1", entry.ID)
	assert.Equal(t, "proj-1", entry.ProjectID)
	assert.True(t, entry.Timestamp.Equal(ts))
}

func TestClient_DeleteEntry_NoContent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v1/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	assert.NoError(t, client.DeleteEntry(context.Background(), "entry-1"))
}

func TestClient_Upload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/uploads", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "photo.png", header.Filename)

		// Uploads go through the plain chi envelope, without the
		// version field.
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{
			"url": "/files/images/abc.png", "kind": "images", "size_bytes": 11,
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.Upload(context.Background(), "photo.png", strings.NewReader("png payload"))
	require.NoError(t, err)
	assert.Equal(t, "/files/images/abc.png", result.URL)
	assert.Equal(t, int64(11), result.SizeBytes)
}

func TestClient_ErrorWithoutCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/feed", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"v": 1, "success": false, "error": "Not Found"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Feed(context.Background(), 10)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Empty(t, apiErr.Code)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.True(t, IsNotFound(err))
}
