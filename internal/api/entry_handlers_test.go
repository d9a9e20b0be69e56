package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/service"
)

// encodePNG generates a small test image.
func encodePNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 96, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// uploadFile posts a multipart upload and returns the decoded result.
func (ts *testServer) uploadFile(t *testing.T, token, filename string, data []byte) *service.UploadResult {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Chi-direct endpoints use the response envelope, not the huma one.
	var result service.UploadResult
	decodeChiData(t, w.Body.Bytes(), &result)
	return &result
}

func TestUpload_Image(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "upload@example.com")
	result := ts.uploadFile(t, token, "progress.png", encodePNG(t))

	assert.Equal(t, "images", string(result.Kind))
	assert.Contains(t, result.URL, "/files/images/")
	assert.NotEmpty(t, result.BlurHash)
	assert.Positive(t, result.SizeBytes)
}

func TestUpload_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "progress.png")
	require.NoError(t, err)
	_, err = part.Write(encodePNG(t))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpload_UnsupportedType(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "badupload@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "malware.exe")
	require.NoError(t, err)
	_, err = part.Write([]byte("MZ"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_ClassifiedByDeclaredType(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "declared@example.com")

	// No extension on the filename; the part's content type decides.
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="snapshot"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(encodePNG(t))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result service.UploadResult
	decodeChiData(t, w.Body.Bytes(), &result)
	assert.Equal(t, "images", string(result.Kind))
}

func TestServeFile_RoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "serve@example.com")
	data := encodePNG(t)
	result := ts.uploadFile(t, token, "progress.png", data)

	req := httptest.NewRequest(http.MethodGet, result.URL, http.NoBody)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, w.Header().Get("Cache-Control"))
	assert.Equal(t, data, w.Body.Bytes())
}

func TestServeFile_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	req := httptest.NewRequest(http.MethodGet, "/files/images/nope.png", http.NoBody)
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateEntry_Text(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.createTestUser(t, "entry@example.com")
	project := ts.createProject(t, token, "Bench")

	resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type":     "text",
		"notes":    "<p>Glued the <b>legs</b> today</p>",
		"category": " Glue-Up ",
		"color":    "#FF8800",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var entry domain.Entry
	decodeData(t, resp.Body.Bytes(), &entry)

	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, project.ID, entry.ProjectID)
	assert.Equal(t, "Glued the **legs** today", entry.Notes)
	assert.Equal(t, "glue-up", entry.Category)
	assert.Equal(t, "#ff8800", entry.Color)
}

func TestCreateEntry_ImageFromUpload(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "media@example.com")
	project := ts.createProject(t, token, "Carving")
	upload := ts.uploadFile(t, token, "progress.png", encodePNG(t))

	resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type": "image",
		"url":  upload.URL,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var entry domain.Entry
	decodeData(t, resp.Body.Bytes(), &entry)
	assert.Equal(t, upload.URL, entry.URL)
	assert.NotEmpty(t, entry.BlurHash)
}

func TestCreateEntry_ExternalURLRejected(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "external@example.com")
	project := ts.createProject(t, token, "Strict")

	resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type": "image",
		"url":  "https://example.com/evil.png",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateEntry_VisibilityDefaultsToPrivate(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "default@example.com")
	project := ts.createProject(t, token, "Quiet")

	// is_public omitted entirely
	resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type":  "text",
		"notes": "kept to myself",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var entry domain.Entry
	decodeData(t, resp.Body.Bytes(), &entry)
	assert.False(t, entry.IsPublic)

	feedResp := ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, feedResp.Code)

	var list EntryListResponse
	decodeData(t, feedResp.Body.Bytes(), &list)
	assert.Empty(t, list.Entries)
}

func TestUpdateEntry_ReplacesMediaURL(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "replace@example.com")
	project := ts.createProject(t, token, "Repaint")

	first := ts.uploadFile(t, token, "before.png", encodePNG(t))
	createResp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type": "image",
		"url":  first.URL,
	})
	require.Equal(t, http.StatusOK, createResp.Code, createResp.Body.String())

	var created domain.Entry
	decodeData(t, createResp.Body.Bytes(), &created)

	second := ts.uploadFile(t, token, "after.png", encodePNG(t))
	patchResp := ts.api.Patch("/api/v1/entries/"+created.ID, "Authorization: Bearer "+token, map[string]any{
		"url": second.URL,
	})
	require.Equal(t, http.StatusOK, patchResp.Code, patchResp.Body.String())

	var updated domain.Entry
	decodeData(t, patchResp.Body.Bytes(), &updated)
	assert.Equal(t, second.URL, updated.URL)
	assert.NotEmpty(t, updated.BlurHash)
	assert.True(t, updated.Timestamp.Equal(created.Timestamp))
}

func TestUpdateEntry_PreservesTimestamp(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "patch@example.com")
	project := ts.createProject(t, token, "Patchwork")

	createResp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
		"type":      "text",
		"notes":     "Original note",
		"timestamp": "2025-03-14T10:00:00Z",
	})
	require.Equal(t, http.StatusOK, createResp.Code, createResp.Body.String())

	var created domain.Entry
	decodeData(t, createResp.Body.Bytes(), &created)

	patchResp := ts.api.Patch("/api/v1/entries/"+created.ID, "Authorization: Bearer "+token, map[string]any{
		"notes":     "Edited note",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, patchResp.Code, patchResp.Body.String())

	var updated domain.Entry
	decodeData(t, patchResp.Body.Bytes(), &updated)
	assert.Equal(t, "Edited note", updated.Notes)
	assert.True(t, updated.IsPublic)
	assert.True(t, updated.Timestamp.Equal(created.Timestamp), "timestamp is immutable")
	assert.Equal(t, created.ProjectID, updated.ProjectID)
}

func TestEntry_ForeignAccessReadsAsNotFound(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tokenA, _ := ts.createTestUser(t, "author@example.com")
	tokenB, _ := ts.createTestUser(t, "snoop@example.com")

	project := ts.createProject(t, tokenA, "Private")
	createResp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+tokenA, map[string]any{
		"type":  "text",
		"notes": "Secret progress",
	})
	require.Equal(t, http.StatusOK, createResp.Code)

	var entry domain.Entry
	decodeData(t, createResp.Body.Bytes(), &entry)

	patchResp := ts.api.Patch("/api/v1/entries/"+entry.ID, "Authorization: Bearer "+tokenB, map[string]any{
		"notes": "Defaced",
	})
	assert.Equal(t, http.StatusNotFound, patchResp.Code)

	deleteResp := ts.api.Delete("/api/v1/entries/"+entry.ID, "Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusNotFound, deleteResp.Code)

	listResp := ts.api.Get("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+tokenB)
	assert.Equal(t, http.StatusNotFound, listResp.Code)
}

func TestListEntries_CategoryFilter(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "filter@example.com")
	project := ts.createProject(t, token, "Filtered")

	for _, body := range []map[string]any{
		{"type": "text", "notes": "sanding", "category": "wood-work"},
		{"type": "text", "notes": "varnish", "category": "finishing"},
	} {
		resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, body)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/projects/"+project.ID+"/entries?category=Wood-Work", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var list EntryListResponse
	decodeData(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "sanding", list.Entries[0].Notes)
}

func TestFeed_PublicOnly(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tokenA, _ := ts.createTestUser(t, "feed-a@example.com")
	tokenB, _ := ts.createTestUser(t, "feed-b@example.com")

	projectA := ts.createProject(t, tokenA, "A")
	projectB := ts.createProject(t, tokenB, "B")

	for _, tc := range []struct {
		token   string
		project string
		notes   string
		public  bool
	}{
		{tokenA, projectA.ID, "public from A", true},
		{tokenA, projectA.ID, "private from A", false},
		{tokenB, projectB.ID, "public from B", true},
	} {
		resp := ts.api.Post("/api/v1/projects/"+tc.project+"/entries", "Authorization: Bearer "+tc.token, map[string]any{
			"type":      "text",
			"notes":     tc.notes,
			"is_public": tc.public,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	// The feed is anonymous and spans users.
	resp := ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code)

	var list EntryListResponse
	decodeData(t, resp.Body.Bytes(), &list)
	require.Len(t, list.Entries, 2)
	for _, entry := range list.Entries {
		assert.True(t, entry.IsPublic)
	}
}

func TestHeatmap(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "heatmap@example.com")
	project := ts.createProject(t, token, "Daily")

	for range 2 {
		resp := ts.api.Post("/api/v1/projects/"+project.ID+"/entries", "Authorization: Bearer "+token, map[string]any{
			"type":  "text",
			"notes": "progress",
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/activity/heatmap?days=7", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var heatmap service.Heatmap
	decodeData(t, resp.Body.Bytes(), &heatmap)

	assert.Len(t, heatmap.Days, 7, "dense series includes zero days")
	assert.Equal(t, 2, heatmap.Total)
	assert.Equal(t, 2, heatmap.Days[len(heatmap.Days)-1].Count)
}

func TestSearch_OwnerScoped(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	tokenA, _ := ts.createTestUser(t, "search-a@example.com")
	tokenB, _ := ts.createTestUser(t, "search-b@example.com")

	projectA := ts.createProject(t, tokenA, "Walnut Bookshelf")
	ts.createProject(t, tokenB, "Walnut Table")

	entryResp := ts.api.Post("/api/v1/projects/"+projectA.ID+"/entries", "Authorization: Bearer "+tokenA, map[string]any{
		"type":  "text",
		"notes": "Cut the walnut panels to size",
	})
	require.Equal(t, http.StatusOK, entryResp.Code)

	resp := ts.api.Get("/api/v1/search?q=walnut", "Authorization: Bearer "+tokenA)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var result SearchResponse
	decodeData(t, resp.Body.Bytes(), &result)

	require.Len(t, result.Hits, 2, "own project and own entry, not the other user's project")
	for _, hit := range result.Hits {
		assert.NotEqual(t, "Walnut Table", hit.Text)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.createTestUser(t, "searchval@example.com")

	resp := ts.api.Get("/api/v1/search", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
