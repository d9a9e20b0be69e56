package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &Document{
		ID:     "proj-123",
		Type:   DocTypeProject,
		UserID: "user-1",
		Text:   "Oak bookshelf",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Project One"},
		{ID: "proj-2", Type: DocTypeProject, UserID: "user-1", Text: "Project Two"},
		{ID: "proj-3", Type: DocTypeProject, UserID: "user-1", Text: "Project Three"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_DeleteDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &Document{
		ID:     "proj-123",
		Type:   DocTypeProject,
		UserID: "user-1",
		Text:   "Test Project",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.DeleteDocument("proj-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Ceramic teapot"},
		{ID: "entry-1", Type: DocTypeEntry, UserID: "user-1", Text: "Glazed the teapot lid today", ProjectID: "proj-1"},
		{ID: "entry-2", Type: DocTypeEntry, UserID: "user-1", Text: "Sketched a chair design", ProjectID: "proj-2"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		UserID: "user-1",
		Query:  "teapot",
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestIndex_Search_OwnerScoped(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Shared hobby: painting"},
		{ID: "proj-2", Type: DocTypeProject, UserID: "user-2", Text: "Also painting"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	// user-1 only sees their own project
	result, err := index.Search(ctx, Params{
		UserID: "user-1",
		Query:  "painting",
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "proj-1", result.Hits[0].ID)

	// missing owner scope is rejected outright
	_, err = index.Search(ctx, Params{Query: "painting", Limit: 10})
	assert.Error(t, err)
}

func TestIndex_Search_ByType(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Weaving"},
		{ID: "entry-1", Type: DocTypeEntry, UserID: "user-1", Text: "Warped the loom", ProjectID: "proj-1"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		UserID: "user-1",
		Query:  "",
		Types:  []string{string(DocTypeProject)},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "proj-1", result.Hits[0].ID)
}

func TestIndex_Search_CategoryFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*Document{
		{ID: "entry-1", Type: DocTypeEntry, UserID: "user-1", Text: "Rough cut done", ProjectID: "proj-1", Category: "wood-work"},
		{ID: "entry-2", Type: DocTypeEntry, UserID: "user-1", Text: "Finish sanding", ProjectID: "proj-1", Category: "finishing"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		UserID:   "user-1",
		Query:    "",
		Category: "wood-work",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "entry-1", result.Hits[0].ID)
}

func TestIndex_Search_Prefix(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &Document{
		ID:     "proj-1",
		Type:   DocTypeProject,
		UserID: "user-1",
		Text:   "Bookshelf restoration",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	ctx := context.Background()

	// Prefix of "Bookshelf"
	result, err := index.Search(ctx, Params{
		UserID: "user-1",
		Query:  "Books",
		Limit:  10,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &Document{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Test"}
	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	// Create index and add document
	index1, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	doc := &Document{ID: "proj-1", Type: DocTypeProject, UserID: "user-1", Text: "Test Project"}
	err = index1.IndexDocument(doc)
	require.NoError(t, err)

	err = index1.Close()
	require.NoError(t, err)

	// Reopen index and verify document is still there
	index2, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ctx := context.Background()
	result, err := index2.Search(ctx, Params{UserID: "user-1", Query: "Test", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestProjectToDocument(t *testing.T) {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	project := &domain.Project{
		Entity: domain.Entity{
			ID:        "proj-123",
			CreatedAt: created,
		},
		Name:        "Oak bookshelf",
		Description: "Floor-to-ceiling shelving",
		UserID:      "user-1",
	}

	doc := ProjectToDocument(project)

	assert.Equal(t, "proj-123", doc.ID)
	assert.Equal(t, DocTypeProject, doc.Type)
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "Oak bookshelf", doc.Text)
	assert.Equal(t, "Floor-to-ceiling shelving", doc.Description)
	assert.Equal(t, created.UnixMilli(), doc.Timestamp)
}

func TestEntryToDocument(t *testing.T) {
	ts := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	entry := &domain.Entry{
		Entity: domain.Entity{
			ID: "entry-123",
		},
		ProjectID: "proj-123",
		UserID:    "user-1",
		Type:      domain.EntryTypeText,
		Notes:     "Dry-fit the first two shelves",
		Timestamp: ts,
		Category:  "assembly",
	}

	doc := EntryToDocument(entry)

	assert.Equal(t, "entry-123", doc.ID)
	assert.Equal(t, DocTypeEntry, doc.Type)
	assert.Equal(t, "user-1", doc.UserID)
	assert.Equal(t, "Dry-fit the first two shelves", doc.Text)
	assert.Equal(t, "proj-123", doc.ProjectID)
	assert.Equal(t, "assembly", doc.Category)
	assert.Equal(t, "text", doc.EntryType)
	assert.Equal(t, ts.UnixMilli(), doc.Timestamp)
}

func TestIndexer_RoundTrip(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	indexer := NewIndexer(index)
	ctx := context.Background()

	project := &domain.Project{
		Entity: domain.Entity{ID: "proj-1", CreatedAt: time.Now().UTC()},
		Name:   "Linocut prints",
		UserID: "user-1",
	}
	require.NoError(t, indexer.IndexProject(ctx, project))

	entry := &domain.Entry{
		Entity:    domain.Entity{ID: "entry-1"},
		ProjectID: "proj-1",
		UserID:    "user-1",
		Type:      domain.EntryTypeText,
		Notes:     "Carved the background layer",
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, indexer.IndexEntry(ctx, entry))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	require.NoError(t, indexer.DeleteEntry(ctx, "entry-1"))
	require.NoError(t, indexer.DeleteProject(ctx, "proj-1"))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
