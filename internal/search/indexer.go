package search

import (
	"context"

	"github.com/kakera-app/kakera-server/internal/domain"
)

// Indexer adapts an Index to the store's SearchIndexer interface so the
// store can keep the index in sync on writes without importing Bleve types.
type Indexer struct {
	index *Index
}

// NewIndexer creates a store-facing indexer backed by the given index.
func NewIndexer(index *Index) *Indexer {
	return &Indexer{index: index}
}

// IndexProject adds or updates a project document.
func (i *Indexer) IndexProject(_ context.Context, p *domain.Project) error {
	return i.index.IndexDocument(ProjectToDocument(p))
}

// DeleteProject removes a project document.
func (i *Indexer) DeleteProject(_ context.Context, projectID string) error {
	return i.index.DeleteDocument(projectID)
}

// IndexEntry adds or updates an entry document.
func (i *Indexer) IndexEntry(_ context.Context, e *domain.Entry) error {
	return i.index.IndexDocument(EntryToDocument(e))
}

// DeleteEntry removes an entry document.
func (i *Indexer) DeleteEntry(_ context.Context, entryID string) error {
	return i.index.DeleteDocument(entryID)
}
