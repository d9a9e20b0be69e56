// Package store defines the persistence interface for the Kakera server.
package store

import (
	"context"
	"time"

	"github.com/kakera-app/kakera-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search
// implementation details.
type SearchIndexer interface {
	IndexProject(ctx context.Context, p *domain.Project) error
	DeleteProject(ctx context.Context, projectID string) error
	IndexEntry(ctx context.Context, e *domain.Entry) error
	DeleteEntry(ctx context.Context, entryID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexProject is a no-op.
func (NoopSearchIndexer) IndexProject(context.Context, *domain.Project) error { return nil }

// DeleteProject is a no-op.
func (NoopSearchIndexer) DeleteProject(context.Context, string) error { return nil }

// IndexEntry is a no-op.
func (NoopSearchIndexer) IndexEntry(context.Context, *domain.Entry) error { return nil }

// DeleteEntry is a no-op.
func (NoopSearchIndexer) DeleteEntry(context.Context, string) error { return nil }

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	SetSearchIndexer(indexer SearchIndexer)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByConfirmToken(ctx context.Context, token string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Projects
	CreateProject(ctx context.Context, project *domain.Project) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetProjectByShareID(ctx context.Context, shareID string) (*domain.Project, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjectsByUser(ctx context.Context, userID string) ([]*domain.Project, error)

	// Entries
	CreateEntry(ctx context.Context, entry *domain.Entry) error
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	UpdateEntry(ctx context.Context, entry *domain.Entry) error
	DeleteEntry(ctx context.Context, id string) error
	ListEntriesByProject(ctx context.Context, projectID, category string) ([]*domain.Entry, error)
	ListEntriesByUser(ctx context.Context, userID string) ([]*domain.Entry, error)
	ListPublicEntries(ctx context.Context, limit int) ([]*domain.Entry, error)
	ListMediaURLs(ctx context.Context) ([]string, error)
	CountEntriesByDay(ctx context.Context, userID string, since time.Time) ([]domain.DayCount, error)
}
