package kakera

import (
	"context"
	"fmt"
	"sync"
)

// Sync drives the two-phase reconciliation between a Client and a Cache:
// every mutation merges the server's authoritative row immediately, then
// refetches the affected list and installs it wholesale as the backstop.
// The merge keeps the display current even when the refetch fails; the
// refetch settles what a merge cannot know, like feed membership after a
// visibility change.
//
// When a mutation succeeds but its backstop refetch fails, the merged row
// stays in place and the returned error reports the refetch alone.
type Sync struct {
	client *Client
	cache  *Cache

	mu       sync.Mutex
	selected string // project whose entries the cache tracks
	category string // active category filter, empty for all
}

// NewSync creates a sync layer over the client with an empty cache.
func NewSync(client *Client) *Sync {
	return &Sync{client: client, cache: NewCache()}
}

// Cache exposes the reconciled lists for display.
func (s *Sync) Cache() *Cache {
	return s.cache
}

func (s *Sync) selection() (projectID, category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected, s.category
}

// SelectProject points the entry cache at a project and loads its
// entries, optionally filtered to one category.
func (s *Sync) SelectProject(ctx context.Context, projectID, category string) error {
	s.mu.Lock()
	s.selected = projectID
	s.category = category
	s.mu.Unlock()
	return s.RefreshEntries(ctx)
}

// SetCategory changes the active category filter and reloads the
// selected project's entries.
func (s *Sync) SetCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()
	return s.RefreshEntries(ctx)
}

// RefreshProjects refetches the owner's project list wholesale.
func (s *Sync) RefreshProjects(ctx context.Context) error {
	projects, err := s.client.ListProjects(ctx)
	if err != nil {
		return err
	}
	s.cache.SetProjects(projects)
	return nil
}

// RefreshEntries refetches the selected project's entries wholesale.
// A no-op when no project is selected.
func (s *Sync) RefreshEntries(ctx context.Context) error {
	projectID, category := s.selection()
	if projectID == "" {
		return nil
	}
	entries, err := s.client.ListEntries(ctx, projectID, category)
	if err != nil {
		return err
	}
	s.cache.SetEntries(entries)
	return nil
}

// RefreshFeed refetches the public feed wholesale. This is what settles
// feed membership after an entry's visibility changed.
func (s *Sync) RefreshFeed(ctx context.Context, limit int) error {
	entries, err := s.client.Feed(ctx, limit)
	if err != nil {
		return err
	}
	s.cache.SetPublic(entries)
	return nil
}

// CreateProject creates a project, merges the returned row, then
// refetches the project list.
func (s *Sync) CreateProject(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	project, err := s.client.CreateProject(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cache.ApplyProject(project)
	if err := s.RefreshProjects(ctx); err != nil {
		return project, fmt.Errorf("refresh projects: %w", err)
	}
	return project, nil
}

// UpdateProject edits a project, merges the returned row, then refetches
// the project list.
func (s *Sync) UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (*Project, error) {
	project, err := s.client.UpdateProject(ctx, projectID, req)
	if err != nil {
		return nil, err
	}
	s.cache.ApplyProject(project)
	if err := s.RefreshProjects(ctx); err != nil {
		return project, fmt.Errorf("refresh projects: %w", err)
	}
	return project, nil
}

// DeleteProject removes a project and its cached entries, then refetches
// the project list.
func (s *Sync) DeleteProject(ctx context.Context, projectID string) error {
	if err := s.client.DeleteProject(ctx, projectID); err != nil {
		return err
	}
	s.cache.RemoveProject(projectID)

	s.mu.Lock()
	if s.selected == projectID {
		s.selected = ""
		s.category = ""
	}
	s.mu.Unlock()

	if err := s.RefreshProjects(ctx); err != nil {
		return fmt.Errorf("refresh projects: %w", err)
	}
	return nil
}

// CreateEntry attaches an entry, merges the returned row, then refetches
// the selected project's entries.
func (s *Sync) CreateEntry(ctx context.Context, projectID string, req CreateEntryRequest) (*Entry, error) {
	entry, err := s.client.CreateEntry(ctx, projectID, req)
	if err != nil {
		return nil, err
	}
	selected, _ := s.selection()
	s.cache.ApplyEntry(entry, selected)
	if err := s.RefreshEntries(ctx); err != nil {
		return entry, fmt.Errorf("refresh entries: %w", err)
	}
	return entry, nil
}

// UpdateEntry edits an entry, merges the returned row, then refetches
// the selected project's entries.
func (s *Sync) UpdateEntry(ctx context.Context, entryID string, req UpdateEntryRequest) (*Entry, error) {
	entry, err := s.client.UpdateEntry(ctx, entryID, req)
	if err != nil {
		return nil, err
	}
	selected, _ := s.selection()
	s.cache.ApplyEntry(entry, selected)
	if err := s.RefreshEntries(ctx); err != nil {
		return entry, fmt.Errorf("refresh entries: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry from the cached lists, then refetches the
// selected project's entries.
func (s *Sync) DeleteEntry(ctx context.Context, entryID string) error {
	if err := s.client.DeleteEntry(ctx, entryID); err != nil {
		return err
	}
	s.cache.RemoveEntry(entryID)
	if err := s.RefreshEntries(ctx); err != nil {
		return fmt.Errorf("refresh entries: %w", err)
	}
	return nil
}
