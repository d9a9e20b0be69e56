package kakera

import (
	"slices"
	"sync"
)

// Cache holds the client's view of the server's lists: the owner's
// projects, the selected project's entries, the public feed, and the
// aggregate of the owner's entries across projects.
//
// Reconciliation is two-phase by design: after a mutation, Sync applies
// the server's returned row here immediately (Apply*), then refetches
// the affected list and installs it wholesale (Set*) as the consistency
// backstop. Failed calls must not touch the cache at all, so the
// previous state survives any error.
type Cache struct {
	mu       sync.Mutex
	projects []*Project
	entries  []*Entry
	public   []*Entry
	all      []*Entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Projects returns the cached project list, newest first.
func (c *Cache) Projects() []*Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.projects)
}

// Entries returns the selected project's cached entries, newest first.
func (c *Cache) Entries() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.entries)
}

// Public returns the cached public feed, newest first.
func (c *Cache) Public() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.public)
}

// All returns the cached cross-project aggregate, newest first.
func (c *Cache) All() []*Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.all)
}

// SetProjects installs a freshly fetched project list.
func (c *Cache) SetProjects(projects []*Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = slices.Clone(projects)
}

// SetEntries installs a freshly fetched entry list for the selected project.
func (c *Cache) SetEntries(entries []*Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = slices.Clone(entries)
}

// SetPublic installs a freshly fetched public feed.
func (c *Cache) SetPublic(entries []*Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.public = slices.Clone(entries)
}

// SetAll installs a freshly fetched cross-project aggregate.
func (c *Cache) SetAll(entries []*Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = slices.Clone(entries)
}

// ApplyProject merges a server-returned project row: replaced in place
// when present, otherwise inserted in creation order, newest first.
func (c *Cache) ApplyProject(p *Project) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.projects {
		if existing.ID == p.ID {
			c.projects[i] = p
			return
		}
	}
	at, _ := slices.BinarySearchFunc(c.projects, p, func(a, b *Project) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	c.projects = slices.Insert(c.projects, at, p)
}

// RemoveProject drops a deleted project and every cached entry under it.
// The public feed is left alone; the next refetch settles it.
func (c *Cache) RemoveProject(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.projects = slices.DeleteFunc(c.projects, func(p *Project) bool {
		return p.ID == projectID
	})
	c.entries = slices.DeleteFunc(c.entries, func(e *Entry) bool {
		return e.ProjectID == projectID
	})
	c.all = slices.DeleteFunc(c.all, func(e *Entry) bool {
		return e.ProjectID == projectID
	})
}

// ApplyEntry merges a server-returned entry row into every list it could
// belong to: the selected project's list when the project matches, the
// aggregate always, and the public feed only when the entry is public. A
// row that turned private is not removed from the feed here; only a
// refetch removes feed rows.
func (c *Cache) ApplyEntry(e *Entry, selectedProjectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.ProjectID == selectedProjectID {
		c.entries = upsertEntry(c.entries, e)
	}
	c.all = upsertEntry(c.all, e)

	if e.IsPublic {
		c.public = upsertEntry(c.public, e)
	} else if i := entryIndex(c.public, e.ID); i >= 0 {
		// Keep the row but reflect its new content; membership is
		// settled by the next feed fetch.
		c.public[i] = e
	}
}

// RemoveEntry drops a deleted entry from the selected project's list and
// the aggregate. The public feed is settled by the next refetch.
func (c *Cache) RemoveEntry(entryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = slices.DeleteFunc(c.entries, func(e *Entry) bool {
		return e.ID == entryID
	})
	c.all = slices.DeleteFunc(c.all, func(e *Entry) bool {
		return e.ID == entryID
	})
}

// ClearEntries drops the selected project's entry list, e.g. when
// navigating away from the project view.
func (c *Cache) ClearEntries() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

// Clear drops everything, e.g. on sign-out.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = nil
	c.entries = nil
	c.public = nil
	c.all = nil
}

func entryIndex(list []*Entry, id string) int {
	return slices.IndexFunc(list, func(e *Entry) bool { return e.ID == id })
}

// upsertEntry replaces a row in place or inserts it in timestamp order,
// newest first.
func upsertEntry(list []*Entry, e *Entry) []*Entry {
	if i := entryIndex(list, e.ID); i >= 0 {
		list[i] = e
		return list
	}
	at, _ := slices.BinarySearchFunc(list, e, func(a, b *Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return slices.Insert(list, at, e)
}
