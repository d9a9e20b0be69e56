// Package search provides full-text search over a user's projects and
// progress entries using Bleve.
package search

import (
	"github.com/kakera-app/kakera-server/internal/domain"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeProject DocType = "project"
	DocTypeEntry   DocType = "entry"
)

// Document is the unified document structure for the Bleve index.
// Projects and entries share one index with type discrimination; every
// document carries its owner so results can be scoped per user.
type Document struct {
	// Identity
	ID     string  `json:"id"`      // Original entity ID (proj-xxx, entry-xxx)
	Type   DocType `json:"type"`    // Discriminator for result grouping
	UserID string  `json:"user_id"` // Owner, used as a mandatory filter

	// Primary searchable text.
	// Project: name, Entry: notes
	Text string `json:"text"`

	// Project-specific fields
	Description string `json:"description,omitempty"`

	// Entry-specific fields
	ProjectID string `json:"project_id,omitempty"`
	Category  string `json:"category,omitempty"`
	EntryType string `json:"entry_type,omitempty"`

	// Timestamps for sorting
	Timestamp int64 `json:"timestamp"` // Unix millis; entry timestamp or project created_at
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":        d.ID,
		"type":      string(d.Type),
		"user_id":   d.UserID,
		"text":      d.Text,
		"timestamp": d.Timestamp,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.ProjectID != "" {
		m["project_id"] = d.ProjectID
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.EntryType != "" {
		m["entry_type"] = d.EntryType
	}

	return m
}

// ProjectToDocument converts a domain Project to a search Document.
func ProjectToDocument(p *domain.Project) *Document {
	return &Document{
		ID:          p.ID,
		Type:        DocTypeProject,
		UserID:      p.UserID,
		Text:        p.Name,
		Description: p.Description,
		Timestamp:   p.CreatedAt.UnixMilli(),
	}
}

// EntryToDocument converts a domain Entry to a search Document.
func EntryToDocument(e *domain.Entry) *Document {
	return &Document{
		ID:        e.ID,
		Type:      DocTypeEntry,
		UserID:    e.UserID,
		Text:      e.Notes,
		ProjectID: e.ProjectID,
		Category:  e.Category,
		EntryType: string(e.Type),
		Timestamp: e.Timestamp.UnixMilli(),
	}
}
