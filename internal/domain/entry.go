package domain

import (
	"fmt"
	"time"
)

// EntryType represents the kind of content a progress entry carries.
type EntryType string

const (
	// EntryTypeImage is an uploaded image with optional notes.
	EntryTypeImage EntryType = "image"
	// EntryTypeAudio is an uploaded audio clip with optional notes.
	EntryTypeAudio EntryType = "audio"
	// EntryTypeText is a text-only entry; notes are the content.
	EntryTypeText EntryType = "text"
)

// Valid returns true for a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeImage, EntryTypeAudio, EntryTypeText:
		return true
	}
	return false
}

// IsMedia returns true for entry types backed by an uploaded file.
func (t EntryType) IsMedia() bool {
	return t == EntryTypeImage || t == EntryTypeAudio
}

// Entry is a single progress record attached to a project.
type Entry struct {
	Entity
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Type      EntryType `json:"type"`

	// URL points at the uploaded media object. Required for image and
	// audio entries, empty for text entries. Preserved verbatim on edits
	// that don't replace the file.
	URL   string `json:"url,omitempty"`
	Notes string `json:"notes,omitempty"`

	// Timestamp is the ordering key for every entry listing. It is set
	// once at creation and survives edits.
	Timestamp time.Time `json:"timestamp"`

	IsPublic bool   `json:"is_public"`
	Category string `json:"category,omitempty"`
	Color    string `json:"color,omitempty"`

	// Server-derived display hints, present only when probing succeeded.
	DurationMs int64  `json:"duration_ms,omitempty"` // audio length
	BlurHash   string `json:"blur_hash,omitempty"`   // image placeholder
}

// ValidateContent checks the type-dependent field requirements:
// media entries need a URL, text entries need notes and no URL.
func (e *Entry) ValidateContent() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown entry type %q", e.Type)
	}
	if e.Type.IsMedia() && e.URL == "" {
		return fmt.Errorf("%s entry requires a media url", e.Type)
	}
	if e.Type == EntryTypeText && e.URL != "" {
		return fmt.Errorf("text entry cannot carry a media url")
	}
	if e.Type == EntryTypeText && e.Notes == "" {
		return fmt.Errorf("text entry requires notes")
	}
	return nil
}
