package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/service"
)

func (s *Server) registerEntryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}/entries",
		Summary:     "List entries",
		Description: "Returns a project's fragments, newest first, optionally filtered by category",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID: "createEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects/{id}/entries",
		Summary:     "Create entry",
		Description: "Attaches a fragment to a project. Media entries must reference a previously uploaded file.",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEntry",
		Method:      http.MethodPatch,
		Path:        "/api/v1/entries/{id}",
		Summary:     "Update entry",
		Description: "Partially updates an entry, including replacing its media. Timestamp and project are immutable.",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteEntry",
		Method:      http.MethodDelete,
		Path:        "/api/v1/entries/{id}",
		Summary:     "Delete entry",
		Description: "Deletes a fragment. Its uploaded media stays on disk.",
		Tags:        []string{"Entries"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Public feed",
		Description: "Returns public fragments across all users, newest first. No authentication required.",
		Tags:        []string{"Feed"},
	}, s.handleListFeed)
}

// === DTOs ===

// CreateEntryRequest is the request body for entry creation.
type CreateEntryRequest struct {
	Type      string     `json:"type" validate:"required,oneof=image audio text" doc:"Entry type: image, audio, or text"`
	URL       string     `json:"url,omitempty" validate:"omitempty,max=500" doc:"Uploaded media URL (required for image and audio)"`
	Notes     string     `json:"notes,omitempty" validate:"max=10000" doc:"Notes; HTML is normalized to Markdown"`
	Category  string     `json:"category,omitempty" validate:"max=100" doc:"Free-form category label"`
	Color     string     `json:"color,omitempty" validate:"max=50" doc:"Hex accent color, e.g. #ff8800"`
	IsPublic  bool       `json:"is_public,omitempty" doc:"Whether the entry appears in the public feed (default false)"`
	Timestamp *time.Time `json:"timestamp,omitempty" doc:"Entry timestamp; defaults to now"`
}

// CreateEntryInput wraps the create request for Huma.
type CreateEntryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Project ID"`
	Body          CreateEntryRequest
}

// UpdateEntryRequest is the request body for partial entry updates.
type UpdateEntryRequest struct {
	Type     *string `json:"type,omitempty" validate:"omitempty,oneof=image audio text" doc:"New entry type"`
	URL      *string `json:"url,omitempty" validate:"omitempty,max=500" doc:"Replacement media URL; empty string clears it"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=10000" doc:"New notes"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=100" doc:"New category"`
	Color    *string `json:"color,omitempty" validate:"omitempty,max=50" doc:"New color"`
	IsPublic *bool   `json:"is_public,omitempty" doc:"New visibility"`
}

// UpdateEntryInput wraps the update request for Huma.
type UpdateEntryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Entry ID"`
	Body          UpdateEntryRequest
}

// EntryIDInput identifies a single entry.
type EntryIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Entry ID"`
}

// ListEntriesInput contains parameters for listing a project's entries.
type ListEntriesInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Project ID"`
	Category      string `query:"category" validate:"omitempty,max=100" doc:"Filter to one category (case-insensitive)"`
}

// FeedInput contains parameters for the public feed.
type FeedInput struct {
	Limit int `query:"limit" validate:"omitempty,gte=1,lte=200" doc:"Max entries (default 50)"`
}

// EntryOutput wraps a single entry for Huma.
type EntryOutput struct {
	Body *domain.Entry
}

// EntryListResponse contains a list of entries.
type EntryListResponse struct {
	Entries []*domain.Entry `json:"entries" doc:"Entries, newest first"`
}

// EntryListOutput wraps the entry list for Huma.
type EntryListOutput struct {
	Body EntryListResponse
}

// === Handlers ===

func (s *Server) handleListEntries(ctx context.Context, input *ListEntriesInput) (*EntryListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.services.Entry.ListByProject(ctx, userID, input.ID, input.Category)
	if err != nil {
		return nil, err
	}

	return &EntryListOutput{Body: EntryListResponse{Entries: entries}}, nil
}

func (s *Server) handleCreateEntry(ctx context.Context, input *CreateEntryInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Entry.Create(ctx, userID, input.ID, service.CreateEntryRequest{
		Type:      input.Body.Type,
		URL:       input.Body.URL,
		Notes:     input.Body.Notes,
		Category:  input.Body.Category,
		Color:     input.Body.Color,
		IsPublic:  input.Body.IsPublic,
		Timestamp: input.Body.Timestamp,
	})
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, input *UpdateEntryInput) (*EntryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Entry.Update(ctx, userID, input.ID, service.UpdateEntryRequest{
		Type:     input.Body.Type,
		URL:      input.Body.URL,
		Notes:    input.Body.Notes,
		Category: input.Body.Category,
		Color:    input.Body.Color,
		IsPublic: input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}

	return &EntryOutput{Body: entry}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, input *EntryIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Entry.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Entry deleted"}}, nil
}

func (s *Server) handleListFeed(ctx context.Context, input *FeedInput) (*EntryListOutput, error) {
	entries, err := s.services.Entry.Feed(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	return &EntryListOutput{Body: EntryListResponse{Entries: entries}}, nil
}
