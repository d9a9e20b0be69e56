package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kakera-app/kakera-server/internal/domain"
	domainerrors "github.com/kakera-app/kakera-server/internal/errors"
	"github.com/kakera-app/kakera-server/internal/id"
	"github.com/kakera-app/kakera-server/internal/media/files"
	"github.com/kakera-app/kakera-server/internal/normalize"
	"github.com/kakera-app/kakera-server/internal/store"
)

// Feed listing bounds.
const (
	defaultFeedLimit = 50
	maxFeedLimit     = 200
)

// EntryService handles progress entries: the image, audio, and text
// fragments users attach to their projects.
type EntryService struct {
	store    store.Store
	projects *ProjectService
	media    *files.Storage
	logger   *slog.Logger
}

// NewEntryService creates a new entry service.
func NewEntryService(
	store store.Store,
	projects *ProjectService,
	media *files.Storage,
	logger *slog.Logger,
) *EntryService {
	return &EntryService{
		store:    store,
		projects: projects,
		media:    media,
		logger:   logger,
	}
}

// CreateEntryRequest contains new entry data.
type CreateEntryRequest struct {
	Type     string     `json:"type" validate:"required,oneof=image audio text"`
	URL      string     `json:"url" validate:"omitempty,max=500"`
	Notes    string     `json:"notes" validate:"max=10000"`
	Category string     `json:"category" validate:"max=100"`
	Color    string     `json:"color" validate:"max=50"`
	IsPublic bool       `json:"is_public"`
	// Timestamp defaults to the current time when omitted. It cannot be
	// changed after creation.
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateEntryRequest contains partial entry updates. Nil fields are left
// unchanged. Timestamp and project are fixed at creation; type and url may
// change together, e.g. replacing a photo or turning a media entry into a
// text one by clearing its url.
type UpdateEntryRequest struct {
	Type     *string `json:"type" validate:"omitempty,oneof=image audio text"`
	URL      *string `json:"url" validate:"omitempty,max=500"`
	Notes    *string `json:"notes" validate:"omitempty,max=10000"`
	Category *string `json:"category" validate:"omitempty,max=100"`
	Color    *string `json:"color" validate:"omitempty,max=50"`
	IsPublic *bool   `json:"is_public"`
}

// Create attaches a new progress entry to an owned project.
func (s *EntryService) Create(ctx context.Context, userID, projectID string, req CreateEntryRequest) (*domain.Entry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// Ownership gate: entries can only be added to the caller's projects.
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	color, ok := normalize.Color(req.Color)
	if !ok {
		return nil, domainerrors.Validation("color must be a hex value or color name")
	}

	entryID, err := id.Generate("entry")
	if err != nil {
		return nil, fmt.Errorf("generate entry ID: %w", err)
	}

	timestamp := time.Now()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		timestamp = *req.Timestamp
	}

	entry := &domain.Entry{
		Entity: domain.Entity{
			ID: entryID,
		},
		ProjectID: projectID,
		UserID:    userID,
		Type:      domain.EntryType(req.Type),
		URL:       req.URL,
		Notes:     normalize.Notes(req.Notes),
		Timestamp: timestamp,
		IsPublic:  req.IsPublic,
		Category:  normalize.Category(req.Category),
		Color:     color,
	}
	entry.InitTimestamps()

	if err := entry.ValidateContent(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	if entry.Type.IsMedia() {
		if err := s.enrichMedia(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Entry created",
			"entry_id", entryID,
			"project_id", projectID,
			"type", entry.Type,
		)
	}

	return entry, nil
}

// Get returns an entry after verifying ownership.
func (s *EntryService) Get(ctx context.Context, userID, entryID string) (*domain.Entry, error) {
	return s.getOwned(ctx, userID, entryID)
}

// Update applies partial changes to an owned entry. The timestamp and
// project binding never change, regardless of what the client sends.
func (s *EntryService) Update(ctx context.Context, userID, entryID string, req UpdateEntryRequest) (*domain.Entry, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	entry, err := s.getOwned(ctx, userID, entryID)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		entry.Type = domain.EntryType(*req.Type)
	}
	if req.URL != nil {
		entry.URL = *req.URL
	}
	if req.Notes != nil {
		entry.Notes = normalize.Notes(*req.Notes)
	}
	if req.Category != nil {
		entry.Category = normalize.Category(*req.Category)
	}
	if req.Color != nil {
		color, ok := normalize.Color(*req.Color)
		if !ok {
			return nil, domainerrors.Validation("color must be a hex value or color name")
		}
		entry.Color = color
	}
	if req.IsPublic != nil {
		entry.IsPublic = *req.IsPublic
	}
	entry.Touch()

	if err := entry.ValidateContent(); err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	// A new url or type invalidates the stored display hints.
	if req.Type != nil || req.URL != nil {
		entry.BlurHash = ""
		entry.DurationMs = 0
		if entry.Type.IsMedia() {
			if err := s.enrichMedia(ctx, entry); err != nil {
				return nil, err
			}
		}
	}

	if err := s.store.UpdateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	return entry, nil
}

// Delete removes an owned entry. The media file it referenced stays on
// disk; orphaned uploads are an accepted leak, reported by the watcher
// and never reclaimed here.
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	entry, err := s.getOwned(ctx, userID, entryID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Entry deleted",
			"entry_id", entryID,
			"project_id", entry.ProjectID,
		)
	}

	return nil
}

// ListByProject returns an owned project's entries, newest first,
// optionally filtered to one category.
func (s *EntryService) ListByProject(ctx context.Context, userID, projectID, category string) ([]*domain.Entry, error) {
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	entries, err := s.store.ListEntriesByProject(ctx, projectID, normalize.Category(category))
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// Feed returns public entries across all users, newest first.
func (s *EntryService) Feed(ctx context.Context, limit int) ([]*domain.Entry, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	entries, err := s.store.ListPublicEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list public entries: %w", err)
	}
	return entries, nil
}

// enrichMedia verifies a media entry's URL points at a stored upload and
// fills in the server-derived display hints.
func (s *EntryService) enrichMedia(ctx context.Context, entry *domain.Entry) error {
	kind, name, ok := files.ParseURLPath(entry.URL)
	if !ok {
		return domainerrors.Validation("url does not reference an uploaded file")
	}

	wantKind := files.KindImage
	if entry.Type == domain.EntryTypeAudio {
		wantKind = files.KindAudio
	}
	if kind != wantKind {
		return domainerrors.Validationf("url does not reference %s media", entry.Type)
	}

	if !s.media.Exists(kind, name) {
		return domainerrors.Validation("uploaded file not found")
	}

	// Display hints are best-effort: a probe failure is never worth
	// rejecting the entry over.
	switch entry.Type {
	case domain.EntryTypeImage:
		hash, err := files.ComputeBlurHash(s.media.Path(kind, name))
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to compute blurhash", "url", entry.URL, "error", err)
			}
			return nil
		}
		entry.BlurHash = hash
	case domain.EntryTypeAudio:
		durationMs, err := files.ProbeDuration(ctx, s.media.Path(kind, name))
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("Failed to probe audio duration", "url", entry.URL, "error", err)
			}
			return nil
		}
		entry.DurationMs = durationMs
	}

	return nil
}

// getOwned fetches an entry and verifies the caller owns it.
// A foreign entry reads as not found so probing can't map IDs to owners.
func (s *EntryService) getOwned(ctx context.Context, userID, entryID string) (*domain.Entry, error) {
	entry, err := s.store.GetEntry(ctx, entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("entry not found")
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	if entry.UserID != userID {
		return nil, domainerrors.NotFound("entry not found")
	}

	return entry, nil
}
