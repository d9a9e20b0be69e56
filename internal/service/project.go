package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kakera-app/kakera-server/internal/domain"
	domainerrors "github.com/kakera-app/kakera-server/internal/errors"
	"github.com/kakera-app/kakera-server/internal/id"
	"github.com/kakera-app/kakera-server/internal/store"
)

// ProjectService handles creation boxes: the projects users attach their
// progress entries to.
type ProjectService struct {
	store  store.Store
	logger *slog.Logger
}

// NewProjectService creates a new project service.
func NewProjectService(store store.Store, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		logger: logger,
	}
}

// CreateProjectRequest contains new project data.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest contains partial project updates.
// Nil fields are left unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// SharedProject is the read-only view a share link resolves to.
type SharedProject struct {
	Project *domain.Project `json:"project"`
	Entries []*domain.Entry `json:"entries"`
}

// Create makes a new project owned by the user. The share ID is minted
// up front so the share link never changes over the project's life.
func (s *ProjectService) Create(ctx context.Context, userID string, req CreateProjectRequest) (*domain.Project, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	projectID, err := id.Generate("proj")
	if err != nil {
		return nil, fmt.Errorf("generate project ID: %w", err)
	}

	shareID, err := id.Generate("share")
	if err != nil {
		return nil, fmt.Errorf("generate share ID: %w", err)
	}

	project := &domain.Project{
		Entity: domain.Entity{
			ID: projectID,
		},
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		UserID:      userID,
		ShareID:     shareID,
	}
	project.InitTimestamps()

	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Project created",
			"project_id", projectID,
			"user_id", userID,
		)
	}

	return project, nil
}

// Get returns a project after verifying ownership.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	return s.getOwned(ctx, userID, projectID)
}

// Update applies partial changes to an owned project.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, req UpdateProjectRequest) (*domain.Project, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	project, err := s.getOwned(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	project.Touch()

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}

	return project, nil
}

// Delete removes an owned project and all its entries.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	if _, err := s.getOwned(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Project deleted",
			"project_id", projectID,
			"user_id", userID,
		)
	}

	return nil
}

// List returns the user's projects, newest first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]*domain.Project, error) {
	projects, err := s.store.ListProjectsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// EnsureShareLink returns the project's share ID, minting one for rows
// created before share IDs were assigned at creation time.
func (s *ProjectService) EnsureShareLink(ctx context.Context, userID, projectID string) (string, error) {
	project, err := s.getOwned(ctx, userID, projectID)
	if err != nil {
		return "", err
	}

	if project.HasShareLink() {
		return project.ShareID, nil
	}

	shareID, err := id.Generate("share")
	if err != nil {
		return "", fmt.Errorf("generate share ID: %w", err)
	}

	project.ShareID = shareID
	project.Touch()

	if err := s.store.UpdateProject(ctx, project); err != nil {
		return "", fmt.Errorf("save share ID: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Share link created",
			"project_id", projectID,
			"user_id", userID,
		)
	}

	return shareID, nil
}

// GetShared resolves a share ID to its read-only project view.
// No authentication is involved: holding the link is the whole grant.
func (s *ProjectService) GetShared(ctx context.Context, shareID string) (*SharedProject, error) {
	if shareID == "" {
		return nil, domainerrors.Validation("share ID is required")
	}

	project, err := s.store.GetProjectByShareID(ctx, shareID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("shared project not found")
		}
		return nil, fmt.Errorf("lookup shared project: %w", err)
	}

	entries, err := s.store.ListEntriesByProject(ctx, project.ID, "")
	if err != nil {
		return nil, fmt.Errorf("list shared entries: %w", err)
	}

	return &SharedProject{
		Project: project,
		Entries: entries,
	}, nil
}

// getOwned fetches a project and verifies the caller owns it.
// A foreign project reads as not found so probing can't map IDs to owners.
func (s *ProjectService) getOwned(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("project not found")
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	if project.UserID != userID {
		return nil, domainerrors.NotFound("project not found")
	}

	return project, nil
}
