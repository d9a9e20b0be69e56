package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/service"
)

func (s *Server) registerProjectRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProjects",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects",
		Summary:     "List projects",
		Description: "Returns the authenticated user's creation boxes, newest first",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListProjects)

	huma.Register(s.api, huma.Operation{
		OperationID: "createProject",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects",
		Summary:     "Create project",
		Description: "Creates a creation box. A share token is minted at creation time.",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProject",
		Method:      http.MethodGet,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Get project",
		Description: "Returns a single project owned by the authenticated user",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProject",
		Method:      http.MethodPatch,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Update project",
		Description: "Partially updates name and description. The share token is never altered here.",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteProject",
		Method:      http.MethodDelete,
		Path:        "/api/v1/projects/{id}",
		Summary:     "Delete project",
		Description: "Deletes a project and all of its entries",
		Tags:        []string{"Projects"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteProject)

	huma.Register(s.api, huma.Operation{
		OperationID: "ensureShareLink",
		Method:      http.MethodPost,
		Path:        "/api/v1/projects/{id}/share",
		Summary:     "Ensure share link",
		Description: "Returns the project's share token, minting one for rows that predate share tokens",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleEnsureShareLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSharedProject",
		Method:      http.MethodGet,
		Path:        "/api/v1/shared/{shareID}",
		Summary:     "Resolve share token",
		Description: "Returns a read-only snapshot of a project and its entries. No authentication; the opaque token is the whole grant.",
		Tags:        []string{"Sharing"},
	}, s.handleGetSharedProject)
}

// === DTOs ===

// CreateProjectRequest is the request body for project creation.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200" doc:"Project name"`
	Description string `json:"description,omitempty" validate:"max=2000" doc:"Optional description"`
}

// CreateProjectInput wraps the create request for Huma.
type CreateProjectInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateProjectRequest
}

// UpdateProjectRequest is the request body for partial project updates.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200" doc:"New name"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" doc:"New description"`
}

// UpdateProjectInput wraps the update request for Huma.
type UpdateProjectInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Project ID"`
	Body          UpdateProjectRequest
}

// ProjectIDInput identifies a single project.
type ProjectIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Project ID"`
}

// ShareIDInput identifies a project by its opaque share token.
type ShareIDInput struct {
	ShareID string `path:"shareID" doc:"Opaque share token"`
}

// ProjectOutput wraps a single project for Huma.
type ProjectOutput struct {
	Body *domain.Project
}

// ProjectListResponse contains the user's projects.
type ProjectListResponse struct {
	Projects []*domain.Project `json:"projects" doc:"Projects, newest first"`
}

// ProjectListOutput wraps the project list for Huma.
type ProjectListOutput struct {
	Body ProjectListResponse
}

// ShareLinkResponse contains a project's share token and the URL that
// grants read-only access.
type ShareLinkResponse struct {
	ShareID string `json:"share_id" doc:"Opaque share token"`
	URL     string `json:"url" doc:"Shareable read-only URL"`
}

// ShareLinkOutput wraps the share link response for Huma.
type ShareLinkOutput struct {
	Body ShareLinkResponse
}

// SharedProjectOutput wraps a shared project snapshot for Huma.
type SharedProjectOutput struct {
	Body *service.SharedProject
}

// === Handlers ===

func (s *Server) handleListProjects(ctx context.Context, _ *struct {
	Authorization string `header:"Authorization"`
}) (*ProjectListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.services.Project.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProjectListOutput{Body: ProjectListResponse{Projects: projects}}, nil
}

func (s *Server) handleCreateProject(ctx context.Context, input *CreateProjectInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Create(ctx, userID, service.CreateProjectRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handleGetProject(ctx context.Context, input *ProjectIDInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handleUpdateProject(ctx context.Context, input *UpdateProjectInput) (*ProjectOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	project, err := s.services.Project.Update(ctx, userID, input.ID, service.UpdateProjectRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &ProjectOutput{Body: project}, nil
}

func (s *Server) handleDeleteProject(ctx context.Context, input *ProjectIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Project.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Project deleted"}}, nil
}

func (s *Server) handleEnsureShareLink(ctx context.Context, input *ProjectIDInput) (*ShareLinkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shareID, err := s.services.Project.EnsureShareLink(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ShareLinkOutput{Body: ShareLinkResponse{
		ShareID: shareID,
		URL:     s.publicURL + "/?share=" + shareID,
	}}, nil
}

func (s *Server) handleGetSharedProject(ctx context.Context, input *ShareIDInput) (*SharedProjectOutput, error) {
	shared, err := s.services.Project.GetShared(ctx, input.ShareID)
	if err != nil {
		return nil, err
	}

	return &SharedProjectOutput{Body: shared}, nil
}
