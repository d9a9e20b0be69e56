package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/search"
	"github.com/kakera-app/kakera-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search own projects and entries",
		Description: "Full-text search scoped to the authenticated user's projects and entry notes",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the user's own content.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" validate:"required,min=1,max=200" doc:"Search query"`
	Types         string `query:"types" validate:"omitempty,max=50" doc:"Comma-separated types to search (project,entry). Omit for all."`
	Category      string `query:"category" validate:"omitempty,max=100" doc:"Restrict entry hits to one category"`
	Limit         int    `query:"limit" validate:"omitempty,gte=1,lte=100" doc:"Max results (default 20)"`
	Offset        int    `query:"offset" validate:"omitempty,gte=0" doc:"Pagination offset (default 0)"`
}

// SearchHitResult contains a single search result (project or entry).
type SearchHitResult struct {
	ID         string            `json:"id" doc:"Entity ID"`
	Type       string            `json:"type" doc:"Type: project or entry"`
	Score      float64           `json:"score" doc:"Search relevance score"`
	Text       string            `json:"text" doc:"Matched text (name for projects, notes for entries)"`
	ProjectID  string            `json:"project_id,omitempty" doc:"Owning project (for entries)"`
	Category   string            `json:"category,omitempty" doc:"Category (for entries)"`
	EntryType  string            `json:"entry_type,omitempty" doc:"Entry type (for entries)"`
	Timestamp  int64             `json:"timestamp,omitempty" doc:"Entry timestamp in Unix milliseconds"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted matches"`
}

// SearchResponse contains search results.
type SearchResponse struct {
	Query  string            `json:"query" doc:"Original search query"`
	Total  int64             `json:"total" doc:"Total matches"`
	TookMs int64             `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []SearchHitResult `json:"hits" doc:"Search results"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	req := service.SearchRequest{
		Query:    input.Query,
		Category: input.Category,
		Limit:    input.Limit,
		Offset:   input.Offset,
	}

	// Parse types - comma-separated string to slice
	if input.Types != "" {
		for t := range strings.SplitSeq(input.Types, ",") {
			switch strings.TrimSpace(t) {
			case "project":
				req.Types = append(req.Types, string(search.DocTypeProject))
			case "entry":
				req.Types = append(req.Types, string(search.DocTypeEntry))
			}
		}
	}

	result, err := s.services.Search.Search(ctx, userID, req)
	if err != nil {
		s.logger.Error("Search failed", "error", err, "query", input.Query)
		return nil, err
	}

	resp := SearchResponse{
		Query:  input.Query,
		Total:  int64(result.Total), //nolint:gosec // Safe: total count won't exceed int64
		TookMs: result.TookMs,
		Hits:   make([]SearchHitResult, 0, len(result.Hits)),
	}

	for i := range result.Hits {
		hit := &result.Hits[i]
		resp.Hits = append(resp.Hits, SearchHitResult{
			ID:         hit.ID,
			Type:       string(hit.Type),
			Score:      hit.Score,
			Text:       hit.Text,
			ProjectID:  hit.ProjectID,
			Category:   hit.Category,
			EntryType:  hit.EntryType,
			Timestamp:  hit.Timestamp,
			Highlights: hit.Highlights,
		})
	}

	return &SearchOutput{Body: resp}, nil
}
