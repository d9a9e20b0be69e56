package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kakera-app/kakera-server/internal/search"
)

// Search listing bounds.
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchService runs owner-scoped full-text search over projects and
// entry notes.
type SearchService struct {
	index  *search.Index
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		logger: logger,
	}
}

// SearchRequest contains search parameters.
type SearchRequest struct {
	Query    string `json:"q"`
	Types    []string
	Category string
	Limit    int
	Offset   int
}

// DocumentCount returns the number of indexed documents. Used by the
// health endpoint.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// Search executes a search over the user's own projects and entries.
func (s *SearchService) Search(ctx context.Context, userID string, req SearchRequest) (*search.Result, error) {
	params := search.DefaultParams(userID)
	params.Query = req.Query
	params.Types = req.Types
	params.Category = req.Category
	if req.Limit > 0 {
		params.Limit = req.Limit
	}
	if params.Limit > maxSearchLimit {
		params.Limit = maxSearchLimit
	}
	if req.Offset > 0 {
		params.Offset = req.Offset
	}

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return result, nil
}
