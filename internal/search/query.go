package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query. UserID is mandatory: every search
// is scoped to a single owner's projects and entries.
type Params struct {
	UserID string // Owner whose documents are searched (required)
	Query  string // User's search query

	// Filters
	Types     []string // Document types to include (empty = all)
	ProjectID string   // Restrict entry hits to one project
	Category  string   // Restrict entry hits to an exact category

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "recent"
	SortOrder string // "asc", "desc"

	// Options
	Highlight bool // Include match highlighting
}

// DefaultParams returns sensible defaults for an owner's search.
func DefaultParams(userID string) Params {
	return Params{
		UserID:    userID,
		Limit:     20,
		Offset:    0,
		SortBy:    "relevance",
		SortOrder: "desc",
		Highlight: true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit represents a single search result.
type Hit struct {
	ID         string            `json:"id"`
	Type       DocType           `json:"type"`
	Score      float64           `json:"score"`
	Text       string            `json:"text"`
	ProjectID  string            `json:"project_id,omitempty"`
	Category   string            `json:"category,omitempty"`
	EntryType  string            `json:"entry_type,omitempty"`
	Timestamp  int64             `json:"timestamp,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query scoped to a single owner.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.UserID == "" {
		return nil, fmt.Errorf("search requires a user scope")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build the query
	searchQuery := buildSearchQuery(params)

	// Create search request
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Add sorting
	addSorting(searchRequest, params)

	// Add highlighting
	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("text")
		searchRequest.Highlight.AddField("description")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "type", "text", "project_id", "category", "entry_type", "timestamp",
	}

	// Execute search
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	// Convert results
	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = DocType(t)
		}
		if txt, ok := hit.Fields["text"].(string); ok {
			searchHit.Text = txt
		}
		if p, ok := hit.Fields["project_id"].(string); ok {
			searchHit.ProjectID = p
		}
		if c, ok := hit.Fields["category"].(string); ok {
			searchHit.Category = c
		}
		if et, ok := hit.Fields["entry_type"].(string); ok {
			searchHit.EntryType = et
		}
		if ts, ok := hit.Fields["timestamp"].(float64); ok {
			searchHit.Timestamp = int64(ts)
		}

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// The owner term query is always present and ANDed with everything else
// so a search can never surface another user's documents.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Owner scope - mandatory
	ownerQuery := bleve.NewTermQuery(params.UserID)
	ownerQuery.SetField("user_id")
	queries = append(queries, ownerQuery)

	// Main text query across project names, descriptions and entry notes
	if params.Query != "" {
		textQueries := []query.Query{}

		// Primary text match with highest boost
		textMatch := bleve.NewMatchQuery(params.Query)
		textMatch.SetField("text")
		textMatch.SetBoost(3.0)
		textQueries = append(textQueries, textMatch)

		// Project description match
		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		descMatch.SetBoost(1.5)
		textQueries = append(textQueries, descMatch)

		// Fuzzy matching for typo tolerance
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("text")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("text")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Type filter
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Project filter (entry documents only carry project_id)
	if params.ProjectID != "" {
		pq := bleve.NewTermQuery(params.ProjectID)
		pq.SetField("project_id")
		queries = append(queries, pq)
	}

	// Category filter (exact match)
	if params.Category != "" {
		cq := bleve.NewTermQuery(params.Category)
		cq.SetField("category")
		queries = append(queries, cq)
	}

	// Combine all queries with AND
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"timestamp"})
		} else {
			req.SortBy([]string{"-timestamp"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}
