package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/service"
)

func (s *Server) registerActivityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getActivityHeatmap",
		Method:      http.MethodGet,
		Path:        "/api/v1/activity/heatmap",
		Summary:     "Activity heatmap",
		Description: "Returns per-day entry counts for the authenticated user, one element per calendar day including zero days",
		Tags:        []string{"Activity"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHeatmap)
}

// HeatmapInput contains parameters for the activity heatmap.
type HeatmapInput struct {
	Authorization string `header:"Authorization"`
	Days          int    `query:"days" validate:"omitempty,gte=1,lte=366" doc:"Window size in days (default 365)"`
}

// HeatmapOutput wraps the heatmap response for Huma.
type HeatmapOutput struct {
	Body *service.Heatmap
}

func (s *Server) handleGetHeatmap(ctx context.Context, input *HeatmapInput) (*HeatmapOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	heatmap, err := s.services.Activity.UserHeatmap(ctx, userID, input.Days)
	if err != nil {
		return nil, err
	}

	return &HeatmapOutput{Body: heatmap}, nil
}
