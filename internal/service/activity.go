package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kakera-app/kakera-server/internal/domain"
	"github.com/kakera-app/kakera-server/internal/store"
)

// Heatmap bounds. A year of cells is the largest view the UI renders.
const (
	defaultHeatmapDays = 365
	maxHeatmapDays     = 366
)

// ActivityService computes per-day entry counts for the activity heatmap.
type ActivityService struct {
	store  store.Store
	logger *slog.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(store store.Store, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		store:  store,
		logger: logger,
	}
}

// Heatmap contains a dense day-by-day activity series.
type Heatmap struct {
	Since string            `json:"since"` // First day, YYYY-MM-DD
	Until string            `json:"until"` // Last day (today), YYYY-MM-DD
	Total int               `json:"total"` // Entries across the window
	Days  []domain.DayCount `json:"days"`
}

// UserHeatmap returns the user's entry counts for the trailing window.
// Every day in the window is present, zero-count days included, so the
// client can render cells without date math.
func (s *ActivityService) UserHeatmap(ctx context.Context, userID string, days int) (*Heatmap, error) {
	if days <= 0 {
		days = defaultHeatmapDays
	}
	if days > maxHeatmapDays {
		days = maxHeatmapDays
	}

	until := time.Now().UTC()
	since := until.AddDate(0, 0, -(days - 1))

	buckets, err := s.store.CountEntriesByDay(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("count entries by day: %w", err)
	}

	dense := domain.FillMissingDays(buckets, since, until)

	total := 0
	for _, d := range dense {
		total += d.Count
	}

	return &Heatmap{
		Since: since.Format("2006-01-02"),
		Until: until.Format("2006-01-02"),
		Total: total,
		Days:  dense,
	}, nil
}
