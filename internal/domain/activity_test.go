package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillMissingDays(t *testing.T) {
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	sparse := []DayCount{
		{Date: "2026-03-02", Count: 3},
		{Date: "2026-03-05", Count: 1},
	}

	dense := FillMissingDays(sparse, since, until)
	require.Len(t, dense, 5)

	assert.Equal(t, DayCount{Date: "2026-03-01", Count: 0}, dense[0])
	assert.Equal(t, DayCount{Date: "2026-03-02", Count: 3}, dense[1])
	assert.Equal(t, DayCount{Date: "2026-03-03", Count: 0}, dense[2])
	assert.Equal(t, DayCount{Date: "2026-03-04", Count: 0}, dense[3])
	assert.Equal(t, DayCount{Date: "2026-03-05", Count: 1}, dense[4])
}

func TestFillMissingDays_SingleDay(t *testing.T) {
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	dense := FillMissingDays(nil, day, day)
	require.Len(t, dense, 1)
	assert.Equal(t, DayCount{Date: "2026-01-15", Count: 0}, dense[0])
}
