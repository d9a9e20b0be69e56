package domain

import "time"

// DayCount is one heatmap bucket: how many entries a user created on a day.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// heatmapDateFormat is the bucket key layout.
const heatmapDateFormat = "2006-01-02"

// FillMissingDays expands a sparse set of buckets into a dense series
// covering [since, until], one bucket per day, zero counts included.
// The heatmap renders a fixed grid, so gaps have to exist as rows.
func FillMissingDays(buckets []DayCount, since, until time.Time) []DayCount {
	counts := make(map[string]int, len(buckets))
	for _, b := range buckets {
		counts[b.Date] = b.Count
	}

	var out []DayCount
	for d := since.Truncate(24 * time.Hour); !d.After(until); d = d.AddDate(0, 0, 1) {
		key := d.Format(heatmapDateFormat)
		out = append(out, DayCount{Date: key, Count: counts[key]})
	}
	return out
}
