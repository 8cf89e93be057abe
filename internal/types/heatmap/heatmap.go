package heatmap

import (
	"time"

	"heatmapAPI/internal/streak"
)

// Cell is one day square in the contribution grid. Level buckets the
// day's count into 0-4 for client-side coloring, 0 meaning inactive.
type Cell struct {
	Date    string `json:"date"`
	Count   int    `json:"count"`
	Level   int    `json:"level"`
	IsToday bool   `json:"is_today,omitempty"`
}

// Week is one column of the grid. Slots outside the year stay nil so the
// first and last columns keep their weekday alignment.
type Week struct {
	Days [7]*Cell `json:"days"`
}

type YearGrid struct {
	Year       int     `json:"year"`
	WeekStart  string  `json:"week_start"`
	ActiveDays int     `json:"active_days"`
	MaxCount   int     `json:"max_count"`
	Weeks      []*Week `json:"weeks"`
}

// weekdayIndex maps a weekday to its row in the grid for the given week
// start.
func weekdayIndex(d time.Weekday, ws streak.WeekStart) int {
	if ws == streak.Sunday {
		return int(d)
	}
	return (int(d) + 6) % 7
}

// BuildYearGrid lays the year's day counts out as week columns. A day is
// active (level >= 1) only when its count meets minCount; active counts
// are bucketed into levels 1-4 relative to the year's maximum.
func BuildYearGrid(year int, counts map[string]int, ws streak.WeekStart, minCount int, now time.Time) *YearGrid {
	if minCount < 1 {
		minCount = 1
	}

	maxCount := 0
	activeDays := 0
	for _, c := range counts {
		if c < minCount {
			continue
		}
		activeDays++
		if c > maxCount {
			maxCount = c
		}
	}

	grid := &YearGrid{
		Year:       year,
		WeekStart:  ws.String(),
		ActiveDays: activeDays,
		MaxCount:   maxCount,
	}

	today := now.UTC().Format(streak.DayFormat)
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)

	week := &Week{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		idx := weekdayIndex(d.Weekday(), ws)
		if idx == 0 && (week.Days != [7]*Cell{}) {
			grid.Weeks = append(grid.Weeks, week)
			week = &Week{}
		}

		dateStr := d.Format(streak.DayFormat)
		count := counts[dateStr]
		week.Days[idx] = &Cell{
			Date:    dateStr,
			Count:   count,
			Level:   level(count, minCount, maxCount),
			IsToday: dateStr == today,
		}
	}
	grid.Weeks = append(grid.Weeks, week)

	return grid
}

func level(count, minCount, maxCount int) int {
	if count < minCount || maxCount == 0 {
		return 0
	}
	l := (count*4 + maxCount - 1) / maxCount
	if l < 1 {
		l = 1
	}
	if l > 4 {
		l = 4
	}
	return l
}
