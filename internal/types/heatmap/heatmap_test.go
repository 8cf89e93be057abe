package heatmap

import (
	"testing"
	"time"

	"heatmapAPI/internal/streak"
)

func TestBuildYearGrid_Alignment(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	grid := BuildYearGrid(2026, nil, streak.Monday, 1, now)

	// 2026-01-01 is a Thursday: 4 leading cells, then 51 full weeks,
	// then a 4-day tail ending Thursday 2026-12-31.
	if len(grid.Weeks) != 53 {
		t.Fatalf("weeks = %d, want 53", len(grid.Weeks))
	}

	first := grid.Weeks[0]
	for i := 0; i < 3; i++ {
		if first.Days[i] != nil {
			t.Errorf("leading slot %d should be nil before Jan 1", i)
		}
	}
	if first.Days[3] == nil || first.Days[3].Date != "2026-01-01" {
		t.Errorf("Jan 1 should land on the Thursday row, got %+v", first.Days[3])
	}

	last := grid.Weeks[len(grid.Weeks)-1]
	if last.Days[3] == nil || last.Days[3].Date != "2026-12-31" {
		t.Errorf("Dec 31 should land on the Thursday row, got %+v", last.Days[3])
	}
	if last.Days[4] != nil {
		t.Errorf("trailing slots after Dec 31 should be nil")
	}
}

func TestBuildYearGrid_SundayStartShiftsRows(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	grid := BuildYearGrid(2026, nil, streak.Sunday, 1, now)

	// Under a Sunday start, Thursday is row 4.
	if grid.Weeks[0].Days[4] == nil || grid.Weeks[0].Days[4].Date != "2026-01-01" {
		t.Errorf("Jan 1 should land on row 4 with Sunday start, got %+v", grid.Weeks[0].Days[4])
	}
	if grid.WeekStart != "sunday" {
		t.Errorf("week start label = %q, want sunday", grid.WeekStart)
	}
}

func TestBuildYearGrid_LevelsAndThreshold(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	counts := map[string]int{
		"2026-06-01": 8,
		"2026-06-02": 2,
		"2026-06-03": 1, // below threshold
	}
	grid := BuildYearGrid(2026, counts, streak.Monday, 2, now)

	if grid.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2", grid.ActiveDays)
	}
	if grid.MaxCount != 8 {
		t.Errorf("max count = %d, want 8", grid.MaxCount)
	}

	cells := make(map[string]*Cell)
	for _, w := range grid.Weeks {
		for _, c := range w.Days {
			if c != nil {
				cells[c.Date] = c
			}
		}
	}

	if got := cells["2026-06-01"].Level; got != 4 {
		t.Errorf("level(8) = %d, want 4", got)
	}
	if got := cells["2026-06-02"].Level; got != 1 {
		t.Errorf("level(2) = %d, want 1", got)
	}
	if got := cells["2026-06-03"].Level; got != 0 {
		t.Errorf("level below threshold = %d, want 0", got)
	}
	if got := cells["2026-01-15"].Level; got != 0 {
		t.Errorf("level of unlogged day = %d, want 0", got)
	}
}

func TestBuildYearGrid_MarksToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 18, 30, 0, 0, time.UTC)
	grid := BuildYearGrid(2026, nil, streak.Monday, 1, now)

	found := false
	for _, w := range grid.Weeks {
		for _, c := range w.Days {
			if c != nil && c.IsToday {
				if c.Date != "2026-08-31" {
					t.Errorf("today marked on %s, want 2026-08-31", c.Date)
				}
				found = true
			}
		}
	}
	if !found {
		t.Error("no cell marked as today")
	}
}
