package streak

import (
	"errors"
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func entriesFor(dates ...string) []Entry {
	entries := make([]Entry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, Entry{Date: mustDate(d)})
	}
	return entries
}

func TestCompute_Empty(t *testing.T) {
	res, err := Compute(nil, Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 0 || res.LongestStreak != 0 {
		t.Errorf("expected 0/0 for empty input, got %d/%d", res.CurrentStreak, res.LongestStreak)
	}
	if res.ActiveDays != 0 || len(res.WeeklyActive) != 0 {
		t.Errorf("expected no active days or weeks, got %d days, %d weeks", res.ActiveDays, len(res.WeeklyActive))
	}
}

func TestCompute_SingleDateToday(t *testing.T) {
	res, err := Compute(entriesFor("2026-08-31"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1", res.CurrentStreak)
	}
	if res.LongestStreak != 1 {
		t.Errorf("longest streak = %d, want 1", res.LongestStreak)
	}
}

func TestCompute_YesterdayKeepsStreakAlive(t *testing.T) {
	res, err := Compute(entriesFor("2026-08-28", "2026-08-29", "2026-08-30"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 3 {
		t.Errorf("current streak = %d, want 3 (yesterday grace)", res.CurrentStreak)
	}
}

func TestCompute_BrokenStreakIsZero(t *testing.T) {
	// Latest activity two days before now: past the grace window.
	res, err := Compute(entriesFor("2026-08-28", "2026-08-29"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 0 {
		t.Errorf("current streak = %d, want 0", res.CurrentStreak)
	}
	if res.LongestStreak != 2 {
		t.Errorf("longest streak = %d, want 2", res.LongestStreak)
	}
}

func TestCompute_DuplicatesCollapse(t *testing.T) {
	// [D, D, D+1] is a 2-day streak, not 3.
	res, err := Compute(entriesFor("2026-08-30", "2026-08-30", "2026-08-31"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", res.CurrentStreak)
	}
	if res.LongestStreak != 2 {
		t.Errorf("longest streak = %d, want 2", res.LongestStreak)
	}
	if res.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2", res.ActiveDays)
	}
}

func TestCompute_OneDayGapBreaksRun(t *testing.T) {
	res, err := Compute(entriesFor("2026-08-27", "2026-08-29"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LongestStreak != 1 {
		t.Errorf("longest streak = %d, want 1", res.LongestStreak)
	}
}

func TestCompute_LongestExceedsCurrent(t *testing.T) {
	res, err := Compute(entriesFor(
		"2026-08-10", "2026-08-11", "2026-08-12", "2026-08-13", "2026-08-14",
		"2026-08-30", "2026-08-31",
	), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", res.CurrentStreak)
	}
	if res.LongestStreak != 5 {
		t.Errorf("longest streak = %d, want 5", res.LongestStreak)
	}
	if res.LongestStreak < res.CurrentStreak {
		t.Errorf("invariant violated: longest %d < current %d", res.LongestStreak, res.CurrentStreak)
	}
}

func TestCompute_UnsortedInput(t *testing.T) {
	res, err := Compute(entriesFor("2026-08-31", "2026-08-29", "2026-08-30"), Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CurrentStreak != 3 || res.LongestStreak != 3 {
		t.Errorf("got %d/%d, want 3/3", res.CurrentStreak, res.LongestStreak)
	}
}

func TestCompute_MixedTimezonesSameDay(t *testing.T) {
	// 23:30+02:00 and 21:30Z are the same UTC day.
	sofia := time.FixedZone("EET", 2*60*60)
	entries := []Entry{
		{Date: time.Date(2026, 8, 30, 23, 30, 0, 0, sofia)},
		{Date: time.Date(2026, 8, 30, 21, 30, 0, 0, time.UTC)},
		{Date: time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)},
	}
	res, err := Compute(entries, Options{Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2 (offsets normalize to one day)", res.ActiveDays)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("current streak = %d, want 2", res.CurrentStreak)
	}
}

func TestCompute_MinCountThreshold(t *testing.T) {
	entries := []Entry{
		{Date: mustDate("2026-08-29"), Count: 3},
		{Date: mustDate("2026-08-30"), Count: 1},
		{Date: mustDate("2026-08-31"), Count: 2},
	}
	res, err := Compute(entries, Options{MinCount: 2, Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The 30th falls below the threshold, splitting the run.
	if res.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2", res.ActiveDays)
	}
	if res.LongestStreak != 1 {
		t.Errorf("longest streak = %d, want 1", res.LongestStreak)
	}
	if res.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1", res.CurrentStreak)
	}
}

func TestCompute_MinCountSumsSameDayEntries(t *testing.T) {
	// Two entries on the same day sum to meet the threshold.
	entries := []Entry{
		{Date: mustDate("2026-08-31"), Count: 1},
		{Date: mustDate("2026-08-31"), Count: 1},
	}
	res, err := Compute(entries, Options{MinCount: 2, Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ActiveDays != 1 || res.CurrentStreak != 1 {
		t.Errorf("got %d active / %d current, want 1/1", res.ActiveDays, res.CurrentStreak)
	}
}

func TestCompute_WeeklyFlagsMondayStart(t *testing.T) {
	// Mon 2026-08-17 and Mon 2026-08-31 are two weeks apart; the week of
	// the 24th has no activity.
	res, err := Compute(entriesFor("2026-08-17", "2026-08-31"), Options{WeekStart: Monday, Now: mustDate("2026-08-31")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []bool{true, false, true}
	if len(res.WeeklyActive) != len(want) {
		t.Fatalf("weekly flags = %v, want %v", res.WeeklyActive, want)
	}
	for i := range want {
		if res.WeeklyActive[i] != want[i] {
			t.Errorf("weekly flags = %v, want %v", res.WeeklyActive, want)
			break
		}
	}
}

func TestCompute_WeekStartChangesGroupingOnly(t *testing.T) {
	// Sat 2026-08-29 and Sun 2026-08-30: one week under Monday start,
	// two under Sunday start. The streak itself must not change.
	entries := entriesFor("2026-08-29", "2026-08-30")
	now := mustDate("2026-08-31")

	monday, err := Compute(entries, Options{WeekStart: Monday, Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sunday, err := Compute(entries, Options{WeekStart: Sunday, Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(monday.WeeklyActive) != 1 {
		t.Errorf("monday-start weeks = %d, want 1", len(monday.WeeklyActive))
	}
	if len(sunday.WeeklyActive) != 2 {
		t.Errorf("sunday-start weeks = %d, want 2", len(sunday.WeeklyActive))
	}
	if monday.CurrentStreak != sunday.CurrentStreak || monday.LongestStreak != sunday.LongestStreak {
		t.Errorf("week start changed streaks: %d/%d vs %d/%d",
			monday.CurrentStreak, monday.LongestStreak, sunday.CurrentStreak, sunday.LongestStreak)
	}
}

func TestCompute_IdempotentOverNormalizedOutput(t *testing.T) {
	raw := entriesFor("2026-08-31", "2026-08-30", "2026-08-30", "2026-08-25")
	now := mustDate("2026-08-31")

	first, err := Compute(raw, Options{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Re-feed the already-normalized view: sorted, deduplicated.
	normalized := entriesFor("2026-08-25", "2026-08-30", "2026-08-31")
	second, err := Compute(normalized, Options{Now: now})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.CurrentStreak != second.CurrentStreak || first.LongestStreak != second.LongestStreak || first.ActiveDays != second.ActiveDays {
		t.Errorf("recompute diverged: %+v vs %+v", first, second)
	}
}

func TestCompute_ZeroTimeRejected(t *testing.T) {
	_, err := Compute([]Entry{{}}, Options{Now: mustDate("2026-08-31")})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseEntries_MalformedDateFails(t *testing.T) {
	_, err := ParseEntries([]string{"2026-08-31", "not-a-date"}, nil)
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseEntries_CountsAttach(t *testing.T) {
	entries, err := ParseEntries([]string{"2026-08-30", "2026-08-31"}, map[string]int{"2026-08-31": 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries[0].Count != 1 {
		t.Errorf("bare date count = %d, want 1", entries[0].Count)
	}
	if entries[1].Count != 4 {
		t.Errorf("mapped count = %d, want 4", entries[1].Count)
	}
}
