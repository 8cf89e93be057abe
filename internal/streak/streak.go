package streak

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidDate is returned when an activity date cannot be parsed or
// normalized. Malformed input is never silently dropped.
var ErrInvalidDate = errors.New("invalid activity date")

const DayFormat = "2006-01-02"

const daySeconds int64 = 24 * 60 * 60

// WeekStart selects the day a week column starts on. It only affects
// weekly grouping, never day-to-day contiguity.
type WeekStart int

const (
	Monday WeekStart = iota
	Sunday
)

func (w WeekStart) String() string {
	if w == Sunday {
		return "sunday"
	}
	return "monday"
}

// ParseWeekStart maps a query-string value to a WeekStart. Empty input
// defaults to Monday.
func ParseWeekStart(s string) (WeekStart, error) {
	switch s {
	case "", "monday":
		return Monday, nil
	case "sunday":
		return Sunday, nil
	default:
		return Monday, fmt.Errorf("unknown week start %q (want \"monday\" or \"sunday\")", s)
	}
}

// Entry is one raw activity record. Count 0 means the entry came from a
// bare date list and counts as 1. Dates may carry any timezone offset.
type Entry struct {
	Date  time.Time
	Count int
}

type Options struct {
	WeekStart WeekStart
	// MinCount is the activity threshold: a day is active only when the
	// sum of its entry counts reaches it. Values below 1 mean 1.
	MinCount int
	// Now anchors the current-streak check. Zero means time.Now().
	Now time.Time
}

// Result is recomputed fresh from raw input on every call.
// LongestStreak >= CurrentStreak always holds.
type Result struct {
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	ActiveDays    int        `json:"active_days"`
	WeeklyActive  []bool     `json:"weekly_active"`
	LastActive    *time.Time `json:"last_active,omitempty"`
}

// ParseEntries converts "YYYY-MM-DD" strings into entries. An optional
// counts map attaches per-day activity counts; dates missing from the map
// count as 1. Any unparseable date fails the whole batch.
func ParseEntries(dates []string, counts map[string]int) ([]Entry, error) {
	entries := make([]Entry, 0, len(dates))
	for _, raw := range dates {
		d, err := time.Parse(DayFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
		}
		count := 1
		if c, ok := counts[raw]; ok {
			count = c
		}
		entries = append(entries, Entry{Date: d, Count: count})
	}
	return entries, nil
}

// dayKey collapses a timestamp to its UTC calendar day, numbered from the
// Unix epoch. Equality and ordering of activity dates are defined on this
// key only.
func dayKey(t time.Time) int64 {
	return t.UTC().Truncate(24*time.Hour).Unix() / daySeconds
}

// Compute normalizes the entries (UTC day keys, duplicates summed, sorted
// ascending) and scans for the longest and current streaks plus per-week
// activity flags.
//
// The current streak is alive only while the latest active day is "today"
// or "yesterday" relative to opts.Now; one missed day after that grace
// window resets it to 0.
func Compute(entries []Entry, opts Options) (Result, error) {
	minCount := opts.MinCount
	if minCount < 1 {
		minCount = 1
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	totals := make(map[int64]int, len(entries))
	for _, e := range entries {
		if e.Date.IsZero() {
			return Result{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		count := e.Count
		if count == 0 {
			count = 1
		}
		if count < 0 {
			return Result{}, fmt.Errorf("%w: negative count %d on %s", ErrInvalidDate, count, e.Date.Format(DayFormat))
		}
		totals[dayKey(e.Date)] += count
	}

	days := make([]int64, 0, len(totals))
	for d, total := range totals {
		if total >= minCount {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return Result{WeeklyActive: []bool{}}, nil
	}
	slices.Sort(days)

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i] == days[i-1]+1 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}

	current := 0
	today := dayKey(now)
	latest := days[len(days)-1]
	if latest == today || latest == today-1 {
		current = 1
		for i := len(days) - 2; i >= 0; i-- {
			if days[i] != days[i+1]-1 {
				break
			}
			current++
		}
	}

	last := time.Unix(latest*daySeconds, 0).UTC()
	return Result{
		CurrentStreak: current,
		LongestStreak: longest,
		ActiveDays:    len(days),
		WeeklyActive:  weeklyFlags(days, opts.WeekStart),
		LastActive:    &last,
	}, nil
}

// startOfWeek returns the day key of the week containing d. Day 0
// (1970-01-01) was a Thursday, hence the offsets.
func startOfWeek(d int64, ws WeekStart) int64 {
	var off int64
	if ws == Sunday {
		off = (d + 4) % 7
	} else {
		off = (d + 3) % 7
	}
	if off < 0 {
		off += 7
	}
	return d - off
}

// weeklyFlags covers every week from the first to the last active day;
// a week is flagged when it holds at least one active day.
func weeklyFlags(days []int64, ws WeekStart) []bool {
	active := make(map[int64]bool)
	for _, d := range days {
		active[startOfWeek(d, ws)] = true
	}

	first := startOfWeek(days[0], ws)
	last := startOfWeek(days[len(days)-1], ws)

	flags := make([]bool, 0, (last-first)/7+1)
	for w := first; w <= last; w += 7 {
		flags = append(flags, active[w])
	}
	return flags
}
