package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"heatmapAPI/internal/stats"
	"heatmapAPI/internal/streak"
	"heatmapAPI/internal/types/activity"
	"heatmapAPI/internal/types/calendar"
	"heatmapAPI/internal/types/heatmap"
)

// streakMilestones are the current-streak lengths that trigger a
// notification, checked when a new day is first logged.
var streakMilestones = []int{7, 30, 100, 365}

type ActivityService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
}

func NewActivityService(db *pgxpool.Pool, notifications *NotificationService) *ActivityService {
	return &ActivityService{
		db:            db,
		notifications: notifications,
	}
}

func (s *ActivityService) resolveUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", err)
	}
	return userID, nil
}

// LogActivity upserts the user's log for a day. Logging the same day again
// accumulates the count. The first log of a day checks streak milestones.
func (s *ActivityService) LogActivity(ctx context.Context, clerkID string, date time.Time, count int, note *string) (*activity.DayLog, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if count < 1 {
		count = 1
	}
	day := date.UTC().Truncate(24 * time.Hour)

	var existed bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM daily_activity WHERE user_id = $1 AND date = $2)`,
		userID, day,
	).Scan(&existed)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing log: %w", err)
	}

	query := `
        INSERT INTO daily_activity (user_id, date, count, note, logged_at)
        VALUES ($1, $2, $3, $4, NOW())
        ON CONFLICT (user_id, date)
        DO UPDATE SET
            count = daily_activity.count + $3,
            note = COALESCE($4, daily_activity.note),
            logged_at = NOW()
        RETURNING user_id, date, count, note, logged_at
    `

	dayLog := &activity.DayLog{}
	err = s.db.QueryRow(ctx, query, userID, day, count, note).Scan(
		&dayLog.UserID,
		&dayLog.Date,
		&dayLog.Count,
		&dayLog.Note,
		&dayLog.LoggedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log activity: %w", err)
	}

	if !existed {
		s.checkMilestones(ctx, userID)
	}

	return dayLog, nil
}

func (s *ActivityService) RemoveActivity(ctx context.Context, clerkID string, date time.Time) error {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM daily_activity WHERE user_id = $1 AND date = $2`,
		userID, date.UTC().Truncate(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to remove activity log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no activity log found for the specified date")
	}

	return nil
}

// activityEntries loads every logged day for the user as calculator input.
func (s *ActivityService) activityEntries(ctx context.Context, userID uuid.UUID) ([]streak.Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT date, count FROM daily_activity WHERE user_id = $1 ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity days: %w", err)
	}
	defer rows.Close()

	var entries []streak.Entry
	for rows.Next() {
		var e streak.Entry
		if err := rows.Scan(&e.Date, &e.Count); err != nil {
			return nil, fmt.Errorf("failed to scan activity day: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// GetStreaks recomputes streaks fresh from the stored day logs. Nothing is
// cached or persisted between calls.
func (s *ActivityService) GetStreaks(ctx context.Context, clerkID string, weekStart streak.WeekStart, minCount int) (*streak.Result, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	entries, err := s.activityEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := streak.Compute(entries, streak.Options{
		WeekStart: weekStart,
		MinCount:  minCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compute streaks: %w", err)
	}

	return &result, nil
}

func (s *ActivityService) GetHeatmap(ctx context.Context, clerkID string, year int, weekStart streak.WeekStart, minCount int) (*heatmap.YearGrid, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(1, 0, -1)

	rows, err := s.db.Query(ctx,
		`SELECT date, count FROM daily_activity WHERE user_id = $1 AND date >= $2 AND date <= $3`,
		userID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch heatmap days: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan heatmap day: %w", err)
		}
		counts[date.Format(streak.DayFormat)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating heatmap days: %w", err)
	}

	return heatmap.BuildYearGrid(year, counts, weekStart, minCount, time.Now()), nil
}

func (s *ActivityService) GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, -1)

	rows, err := s.db.Query(ctx,
		`SELECT date, count FROM daily_activity WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		userID, startDate, endDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar: %w", err)
	}
	defer rows.Close()

	dayMap := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var count int
		if err := rows.Scan(&date, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		dayMap[date.Format(streak.DayFormat)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calendar rows: %w", err)
	}

	var days []*calendar.CalendarDay
	today := time.Now().UTC().Format(streak.DayFormat)

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(streak.DayFormat)
		count := dayMap[dateStr]
		days = append(days, &calendar.CalendarDay{
			Date:        d,
			Count:       count,
			ActiveToday: count > 0,
			IsToday:     dateStr == today,
		})
	}

	return &calendar.CalendarResponse{
		Year:  year,
		Month: month,
		Days:  days,
	}, nil
}

func (s *ActivityService) GetWeeklyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(*), 0) as active_days
	FROM daily_activity
	WHERE user_id = $1
		AND date >= DATE_TRUNC('week', CURRENT_DATE)
		AND date <= CURRENT_DATE
	`

	stat := &stats.DaysStat{Period: "week", TotalDays: 7}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.ActiveDays); err != nil {
		return nil, fmt.Errorf("failed to get weekly stats: %w", err)
	}

	return stat, nil
}

func (s *ActivityService) GetMonthlyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(*), 0) as active_days
	FROM daily_activity
	WHERE user_id = $1
		AND date >= DATE_TRUNC('month', CURRENT_DATE)
		AND date <= CURRENT_DATE
	`

	now := time.Now()
	daysInMonth := now.AddDate(0, 1, -now.Day()).Day()
	stat := &stats.DaysStat{Period: "month", TotalDays: daysInMonth}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.ActiveDays); err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}

	return stat, nil
}

func (s *ActivityService) GetYearlyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT COALESCE(COUNT(*), 0) as active_days
	FROM daily_activity
	WHERE user_id = $1
		AND date >= DATE_TRUNC('year', CURRENT_DATE)
		AND date <= CURRENT_DATE
	`

	now := time.Now()
	daysInYear := 365
	if now.Year()%4 == 0 && (now.Year()%100 != 0 || now.Year()%400 == 0) {
		daysInYear = 366
	}

	stat := &stats.DaysStat{Period: "year", TotalDays: daysInYear}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.ActiveDays); err != nil {
		return nil, fmt.Errorf("failed to get yearly stats: %w", err)
	}

	return stat, nil
}

func (s *ActivityService) GetAllTimeStats(ctx context.Context, clerkID string) (*stats.DaysStat, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		COALESCE(COUNT(*), 0) as active_days,
		COALESCE(CURRENT_DATE - MIN(date) + 1, 0) as total_days
	FROM daily_activity
	WHERE user_id = $1
	`

	stat := &stats.DaysStat{Period: "all_time"}
	if err := s.db.QueryRow(ctx, query, userID).Scan(&stat.ActiveDays, &stat.TotalDays); err != nil {
		return nil, fmt.Errorf("failed to get all time stats: %w", err)
	}

	return stat, nil
}

// GetUserStats aggregates period counts and streaks. Streaks come from the
// pure calculator, not SQL, so every surface reports identical numbers.
func (s *ActivityService) GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error) {
	userID, err := s.resolveUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		COALESCE(COUNT(*) FILTER (WHERE date = CURRENT_DATE), 0) > 0 as today_status,
		COALESCE(COUNT(*) FILTER (WHERE date >= DATE_TRUNC('week', CURRENT_DATE)), 0) as days_this_week,
		COALESCE(COUNT(*) FILTER (WHERE date >= DATE_TRUNC('month', CURRENT_DATE)), 0) as days_this_month,
		COALESCE(COUNT(*) FILTER (WHERE date >= DATE_TRUNC('year', CURRENT_DATE)), 0) as days_this_year,
		COALESCE(COUNT(*), 0) as total_days
	FROM daily_activity
	WHERE user_id = $1 AND date <= CURRENT_DATE
	`

	userStats := &stats.UserStats{}
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&userStats.TodayStatus,
		&userStats.DaysThisWeek,
		&userStats.DaysThisMonth,
		&userStats.DaysThisYear,
		&userStats.TotalDaysCount,
	)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	entries, err := s.activityEntries(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := streak.Compute(entries, streak.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to compute streaks: %w", err)
	}

	userStats.CurrentStreak = result.CurrentStreak
	userStats.LongestStreak = result.LongestStreak

	return userStats, nil
}

// checkMilestones fires a notification when the current streak lands
// exactly on a milestone. Called only when a new day was logged, so a
// milestone fires once.
func (s *ActivityService) checkMilestones(ctx context.Context, userID uuid.UUID) {
	if s.notifications == nil {
		return
	}

	entries, err := s.activityEntries(ctx, userID)
	if err != nil {
		log.Printf("Milestone check: could not load entries for %s: %v", userID, err)
		return
	}

	result, err := streak.Compute(entries, streak.Options{})
	if err != nil {
		log.Printf("Milestone check: compute failed for %s: %v", userID, err)
		return
	}

	for _, m := range streakMilestones {
		if result.CurrentStreak == m {
			if err := s.notifications.CreateStreakMilestone(ctx, userID, m); err != nil {
				log.Printf("Milestone check: notification failed for %s: %v", userID, err)
			}
			return
		}
	}
}
