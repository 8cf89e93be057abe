package stats

type DaysStat struct {
	Period     string `json:"period"` // "week", "month", "year", "all_time"
	ActiveDays int    `json:"active_days" db:"active_days"`
	TotalDays  int    `json:"total_days"`
}

type UserStats struct {
	TodayStatus    bool `json:"today_status"`
	DaysThisWeek   int  `json:"days_this_week"`
	DaysThisMonth  int  `json:"days_this_month"`
	DaysThisYear   int  `json:"days_this_year"`
	TotalDaysCount int  `json:"total_days_count"`
	CurrentStreak  int  `json:"current_streak"`
	LongestStreak  int  `json:"longest_streak"`
}
