package calendar

import "time"

type CalendarDay struct {
	Date        time.Time `json:"date" db:"date"`
	Count       int       `json:"count" db:"count"`
	ActiveToday bool      `json:"active_today" db:"active_today"`
	IsToday     bool      `json:"is_today"`
}

type CalendarResponse struct {
	Year  int            `json:"year"`
	Month int            `json:"month"`
	Days  []*CalendarDay `json:"days"`
}
