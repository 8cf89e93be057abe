package activity

import (
	"time"

	"github.com/google/uuid"
)

// DayLog is one row of daily_activity: a single user-day with its
// accumulated activity count.
type DayLog struct {
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	Date     time.Time `json:"date" db:"date"`
	Count    int       `json:"count" db:"count"`
	Note     *string   `json:"note,omitempty" db:"note"`
	LoggedAt time.Time `json:"logged_at" db:"logged_at"`
}

type LogActivityRequest struct {
	// Date in "2006-01-02" form; empty means today (UTC).
	Date  string  `json:"date,omitempty"`
	Count int     `json:"count,omitempty"`
	Note  *string `json:"note,omitempty"`
}
