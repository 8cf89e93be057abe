package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"heatmapAPI/internal/stats"
	"heatmapAPI/internal/streak"
	"heatmapAPI/internal/types/activity"
	"heatmapAPI/internal/types/calendar"
	"heatmapAPI/internal/types/heatmap"
	"heatmapAPI/middleware"
)

// ActivityService is the seam between HTTP and the storage-backed service,
// kept as an interface so handler tests can run against a fake.
type ActivityService interface {
	LogActivity(ctx context.Context, clerkID string, date time.Time, count int, note *string) (*activity.DayLog, error)
	RemoveActivity(ctx context.Context, clerkID string, date time.Time) error
	GetStreaks(ctx context.Context, clerkID string, weekStart streak.WeekStart, minCount int) (*streak.Result, error)
	GetHeatmap(ctx context.Context, clerkID string, year int, weekStart streak.WeekStart, minCount int) (*heatmap.YearGrid, error)
	GetCalendar(ctx context.Context, clerkID string, year int, month int) (*calendar.CalendarResponse, error)
	GetWeeklyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error)
	GetMonthlyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error)
	GetYearlyStats(ctx context.Context, clerkID string) (*stats.DaysStat, error)
	GetAllTimeStats(ctx context.Context, clerkID string) (*stats.DaysStat, error)
	GetUserStats(ctx context.Context, clerkID string) (*stats.UserStats, error)
}

type ActivityHandler struct {
	activityService ActivityService
}

func NewActivityHandler(activityService ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

func (h *ActivityHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req activity.LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse(streak.DayFormat, req.Date)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	dayLog, err := h.activityService.LogActivity(ctx, clerkID, date, req.Count, req.Note)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.RecordActivityLog()
	respondWithJSON(w, http.StatusOK, dayLog)
}

func (h *ActivityHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(streak.DayFormat, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	if err := h.activityService.RemoveActivity(ctx, clerkID, date); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Activity log removed successfully"})
}

func (h *ActivityHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	weekStart, minCount, err := streakParams(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.activityService.GetStreaks(ctx, clerkID, weekStart, minCount)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ActivityHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	weekStart, minCount, err := streakParams(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
	}

	grid, err := h.activityService.GetHeatmap(ctx, clerkID, year, weekStart, minCount)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, grid)
}

func (h *ActivityHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	var err error
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid year")
			return
		}
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		month, err = strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			respondWithError(w, http.StatusBadRequest, "Invalid month")
			return
		}
	}

	resp, err := h.activityService.GetCalendar(ctx, clerkID, year, month)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ActivityHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	userStats, err := h.activityService.GetUserStats(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, userStats)
}

func (h *ActivityHandler) GetWeeklyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.activityService.GetWeeklyStats)
}

func (h *ActivityHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.activityService.GetMonthlyStats)
}

func (h *ActivityHandler) GetYearlyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.activityService.GetYearlyStats)
}

func (h *ActivityHandler) GetAllTimeStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.activityService.GetAllTimeStats)
}

func (h *ActivityHandler) periodStats(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) (*stats.DaysStat, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	stat, err := fetch(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, stat)
}

func streakParams(r *http.Request) (streak.WeekStart, int, error) {
	weekStart, err := streak.ParseWeekStart(r.URL.Query().Get("week_start"))
	if err != nil {
		return streak.Monday, 0, err
	}

	minCount := 1
	if raw := r.URL.Query().Get("min_count"); raw != "" {
		minCount, err = strconv.Atoi(raw)
		if err != nil || minCount < 1 {
			return streak.Monday, 0, errInvalidMinCount
		}
	}

	return weekStart, minCount, nil
}
