package service

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ywahab/salahtrack/internal/httpapi"
	"github.com/ywahab/salahtrack/internal/middleware"
	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/progress"
	"github.com/ywahab/salahtrack/internal/storage"
)

// PrayerService implements the prayer tracking endpoints.
type PrayerService struct {
	store  storage.Store
	groups *GroupService
	clock  Clock
}

// NewPrayerService creates a new PrayerService. groups is used to
// invalidate cached group progress after a toggle and may be nil.
func NewPrayerService(store storage.Store, groups *GroupService, clock Clock) *PrayerService {
	return &PrayerService{store: store, groups: groups, clock: orNow(clock)}
}

type prayerRecordView struct {
	Day     int  `json:"day"`
	Month   int  `json:"month"`
	Year    int  `json:"year"`
	Fajr    bool `json:"fajr"`
	Zuhr    bool `json:"zuhr"`
	Asr     bool `json:"asr"`
	Maghrib bool `json:"maghrib"`
	Isha    bool `json:"isha"`
}

func toPrayerRecordView(r *models.PrayerRecord) prayerRecordView {
	return prayerRecordView{
		Day:     r.Day,
		Month:   r.Month,
		Year:    r.Year,
		Fajr:    r.Fajr,
		Zuhr:    r.Zuhr,
		Asr:     r.Asr,
		Maghrib: r.Maghrib,
		Isha:    r.Isha,
	}
}

// Month returns the authenticated user's prayer records for the current
// month along with the month-to-date completion percentage.
func (s *PrayerService) Month(c *gin.Context) {
	userID := middleware.UserID(c)
	now := s.clock()

	records, err := s.store.ListPrayerRecordsByMonth(c.Request.Context(), userID, int(now.Month()), now.Year())
	if err != nil {
		slog.Error("Month fetch failed", "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load prayer records")
		return
	}

	views := make([]prayerRecordView, len(records))
	for i, r := range records {
		views[i] = toPrayerRecordView(r)
	}

	httpapi.OK(c, gin.H{
		"records":        views,
		"month":          int(now.Month()),
		"year":           now.Year(),
		"month_progress": progress.MonthToDate(records, now),
		"prayer_stats":   progress.PerPrayer(records, now),
	})
}

type toggleRequest struct {
	Day       int           `json:"day" binding:"required"`
	Month     int           `json:"month" binding:"required"`
	Year      int           `json:"year" binding:"required"`
	Prayer    models.Prayer `json:"prayer" binding:"required"`
	Completed bool          `json:"completed"`
}

// Toggle sets one prayer flag for the authenticated user. Only the
// current calendar day is editable; the client sends the desired state so
// a delayed request cannot re-flip a value the user has since corrected.
// The response carries the stored record and the recomputed month
// progress for the optimistic UI to reconcile against.
func (s *PrayerService) Toggle(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "day, month, year and prayer are required")
		return
	}

	if !req.Prayer.Valid() {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "unknown prayer "+string(req.Prayer))
		return
	}
	if req.Day < 1 || req.Day > 31 {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "day must be between 1 and 31")
		return
	}

	now := s.clock()
	if req.Day != now.Day() || req.Month != int(now.Month()) || req.Year != now.Year() {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "only today's prayers can be changed")
		return
	}

	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	record, err := s.store.UpsertPrayerField(ctx, userID, req.Day, req.Month, req.Year, req.Prayer, req.Completed)
	if err != nil {
		slog.Error("Toggle failed", "user_id", userID, "prayer", req.Prayer, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to save prayer status")
		return
	}

	// Group progress snapshots are stale now.
	if s.groups != nil {
		s.groups.InvalidateProgress(ctx, userID)
	}

	records, err := s.store.ListPrayerRecordsByMonth(ctx, userID, req.Month, req.Year)
	if err != nil {
		slog.Error("Toggle progress recompute failed", "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to recompute progress")
		return
	}

	slog.Info("Prayer toggled",
		"user_id", userID,
		"prayer", req.Prayer,
		"completed", req.Completed,
	)
	httpapi.OK(c, gin.H{
		"record":         toPrayerRecordView(record),
		"month_progress": progress.MonthToDate(records, now),
	})
}

// windowDays are the day-count windows Progress accepts.
var windowDays = map[int]bool{7: true, 30: true}

// Progress returns the completion percentage over an N-day window ending
// today. Supports the 7 and 30 day windows the client renders.
func (s *PrayerService) Progress(c *gin.Context) {
	days := 7
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || !windowDays[parsed] {
			httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "days must be 7 or 30")
			return
		}
		days = parsed
	}

	userID := middleware.UserID(c)
	now := s.clock()

	records, err := s.store.ListPrayerRecordsInRange(c.Request.Context(), userID, now.AddDate(0, 0, -(days-1)), now)
	if err != nil {
		slog.Error("Progress fetch failed", "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load prayer records")
		return
	}

	httpapi.OK(c, gin.H{
		"days":    days,
		"percent": progress.WindowCompletion(records, now, days),
	})
}
