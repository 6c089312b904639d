// Package progress computes prayer completion percentages over date
// windows. It is pure: callers pass the records and the reference time,
// nothing here reads the clock.
package progress

import (
	"math"
	"time"

	"github.com/ywahab/salahtrack/internal/models"
)

// prayersPerDay is the number of completion slots each calendar day holds.
const prayersPerDay = 5

// Date returns the calendar date of a record at midnight UTC. Records
// store day/month/year as plain ints, so comparisons happen at day
// granularity.
func Date(r *models.PrayerRecord) time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// WindowCompletion returns the completion percentage over the `days`
// calendar days ending at (and including) now. Days with no record count
// as zero completed but still contribute five slots to the total, so the
// result reflects "prayers prayed out of prayers due", not "out of
// prayers logged". The result is always in [0,100]; an empty record set
// yields 0.
func WindowCompletion(records []*models.PrayerRecord, now time.Time, days int) int {
	if days <= 0 {
		return 0
	}
	today := truncateToDay(now)
	from := today.AddDate(0, 0, -(days - 1))

	completed := 0
	for _, r := range records {
		d := Date(r)
		if d.Before(from) || d.After(today) {
			continue
		}
		completed += r.CompletedCount()
	}
	return percent(completed, days*prayersPerDay)
}

// MonthToDate returns the completion percentage for the current month,
// counting only days up to and including now's day of month. Future days
// are excluded from the total; past days without a record still count
// five slots. Records outside now's month are ignored.
func MonthToDate(records []*models.PrayerRecord, now time.Time) int {
	day := now.Day()
	completed := 0
	for _, r := range records {
		if r.Year != now.Year() || r.Month != int(now.Month()) {
			continue
		}
		if r.Day < 1 || r.Day > day {
			continue
		}
		completed += r.CompletedCount()
	}
	return percent(completed, day*prayersPerDay)
}

// PerPrayerStats holds per-prayer completion percentages for the group
// detail view.
type PerPrayerStats struct {
	Fajr    int `json:"fajr"`
	Zuhr    int `json:"zuhr"`
	Asr     int `json:"asr"`
	Maghrib int `json:"maghrib"`
	Isha    int `json:"isha"`
}

// PerPrayer computes, for each of the five prayers, the percentage of
// elapsed days this month on which it was completed. The denominator is
// now's day of month, same month-to-date accounting as MonthToDate.
func PerPrayer(records []*models.PrayerRecord, now time.Time) PerPrayerStats {
	day := now.Day()
	counts := make(map[models.Prayer]int, prayersPerDay)
	for _, r := range records {
		if r.Year != now.Year() || r.Month != int(now.Month()) {
			continue
		}
		if r.Day < 1 || r.Day > day {
			continue
		}
		for _, p := range models.Prayers {
			if r.Get(p) {
				counts[p]++
			}
		}
	}
	return PerPrayerStats{
		Fajr:    percent(counts[models.Fajr], day),
		Zuhr:    percent(counts[models.Zuhr], day),
		Asr:     percent(counts[models.Asr], day),
		Maghrib: percent(counts[models.Maghrib], day),
		Isha:    percent(counts[models.Isha], day),
	}
}
