package models

// Prayer identifies one of the five daily prayers.
type Prayer string

const (
	Fajr    Prayer = "fajr"
	Zuhr    Prayer = "zuhr"
	Asr     Prayer = "asr"
	Maghrib Prayer = "maghrib"
	Isha    Prayer = "isha"
)

// Prayers lists the five daily prayers in chronological order.
var Prayers = []Prayer{Fajr, Zuhr, Asr, Maghrib, Isha}

// Valid reports whether p names one of the five daily prayers.
func (p Prayer) Valid() bool {
	switch p {
	case Fajr, Zuhr, Asr, Maghrib, Isha:
		return true
	}
	return false
}

// PrayerRecord holds one user's prayer completion flags for one calendar
// day. At most one record exists per (user, day, month, year); the storage
// layer upserts on that key.
type PrayerRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// UserID is the owner of the record.
	UserID string

	// Day is the calendar day of month, 1-31.
	Day int

	// Month is the calendar month, 1-12.
	Month int

	// Year is the calendar year, e.g. 2026.
	Year int

	// The five completion flags, independently toggleable.
	Fajr    bool
	Zuhr    bool
	Asr     bool
	Maghrib bool
	Isha    bool

	// CreatedAt is the Unix timestamp when the record was first inserted.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last toggle.
	UpdatedAt int64
}

// Get returns the completion flag for the given prayer.
func (r *PrayerRecord) Get(p Prayer) bool {
	switch p {
	case Fajr:
		return r.Fajr
	case Zuhr:
		return r.Zuhr
	case Asr:
		return r.Asr
	case Maghrib:
		return r.Maghrib
	case Isha:
		return r.Isha
	}
	return false
}

// Set assigns the completion flag for the given prayer.
func (r *PrayerRecord) Set(p Prayer, done bool) {
	switch p {
	case Fajr:
		r.Fajr = done
	case Zuhr:
		r.Zuhr = done
	case Asr:
		r.Asr = done
	case Maghrib:
		r.Maghrib = done
	case Isha:
		r.Isha = done
	}
}

// CompletedCount returns how many of the five prayers are marked complete.
func (r *PrayerRecord) CompletedCount() int {
	n := 0
	for _, p := range Prayers {
		if r.Get(p) {
			n++
		}
	}
	return n
}
