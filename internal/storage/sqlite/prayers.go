package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/storage"
)

const prayerColumns = "id, user_id, day, month, year, fajr, zuhr, asr, maghrib, isha, created_at, updated_at"

func scanPrayerRecord(row interface{ Scan(...any) error }) (*models.PrayerRecord, error) {
	r := &models.PrayerRecord{}
	err := row.Scan(
		&r.ID, &r.UserID, &r.Day, &r.Month, &r.Year,
		&r.Fajr, &r.Zuhr, &r.Asr, &r.Maghrib, &r.Isha,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetPrayerRecord retrieves the record for (user, day, month, year).
func (s *SQLiteStore) GetPrayerRecord(ctx context.Context, userID string, day, month, year int) (*models.PrayerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+prayerColumns+" FROM prayers WHERE user_id = ? AND day = ? AND month = ? AND year = ?",
		userID, day, month, year,
	)

	record, err := scanPrayerRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prayer record %s %04d-%02d-%02d: %w", userID, year, month, day, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prayer record: %w", err)
	}
	return record, nil
}

// ListPrayerRecordsByMonth returns the user's records for one calendar month.
func (s *SQLiteStore) ListPrayerRecordsByMonth(ctx context.Context, userID string, month, year int) ([]*models.PrayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+prayerColumns+" FROM prayers WHERE user_id = ? AND month = ? AND year = ? ORDER BY day",
		userID, month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayer records by month: %w", err)
	}
	defer rows.Close()

	return collectPrayerRecords(rows)
}

// ListPrayerRecordsInRange returns the user's records whose calendar date
// falls within [from, to], inclusive. The comparison runs on the composite
// year*10000 + month*100 + day key, which orders the same as the date and
// works across month and year boundaries.
func (s *SQLiteStore) ListPrayerRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]*models.PrayerRecord, error) {
	fromKey := dateKey(from)
	toKey := dateKey(to)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+prayerColumns+" FROM prayers WHERE user_id = ? AND (year * 10000 + month * 100 + day) BETWEEN ? AND ? ORDER BY year, month, day",
		userID, fromKey, toKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayer records in range: %w", err)
	}
	defer rows.Close()

	return collectPrayerRecords(rows)
}

func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func collectPrayerRecords(rows *sql.Rows) ([]*models.PrayerRecord, error) {
	var records []*models.PrayerRecord
	for rows.Next() {
		record, err := scanPrayerRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prayer record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prayer records: %w", err)
	}
	return records, nil
}

// UpsertPrayerField sets a single prayer flag for (user, day, month, year).
// When a record exists only the one column changes; otherwise a new record
// is inserted with the remaining four flags false. The read and the write
// run in one transaction so concurrent toggles on the same day serialize
// at the database.
func (s *SQLiteStore) UpsertPrayerField(ctx context.Context, userID string, day, month, year int, prayer models.Prayer, done bool) (*models.PrayerRecord, error) {
	if !prayer.Valid() {
		return nil, fmt.Errorf("unknown prayer %q", prayer)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	row := tx.QueryRowContext(ctx,
		"SELECT "+prayerColumns+" FROM prayers WHERE user_id = ? AND day = ? AND month = ? AND year = ?",
		userID, day, month, year,
	)

	record, err := scanPrayerRecord(row)
	switch {
	case err == sql.ErrNoRows:
		record = &models.PrayerRecord{
			ID:        uuid.New().String(),
			UserID:    userID,
			Day:       day,
			Month:     month,
			Year:      year,
			CreatedAt: now,
			UpdatedAt: now,
		}
		record.Set(prayer, done)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO prayers (id, user_id, day, month, year, fajr, zuhr, asr, maghrib, isha, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			record.ID, record.UserID, record.Day, record.Month, record.Year,
			record.Fajr, record.Zuhr, record.Asr, record.Maghrib, record.Isha,
			record.CreatedAt, record.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert prayer record: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to get prayer record: %w", err)
	default:
		record.Set(prayer, done)
		record.UpdatedAt = now
		_, err = tx.ExecContext(ctx,
			fmt.Sprintf("UPDATE prayers SET %s = ?, updated_at = ? WHERE id = ?", string(prayer)),
			done, record.UpdatedAt, record.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update prayer record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}
