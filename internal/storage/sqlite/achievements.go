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

// CreateAchievement appends an award. The unique index on
// (user_id, group_id, title, week_key) turns a second award for the same
// week into ErrDuplicate, which the evaluator treats as an already-issued
// no-op.
func (s *SQLiteStore) CreateAchievement(ctx context.Context, a *models.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO achievements (id, user_id, group_id, title, description, week_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.GroupID, a.Title, a.Description, a.WeekKey, a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("achievement %s/%s %s %s: %w", a.UserID, a.GroupID, a.Title, a.WeekKey, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to insert achievement: %w", err)
	}

	return nil
}

const achievementColumns = "id, user_id, group_id, title, description, week_key, created_at"

func collectAchievements(rows *sql.Rows) ([]*models.Achievement, error) {
	var achievements []*models.Achievement
	for rows.Next() {
		a := &models.Achievement{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.GroupID, &a.Title, &a.Description, &a.WeekKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate achievements: %w", err)
	}
	return achievements, nil
}

// ListAchievementsByGroup returns all awards issued in a group, newest first.
func (s *SQLiteStore) ListAchievementsByGroup(ctx context.Context, groupID string) ([]*models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+achievementColumns+" FROM achievements WHERE group_id = ? ORDER BY created_at DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements by group: %w", err)
	}
	defer rows.Close()

	return collectAchievements(rows)
}

// ListAchievementsByUser returns a user's awards within one group, newest
// first.
func (s *SQLiteStore) ListAchievementsByUser(ctx context.Context, userID, groupID string) ([]*models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+achievementColumns+" FROM achievements WHERE user_id = ? AND group_id = ? ORDER BY created_at DESC",
		userID, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements by user: %w", err)
	}
	defer rows.Close()

	return collectAchievements(rows)
}
