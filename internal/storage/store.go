// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ywahab/salahtrack/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (invite code, membership pair, weekly award).
	ErrDuplicate = errors.New("already exists")
)

// Store defines the interface for salahtrack storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateUser persists a new user. Returns ErrDuplicate when the
	// email is already registered.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email. Returns nil, nil when no
	// user exists (callers treat absence as a normal outcome during
	// registration).
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID. Returns ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by ID. Missing users
	// are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateGroup persists a group and the creator's admin membership in
	// one transaction. Returns ErrDuplicate when the invite code
	// collides with an existing group.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound when absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupByInviteCode resolves an invite code to its group.
	// Returns ErrNotFound when no group carries the code.
	GetGroupByInviteCode(ctx context.Context, code string) (*models.Group, error)

	// ListGroupsByUser returns the groups the user is a member of,
	// newest first.
	ListGroupsByUser(ctx context.Context, userID string) ([]*models.Group, error)

	// ListGroupIDs returns the IDs of all groups. Used by the periodic
	// achievement evaluator.
	ListGroupIDs(ctx context.Context) ([]string, error)

	// GetMembership retrieves the membership for (group, user).
	// Returns ErrNotFound when the user is not a member.
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)

	// AddMembership inserts a membership row. Returns ErrDuplicate when
	// the (group, user) pair already exists.
	AddMembership(ctx context.Context, m *models.Membership) error

	// ListMemberships returns all memberships of a group, oldest first.
	ListMemberships(ctx context.Context, groupID string) ([]*models.Membership, error)

	// GetPrayerRecord retrieves the record for (user, day, month, year).
	// Returns ErrNotFound when no record exists for that day.
	GetPrayerRecord(ctx context.Context, userID string, day, month, year int) (*models.PrayerRecord, error)

	// ListPrayerRecordsByMonth returns the user's records for one
	// calendar month.
	ListPrayerRecordsByMonth(ctx context.Context, userID string, month, year int) ([]*models.PrayerRecord, error)

	// ListPrayerRecordsInRange returns the user's records whose calendar
	// date falls within [from, to], inclusive, at day granularity.
	ListPrayerRecordsInRange(ctx context.Context, userID string, from, to time.Time) ([]*models.PrayerRecord, error)

	// UpsertPrayerField sets a single prayer flag for (user, day, month,
	// year): updates the one field when a record exists, otherwise
	// inserts a record with the remaining four flags false. Returns the
	// stored record.
	UpsertPrayerField(ctx context.Context, userID string, day, month, year int, prayer models.Prayer, done bool) (*models.PrayerRecord, error)

	// CreateAchievement appends an award. Returns ErrDuplicate when an
	// award with the same (user, group, title, week) already exists.
	CreateAchievement(ctx context.Context, a *models.Achievement) error

	// ListAchievementsByGroup returns all awards issued in a group,
	// newest first.
	ListAchievementsByGroup(ctx context.Context, groupID string) ([]*models.Achievement, error)

	// ListAchievementsByUser returns a user's awards within one group,
	// newest first.
	ListAchievementsByUser(ctx context.Context, userID, groupID string) ([]*models.Achievement, error)

	// Close releases any resources held by the store.
	Close() error
}
