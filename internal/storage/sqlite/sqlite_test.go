package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "salahtrack-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func createTestUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser and GetUserByEmail round trip", func(t *testing.T) {
		user := createTestUser(t, store, "alice@example.com", "Alice")

		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected user, got nil")
		}
		if got.ID != user.ID {
			t.Errorf("Expected ID %s, got %s", user.ID, got.ID)
		}
		if got.DisplayName != "Alice" {
			t.Errorf("Expected display name Alice, got %s", got.DisplayName)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil user, got %+v", got)
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		createTestUser(t, store, "dup@example.com", "First")

		err := store.CreateUser(ctx, models.NewUser("dup@example.com", "Second", "hash"))
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for unknown ID", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GetUsersByIDs omits missing users", func(t *testing.T) {
		u1 := createTestUser(t, store, "batch1@example.com", "Batch One")
		u2 := createTestUser(t, store, "batch2@example.com", "Batch Two")

		users, err := store.GetUsersByIDs(ctx, []string{u1.ID, u2.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("Expected 2 users, got %d", len(users))
		}
		if users[u1.ID].DisplayName != "Batch One" {
			t.Errorf("Expected Batch One, got %s", users[u1.ID].DisplayName)
		}
	})

	t.Run("CreateGroup adds creator as admin", func(t *testing.T) {
		creator := createTestUser(t, store, "creator@example.com", "Creator")

		group := &models.Group{
			Name:       "Fajr Club",
			InviteCode: "FAJRCLUB",
			CreatedBy:  creator.ID,
		}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}

		m, err := store.GetMembership(ctx, group.ID, creator.ID)
		if err != nil {
			t.Fatalf("GetMembership failed: %v", err)
		}
		if m.Role != models.RoleAdmin {
			t.Errorf("Expected role admin, got %s", m.Role)
		}
	})

	t.Run("CreateGroup rejects duplicate invite code", func(t *testing.T) {
		creator := createTestUser(t, store, "creator2@example.com", "Creator Two")

		first := &models.Group{Name: "One", InviteCode: "SAMECODE", CreatedBy: creator.ID}
		if err := store.CreateGroup(ctx, first); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		second := &models.Group{Name: "Two", InviteCode: "SAMECODE", CreatedBy: creator.ID}
		err := store.CreateGroup(ctx, second)
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("GetGroupByInviteCode resolves and misses", func(t *testing.T) {
		creator := createTestUser(t, store, "creator3@example.com", "Creator Three")

		group := &models.Group{Name: "Resolvable", InviteCode: "RESOLVE1", CreatedBy: creator.ID}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		got, err := store.GetGroupByInviteCode(ctx, "RESOLVE1")
		if err != nil {
			t.Fatalf("GetGroupByInviteCode failed: %v", err)
		}
		if got.ID != group.ID {
			t.Errorf("Expected group %s, got %s", group.ID, got.ID)
		}

		_, err = store.GetGroupByInviteCode(ctx, "NOSUCHCODE")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddMembership rejects duplicate pair", func(t *testing.T) {
		creator := createTestUser(t, store, "creator4@example.com", "Creator Four")
		joiner := createTestUser(t, store, "joiner@example.com", "Joiner")

		group := &models.Group{Name: "Joinable", InviteCode: "JOINABLE", CreatedBy: creator.ID}
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		m := &models.Membership{GroupID: group.ID, UserID: joiner.ID, Role: models.RoleMember}
		if err := store.AddMembership(ctx, m); err != nil {
			t.Fatalf("AddMembership failed: %v", err)
		}

		err := store.AddMembership(ctx, &models.Membership{GroupID: group.ID, UserID: joiner.ID})
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}

		members, err := store.ListMemberships(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMemberships failed: %v", err)
		}
		if len(members) != 2 {
			t.Errorf("Expected 2 members, got %d", len(members))
		}
	})

	t.Run("ListGroupsByUser returns only joined groups", func(t *testing.T) {
		member := createTestUser(t, store, "member@example.com", "Member")
		outsider := createTestUser(t, store, "outsider@example.com", "Outsider")

		mine := &models.Group{Name: "Mine", InviteCode: "MINE0001", CreatedBy: member.ID}
		if err := store.CreateGroup(ctx, mine); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		theirs := &models.Group{Name: "Theirs", InviteCode: "THEIRS01", CreatedBy: outsider.ID}
		if err := store.CreateGroup(ctx, theirs); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		groups, err := store.ListGroupsByUser(ctx, member.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 1 {
			t.Fatalf("Expected 1 group, got %d", len(groups))
		}
		if groups[0].Name != "Mine" {
			t.Errorf("Expected group Mine, got %s", groups[0].Name)
		}
	})
}

func TestSQLiteStorePrayers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "prayer@example.com", "Prayer")

	t.Run("UpsertPrayerField inserts with other flags false", func(t *testing.T) {
		record, err := store.UpsertPrayerField(ctx, user.ID, 15, 8, 2026, models.Fajr, true)
		if err != nil {
			t.Fatalf("UpsertPrayerField failed: %v", err)
		}
		if record.ID == "" {
			t.Error("Expected record ID to be generated")
		}
		if !record.Fajr {
			t.Error("Expected fajr true")
		}
		if record.Zuhr || record.Asr || record.Maghrib || record.Isha {
			t.Errorf("Expected other prayers false, got %+v", record)
		}
	})

	t.Run("UpsertPrayerField updates a single column", func(t *testing.T) {
		first, err := store.UpsertPrayerField(ctx, user.ID, 15, 8, 2026, models.Isha, true)
		if err != nil {
			t.Fatalf("UpsertPrayerField failed: %v", err)
		}
		if !first.Fajr || !first.Isha {
			t.Errorf("Expected fajr and isha true, got %+v", first)
		}

		// Toggling one prayer off must not touch the others.
		second, err := store.UpsertPrayerField(ctx, user.ID, 15, 8, 2026, models.Fajr, false)
		if err != nil {
			t.Fatalf("UpsertPrayerField failed: %v", err)
		}
		if second.Fajr {
			t.Error("Expected fajr false after toggle off")
		}
		if !second.Isha {
			t.Error("Expected isha to remain true")
		}
		if second.ID != first.ID {
			t.Errorf("Expected same record, got %s and %s", first.ID, second.ID)
		}
	})

	t.Run("UpsertPrayerField rejects unknown prayer", func(t *testing.T) {
		_, err := store.UpsertPrayerField(ctx, user.ID, 15, 8, 2026, models.Prayer("tea"), true)
		if err == nil {
			t.Error("Expected error for unknown prayer")
		}
	})

	t.Run("GetPrayerRecord returns ErrNotFound for missing day", func(t *testing.T) {
		_, err := store.GetPrayerRecord(ctx, user.ID, 1, 1, 2020)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListPrayerRecordsByMonth filters by month", func(t *testing.T) {
		if _, err := store.UpsertPrayerField(ctx, user.ID, 1, 7, 2026, models.Zuhr, true); err != nil {
			t.Fatalf("UpsertPrayerField failed: %v", err)
		}

		records, err := store.ListPrayerRecordsByMonth(ctx, user.ID, 8, 2026)
		if err != nil {
			t.Fatalf("ListPrayerRecordsByMonth failed: %v", err)
		}
		for _, r := range records {
			if r.Month != 8 || r.Year != 2026 {
				t.Errorf("Unexpected record for %04d-%02d", r.Year, r.Month)
			}
		}
		if len(records) != 1 {
			t.Errorf("Expected 1 record for August, got %d", len(records))
		}
	})

	t.Run("ListPrayerRecordsInRange spans month boundary", func(t *testing.T) {
		other := createTestUser(t, store, "range@example.com", "Range")

		days := []struct{ day, month int }{{30, 7}, {31, 7}, {1, 8}, {5, 8}}
		for _, d := range days {
			if _, err := store.UpsertPrayerField(ctx, other.ID, d.day, d.month, 2026, models.Maghrib, true); err != nil {
				t.Fatalf("UpsertPrayerField failed: %v", err)
			}
		}

		from := date(2026, 7, 31)
		to := date(2026, 8, 2)
		records, err := store.ListPrayerRecordsInRange(ctx, other.ID, from, to)
		if err != nil {
			t.Fatalf("ListPrayerRecordsInRange failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("Expected 2 records in range, got %d", len(records))
		}
		if records[0].Day != 31 || records[0].Month != 7 {
			t.Errorf("Expected first record 07-31, got %02d-%02d", records[0].Month, records[0].Day)
		}
		if records[1].Day != 1 || records[1].Month != 8 {
			t.Errorf("Expected second record 08-01, got %02d-%02d", records[1].Month, records[1].Day)
		}
	})
}

func TestSQLiteStoreAchievements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "winner@example.com", "Winner")
	group := &models.Group{Name: "Champions", InviteCode: "CHAMPS01", CreatedBy: user.ID}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	award := func(weekKey string) error {
		return store.CreateAchievement(ctx, &models.Achievement{
			UserID:      user.ID,
			GroupID:     group.ID,
			Title:       "Weekly Prayer Champion",
			Description: "Completed 95% of prayers this week",
			WeekKey:     weekKey,
		})
	}

	t.Run("CreateAchievement generates ID", func(t *testing.T) {
		a := &models.Achievement{
			UserID:      user.ID,
			GroupID:     group.ID,
			Title:       "Weekly Prayer Champion",
			Description: "Completed 80% of prayers this week",
			WeekKey:     "2026-W34",
		}
		if err := store.CreateAchievement(ctx, a); err != nil {
			t.Fatalf("CreateAchievement failed: %v", err)
		}
		if a.ID == "" {
			t.Error("Expected achievement ID to be generated")
		}
	})

	t.Run("CreateAchievement rejects duplicate week", func(t *testing.T) {
		if err := award("2026-W35"); err != nil {
			t.Fatalf("CreateAchievement failed: %v", err)
		}
		err := award("2026-W35")
		if !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("CreateAchievement allows a new week", func(t *testing.T) {
		if err := award("2026-W36"); err != nil {
			t.Errorf("CreateAchievement failed for new week: %v", err)
		}
	})

	t.Run("ListAchievementsByUser scopes to group", func(t *testing.T) {
		achievements, err := store.ListAchievementsByUser(ctx, user.ID, group.ID)
		if err != nil {
			t.Fatalf("ListAchievementsByUser failed: %v", err)
		}
		if len(achievements) != 3 {
			t.Errorf("Expected 3 achievements, got %d", len(achievements))
		}

		none, err := store.ListAchievementsByUser(ctx, user.ID, "other-group")
		if err != nil {
			t.Fatalf("ListAchievementsByUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no achievements in other group, got %d", len(none))
		}
	})
}
