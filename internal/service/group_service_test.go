package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "salahtrack-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestCreateWithFreshCode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	creator := models.NewUser("creator@example.com", "Creator", "hash")
	if err := store.CreateUser(ctx, creator); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// An existing group already holds the first code the generator will
	// produce.
	taken := &models.Group{Name: "First", InviteCode: "TAKEN123", CreatedBy: creator.ID}
	if err := store.CreateGroup(ctx, taken); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("regenerates on collision", func(t *testing.T) {
		svc := NewGroupService(store, nil, nil)
		codes := []string{"TAKEN123", "TAKEN123", "FRESH456"}
		svc.newCode = func() (string, error) {
			code := codes[0]
			codes = codes[1:]
			return code, nil
		}

		group, err := svc.createWithFreshCode(ctx, "Second", creator.ID)
		if err != nil {
			t.Fatalf("createWithFreshCode failed: %v", err)
		}
		if group.InviteCode != "FRESH456" {
			t.Errorf("expected invite code FRESH456, got %s", group.InviteCode)
		}
		if len(codes) != 0 {
			t.Errorf("expected the generator to be called 3 times, %d codes left", len(codes))
		}
	})

	t.Run("gives up after exhausting attempts", func(t *testing.T) {
		svc := NewGroupService(store, nil, nil)
		calls := 0
		svc.newCode = func() (string, error) {
			calls++
			return "TAKEN123", nil
		}

		_, err := svc.createWithFreshCode(ctx, "Doomed", creator.ID)
		if err == nil {
			t.Fatal("expected an error when every code collides")
		}
		if calls != inviteCodeAttempts {
			t.Errorf("expected %d attempts, got %d", inviteCodeAttempts, calls)
		}
	})
}

func TestNewInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := newInviteCode()
		if err != nil {
			t.Fatalf("newInviteCode failed: %v", err)
		}
		if len(code) != inviteLength {
			t.Fatalf("expected length %d, got %q", inviteLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteAlphabet, r) {
				t.Fatalf("code %q contains %q, outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from 31^8 codes must not collide.
	if len(seen) != 100 {
		t.Errorf("expected 100 distinct codes, got %d", len(seen))
	}
}
