package routes

import (
	"context"
	"net/http"
	"testing"

	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/progress"
)

// seedWeek marks `full` complete days ending August 14th plus `extra`
// prayers on the 15th, all inside the pinned 7-day window (Aug 9-15).
func seedWeek(t *testing.T, ts *testServer, userID string, full, extra int) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < full; i++ {
		day := 14 - i
		for _, p := range models.Prayers {
			if _, err := ts.store.UpsertPrayerField(ctx, userID, day, 8, 2026, p, true); err != nil {
				t.Fatalf("UpsertPrayerField failed: %v", err)
			}
		}
	}
	for _, p := range models.Prayers[:extra] {
		if _, err := ts.store.UpsertPrayerField(ctx, userID, 15, 8, 2026, p, true); err != nil {
			t.Fatalf("UpsertPrayerField failed: %v", err)
		}
	}
}

type evaluateData struct {
	Awarded     bool `json:"awarded"`
	Achievement struct {
		UserID      string `json:"user_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Week        string `json:"week"`
	} `json:"achievement"`
}

func TestWeeklyChampionEvaluation(t *testing.T) {
	ts := newTestServer(t)

	ownerToken, ownerID := ts.registerUser(t, "imam@example.com", "Imam")
	groupID, inviteCode := ts.createGroup(t, ownerToken, "Weekly Circle")

	memberToken, memberID := ts.registerUser(t, "devoted@example.com", "Devoted")
	if status, _ := ts.request(t, http.MethodPost, "/api/v1/invites/"+inviteCode+"/join", memberToken, nil); status != http.StatusOK {
		t.Fatal("join failed")
	}

	// Owner: 5 full days + 3 extra = 28/35 = 80%.
	// Member: 6 full days + 3 extra = 33/35 = 94%.
	seedWeek(t, ts, ownerID, 5, 3)
	seedWeek(t, ts, memberID, 6, 3)

	t.Run("top performer above threshold is awarded", func(t *testing.T) {
		status, envelope := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", ownerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("evaluate returned %d: %s", status, envelope.Message)
		}

		var data evaluateData
		decodeData(t, envelope, &data)
		if !data.Awarded {
			t.Fatal("expected an award")
		}
		if data.Achievement.UserID != memberID {
			t.Errorf("expected winner %s, got %s", memberID, data.Achievement.UserID)
		}
		if data.Achievement.Title != progress.ChampionTitle {
			t.Errorf("unexpected title %q", data.Achievement.Title)
		}
		if data.Achievement.Description != "Completed 94% of prayers this week" {
			t.Errorf("unexpected description %q", data.Achievement.Description)
		}
		if data.Achievement.Week != progress.WeekKey(testNow) {
			t.Errorf("expected week %s, got %s", progress.WeekKey(testNow), data.Achievement.Week)
		}
	})

	t.Run("second evaluation in the same week is a no-op", func(t *testing.T) {
		status, envelope := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", ownerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("evaluate returned %d", status)
		}

		var data evaluateData
		decodeData(t, envelope, &data)
		if data.Awarded {
			t.Error("expected no second award within the same week")
		}

		achievements, err := ts.store.ListAchievementsByGroup(context.Background(), groupID)
		if err != nil {
			t.Fatalf("ListAchievementsByGroup failed: %v", err)
		}
		if len(achievements) != 1 {
			t.Errorf("expected exactly 1 achievement, got %d", len(achievements))
		}
	})

	t.Run("non admin member cannot trigger evaluation", func(t *testing.T) {
		status, envelope := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", memberToken, nil)
		if status != http.StatusForbidden {
			t.Errorf("expected 403, got %d: %s", status, envelope.Message)
		}
	})

	t.Run("non member cannot trigger evaluation", func(t *testing.T) {
		strangerToken, _ := ts.registerUser(t, "passerby@example.com", "Passerby")

		status, _ := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", strangerToken, nil)
		if status != http.StatusForbidden {
			t.Errorf("expected 403, got %d", status)
		}
	})

	t.Run("award shows up in the group detail", func(t *testing.T) {
		status, envelope := ts.request(t, http.MethodGet, "/api/v1/groups/"+groupID, memberToken, nil)
		if status != http.StatusOK {
			t.Fatalf("detail returned %d", status)
		}

		var data struct {
			Members []struct {
				UserID       string   `json:"user_id"`
				Achievements []string `json:"achievements"`
			} `json:"members"`
		}
		decodeData(t, envelope, &data)

		for _, m := range data.Members {
			if m.UserID != memberID {
				continue
			}
			if len(m.Achievements) != 1 || m.Achievements[0] != progress.ChampionTitle {
				t.Errorf("expected champion achievement, got %v", m.Achievements)
			}
			return
		}
		t.Error("winner missing from group detail")
	})
}

func TestEvaluationBelowThreshold(t *testing.T) {
	ts := newTestServer(t)

	ownerToken, ownerID := ts.registerUser(t, "sparse@example.com", "Sparse")
	groupID, _ := ts.createGroup(t, ownerToken, "Quiet Group")

	// 3 of 35 = 9%, well under the 50% threshold.
	seedWeek(t, ts, ownerID, 0, 3)

	status, envelope := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", ownerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("evaluate returned %d", status)
	}

	var data evaluateData
	decodeData(t, envelope, &data)
	if data.Awarded {
		t.Error("expected no award below the threshold")
	}

	achievements, err := ts.store.ListAchievementsByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListAchievementsByGroup failed: %v", err)
	}
	if len(achievements) != 0 {
		t.Errorf("expected no achievements, got %d", len(achievements))
	}
}

func TestAwardDropsCachedGroupDetail(t *testing.T) {
	progressCache := newFakeCache()
	ts := newTestServerWithOpts(t, 0, progressCache)

	ownerToken, ownerID := ts.registerUser(t, "steady@example.com", "Steady")
	groupID, _ := ts.createGroup(t, ownerToken, "Steady Circle")

	// 6 full days + 3 extra = 33/35 = 94%, above the threshold.
	seedWeek(t, ts, ownerID, 6, 3)

	ownerAchievements := func() []string {
		status, envelope := ts.request(t, http.MethodGet, "/api/v1/groups/"+groupID, ownerToken, nil)
		if status != http.StatusOK {
			t.Fatalf("detail returned %d: %s", status, envelope.Message)
		}
		var data struct {
			Members []struct {
				UserID       string   `json:"user_id"`
				Achievements []string `json:"achievements"`
			} `json:"members"`
		}
		decodeData(t, envelope, &data)
		for _, m := range data.Members {
			if m.UserID == ownerID {
				return m.Achievements
			}
		}
		t.Fatal("owner missing from group detail")
		return nil
	}

	// Prime the cache before any award exists.
	if got := ownerAchievements(); len(got) != 0 {
		t.Fatalf("expected no achievements before evaluation, got %v", got)
	}
	if progressCache.len() == 0 {
		t.Fatal("expected the detail view to be cached")
	}

	status, envelope := ts.request(t, http.MethodPost, "/api/v1/groups/"+groupID+"/evaluate", ownerToken, nil)
	if status != http.StatusOK {
		t.Fatalf("evaluate returned %d", status)
	}
	var data evaluateData
	decodeData(t, envelope, &data)
	if !data.Awarded {
		t.Fatal("expected an award")
	}

	// The award must drop the cached entry so the next read includes it.
	got := ownerAchievements()
	if len(got) != 1 || got[0] != progress.ChampionTitle {
		t.Errorf("expected champion achievement after evaluation, got %v", got)
	}
}

func TestEvaluateAllSweepsEveryGroup(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	aToken, aID := ts.registerUser(t, "sweep-a@example.com", "Sweep A")
	aGroup, _ := ts.createGroup(t, aToken, "Group A")
	seedWeek(t, ts, aID, 6, 3)

	bToken, bID := ts.registerUser(t, "sweep-b@example.com", "Sweep B")
	bGroup, _ := ts.createGroup(t, bToken, "Group B")
	seedWeek(t, ts, bID, 4, 0)

	ts.achievements.EvaluateAll(ctx)

	aAwards, err := ts.store.ListAchievementsByGroup(ctx, aGroup)
	if err != nil {
		t.Fatalf("ListAchievementsByGroup failed: %v", err)
	}
	if len(aAwards) != 1 {
		t.Errorf("expected 1 award in group A, got %d", len(aAwards))
	}

	// 20/35 = 57%, above threshold as well.
	bAwards, err := ts.store.ListAchievementsByGroup(ctx, bGroup)
	if err != nil {
		t.Fatalf("ListAchievementsByGroup failed: %v", err)
	}
	if len(bAwards) != 1 {
		t.Errorf("expected 1 award in group B, got %d", len(bAwards))
	}
}
