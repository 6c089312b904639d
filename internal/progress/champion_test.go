package progress

import (
	"testing"
	"time"
)

func TestTopPerformer(t *testing.T) {
	tests := []struct {
		name     string
		scores   []MemberScore
		wantID   string
		wantPct  int
		wantNone bool
	}{
		{
			name:     "empty scores",
			scores:   nil,
			wantNone: true,
		},
		{
			name: "highest percent wins",
			scores: []MemberScore{
				{UserID: "u-alice", Percent: 80},
				{UserID: "u-bob", Percent: 95},
			},
			wantID:  "u-bob",
			wantPct: 95,
		},
		{
			name: "tie breaks to lowest user id",
			scores: []MemberScore{
				{UserID: "u-carol", Percent: 70},
				{UserID: "u-bob", Percent: 70},
				{UserID: "u-dave", Percent: 70},
			},
			wantID:  "u-bob",
			wantPct: 70,
		},
		{
			name: "tie break is order independent",
			scores: []MemberScore{
				{UserID: "u-bob", Percent: 70},
				{UserID: "u-carol", Percent: 70},
			},
			wantID:  "u-bob",
			wantPct: 70,
		},
		{
			name: "single member",
			scores: []MemberScore{
				{UserID: "u-solo", Percent: 40},
			},
			wantID:  "u-solo",
			wantPct: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TopPerformer(tt.scores)
			if tt.wantNone {
				if ok {
					t.Fatalf("TopPerformer() returned %+v, want none", got)
				}
				return
			}
			if !ok {
				t.Fatal("TopPerformer() returned none, want a winner")
			}
			if got.UserID != tt.wantID {
				t.Errorf("winner = %q, want %q", got.UserID, tt.wantID)
			}
			if got.Percent != tt.wantPct {
				t.Errorf("percent = %d, want %d", got.Percent, tt.wantPct)
			}
		})
	}
}

func TestWeekKey(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "mid year",
			t:    time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC),
			want: "2026-W36",
		},
		{
			name: "same iso week across days",
			t:    time.Date(2026, time.September, 6, 23, 0, 0, 0, time.UTC),
			want: "2026-W36",
		},
		{
			name: "january belonging to previous iso year",
			t:    time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: "2026-W53",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekKey(tt.t); got != tt.want {
				t.Errorf("WeekKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChampionDescription(t *testing.T) {
	if got := ChampionDescription(95); got != "Completed 95% of prayers this week" {
		t.Errorf("ChampionDescription() = %q", got)
	}
}
