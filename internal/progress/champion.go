package progress

import (
	"fmt"
	"time"
)

const (
	// ChampionTitle is the weekly award issued to the group's top performer.
	ChampionTitle = "Weekly Prayer Champion"

	// ChampionThreshold is the minimum weekly completion percentage that
	// qualifies for the award.
	ChampionThreshold = 50
)

// MemberScore pairs a group member with their weekly completion percentage.
type MemberScore struct {
	UserID  string
	Percent int
}

// TopPerformer selects the member with the strictly greatest weekly
// percentage. Ties are broken by the lexicographically lowest user ID so
// the result does not depend on input order. Returns false when scores is
// empty.
func TopPerformer(scores []MemberScore) (MemberScore, bool) {
	if len(scores) == 0 {
		return MemberScore{}, false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Percent > best.Percent || (s.Percent == best.Percent && s.UserID < best.UserID) {
			best = s
		}
	}
	return best, true
}

// ChampionDescription renders the award description shown on the member's
// achievement list.
func ChampionDescription(pct int) string {
	return fmt.Sprintf("Completed %d%% of prayers this week", pct)
}

// WeekKey returns the ISO year-week identifier for t, e.g. "2026-W35".
// Awards carry their week key so a unique index on
// (user, group, title, week) makes issuance idempotent across repeated
// evaluator runs.
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
