package models

// Achievement represents an award issued to a group member. Achievements
// are append-only; issuance is deduplicated by (user, group, title, week)
// through a unique index in storage, so running the evaluator twice in the
// same week never produces a second award.
type Achievement struct {
	// ID is the unique identifier for the achievement (UUID format).
	ID string

	// UserID is the user the achievement was awarded to.
	UserID string

	// GroupID is the group the achievement was earned in.
	GroupID string

	// Title is the award name, e.g. "Weekly Prayer Champion".
	Title string

	// Description is human-readable detail, e.g. the completion percentage.
	Description string

	// WeekKey identifies the ISO week the award belongs to ("2026-W35").
	// Part of the uniqueness key that makes issuance idempotent.
	WeekKey string

	// CreatedAt is the Unix timestamp when the award was issued.
	CreatedAt int64
}
