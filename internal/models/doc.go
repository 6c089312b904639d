// Package models defines the core domain models for salahtrack.
//
// # Models
//
//   - User: registered account (email + password login)
//   - Group: prayer group with a shareable invite code
//   - Membership: a user's membership in a group (admin or member)
//   - PrayerRecord: one row per user per calendar day holding the five
//     daily prayer completion flags
//   - Achievement: an award issued to a group member (append-only)
//
// # Design Principles
//
//  1. Relationships use ID strings instead of pointers to avoid circular
//     references between models.
//  2. Timestamps are Unix seconds. Calendar positions (day/month/year of a
//     PrayerRecord) are plain ints because a prayer day is a calendar day
//     in the user's locale, not an instant.
//  3. The storage layer assigns IDs and timestamps when they are zero, so
//     callers can construct models with only the domain fields set.
package models
