// Package service implements the HTTP handlers for authentication,
// groups, prayer tracking, and achievements.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"
)

// Clock supplies the current time. Services take a Clock instead of
// calling time.Now so tests can pin "today", which both day gating and
// window aggregation depend on.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// ProgressCache is the cache surface the services use for computed group
// progress. *cache.Cache implements it; a nil value disables caching.
type ProgressCache interface {
	GetJSON(ctx context.Context, key string, v interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// inviteAlphabet omits easily confused characters (0/O, 1/I/L) since
// codes get read aloud and typed.
const (
	inviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	inviteLength   = 8
)

// newInviteCode returns a short random invite code. Uniqueness is
// enforced by the groups table; callers regenerate on a duplicate.
// Bytes above the largest multiple of the alphabet size are rejected so
// every character is equally likely.
func newInviteCode() (string, error) {
	limit := 256 - 256%len(inviteAlphabet)
	code := make([]byte, 0, inviteLength)
	buf := make([]byte, inviteLength)
	for len(code) < inviteLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, inviteAlphabet[int(b)%len(inviteAlphabet)])
			if len(code) == inviteLength {
				break
			}
		}
	}
	return string(code), nil
}
