package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ywahab/salahtrack/internal/httpapi"
	"github.com/ywahab/salahtrack/internal/middleware"
	"github.com/ywahab/salahtrack/internal/models"
	"github.com/ywahab/salahtrack/internal/progress"
	"github.com/ywahab/salahtrack/internal/storage"
)

// AchievementService evaluates weekly top performers and issues awards.
type AchievementService struct {
	store storage.Store
	cache ProgressCache
	clock Clock
}

// NewAchievementService creates a new AchievementService. cache may be
// nil.
func NewAchievementService(store storage.Store, cache ProgressCache, clock Clock) *AchievementService {
	return &AchievementService{store: store, cache: cache, clock: orNow(clock)}
}

// EvaluateGroup computes every member's 7-day completion, selects the top
// performer, and issues a "Weekly Prayer Champion" award when the winner
// is at or above the threshold. The unique (user, group, title, week)
// index makes reissuance within the same week a no-op, so the method is
// safe to call any number of times per week. Returns the award that was
// issued, or nil when nothing changed.
func (s *AchievementService) EvaluateGroup(ctx context.Context, groupID string) (*models.Achievement, error) {
	now := s.clock()

	memberships, err := s.store.ListMemberships(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	scores := make([]progress.MemberScore, len(memberships))
	errs := make([]error, len(memberships))
	sem := make(chan struct{}, memberFanout)
	var wg sync.WaitGroup

	for i, m := range memberships {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := s.store.ListPrayerRecordsInRange(ctx, userID, now.AddDate(0, 0, -6), now)
			if err != nil {
				errs[i] = err
				return
			}
			scores[i] = progress.MemberScore{
				UserID:  userID,
				Percent: progress.WindowCompletion(records, now, 7),
			}
		}(i, m.UserID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	top, ok := progress.TopPerformer(scores)
	if !ok || top.Percent < progress.ChampionThreshold {
		return nil, nil
	}

	award := &models.Achievement{
		UserID:      top.UserID,
		GroupID:     groupID,
		Title:       progress.ChampionTitle,
		Description: progress.ChampionDescription(top.Percent),
		WeekKey:     progress.WeekKey(now),
		CreatedAt:   now.Unix(),
	}
	err = s.store.CreateAchievement(ctx, award)
	if errors.Is(err, storage.ErrDuplicate) {
		// Already awarded this week.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Cached summaries predate the new award.
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, progressCachePrefix(groupID))
	}

	slog.Info("Weekly champion awarded",
		"group_id", groupID,
		"user_id", top.UserID,
		"percent", top.Percent,
		"week", award.WeekKey,
	)
	return award, nil
}

// EvaluateAll runs the evaluator over every group. Per-group failures are
// logged and do not stop the sweep.
func (s *AchievementService) EvaluateAll(ctx context.Context) {
	ids, err := s.store.ListGroupIDs(ctx)
	if err != nil {
		slog.Error("Evaluator sweep failed listing groups", "error", err)
		return
	}
	for _, id := range ids {
		if _, err := s.EvaluateGroup(ctx, id); err != nil {
			slog.Error("Evaluator failed for group", "group_id", id, "error", err)
		}
	}
}

// StartScheduler sweeps all groups on the given interval until ctx is
// cancelled. The conceptual cadence is weekly; running more often is
// harmless because issuance is idempotent per week.
func (s *AchievementService) StartScheduler(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvaluateAll(ctx)
			}
		}
	}()
}

// Evaluate triggers an evaluator run for one group. Restricted to group
// admins: role is otherwise stored without enforcement, but a manual
// sweep trigger is an operational action.
func (s *AchievementService) Evaluate(c *gin.Context) {
	groupID := c.Param("id")
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	membership, err := s.store.GetMembership(ctx, groupID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusForbidden, httpapi.CodeForbidden, "not a member of this group")
			return
		}
		slog.Error("Evaluate membership check failed", "group_id", groupID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to evaluate group")
		return
	}
	if membership.Role != models.RoleAdmin {
		httpapi.Error(c, http.StatusForbidden, httpapi.CodeForbidden, "admin role required")
		return
	}

	award, err := s.EvaluateGroup(ctx, groupID)
	if err != nil {
		slog.Error("Evaluate failed", "group_id", groupID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to evaluate group")
		return
	}

	if award == nil {
		httpapi.OK(c, gin.H{"awarded": false})
		return
	}
	httpapi.OK(c, gin.H{
		"awarded": true,
		"achievement": gin.H{
			"user_id":     award.UserID,
			"title":       award.Title,
			"description": award.Description,
			"week":        award.WeekKey,
		},
	})
}
