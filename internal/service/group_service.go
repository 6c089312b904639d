package service

import (
	"context"
	"errors"
	"fmt"
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

// inviteCodeAttempts bounds regeneration when a fresh code collides with
// an existing group.
const inviteCodeAttempts = 5

// memberFanout caps the number of concurrent per-member progress loads in
// the group detail view.
const memberFanout = 8

// GroupService implements the group and invite endpoints.
type GroupService struct {
	store   storage.Store
	cache   ProgressCache
	clock   Clock
	newCode func() (string, error)
}

// NewGroupService creates a new GroupService with the given storage
// backend. cache may be nil.
func NewGroupService(store storage.Store, cache ProgressCache, clock Clock) *GroupService {
	return &GroupService{
		store:   store,
		cache:   cache,
		clock:   orNow(clock),
		newCode: newInviteCode,
	}
}

type groupView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  int64  `json:"created_at"`
}

func toGroupView(g *models.Group) groupView {
	return groupView{
		ID:         g.ID,
		Name:       g.Name,
		InviteCode: g.InviteCode,
		CreatedBy:  g.CreatedBy,
		CreatedAt:  g.CreatedAt,
	}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create creates a new group with a fresh invite code; the creator joins
// as admin.
func (s *GroupService) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Error(c, http.StatusBadRequest, httpapi.CodeValidation, "group name is required")
		return
	}

	userID := middleware.UserID(c)
	slog.Info("CreateGroup request", "name", req.Name, "user_id", userID)

	group, err := s.createWithFreshCode(c.Request.Context(), req.Name, userID)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to create group")
		return
	}

	slog.Info("Group created", "group_id", group.ID, "invite_code", group.InviteCode)
	httpapi.OK(c, gin.H{"group": toGroupView(group)})
}

// createWithFreshCode inserts the group, regenerating the invite code on a
// uniqueness collision.
func (s *GroupService) createWithFreshCode(ctx context.Context, name, creatorID string) (*models.Group, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		group := &models.Group{
			Name:       name,
			InviteCode: code,
			CreatedBy:  creatorID,
		}
		err = s.store.CreateGroup(ctx, group)
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Warn("invite code collision, regenerating", "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		return group, nil
	}
	return nil, fmt.Errorf("exhausted %d invite code attempts", inviteCodeAttempts)
}

// List returns the groups the authenticated user belongs to.
func (s *GroupService) List(c *gin.Context) {
	userID := middleware.UserID(c)

	groups, err := s.store.ListGroupsByUser(c.Request.Context(), userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to list groups")
		return
	}

	views := make([]groupView, len(groups))
	for i, g := range groups {
		views[i] = toGroupView(g)
	}
	httpapi.OK(c, gin.H{"groups": views})
}

type memberView struct {
	UserID          string                  `json:"user_id"`
	DisplayName     string                  `json:"display_name"`
	AvatarURL       string                  `json:"avatar_url,omitempty"`
	Role            string                  `json:"role"`
	MonthlyProgress int                     `json:"monthly_progress"`
	WeeklyProgress  int                     `json:"weekly_progress"`
	PrayerStats     progress.PerPrayerStats `json:"prayer_stats"`
	Achievements    []string                `json:"achievements"`
}

type groupDetailView struct {
	Group   groupView    `json:"group"`
	Members []memberView `json:"members"`
}

// Get returns the group with per-member progress, prayer stats, and
// achievements. Members only.
func (s *GroupService) Get(c *gin.Context) {
	groupID := c.Param("id")
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusNotFound, httpapi.CodeNotFound, "group not found")
			return
		}
		slog.Error("GetGroup failed", "group_id", groupID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load group")
		return
	}

	if _, err := s.store.GetMembership(ctx, groupID, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusForbidden, httpapi.CodeForbidden, "not a member of this group")
			return
		}
		slog.Error("GetMembership failed", "group_id", groupID, "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load group")
		return
	}

	members, err := s.memberSummaries(ctx, group)
	if err != nil {
		slog.Error("member summaries failed", "group_id", groupID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to load group members")
		return
	}

	httpapi.OK(c, groupDetailView{Group: toGroupView(group), Members: members})
}

// progressCachePrefix keys every cached summary of one group so a single
// prefix invalidation drops them all.
func progressCachePrefix(groupID string) string {
	return "group_progress:" + groupID
}

// progressCacheKey includes the calendar date so entries roll over at
// midnight without explicit expiry.
func progressCacheKey(groupID string, now time.Time) string {
	return fmt.Sprintf("%s:%s", progressCachePrefix(groupID), now.Format("2006-01-02"))
}

// InvalidateProgress drops cached summaries for every group the user
// belongs to. Called after a prayer toggle.
func (s *GroupService) InvalidateProgress(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	groups, err := s.store.ListGroupsByUser(ctx, userID)
	if err != nil {
		return
	}
	for _, g := range groups {
		s.cache.InvalidatePrefix(ctx, progressCachePrefix(g.ID))
	}
}

// memberSummaries loads each member's progress concurrently, bounded by
// memberFanout, then joins the results in membership order.
func (s *GroupService) memberSummaries(ctx context.Context, group *models.Group) ([]memberView, error) {
	now := s.clock()

	if s.cache != nil {
		var cached []memberView
		if s.cache.GetJSON(ctx, progressCacheKey(group.ID, now), &cached) {
			return cached, nil
		}
	}

	memberships, err := s.store.ListMemberships(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(memberships))
	for i, m := range memberships {
		ids[i] = m.UserID
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]memberView, len(memberships))
	errs := make([]error, len(memberships))
	sem := make(chan struct{}, memberFanout)
	var wg sync.WaitGroup

	for i, m := range memberships {
		wg.Add(1)
		go func(i int, m *models.Membership) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			views[i], errs[i] = s.memberSummary(ctx, m, users[m.UserID], group.ID, now)
		}(i, m)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, progressCacheKey(group.ID, now), views, 0)
	}
	return views, nil
}

func (s *GroupService) memberSummary(ctx context.Context, m *models.Membership, user *models.User, groupID string, now time.Time) (memberView, error) {
	view := memberView{
		UserID:       m.UserID,
		Role:         m.Role,
		Achievements: []string{},
	}
	if user != nil {
		view.DisplayName = user.DisplayName
		view.AvatarURL = user.AvatarURL
	}

	monthRecords, err := s.store.ListPrayerRecordsByMonth(ctx, m.UserID, int(now.Month()), now.Year())
	if err != nil {
		return view, err
	}
	view.MonthlyProgress = progress.MonthToDate(monthRecords, now)
	view.PrayerStats = progress.PerPrayer(monthRecords, now)

	weekRecords, err := s.store.ListPrayerRecordsInRange(ctx, m.UserID, now.AddDate(0, 0, -6), now)
	if err != nil {
		return view, err
	}
	view.WeeklyProgress = progress.WindowCompletion(weekRecords, now, 7)

	achievements, err := s.store.ListAchievementsByUser(ctx, m.UserID, groupID)
	if err != nil {
		return view, err
	}
	for _, a := range achievements {
		view.Achievements = append(view.Achievements, a.Title)
	}

	return view, nil
}

// ResolveInvite looks up the group behind an invite code. Public: the
// invite landing page shows the group name before the visitor signs in.
func (s *GroupService) ResolveInvite(c *gin.Context) {
	code := c.Param("code")

	group, err := s.store.GetGroupByInviteCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusNotFound, httpapi.CodeNotFound, "invite is invalid or has expired")
			return
		}
		slog.Error("ResolveInvite failed", "code", code, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to resolve invite")
		return
	}

	httpapi.OK(c, gin.H{"group_id": group.ID, "name": group.Name})
}

// Join adds the authenticated user to the group behind the invite code.
// Idempotent: an existing membership is treated as success and routes to
// the same group.
func (s *GroupService) Join(c *gin.Context) {
	code := c.Param("code")
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpapi.Error(c, http.StatusNotFound, httpapi.CodeNotFound, "invite is invalid or has expired")
			return
		}
		slog.Error("Join failed resolving invite", "code", code, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to join group")
		return
	}

	if _, err := s.store.GetMembership(ctx, group.ID, userID); err == nil {
		httpapi.OK(c, gin.H{"group_id": group.ID, "already_member": true})
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Error("Join membership check failed", "group_id", group.ID, "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to join group")
		return
	}

	err = s.store.AddMembership(ctx, &models.Membership{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.RoleMember,
	})
	if err != nil && !errors.Is(err, storage.ErrDuplicate) {
		// A concurrent join inserting the same pair is still a success.
		slog.Error("Join failed", "group_id", group.ID, "user_id", userID, "error", err)
		httpapi.Error(c, http.StatusInternalServerError, httpapi.CodeInternal, "failed to join group")
		return
	}

	// The cached member list no longer includes the joiner.
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, progressCachePrefix(group.ID))
	}

	slog.Info("User joined group", "group_id", group.ID, "user_id", userID)
	httpapi.OK(c, gin.H{"group_id": group.ID, "already_member": false})
}
