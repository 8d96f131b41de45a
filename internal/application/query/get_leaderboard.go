package query

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/skillchain-hub/skillchain-backend/internal/domain/notification"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/shared"
	"github.com/skillchain-hub/skillchain-backend/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Top users by points with badge count as the tie-breaker.
// Served from the Redis snapshot when available.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultLeaderboardLimit is the page size when none is given.
const DefaultLeaderboardLimit = 10

// MaxLeaderboardLimit caps the requested page size.
const MaxLeaderboardLimit = 100

// GetLeaderboardQuery contains the leaderboard parameters.
type GetLeaderboardQuery struct {
	// Limit is the number of entries (defaults to DefaultLeaderboardLimit).
	Limit int
}

// Validate validates the query and applies defaults.
func (q *GetLeaderboardQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("get_leaderboard: limit cannot be negative")
	}
	if q.Limit == 0 {
		q.Limit = DefaultLeaderboardLimit
	}
	if q.Limit > MaxLeaderboardLimit {
		q.Limit = MaxLeaderboardLimit
	}
	return nil
}

// LeaderboardEntryDTO is one leaderboard row.
type LeaderboardEntryDTO struct {
	// Rank is the 1-based position.
	Rank int `json:"rank"`

	// UserID is the ranked user.
	UserID string `json:"user_id"`

	// Username is the user's login name.
	Username string `json:"username"`

	// FullName is the display name.
	FullName string `json:"full_name"`

	// Points is the current balance.
	Points int `json:"points"`

	// StreakCount is the current activity streak.
	StreakCount int `json:"streak_count"`

	// BadgeCount is the number of badges held.
	BadgeCount int `json:"badge_count"`
}

// GetLeaderboardResult contains the leaderboard page.
type GetLeaderboardResult struct {
	// Entries are the ranked rows.
	Entries []LeaderboardEntryDTO `json:"entries"`

	// FromCache reports whether the snapshot came from the cache.
	FromCache bool `json:"from_cache"`

	// GeneratedAt is when the result was built.
	GeneratedAt time.Time `json:"generated_at"`
}

// LeaderboardCache is the read-side cache port. A nil implementation
// disables caching.
type LeaderboardCache interface {
	// GetTop returns the cached snapshot or an error on miss.
	GetTop(ctx context.Context) ([]LeaderboardEntryDTO, error)

	// SetTop stores the snapshot with the configured TTL.
	SetTop(ctx context.Context, entries []LeaderboardEntryDTO) error
}

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	users  user.Directory
	badges notification.Badges
	cache  LeaderboardCache
}

// NewGetLeaderboardHandler creates a new GetLeaderboardHandler.
// cache may be nil when Redis is disabled.
func NewGetLeaderboardHandler(users user.Directory, badges notification.Badges, cache LeaderboardCache) *GetLeaderboardHandler {
	return &GetLeaderboardHandler{
		users:  users,
		badges: badges,
		cache:  cache,
	}
}

// Handle executes the leaderboard query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if cached, err := h.cache.GetTop(ctx); err == nil && len(cached) > 0 {
			return &GetLeaderboardResult{
				Entries:     trimEntries(cached, q.Limit),
				FromCache:   true,
				GeneratedAt: time.Now().UTC(),
			}, nil
		}
	}

	entries, err := h.buildEntries(ctx, q.Limit)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		// Cache refresh failures do not fail the read.
		_ = h.cache.SetTop(ctx, entries)
	}

	return &GetLeaderboardResult{
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildEntries ranks the top users from the directory.
func (h *GetLeaderboardHandler) buildEntries(ctx context.Context, limit int) ([]LeaderboardEntryDTO, error) {
	users, err := h.users.ListTopByPoints(ctx, limit)
	if err != nil {
		return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrNotFound, "failed to load top users", err)
	}

	entries := make([]LeaderboardEntryDTO, 0, len(users))
	for _, u := range users {
		badgeCount, err := h.badges.CountByUser(ctx, u.ID)
		if err != nil {
			return nil, shared.WrapError("query", "GetLeaderboard", shared.ErrNotFound, "failed to count badges", err)
		}

		entries = append(entries, LeaderboardEntryDTO{
			UserID:      u.ID,
			Username:    u.Username.String(),
			FullName:    u.FullName,
			Points:      int(u.Points),
			StreakCount: u.StreakCount,
			BadgeCount:  badgeCount,
		})
	}

	// Points descending, badge count breaks ties.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].BadgeCount > entries[j].BadgeCount
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

func trimEntries(entries []LeaderboardEntryDTO, limit int) []LeaderboardEntryDTO {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
