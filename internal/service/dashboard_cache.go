package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/courselab/activity-server-api/internal/dto"
	"github.com/courselab/activity-server-api/internal/repository"
)

// DashboardCache stores rendered instructor dashboards in redis, keyed by the
// instructor's email. Mutating services invalidate the affected emails so a
// dashboard query never serves a pre-mutation view. A nil cache disables
// caching; every method is safe to call on it.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewDashboardCache wraps the redis client. Passing a nil client returns a
// nil cache, which all callers treat as cache-off.
func NewDashboardCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *DashboardCache {
	if client == nil {
		return nil
	}

	return &DashboardCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "dashboard_cache").Logger(),
	}
}

func dashboardCacheKey(email string) string {
	return fmt.Sprintf("dashboard:instructor:%s", email)
}

// Get returns the cached dashboard for the email, if one is stored.
func (c *DashboardCache) Get(ctx context.Context, email string) (dto.DashboardResponse, bool) {
	if c == nil {
		return dto.DashboardResponse{}, false
	}

	cached, err := c.client.Get(ctx, dashboardCacheKey(email)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		return dto.DashboardResponse{}, false
	}

	var response dto.DashboardResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return dto.DashboardResponse{}, false
	}

	return response, true
}

// Set stores the dashboard for the email until the TTL expires or a mutation
// invalidates it.
func (c *DashboardCache) Set(ctx context.Context, email string, response dto.DashboardResponse) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, dashboardCacheKey(email), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

// Invalidate drops the cached dashboards for the given emails. Errors are
// logged, not returned; a failed delete only delays freshness until the TTL.
func (c *DashboardCache) Invalidate(ctx context.Context, emails []string) {
	if c == nil || len(emails) == 0 {
		return
	}

	keys := make([]string, 0, len(emails))
	for _, email := range emails {
		keys = append(keys, dashboardCacheKey(email))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Strs("emails", emails).Msg("failed to invalidate dashboard cache")
	}
}

// invalidateActivityDashboards drops the cached dashboard of every instructor
// holding a grant on the activity.
func invalidateActivityDashboards(ctx context.Context, cache *DashboardCache, grants repository.InstructorGrantRepository, activityID string) {
	if cache == nil {
		return
	}

	list, err := grants.ListByActivity(ctx, activityID)
	if err != nil {
		cache.logger.Warn().Err(err).Str("activity_id", activityID).Msg("failed to resolve instructors for cache invalidation")
		return
	}

	emails := make([]string, 0, len(list))
	for _, grant := range list {
		emails = append(emails, grant.Email)
	}
	cache.Invalidate(ctx, emails)
}
