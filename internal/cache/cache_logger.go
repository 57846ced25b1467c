package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateTutorCache removes a tutor's profile entry plus any cached
// listing pages that may contain it.
func InvalidateTutorCache(ctx context.Context, cm *CacheManager, tutorID string) {
	SafeDelete(ctx, cm.Tutor, fmt.Sprintf("id:%s", tutorID))
	SafeInvalidatePattern(ctx, cm.Tutor, "list:*")
}

// InvalidateApplicationCache removes an application's cached entries.
// Admin listings are never cached, only the per-entity reads and the
// stats aggregate need eviction.
func InvalidateApplicationCache(ctx context.Context, cm *CacheManager, applicationID uint, userID string) {
	SafeDelete(ctx, cm.Application,
		fmt.Sprintf("id:%d", applicationID),
		fmt.Sprintf("user:%s", userID))
	SafeInvalidatePattern(ctx, cm.Application, "stats:*")
}

// InvalidateDashboardCache drops cached dashboard aggregates for a user.
func InvalidateDashboardCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeInvalidatePattern(ctx, cm.Dashboard, fmt.Sprintf("%s:*", userID))
}
