package cache

import (
	"fmt"
	"strconv"
	"time"

	"spendtrack/internal/period"
)

// userSpendingPrefix prefixes every cached spending query for a user.
// Invalidation deletes by this prefix, so listing keys and stats keys
// for the same user must share it.
const userSpendingPrefix = "user-spendings:"

// UserPrefix returns the invalidation prefix covering every cached
// spending query of one user.
func UserPrefix(userID string) string {
	return userSpendingPrefix + userID
}

// ListingKey builds the cache key for a spending listing query. Optional
// filters contribute a segment only when set, so differently-filtered
// listings never collide.
func ListingKey(userID, categoryID string, start, end *time.Time, limit, offset int) string {
	key := UserPrefix(userID)
	if categoryID != "" {
		key += "-" + categoryID
	}
	if start != nil {
		key += "-" + strconv.FormatInt(start.UnixMilli(), 10)
	}
	if end != nil {
		key += "-" + strconv.FormatInt(end.UnixMilli(), 10)
	}
	return fmt.Sprintf("%s-%d-%d", key, limit, offset)
}

// StatsKey builds the cache key for a statistics query. chartType is
// "pie" or "bars".
func StatsKey(userID, chartType string, p period.TimePeriod, end *time.Time) string {
	key := fmt.Sprintf("%s%s:%s:-%s", userSpendingPrefix, userID, chartType, p)
	if end != nil {
		key += "-" + strconv.FormatInt(end.UnixMilli(), 10)
	}
	return key
}

// RateLimitKey builds the per-client key for the request rate limiter.
// Rate limiter keys live outside the user-spendings namespace so cache
// invalidation never resets request counters.
func RateLimitKey(clientIP string) string {
	return "rate-limiter:" + clientIP
}
