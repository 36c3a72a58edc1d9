package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"spendtrack/internal/cache"
	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/logger"
	"spendtrack/internal/models"
	"spendtrack/internal/period"
	"spendtrack/internal/stats"
)

// statsService computes aggregated spending reports with a read-through
// cache in front of the store. Concurrent misses on the same key are
// collapsed to a single computation.
type statsService struct {
	db       *gorm.DB
	cache    cache.Store
	cacheTTL time.Duration
	group    singleflight.Group
}

// NewStatsService creates a new StatsServicer.
func NewStatsService(db *gorm.DB, store cache.Store, cacheTTL time.Duration) StatsServicer {
	return &statsService{db: db, cache: store, cacheTTL: cacheTTL}
}

// PieStats returns the per-category totals of the period window
// containing endRef, ordered by descending amount. A store outage yields
// a zeroed result, never an error: the dashboard stays available.
func (s *statsService) PieStats(ctx context.Context, userID string, p period.TimePeriod, endRef time.Time) (*stats.PieStats, error) {
	rng := period.RangeFor(p, endRef)
	key := cache.StatsKey(userID, "pie", p, &rng.End)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var cached stats.PieStats
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return &cached, nil
		}
		logger.Get().Warnw("discarding undecodable cache entry", "key", key)
	}

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := s.AggregateByCategory(ctx, userID, rng)
		if err != nil {
			logger.Get().Warnw("spending aggregation degraded to empty result",
				"user_id", userID, "period", p, "error", err)
			return stats.EmptyPieStats(), nil
		}
		if err := s.enrich(ctx, result.AmountPerCategory); err != nil {
			logger.Get().Warnw("category enrichment failed", "user_id", userID, "error", err)
		}
		s.cacheSet(ctx, key, result)
		return result, nil
	})
	return v.(*stats.PieStats), nil
}

// BarStats returns per-bucket-per-category totals for the period window
// containing endRef, pivoted into flat rows for the bar chart.
func (s *statsService) BarStats(ctx context.Context, userID string, p period.TimePeriod, endRef time.Time) ([]stats.BarChartRow, error) {
	rng := period.RangeFor(p, endRef)
	key := cache.StatsKey(userID, "bars", p, &rng.End)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var cached []stats.BarChartRow
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		logger.Get().Warnw("discarding undecodable cache entry", "key", key)
	}

	v, _, _ := s.group.Do(key, func() (interface{}, error) {
		buckets, err := s.AggregateByBuckets(ctx, userID, p, rng)
		if err != nil {
			logger.Get().Warnw("spending aggregation degraded to empty result",
				"user_id", userID, "period", p, "error", err)
			return []stats.BarChartRow{}, nil
		}
		rows := stats.ShapeForBarChart(buckets)
		s.cacheSet(ctx, key, rows)
		return rows, nil
	})
	return v.([]stats.BarChartRow), nil
}

// AggregateByCategory computes per-category sums and counts over the
// range in one pass. Records whose category was deleted keep their
// dangling reference; enrichment later substitutes the placeholder.
func (s *statsService) AggregateByCategory(ctx context.Context, userID string, rng period.DateRange) (*stats.PieStats, error) {
	spendings, err := s.fetchRange(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	result := stats.EmptyPieStats()
	byCategory := make(map[string]*stats.CategoryTotal)
	for _, spending := range spendings {
		ct, ok := byCategory[spending.CategoryID]
		if !ok {
			ct = &stats.CategoryTotal{
				Category:    stats.CategoryRef{ID: spending.CategoryID},
				TotalAmount: decimal.Zero,
			}
			byCategory[spending.CategoryID] = ct
		}
		ct.TotalAmount = ct.TotalAmount.Add(spending.Amount)
		ct.TotalCount++
		result.TotalAmount = result.TotalAmount.Add(spending.Amount)
		result.TotalCount++
	}

	for _, ct := range byCategory {
		result.AmountPerCategory = append(result.AmountPerCategory, *ct)
	}
	sortCategoryTotals(result.AmountPerCategory)
	return result, nil
}

// AggregateByBuckets partitions the range's records into time buckets,
// then by category within each bucket. Buckets come back in ascending
// date order.
func (s *statsService) AggregateByBuckets(ctx context.Context, userID string, p period.TimePeriod, rng period.DateRange) ([]stats.BucketStats, error) {
	spendings, err := s.fetchRange(ctx, userID, rng)
	if err != nil {
		return nil, err
	}

	byBucket := make(map[time.Time]*stats.BucketStats)
	perCategory := make(map[time.Time]map[string]*stats.CategoryTotal)
	for _, spending := range spendings {
		bucketTime := period.BucketKey(p, spending.Date)
		bucket, ok := byBucket[bucketTime]
		if !ok {
			bucket = &stats.BucketStats{
				Time:        bucketTime,
				Date:        period.BucketLabel(p, bucketTime),
				TotalAmount: decimal.Zero,
			}
			byBucket[bucketTime] = bucket
			perCategory[bucketTime] = make(map[string]*stats.CategoryTotal)
		}

		ct, ok := perCategory[bucketTime][spending.CategoryID]
		if !ok {
			ct = &stats.CategoryTotal{
				Category:    stats.CategoryRef{ID: spending.CategoryID},
				TotalAmount: decimal.Zero,
			}
			perCategory[bucketTime][spending.CategoryID] = ct
		}

		ct.TotalAmount = ct.TotalAmount.Add(spending.Amount)
		ct.TotalCount++
		bucket.TotalAmount = bucket.TotalAmount.Add(spending.Amount)
		bucket.TotalCount++
	}

	buckets := make([]stats.BucketStats, 0, len(byBucket))
	for bucketTime, bucket := range byBucket {
		for _, ct := range perCategory[bucketTime] {
			bucket.AmountPerCategory = append(bucket.AmountPerCategory, *ct)
		}
		sortCategoryTotals(bucket.AmountPerCategory)
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Time.Before(buckets[j].Time)
	})
	return buckets, nil
}

// fetchRange loads a user's spending records whose date falls inside the
// range, inclusive on both ends.
func (s *statsService) fetchRange(ctx context.Context, userID string, rng period.DateRange) ([]models.Spending, error) {
	var spendings []models.Spending
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, rng.Start, rng.End).
		Order("date ASC, id ASC").
		Find(&spendings).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return spendings, nil
}

// enrich resolves the bare category references of an aggregation result
// to full records, substituting the Unknown placeholder for categories
// that no longer exist.
func (s *statsService) enrich(ctx context.Context, totals []stats.CategoryTotal) error {
	ids := make([]string, 0, len(totals))
	for _, ct := range totals {
		ids = append(ids, ct.Category.ID)
	}

	index, err := loadCategoryIndex(s.db.WithContext(ctx), ids)
	if err != nil {
		return err
	}

	for i := range totals {
		category := resolveOrDefault(index, totals[i].Category.ID)
		totals[i].Category = stats.CategoryRef{
			ID:    category.ID,
			Name:  category.Name,
			Color: category.Color,
		}
	}
	return nil
}

// sortCategoryTotals orders totals by descending amount. Ties break on
// category ID so repeated aggregations of unchanged data are identical.
func sortCategoryTotals(totals []stats.CategoryTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		if !totals[i].TotalAmount.Equal(totals[j].TotalAmount) {
			return totals[i].TotalAmount.GreaterThan(totals[j].TotalAmount)
		}
		return totals[i].Category.ID < totals[j].Category.ID
	})
}

func (s *statsService) cacheGet(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		// Degrade to recompute when the cache is unreachable.
		logger.Get().Warnw("cache read failed", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

func (s *statsService) cacheSet(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warnw("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, string(data), s.cacheTTL); err != nil {
		logger.Get().Warnw("cache write failed", "key", key, "error", err)
	}
}
