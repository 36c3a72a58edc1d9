package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"spendtrack/internal/cache"
	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/events"
	"spendtrack/internal/logger"
	"spendtrack/internal/models"
)

// SpendingInput carries the fields of a new spending record.
type SpendingInput struct {
	CategoryID  string
	Label       string
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

// SpendingUpdate carries optional replacement fields for an existing
// spending record; nil fields are left untouched.
type SpendingUpdate struct {
	CategoryID  *string
	Label       *string
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
}

// ListFilter narrows a spending listing.
type ListFilter struct {
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// Defaults fills in the default page size when the caller gave none.
func (f *ListFilter) Defaults() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// SpendingWithCategory is a spending record enriched with its resolved
// category (or the Unknown placeholder).
type SpendingWithCategory struct {
	models.Spending
	Category models.Category `json:"category"`
}

// spendingService handles spending CRUD, cached listings, and the cache
// invalidation triggered by every mutation.
type spendingService struct {
	db       *gorm.DB
	cache    cache.Store
	events   events.Publisher
	cacheTTL time.Duration
}

// NewSpendingService creates a new SpendingServicer.
func NewSpendingService(db *gorm.DB, store cache.Store, publisher events.Publisher, cacheTTL time.Duration) SpendingServicer {
	return &spendingService{db: db, cache: store, events: publisher, cacheTTL: cacheTTL}
}

// CreateSpending stores a new spending record, invalidates the user's
// cached queries, and publishes a mutation event.
func (s *spendingService) CreateSpending(ctx context.Context, userID string, input SpendingInput) (*SpendingWithCategory, error) {
	if input.Label == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "label is required")
	}
	if input.CategoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "categoryId is required")
	}
	if input.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}
	if input.Date.IsZero() {
		input.Date = time.Now()
	}

	spending := &models.Spending{
		UserID:      userID,
		CategoryID:  input.CategoryID,
		Label:       input.Label,
		Description: input.Description,
		Amount:      input.Amount,
		Date:        input.Date,
	}
	if err := s.db.WithContext(ctx).Create(spending).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.InvalidateUserCache(ctx, userID)
	s.publish(ctx, events.ActionCreated, spending.ID, userID)

	return s.withCategory(spending)
}

// UpdateSpending applies the given fields to a spending record owned by
// userID.
func (s *spendingService) UpdateSpending(ctx context.Context, userID, spendingID string, input SpendingUpdate) (*SpendingWithCategory, error) {
	spending, err := s.getOwned(ctx, userID, spendingID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.CategoryID != nil {
		updates["category_id"] = *input.CategoryID
	}
	if input.Label != nil {
		if *input.Label == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "label must not be empty")
		}
		updates["label"] = *input.Label
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Amount != nil {
		if input.Amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = *input.Amount
	}
	if input.Date != nil {
		updates["date"] = *input.Date
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(spending).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	s.InvalidateUserCache(ctx, userID)
	s.publish(ctx, events.ActionUpdated, spending.ID, userID)

	return s.withCategory(spending)
}

// DeleteSpending removes a spending record owned by userID.
func (s *spendingService) DeleteSpending(ctx context.Context, userID, spendingID string) error {
	spending, err := s.getOwned(ctx, userID, spendingID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(spending).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.InvalidateUserCache(ctx, userID)
	s.publish(ctx, events.ActionDeleted, spendingID, userID)
	return nil
}

// ListSpendings returns a user's spending records, newest first,
// enriched with category metadata. Results are served from the cache
// when a prior identical listing is still live.
func (s *spendingService) ListSpendings(ctx context.Context, userID string, filter ListFilter) ([]SpendingWithCategory, error) {
	filter.Defaults()
	key := cache.ListingKey(userID, filter.CategoryID, filter.StartDate, filter.EndDate, filter.Limit, filter.Offset)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var cached []SpendingWithCategory
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		logger.Get().Warnw("discarding undecodable cache entry", "key", key)
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}

	var spendings []models.Spending
	if err := query.Order("date DESC, id DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&spendings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	index, err := loadCategoryIndex(s.db.WithContext(ctx), distinctCategoryIDs(spendings))
	if err != nil {
		return nil, err
	}

	result := make([]SpendingWithCategory, 0, len(spendings))
	for _, spending := range spendings {
		result = append(result, SpendingWithCategory{
			Spending: spending,
			Category: resolveOrDefault(index, spending.CategoryID),
		})
	}

	s.cacheSet(ctx, key, result)
	return result, nil
}

// InvalidateUserCache deletes every cached listing and stats entry for
// the user. Runs to completion before the caller responds, so a client
// that saw a mutation succeed never reads a pre-mutation cache entry.
// Cache failures are logged, not surfaced: the worst case is a stale
// entry that expires with its TTL.
func (s *spendingService) InvalidateUserCache(ctx context.Context, userID string) {
	if err := s.cache.DeleteByPrefix(ctx, cache.UserPrefix(userID)); err != nil {
		logger.Get().Errorw("cache invalidation failed", "user_id", userID, "error", err)
	}
}

func (s *spendingService) getOwned(ctx context.Context, userID, spendingID string) (*models.Spending, error) {
	var spending models.Spending
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", spendingID, userID).First(&spending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSpendingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &spending, nil
}

func (s *spendingService) withCategory(spending *models.Spending) (*SpendingWithCategory, error) {
	index, err := loadCategoryIndex(s.db, []string{spending.CategoryID})
	if err != nil {
		return nil, err
	}
	return &SpendingWithCategory{
		Spending: *spending,
		Category: resolveOrDefault(index, spending.CategoryID),
	}, nil
}

func (s *spendingService) cacheGet(ctx context.Context, key string) (string, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		// Degrade to recompute when the cache is unreachable.
		logger.Get().Warnw("cache read failed", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

func (s *spendingService) cacheSet(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Get().Warnw("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, string(data), s.cacheTTL); err != nil {
		logger.Get().Warnw("cache write failed", "key", key, "error", err)
	}
}

func (s *spendingService) publish(ctx context.Context, action events.Action, spendingID, userID string) {
	event := events.NewSpendingEvent(action, spendingID, userID)
	if err := s.events.PublishSpendingEvent(ctx, event); err != nil {
		logger.Get().Warnw("event publish failed", "action", action, "spending_id", spendingID, "error", err)
	}
}
