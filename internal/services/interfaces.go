package services

import (
	"context"
	"time"

	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
	"spendtrack/internal/period"
	"spendtrack/internal/stats"
)

// UserServicer defines the interface for user business logic.
type UserServicer interface {
	Register(email, password, name string) (*models.User, error)
	Authenticate(email, password string) (*models.User, error)
	GetUserByID(userID string) (*models.User, error)
}

// CategoryServicer defines the interface for category business logic.
type CategoryServicer interface {
	CreateCategory(userID, name, color string) (*models.Category, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name, color string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// SpendingServicer defines the interface for spending CRUD and listing.
type SpendingServicer interface {
	CreateSpending(ctx context.Context, userID string, input SpendingInput) (*SpendingWithCategory, error)
	UpdateSpending(ctx context.Context, userID, spendingID string, input SpendingUpdate) (*SpendingWithCategory, error)
	DeleteSpending(ctx context.Context, userID, spendingID string) error
	ListSpendings(ctx context.Context, userID string, filter ListFilter) ([]SpendingWithCategory, error)
	InvalidateUserCache(ctx context.Context, userID string)
}

// StatsServicer defines the interface for aggregated spending reports.
type StatsServicer interface {
	PieStats(ctx context.Context, userID string, p period.TimePeriod, endRef time.Time) (*stats.PieStats, error)
	BarStats(ctx context.Context, userID string, p period.TimePeriod, endRef time.Time) ([]stats.BarChartRow, error)
}
