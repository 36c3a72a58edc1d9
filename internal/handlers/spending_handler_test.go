package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/services"
)

// --- mock spending service ---

type mockSpendingService struct {
	createSpendingFn func(ctx context.Context, userID string, input services.SpendingInput) (*services.SpendingWithCategory, error)
	updateSpendingFn func(ctx context.Context, userID, spendingID string, input services.SpendingUpdate) (*services.SpendingWithCategory, error)
	deleteSpendingFn func(ctx context.Context, userID, spendingID string) error
	listSpendingsFn  func(ctx context.Context, userID string, filter services.ListFilter) ([]services.SpendingWithCategory, error)
}

func (m *mockSpendingService) CreateSpending(ctx context.Context, userID string, input services.SpendingInput) (*services.SpendingWithCategory, error) {
	if m.createSpendingFn != nil {
		return m.createSpendingFn(ctx, userID, input)
	}
	return &services.SpendingWithCategory{}, nil
}

func (m *mockSpendingService) UpdateSpending(ctx context.Context, userID, spendingID string, input services.SpendingUpdate) (*services.SpendingWithCategory, error) {
	if m.updateSpendingFn != nil {
		return m.updateSpendingFn(ctx, userID, spendingID, input)
	}
	return &services.SpendingWithCategory{}, nil
}

func (m *mockSpendingService) DeleteSpending(ctx context.Context, userID, spendingID string) error {
	if m.deleteSpendingFn != nil {
		return m.deleteSpendingFn(ctx, userID, spendingID)
	}
	return nil
}

func (m *mockSpendingService) ListSpendings(ctx context.Context, userID string, filter services.ListFilter) ([]services.SpendingWithCategory, error) {
	if m.listSpendingsFn != nil {
		return m.listSpendingsFn(ctx, userID, filter)
	}
	return []services.SpendingWithCategory{}, nil
}

func (m *mockSpendingService) InvalidateUserCache(ctx context.Context, userID string) {}

var _ services.SpendingServicer = (*mockSpendingService)(nil)

func setupSpendingRouter(handler *SpendingHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/spending", handler.CreateSpending)
	auth.GET("/spending", handler.ListSpendings)
	auth.PUT("/spending/:id", handler.UpdateSpending)
	auth.DELETE("/spending/:id", handler.DeleteSpending)
	return r
}

func TestSpendingHandler_CreateSpending(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockSpendingService{
			createSpendingFn: func(_ context.Context, userID string, input services.SpendingInput) (*services.SpendingWithCategory, error) {
				return &services.SpendingWithCategory{
					Spending: models.Spending{
						Base:       models.Base{ID: "sp-1"},
						UserID:     userID,
						CategoryID: input.CategoryID,
						Label:      input.Label,
						Amount:     input.Amount,
						Date:       input.Date,
					},
					Category: models.Category{Base: models.Base{ID: input.CategoryID}, Name: "Food"},
				}, nil
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "POST", "/spending",
			`{"categoryId":"cat-1","label":"Groceries","amount":42.5,"date":"2024-03-05"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		spending := parseJSON(t, rec)["spending"].(map[string]interface{})
		if spending["label"] != "Groceries" {
			t.Errorf("expected label Groceries, got %v", spending["label"])
		}
		category := spending["category"].(map[string]interface{})
		if category["name"] != "Food" {
			t.Errorf("expected enriched category, got %v", category)
		}
	})

	t.Run("returns 400 on missing label", func(t *testing.T) {
		r := setupSpendingRouter(NewSpendingHandler(&mockSpendingService{}))

		rec := doRequest(r, "POST", "/spending", `{"categoryId":"cat-1","amount":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed date", func(t *testing.T) {
		r := setupSpendingRouter(NewSpendingHandler(&mockSpendingService{}))

		rec := doRequest(r, "POST", "/spending",
			`{"categoryId":"cat-1","label":"Lunch","amount":10,"date":"05/03/2024"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSpendingHandler_ListSpendings(t *testing.T) {
	t.Run("passes filters to the service", func(t *testing.T) {
		var got services.ListFilter
		svc := &mockSpendingService{
			listSpendingsFn: func(_ context.Context, _ string, filter services.ListFilter) ([]services.SpendingWithCategory, error) {
				got = filter
				return []services.SpendingWithCategory{}, nil
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "GET", "/spending?categoryId=cat-1&startDate=2024-03-01&endDate=2024-03-31&limit=10&offset=20", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.CategoryID != "cat-1" || got.Limit != 10 || got.Offset != 20 {
			t.Errorf("unexpected filter: %+v", got)
		}
		if got.StartDate == nil || !got.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected start date: %v", got.StartDate)
		}
		if got.EndDate == nil || !got.EndDate.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end date: %v", got.EndDate)
		}
	})

	t.Run("returns 400 on bad limit", func(t *testing.T) {
		r := setupSpendingRouter(NewSpendingHandler(&mockSpendingService{}))

		rec := doRequest(r, "GET", "/spending?limit=abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestSpendingHandler_UpdateSpending(t *testing.T) {
	t.Run("only sends present fields", func(t *testing.T) {
		var got services.SpendingUpdate
		svc := &mockSpendingService{
			updateSpendingFn: func(_ context.Context, _, spendingID string, input services.SpendingUpdate) (*services.SpendingWithCategory, error) {
				got = input
				return &services.SpendingWithCategory{}, nil
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "PUT", "/spending/sp-1", `{"amount":25}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.NewFromInt(25)) {
			t.Errorf("expected amount 25, got %v", got.Amount)
		}
		if got.Label != nil || got.CategoryID != nil || got.Date != nil {
			t.Errorf("expected absent fields to stay nil: %+v", got)
		}
	})

	t.Run("returns 404 when not owned", func(t *testing.T) {
		svc := &mockSpendingService{
			updateSpendingFn: func(_ context.Context, _, _ string, _ services.SpendingUpdate) (*services.SpendingWithCategory, error) {
				return nil, apperrors.ErrSpendingNotFound
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "PUT", "/spending/sp-1", `{"label":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SPENDING_NOT_FOUND")
	})
}

func TestSpendingHandler_DeleteSpending(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deletedID string
		svc := &mockSpendingService{
			deleteSpendingFn: func(_ context.Context, _, spendingID string) error {
				deletedID = spendingID
				return nil
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "DELETE", "/spending/sp-1", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deletedID != "sp-1" {
			t.Errorf("expected sp-1 to be deleted, got %q", deletedID)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockSpendingService{
			deleteSpendingFn: func(_ context.Context, _, _ string) error {
				return apperrors.ErrSpendingNotFound
			},
		}
		r := setupSpendingRouter(NewSpendingHandler(svc))

		rec := doRequest(r, "DELETE", "/spending/sp-404", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
