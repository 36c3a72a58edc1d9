package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
	"spendtrack/internal/pagination"
	"spendtrack/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn    func(userID, name, color string) (*models.Category, error)
	getUserCategoriesFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.Category, error)
	updateCategoryFn    func(userID, categoryID, name, color string) (*models.Category, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID, name, color string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name, color string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name, color)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID("user-1"))
	auth.POST("/category", handler.CreateCategory)
	auth.GET("/category", handler.GetUserCategories)
	auth.PUT("/category/:id", handler.UpdateCategory)
	auth.DELETE("/category/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(_, name, color string) (*models.Category, error) {
				return &models.Category{Base: models.Base{ID: "cat-1"}, Name: name, Color: color}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "POST", "/category", `{"name":"Food","color":"#FF0000"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["name"] != "Food" {
			t.Errorf("expected Food, got %v", cat["name"])
		}
	})

	t.Run("returns 400 on invalid color", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/category", `{"name":"Food","color":"red"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}))

		rec := doRequest(r, "POST", "/category", `{"color":"#FF0000"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	svc := &mockCategoryService{
		getUserCategoriesFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
			resp := pagination.NewPageResponse([]models.Category{
				{Base: models.Base{ID: "cat-1"}, Name: "Food"},
			}, page.Page, page.PageSize, 1)
			return &resp, nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc))

	rec := doRequest(r, "GET", "/category?page=1&page_size=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"] != float64(1) {
		t.Errorf("expected 1 total item, got %v", result["total_items"])
	}
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("returns 404 when not owned", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _, _, _ string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc))

		rec := doRequest(r, "PUT", "/category/cat-404", `{"name":"Renamed"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	var deletedID string
	svc := &mockCategoryService{
		deleteCategoryFn: func(_, categoryID string) error {
			deletedID = categoryID
			return nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(svc))

	rec := doRequest(r, "DELETE", "/category/cat-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if deletedID != "cat-1" {
		t.Errorf("expected cat-1 to be deleted, got %q", deletedID)
	}
}
