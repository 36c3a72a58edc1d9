package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"spendtrack/internal/cache"
	"spendtrack/internal/events"
	"spendtrack/internal/handlers"
	"spendtrack/internal/logger"
	"spendtrack/internal/middleware"
	"spendtrack/internal/models"
	"spendtrack/internal/services"
	"spendtrack/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Cache  cache.Store
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Category{},
		&models.Spending{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated
// in-memory SQLite and an in-process cache.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	store := cache.NewMemoryStore()

	// Services
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	spendingService := services.NewSpendingService(db, store, events.NewNopPublisher(), time.Minute)
	statsService := services.NewStatsService(db, store, time.Minute)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	spendingHandler := handlers.NewSpendingHandler(spendingService)
	statsHandler := handlers.NewStatsHandler(statsService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	categories := protected.Group("/category")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	spendings := protected.Group("/spending")
	spendings.POST("", spendingHandler.CreateSpending)
	spendings.GET("", spendingHandler.ListSpendings)
	spendings.PUT("/:id", spendingHandler.UpdateSpending)
	spendings.DELETE("/:id", spendingHandler.DeleteSpending)
	spendings.GET("/stats/pie", statsHandler.GetPieStats)
	spendings.GET("/stats/bars", statsHandler.GetBarStats)

	return &testApp{DB: db, Cache: store, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (token, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"name":"Test User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(string)
}

// createCategory creates a category and returns its ID.
func (app *testApp) createCategory(t *testing.T, token, name, color string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"color":%q}`, name, color)
	rec := app.request("POST", "/api/v1/category", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	cat := parseJSON(t, rec)["category"].(map[string]interface{})
	return cat["id"].(string)
}

// createSpending records a spending and returns its ID.
func (app *testApp) createSpending(t *testing.T, token, categoryID, label string, amount float64, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"categoryId":%q,"label":%q,"amount":%g,"date":%q}`, categoryID, label, amount, date)
	rec := app.request("POST", "/api/v1/spending", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create spending failed: %d %s", rec.Code, rec.Body.String())
	}
	spending := parseJSON(t, rec)["spending"].(map[string]interface{})
	return spending["id"].(string)
}
