package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"spendtrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryNamed creates a category with the given name.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Color:  "#336699",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSpending creates a spending with the given amount on the given date.
func CreateTestSpending(t *testing.T, db *gorm.DB, userID, categoryID string, amount decimal.Decimal, date time.Time) *models.Spending {
	t.Helper()

	spending := &models.Spending{
		UserID:     userID,
		CategoryID: categoryID,
		Label:      fmt.Sprintf("Test Spending %d", nextID()),
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(spending).Error; err != nil {
		t.Fatalf("failed to create test spending: %v", err)
	}
	return spending
}
