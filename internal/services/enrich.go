package services

import (
	"gorm.io/gorm"

	apperrors "spendtrack/internal/errors"
	"spendtrack/internal/models"
)

// loadCategoryIndex batch-resolves category IDs to full records with a
// single lookup. IDs with no matching category are simply absent from
// the returned map.
func loadCategoryIndex(db *gorm.DB, ids []string) (map[string]models.Category, error) {
	index := make(map[string]models.Category, len(ids))
	if len(ids) == 0 {
		return index, nil
	}

	var categories []models.Category
	if err := db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, c := range categories {
		index[c.ID] = c
	}
	return index, nil
}

// resolveOrDefault maps a category ID to its record, substituting the
// shared Unknown placeholder when the category no longer exists.
func resolveOrDefault(index map[string]models.Category, id string) models.Category {
	if c, ok := index[id]; ok {
		return c
	}
	return models.UnknownCategory()
}

// distinctCategoryIDs collects the unique category IDs of a spending
// set, preserving first-seen order.
func distinctCategoryIDs(spendings []models.Spending) []string {
	seen := make(map[string]bool, len(spendings))
	ids := make([]string, 0, len(spendings))
	for _, s := range spendings {
		if !seen[s.CategoryID] {
			seen[s.CategoryID] = true
			ids = append(ids, s.CategoryID)
		}
	}
	return ids
}
