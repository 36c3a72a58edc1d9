package models

// UnknownCategoryID is the identifier reported for spendings whose
// category has been deleted.
const UnknownCategoryID = "-1"

// Category represents a user-defined spending category.
type Category struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `json:"color"`
}

// UnknownCategory returns the placeholder substituted when a spending
// references a category that no longer exists. Every call site must use
// the same placeholder so deleted-category spending renders consistently.
func UnknownCategory() Category {
	return Category{
		Base:  Base{ID: UnknownCategoryID},
		Name:  "Unknown",
		Color: "#a8a7a7",
	}
}
