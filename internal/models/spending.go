package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Spending represents a single spending record. CategoryID is a soft
// reference: the category may be deleted afterwards, in which case reads
// substitute UnknownCategory.
type Spending struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index" json:"userId"`
	CategoryID  string          `gorm:"not null;index" json:"categoryId"`
	Label       string          `gorm:"not null" json:"label"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
}
