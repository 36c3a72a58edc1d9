// Package stats defines the aggregated statistics payloads served by the
// report endpoints: per-category totals for pie charts and
// per-bucket-per-category totals pivoted into flat rows for bar charts.
package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Chart payloads carry amounts as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// CategoryRef identifies a category in a statistics payload. Name and
// color are filled in by enrichment; raw aggregation results carry only
// the ID.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// CategoryTotal is the amount and record count attributed to one
// category within a report window or bucket.
type CategoryTotal struct {
	Category    CategoryRef     `json:"category"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalCount  int64           `json:"totalCount"`
}

// PieStats is the payload of the pie chart report: the window's overall
// totals plus per-category totals ordered by descending amount.
type PieStats struct {
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalCount        int64           `json:"totalCount"`
	AmountPerCategory []CategoryTotal `json:"amountPerCategory"`
}

// EmptyPieStats returns a zero-valued result. Degraded reports return
// this rather than an error so the dashboard stays available.
func EmptyPieStats() *PieStats {
	return &PieStats{
		TotalAmount:       decimal.Zero,
		AmountPerCategory: []CategoryTotal{},
	}
}

// BucketStats is one time bucket of a bar chart report. Time orders
// buckets; Date is the display label derived from the report period.
type BucketStats struct {
	Time              time.Time       `json:"-"`
	Date              string          `json:"date"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TotalCount        int64           `json:"totalCount"`
	AmountPerCategory []CategoryTotal `json:"amountPerCategory"`
}
