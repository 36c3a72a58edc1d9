package stats

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"
)

// BarChartRow is one bucket of a bar chart report flattened for the
// charting layer: the per-category list is pivoted into sibling JSON
// fields keyed by category ID, one series per category. Categories
// absent from a bucket are omitted, not zero-filled; the chart defaults
// missing keys to zero.
type BarChartRow struct {
	Date        string
	TotalAmount decimal.Decimal
	TotalCount  int64
	Amounts     map[string]decimal.Decimal
}

// ShapeForBarChart pivots ordered bucket aggregations into flat rows.
func ShapeForBarChart(buckets []BucketStats) []BarChartRow {
	rows := make([]BarChartRow, 0, len(buckets))
	for _, bucket := range buckets {
		amounts := make(map[string]decimal.Decimal, len(bucket.AmountPerCategory))
		for _, ct := range bucket.AmountPerCategory {
			amounts[ct.Category.ID] = ct.TotalAmount
		}
		rows = append(rows, BarChartRow{
			Date:        bucket.Date,
			TotalAmount: bucket.TotalAmount,
			TotalCount:  bucket.TotalCount,
			Amounts:     amounts,
		})
	}
	return rows
}

// MarshalJSON flattens Amounts into sibling fields. Category keys are
// emitted in sorted order so repeated serializations of the same row are
// byte-identical.
func (r BarChartRow) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(r.Amounts))
	for id := range r.Amounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, value interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		val, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := writeField("date", r.Date); err != nil {
		return nil, err
	}
	if err := writeField("totalAmount", r.TotalAmount); err != nil {
		return nil, err
	}
	if err := writeField("totalCount", r.TotalCount); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if err := writeField(id, r.Amounts[id]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a row from its flattened form; every field
// beyond the bucket metadata is a category series.
func (r *BarChartRow) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Amounts = make(map[string]decimal.Decimal, len(fields))
	for name, raw := range fields {
		switch name {
		case "date":
			if err := json.Unmarshal(raw, &r.Date); err != nil {
				return err
			}
		case "totalAmount":
			if err := json.Unmarshal(raw, &r.TotalAmount); err != nil {
				return err
			}
		case "totalCount":
			if err := json.Unmarshal(raw, &r.TotalCount); err != nil {
				return err
			}
		default:
			var amount decimal.Decimal
			if err := json.Unmarshal(raw, &amount); err != nil {
				return err
			}
			r.Amounts[name] = amount
		}
	}
	return nil
}
